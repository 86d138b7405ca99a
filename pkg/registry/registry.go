// Package registry maps node type names to the factories and port manifests
// used at tree-build time. The core never knows concrete leaf behavior, only
// this factory/ports contract; the embedding application registers its own
// actions and conditions next to the builtin catalog.
package registry

import (
	"sort"
	"sync"

	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/node"
)

// Builder produces a node instance from its config and already-built
// children. Leaf builders receive an empty child slice; the tree builder
// enforces arity from the manifest category before calling.
type Builder func(name string, cfg *node.Config, children []node.Node) (node.Node, error)

// Manifest is the static declaration of a node type: its category (which
// fixes the child arity) and its port list.
type Manifest struct {
	Type        string
	Category    domain.Category
	Ports       domain.PortList
	Description string
}

type registration struct {
	manifest Manifest
	builder  Builder
}

// Registry is the closed-at-build-time catalog of node types.
// Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registration
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]registration)}
}

// Default creates a registry pre-populated with the builtin catalog:
// controls, decorators, script leaves and the trivial leaves.
func Default() *Registry {
	r := New()
	registerBuiltins(r)
	return r
}

// Register adds a node type. Registering an existing type name replaces it.
func (r *Registry) Register(m Manifest, b Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[m.Type] = registration{manifest: m, builder: b}
}

// Build instantiates a node of the given type.
func (r *Registry) Build(typeName, instanceName string, cfg *node.Config, children []node.Node) (node.Node, error) {
	r.mu.RLock()
	reg, ok := r.entries[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.NewBuildError(instanceName, "unknown node type %q", typeName)
	}
	return reg.builder(instanceName, cfg, children)
}

// Lookup returns the manifest of a registered type.
func (r *Registry) Lookup(typeName string) (Manifest, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[typeName]
	return reg.manifest, ok
}

// Types lists registered type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries))
	for t := range r.entries {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// RegisterAction registers a func-backed action leaf type.
func (r *Registry) RegisterAction(typeName string, ports domain.PortList, tick node.TickFunc) {
	r.Register(
		Manifest{Type: typeName, Category: domain.CategoryAction, Ports: ports},
		func(name string, cfg *node.Config, _ []node.Node) (node.Node, error) {
			return node.NewAction(name, cfg, tick), nil
		},
	)
}

// RegisterCondition registers a func-backed condition leaf type.
func (r *Registry) RegisterCondition(typeName string, ports domain.PortList, tick node.TickFunc) {
	r.Register(
		Manifest{Type: typeName, Category: domain.CategoryCondition, Ports: ports},
		func(name string, cfg *node.Config, _ []node.Node) (node.Node, error) {
			return node.NewCondition(name, cfg, tick), nil
		},
	)
}

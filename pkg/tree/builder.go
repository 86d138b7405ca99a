package tree

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/bramblebt/bramble/pkg/blackboard"
	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/node"
	"github.com/bramblebt/bramble/pkg/registry"
	"github.com/bramblebt/bramble/pkg/schema"
)

// BuildOption configures a Build call.
type BuildOption func(*builder)

// WithRootTree overrides the document's main tree selection.
func WithRootTree(id string) BuildOption {
	return func(b *builder) { b.rootID = id }
}

// WithEvaluator injects the script evaluator handed to every node.
func WithEvaluator(ev node.Evaluator) BuildOption {
	return func(b *builder) { b.evaluator = ev }
}

// WithLogger sets the structured logger used during the build.
func WithLogger(logger *slog.Logger) BuildOption {
	return func(b *builder) { b.logger = logger }
}

type builder struct {
	doc       *schema.Document
	reg       *registry.Registry
	rootID    string
	evaluator node.Evaluator
	logger    *slog.Logger

	tree    *Tree
	nextUID uint16
}

// binder is satisfied by every node embedding node.Base; the builder uses it
// to assign UIDs and wire the notification bus.
type binder interface {
	SetUID(uint16)
	SetTransitionSink(domain.TransitionFunc)
}

// Build resolves a definition document against a registry and instantiates
// the runtime tree, creating one blackboard scope per subtree reference.
// Every defect it can detect (unknown type, wrong arity, unbound required
// port, cyclic subtree reference) is a BuildError raised here, never during
// ticking. UIDs are assigned depth-first at build time and never reused.
func Build(doc *schema.Document, reg *registry.Registry, opts ...BuildOption) (*Tree, error) {
	if err := schema.Validate(doc); err != nil {
		return nil, err
	}

	b := &builder{
		doc:    doc,
		reg:    reg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		tree:   &Tree{rootScope: blackboard.New()},
	}
	for _, opt := range opts {
		opt(b)
	}

	main, ok := b.mainTree()
	if !ok {
		return nil, &domain.BuildError{
			Node:   b.rootID,
			Reason: "cannot resolve main tree",
			Err:    domain.ErrTreeNotFound,
		}
	}

	b.tree.scopes = append(b.tree.scopes, b.tree.rootScope)
	root, err := b.buildNode(main.Root, main.ID, main.ID, b.tree.rootScope, []string{main.ID})
	if err != nil {
		return nil, err
	}
	b.tree.root = root

	b.logger.Debug("tree built",
		"root", main.ID,
		"nodes", len(b.tree.nodes),
		"scopes", len(b.tree.scopes))
	return b.tree, nil
}

func (b *builder) mainTree() (*schema.TreeDef, bool) {
	if b.rootID != "" {
		return b.doc.Tree(b.rootID)
	}
	return b.doc.MainTree()
}

func (b *builder) buildNode(def *schema.NodeDef, treeID, path string, bb *blackboard.Blackboard, visiting []string) (node.Node, error) {
	name := def.DisplayName()
	nodePath := path + "/" + name
	b.nextUID++
	uid := b.nextUID

	var (
		built    node.Node
		err      error
		childIDs []uint16
	)

	if def.Type == "SubTree" {
		built, childIDs, err = b.buildSubTree(def, nodePath, bb, visiting)
	} else {
		built, childIDs, err = b.buildRegistered(def, treeID, nodePath, bb, visiting)
	}
	if err != nil {
		return nil, err
	}

	bound, ok := built.(binder)
	if !ok {
		return nil, domain.NewBuildError(name, "node type %q does not embed node.Base", def.Type)
	}
	bound.SetUID(uid)
	bound.SetTransitionSink(b.tree.dispatch)

	b.tree.nodes = append(b.tree.nodes, built)
	b.tree.layout = append(b.tree.layout, NodeInfo{
		UID:      uid,
		Name:     name,
		Type:     def.Type,
		Category: built.Category(),
		TreeID:   treeID,
		Children: childIDs,
	})
	return built, nil
}

func (b *builder) buildSubTree(def *schema.NodeDef, path string, bb *blackboard.Blackboard, visiting []string) (node.Node, []uint16, error) {
	name := def.DisplayName()
	if slices.Contains(visiting, def.Tree) {
		return nil, nil, domain.NewBuildError(name, "cyclic subtree reference: %v -> %s", visiting, def.Tree)
	}
	target, ok := b.doc.Tree(def.Tree)
	if !ok {
		return nil, nil, &domain.BuildError{Node: name, Reason: fmt.Sprintf("unknown tree %q", def.Tree), Err: domain.ErrTreeNotFound}
	}

	remap := make(map[string]string)
	for port, raw := range def.Ports {
		if !node.IsPointer(raw) {
			return nil, nil, domain.NewBuildError(name, "subtree port %q must be a blackboard pointer, got %q", port, raw)
		}
		remap[port] = node.PointerKey(raw)
	}

	scope := blackboard.NewScope(bb, remap, def.AutoRemap)
	b.tree.scopes = append(b.tree.scopes, scope)

	childUID := b.nextUID + 1
	subRoot, err := b.buildNode(target.Root, def.Tree, path, scope, append(visiting, def.Tree))
	if err != nil {
		return nil, nil, err
	}

	cfg := &node.Config{
		Blackboard: bb,
		Conditions: conditionsOf(def),
		Evaluator:  b.evaluator,
		Path:       path,
	}
	return newSubTree(name, cfg, subRoot), []uint16{childUID}, nil
}

func (b *builder) buildRegistered(def *schema.NodeDef, treeID, path string, bb *blackboard.Blackboard, visiting []string) (node.Node, []uint16, error) {
	name := def.DisplayName()
	manifest, ok := b.reg.Lookup(def.Type)
	if !ok {
		return nil, nil, domain.NewBuildError(name, "unknown node type %q", def.Type)
	}

	defs := def.AllChildren()
	if err := checkArity(name, manifest.Category, len(defs)); err != nil {
		return nil, nil, err
	}

	inputs, outputs, err := splitPorts(name, manifest.Ports, def.Ports)
	if err != nil {
		return nil, nil, err
	}

	children := make([]node.Node, 0, len(defs))
	childIDs := make([]uint16, 0, len(defs))
	for _, childDef := range defs {
		childIDs = append(childIDs, b.nextUID+1)
		child, err := b.buildNode(childDef, treeID, path, bb, visiting)
		if err != nil {
			return nil, nil, err
		}
		children = append(children, child)
	}

	cfg := &node.Config{
		Blackboard:  bb,
		InputPorts:  inputs,
		OutputPorts: outputs,
		Manifest:    manifest.Ports,
		Params:      def.Params,
		Conditions:  conditionsOf(def),
		Evaluator:   b.evaluator,
		Path:        path,
	}
	built, err := b.reg.Build(def.Type, name, cfg, children)
	if err != nil {
		return nil, nil, err
	}
	return built, childIDs, nil
}

func checkArity(name string, cat domain.Category, children int) error {
	switch cat {
	case domain.CategoryAction, domain.CategoryCondition:
		if children != 0 {
			return domain.NewBuildError(name, "leaf nodes take no children, got %d", children)
		}
	case domain.CategoryDecorator:
		if children != 1 {
			return domain.NewBuildError(name, "decorators take exactly one child, got %d", children)
		}
	case domain.CategoryControl:
		if children == 0 {
			return domain.NewBuildError(name, "control nodes need at least one child")
		}
	}
	return nil
}

// splitPorts partitions the definition's port bindings by the manifest's
// declared directions and checks that every required input is satisfiable.
func splitPorts(name string, manifest domain.PortList, bindings map[string]string) (map[string]string, map[string]string, error) {
	inputs := make(map[string]string)
	outputs := make(map[string]string)

	for port, raw := range bindings {
		info, ok := manifest.Find(port)
		if !ok {
			return nil, nil, domain.NewBuildError(name, "undeclared port %q", port)
		}
		switch info.Direction {
		case domain.PortIn:
			inputs[port] = raw
		case domain.PortOut:
			outputs[port] = raw
		case domain.PortInOut:
			inputs[port] = raw
			outputs[port] = raw
		}
	}

	for _, info := range manifest {
		if info.Direction == domain.PortOut || !info.Required || info.Default != "" {
			continue
		}
		if _, bound := inputs[info.Name]; !bound {
			return nil, nil, domain.NewBuildError(name, "required port %q has no binding", info.Name)
		}
	}
	return inputs, outputs, nil
}

func conditionsOf(def *schema.NodeDef) node.Conditions {
	return node.Conditions{
		SkipIf:    def.SkipIf,
		SuccessIf: def.SuccessIf,
		FailureIf: def.FailureIf,
		OnSuccess: def.OnSuccess,
		OnFailure: def.OnFailure,
		OnHalted:  def.OnHalted,
	}
}

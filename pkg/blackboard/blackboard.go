// Package blackboard implements the scoped key/value store nodes use to
// exchange typed data through their ports.
//
// Each tree scope (the root tree and every subtree instantiation) owns one
// Blackboard. A scope holds a non-owning reference to its parent scope's
// store; keys resolve either locally, through an explicit remapping rule, or
// (under autoremap) under their own name in the parent scope. A key's stored
// type is fixed by its first write and never silently coerced afterwards.
package blackboard

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/bramblebt/bramble/pkg/domain"
)

// Blackboard is a typed key/value store for one tree scope.
// Safe for concurrent reads by external consumers (publishers, debuggers);
// writes only ever come from the single ticking goroutine.
type Blackboard struct {
	mu      sync.RWMutex
	entries map[string]*entry

	parent *Blackboard

	// remap maps a key of this scope to a key in the parent scope. Set at
	// subtree instantiation time, never mutated afterwards.
	remap map[string]string

	// autoRemap forwards any key without an explicit remapping to the
	// parent scope under its own name. Keys prefixed with "_" stay private
	// to this scope regardless.
	autoRemap bool
}

type entry struct {
	value any
	typ   reflect.Type
}

// New creates a root-scope blackboard.
func New() *Blackboard {
	return &Blackboard{entries: make(map[string]*entry)}
}

// NewScope creates a child scope over parent with the given remapping table.
// The remap table maps keys of the new scope to keys of the parent scope.
func NewScope(parent *Blackboard, remap map[string]string, autoRemap bool) *Blackboard {
	rm := make(map[string]string, len(remap))
	for k, v := range remap {
		rm[k] = v
	}
	return &Blackboard{
		entries:   make(map[string]*entry),
		parent:    parent,
		remap:     rm,
		autoRemap: autoRemap,
	}
}

// Parent returns the enclosing scope, or nil for the root scope.
func (b *Blackboard) Parent() *Blackboard { return b.parent }

// resolve walks remapping rules to the scope that owns key.
// Returns the owning scope and the key name within it.
func (b *Blackboard) resolve(key string) (*Blackboard, string) {
	if ext, ok := b.remap[key]; ok && b.parent != nil {
		return b.parent.resolve(ext)
	}
	if b.autoRemap && b.parent != nil && !isPrivate(key) {
		return b.parent.resolve(key)
	}
	return b, key
}

func isPrivate(key string) bool {
	return strings.HasPrefix(key, "_")
}

// Get returns the raw value stored under key, resolving through the scope
// chain. Returns domain.ErrKeyNotFound when no scope holds the key.
func (b *Blackboard) Get(key string) (any, error) {
	scope, name := b.resolve(key)
	scope.mu.RLock()
	defer scope.mu.RUnlock()

	e, ok := scope.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrKeyNotFound, key)
	}
	return e.value, nil
}

// Set stores value under key, resolving through the scope chain and creating
// the entry on first write. Once written, the entry's type is fixed; writing
// a value of a different type is an error.
func (b *Blackboard) Set(key string, value any) error {
	scope, name := b.resolve(key)
	scope.mu.Lock()
	defer scope.mu.Unlock()

	t := reflect.TypeOf(value)
	if e, ok := scope.entries[name]; ok {
		if t != e.typ {
			return fmt.Errorf("%w: key %q holds %v, cannot store %v",
				domain.ErrTypeMismatch, key, e.typ, t)
		}
		e.value = value
		return nil
	}
	scope.entries[name] = &entry{value: value, typ: t}
	return nil
}

// Has reports whether key resolves to an existing entry.
func (b *Blackboard) Has(key string) bool {
	scope, name := b.resolve(key)
	scope.mu.RLock()
	defer scope.mu.RUnlock()
	_, ok := scope.entries[name]
	return ok
}

// Unset removes the entry key resolves to, releasing its type fix.
func (b *Blackboard) Unset(key string) {
	scope, name := b.resolve(key)
	scope.mu.Lock()
	defer scope.mu.Unlock()
	delete(scope.entries, name)
}

// Keys lists the keys stored directly in this scope, sorted.
func (b *Blackboard) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]string, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot copies this scope's direct entries for external consumers.
// The returned map is detached; values are shared references.
func (b *Blackboard) Snapshot() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]any, len(b.entries))
	for k, e := range b.entries {
		out[k] = e.value
	}
	return out
}

// Visible returns every key/value pair readable from this scope: the local
// entries, the explicitly remapped keys, and (under autoremap) the parent's
// non-private view. Local entries shadow inherited ones. Used by the script
// evaluator to build its expression environment.
func (b *Blackboard) Visible() map[string]any {
	out := make(map[string]any)
	if b.parent != nil && b.autoRemap {
		for k, v := range b.parent.Visible() {
			if !isPrivate(k) {
				out[k] = v
			}
		}
	}
	for k := range b.remap {
		if v, err := b.Get(k); err == nil {
			out[k] = v
		}
	}
	for k, v := range b.Snapshot() {
		out[k] = v
	}
	return out
}

// Get retrieves the value under key as type T, resolving through the scope
// chain. A stored value of a different type yields domain.ErrTypeMismatch.
func Get[T any](b *Blackboard, key string) (T, error) {
	var zero T
	raw, err := b.Get(key)
	if err != nil {
		return zero, err
	}
	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("%w: key %q holds %T, want %T",
			domain.ErrTypeMismatch, key, raw, zero)
	}
	return v, nil
}

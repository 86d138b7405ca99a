// Package tree assembles a definition document into one runtime tree and
// drives its evaluation: the tick engine, the halt/reset protocol and the
// status-change notification bus live here.
package tree

import (
	"context"
	"sync"
	"time"

	"github.com/bramblebt/bramble/pkg/blackboard"
	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/node"
)

// NodeInfo describes one vertex of the composed tree for external tooling:
// the publisher, the trace loggers and the graph exporter correlate on UID.
type NodeInfo struct {
	UID      uint16          `json:"uid"`
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	Category domain.Category `json:"category"`
	TreeID   string          `json:"tree_id"`
	Children []uint16        `json:"children,omitempty"`
}

// StatusInfo is one entry of a live status snapshot.
type StatusInfo struct {
	UID    uint16        `json:"uid"`
	Name   string        `json:"name"`
	Status domain.Status `json:"status"`
}

// Tree is the composed, instantiated runtime structure: a root node, the
// flat list of all nodes in build order, and the blackboard scopes reachable
// from it. The Tree exclusively owns its nodes; none of them outlives it.
//
// Ticking is strictly sequential: one Tick* call must complete before
// another begins. Status and blackboard snapshots may be read concurrently
// by external consumers.
type Tree struct {
	root      node.Node
	nodes     []node.Node
	layout    []NodeInfo
	rootScope *blackboard.Blackboard
	scopes    []*blackboard.Blackboard

	subsMu sync.RWMutex
	subs   []domain.TransitionFunc
}

// Root returns the root node.
func (t *Tree) Root() node.Node { return t.root }

// Blackboard returns the root scope, typically used to seed inputs before
// the first tick and to read results after the last one.
func (t *Tree) Blackboard() *blackboard.Blackboard { return t.rootScope }

// Layout returns the build-time structure of the tree.
func (t *Tree) Layout() []NodeInfo {
	out := make([]NodeInfo, len(t.layout))
	copy(out, t.layout)
	return out
}

// StatusSnapshot returns the current status of every node, in build order.
func (t *Tree) StatusSnapshot() []StatusInfo {
	out := make([]StatusInfo, 0, len(t.nodes))
	for _, n := range t.nodes {
		out = append(out, StatusInfo{UID: n.UID(), Name: n.Name(), Status: n.Status()})
	}
	return out
}

// NodeByUID returns the node with the given build-time identifier.
func (t *Tree) NodeByUID(uid uint16) (node.Node, bool) {
	for _, n := range t.nodes {
		if n.UID() == uid {
			return n, true
		}
	}
	return nil, false
}

// Subscribe registers a callback on the status-change notification bus.
// Callbacks run synchronously on the ticking goroutine, in tick order,
// exactly once per observed transition; they must not block. Subscribe
// before the first tick to observe the whole run.
func (t *Tree) Subscribe(fn domain.TransitionFunc) {
	t.subsMu.Lock()
	t.subs = append(t.subs, fn)
	t.subsMu.Unlock()
}

// dispatch fans a transition out to every subscriber. Installed as the
// transition sink of every node at build time.
func (t *Tree) dispatch(tr domain.Transition) {
	t.subsMu.RLock()
	subs := t.subs
	t.subsMu.RUnlock()
	for _, fn := range subs {
		fn(tr)
	}
}

// TickOnce runs a single evaluation pass of the root and returns its status.
// Re-ticking a tree whose root is already terminal restarts evaluation at
// the root; nodes holding persistent counters keep them unless reset.
func (t *Tree) TickOnce() (domain.Status, error) {
	return node.ExecuteTick(t.root)
}

// TickWhileRunning loops TickOnce until the root returns a status other
// than Running, sleeping interval between passes. It imposes no tick rate
// beyond that sleep; real-time callers own their loop timing. Cancelling
// the context halts the tree and returns the context error.
func (t *Tree) TickWhileRunning(ctx context.Context, interval time.Duration) (domain.Status, error) {
	for {
		status, err := t.TickOnce()
		if err != nil || status != domain.StatusRunning {
			return status, err
		}
		select {
		case <-ctx.Done():
			t.HaltTree()
			return domain.StatusIdle, ctx.Err()
		case <-time.After(interval):
		}
	}
}

// HaltTree cancels the active branch: the root is halted, which cascades
// through every Running descendant.
func (t *Tree) HaltTree() {
	t.root.Halt()
}

// ResetAll forces every node back to Idle and clears all persistent internal
// state (resume indexes, attempt counters, latched results). Blackboard
// entries survive: reset is a clean restart of control flow, not of data.
func (t *Tree) ResetAll() {
	for _, n := range t.nodes {
		n.Halt()
	}
}

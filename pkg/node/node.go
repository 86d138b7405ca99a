// Package node defines the tick/halt contract every tree vertex implements,
// the Base bookkeeping all concrete nodes embed, and the typed port access
// helpers that connect a node to its blackboard scope.
package node

import (
	"sync"
	"time"

	"github.com/bramblebt/bramble/pkg/domain"
)

// Node is the contract of a tree vertex.
//
// Tick evaluates the node and returns its status for this cycle; a node that
// returned Running must resume, not restart, when re-ticked. Tick is never
// invoked concurrently on the same instance: ticking a tree is strictly
// sequential. Halt cancels a Running node and its active descendants,
// clears persistent internal state (resume indexes, attempt counters) and
// resets the status to Idle; it is the only sanctioned way to cancel
// in-flight work.
//
// Concrete nodes embed Base, which supplies everything except Tick and Halt.
type Node interface {
	Name() string
	UID() uint16
	Category() domain.Category
	Config() *Config
	Status() domain.Status
	SetStatus(domain.Status)
	Tick() (domain.Status, error)
	Halt()
}

// Base carries the bookkeeping shared by all nodes: identity, current
// status, and the transition sink of the owning tree's notification bus.
// Status reads are safe from other goroutines (snapshot consumers); all
// writes happen on the ticking goroutine.
type Base struct {
	name     string
	uid      uint16
	category domain.Category
	cfg      *Config

	mu     sync.RWMutex
	status domain.Status

	sink domain.TransitionFunc
}

// NewBase creates the embedded bookkeeping for a concrete node.
func NewBase(name string, category domain.Category, cfg *Config) Base {
	if cfg == nil {
		cfg = &Config{}
	}
	return Base{name: name, category: category, cfg: cfg}
}

func (b *Base) Name() string              { return b.name }
func (b *Base) UID() uint16               { return b.uid }
func (b *Base) Category() domain.Category { return b.category }
func (b *Base) Config() *Config           { return b.cfg }

// Status returns the node's current status.
func (b *Base) Status() domain.Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}

// SetStatus records a status change and emits exactly one transition event
// when the status actually changed.
func (b *Base) SetStatus(next domain.Status) {
	b.mu.Lock()
	prev := b.status
	b.status = next
	sink := b.sink
	b.mu.Unlock()

	if prev != next && sink != nil {
		sink(domain.Transition{
			Timestamp: time.Now(),
			UID:       b.uid,
			Name:      b.name,
			Category:  b.category,
			Prev:      prev,
			Next:      next,
		})
	}
}

// SetUID assigns the build-time identifier. Called once by the tree builder.
func (b *Base) SetUID(uid uint16) { b.uid = uid }

// SetTransitionSink wires the node into the owning tree's notification bus.
// Called once by the tree builder, before the first tick.
func (b *Base) SetTransitionSink(fn domain.TransitionFunc) {
	b.mu.Lock()
	b.sink = fn
	b.mu.Unlock()
}

// Halt is the default cancellation behavior for stateless nodes: fire the
// on_halted postcondition when interrupting in-flight work, then reset to
// Idle. Nodes with internal state override this and clear it first.
func (b *Base) Halt() {
	if b.Status() == domain.StatusRunning {
		b.runOnHalted()
	}
	b.SetStatus(domain.StatusIdle)
}

// runOnHalted evaluates the on_halted script, if any. Evaluation failures
// are swallowed: halting must always complete and a failing script cannot be
// allowed to destabilize the halt cascade.
func (b *Base) runOnHalted() {
	cond := b.cfg.Conditions
	if cond.OnHalted == "" || b.cfg.Evaluator == nil {
		return
	}
	_, _ = b.cfg.Evaluator.Eval(cond.OnHalted, b.cfg.Blackboard)
}

// ExecuteTick runs the full tick protocol for n: precondition guards, the
// node's own Tick, postcondition scripts, status bookkeeping and transition
// emission. Composites tick their children through this function, and the
// tree engine ticks the root through it.
func ExecuteTick(n Node) (domain.Status, error) {
	cfg := n.Config()
	cond := cfg.Conditions

	// Guards apply only when the node is not resuming suspended work.
	if n.Status() != domain.StatusRunning {
		if skip, err := evalGuard(n, cond.SkipIf); err != nil {
			return domain.StatusIdle, err
		} else if skip {
			n.SetStatus(domain.StatusSkipped)
			return domain.StatusSkipped, nil
		}
		if hit, err := evalGuard(n, cond.FailureIf); err != nil {
			return domain.StatusIdle, err
		} else if hit {
			n.SetStatus(domain.StatusFailure)
			return domain.StatusFailure, nil
		}
		if hit, err := evalGuard(n, cond.SuccessIf); err != nil {
			return domain.StatusIdle, err
		} else if hit {
			n.SetStatus(domain.StatusSuccess)
			return domain.StatusSuccess, nil
		}
	}

	status, err := n.Tick()
	if err != nil {
		return status, err
	}
	if status == domain.StatusIdle {
		return status, &domain.LogicError{Node: n.Name(), Reason: "tick returned idle"}
	}

	n.SetStatus(status)

	switch status {
	case domain.StatusSuccess:
		err = runPost(n, "on_success", cond.OnSuccess)
	case domain.StatusFailure:
		err = runPost(n, "on_failure", cond.OnFailure)
	}
	return status, err
}

// evalGuard evaluates a precondition script to a boolean.
func evalGuard(n Node, code string) (bool, error) {
	cfg := n.Config()
	if code == "" || cfg.Evaluator == nil {
		return false, nil
	}
	out, err := cfg.Evaluator.Eval(code, cfg.Blackboard)
	if err != nil {
		return false, domain.NewPortError(n.Name(), "", "precondition %q: %v", code, err)
	}
	return Truthy(out), nil
}

// runPost evaluates a postcondition script for its side effects.
func runPost(n Node, label, code string) error {
	cfg := n.Config()
	if code == "" || cfg.Evaluator == nil {
		return nil
	}
	if _, err := cfg.Evaluator.Eval(code, cfg.Blackboard); err != nil {
		return domain.NewPortError(n.Name(), "", "postcondition %s: %v", label, err)
	}
	return nil
}

// Truthy maps a script evaluation result onto a boolean, the way guard
// expressions interpret it.
func Truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	case string:
		return x != ""
	case nil:
		return false
	default:
		return true
	}
}

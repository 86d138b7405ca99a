package node

import "github.com/bramblebt/bramble/pkg/domain"

// TickFunc is the body of a func-backed leaf node.
type TickFunc func(cfg *Config) (domain.Status, error)

// Action is a leaf node backed by a tick function. Long-running actions
// return Running and are re-ticked on later cycles; the optional halt hook
// releases whatever the function accumulated between ticks.
type Action struct {
	Base
	tick TickFunc
	halt func()
}

// NewAction creates a func-backed action leaf.
func NewAction(name string, cfg *Config, tick TickFunc) *Action {
	return &Action{Base: NewBase(name, domain.CategoryAction, cfg), tick: tick}
}

// OnHalt registers a cancellation hook invoked when the action is halted
// while Running.
func (a *Action) OnHalt(fn func()) *Action {
	a.halt = fn
	return a
}

func (a *Action) Tick() (domain.Status, error) {
	return a.tick(a.Config())
}

func (a *Action) Halt() {
	if a.halt != nil && a.Status() == domain.StatusRunning {
		a.halt()
	}
	a.Base.Halt()
}

// Condition is a leaf node backed by a tick function that must complete
// within a single tick: it never returns Running and holds no state.
type Condition struct {
	Base
	tick TickFunc
}

// NewCondition creates a func-backed condition leaf.
func NewCondition(name string, cfg *Config, tick TickFunc) *Condition {
	return &Condition{Base: NewBase(name, domain.CategoryCondition, cfg), tick: tick}
}

func (c *Condition) Tick() (domain.Status, error) {
	st, err := c.tick(c.Config())
	if err != nil {
		return st, err
	}
	if st == domain.StatusRunning {
		return st, &domain.LogicError{Node: c.Name(), Reason: "condition returned running"}
	}
	return st, nil
}

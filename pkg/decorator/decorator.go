// Package decorator implements the single-child nodes of the catalog:
// Inverter, RetryUntilSuccessful, Repeat, ForceSuccess, ForceFailure and
// RunOnce. Counting decorators own an explicit per-instance counter that
// persists across ticks while the node is active and is cleared only by a
// terminal result or an explicit halt.
package decorator

import (
	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/node"
)

// Decorator is the shared shape of single-child nodes.
type Decorator struct {
	node.Base
	child node.Node
}

// NewDecorator creates the embedded decorator bookkeeping.
func NewDecorator(name string, cfg *node.Config, child node.Node) Decorator {
	return Decorator{
		Base:  node.NewBase(name, domain.CategoryDecorator, cfg),
		child: child,
	}
}

// Child returns the wrapped node.
func (d *Decorator) Child() node.Node { return d.child }

// ResetChild returns the child to Idle, halting it only if Running.
func (d *Decorator) ResetChild() {
	switch d.child.Status() {
	case domain.StatusRunning:
		d.child.Halt()
	case domain.StatusIdle:
	default:
		d.child.SetStatus(domain.StatusIdle)
	}
}

func (d *Decorator) Halt() {
	d.ResetChild()
	d.Base.Halt()
}

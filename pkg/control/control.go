// Package control implements the composite nodes of the catalog: Sequence,
// Fallback and Parallel. Composites are pure functions of their children's
// status sequence; the only state they own is the resume bookkeeping the
// tick protocol requires, cleared on a terminal result or an explicit halt.
package control

import (
	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/node"
)

// Composite is the shared shape of control nodes: ordered children and the
// common bookkeeping.
type Composite struct {
	node.Base
	children []node.Node
}

// NewComposite creates the embedded composite bookkeeping.
func NewComposite(name string, cfg *node.Config, children []node.Node) Composite {
	return Composite{
		Base:     node.NewBase(name, domain.CategoryControl, cfg),
		children: children,
	}
}

// Children returns the ordered child list.
func (c *Composite) Children() []node.Node { return c.children }

// ResetChildren returns every child to Idle: Running children are halted
// (cancelling their in-flight work and their active descendants), children
// already terminal or skipped simply have their status cleared. Halt is
// deliberately not invoked on non-Running children.
func (c *Composite) ResetChildren() {
	for _, child := range c.children {
		switch child.Status() {
		case domain.StatusRunning:
			child.Halt()
		case domain.StatusIdle:
			// already clean
		default:
			child.SetStatus(domain.StatusIdle)
		}
	}
}

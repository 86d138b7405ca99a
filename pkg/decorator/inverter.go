package decorator

import (
	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/node"
)

// Inverter swaps its child's Success and Failure. Running and Skipped pass
// through unchanged.
type Inverter struct {
	Decorator
}

// NewInverter creates an Inverter over child.
func NewInverter(name string, cfg *node.Config, child node.Node) *Inverter {
	return &Inverter{Decorator: NewDecorator(name, cfg, child)}
}

func (i *Inverter) Tick() (domain.Status, error) {
	st, err := node.ExecuteTick(i.Child())
	if err != nil {
		return st, err
	}
	switch st {
	case domain.StatusSuccess:
		i.ResetChild()
		return domain.StatusFailure, nil
	case domain.StatusFailure:
		i.ResetChild()
		return domain.StatusSuccess, nil
	default:
		return st, nil
	}
}

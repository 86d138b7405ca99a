package decorator

import (
	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/node"
)

// ForceSuccess coerces any terminal child result to Success.
// Running and Skipped pass through.
type ForceSuccess struct {
	Decorator
}

// NewForceSuccess creates a ForceSuccess over child.
func NewForceSuccess(name string, cfg *node.Config, child node.Node) *ForceSuccess {
	return &ForceSuccess{Decorator: NewDecorator(name, cfg, child)}
}

func (f *ForceSuccess) Tick() (domain.Status, error) {
	st, err := node.ExecuteTick(f.Child())
	if err != nil {
		return st, err
	}
	if st.IsTerminal() {
		f.ResetChild()
		return domain.StatusSuccess, nil
	}
	return st, nil
}

// ForceFailure coerces any terminal child result to Failure.
type ForceFailure struct {
	Decorator
}

// NewForceFailure creates a ForceFailure over child.
func NewForceFailure(name string, cfg *node.Config, child node.Node) *ForceFailure {
	return &ForceFailure{Decorator: NewDecorator(name, cfg, child)}
}

func (f *ForceFailure) Tick() (domain.Status, error) {
	st, err := node.ExecuteTick(f.Child())
	if err != nil {
		return st, err
	}
	if st.IsTerminal() {
		f.ResetChild()
		return domain.StatusFailure, nil
	}
	return st, nil
}

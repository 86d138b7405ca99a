package control

import (
	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/node"
)

// Fallback (also known as a selector) is the mirror image of Sequence: it
// ticks children in order until one succeeds, failing only when every child
// has failed. A Running child suspends the pass and becomes the resume
// point for the next cycle.
type Fallback struct {
	Composite
	index int
}

// NewFallback creates a Fallback over the given children.
func NewFallback(name string, cfg *node.Config, children []node.Node) *Fallback {
	return &Fallback{Composite: NewComposite(name, cfg, children)}
}

func (f *Fallback) Tick() (domain.Status, error) {
	children := f.Children()
	skipped := 0

	for f.index < len(children) {
		st, err := node.ExecuteTick(children[f.index])
		if err != nil {
			return st, err
		}
		switch st {
		case domain.StatusRunning:
			return domain.StatusRunning, nil
		case domain.StatusSuccess:
			f.ResetChildren()
			f.index = 0
			return domain.StatusSuccess, nil
		case domain.StatusSkipped:
			skipped++
			f.index++
		default: // Failure
			f.index++
		}
	}

	f.ResetChildren()
	f.index = 0
	if skipped == len(children) {
		return domain.StatusSkipped, nil
	}
	return domain.StatusFailure, nil
}

func (f *Fallback) Halt() {
	f.index = 0
	f.ResetChildren()
	f.Base.Halt()
}

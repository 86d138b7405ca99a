package control

import (
	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/node"
)

// Sequence ticks its children in order. The first Failure stops the pass and
// fails the sequence; a Running child suspends the pass, and the sequence
// resumes from that child on the next cycle without re-ticking its already
// successful siblings. Only when every child has succeeded (or been skipped)
// does the sequence conclude.
type Sequence struct {
	Composite
	index int
}

// NewSequence creates a Sequence over the given children.
func NewSequence(name string, cfg *node.Config, children []node.Node) *Sequence {
	return &Sequence{Composite: NewComposite(name, cfg, children)}
}

func (s *Sequence) Tick() (domain.Status, error) {
	children := s.Children()
	skipped := 0

	// Children before s.index already returned Success this cycle and are
	// not re-ticked; the resume index is part of the sequence's own state.
	for s.index < len(children) {
		st, err := node.ExecuteTick(children[s.index])
		if err != nil {
			return st, err
		}
		switch st {
		case domain.StatusRunning:
			return domain.StatusRunning, nil
		case domain.StatusFailure:
			s.ResetChildren()
			s.index = 0
			return domain.StatusFailure, nil
		case domain.StatusSkipped:
			skipped++
			s.index++
		default: // Success
			s.index++
		}
	}

	s.ResetChildren()
	s.index = 0
	if skipped == len(children) {
		return domain.StatusSkipped, nil
	}
	return domain.StatusSuccess, nil
}

func (s *Sequence) Halt() {
	s.index = 0
	s.ResetChildren()
	s.Base.Halt()
}

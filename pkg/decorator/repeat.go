package decorator

import (
	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/node"
)

// RepeatParams configures a Repeat node. NumCycles of -1 repeats forever.
type RepeatParams struct {
	NumCycles int `mapstructure:"num_cycles"`
}

// Repeat re-ticks its child on Success, up to NumCycles completed cycles,
// then succeeds. The first child Failure fails the decorator. The cycle
// counter follows the same persistent-counter pattern as
// RetryUntilSuccessful.
type Repeat struct {
	Decorator
	params RepeatParams
	cycles int
}

// NewRepeat creates a Repeat over child.
func NewRepeat(name string, cfg *node.Config, child node.Node, params RepeatParams) (*Repeat, error) {
	if params.NumCycles == 0 || params.NumCycles < -1 {
		return nil, domain.NewBuildError(name, "num_cycles must be positive or -1, got %d", params.NumCycles)
	}
	return &Repeat{Decorator: NewDecorator(name, cfg, child), params: params}, nil
}

func (r *Repeat) Tick() (domain.Status, error) {
	for {
		st, err := node.ExecuteTick(r.Child())
		if err != nil {
			return st, err
		}
		switch st {
		case domain.StatusRunning:
			return domain.StatusRunning, nil
		case domain.StatusFailure:
			r.cycles = 0
			r.ResetChild()
			return domain.StatusFailure, nil
		case domain.StatusSkipped:
			r.cycles = 0
			r.ResetChild()
			return domain.StatusSkipped, nil
		default: // Success
			r.cycles++
			if r.params.NumCycles != -1 && r.cycles >= r.params.NumCycles {
				r.cycles = 0
				r.ResetChild()
				return domain.StatusSuccess, nil
			}
			r.ResetChild()
		}
	}
}

func (r *Repeat) Halt() {
	r.cycles = 0
	r.Decorator.Halt()
}

package decorator

import (
	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/node"
)

// RetryParams configures a RetryUntilSuccessful node.
// NumAttempts of -1 retries forever.
type RetryParams struct {
	NumAttempts int `mapstructure:"num_attempts"`
}

// RetryUntilSuccessful re-ticks its child on Failure, up to NumAttempts
// attempts. The attempt counter persists across ticks while the node is
// active and resets on a terminal result or halt. A Running child suspends
// the decorator without consuming an attempt.
type RetryUntilSuccessful struct {
	Decorator
	params RetryParams
	tries  int
}

// NewRetry creates a RetryUntilSuccessful over child.
func NewRetry(name string, cfg *node.Config, child node.Node, params RetryParams) (*RetryUntilSuccessful, error) {
	if params.NumAttempts == 0 || params.NumAttempts < -1 {
		return nil, domain.NewBuildError(name, "num_attempts must be positive or -1, got %d", params.NumAttempts)
	}
	return &RetryUntilSuccessful{Decorator: NewDecorator(name, cfg, child), params: params}, nil
}

func (r *RetryUntilSuccessful) Tick() (domain.Status, error) {
	for {
		st, err := node.ExecuteTick(r.Child())
		if err != nil {
			return st, err
		}
		switch st {
		case domain.StatusRunning:
			return domain.StatusRunning, nil
		case domain.StatusSuccess, domain.StatusSkipped:
			r.tries = 0
			r.ResetChild()
			return st, nil
		default: // Failure
			r.tries++
			if r.params.NumAttempts != -1 && r.tries >= r.params.NumAttempts {
				r.tries = 0
				r.ResetChild()
				return domain.StatusFailure, nil
			}
			// Restart the child for the next attempt within this tick.
			r.ResetChild()
		}
	}
}

func (r *RetryUntilSuccessful) Halt() {
	r.tries = 0
	r.Decorator.Halt()
}

package decorator

import (
	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/node"
)

// RunOnceParams configures a RunOnce node. With ThenSkip (the default) the
// node reports Skipped on every cycle after the first completed execution;
// otherwise it keeps returning the latched result.
type RunOnceParams struct {
	ThenSkip bool `mapstructure:"then_skip"`
}

// DefaultRunOnceParams skips after the first execution.
func DefaultRunOnceParams() RunOnceParams { return RunOnceParams{ThenSkip: true} }

// RunOnce executes its child to completion exactly once; afterwards the
// child is never ticked again until the decorator is halted or reset.
type RunOnce struct {
	Decorator
	params  RunOnceParams
	done    bool
	latched domain.Status
}

// NewRunOnce creates a RunOnce over child.
func NewRunOnce(name string, cfg *node.Config, child node.Node, params RunOnceParams) *RunOnce {
	return &RunOnce{Decorator: NewDecorator(name, cfg, child), params: params}
}

func (r *RunOnce) Tick() (domain.Status, error) {
	if r.done {
		if r.params.ThenSkip {
			return domain.StatusSkipped, nil
		}
		return r.latched, nil
	}

	st, err := node.ExecuteTick(r.Child())
	if err != nil {
		return st, err
	}
	if st.IsTerminal() {
		r.done = true
		r.latched = st
		r.ResetChild()
	}
	return st, nil
}

func (r *RunOnce) Halt() {
	r.done = false
	r.latched = domain.StatusIdle
	r.Decorator.Halt()
}

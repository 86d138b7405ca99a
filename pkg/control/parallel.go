package control

import (
	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/node"
)

// ParallelParams configures the verdict thresholds of a Parallel node.
// A threshold of -1 means "all children". Thresholds count children, not
// occurrences: only a child's latest terminal result participates.
type ParallelParams struct {
	SuccessThreshold int `mapstructure:"success_threshold"`
	FailureThreshold int `mapstructure:"failure_threshold"`
}

// DefaultParallelParams succeeds only when all children succeed and fails on
// the first child failure.
func DefaultParallelParams() ParallelParams {
	return ParallelParams{SuccessThreshold: -1, FailureThreshold: 1}
}

// Parallel ticks every not-yet-completed child on each cycle. "Parallel"
// refers to fan-out of logical evaluation within one tick pass; children are
// still ticked sequentially on the single execution thread.
//
// The node succeeds once at least SuccessThreshold children hold a Success
// verdict and fails once at least FailureThreshold hold a Failure verdict.
// Verdicts persist in the completed set while the node is Running, so a
// child that finished early is not re-ticked; the set clears on any overall
// terminal result or halt.
type Parallel struct {
	Composite
	params    ParallelParams
	completed map[int]domain.Status
}

// NewParallel creates a Parallel node. Thresholds outside [-1, len(children)]
// (or zero) are a build error.
func NewParallel(name string, cfg *node.Config, children []node.Node, params ParallelParams) (*Parallel, error) {
	n := len(children)
	for _, th := range []int{params.SuccessThreshold, params.FailureThreshold} {
		if th == 0 || th < -1 || th > n {
			return nil, domain.NewBuildError(name, "parallel threshold %d out of range for %d children", th, n)
		}
	}
	return &Parallel{
		Composite: NewComposite(name, cfg, children),
		params:    params,
		completed: make(map[int]domain.Status),
	}, nil
}

func (p *Parallel) threshold(th int) int {
	if th == -1 {
		return len(p.Children())
	}
	return th
}

func (p *Parallel) Tick() (domain.Status, error) {
	children := p.Children()

	for i, child := range children {
		if _, done := p.completed[i]; done {
			continue
		}
		st, err := node.ExecuteTick(child)
		if err != nil {
			return st, err
		}
		if st != domain.StatusRunning {
			p.completed[i] = st
		}
	}

	var successes, failures, skips int
	for _, st := range p.completed {
		switch st {
		case domain.StatusSuccess:
			successes++
		case domain.StatusFailure:
			failures++
		case domain.StatusSkipped:
			skips++
		}
	}

	if successes >= p.threshold(p.params.SuccessThreshold) {
		p.conclude()
		return domain.StatusSuccess, nil
	}
	if failures >= p.threshold(p.params.FailureThreshold) {
		p.conclude()
		return domain.StatusFailure, nil
	}

	if len(p.completed) == len(children) {
		// Every child is done but neither threshold was reached (skips ate
		// into the counts). All-skipped propagates the skip.
		p.conclude()
		if skips == len(children) {
			return domain.StatusSkipped, nil
		}
		return domain.StatusFailure, nil
	}
	return domain.StatusRunning, nil
}

// conclude halts the still-pending children and clears the verdict set.
func (p *Parallel) conclude() {
	p.ResetChildren()
	p.completed = make(map[int]domain.Status)
}

func (p *Parallel) Halt() {
	p.conclude()
	p.Base.Halt()
}

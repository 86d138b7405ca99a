package bramble

import (
	"context"
	"log/slog"
	"time"

	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/tree"
)

// DefaultTickInterval is the pause between ticks while the root is Running.
const DefaultTickInterval = 10 * time.Millisecond

// Runner drives a tree to completion and logs its activity.
// This is the loop most hosts want; callers needing their own timing tick
// the tree directly.
type Runner struct {
	Interval time.Duration
	Logger   *slog.Logger

	// OnTick, when set, is invoked after every tick pass with the root
	// status and the wall time the pass took. Metrics hooks attach here.
	OnTick func(status domain.Status, elapsed time.Duration)
}

// NewRunner creates a Runner with the default interval and a no-op logger.
func NewRunner() *Runner {
	return &Runner{Interval: DefaultTickInterval}
}

// Run ticks the tree until the root settles on a terminal status or the
// context is cancelled. Every status transition is logged at debug level;
// the final verdict at info level.
func (r *Runner) Run(ctx context.Context, t *tree.Tree) (domain.Status, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	t.Subscribe(func(tr domain.Transition) {
		logger.Debug("transition",
			"node", tr.Name,
			"uid", tr.UID,
			"from", tr.Prev.String(),
			"to", tr.Next.String())
	})

	for {
		start := time.Now()
		status, err := t.TickOnce()
		if r.OnTick != nil {
			r.OnTick(status, time.Since(start))
		}
		if err != nil {
			logger.Error("tick failed", "error", err)
			return status, err
		}
		if status != domain.StatusRunning {
			logger.Info("tree finished", "status", status.String())
			return status, nil
		}

		select {
		case <-ctx.Done():
			t.HaltTree()
			logger.Info("tree halted", "reason", ctx.Err())
			return domain.StatusIdle, ctx.Err()
		case <-time.After(interval):
		}
	}
}

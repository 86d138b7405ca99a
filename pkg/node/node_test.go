package node_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramblebt/bramble/pkg/blackboard"
	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/node"
	"github.com/bramblebt/bramble/pkg/script"
)

func TestExecuteTick_EmitsTransitions(t *testing.T) {
	n := node.NewAction("greet", node.NewConfig(blackboard.New()),
		func(*node.Config) (domain.Status, error) {
			return domain.StatusSuccess, nil
		})

	var seen []domain.Transition
	n.SetTransitionSink(func(tr domain.Transition) { seen = append(seen, tr) })

	st, err := node.ExecuteTick(n)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, st)

	require.Len(t, seen, 1)
	assert.Equal(t, domain.StatusIdle, seen[0].Prev)
	assert.Equal(t, domain.StatusSuccess, seen[0].Next)

	// Re-ticking to the same result emits nothing.
	_, err = node.ExecuteTick(n)
	require.NoError(t, err)
	assert.Len(t, seen, 1)
}

func TestExecuteTick_RunningResumes(t *testing.T) {
	ticks := 0
	n := node.NewAction("work", node.NewConfig(blackboard.New()),
		func(*node.Config) (domain.Status, error) {
			ticks++
			if ticks < 3 {
				return domain.StatusRunning, nil
			}
			return domain.StatusSuccess, nil
		})

	for i := 0; i < 2; i++ {
		st, err := node.ExecuteTick(n)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRunning, st)
	}
	st, err := node.ExecuteTick(n)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, st)
	assert.Equal(t, 3, ticks)
}

func TestExecuteTick_IdleIsContractViolation(t *testing.T) {
	n := node.NewAction("broken", node.NewConfig(blackboard.New()),
		func(*node.Config) (domain.Status, error) {
			return domain.StatusIdle, nil
		})

	_, err := node.ExecuteTick(n)
	var logicErr *domain.LogicError
	assert.ErrorAs(t, err, &logicErr)
}

func TestCondition_RunningIsContractViolation(t *testing.T) {
	c := node.NewCondition("bad", node.NewConfig(blackboard.New()),
		func(*node.Config) (domain.Status, error) {
			return domain.StatusRunning, nil
		})

	_, err := node.ExecuteTick(c)
	var logicErr *domain.LogicError
	assert.ErrorAs(t, err, &logicErr)
}

func TestExecuteTick_SkipIfGuard(t *testing.T) {
	bb := blackboard.New()
	require.NoError(t, bb.Set("battery_low", true))

	ticked := false
	cfg := node.NewConfig(bb)
	cfg.Evaluator = script.New()
	cfg.Conditions = node.Conditions{SkipIf: "battery_low"}

	n := node.NewAction("patrol", cfg, func(*node.Config) (domain.Status, error) {
		ticked = true
		return domain.StatusSuccess, nil
	})

	st, err := node.ExecuteTick(n)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSkipped, st)
	assert.False(t, ticked, "guard must bypass the tick entirely")
	assert.Equal(t, domain.StatusSkipped, n.Status())
}

func TestExecuteTick_SuccessAndFailureGuards(t *testing.T) {
	bb := blackboard.New()
	require.NoError(t, bb.Set("already_done", true))

	cfg := node.NewConfig(bb)
	cfg.Evaluator = script.New()
	cfg.Conditions = node.Conditions{SuccessIf: "already_done"}

	n := node.NewAction("open", cfg, func(*node.Config) (domain.Status, error) {
		t.Fatal("tick must not run")
		return domain.StatusFailure, nil
	})

	st, err := node.ExecuteTick(n)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, st)

	// failure_if takes precedence over success_if.
	cfg2 := node.NewConfig(bb)
	cfg2.Evaluator = script.New()
	cfg2.Conditions = node.Conditions{SuccessIf: "already_done", FailureIf: "already_done"}
	n2 := node.NewAction("open2", cfg2, func(*node.Config) (domain.Status, error) {
		return domain.StatusSuccess, nil
	})
	st, err = node.ExecuteTick(n2)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailure, st)
}

func TestExecuteTick_GuardsSkippedWhileRunning(t *testing.T) {
	bb := blackboard.New()
	require.NoError(t, bb.Set("skip", false))

	ticks := 0
	cfg := node.NewConfig(bb)
	cfg.Evaluator = script.New()
	cfg.Conditions = node.Conditions{SkipIf: "skip"}

	n := node.NewAction("work", cfg, func(*node.Config) (domain.Status, error) {
		ticks++
		if ticks == 1 {
			return domain.StatusRunning, nil
		}
		return domain.StatusSuccess, nil
	})

	st, err := node.ExecuteTick(n)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, st)

	// Guard flips while the node is suspended: resume anyway.
	require.NoError(t, bb.Set("skip", true))
	st, err = node.ExecuteTick(n)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, st)
	assert.Equal(t, 2, ticks)
}

func TestExecuteTick_Postconditions(t *testing.T) {
	bb := blackboard.New()
	cfg := node.NewConfig(bb)
	cfg.Evaluator = script.New()
	cfg.Conditions = node.Conditions{OnSuccess: "door_open := true"}

	n := node.NewAction("open", cfg, func(*node.Config) (domain.Status, error) {
		return domain.StatusSuccess, nil
	})

	_, err := node.ExecuteTick(n)
	require.NoError(t, err)

	v, err := blackboard.Get[bool](bb, "door_open")
	require.NoError(t, err)
	assert.True(t, v)
}

func TestActionHalt_RunsHookOnlyWhileRunning(t *testing.T) {
	halted := 0
	n := node.NewAction("work", node.NewConfig(blackboard.New()),
		func(*node.Config) (domain.Status, error) {
			return domain.StatusRunning, nil
		}).OnHalt(func() { halted++ })

	// Halting an idle node does not fire the hook.
	n.Halt()
	assert.Equal(t, 0, halted)

	_, err := node.ExecuteTick(n)
	require.NoError(t, err)
	n.Halt()
	assert.Equal(t, 1, halted)
	assert.Equal(t, domain.StatusIdle, n.Status())
}

func TestTruthy(t *testing.T) {
	assert.True(t, node.Truthy(true))
	assert.True(t, node.Truthy(1))
	assert.True(t, node.Truthy("x"))
	assert.False(t, node.Truthy(false))
	assert.False(t, node.Truthy(0))
	assert.False(t, node.Truthy(""))
	assert.False(t, node.Truthy(nil))
}

package control_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramblebt/bramble/pkg/control"
	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/node"
)

func TestParallel_DefaultsAllMustSucceed(t *testing.T) {
	a := newStub("a", domain.StatusSuccess)
	b := newStub("b", domain.StatusRunning, domain.StatusSuccess)
	par, err := control.NewParallel("par", cfg(), asNodes(a, b), control.DefaultParallelParams())
	require.NoError(t, err)

	st, err := node.ExecuteTick(par)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, st)

	st, err = node.ExecuteTick(par)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, st)

	// The early finisher keeps its verdict and is not re-ticked.
	assert.Equal(t, 1, a.ticks)
	assert.Equal(t, 2, b.ticks)
}

func TestParallel_FailureThreshold(t *testing.T) {
	a := newStub("a", domain.StatusRunning)
	b := newStub("b", domain.StatusFailure)
	par, err := control.NewParallel("par", cfg(), asNodes(a, b), control.DefaultParallelParams())
	require.NoError(t, err)

	// Default failure threshold is 1: a single failing child fails the node
	// and the still-running sibling is halted.
	st, err := node.ExecuteTick(par)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailure, st)
	assert.Equal(t, 1, a.halts)
}

func TestParallel_SuccessThreshold(t *testing.T) {
	a := newStub("a", domain.StatusSuccess)
	b := newStub("b", domain.StatusRunning)
	c := newStub("c", domain.StatusSuccess)
	par, err := control.NewParallel("par", cfg(), asNodes(a, b, c),
		control.ParallelParams{SuccessThreshold: 2, FailureThreshold: -1})
	require.NoError(t, err)

	st, err := node.ExecuteTick(par)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, st)
	assert.Equal(t, 1, b.halts, "pending child is halted when the verdict is reached")
}

func TestParallel_ThresholdValidation(t *testing.T) {
	a := newStub("a", domain.StatusSuccess)

	_, err := control.NewParallel("par", cfg(), asNodes(a),
		control.ParallelParams{SuccessThreshold: 0, FailureThreshold: 1})
	var buildErr *domain.BuildError
	assert.ErrorAs(t, err, &buildErr)

	_, err = control.NewParallel("par", cfg(), asNodes(a),
		control.ParallelParams{SuccessThreshold: 2, FailureThreshold: 1})
	assert.ErrorAs(t, err, &buildErr)
}

func TestParallel_AllDoneWithoutThreshold(t *testing.T) {
	// Two successes cannot reach a threshold of 3; once every child is done
	// the node fails rather than hanging.
	a := newStub("a", domain.StatusSuccess)
	b := newStub("b", domain.StatusSuccess)
	c := newStub("c", domain.StatusFailure)
	par, err := control.NewParallel("par", cfg(), asNodes(a, b, c),
		control.ParallelParams{SuccessThreshold: 3, FailureThreshold: 2})
	require.NoError(t, err)

	st, err := node.ExecuteTick(par)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailure, st)
}

func TestParallel_AllSkipped(t *testing.T) {
	a := newStub("a", domain.StatusSkipped)
	b := newStub("b", domain.StatusSkipped)
	par, err := control.NewParallel("par", cfg(), asNodes(a, b), control.DefaultParallelParams())
	require.NoError(t, err)

	st, err := node.ExecuteTick(par)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSkipped, st)
}

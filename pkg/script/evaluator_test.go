package script_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramblebt/bramble/pkg/blackboard"
	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/script"
)

func TestEval_Expression(t *testing.T) {
	ev := script.New()
	bb := blackboard.New()
	require.NoError(t, bb.Set("x", 10))

	out, err := ev.Eval("x > 5", bb)
	require.NoError(t, err)
	assert.Equal(t, true, out)

	out, err = ev.Eval("x * 2", bb)
	require.NoError(t, err)
	assert.Equal(t, 20, out)
}

func TestEval_Assignment(t *testing.T) {
	ev := script.New()
	bb := blackboard.New()

	_, err := ev.Eval(`target := "kitchen"`, bb)
	require.NoError(t, err)

	v, err := blackboard.Get[string](bb, "target")
	require.NoError(t, err)
	assert.Equal(t, "kitchen", v)
}

func TestEval_MultipleStatements(t *testing.T) {
	ev := script.New()
	bb := blackboard.New()

	out, err := ev.Eval("a := 1; b := 2; a + b", bb)
	require.NoError(t, err)
	assert.Equal(t, 3, out)

	assert.True(t, bb.Has("a"))
	assert.True(t, bb.Has("b"))
}

func TestEval_AssignmentRespectsTypeStability(t *testing.T) {
	ev := script.New()
	bb := blackboard.New()
	require.NoError(t, bb.Set("count", 1))

	_, err := ev.Eval(`count := "many"`, bb)
	assert.ErrorIs(t, err, domain.ErrTypeMismatch)
}

func TestEval_UndefinedVariablesAreNil(t *testing.T) {
	ev := script.New()
	out, err := ev.Eval("missing == nil", blackboard.New())
	require.NoError(t, err)
	assert.Equal(t, true, out)
}

func TestEval_ScopedEnvironment(t *testing.T) {
	parent := blackboard.New()
	require.NoError(t, parent.Set("shared", 5))

	child := blackboard.NewScope(parent, nil, true)

	ev := script.New()
	out, err := ev.Eval("shared + 1", child)
	require.NoError(t, err)
	assert.Equal(t, 6, out)

	// Assignment through an autoremapped scope lands in the parent.
	_, err = ev.Eval("shared := 9", child)
	require.NoError(t, err)
	v, err := blackboard.Get[int](parent, "shared")
	require.NoError(t, err)
	assert.Equal(t, 9, v)
}

func TestEval_CompileError(t *testing.T) {
	ev := script.New()
	_, err := ev.Eval("1 +* 2", blackboard.New())
	assert.Error(t, err)
}

func TestEval_CacheReuse(t *testing.T) {
	ev := script.New(script.WithCacheSize(2))
	bb := blackboard.New()
	require.NoError(t, bb.Set("x", 1))

	// Same snippet evaluated repeatedly reuses the compiled program; the
	// result still tracks the live blackboard value.
	for i := 1; i <= 3; i++ {
		require.NoError(t, bb.Set("x", i))
		out, err := ev.Eval("x", bb)
		require.NoError(t, err)
		assert.Equal(t, i, out)
	}
}

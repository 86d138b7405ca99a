package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

func compileFor(t *testing.T, src string) (string, *vm.Program) {
	t.Helper()
	p, err := expr.Compile(src, expr.AllowUndefinedVariables())
	require.NoError(t, err)
	return src, p
}

func TestProgramCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newProgramCache(2)

	k1, p1 := compileFor(t, "1 + 1")
	k2, p2 := compileFor(t, "2 + 2")
	k3, p3 := compileFor(t, "3 + 3")

	c.put(k1, p1)
	c.put(k2, p2)
	assert.Equal(t, 2, c.len())

	// Touch k1 so k2 becomes the eviction candidate.
	_, ok := c.get(k1)
	require.True(t, ok)

	c.put(k3, p3)
	assert.Equal(t, 2, c.len())

	_, ok = c.get(k2)
	assert.False(t, ok, "least recently used entry must be evicted")
	_, ok = c.get(k1)
	assert.True(t, ok)
	_, ok = c.get(k3)
	assert.True(t, ok)
}

func TestProgramCache_PutExistingRefreshes(t *testing.T) {
	c := newProgramCache(1)
	k, p := compileFor(t, "x")
	c.put(k, p)
	c.put(k, p)
	assert.Equal(t, 1, c.len())
}

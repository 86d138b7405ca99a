package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramblebt/bramble/pkg/blackboard"
	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/node"
	"github.com/bramblebt/bramble/pkg/registry"
	"github.com/bramblebt/bramble/pkg/script"
)

func TestDefault_BuiltinCatalog(t *testing.T) {
	reg := registry.Default()

	for _, typ := range []string{
		"Sequence", "Fallback", "Parallel",
		"Inverter", "RetryUntilSuccessful", "Repeat",
		"ForceSuccess", "ForceFailure", "RunOnce",
		"Script", "ScriptCondition",
		"AlwaysSuccess", "AlwaysFailure", "Sleep",
	} {
		_, ok := reg.Lookup(typ)
		assert.True(t, ok, "builtin %s missing", typ)
	}

	assert.Contains(t, reg.Types(), "Sequence")
}

func TestRegister_OverwriteAndBuild(t *testing.T) {
	reg := registry.New()
	reg.RegisterAction("Ping", nil, func(*node.Config) (domain.Status, error) {
		return domain.StatusSuccess, nil
	})

	n, err := reg.Build("Ping", "ping1", node.NewConfig(blackboard.New()), nil)
	require.NoError(t, err)
	assert.Equal(t, "ping1", n.Name())
	assert.Equal(t, domain.CategoryAction, n.Category())

	// Re-registering replaces the previous builder.
	reg.RegisterCondition("Ping", nil, func(*node.Config) (domain.Status, error) {
		return domain.StatusFailure, nil
	})
	m, ok := reg.Lookup("Ping")
	require.True(t, ok)
	assert.Equal(t, domain.CategoryCondition, m.Category)

	_, err = reg.Build("Nope", "x", node.NewConfig(blackboard.New()), nil)
	var buildErr *domain.BuildError
	assert.ErrorAs(t, err, &buildErr)
}

func TestBuiltin_ScriptLeaves(t *testing.T) {
	reg := registry.Default()
	bb := blackboard.New()
	require.NoError(t, bb.Set("x", 4))

	cfg := node.NewConfig(bb)
	cfg.Evaluator = script.New()
	m, _ := reg.Lookup("ScriptCondition")
	cfg.Manifest = m.Ports
	cfg.InputPorts = map[string]string{"code": "x > 3"}

	n, err := reg.Build("ScriptCondition", "check", cfg, nil)
	require.NoError(t, err)
	st, err := node.ExecuteTick(n)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, st)

	// Falsy evaluation fails the condition.
	require.NoError(t, bb.Set("x", 2))
	n.Halt()
	st, err = node.ExecuteTick(n)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailure, st)

	// Script without an evaluator is a port error.
	cfg2 := node.NewConfig(bb)
	cfg2.Manifest = m.Ports
	cfg2.InputPorts = map[string]string{"code": "x"}
	n2, err := reg.Build("Script", "run", cfg2, nil)
	require.NoError(t, err)
	_, err = node.ExecuteTick(n2)
	var portErr *domain.PortError
	assert.ErrorAs(t, err, &portErr)
}

func TestBuiltin_ParallelParamsDecoding(t *testing.T) {
	reg := registry.Default()
	cfg := node.NewConfig(blackboard.New())
	cfg.Params = map[string]any{"success_threshold": 1, "failure_threshold": 2}

	children := []node.Node{
		node.NewAction("a", node.NewConfig(blackboard.New()), func(*node.Config) (domain.Status, error) {
			return domain.StatusSuccess, nil
		}),
		node.NewAction("b", node.NewConfig(blackboard.New()), func(*node.Config) (domain.Status, error) {
			return domain.StatusFailure, nil
		}),
	}

	n, err := reg.Build("Parallel", "par", cfg, children)
	require.NoError(t, err)

	st, err := node.ExecuteTick(n)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, st)

	// Out-of-range thresholds are rejected at build time.
	cfg2 := node.NewConfig(blackboard.New())
	cfg2.Params = map[string]any{"success_threshold": 5}
	_, err = reg.Build("Parallel", "par", cfg2, children)
	var buildErr *domain.BuildError
	assert.ErrorAs(t, err, &buildErr)
}

package bramble_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramblebt/bramble"
	"github.com/bramblebt/bramble/pkg/blackboard"
	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/node"
)

// crossDoorDoc models the classic door scenario: walk through if open,
// otherwise retry opening it (picking the lock as a fallback), then enter.
const crossDoorDoc = `
root: main
trees:
  - id: main
    root:
      type: Sequence
      name: cross_door
      children:
        - type: Fallback
          children:
            - {type: IsDoorOpen}
            - type: RetryUntilSuccessful
              params:
                num_attempts: 3
              child: {type: PickLock}
        - type: WalkThrough
          on_success: "inside := true"
`

type doorWorld struct {
	open     bool
	pickTry  int
	walkedIn bool
}

func registerDoor(f *bramble.Factory, w *doorWorld) {
	f.RegisterCondition("IsDoorOpen", nil, func(*node.Config) (domain.Status, error) {
		if w.open {
			return domain.StatusSuccess, nil
		}
		return domain.StatusFailure, nil
	})
	f.RegisterAction("PickLock", nil, func(*node.Config) (domain.Status, error) {
		w.pickTry++
		if w.pickTry >= 2 {
			w.open = true
			return domain.StatusSuccess, nil
		}
		return domain.StatusFailure, nil
	})
	f.RegisterAction("WalkThrough", nil, func(*node.Config) (domain.Status, error) {
		if !w.open {
			return domain.StatusFailure, nil
		}
		w.walkedIn = true
		return domain.StatusSuccess, nil
	})
}

func TestFactory_Integration(t *testing.T) {
	f := bramble.New()
	world := &doorWorld{}
	registerDoor(f, world)

	tr, err := f.CreateTreeFromText([]byte(crossDoorDoc))
	require.NoError(t, err)

	status, err := bramble.NewRunner().Run(context.Background(), tr)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, status)

	assert.True(t, world.walkedIn)
	assert.Equal(t, 2, world.pickTry, "lock picking succeeds on the second attempt")

	// The on_success postcondition wrote through the root scope.
	inside, err := blackboard.Get[bool](tr.Blackboard(), "inside")
	require.NoError(t, err)
	assert.True(t, inside)
}

func TestFactory_CreateTreeFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "door.yaml")
	require.NoError(t, os.WriteFile(path, []byte(crossDoorDoc), 0o644))

	f := bramble.New()
	registerDoor(f, &doorWorld{open: true})

	tr, err := f.CreateTreeFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "door.yaml", f.Name)

	st, err := tr.TickOnce()
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, st)
}

func TestFactory_BuildErrorsSurface(t *testing.T) {
	f := bramble.New()

	_, err := f.CreateTreeFromText([]byte(`
trees:
  - id: main
    root: {type: UnregisteredThing}
`))
	var buildErr *domain.BuildError
	assert.ErrorAs(t, err, &buildErr)

	_, err = f.CreateTreeFromText([]byte(`not: [valid`))
	assert.Error(t, err)
}

func TestRunner_ContextCancellation(t *testing.T) {
	f := bramble.New()
	f.RegisterAction("Forever", nil, func(*node.Config) (domain.Status, error) {
		return domain.StatusRunning, nil
	})

	tr, err := f.CreateTreeFromText([]byte(`
trees:
  - id: main
    root: {type: Forever}
`))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st, err := bramble.NewRunner().Run(ctx, tr)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.StatusIdle, st)
}

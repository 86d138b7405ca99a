package trace_test

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/trace"
)

func sampleTransitions() []domain.Transition {
	return []domain.Transition{
		{Timestamp: time.Now().UTC(), UID: 1, Name: "root", Category: domain.CategoryControl,
			Prev: domain.StatusIdle, Next: domain.StatusRunning},
		{Timestamp: time.Now().UTC(), UID: 2, Name: "open_door", Category: domain.CategoryAction,
			Prev: domain.StatusIdle, Next: domain.StatusSuccess},
		{Timestamp: time.Now().UTC(), UID: 1, Name: "root", Category: domain.CategoryControl,
			Prev: domain.StatusRunning, Next: domain.StatusSuccess},
	}
}

func TestFileLogger_WritesOneLinePerTransition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.ndjson")
	fl, err := trace.NewFileLogger(path)
	require.NoError(t, err)

	events := sampleTransitions()
	for _, tr := range events {
		fl.Record(tr)
	}
	require.NoError(t, fl.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var got domain.Transition
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &got))
		assert.Equal(t, events[lines].Name, got.Name)
		assert.Equal(t, events[lines].Next, got.Next)
		lines++
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, len(events), lines)
	assert.Zero(t, fl.DroppedWrites())
}

func TestBoltLogger_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")
	bl, err := trace.NewBoltLogger(path)
	require.NoError(t, err)
	session := bl.Session()
	require.NotEmpty(t, session)

	events := sampleTransitions()
	for _, tr := range events {
		bl.Record(tr)
	}
	require.NoError(t, bl.Close())
	assert.Zero(t, bl.Dropped())

	got, err := trace.ReadSession(path, session)
	require.NoError(t, err)
	require.Len(t, got, len(events))
	for i := range events {
		assert.Equal(t, events[i].UID, got[i].UID)
		assert.Equal(t, events[i].Name, got[i].Name)
		assert.Equal(t, events[i].Next, got[i].Next)
	}

	// Unknown sessions read back empty.
	none, err := trace.ReadSession(path, "no-such-session")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBoltLogger_SessionsAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")

	first, err := trace.NewBoltLogger(path)
	require.NoError(t, err)
	first.Record(sampleTransitions()[0])
	require.NoError(t, first.Close())

	second, err := trace.NewBoltLogger(path)
	require.NoError(t, err)
	second.Record(sampleTransitions()[1])
	second.Record(sampleTransitions()[2])
	require.NoError(t, second.Close())

	require.NotEqual(t, first.Session(), second.Session())

	got, err := trace.ReadSession(path, second.Session())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestMetrics_CountsTransitionsAndTicks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := trace.NewMetrics(reg)
	require.NoError(t, err)

	for _, tr := range sampleTransitions() {
		m.Record(tr)
	}
	m.ObserveTick(5 * time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	found := map[string]bool{}
	for _, mf := range families {
		found[mf.GetName()] = true
		if mf.GetName() == "bramble_transitions_total" {
			var total float64
			for _, metric := range mf.GetMetric() {
				total += metric.GetCounter().GetValue()
			}
			assert.Equal(t, float64(3), total)
		}
	}
	assert.True(t, found["bramble_transitions_total"])
	assert.True(t, found["bramble_tick_duration_seconds"])
}

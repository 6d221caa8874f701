package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimingSinkSummary(t *testing.T) {
	sink := NewTimingSink()
	sink.End(Event{Name: "pool", Elapsed: 250 * time.Millisecond})
	sink.End(Event{Name: "pool", Elapsed: 750 * time.Millisecond})
	sink.End(Event{Name: "load", Elapsed: 100 * time.Millisecond})

	stats := sink.Summary()
	require.Len(t, stats, 2)

	// Sorted by name.
	assert.Equal(t, "load", stats[0].Name)
	assert.Equal(t, "pool", stats[1].Name)

	pool := stats[1]
	assert.Equal(t, 2, pool.Count)
	assert.Equal(t, 500*time.Millisecond, pool.Mean)
	assert.Equal(t, 250*time.Millisecond, pool.Min)
	assert.Equal(t, 750*time.Millisecond, pool.Max)
	assert.InDelta(t, 0.3535, pool.Std.Seconds(), 0.001)

	load := stats[0]
	assert.Equal(t, 1, load.Count)
	assert.Equal(t, time.Duration(0), load.Std)
}

func TestTimingSinkCollectsFromScopes(t *testing.T) {
	sink := NewTimingSink()
	prev := Install(Current().WithCallback(sink))
	defer Install(prev)

	s := Enter("step")
	require.NoError(t, s.Exit())

	stats := sink.Summary()
	require.Len(t, stats, 1)
	assert.Equal(t, "step", stats[0].Name)
	assert.Equal(t, 1, stats[0].Count)
	assert.GreaterOrEqual(t, stats[0].Mean, time.Duration(0))
}

package profiler

import (
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TimingSink aggregates scope durations by name. It is safe for
// concurrent use by callbacks firing from multiple goroutines.
type TimingSink struct {
	mu      sync.Mutex
	samples map[string][]float64 // seconds
}

// NewTimingSink returns an empty sink.
func NewTimingSink() *TimingSink {
	return &TimingSink{samples: make(map[string][]float64)}
}

// Begin is a no-op; durations are known only at scope end.
func (ts *TimingSink) Begin(Event) {}

// End records the scope duration under the scope name.
func (ts *TimingSink) End(ev Event) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.samples[ev.Name] = append(ts.samples[ev.Name], ev.Elapsed.Seconds())
}

// TimingStats summarizes the recorded durations of one scope name.
type TimingStats struct {
	Name  string
	Count int
	Mean  time.Duration
	Std   time.Duration
	Min   time.Duration
	Max   time.Duration
}

// Summary returns per-name duration statistics sorted by name.
func (ts *TimingSink) Summary() []TimingStats {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	out := make([]TimingStats, 0, len(ts.samples))
	for name, secs := range ts.samples {
		st := TimingStats{
			Name:  name,
			Count: len(secs),
			Mean:  seconds(stat.Mean(secs, nil)),
			Min:   seconds(floats.Min(secs)),
			Max:   seconds(floats.Max(secs)),
		}
		if len(secs) > 1 {
			st.Std = seconds(stat.StdDev(secs, nil))
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

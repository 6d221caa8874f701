// Copyright 2025 Stride ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package profiler provides the public profiling API for the Stride
// framework.
//
// Profiling scopes bracket named regions of work. Entering a scope fires
// the Begin callbacks of the installed context; exiting fires End with
// the elapsed time. For asynchronous work, ExitOnComplete defers a
// scope's exit until a future resolves, so the timeline reflects when
// the work actually finished.
//
// Example:
//
//	sink := profiler.NewTimingSink()
//	prev := profiler.Install(profiler.Current().WithCallback(sink))
//	defer profiler.Install(prev)
//
//	s := profiler.Enter("train.step")
//	step()
//	s.MustExit()
//
//	for _, st := range sink.Summary() {
//	    fmt.Printf("%s: mean %v over %d calls\n", st.Name, st.Mean, st.Count)
//	}
package profiler

import (
	"log/slog"

	"github.com/stride-ml/stride/internal/future"
	"github.com/stride-ml/stride/internal/profiler"
)

// Type aliases for public API

// Event carries the details of a scope transition to callbacks.
type Event = profiler.Event

// Callback receives scope begin and end events.
type Callback = profiler.Callback

// Context is an immutable set of callbacks and labels.
type Context = profiler.Context

// Scope tracks one named profiling region.
type Scope = profiler.Scope

// State is the lifecycle position of a scope.
type State = profiler.State

// Scope lifecycle states.
const (
	Unstarted State = profiler.Unstarted
	Active    State = profiler.Active
	Ended     State = profiler.Ended
)

// TimingSink aggregates scope durations by name.
type TimingSink = profiler.TimingSink

// TimingStats summarizes the samples recorded for one scope name.
type TimingStats = profiler.TimingStats

// LogCallback writes scope events to a structured logger.
type LogCallback = profiler.LogCallback

// Context functions

// Current returns the installed profiling context.
func Current() *Context {
	return profiler.Current()
}

// Install makes ctx the installed profiling context and returns the
// previous one so callers can restore it.
func Install(ctx *Context) *Context {
	return profiler.Install(ctx)
}

// Scope functions

// NewScope creates a scope in the Unstarted state.
func NewScope(name string) *Scope {
	return profiler.NewScope(name)
}

// Enter creates a scope and immediately activates it.
//
// Example:
//
//	s := profiler.Enter("ops.adaptive_avg_pool2d")
//	defer s.MustExit()
func Enter(name string) *Scope {
	return profiler.Enter(name)
}

// ExitOnComplete defers s's exit until f resolves. The returned future
// resolves with f's result after the scope has ended, under the
// profiling context that was installed when the bridge was created.
func ExitOnComplete[T any](s *Scope, f *future.Future[T]) *future.Future[T] {
	return profiler.ExitOnComplete(s, f)
}

// Sink constructors

// NewTimingSink creates an empty timing aggregator.
func NewTimingSink() *TimingSink {
	return profiler.NewTimingSink()
}

// NewLogCallback creates a callback that logs scope events through l.
// A nil logger falls back to slog.Default.
func NewLogCallback(l *slog.Logger) *LogCallback {
	return profiler.NewLogCallback(l)
}

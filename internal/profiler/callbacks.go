// Package profiler instruments bounded intervals of execution with
// begin/end callbacks. A Scope marks one interval; callbacks attached
// to the installed diagnostic Context receive an Event when the scope
// is entered and another when it exits. Scopes are reference-counted
// so they can outlive the frame that created them and be closed from
// an asynchronous continuation.
package profiler

import (
	"time"

	"github.com/google/uuid"
)

// Event is the payload delivered to callbacks at scope boundaries.
type Event struct {
	// ScopeID identifies the scope across its begin and end events.
	ScopeID uuid.UUID
	// Name is the scope name passed to Enter.
	Name string
	// Time is when the boundary was crossed.
	Time time.Time
	// Elapsed is the scope duration. Zero for begin events.
	Elapsed time.Duration
	// Labels carries the attribution labels of the context the event
	// fired under. Callbacks must not mutate it.
	Labels map[string]string
}

// Callback observes scope boundaries.
type Callback interface {
	Begin(Event)
	End(Event)
}

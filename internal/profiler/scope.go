package profiler

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/stride-ml/stride/internal/errdefs"
)

// State is a scope's position in its lifecycle.
type State int32

const (
	Unstarted State = iota
	Active
	Ended
)

func (s State) String() string {
	switch s {
	case Unstarted:
		return "Unstarted"
	case Active:
		return "Active"
	case Ended:
		return "Ended"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Scope is one reference-counted profiling interval. It moves through
// Unstarted, Active and Ended exactly once, firing the installed
// context's Begin callbacks on Enter and its End callbacks on Exit.
// Exit out of order is a contract violation and reports ErrInternal.
type Scope struct {
	id    uuid.UUID
	name  string
	state atomic.Int32
	refs  atomic.Int32
	start time.Time
}

// NewScope allocates an Unstarted scope holding one reference.
func NewScope(name string) *Scope {
	s := &Scope{id: uuid.New(), name: name}
	s.refs.Store(1)
	return s
}

// Enter allocates a scope and immediately activates it.
func Enter(name string) *Scope {
	s := NewScope(name)
	// A fresh scope always activates cleanly.
	_ = s.Enter()
	return s
}

// ID returns the scope's unique identifier.
func (s *Scope) ID() uuid.UUID { return s.id }

// Name returns the scope name.
func (s *Scope) Name() string { return s.name }

// State returns the scope's current lifecycle state.
func (s *Scope) State() State { return State(s.state.Load()) }

// Enter transitions the scope from Unstarted to Active, records the
// start timestamp and fires the installed context's Begin callbacks.
func (s *Scope) Enter() error {
	if !s.state.CompareAndSwap(int32(Unstarted), int32(Active)) {
		return fmt.Errorf("%w: scope %q already entered", errdefs.ErrInternal, s.name)
	}
	s.start = time.Now()
	Current().begin(Event{ScopeID: s.id, Name: s.name, Time: s.start})
	return nil
}

// Exit transitions the scope from Active to Ended and fires the
// installed context's End callbacks exactly once. Exiting a scope that
// was never entered, or exiting twice, reports ErrInternal.
func (s *Scope) Exit() error {
	if !s.state.CompareAndSwap(int32(Active), int32(Ended)) {
		if s.State() == Unstarted {
			return fmt.Errorf("%w: scope %q must be entered before exit", errdefs.ErrInternal, s.name)
		}
		return fmt.Errorf("%w: scope %q already exited", errdefs.ErrInternal, s.name)
	}
	now := time.Now()
	Current().end(Event{ScopeID: s.id, Name: s.name, Time: now, Elapsed: now.Sub(s.start)})
	return nil
}

// MustExit is Exit for call sites where an out-of-order exit is
// unrecoverable.
func (s *Scope) MustExit() {
	if err := s.Exit(); err != nil {
		panic(err)
	}
}

// Retain adds a reference and returns the scope for chaining.
func (s *Scope) Retain() *Scope {
	if s.refs.Add(1) <= 1 {
		panic(fmt.Sprintf("profiler: retain of released scope %q", s.name))
	}
	return s
}

// Release drops a reference. Releasing more times than retained is a
// contract violation.
func (s *Scope) Release() {
	if s.refs.Add(-1) < 0 {
		panic(fmt.Sprintf("profiler: release of released scope %q", s.name))
	}
}

// Alive reports whether any reference to the scope remains.
func (s *Scope) Alive() bool {
	return s.refs.Load() > 0
}

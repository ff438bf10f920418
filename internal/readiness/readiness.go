// Package readiness implements the cross-process signal that tells the
// operator whether the service is listening.
//
// The signal is a named manual-reset event. Its three observable states are
// derived from whether the name exists and whether the event is set:
//
//	name absent          Absent
//	exists, not set      Starting
//	exists, set          Ready
//
// The service owns the event for its whole lifetime (Create, MarkReady,
// Close). The operator only ever observes it (Observe) and never creates it.
package readiness

import (
	"errors"
	"fmt"
	"sync"
)

// DefaultName is the well-known event name shared by both sides.
const DefaultName = "WebMapServiceReadyEvent"

var (
	// ErrAlreadyRunning is returned by Create when another service instance
	// already owns the name.
	ErrAlreadyRunning = errors.New("readiness: server already started")
	// ErrAbsent is returned by Namespace.Open when the name does not exist.
	ErrAbsent = errors.New("readiness: signal absent")
)

// State is the observable state of the signal.
type State int

const (
	Absent State = iota
	Starting
	Ready
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Starting:
		return "starting"
	case Ready:
		return "ready"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Event is an owned handle to a named event.
type Event interface {
	Set() error
	Reset() error
	Close() error
}

// Handle is an observe-only handle to a named event.
type Handle interface {
	IsSet() (bool, error)
	Close() error
}

// Namespace creates and opens named events.
type Namespace interface {
	// Create makes a new unset event. It returns ErrAlreadyRunning when the
	// name already exists.
	Create(name string) (Event, error)
	// Open returns an observe-only handle, or ErrAbsent when the name does not exist.
	Open(name string) (Handle, error)
}

// Signal is the service side of the readiness signal.
type Signal struct {
	name string

	mu     sync.Mutex
	ev     Event
	closed bool
}

// Create claims name in ns. The signal starts in the Starting state.
func Create(ns Namespace, name string) (*Signal, error) {
	ev, err := ns.Create(name)
	if err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			return nil, err
		}
		return nil, fmt.Errorf("readiness: create %q: %w", name, err)
	}
	return &Signal{name: name, ev: ev}, nil
}

// Name returns the event name.
func (s *Signal) Name() string { return s.name }

// MarkReady moves the signal to Ready.
func (s *Signal) MarkReady() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("readiness: %q: closed", s.name)
	}
	if err := s.ev.Set(); err != nil {
		return fmt.Errorf("readiness: set %q: %w", s.name, err)
	}
	return nil
}

// Close resets the event and releases the name, so a later Observe sees
// Absent rather than a stale Ready. Close is idempotent.
func (s *Signal) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	rerr := s.ev.Reset()
	cerr := s.ev.Close()
	if rerr != nil {
		return fmt.Errorf("readiness: reset %q: %w", s.name, rerr)
	}
	if cerr != nil {
		return fmt.Errorf("readiness: close %q: %w", s.name, cerr)
	}
	return nil
}

// Observe checks the signal. Any failure to open or query it reads as Absent.
func Observe(ns Namespace, name string) State {
	h, err := ns.Open(name)
	if err != nil {
		return Absent
	}
	defer h.Close()
	set, err := h.IsSet()
	switch {
	case err != nil:
		return Absent
	case set:
		return Ready
	default:
		return Starting
	}
}

package readiness

import "sync"

// MemoryNamespace is a process-local Namespace. The real event namespace is
// only available on Windows; this one backs tests and non-Windows builds.
type MemoryNamespace struct {
	mu     sync.Mutex
	events map[string]*memEvent
}

// NewMemoryNamespace returns an empty namespace.
func NewMemoryNamespace() *MemoryNamespace {
	return &MemoryNamespace{events: map[string]*memEvent{}}
}

type memEvent struct {
	ns   *MemoryNamespace
	name string
	set  bool
	refs int
}

func (ns *MemoryNamespace) Create(name string) (Event, error) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	if _, ok := ns.events[name]; ok {
		return nil, ErrAlreadyRunning
	}
	ev := &memEvent{ns: ns, name: name, refs: 1}
	ns.events[name] = ev
	return ev, nil
}

func (ns *MemoryNamespace) Open(name string) (Handle, error) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	ev, ok := ns.events[name]
	if !ok {
		return nil, ErrAbsent
	}
	ev.refs++
	return &memHandle{ev: ev}, nil
}

// release drops a reference; the name disappears with the last one, as a
// kernel object does.
func (ns *MemoryNamespace) release(ev *memEvent) {
	ev.refs--
	if ev.refs == 0 && ns.events[ev.name] == ev {
		delete(ns.events, ev.name)
	}
}

func (ev *memEvent) Set() error {
	ev.ns.mu.Lock()
	ev.set = true
	ev.ns.mu.Unlock()
	return nil
}

func (ev *memEvent) Reset() error {
	ev.ns.mu.Lock()
	ev.set = false
	ev.ns.mu.Unlock()
	return nil
}

func (ev *memEvent) Close() error {
	ev.ns.mu.Lock()
	defer ev.ns.mu.Unlock()
	ev.ns.release(ev)
	return nil
}

type memHandle struct {
	ev     *memEvent
	closed bool
}

func (h *memHandle) IsSet() (bool, error) {
	h.ev.ns.mu.Lock()
	defer h.ev.ns.mu.Unlock()
	return h.ev.set, nil
}

func (h *memHandle) Close() error {
	h.ev.ns.mu.Lock()
	defer h.ev.ns.mu.Unlock()
	if !h.closed {
		h.closed = true
		h.ev.ns.release(h.ev)
	}
	return nil
}

// Package poller runs the operator-side loop that watches the readiness
// signal and pulls snapshots from the service into a shared cache.
package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/joshuapare/webmap/internal/readiness"
	"github.com/joshuapare/webmap/internal/wire"
)

// Status texts shown to the operator.
const (
	StatusWaiting     = "waiting..."
	StatusStopped     = "server has stopped"
	StatusStarting    = "wait for server ready"
	StatusRunning     = "server is running"
	StatusInvalid     = "invalid data"
	StatusUnknownType = "invalid data: unknown type"
	StatusErrorPrefix = "error: "
)

// DefaultInterval is the poll period.
const DefaultInterval = 3 * time.Second

// Options configures a Poller.
type Options struct {
	Interval   time.Duration
	Namespace  readiness.Namespace
	SignalName string
	Logger     *zap.Logger
}

// Poller owns the poll loop. Only one goroutine may call Run or Cycle at a
// time; Status, Stop and the cache are safe from any goroutine.
type Poller struct {
	fetch    Fetcher
	ns       readiness.Namespace
	signal   string
	interval time.Duration
	log      *zap.Logger
	cache    *Cache

	mu      sync.Mutex
	status  string
	started bool

	stopped atomic.Bool
}

// New returns a poller pulling from f.
func New(f Fetcher, opts Options) *Poller {
	p := &Poller{
		fetch:    f,
		ns:       opts.Namespace,
		signal:   opts.SignalName,
		interval: opts.Interval,
		log:      opts.Logger,
		cache:    &Cache{},
		status:   StatusWaiting,
	}
	if p.ns == nil {
		p.ns = readiness.System
	}
	if p.signal == "" {
		p.signal = readiness.DefaultName
	}
	if p.interval <= 0 {
		p.interval = DefaultInterval
	}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	return p
}

// Cache returns the shared feature cache.
func (p *Poller) Cache() *Cache { return p.cache }

// Status returns the current status text.
func (p *Poller) Status() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// SetStatus overrides the status text. Background tasks such as injection
// report their outcome through it.
func (p *Poller) SetStatus(s string) {
	p.mu.Lock()
	p.status = s
	p.mu.Unlock()
}

// Started reports whether the service has been seen ready since it was last
// seen absent.
func (p *Poller) Started() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}

// Stop asks Run to return before its next cycle.
func (p *Poller) Stop() { p.stopped.Store(true) }

// Stopped reports whether Stop was called.
func (p *Poller) Stopped() bool { return p.stopped.Load() }

// Run cycles until Stop is called or ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		if p.stopped.Load() {
			return nil
		}
		p.Cycle(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

// Cycle performs one poll: check readiness, fetch when ready, and install
// the parsed features. The cache changes only on a well-formed payload.
func (p *Poller) Cycle(ctx context.Context) readiness.State {
	state := readiness.Observe(p.ns, p.signal)
	switch state {
	case readiness.Absent:
		p.mu.Lock()
		if p.started {
			p.status = StatusStopped
			p.started = false
		}
		p.mu.Unlock()
		return state
	case readiness.Starting:
		p.SetStatus(StatusStarting)
		return state
	}

	p.mu.Lock()
	if !p.started {
		p.started = true
		p.status = StatusRunning
	}
	p.mu.Unlock()

	data, err := p.fetch.Fetch(ctx)
	if err != nil || len(data) == 0 {
		// Unreachable and reachable-but-empty look the same: try again later.
		p.log.Debug("empty fetch", zap.Error(err))
		return state
	}

	features, err := wire.Decode(data)
	if err != nil {
		p.SetStatus(statusFor(err))
		p.log.Debug("payload rejected", zap.Error(err))
		return state
	}
	p.cache.Replace(features)
	p.SetStatus(StatusRunning)
	return state
}

func statusFor(err error) string {
	var re *wire.RemoteError
	switch {
	case errors.As(err, &re):
		return StatusErrorPrefix + re.Msg
	case errors.Is(err, wire.ErrUnknownType):
		return StatusUnknownType
	}
	return StatusInvalid
}

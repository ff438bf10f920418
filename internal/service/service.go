// Package service is the listener that runs inside the target process. It
// serves snapshots over HTTP and marks the readiness signal once the
// listener is up.
package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/webmap/internal/config"
	"github.com/joshuapare/webmap/internal/extract"
	"github.com/joshuapare/webmap/internal/readiness"
)

// ErrSetup wraps failures that keep the service from listening.
var ErrSetup = errors.New("service: setup failed")

const (
	defaultMaxConns = 64
	shutdownTimeout = 5 * time.Second
)

// Options configures a Server.
type Options struct {
	Config config.Config
	// Dir is the service module's directory: default web root and dump location.
	Dir    string
	Logger *zap.Logger
	// MaxConns caps concurrent connections.
	MaxConns int
	// Listen replaces net.Listen.
	Listen func(network, addr string) (net.Listener, error)
	// OnWarning receives problems worth showing to the user that do not stop
	// the service, such as a missing web root.
	OnWarning func(msg string)
}

// Server serves one extractor.
type Server struct {
	ex   *extract.Extractor
	opts Options
	log  *zap.Logger
	mux  *http.ServeMux

	addr     atomic.Pointer[net.Addr]
	stop     chan struct{}
	stopOnce sync.Once
}

// New returns a server for ex.
func New(ex *extract.Extractor, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxConns <= 0 {
		opts.MaxConns = defaultMaxConns
	}
	if opts.Listen == nil {
		opts.Listen = net.Listen
	}
	s := &Server{ex: ex, opts: opts, log: opts.Logger, stop: make(chan struct{})}
	s.mux = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.mux }

// Addr returns the bound address once the server is listening.
func (s *Server) Addr() net.Addr {
	if a := s.addr.Load(); a != nil {
		return *a
	}
	return nil
}

// Stop ends Run. It is safe to call more than once and from handlers.
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Server) warn(msg string, fields ...zap.Field) {
	s.log.Warn(msg, fields...)
	if s.opts.OnWarning != nil {
		s.opts.OnWarning(msg)
	}
}

// Run listens, marks sig ready and serves until Stop is called or ctx is
// done. sig is the signal claimed at startup; Run resets and releases it
// before returning, on every path.
func (s *Server) Run(ctx context.Context, sig *readiness.Signal) error {
	defer func() {
		if err := sig.Close(); err != nil {
			s.log.Warn("readiness signal not released", zap.Error(err))
		}
	}()

	addr := s.opts.Config.ListenAddr()
	ln, err := s.opts.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: listen on %s: %w", ErrSetup, addr, err)
	}
	ln = netutil.LimitListener(ln, s.opts.MaxConns)
	bound := ln.Addr()
	s.addr.Store(&bound)

	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(s.log),
	}

	if err := sig.MarkReady(); err != nil {
		ln.Close()
		return fmt.Errorf("%w: %w", ErrSetup, err)
	}
	s.log.Info("service listening", zap.Stringer("addr", bound))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-s.stop:
		}
		s.log.Info("service stopping")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	err = g.Wait()
	s.log.Info("service stopped", zap.Error(err))
	return err
}

func (s *Server) webRoot() (string, bool) {
	if s.opts.Config.APIOnly {
		return "", false
	}
	root := s.opts.Config.WebRoot(s.opts.Dir)
	if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
		s.warn(root+" does not exist", zap.String("root", root))
		return "", false
	}
	s.log.Info("serving web root", zap.String("root", root))
	return root, true
}

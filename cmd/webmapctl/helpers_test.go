package main

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/joshuapare/webmap/internal/config"
	"github.com/joshuapare/webmap/internal/inject"
	"github.com/joshuapare/webmap/internal/readiness"
)

// resetGlobals restores flags and replaceable hooks after a test.
func resetGlobals(t *testing.T) {
	t.Helper()
	origFind, origInject, origOpen, origNS := findProcess, injectOS, openTarget, namespace
	cfg = config.Default()
	quiet, verbose, jsonOut, debug = false, false, false, false
	t.Cleanup(func() {
		findProcess, injectOS, openTarget, namespace = origFind, origInject, origOpen, origNS
		cfg = config.Default()
		quiet, verbose, jsonOut, debug = false, false, false, false
		injectPID, injectModule = 0, ""
		fetchDirect, fetchPID = false, 0
		dumpDirect, dumpPID = false, 0
		watchPID, watchModule = 0, ""
	})
	namespace = readiness.NewMemoryNamespace()
}

// serveAPI starts a fake service and points cfg at it.
func serveAPI(t *testing.T, h http.Handler) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	host, port, err := net.SplitHostPort(strings.TrimPrefix(srv.URL, "http://"))
	if err != nil {
		t.Fatalf("bad test server url %s: %v", srv.URL, err)
	}
	cfg.IP = host
	cfg.Port, _ = strconv.Atoi(port)
	cfg.FetchTimeoutMS = 2000
	return srv
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	// Drain concurrently so large outputs cannot fill the pipe.
	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	return string(<-done), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// fakeOS succeeds at every step and records the remote writes.
type fakeOS struct {
	pid    uint32
	writes [][]byte
}

func (o *fakeOS) EnableDebugPrivilege() error { return nil }
func (o *fakeOS) LoaderAddress() (uint64, error) {
	return 0x7FFE_0000_1000, nil
}
func (o *fakeOS) OpenProcess(pid uint32) (inject.Process, error) {
	o.pid = pid
	return &fakeProcess{os: o}, nil
}

type fakeProcess struct{ os *fakeOS }

func (p *fakeProcess) Alloc(int) (uint64, error) { return 0x1000_0000, nil }
func (p *fakeProcess) Write(_ uint64, data []byte) error {
	p.os.writes = append(p.os.writes, append([]byte(nil), data...))
	return nil
}
func (p *fakeProcess) StartThread(uint64) (inject.Thread, error) { return fakeThread{}, nil }
func (p *fakeProcess) Free(uint64) error                         { return nil }
func (p *fakeProcess) Close() error                              { return nil }

type fakeThread struct{}

func (fakeThread) Wait(time.Duration) (bool, error) { return true, nil }
func (fakeThread) ExitCode() (uint32, error)        { return 1, nil }
func (fakeThread) Close() error                     { return nil }

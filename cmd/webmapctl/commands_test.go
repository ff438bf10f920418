package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/webmap/internal/entity"
	"github.com/joshuapare/webmap/internal/inject"
	"github.com/joshuapare/webmap/internal/memory"
	"github.com/joshuapare/webmap/internal/procfind"
	"github.com/joshuapare/webmap/internal/readiness"
	"github.com/joshuapare/webmap/internal/service"
	"github.com/joshuapare/webmap/internal/testutil"
	"github.com/joshuapare/webmap/internal/version"
	"github.com/joshuapare/webmap/internal/wire"
)

const okPayload = `{"status":"ok","type":"FeatureCollection","features":[{"type":"Feature","properties":{"type":5,"index":3,"color":[255,0,0,255],"text":"Pioneer"},"geometry":{"type":"Point","coordinates":[1.0,2.0,3.0]}}]}`

func reply200(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}
}

func TestFindCommand(t *testing.T) {
	tests := []struct {
		name        string
		json        bool
		wantContain []string
	}{
		{"text", false, []string{"4242"}},
		{"json", true, []string{`"pid": 4242`, `"process": "FactoryGame-Win64-Shipping.exe"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetGlobals(t)
			jsonOut = tt.json
			findProcess = func(name string) (uint32, error) {
				assert.Equal(t, cfg.ProcessName, name)
				return 4242, nil
			}
			output, err := captureOutput(t, runFind)
			require.NoError(t, err)
			if tt.json {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestFindCommand_NotFound(t *testing.T) {
	resetGlobals(t)
	findProcess = func(string) (uint32, error) { return 0, procfind.ErrNotFound }
	_, err := captureOutput(t, runFind)
	assert.ErrorIs(t, err, procfind.ErrNotFound)
}

func TestModulePath(t *testing.T) {
	resetGlobals(t)
	dir := t.TempDir()
	module := filepath.Join(dir, "webmapsvc.dll")
	require.NoError(t, os.WriteFile(module, []byte("MZ"), 0o644))

	got, err := modulePath(module)
	require.NoError(t, err)
	assert.Equal(t, module, got)

	_, err = modulePath(filepath.Join(dir, "other.dll"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "missing dll")

	// Default lookup falls back to the working directory.
	t.Chdir(dir)
	got, err = modulePath("")
	require.NoError(t, err)
	assert.Equal(t, "webmapsvc.dll", filepath.Base(got))
	assert.True(t, filepath.IsAbs(got))
}

func TestInjectCommand(t *testing.T) {
	resetGlobals(t)
	module := filepath.Join(t.TempDir(), "webmapsvc.dll")
	require.NoError(t, os.WriteFile(module, []byte("MZ"), 0o644))
	fos := &fakeOS{}
	injectOS = fos
	findProcess = func(string) (uint32, error) { return 77, nil }
	injectModule = module

	output, err := captureOutput(t, runInject)
	require.NoError(t, err)
	assertContains(t, output, []string{module, "process 77"})
	assert.Equal(t, uint32(77), fos.pid)
	require.Len(t, fos.writes, 2, "path then loader stub")
}

func TestInjectCommand_MissingModule(t *testing.T) {
	resetGlobals(t)
	injectOS = &fakeOS{}
	findProcess = func(string) (uint32, error) {
		t.Fatal("process lookup must not run without a module")
		return 0, nil
	}
	injectModule = filepath.Join(t.TempDir(), "absent.dll")

	_, err := captureOutput(t, runInject)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestInjectCommand_ExplicitPIDSkipsLookup(t *testing.T) {
	resetGlobals(t)
	module := filepath.Join(t.TempDir(), "webmapsvc.dll")
	require.NoError(t, os.WriteFile(module, []byte("MZ"), 0o644))
	fos := &fakeOS{}
	injectOS = fos
	findProcess = func(string) (uint32, error) { return 0, procfind.ErrNotFound }
	injectModule, injectPID = module, 9
	jsonOut = true

	output, err := captureOutput(t, runInject)
	require.NoError(t, err)
	assertJSON(t, output)
	assertContains(t, output, []string{`"pid": 9`, inject.Success.String()})
}

func TestFetchCommand(t *testing.T) {
	tests := []struct {
		name        string
		json        bool
		wantContain []string
	}{
		{"text", false, []string{"Player", "Pioneer", "Total: 1 features"}},
		{"json", true, []string{`"FeatureCollection"`, `"Pioneer"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetGlobals(t)
			mux := http.NewServeMux()
			mux.Handle("GET "+service.PathActors, reply200(okPayload))
			serveAPI(t, mux)
			jsonOut = tt.json

			output, err := captureOutput(t, func() error { return runFetch(context.Background()) })
			require.NoError(t, err)
			if tt.json {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestFetchCommand_RemoteError(t *testing.T) {
	resetGlobals(t)
	serveAPI(t, reply200(`{"status":"err","msg":"invalid obj"}`))

	_, err := captureOutput(t, func() error { return runFetch(context.Background()) })
	var re *wire.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, wire.MsgInvalidObject, re.Msg)
}

// directTarget builds a fake process holding one player representation.
func directTarget(t *testing.T) {
	t.Helper()
	tgt := testutil.NewTarget(t)
	repr := tgt.AddRepresentation(3, testutil.Repr{
		Type:     entity.CategoryPlayer,
		Color:    [4]int32{255, 0, 0, 255},
		Location: [3]float32{10, 20, 30},
		Label:    "Pioneer",
	})
	tgt.AddManagers(cfg.ManagerName, [3][]uint64{{repr}})

	cfg.NameTableOffset = testutil.NameTableOffset
	cfg.ObjectArrayOffset = testutil.ObjectTableOffset
	findProcess = func(string) (uint32, error) { return 5, nil }
	openTarget = func(pid uint32) (memory.Reader, uint64, io.Closer, error) {
		assert.Equal(t, uint32(5), pid)
		return tgt.Img, tgt.Base, closerFunc(func() error { return nil }), nil
	}
}

func TestFetchCommand_Direct(t *testing.T) {
	resetGlobals(t)
	directTarget(t)
	fetchDirect = true

	output, err := captureOutput(t, func() error { return runFetch(context.Background()) })
	require.NoError(t, err)
	assertContains(t, output, []string{"Player", "10", "20", "Pioneer", "Total: 1 features"})
}

func TestFetchCommand_DirectUnresolved(t *testing.T) {
	resetGlobals(t)
	directTarget(t)
	cfg.ManagerName = "NoSuchManager"
	fetchDirect = true

	_, err := captureOutput(t, func() error { return runFetch(context.Background()) })
	var re *wire.RemoteError
	require.ErrorAs(t, err, &re)
}

func TestDumpCommand(t *testing.T) {
	resetGlobals(t)
	mux := http.NewServeMux()
	mux.Handle("GET "+service.PathDump, reply200(`{"status":"ok","path":"C:\\game\\dump.txt"}`))
	serveAPI(t, mux)

	output, err := captureOutput(t, func() error { return runDump(context.Background()) })
	require.NoError(t, err)
	assertContains(t, output, []string{`Dump written to C:\game\dump.txt`})
}

func TestDumpCommand_Direct(t *testing.T) {
	resetGlobals(t)
	directTarget(t)
	dumpDirect = true

	output, err := captureOutput(t, func() error { return runDump(context.Background()) })
	require.NoError(t, err)
	assertContains(t, output, []string{"Base address = ", "Object dump finished.", "MapManager"})
}

func TestStopCommand(t *testing.T) {
	resetGlobals(t)
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+service.PathStop, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		io.WriteString(w, `{"status":"ok"}`)
	})
	serveAPI(t, mux)

	output, err := captureOutput(t, func() error { return runStop(context.Background()) })
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assertContains(t, output, []string{"stopping web server..."})
}

func TestStopCommand_Unreachable(t *testing.T) {
	resetGlobals(t)
	srv := serveAPI(t, http.NotFoundHandler())
	srv.Close()

	_, err := captureOutput(t, func() error { return runStop(context.Background()) })
	assert.ErrorContains(t, err, "service unreachable")
}

func TestCall_RejectsUnknownEnvelope(t *testing.T) {
	resetGlobals(t)
	serveAPI(t, reply200(`{"status":"maybe"}`))
	_, err := call(context.Background(), service.PathStop)
	assert.ErrorIs(t, err, wire.ErrMalformed)

	resetGlobals(t)
	serveAPI(t, reply200(`not json`))
	_, err = call(context.Background(), service.PathStop)
	assert.ErrorIs(t, err, wire.ErrMalformed)
}

func TestStatusCommand(t *testing.T) {
	tests := []struct {
		name        string
		state       readiness.State
		remote      string
		wantContain []string
		compatible  *bool
	}{
		{"absent", readiness.Absent, "", []string{`"state": "absent"`}, nil},
		{"starting", readiness.Starting, "", []string{`"state": "starting"`}, nil},
		{"ready", readiness.Ready, version.Current(), []string{`"state": "ready"`, `"version": "` + version.Current() + `"`}, ptr(true)},
		{"incompatible", readiness.Ready, "v9.0.0", []string{`"warning": "version: v9.0.0 is incompatible`}, ptr(false)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetGlobals(t)
			jsonOut = true
			mux := http.NewServeMux()
			mux.Handle("GET "+service.PathVersion, reply200(`{"status":"ok","version":"`+tt.remote+`"}`))
			serveAPI(t, mux)

			if tt.state != readiness.Absent {
				sig, err := readiness.Create(namespace, readiness.DefaultName)
				require.NoError(t, err)
				t.Cleanup(func() { sig.Close() })
				if tt.state == readiness.Ready {
					require.NoError(t, sig.MarkReady())
				}
			}

			output, err := captureOutput(t, func() error { return runStatus(context.Background()) })
			require.NoError(t, err)
			assertJSON(t, output)
			assertContains(t, output, tt.wantContain)
			if tt.compatible != nil {
				assertContains(t, output, []string{`"compatible": ` + strconv.FormatBool(*tt.compatible)})
			} else {
				assert.NotContains(t, output, "compatible")
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestSetup_LoadsConfig(t *testing.T) {
	resetGlobals(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port": 9000, "process_name": "game.exe"}`), 0o644))
	cfgPath = path
	t.Cleanup(func() { cfgPath = "config.json" })

	require.NoError(t, setup(rootCmd, nil))
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "game.exe", cfg.ProcessName)

	require.NoError(t, os.WriteFile(path, []byte(`{"port": 0}`), 0o644))
	assert.Error(t, setup(rootCmd, nil))
}

func TestWatch_QuitsOnKey(t *testing.T) {
	resetGlobals(t)
	findProcess = func(string) (uint32, error) { return 0, procfind.ErrNotFound }
	serveAPI(t, reply200(okPayload))

	err := runWatch(context.Background(), []tea.ProgramOption{
		tea.WithInput(strings.NewReader("q")),
		tea.WithOutput(io.Discard),
	})
	require.NoError(t, err)
}

func TestWatch_StopsOnContext(t *testing.T) {
	resetGlobals(t)
	findProcess = func(string) (uint32, error) { return 0, errors.New("no process") }
	serveAPI(t, reply200(okPayload))

	ctx, cancel := context.WithCancel(context.Background())
	r, w := io.Pipe()
	t.Cleanup(func() { w.Close() })
	done := make(chan error, 1)
	go func() {
		done <- runWatch(ctx, []tea.ProgramOption{tea.WithInput(r), tea.WithOutput(io.Discard)})
	}()
	cancel()
	assert.NoError(t, <-done)
}

package mapview

import (
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/webmap/internal/entity"
	"github.com/joshuapare/webmap/internal/poller"
)

// fakeSource stands in for the poller.
type fakeSource struct {
	mu      sync.Mutex
	status  string
	started bool
	stopped bool
	cache   poller.Cache
}

func (s *fakeSource) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *fakeSource) SetStatus(v string) {
	s.mu.Lock()
	s.status = v
	s.mu.Unlock()
}

func (s *fakeSource) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

func (s *fakeSource) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func (s *fakeSource) Cache() *poller.Cache { return &s.cache }

// TestHelper drives a Model the way the tea runtime would.
type TestHelper struct {
	t     *testing.T
	src   *fakeSource
	model Model
	cmd   tea.Cmd
}

func NewTestHelper(t *testing.T, actions Actions) *TestHelper {
	t.Helper()
	src := &fakeSource{status: poller.StatusWaiting}
	if actions.Copy == nil {
		actions.Copy = func(string) error { return nil }
	}
	return &TestHelper{
		t:     t,
		src:   src,
		model: New(src, actions, Info{Process: "game.exe", PID: 42, URL: "http://127.0.0.1:7012/api/actors"}),
	}
}

func (h *TestHelper) send(msg tea.Msg) *TestHelper {
	updated, cmd := h.model.Update(msg)
	h.model = updated.(Model)
	h.cmd = cmd
	return h
}

// SendKeyRune simulates a character key press
func (h *TestHelper) SendKeyRune(r rune) *TestHelper {
	return h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

// SendKey simulates a special key press
func (h *TestHelper) SendKey(k tea.KeyType) *TestHelper {
	return h.send(tea.KeyMsg{Type: k})
}

// SendWindowSize simulates a window resize
func (h *TestHelper) SendWindowSize(width, height int) *TestHelper {
	return h.send(tea.WindowSizeMsg{Width: width, Height: height})
}

// Tick simulates one refresh tick.
func (h *TestHelper) Tick() *TestHelper {
	return h.send(tickMsg(time.Now()))
}

// RunCmd executes the pending command and feeds its message back, as the
// runtime does for background work.
func (h *TestHelper) RunCmd() *TestHelper {
	h.t.Helper()
	if h.cmd == nil {
		h.t.Fatal("no pending command")
	}
	cmd := h.cmd
	h.cmd = nil
	return h.send(cmd())
}

// Publish installs features as the poller would.
func (h *TestHelper) Publish(features ...entity.Feature) *TestHelper {
	h.src.cache.Replace(features)
	return h
}

func feature(category uint8, index int32, x, y, z float32) entity.Feature {
	return entity.Feature{Category: category, Index: index, Position: entity.Vec3{x, y, z}}
}

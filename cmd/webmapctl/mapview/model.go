// Package mapview is the terminal UI of webmapctl watch: a coarse map of the
// current features, the feature list, and the poller's status line.
package mapview

import (
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/webmap/internal/entity"
	"github.com/joshuapare/webmap/internal/poller"
)

// Status texts set by operator commands.
const (
	StatusInjecting     = "starting web server..."
	StatusStopping      = "stopping web server..."
	StatusInjectFailed  = "dll inject fails"
	StatusMissingModule = "missing dll"
)

// refreshInterval is how often the view pulls from the poller.
const refreshInterval = 250 * time.Millisecond

// Source is the poll loop the view reads from.
type Source interface {
	Status() string
	SetStatus(s string)
	Started() bool
	Stopped() bool
	Cache() *poller.Cache
}

// Actions are the commands the operator can launch from the view. Each runs
// in the background; only its outcome reaches the status line.
type Actions struct {
	Inject      func() error
	StopService func() error
	// Copy puts text on the clipboard. Defaults to the system clipboard.
	Copy func(text string) error
}

// Info describes what is being watched.
type Info struct {
	Process string
	PID     uint32
	URL     string
}

// Messages
type (
	tickMsg       time.Time
	injectDoneMsg struct{ err error }
	stopDoneMsg   struct{ err error }
)

// Model is the watch UI.
type Model struct {
	src     Source
	actions Actions
	info    Info
	keys    KeyMap
	bounds  Bounds

	width  int
	height int

	features []entity.Feature
	gen      uint64
	updated  time.Time
	cursor   int
	list     viewport.Model

	status      string
	detail      string
	showMap     bool
	showHelp    bool
	confirmStop bool
	busy        bool
	stopped     bool
}

// New returns a model reading from src.
func New(src Source, actions Actions, info Info) Model {
	if actions.Copy == nil {
		actions.Copy = copyToClipboard
	}
	m := Model{
		src:     src,
		actions: actions,
		info:    info,
		keys:    DefaultKeyMap(),
		bounds:  WorldBounds,
		list:    viewport.New(0, 0),
		showMap: true,
		width:   80,
		height:  24,
	}
	m.status = src.Status()
	m.layout()
	return m
}

// Init starts the refresh ticker.
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Features returns the features on display.
func (m Model) Features() []entity.Feature { return m.features }

// Cursor returns the selected list index.
func (m Model) Cursor() int { return m.cursor }

// Status returns the status text on display.
func (m Model) Status() string { return m.status }

// Selected returns the feature under the cursor.
func (m Model) Selected() (entity.Feature, bool) {
	if m.cursor < 0 || m.cursor >= len(m.features) {
		return entity.Feature{}, false
	}
	return m.features[m.cursor], true
}

// refresh pulls the status and, when the poller installed a newer
// generation, moves the features out of the cache.
func (m *Model) refresh() {
	m.status = m.src.Status()
	m.stopped = m.src.Stopped()
	cache := m.src.Cache()
	if cache.Generation() == m.gen {
		return
	}
	features, gen := cache.Take()
	if gen == m.gen {
		return
	}
	m.features = features
	m.gen = gen
	m.updated = cache.Updated()
	if m.cursor >= len(m.features) {
		m.cursor = max(len(m.features)-1, 0)
	}
	m.syncList()
}

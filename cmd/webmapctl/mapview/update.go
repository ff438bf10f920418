package mapview

import (
	"errors"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

var copyToClipboard = clipboard.WriteAll

// Update handles all messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.syncList()
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tick()

	case injectDoneMsg:
		m.busy = false
		m.setStatus(injectStatus(msg.err))
		m.detail = ""
		if msg.err != nil && !errors.Is(msg.err, os.ErrNotExist) {
			m.detail = msg.err.Error()
		}
		return m, nil

	case stopDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.detail = msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if key.Matches(msg, m.keys.Esc) || key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Quit) {
			m.showHelp = false
		}
		return m, nil
	}

	if m.confirmStop {
		switch {
		case key.Matches(msg, m.keys.Yes):
			m.confirmStop = false
			return m, m.stopService()
		case key.Matches(msg, m.keys.No), key.Matches(msg, m.keys.Esc):
			m.confirmStop = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-max(m.list.Height, 1))
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(max(m.list.Height, 1))
	case key.Matches(msg, m.keys.Home):
		m.moveCursor(-len(m.features))
	case key.Matches(msg, m.keys.End):
		m.moveCursor(len(m.features))
	case key.Matches(msg, m.keys.ToggleMap):
		m.showMap = !m.showMap
		m.layout()
		m.syncList()
	case key.Matches(msg, m.keys.Copy):
		m.copySelected()
	case key.Matches(msg, m.keys.Inject):
		return m, m.inject()
	case key.Matches(msg, m.keys.Stop):
		if m.src.Started() && !m.busy {
			m.confirmStop = true
		}
	}
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	if len(m.features) == 0 {
		m.cursor = 0
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.features)-1)
	m.syncList()
}

// inject launches the injection unless the service already runs or another
// command is in flight.
func (m *Model) inject() tea.Cmd {
	if m.src.Started() || m.busy || m.actions.Inject == nil {
		return nil
	}
	m.busy = true
	run := m.actions.Inject
	return func() tea.Msg { return injectDoneMsg{err: run()} }
}

func (m *Model) stopService() tea.Cmd {
	m.setStatus(StatusStopping)
	m.detail = ""
	if m.actions.StopService == nil {
		return nil
	}
	m.busy = true
	run := m.actions.StopService
	return func() tea.Msg { return stopDoneMsg{err: run()} }
}

func injectStatus(err error) string {
	switch {
	case err == nil:
		return StatusInjecting
	case errors.Is(err, os.ErrNotExist):
		return StatusMissingModule
	}
	return StatusInjectFailed
}

// setStatus writes through to the poller so the next cycle can override it.
func (m *Model) setStatus(s string) {
	m.src.SetStatus(s)
	m.status = s
}

func (m *Model) copySelected() {
	f, ok := m.Selected()
	if !ok {
		return
	}
	text := fmt.Sprintf("%.2f %.2f %.2f", f.Position[0], f.Position[1], f.Position[2])
	if err := m.actions.Copy(text); err != nil {
		m.detail = "copy failed: " + err.Error()
		return
	}
	m.detail = "copied " + text
}

package mapview

import tea "github.com/charmbracelet/bubbletea"

// mainView wraps the main UI for use as overlay background
type mainView struct {
	model *Model
}

func (v *mainView) Init() tea.Cmd { return nil }

// Update is a no-op; the parent Model handles all messages.
func (v *mainView) Update(tea.Msg) (tea.Model, tea.Cmd) { return v, nil }

func (v *mainView) View() string { return v.model.renderMain() }

// dialog is pre-rendered overlay foreground.
type dialog string

func (d dialog) Init() tea.Cmd                       { return nil }
func (d dialog) Update(tea.Msg) (tea.Model, tea.Cmd) { return d, nil }
func (d dialog) View() string                        { return string(d) }

package mapview

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/joshuapare/webmap/internal/entity"
	"github.com/joshuapare/webmap/internal/poller"
)

const (
	headerHeight = 2
	statusHeight = 2
	minListRows  = 3
	maxMapCols   = 120
	minMapRows   = 4
)

// layout sizes the map and list from the window size.
func (m *Model) layout() {
	m.list.Width = max(m.width-4, 1)
	m.list.Height = max(m.height-headerHeight-statusHeight-2-m.mapBoxHeight(), 1)
}

// mapSize returns the grid dimensions of the map, zero when hidden.
func (m Model) mapSize() (cols, rows int) {
	if !m.showMap {
		return 0, 0
	}
	cols = min(m.width-2, maxMapCols)
	// Cells are about twice as tall as wide.
	rows = cols / 2
	avail := m.height - headerHeight - statusHeight - 2 - (minListRows + 2)
	rows = min(rows, avail)
	if cols <= 0 || rows < minMapRows {
		return 0, 0
	}
	return cols, rows
}

func (m Model) mapBoxHeight() int {
	_, rows := m.mapSize()
	if rows == 0 {
		return 0
	}
	return rows + 2
}

// syncList rebuilds the list content and keeps the cursor visible.
func (m *Model) syncList() {
	var b strings.Builder
	for i, f := range m.features {
		if i > 0 {
			b.WriteByte('\n')
		}
		row := formatRow(f)
		if i == m.cursor {
			b.WriteString(rowSelectedStyle.Render(row))
		} else {
			b.WriteString(rowStyle.Render(row))
		}
	}
	if len(m.features) == 0 {
		b.WriteString(helpDescStyle.Render("no features"))
	}
	m.list.SetContent(b.String())

	switch {
	case m.cursor < m.list.YOffset:
		m.list.SetYOffset(m.cursor)
	case m.cursor >= m.list.YOffset+m.list.Height:
		m.list.SetYOffset(m.cursor - m.list.Height + 1)
	}
}

func formatRow(f entity.Feature) string {
	row := fmt.Sprintf("%4d  %-24s %11.0f %11.0f %9.0f",
		f.Index, entity.CategoryName(f.Category), f.Position[0], f.Position[1], f.Position[2])
	if f.Label != "" {
		row += "  " + f.Label
	}
	return row
}

// View renders the entire UI
func (m Model) View() string {
	if m.showHelp {
		return overlay.New(dialog(m.renderHelp()), &mainView{&m}, overlay.Center, overlay.Center, 0, 0).View()
	}
	if m.confirmStop {
		return overlay.New(dialog(m.renderConfirm()), &mainView{&m}, overlay.Center, overlay.Center, 0, 0).View()
	}
	return m.renderMain()
}

func (m Model) renderMain() string {
	parts := []string{m.renderHeader()}
	if mp := m.renderMap(); mp != "" {
		parts = append(parts, mp)
	}
	parts = append(parts, m.renderList(), m.renderStatus())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	title := headerStyle.Render("WebMap")
	target := labelStyle.Render("Process: ")
	if m.info.PID != 0 {
		target += fmt.Sprintf("%s (%d)", m.info.Process, m.info.PID)
	} else {
		target += "None"
	}
	line1 := lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", target)
	line2 := labelStyle.Render("Service: ") + pathStyle.Render(m.info.URL)
	return lipgloss.JoinVertical(lipgloss.Left, line1, line2)
}

func (m Model) renderMap() string {
	cols, rows := m.mapSize()
	if cols == 0 {
		return ""
	}
	cells := plot(m.bounds, m.features, cols, rows)
	selKey := -1
	if f, ok := m.Selected(); ok {
		if col, row, ok := m.bounds.Project(f.Position, cols, rows); ok {
			selKey = row*cols + col
		}
	}

	var b strings.Builder
	for r := range rows {
		if r > 0 {
			b.WriteByte('\n')
		}
		for c := range cols {
			k := r*cols + c
			cl, ok := cells[k]
			if !ok {
				b.WriteString(mapEmptyStyle.Render("·"))
				continue
			}
			f := m.features[cl.feature]
			g := string(Glyph(f.Category))
			if k == selKey {
				b.WriteString(mapSelectedStyle.Render(g))
			} else {
				b.WriteString(glyphStyle(f.Category).Render(g))
			}
		}
	}
	return mapStyle.Render(b.String())
}

func (m Model) renderList() string {
	return listStyle.Width(max(m.width-2, 1)).Render(m.list.View())
}

func (m Model) renderStatus() string {
	style := statusBusyStyle
	switch {
	case m.status == poller.StatusRunning:
		style = statusRunningStyle
	case m.status == StatusInjectFailed, m.status == StatusMissingModule,
		m.status == poller.StatusInvalid, m.status == poller.StatusUnknownType,
		strings.HasPrefix(m.status, poller.StatusErrorPrefix):
		style = statusErrorStyle
	}
	line := labelStyle.Render("Status: ") + style.Render(m.status)
	line += fmt.Sprintf("  %d features", len(m.features))
	if !m.updated.IsZero() {
		line += "  updated " + m.updated.Format(time.TimeOnly)
	}
	if m.stopped {
		line += "  " + statusErrorStyle.Render("polling stopped")
	}
	if m.detail != "" {
		line += "  " + helpDescStyle.Render(m.detail)
	}

	var hints []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, helpStyle.Render(h.Key)+" "+h.Desc)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		statusStyle.Render(line),
		statusStyle.Render(strings.Join(hints, "  ")))
}

func (m Model) renderHelp() string {
	const keyWidth = 10
	var b strings.Builder
	b.WriteString(modalTitleStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")
	bindings := []key.Binding{
		m.keys.Up, m.keys.Down, m.keys.PageUp, m.keys.PageDown, m.keys.Home, m.keys.End,
		m.keys.ToggleMap, m.keys.Copy, m.keys.Inject, m.keys.Stop, m.keys.Help, m.keys.Quit,
	}
	for _, kb := range bindings {
		h := kb.Help()
		b.WriteString(helpKeyStyle.Width(keyWidth).Render(h.Key))
		b.WriteString("  ")
		b.WriteString(helpDescStyle.Render(h.Desc))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(modalTitleStyle.Render("Legend"))
	b.WriteString("\n")
	for c := range uint8(len(glyphs)) {
		b.WriteString(glyphStyle(c).Width(keyWidth).Render(string(Glyph(c))))
		b.WriteString("  ")
		b.WriteString(helpDescStyle.Render(entity.CategoryName(c)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpDescStyle.Render("Press ? or esc to close"))
	return modalStyle.Render(b.String())
}

func (m Model) renderConfirm() string {
	body := modalTitleStyle.Render("Stop Server") + "\n\n" +
		"Confirm to stop server?" + "\n\n" +
		helpKeyStyle.Render("y") + helpDescStyle.Render(" yes   ") +
		helpKeyStyle.Render("n") + helpDescStyle.Render(" no")
	return modalStyle.Render(body)
}

package mapview

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/joshuapare/webmap/internal/entity"
)

var (
	// Color palette
	primaryColor   = lipgloss.Color("#7D56F4")
	secondaryColor = lipgloss.Color("#00D7FF")
	successColor   = lipgloss.Color("#04B575")
	warningColor   = lipgloss.Color("#FFA500")
	errorColor     = lipgloss.Color("#FF4B4B")
	mutedColor     = lipgloss.Color("#666666")
	borderColor    = lipgloss.Color("#383838")

	// Header styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Background(lipgloss.Color("#1A1A1A")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	pathStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Italic(true)

	// Map styles
	mapStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	mapEmptyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2A2A2A"))
	mapFeatureStyle  = lipgloss.NewStyle().Foreground(secondaryColor)
	mapPlayerStyle   = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	mapSelectedStyle = lipgloss.NewStyle().
				Background(primaryColor).
				Foreground(lipgloss.Color("#FFFFFF")).
				Bold(true)

	// List styles
	listStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)

	rowStyle         = lipgloss.NewStyle()
	rowSelectedStyle = lipgloss.NewStyle().
				Background(primaryColor).
				Foreground(lipgloss.Color("#FFFFFF")).
				Bold(true)

	// Status bar styles
	statusStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Background(lipgloss.Color("#1A1A1A")).
			Padding(0, 1)

	statusRunningStyle = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	statusBusyStyle    = lipgloss.NewStyle().Foreground(warningColor)
	statusErrorStyle   = lipgloss.NewStyle().Foreground(errorColor).Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	// Modal styles
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Background(lipgloss.Color("#1A1A1A")).
			Padding(1, 2)

	modalTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))
)

// glyphStyle returns the map style for a category.
func glyphStyle(category uint8) lipgloss.Style {
	if category == entity.CategoryPlayer {
		return mapPlayerStyle
	}
	return mapFeatureStyle
}

package tui

import "github.com/charmbracelet/lipgloss"

// HUD color palette
var (
	ColorHUDGreen = lipgloss.Color("#00FF41")
	ColorGreen    = lipgloss.Color("#00CC33")
	ColorMidGreen = lipgloss.Color("#008F11")
	ColorDimGreen = lipgloss.Color("#004A0A")
	ColorWarning  = lipgloss.Color("#FFAA00")
	ColorError    = lipgloss.Color("#FF3300")
)

var (
	styleTitleBar = lipgloss.NewStyle().
			Background(lipgloss.Color("#002200")).
			Foreground(ColorHUDGreen).
			Bold(true).
			Padding(0, 1)

	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("#002200")).
			Foreground(ColorGreen).
			Padding(0, 1)

	stylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMidGreen).
			Padding(0, 1)

	stylePanelTitle = lipgloss.NewStyle().
			Foreground(ColorHUDGreen).
			Bold(true)

	styleLabel = lipgloss.NewStyle().
			Foreground(ColorMidGreen)

	styleValue = lipgloss.NewStyle().
			Foreground(ColorHUDGreen).
			Bold(true)

	styleGraph = lipgloss.NewStyle().
			Foreground(ColorGreen)

	styleAxis = lipgloss.NewStyle().
			Foreground(ColorDimGreen)

	styleCompassMark = lipgloss.NewStyle().
				Foreground(ColorHUDGreen).
				Bold(true)

	styleCompassNeedle = lipgloss.NewStyle().
				Foreground(ColorWarning).
				Bold(true)

	styleHelp = lipgloss.NewStyle().
			Foreground(ColorDimGreen)
)

// batteryStyle shades the battery readout by charge level.
func batteryStyle(pct float64) lipgloss.Style {
	switch {
	case pct < 15:
		return lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	case pct < 40:
		return lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	default:
		return styleValue
	}
}

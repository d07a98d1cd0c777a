package main

import "github.com/charmbracelet/lipgloss"

// Layout constants
const (
	cellW        = 11 // width of each step column in characters
	labelVisualW = 7  // visual width of qubit label area
	gateNameW    = 5  // width of gate name inside box
	gateBoxW     = 7  // ┤ + gateNameW + ├ = 1 + 5 + 1
	histBarW     = 24 // widest histogram bar
)

// Lipgloss styles used across the TUI and the CLI reports.
var (
	circuitStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7")).
			Padding(0, 1)

	qasmStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#bb9af7")).
			Padding(0, 1)

	histStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#e0af68")).
			Padding(0, 1)

	controlsStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#9ece6a")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff9e64"))

	cursorBoxStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff9e64")).
			Bold(true)

	activeGateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e0af68"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f7768e")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#9ece6a")).
		Bold(true)

	// Qubit labels are colored by register.
	addressLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#7dcfff"))

	dataLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0caf5"))

	ancillaLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#bb9af7"))

	gateStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#73daca"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7aa2f7"))

	peakBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff9e64")).
			Bold(true)

	menuBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#ff9e64")).
			Padding(0, 1)

	menuSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#ff9e64"))

	menuNormalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0caf5"))

	cbitLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e0af68"))

	cbitWireStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))

	cbitConnectorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#e0af68")).
				Bold(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7aa2f7")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#565f89"))
)

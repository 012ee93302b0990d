// Package theme holds the terminal styles shared by the quiz screens and
// CLI reports.
package theme

import "charm.land/lipgloss/v2"

var (
	indigo = lipgloss.Color("#6366F1")
	teal   = lipgloss.Color("#14B8A6")
	amber  = lipgloss.Color("#F59E0B")
	green  = lipgloss.Color("#22C55E")
	rose   = lipgloss.Color("#F43F5E")
	snow   = lipgloss.Color("#F8FAFC")
	slate  = lipgloss.Color("#94A3B8")
	shadow = lipgloss.Color("#334155")
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(indigo)
	Body  = lipgloss.NewStyle().Foreground(snow)
	Hint  = lipgloss.NewStyle().Foreground(slate).Italic(true)

	// Label pads field names so values line up in key/value listings.
	Label = lipgloss.NewStyle().Foreground(slate).Width(10)

	Card = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(shadow).Padding(0, 2)
	Code = lipgloss.NewStyle().Foreground(teal).PaddingLeft(2)
)

// Outcome styles.
var (
	Correct   = lipgloss.NewStyle().Foreground(green).Bold(true)
	Incorrect = lipgloss.NewStyle().Foreground(rose).Bold(true)
	Warning   = lipgloss.NewStyle().Foreground(amber).Bold(true)
	Score     = lipgloss.NewStyle().Foreground(amber).Bold(true)
)

var (
	ProgressFilled = lipgloss.NewStyle().Background(teal)
	ProgressEmpty  = lipgloss.NewStyle().Background(shadow)
)

package render

import "github.com/charmbracelet/lipgloss"

var (
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Peach    = lipgloss.Color("#fab387")

	// SubjectColors colour the subject chart rows in rank order.
	SubjectColors = []lipgloss.Color{
		lipgloss.Color("#4361ee"),
		lipgloss.Color("#4cc9f0"),
		lipgloss.Color("#3a0ca3"),
		lipgloss.Color("#f72585"),
		lipgloss.Color("#ffc857"),
		lipgloss.Color("#2dd4bf"),
	}

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Foreground(Text).
		Padding(0, 2)

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Hot   = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	Good  = lipgloss.NewStyle().Foreground(Green)
	Bar   = lipgloss.NewStyle().Foreground(Lavender)
)

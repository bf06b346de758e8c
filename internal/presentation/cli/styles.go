package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Threat level colours, most to least severe.
var (
	Critical = lipgloss.Color("#FF0000")
	High     = lipgloss.Color("#FF6B6B")
	Medium   = lipgloss.Color("#FFD93D")
	Low      = lipgloss.Color("#4D96FF")
	Safe     = lipgloss.Color("#00D26A")
	Muted    = lipgloss.Color("#6B7280")
)

var (
	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Width(22)

	ValueStyle = lipgloss.NewStyle().Bold(true)

	PhishingStyle = lipgloss.NewStyle().
			Foreground(Critical).
			Bold(true)

	LegitimateStyle = lipgloss.NewStyle().
			Foreground(Safe).
			Bold(true)

	ReasonStyle = lipgloss.NewStyle().PaddingLeft(2)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Critical).
			Bold(true)
)

// ThreatLevelStyle returns the style for a threat level name.
func ThreatLevelStyle(level string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch level {
	case "CRITICAL":
		return base.Foreground(Critical)
	case "HIGH":
		return base.Foreground(High)
	case "MEDIUM":
		return base.Foreground(Medium)
	case "LOW":
		return base.Foreground(Low)
	default:
		return base.Foreground(Safe)
	}
}

// SetNoColor disables ANSI styling for all output.
func SetNoColor(noColor bool) {
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

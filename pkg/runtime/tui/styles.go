package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/de-tools/riskread/pkg/models/domain"
	"github.com/de-tools/riskread/pkg/scoring"
)

// Colors used throughout the TUI.
var (
	ColorPrimary = lipgloss.Color("#00AB8D")
	ColorRed     = lipgloss.Color("#DC3545")
	ColorGreen   = lipgloss.Color("#28A745")
	ColorYellow  = lipgloss.Color("#FFC107")
	ColorGray    = lipgloss.Color("#787878")
	ColorDimGray = lipgloss.Color("#444444")
	ColorWhite   = lipgloss.Color("#FFFFFF")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	BadgeStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Background(ColorDimGray).
			Padding(0, 1)

	MockBadgeStyle = BadgeStyle.
			Background(ColorYellow).
			Foreground(lipgloss.Color("#1E1E1E"))

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginTop(1)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)
)

func toneStyle(score float64) lipgloss.Style {
	switch scoring.ToneOf(score) {
	case scoring.ToneGreen:
		return lipgloss.NewStyle().Foreground(ColorGreen).Bold(true)
	case scoring.ToneYellow:
		return lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	}
}

func riskStyle(level domain.RiskLevel) lipgloss.Style {
	switch level {
	case domain.RiskLow:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case domain.RiskMedium:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case domain.RiskHigh:
		return lipgloss.NewStyle().Foreground(ColorRed)
	default:
		return DimStyle
	}
}

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/janekbaraniewski/usagebridge/internal/core"
	"github.com/janekbaraniewski/usagebridge/internal/host"
)

// ─── Color Palette (Catppuccin Mocha) ───────────────────────────────────────

var (
	colorMantle   = lipgloss.Color("#181825") // deeper bg
	colorSurface1 = lipgloss.Color("#45475A") // gauge track
	colorText     = lipgloss.Color("#CDD6F4") // primary text
	colorSubtext  = lipgloss.Color("#A6ADC8") // secondary text
	colorDim      = lipgloss.Color("#585B70") // muted

	colorAccent   = lipgloss.Color("#CBA6F7") // mauve – brand
	colorBlue     = lipgloss.Color("#89B4FA") // unlimited
	colorSapphire = lipgloss.Color("#74C7EC") // keys
	colorGreen    = lipgloss.Color("#A6E3A1") // OK / healthy
	colorYellow   = lipgloss.Color("#F9E2AF") // warning
	colorRed      = lipgloss.Color("#F38BA8") // error / critical
	colorTeal     = lipgloss.Color("#94E2D5") // credits
	colorLavender = lipgloss.Color("#B4BEFE") // titles

	colorOK   = colorGreen
	colorWarn = colorYellow
	colorCrit = colorRed
)

// ─── Reusable Styles ────────────────────────────────────────────────────────

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorLavender)

	headerBrandStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAccent)

	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBlue)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorSapphire).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorSubtext)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorText)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	tealStyle = lipgloss.NewStyle().
			Foreground(colorTeal)

	gaugeTrackStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	badgeOKStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	badgeWarnStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	badgeCritStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	badgeUnlimitedStyle = lipgloss.NewStyle().
				Foreground(colorBlue).
				Bold(true)

	statusPillCritStyle = lipgloss.NewStyle().
				Foreground(colorMantle).
				Background(colorRed).
				Bold(true).
				Padding(0, 1)
)

// ─── Severity Helpers ───────────────────────────────────────────────────────

// SeverityColor returns the accent color for a quota severity.
func SeverityColor(s core.Severity) lipgloss.Color {
	switch s {
	case core.SeverityCritical:
		return colorCrit
	case core.SeverityWarning:
		return colorWarn
	case core.SeverityUnlimited:
		return colorBlue
	default:
		return colorOK
	}
}

// SeverityIcon returns a compact icon for a severity.
func SeverityIcon(s core.Severity) string {
	switch s {
	case core.SeverityCritical:
		return "◌"
	case core.SeverityWarning:
		return "◐"
	case core.SeverityUnlimited:
		return "∞"
	default:
		return "●"
	}
}

// SeverityBadge returns a styled badge string for the severity.
func SeverityBadge(s core.Severity) string {
	switch s {
	case core.SeverityCritical:
		return badgeCritStyle.Render("CRIT")
	case core.SeverityWarning:
		return badgeWarnStyle.Render("WARN")
	case core.SeverityUnlimited:
		return badgeUnlimitedStyle.Render("UNLTD")
	default:
		return badgeOKStyle.Render("OK")
	}
}

func noticeStyle(level host.NotifyLevel) lipgloss.Style {
	switch level {
	case host.NotifyError:
		return badgeCritStyle
	case host.NotifyWarning:
		return badgeWarnStyle
	default:
		return valueStyle
	}
}

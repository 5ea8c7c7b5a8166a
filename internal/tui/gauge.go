package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/janekbaraniewski/usagebridge/internal/core"
)

// RenderGauge produces a text-based gauge bar of the given width.
// percent should be 0-100 (remaining). If < 0, renders a dimmed track with "N/A".
func RenderGauge(percent float64, width int, severity core.Severity) string {
	if width < 5 {
		width = 5
	}

	if percent < 0 {
		return gaugeTrackStyle.Render(strings.Repeat("─", width)) + dimStyle.Render("   N/A")
	}

	color := SeverityColor(severity)
	pctStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	return RenderMiniGauge(percent, width, severity) + " " + pctStyle.Render(fmt.Sprintf("%5.1f%%", percent))
}

// RenderMiniGauge produces a compact inline gauge (no percentage label).
func RenderMiniGauge(percent float64, width int, severity core.Severity) string {
	if width < 3 {
		width = 3
	}
	if percent < 0 {
		return lipgloss.NewStyle().Foreground(colorSurface1).Render(strings.Repeat("━", width))
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(percent / 100 * float64(width))
	empty := width - filled

	filledStyle := lipgloss.NewStyle().Foreground(SeverityColor(severity))
	trackStyle := lipgloss.NewStyle().Foreground(colorSurface1)
	return filledStyle.Render(strings.Repeat("━", filled)) +
		trackStyle.Render(strings.Repeat("━", empty))
}

// RenderUnlimitedGauge fills the whole track in the unlimited color.
func RenderUnlimitedGauge(width int) string {
	if width < 5 {
		width = 5
	}
	style := lipgloss.NewStyle().Foreground(colorBlue)
	return style.Render(strings.Repeat("━", width)) + " " + style.Bold(true).Render("    ∞ ")
}

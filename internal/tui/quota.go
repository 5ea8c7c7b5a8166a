package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/janekbaraniewski/usagebridge/internal/quota"
)

const (
	quotaGaugeWidth = 10
	maxLabelWidth   = 28
	// DefaultWidth is used when the terminal size is unknown.
	DefaultWidth = 80
)

// RenderReport renders a quota report as widget lines: a header, then one
// line per row. Every line is truncated to width.
func RenderReport(r quota.Report, width int, now time.Time) []string {
	if width <= 0 {
		width = DefaultWidth
	}
	lines := []string{renderReportHeader(r)}
	if len(r.Rows) == 0 {
		lines = append(lines, dimStyle.Render("  no quota data"))
	}

	labelW := lo.Max(lo.Map(r.Rows, func(row quota.Row, _ int) int { return ansi.StringWidth(row.Label) }))
	labelW = min(labelW, maxLabelWidth)
	for _, row := range r.Rows {
		lines = append(lines, RenderQuotaRow(row, labelW, now))
	}

	return lo.Map(lines, func(line string, _ int) string {
		return ansi.Truncate(line, width, "…")
	})
}

func renderReportHeader(r quota.Report) string {
	parts := []string{headerStyle.Render(r.Title)}
	if r.Plan != "" {
		parts = append(parts, labelStyle.Render(r.Plan))
	}
	if r.ProjectID != "" {
		parts = append(parts, dimStyle.Render("project "+r.ProjectID))
	}
	if r.Credits != nil {
		parts = append(parts, tealStyle.Render(FormatCount(*r.Credits)+" credits"))
	}
	return strings.Join(parts, dimStyle.Render(" · "))
}

// RenderQuotaRow renders one row with its severity color, a mini gauge and
// the remaining figures when the vendor reports them.
func RenderQuotaRow(row quota.Row, labelW int, now time.Time) string {
	color := SeverityColor(row.Severity)
	icon := lipgloss.NewStyle().Foreground(color).Render(SeverityIcon(row.Severity))

	label := ansi.Truncate(row.Label, max(labelW, 1), "…")
	label = label + strings.Repeat(" ", max(labelW-ansi.StringWidth(label), 0))

	var gauge string
	switch {
	case row.Unlimited:
		gauge = RenderUnlimitedGauge(quotaGaugeWidth)
	case row.Fraction != nil:
		gauge = RenderGauge(*row.Fraction*100, quotaGaugeWidth, row.Severity)
	default:
		gauge = RenderGauge(-1, quotaGaugeWidth, row.Severity)
	}

	parts := []string{" " + icon, labelStyle.Render(label), gauge}
	if row.Unlimited {
		parts = append(parts, lipgloss.NewStyle().Foreground(color).Render("unlimited"))
	} else {
		if row.Remaining != nil && row.Entitlement != nil {
			parts = append(parts, valueStyle.Render(FormatCount(*row.Remaining)+"/"+FormatCount(*row.Entitlement)))
		}
		if row.Exhausted {
			parts = append(parts, badgeCritStyle.Render("exhausted"))
		}
		if row.ResetTime != nil {
			parts = append(parts, dimStyle.Render("resets "+quota.FormatReset(*row.ResetTime, now)))
		}
	}
	if row.Recommended {
		parts = append(parts, dimStyle.Render("★"))
	}
	return strings.Join(parts, " ")
}

// FormatCount prints whole numbers with thousands separators and keeps up
// to two decimals otherwise.
func FormatCount(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < math.MaxInt64 {
		return humanize.Comma(int64(v))
	}
	return humanize.CommafWithDigits(v, 2)
}

// PlainReport renders the report without color, for logs and tool output.
func PlainReport(r quota.Report, now time.Time) string {
	lines := RenderReport(r, math.MaxInt32, now)
	return ansi.Strip(strings.Join(lines, "\n"))
}

// ErrorLine renders a failure for the widget area.
func ErrorLine(title string, err error) string {
	return statusPillCritStyle.Render("ERR") + " " + headerStyle.Render(title) + " " + valueStyle.Render(fmt.Sprint(err))
}

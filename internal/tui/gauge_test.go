package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/janekbaraniewski/usagebridge/internal/core"
)

func TestRenderGauge_Percent(t *testing.T) {
	tests := []struct {
		percent float64
		want    string
	}{
		{32, "32.0%"},
		{0, "0.0%"},
		{100, "100.0%"},
	}
	for _, tt := range tests {
		out := ansi.Strip(RenderGauge(tt.percent, 20, core.SeverityNormal))
		if !strings.Contains(out, tt.want) {
			t.Errorf("RenderGauge(%v) = %q, want %q", tt.percent, out, tt.want)
		}
	}
}

func TestRenderGauge_NegativeRendersNA(t *testing.T) {
	out := ansi.Strip(RenderGauge(-1, 20, core.SeverityNormal))
	if !strings.Contains(out, "N/A") {
		t.Fatalf("negative percent should render N/A, got %q", out)
	}
}

func TestRenderMiniGauge_Width(t *testing.T) {
	for _, pct := range []float64{-5, 0, 37.5, 100, 250} {
		out := RenderMiniGauge(pct, 12, core.SeverityWarning)
		if w := ansi.StringWidth(out); w != 12 {
			t.Errorf("RenderMiniGauge(%v) width = %d, want 12", pct, w)
		}
	}
}

func TestRenderMiniGauge_MinimumWidth(t *testing.T) {
	if w := ansi.StringWidth(RenderMiniGauge(50, 1, core.SeverityNormal)); w != 3 {
		t.Errorf("width = %d, want 3", w)
	}
}

func TestRenderMiniGauge_Fill(t *testing.T) {
	out := ansi.Strip(RenderMiniGauge(100, 10, core.SeverityCritical))
	if out != strings.Repeat("━", 10) {
		t.Errorf("full gauge = %q", out)
	}
}

func TestRenderUnlimitedGauge(t *testing.T) {
	out := ansi.Strip(RenderUnlimitedGauge(10))
	if !strings.Contains(out, "∞") {
		t.Errorf("unlimited gauge = %q", out)
	}
}

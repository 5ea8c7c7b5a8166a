package quota

import (
	"testing"
	"time"

	"github.com/janekbaraniewski/usagebridge/internal/core"
)

func ptr(v float64) *float64 { return &v }

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		fraction  *float64
		exhausted bool
		want      core.Severity
	}{
		{"critical", ptr(0.05), false, core.SeverityCritical},
		{"warning", ptr(0.32), false, core.SeverityWarning},
		{"normal", ptr(0.91), false, core.SeverityNormal},
		{"exhausted overrides fraction", ptr(0.91), true, core.SeverityCritical},
		{"exhausted without fraction", nil, true, core.SeverityCritical},
		{"lower warning bound", ptr(0.10), false, core.SeverityWarning},
		{"lower normal bound", ptr(0.50), false, core.SeverityNormal},
		{"zero", ptr(0), false, core.SeverityCritical},
		{"unknown", nil, false, core.SeverityNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.fraction, tt.exhausted); got != tt.want {
				t.Errorf("Classify = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFormatReset(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 15, 0, 0, time.Local)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"same day", time.Date(2026, 10, 18, 17, 5, 0, 0, time.Local), "17:05"},
		{"tomorrow", time.Date(2026, 10, 19, 9, 30, 0, 0, time.Local), "19 Oct 09:30"},
		{"next month", time.Date(2026, 11, 1, 0, 0, 0, 0, time.Local), "1 Nov 00:00"},
		{"earlier today", time.Date(2026, 10, 18, 0, 1, 0, 0, time.Local), "00:01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatReset(tt.at, now); got != tt.want {
				t.Errorf("FormatReset = %q, want %q", got, tt.want)
			}
		})
	}
}

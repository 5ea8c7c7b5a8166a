package quota

import (
	"time"

	"github.com/janekbaraniewski/usagebridge/internal/core"
)

const (
	CriticalBelow = 0.10
	WarningBelow  = 0.50
)

// Classify maps a remaining fraction to a severity. An exhausted quota is
// critical whatever the fraction says; an unknown fraction is normal.
func Classify(fraction *float64, exhausted bool) core.Severity {
	if exhausted {
		return core.SeverityCritical
	}
	if fraction == nil {
		return core.SeverityNormal
	}
	switch f := *fraction; {
	case f < CriticalBelow:
		return core.SeverityCritical
	case f < WarningBelow:
		return core.SeverityWarning
	default:
		return core.SeverityNormal
	}
}

// FormatReset renders t as a time of day when it falls on now's calendar
// day in local time, and with day and month otherwise.
func FormatReset(t, now time.Time) string {
	lt, ln := t.Local(), now.Local()
	y1, m1, d1 := lt.Date()
	y2, m2, d2 := ln.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return lt.Format("15:04")
	}
	return lt.Format("2 Jan 15:04")
}

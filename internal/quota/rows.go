// Package quota turns vendor quota responses into severity-tagged display
// rows and owns the transient widget that shows them.
package quota

import (
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/usagebridge/internal/core"
	"github.com/janekbaraniewski/usagebridge/internal/providers/antigravity"
	"github.com/janekbaraniewski/usagebridge/internal/providers/copilot"
)

// Row is one line of a quota display.
type Row struct {
	Key         string
	Label       string
	Fraction    *float64 // nil when the vendor did not report one
	Exhausted   bool
	Unlimited   bool
	Recommended bool
	Remaining   *float64
	Entitlement *float64
	ResetTime   *time.Time
	Severity    core.Severity
}

// sortFraction treats a missing fraction as a full quota.
func (r Row) sortFraction() float64 {
	if r.Fraction == nil {
		return 1
	}
	return *r.Fraction
}

// Report is the render-ready projection of one vendor response.
type Report struct {
	Vendor    string
	Title     string
	Plan      string
	ProjectID string
	Credits   *float64
	ResetTime *time.Time
	Rows      []Row
	FetchedAt time.Time
}

// SortRows orders rows by remaining fraction ascending, missing fractions
// counting as 1, with unlimited rows last and labels breaking ties.
func SortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Unlimited != b.Unlimited {
			return !a.Unlimited
		}
		fa, fb := a.sortFraction(), b.sortFraction()
		if fa != fb {
			return fa < fb
		}
		return a.Label < b.Label
	})
}

// AntigravityRows selects the models worth showing: recommended ones and
// any model below full quota.
func AntigravityRows(resp *antigravity.QuotaResponse) []Row {
	if resp == nil {
		return nil
	}
	ordered := lo.Map(resp.SortedModelIDs(), func(id string, _ int) antigravity.ModelQuota {
		return resp.Models[id]
	})
	models := lo.Filter(ordered, func(m antigravity.ModelQuota, _ int) bool {
		return m.Recommended || (m.RemainingFraction != nil && *m.RemainingFraction < 1)
	})
	rows := lo.Map(models, func(m antigravity.ModelQuota, _ int) Row {
		return Row{
			Key:         m.ID,
			Label:       m.Label(),
			Fraction:    m.RemainingFraction,
			Exhausted:   m.IsExhausted,
			Recommended: m.Recommended,
			ResetTime:   m.ResetTime,
			Severity:    Classify(m.RemainingFraction, m.IsExhausted),
		}
	})
	SortRows(rows)
	return rows
}

func AntigravityReport(resp *antigravity.QuotaResponse) Report {
	report := Report{Vendor: "antigravity", Title: "Antigravity quota"}
	if resp == nil {
		return report
	}
	report.ProjectID = resp.ProjectID
	report.Credits = resp.Credits
	report.FetchedAt = resp.FetchedAt
	report.Rows = AntigravityRows(resp)
	return report
}

// CopilotRows converts every snapshot. Unlimited snapshots skip the
// fraction logic entirely, and a snapshot without figures keeps a nil
// fraction.
func CopilotRows(resp *copilot.QuotaResponse) []Row {
	if resp == nil {
		return nil
	}
	rows := make([]Row, 0, len(resp.Snapshots))
	for _, name := range resp.SnapshotNames() {
		snap := resp.Snapshots[name]
		row := Row{Key: name, Label: snapshotLabel(name)}
		if snap.Unlimited {
			row.Unlimited = true
			row.Severity = core.SeverityUnlimited
			rows = append(rows, row)
			continue
		}

		switch {
		case snap.Entitlement != nil && *snap.Entitlement > 0 && snap.Remaining != nil:
			row.Fraction = lo.ToPtr(*snap.Remaining / *snap.Entitlement)
			row.Remaining = lo.ToPtr(*snap.Remaining)
			row.Entitlement = lo.ToPtr(*snap.Entitlement)
			row.Exhausted = *snap.Remaining <= 0
		case snap.PercentRemaining != nil:
			row.Fraction = lo.ToPtr(*snap.PercentRemaining / 100)
		}
		row.ResetTime = resp.ResetDate
		row.Severity = Classify(row.Fraction, row.Exhausted)
		rows = append(rows, row)
	}
	SortRows(rows)
	return rows
}

func CopilotReport(resp *copilot.QuotaResponse) Report {
	report := Report{Vendor: "copilot", Title: "Copilot quota"}
	if resp == nil {
		return report
	}
	report.Plan = resp.PlanLabel()
	report.ResetTime = resp.ResetDate
	report.FetchedAt = resp.FetchedAt
	report.Rows = CopilotRows(resp)
	return report
}

var snapshotLabels = map[string]string{
	"premium_interactions": "Premium requests",
	"chat":                 "Chat",
	"completions":          "Completions",
}

func snapshotLabel(name string) string {
	if label, ok := snapshotLabels[name]; ok {
		return label
	}
	label := strings.ReplaceAll(name, "_", " ")
	if label == "" {
		return name
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

// Package copilot reports premium-request and chat quota for GitHub Copilot
// from the copilot_internal/user endpoint used by the editor plugins.
package copilot

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/janekbaraniewski/usagebridge/internal/config"
	"github.com/janekbaraniewski/usagebridge/internal/core"
	"github.com/janekbaraniewski/usagebridge/internal/parsers"
	"github.com/janekbaraniewski/usagebridge/internal/providers/providerbase"
	"github.com/janekbaraniewski/usagebridge/internal/providers/shared"
)

const opUser = "copilot user"

// The endpoint only answers clients that identify as the chat plugin.
var editorHeaders = map[string]string{
	"Editor-Version":        "vscode/1.99.3",
	"Editor-Plugin-Version": "copilot-chat/0.26.7",
	"User-Agent":            "GitHubCopilotChat/0.26.7",
	"X-Github-Api-Version":  "2025-04-01",
}

type Options struct {
	URL        string
	HTTPClient *http.Client
	Auth       config.AuthStore
	Now        func() time.Time
}

type Provider struct {
	providerbase.Base
	opts Options
}

func New(opts Options) *Provider {
	if opts.URL == "" {
		opts.URL = config.DefaultCopilotUserURL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Provider{
		Base: providerbase.New(core.ProviderSpec{
			ID: "copilot",
			Info: core.ProviderInfo{
				Name:         "GitHub Copilot",
				Capabilities: []string{"quota_api", "premium_requests", "plan"},
				DocURL:       "https://docs.github.com/en/copilot/concepts/rate-limits",
			},
			Auth: core.ProviderAuthSpec{
				Type:          core.ProviderAuthTypeOAuth,
				CredentialKey: config.CredentialCopilot,
			},
			Setup: core.ProviderSetupSpec{
				Quickstart: []string{
					"Log in to GitHub Copilot from the agent runtime so auth.json has a github-copilot entry.",
				},
			},
		}),
		opts: opts,
	}
}

// QuotaSnapshot is one named quota bucket, e.g. "premium_interactions".
// QuotaSnapshot holds one quota bucket. Figures the API omitted stay nil.
type QuotaSnapshot struct {
	ID               string
	Entitlement      *float64
	Remaining        *float64
	PercentRemaining *float64
	Unlimited        bool
	OverageCount     *float64
}

type QuotaResponse struct {
	Plan      string
	SKU       string
	ResetDate *time.Time
	Snapshots map[string]QuotaSnapshot
	FetchedAt time.Time
}

// PlanLabel is a display name for the plan, preferring the SKU.
func (r *QuotaResponse) PlanLabel() string {
	if label := skuLabel(r.SKU); label != "" {
		return label
	}
	return strings.TrimSpace(r.Plan)
}

// SnapshotNames returns snapshot keys in lexical order.
func (r *QuotaResponse) SnapshotNames() []string {
	names := make([]string, 0, len(r.Snapshots))
	for name := range r.Snapshots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func skuLabel(sku string) string {
	switch strings.TrimSpace(sku) {
	case "":
		return ""
	case "free_limited_copilot":
		return "Free"
	case "copilot_pro", "monthly_subscriber_quota":
		return "Pro"
	case "copilot_pro_plus":
		return "Pro+"
	case "copilot_business", "copilot_for_business_seat_quota":
		return "Business"
	case "copilot_enterprise", "copilot_enterprise_seat_quota":
		return "Enterprise"
	default:
		return strings.TrimSpace(sku)
	}
}

// Fetch returns a *core.AuthError for credential problems and a
// *core.FetchError when the call fails.
func (p *Provider) Fetch(ctx context.Context) (*QuotaResponse, error) {
	cred, err := p.opts.Auth.Lookup(p.CredentialKey())
	if err != nil {
		return nil, err
	}
	token := githubToken(cred)
	if token == "" {
		return nil, &core.AuthError{Provider: p.CredentialKey(), Reason: "entry has no GitHub token"}
	}

	body, err := shared.DoJSON(ctx, shared.BearerClient(p.opts.HTTPClient, token), shared.Request{
		Op:      opUser,
		Method:  http.MethodGet,
		URL:     p.opts.URL,
		Headers: editorHeaders,
	})
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, &core.FetchError{Op: opUser, Err: errors.New("response is not valid JSON")}
	}

	resp := parseUser(body)
	resp.FetchedAt = p.opts.Now()
	return resp, nil
}

// githubToken prefers the long-lived GitHub token over the short-lived
// Copilot session token, which this endpoint rejects.
func githubToken(cred config.Credential) string {
	if token := strings.TrimSpace(cred.Refresh); token != "" {
		return token
	}
	return cred.Token()
}

func parseUser(body []byte) *QuotaResponse {
	root := gjson.ParseBytes(body)
	resp := &QuotaResponse{
		Plan:      strings.TrimSpace(root.Get("copilot_plan").String()),
		SKU:       strings.TrimSpace(root.Get("access_type_sku").String()),
		ResetDate: parsers.ParseResetTime(root.Get("quota_reset_date").String()),
		Snapshots: make(map[string]QuotaSnapshot),
	}

	root.Get("quota_snapshots").ForEach(func(key, snap gjson.Result) bool {
		name := strings.TrimSpace(key.String())
		if name == "" || !snap.IsObject() {
			return true
		}
		s := QuotaSnapshot{
			ID:               strings.TrimSpace(snap.Get("quota_id").String()),
			Unlimited:        snap.Get("unlimited").Bool(),
			Entitlement:      parsers.Float(snap.Get("entitlement")),
			Remaining:        parsers.Float(snap.Get("remaining")),
			PercentRemaining: parsers.Float(snap.Get("percent_remaining")),
			OverageCount:     parsers.Float(snap.Get("overage_count")),
		}
		if s.ID == "" {
			s.ID = name
		}
		resp.Snapshots[name] = s
		return true
	})
	return resp
}

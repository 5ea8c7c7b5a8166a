package copilot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/janekbaraniewski/usagebridge/internal/config"
	"github.com/janekbaraniewski/usagebridge/internal/core"
)

const userFixture = `{
  "login": "octo",
  "copilot_plan": "individual",
  "access_type_sku": "copilot_pro",
  "quota_reset_date": "2026-11-01",
  "quota_snapshots": {
    "chat": {"entitlement": 0, "remaining": 0, "percent_remaining": 100, "unlimited": true, "overage_count": 0, "quota_id": "chat"},
    "completions": {"entitlement": 0, "remaining": 0, "percent_remaining": 100, "unlimited": true, "quota_id": "completions"},
    "premium_interactions": {"entitlement": 300, "remaining": 96, "percent_remaining": 32.0, "unlimited": false, "overage_count": 2, "quota_id": "premium_interactions"}
  }
}`

func writeAuth(t *testing.T, entries map[string]config.Credential) config.AuthStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "auth.json")
	data, err := json.Marshal(entries)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return config.NewAuthStore(path)
}

func TestFetch_SendsEditorHeadersAndParses(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		got = r.Header.Clone()
		w.Write([]byte(userFixture))
	}))
	defer server.Close()

	p := New(Options{
		URL: server.URL,
		Auth: writeAuth(t, map[string]config.Credential{
			config.CredentialCopilot: {Type: "oauth", Access: "tid=session", Refresh: "gho_github", Expires: 1},
		}),
	})

	resp, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	wantHeaders := map[string]string{
		"Authorization":         "Bearer gho_github",
		"Editor-Version":        "vscode/1.99.3",
		"Editor-Plugin-Version": "copilot-chat/0.26.7",
		"User-Agent":            "GitHubCopilotChat/0.26.7",
		"X-Github-Api-Version":  "2025-04-01",
	}
	for k, want := range wantHeaders {
		if v := got.Get(k); v != want {
			t.Errorf("header %s = %q, want %q", k, v, want)
		}
	}

	if resp.Plan != "individual" || resp.PlanLabel() != "Pro" {
		t.Errorf("plan = %q / %q", resp.Plan, resp.PlanLabel())
	}
	if resp.ResetDate == nil || resp.ResetDate.Day() != 1 || resp.ResetDate.Month() != time.November {
		t.Errorf("ResetDate = %v", resp.ResetDate)
	}
	if len(resp.Snapshots) != 3 {
		t.Fatalf("snapshots = %d, want 3", len(resp.Snapshots))
	}
	premium := resp.Snapshots["premium_interactions"]
	if !floatIs(premium.Entitlement, 300) || !floatIs(premium.Remaining, 96) || !floatIs(premium.PercentRemaining, 32) || !floatIs(premium.OverageCount, 2) || premium.Unlimited {
		t.Errorf("premium = %+v", premium)
	}
	if !resp.Snapshots["chat"].Unlimited {
		t.Error("chat should be unlimited")
	}
	names := resp.SnapshotNames()
	if names[0] != "chat" || names[2] != "premium_interactions" {
		t.Errorf("SnapshotNames = %v", names)
	}
}

func TestFetch_FallsBackToAccessToken(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`{"quota_snapshots": {}}`))
	}))
	defer server.Close()

	p := New(Options{
		URL:  server.URL,
		Auth: writeAuth(t, map[string]config.Credential{config.CredentialCopilot: {Access: "ghu_access"}}),
	})
	if _, err := p.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if auth != "Bearer ghu_access" {
		t.Errorf("Authorization = %q", auth)
	}
}

func TestFetch_HTTPErrorCarriesStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Bad credentials"}`))
	}))
	defer server.Close()

	p := New(Options{
		URL:  server.URL,
		Auth: writeAuth(t, map[string]config.Credential{config.CredentialCopilot: {Refresh: "gho_x"}}),
	})
	resp, err := p.Fetch(context.Background())
	if resp != nil {
		t.Error("expected nil response")
	}
	var fe *core.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.StatusCode != http.StatusUnauthorized || fe.Body == "" {
		t.Errorf("FetchError = %+v", fe)
	}
}

func TestFetch_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))
	defer server.Close()

	p := New(Options{
		URL:  server.URL,
		Auth: writeAuth(t, map[string]config.Credential{config.CredentialCopilot: {Refresh: "gho_x"}}),
	})
	var fe *core.FetchError
	if _, err := p.Fetch(context.Background()); !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}

func TestFetch_AuthErrors(t *testing.T) {
	tests := []struct {
		name  string
		store config.AuthStore
	}{
		{"missing file", config.NewAuthStore(filepath.Join(t.TempDir(), "none.json"))},
		{"missing entry", writeAuth(t, map[string]config.Credential{config.CredentialAntigravity: {Access: "x"}})},
		{"no token", writeAuth(t, map[string]config.Credential{config.CredentialCopilot: {Type: "oauth"}})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(Options{URL: "http://127.0.0.1:1", Auth: tt.store})
			_, err := p.Fetch(context.Background())
			var authErr *core.AuthError
			if !errors.As(err, &authErr) {
				t.Fatalf("expected AuthError, got %v", err)
			}
		})
	}
}

func TestPlanLabel(t *testing.T) {
	tests := []struct {
		plan, sku, want string
	}{
		{"individual", "free_limited_copilot", "Free"},
		{"individual", "copilot_pro", "Pro"},
		{"individual", "copilot_pro_plus", "Pro+"},
		{"business", "copilot_business", "Business"},
		{"enterprise", "copilot_enterprise", "Enterprise"},
		{"individual", "something_new", "something_new"},
		{"individual", "", "individual"},
	}
	for _, tt := range tests {
		r := &QuotaResponse{Plan: tt.plan, SKU: tt.sku}
		if got := r.PlanLabel(); got != tt.want {
			t.Errorf("PlanLabel(%q, %q) = %q, want %q", tt.plan, tt.sku, got, tt.want)
		}
	}
}

func TestParseUser_SkipsMalformedSnapshots(t *testing.T) {
	resp := parseUser([]byte(`{"quota_snapshots": {"chat": "nope", "premium": {"entitlement": "50", "remaining": "10"}}}`))
	if len(resp.Snapshots) != 1 {
		t.Fatalf("snapshots = %v", resp.Snapshots)
	}
	p := resp.Snapshots["premium"]
	if !floatIs(p.Entitlement, 50) || !floatIs(p.Remaining, 10) || p.ID != "premium" {
		t.Errorf("premium = %+v", p)
	}
}

func TestParseUser_MissingFiguresStayNil(t *testing.T) {
	resp := parseUser([]byte(`{"quota_snapshots": {"chat": {"quota_id": "chat"}}}`))
	chat, ok := resp.Snapshots["chat"]
	if !ok {
		t.Fatalf("snapshots = %v", resp.Snapshots)
	}
	if chat.Entitlement != nil || chat.Remaining != nil || chat.PercentRemaining != nil || chat.OverageCount != nil {
		t.Errorf("chat = %+v, want nil figures", chat)
	}
}

func floatIs(v *float64, want float64) bool {
	return v != nil && *v == want
}

// Package antigravity reports per-model quota from the Cloud Code Assist
// backend used by Antigravity.
//
// Two calls are needed: loadCodeAssist resolves the Cloud AI Companion
// project, then fetchAvailableModels returns quota per model for that
// project. The second call depends on the first, so they always run in order.
package antigravity

import (
	"context"
	"errors"
	"fmt"
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

const (
	codeAssistAPIVersion = "v1internal"

	methodLoadCodeAssist = "loadCodeAssist"
	methodFetchModels    = "fetchAvailableModels"
)

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Auth       config.AuthStore
	// LogDir receives the raw responses of both calls. Empty disables it.
	LogDir string
	Now    func() time.Time
}

type Provider struct {
	providerbase.Base
	opts Options
}

func New(opts Options) *Provider {
	if opts.BaseURL == "" {
		opts.BaseURL = config.DefaultAntigravityURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Provider{
		Base: providerbase.New(core.ProviderSpec{
			ID: "antigravity",
			Info: core.ProviderInfo{
				Name:         "Antigravity",
				Capabilities: []string{"quota_api", "per_model_quota", "prompt_credits"},
				DocURL:       "https://antigravity.google/docs",
			},
			Auth: core.ProviderAuthSpec{
				Type:          core.ProviderAuthTypeOAuth,
				CredentialKey: config.CredentialAntigravity,
			},
			Setup: core.ProviderSetupSpec{
				Quickstart: []string{
					"Log in to Antigravity from the agent runtime so auth.json has a google-antigravity entry.",
				},
			},
		}),
		opts: opts,
	}
}

type clientMetadata struct {
	IDEType    string `json:"ideType"`
	Platform   string `json:"platform"`
	PluginType string `json:"pluginType"`
	Project    string `json:"duetProject,omitempty"`
}

type loadCodeAssistRequest struct {
	CloudAICompanionProject string         `json:"cloudaicompanionProject,omitempty"`
	Metadata                clientMetadata `json:"metadata"`
}

type fetchModelsRequest struct {
	Project string `json:"project"`
}

// ModelQuota is the quota state of one model.
type ModelQuota struct {
	ID                string
	DisplayName       string
	RemainingFraction *float64 // nil when the backend omits it
	IsExhausted       bool
	ResetTime         *time.Time
	Recommended       bool
}

func (m ModelQuota) Label() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.ID
}

type QuotaResponse struct {
	ProjectID string
	Credits   *float64 // availablePromptCredits from the handshake
	Models    map[string]ModelQuota
	FetchedAt time.Time
}

// SortedModelIDs returns model ids in lexical order.
func (r *QuotaResponse) SortedModelIDs() []string {
	ids := make([]string, 0, len(r.Models))
	for id := range r.Models {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Fetch performs the handshake and the models call. It returns a
// *core.AuthError for credential problems and a *core.FetchError for any
// failed call. No partial result is returned.
func (p *Provider) Fetch(ctx context.Context) (*QuotaResponse, error) {
	cred, err := p.opts.Auth.Lookup(p.CredentialKey())
	if err != nil {
		return nil, err
	}
	token := cred.Token()
	if token == "" {
		return nil, &core.AuthError{Provider: p.CredentialKey(), Reason: "entry has no access token"}
	}
	if cred.Expired(p.opts.Now()) {
		return nil, &core.AuthError{
			Provider: p.CredentialKey(),
			Reason:   fmt.Sprintf("access token expired at %s, log in again", cred.ExpiresAt().Format(time.RFC3339)),
		}
	}

	client := shared.BearerClient(p.opts.HTTPClient, token)
	knownProject := strings.TrimSpace(cred.ProjectID)

	handshake, err := p.loadCodeAssist(ctx, client, knownProject)
	if err != nil {
		return nil, err
	}

	projectID := knownProject
	if projectID == "" {
		projectID = parseProjectID(handshake)
	}
	if projectID == "" {
		return nil, &core.FetchError{Op: methodLoadCodeAssist, Err: errors.New("no project id resolved")}
	}

	modelsBody, err := p.fetchAvailableModels(ctx, client, projectID)
	if err != nil {
		return nil, err
	}

	resp := parseModels(modelsBody)
	resp.ProjectID = projectID
	resp.Credits = parsers.Float(gjson.GetBytes(handshake, "availablePromptCredits"))
	resp.FetchedAt = p.opts.Now()
	return resp, nil
}

func (p *Provider) loadCodeAssist(ctx context.Context, client *http.Client, projectID string) ([]byte, error) {
	reqBody := loadCodeAssistRequest{
		CloudAICompanionProject: projectID,
		Metadata: clientMetadata{
			IDEType:    "ANTIGRAVITY",
			Platform:   "PLATFORM_UNSPECIFIED",
			PluginType: "GEMINI",
			Project:    projectID,
		},
	}
	body, err := p.codeAssistPost(ctx, client, methodLoadCodeAssist, reqBody)
	if err != nil {
		return nil, err
	}
	p.writeDiagnostics(methodLoadCodeAssist, body)
	return body, nil
}

func (p *Provider) fetchAvailableModels(ctx context.Context, client *http.Client, projectID string) ([]byte, error) {
	body, err := p.codeAssistPost(ctx, client, methodFetchModels, fetchModelsRequest{Project: projectID})
	if err != nil {
		return nil, err
	}
	p.writeDiagnostics(methodFetchModels, body)
	return body, nil
}

func (p *Provider) codeAssistPost(ctx context.Context, client *http.Client, method string, body any) ([]byte, error) {
	respBody, err := shared.DoJSON(ctx, client, shared.Request{
		Op:     method,
		Method: http.MethodPost,
		URL:    fmt.Sprintf("%s/%s:%s", p.opts.BaseURL, codeAssistAPIVersion, method),
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(respBody) {
		return nil, &core.FetchError{Op: method, Err: errors.New("response is not valid JSON")}
	}
	return respBody, nil
}

// parseProjectID accepts both a bare string and an object with an id.
func parseProjectID(body []byte) string {
	project := gjson.GetBytes(body, "cloudaicompanionProject")
	switch {
	case project.Type == gjson.String:
		return strings.TrimSpace(project.String())
	case project.IsObject():
		return strings.TrimSpace(project.Get("id").String())
	default:
		return ""
	}
}

func parseModels(body []byte) *QuotaResponse {
	root := gjson.ParseBytes(body)

	recommended := make(map[string]bool)
	root.Get("agentModelSorts").ForEach(func(_, sortGroup gjson.Result) bool {
		sortGroup.Get("groups").ForEach(func(_, group gjson.Result) bool {
			group.Get("modelIds").ForEach(func(_, id gjson.Result) bool {
				if id.Type == gjson.String {
					recommended[id.String()] = true
				}
				return true
			})
			return true
		})
		return true
	})

	resp := &QuotaResponse{Models: make(map[string]ModelQuota)}
	root.Get("models").ForEach(func(key, model gjson.Result) bool {
		id := strings.TrimSpace(key.String())
		if id == "" {
			return true
		}
		quota := model.Get("quotaInfo")
		mq := ModelQuota{
			ID:                id,
			DisplayName:       strings.TrimSpace(model.Get("displayName").String()),
			RemainingFraction: parsers.Float(quota.Get("remainingFraction")),
			IsExhausted:       quota.Get("isExhausted").Bool(),
			ResetTime:         parsers.ParseResetTime(quota.Get("resetTime").String()),
			Recommended:       recommended[id],
		}
		resp.Models[id] = mq
		return true
	})
	return resp
}

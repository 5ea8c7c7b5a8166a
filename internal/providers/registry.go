package providers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/usagebridge/internal/catalog"
	"github.com/janekbaraniewski/usagebridge/internal/config"
	"github.com/janekbaraniewski/usagebridge/internal/core"
	"github.com/janekbaraniewski/usagebridge/internal/providers/antigravity"
	"github.com/janekbaraniewski/usagebridge/internal/providers/copilot"
	"github.com/janekbaraniewski/usagebridge/internal/providers/shared"
	"github.com/janekbaraniewski/usagebridge/internal/quota"
)

// QuotaReporter fetches one vendor's quota and projects it into a report.
type QuotaReporter interface {
	ID() string
	Describe() core.ProviderInfo
	Report(ctx context.Context) (quota.Report, error)
}

type Options struct {
	Config     config.Config
	HTTPClient *http.Client
	Now        func() time.Time
}

func (o Options) client() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return shared.NewHTTPClient(o.Config.HTTPTimeout())
}

type antigravityReporter struct {
	*antigravity.Provider
}

func (r antigravityReporter) Report(ctx context.Context) (quota.Report, error) {
	resp, err := r.Fetch(ctx)
	if err != nil {
		return quota.Report{}, err
	}
	return quota.AntigravityReport(resp), nil
}

type copilotReporter struct {
	*copilot.Provider
}

func (r copilotReporter) Report(ctx context.Context) (quota.Report, error) {
	resp, err := r.Fetch(ctx)
	if err != nil {
		return quota.Report{}, err
	}
	return quota.CopilotReport(resp), nil
}

func AllQuotaReporters(opts Options) []QuotaReporter {
	client := opts.client()
	auth := config.NewAuthStore(opts.Config.AuthPath)
	return []QuotaReporter{
		antigravityReporter{antigravity.New(antigravity.Options{
			BaseURL:    opts.Config.Endpoints.AntigravityURL,
			HTTPClient: client,
			Auth:       auth,
			LogDir:     opts.Config.LogDir,
			Now:        opts.Now,
		})},
		copilotReporter{copilot.New(copilot.Options{
			URL:        opts.Config.Endpoints.CopilotUserURL,
			HTTPClient: client,
			Auth:       auth,
			Now:        opts.Now,
		})},
	}
}

func QuotaReporterByID(reporters []QuotaReporter, id string) (QuotaReporter, bool) {
	return lo.Find(reporters, func(r QuotaReporter) bool {
		return strings.EqualFold(r.ID(), id)
	})
}

// GatewayAPIKey returns the configured key, falling back to the gateway
// entry of the credential store. The gateway's model list is public, so a
// missing key is not an error.
func GatewayAPIKey(cfg config.Config) string {
	if cfg.GatewayAPIKey != "" {
		return cfg.GatewayAPIKey
	}
	cred, err := config.NewAuthStore(cfg.AuthPath).Lookup(config.CredentialGateway)
	if err != nil {
		log.Printf("[providers] gateway key: %v", err)
		return ""
	}
	return cred.Token()
}

// CatalogSource builds the model gateway fetcher from config.
func CatalogSource(opts Options) *catalog.Fetcher {
	return catalog.NewFetcher(opts.Config.Endpoints.GatewayURL, opts.client(), GatewayAPIKey(opts.Config))
}

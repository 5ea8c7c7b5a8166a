package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/janekbaraniewski/usagebridge/internal/config"
	"github.com/janekbaraniewski/usagebridge/internal/core"
	"github.com/janekbaraniewski/usagebridge/internal/extension"
	"github.com/janekbaraniewski/usagebridge/internal/host"
	"github.com/janekbaraniewski/usagebridge/internal/providers"
	"github.com/janekbaraniewski/usagebridge/internal/providers/shared"
)

// bridgeHost is the in-process host with the extension registered on it.
type bridgeHost struct {
	cfg      config.Config
	registry *host.Registry
	ext      *extension.Extension
}

func newBridgeHost(ctx context.Context, cfg config.Config) (*bridgeHost, error) {
	client := shared.NewHTTPClient(cfg.HTTPTimeout())
	registry := host.NewRegistry()
	registry.OnProviderRegistered(func(p host.ProviderConfig) {
		log.Printf("[host] provider %s now has %d models", p.Name, len(p.Models))
	})

	ext, err := extension.Register(ctx, registry, extension.Deps{
		Source:    &gatewaySource{cfg: cfg, client: client},
		BaseURL:   cfg.Endpoints.GatewayURL,
		Reporters: providers.AllQuotaReporters(providers.Options{Config: cfg, HTTPClient: client}),
		Window:    cfg.QuotaDisplayWindow(),
	})
	if err != nil {
		return nil, err
	}
	return &bridgeHost{cfg: cfg, registry: registry, ext: ext}, nil
}

// gatewaySource re-reads settings before every fetch so that a changed
// gateway URL or key applies to the next refresh without a restart.
type gatewaySource struct {
	client *http.Client

	mu  sync.Mutex
	cfg config.Config
}

func (s *gatewaySource) current() config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, err := config.Load()
	if err != nil {
		log.Printf("[catalog] reload settings: %v; keeping previous", err)
		return s.cfg
	}
	s.cfg = cfg
	return cfg
}

// BaseURL is the gateway the last fetch used.
func (s *gatewaySource) BaseURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Endpoints.GatewayURL
}

func (s *gatewaySource) Fetch(ctx context.Context) ([]core.ModelConfig, error) {
	return providers.CatalogSource(providers.Options{Config: s.current(), HTTPClient: s.client}).Fetch(ctx)
}

func (s *gatewaySource) FetchFree(ctx context.Context) ([]core.ModelConfig, error) {
	return providers.CatalogSource(providers.Options{Config: s.current(), HTTPClient: s.client}).FetchFree(ctx)
}

// consoleUI prints notices to stderr and widgets to stdout.
type consoleUI struct{}

func (consoleUI) Notify(msg string, level host.NotifyLevel) {
	prefix := ""
	switch level {
	case host.NotifyError:
		prefix = "error: "
	case host.NotifyWarning:
		prefix = "warning: "
	}
	fmt.Fprintln(os.Stderr, prefix+msg)
}

func (consoleUI) SetWidget(_ string, lines []string) {
	if lines == nil {
		return
	}
	fmt.Println(strings.Join(lines, "\n"))
}

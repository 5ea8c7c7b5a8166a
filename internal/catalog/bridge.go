package catalog

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/janekbaraniewski/usagebridge/internal/core"
	"github.com/janekbaraniewski/usagebridge/internal/host"
)

const (
	ProviderName = "openrouter"
	ProviderAPI  = "openai-completions"
)

type BridgeOptions struct {
	ProviderName string
	BaseURL      string
	API          string
	Now          func() time.Time
}

// Bridge owns the published catalog. It is the only writer of the slot and
// of the host provider registration.
type Bridge struct {
	source   Source
	registry host.ProviderRegistry
	opts     BridgeOptions

	// refreshMu serializes fetch+publish cycles; mu guards current.
	refreshMu sync.Mutex
	mu        sync.RWMutex
	current   core.Catalog
}

func NewBridge(source Source, registry host.ProviderRegistry, opts BridgeOptions) *Bridge {
	if opts.ProviderName == "" {
		opts.ProviderName = ProviderName
	}
	if opts.API == "" {
		opts.API = ProviderAPI
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Bridge{source: source, registry: registry, opts: opts}
}

// Load runs the initial fetch. A failed fetch is logged and replaced by the
// fallback table, so Load only errors when the host rejects registration.
func (b *Bridge) Load(ctx context.Context) (core.Catalog, error) {
	b.refreshMu.Lock()
	defer b.refreshMu.Unlock()

	cat := core.Catalog{Source: core.CatalogSourceLive, FetchedAt: b.opts.Now()}
	models, err := b.source.Fetch(ctx)
	if err != nil {
		models = Fallback()
		cat.Source = core.CatalogSourceFallback
		log.Printf("[catalog] initial load failed: %v; using fallback (%d models)", err, len(models))
	}
	cat.Models = models

	if err := b.publish(cat); err != nil {
		return cat, err
	}
	log.Printf("[catalog] published %d models (%s)", cat.Len(), cat.Source)
	return cat, nil
}

// Refresh re-fetches and republishes. On any error the published catalog
// is left exactly as it was and the error is returned.
func (b *Bridge) Refresh(ctx context.Context) (core.Catalog, error) {
	b.refreshMu.Lock()
	defer b.refreshMu.Unlock()

	models, err := b.source.Fetch(ctx)
	if err != nil {
		log.Printf("[catalog] refresh failed: %v", err)
		return core.Catalog{}, err
	}

	cat := core.Catalog{Models: models, Source: core.CatalogSourceLive, FetchedAt: b.opts.Now()}
	if err := b.publish(cat); err != nil {
		return core.Catalog{}, err
	}
	log.Printf("[catalog] refreshed %d models", cat.Len())
	return cat, nil
}

// Current returns a copy of the published catalog.
func (b *Bridge) Current() core.Catalog {
	b.mu.RLock()
	defer b.mu.RUnlock()
	cat := b.current
	cat.Models = slices.Clone(cat.Models)
	return cat
}

func (b *Bridge) baseURL() string {
	if e, ok := b.source.(Endpoint); ok {
		if u := e.BaseURL(); u != "" {
			return u
		}
	}
	return b.opts.BaseURL
}

func (b *Bridge) publish(cat core.Catalog) error {
	if b.registry != nil {
		err := b.registry.RegisterProvider(host.ProviderConfig{
			Name:    b.opts.ProviderName,
			BaseURL: b.baseURL(),
			API:     b.opts.API,
			Models:  slices.Clone(cat.Models),
		})
		if err != nil {
			return fmt.Errorf("registering provider %s: %w", b.opts.ProviderName, err)
		}
	}

	b.mu.Lock()
	b.current = cat
	b.mu.Unlock()
	return nil
}

package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/janekbaraniewski/usagebridge/internal/core"
	"github.com/janekbaraniewski/usagebridge/internal/host"
)

type fakeSource struct {
	mu     sync.Mutex
	models []core.ModelConfig
	err    error
	calls  int
}

func (f *fakeSource) Fetch(context.Context) ([]core.ModelConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]core.ModelConfig(nil), f.models...), nil
}

func (f *fakeSource) set(models []core.ModelConfig, err error) {
	f.mu.Lock()
	f.models, f.err = models, err
	f.mu.Unlock()
}

type fakeRegistry struct {
	mu         sync.Mutex
	registered []host.ProviderConfig
	err        error
}

func (r *fakeRegistry) RegisterProvider(cfg host.ProviderConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.registered = append(r.registered, cfg)
	return nil
}

func (r *fakeRegistry) last() host.ProviderConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registered[len(r.registered)-1]
}

func modelIDs(models []core.ModelConfig) []string {
	out := make([]string, len(models))
	for i, m := range models {
		out[i] = m.ID
	}
	return out
}

type movingSource struct {
	fakeSource
	url string
}

func (m *movingSource) BaseURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.url
}

func TestBridgeRefresh_PublishesSourceBaseURL(t *testing.T) {
	src := &movingSource{fakeSource: fakeSource{models: []core.ModelConfig{{ID: "a"}}}, url: "https://gw-one.example.com/v1"}
	reg := &fakeRegistry{}
	b := NewBridge(src, reg, BridgeOptions{BaseURL: "https://static.example.com/v1"})

	if _, err := b.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := reg.last().BaseURL; got != "https://gw-one.example.com/v1" {
		t.Errorf("initial BaseURL = %q", got)
	}

	src.mu.Lock()
	src.url = "https://gw-two.example.com/v1"
	src.mu.Unlock()
	if _, err := b.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := reg.last().BaseURL; got != "https://gw-two.example.com/v1" {
		t.Errorf("refreshed BaseURL = %q", got)
	}

	src.mu.Lock()
	src.url = ""
	src.mu.Unlock()
	if _, err := b.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := reg.last().BaseURL; got != "https://static.example.com/v1" {
		t.Errorf("empty source URL should fall back to options, got %q", got)
	}
}

func TestBridgeLoad_PublishesLiveCatalog(t *testing.T) {
	src := &fakeSource{models: []core.ModelConfig{{ID: "a"}, {ID: "b"}}}
	reg := &fakeRegistry{}
	fixed := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	b := NewBridge(src, reg, BridgeOptions{BaseURL: "https://gw.example.com/v1", Now: func() time.Time { return fixed }})

	cat, err := b.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cat.Source != core.CatalogSourceLive || !cat.FetchedAt.Equal(fixed) {
		t.Errorf("catalog meta = %s %v", cat.Source, cat.FetchedAt)
	}

	got := reg.last()
	if got.Name != ProviderName || got.API != ProviderAPI || got.BaseURL != "https://gw.example.com/v1" {
		t.Errorf("registration = %+v", got)
	}
	if !reflect.DeepEqual(modelIDs(got.Models), []string{"a", "b"}) {
		t.Errorf("registered ids = %v", modelIDs(got.Models))
	}
}

func TestBridgeLoad_GatewayFailureUsesFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	reg := &fakeRegistry{}
	b := NewBridge(NewFetcher(server.URL, nil, ""), reg, BridgeOptions{})

	cat, err := b.Load(context.Background())
	if err != nil {
		t.Fatalf("Load should not surface fetch errors, got %v", err)
	}
	if cat.Source != core.CatalogSourceFallback {
		t.Errorf("Source = %s, want fallback", cat.Source)
	}

	want := modelIDs(Fallback())
	if got := modelIDs(b.Current().Models); !reflect.DeepEqual(got, want) {
		t.Errorf("published = %v, want fallback %v", got, want)
	}
	if got := modelIDs(reg.last().Models); !reflect.DeepEqual(got, want) {
		t.Errorf("registered = %v, want fallback %v", got, want)
	}
}

func TestBridgeRefresh_FailureKeepsPublishedCatalog(t *testing.T) {
	src := &fakeSource{models: []core.ModelConfig{{ID: "live-1"}, {ID: "live-2"}}}
	reg := &fakeRegistry{}
	b := NewBridge(src, reg, BridgeOptions{})
	if _, err := b.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	before := b.Current()

	src.set(nil, &core.FetchError{Op: "fetch models", StatusCode: 500})
	_, err := b.Refresh(context.Background())
	var fe *core.FetchError
	if !errors.As(err, &fe) || fe.StatusCode != 500 {
		t.Fatalf("Refresh error = %v, want FetchError 500", err)
	}

	if after := b.Current(); !reflect.DeepEqual(after, before) {
		t.Errorf("catalog changed on failed refresh: %v -> %v", modelIDs(before.Models), modelIDs(after.Models))
	}
	if len(reg.registered) != 1 {
		t.Errorf("registrations = %d, failed refresh must not republish", len(reg.registered))
	}
}

func TestBridgeRefresh_EmptyCatalogDoesNotFallBack(t *testing.T) {
	src := &fakeSource{models: []core.ModelConfig{{ID: "live"}}}
	b := NewBridge(src, &fakeRegistry{}, BridgeOptions{})
	b.Load(context.Background())

	src.set(nil, core.NewEmptyCatalogError(4))
	if _, err := b.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if got := modelIDs(b.Current().Models); !reflect.DeepEqual(got, []string{"live"}) {
		t.Errorf("published = %v, want [live]", got)
	}
}

func TestBridgeRefresh_SuccessReplacesCatalog(t *testing.T) {
	src := &fakeSource{err: errors.New("offline")}
	reg := &fakeRegistry{}
	b := NewBridge(src, reg, BridgeOptions{})
	b.Load(context.Background())

	src.set([]core.ModelConfig{{ID: "fresh"}}, nil)
	cat, err := b.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if cat.Source != core.CatalogSourceLive {
		t.Errorf("Source = %s", cat.Source)
	}
	if got := modelIDs(b.Current().Models); !reflect.DeepEqual(got, []string{"fresh"}) {
		t.Errorf("published = %v", got)
	}
	if got := modelIDs(reg.last().Models); !reflect.DeepEqual(got, []string{"fresh"}) {
		t.Errorf("registered = %v", got)
	}
}

func TestBridgeRefresh_RegistryRejectionKeepsCatalog(t *testing.T) {
	src := &fakeSource{models: []core.ModelConfig{{ID: "v1"}}}
	reg := &fakeRegistry{}
	b := NewBridge(src, reg, BridgeOptions{})
	b.Load(context.Background())

	reg.err = errors.New("host shutting down")
	src.set([]core.ModelConfig{{ID: "v2"}}, nil)
	if _, err := b.Refresh(context.Background()); err == nil {
		t.Fatal("expected registration error")
	}
	if got := modelIDs(b.Current().Models); !reflect.DeepEqual(got, []string{"v1"}) {
		t.Errorf("published = %v, want [v1]", got)
	}
}

func TestBridgeRefresh_ConcurrentRefreshesPublishWholeCatalogs(t *testing.T) {
	small := []core.ModelConfig{{ID: "s1"}}
	large := []core.ModelConfig{{ID: "l1"}, {ID: "l2"}, {ID: "l3"}}
	src := &fakeSource{models: small}
	b := NewBridge(src, &fakeRegistry{}, BridgeOptions{})
	b.Load(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				src.set(large, nil)
			} else {
				src.set(small, nil)
			}
			b.Refresh(context.Background())
		}(i)
	}
	wg.Wait()

	got := modelIDs(b.Current().Models)
	if !reflect.DeepEqual(got, modelIDs(small)) && !reflect.DeepEqual(got, modelIDs(large)) {
		t.Errorf("published interleaved catalog %v", got)
	}
}

func TestBridgeCurrent_ReturnsCopy(t *testing.T) {
	src := &fakeSource{models: []core.ModelConfig{{ID: "a"}}}
	b := NewBridge(src, nil, BridgeOptions{})
	b.Load(context.Background())

	cat := b.Current()
	cat.Models[0].ID = "mutated"
	if b.Current().Models[0].ID != "a" {
		t.Error("Current() exposed the published slice")
	}
}

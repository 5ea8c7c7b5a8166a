package catalog

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/janekbaraniewski/usagebridge/internal/core"
	"github.com/janekbaraniewski/usagebridge/internal/providers/shared"
	"github.com/janekbaraniewski/usagebridge/internal/version"
)

// missingIndex ranks records without a preferred index after all others.
const missingIndex = math.MaxInt

// Source produces a normalized catalog. *Fetcher is the production source.
type Source interface {
	Fetch(ctx context.Context) ([]core.ModelConfig, error)
}

// Endpoint is implemented by sources whose gateway URL can change between
// fetches. The bridge publishes the URL reported after a fetch in place of
// BridgeOptions.BaseURL.
type Endpoint interface {
	BaseURL() string
}

type Fetcher struct {
	baseURL string
	client  *http.Client
}

// NewFetcher builds a fetcher for GET <baseURL>/models. apiKey is optional;
// the listing endpoint is public on most gateways.
func NewFetcher(baseURL string, client *http.Client, apiKey string) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if strings.TrimSpace(apiKey) != "" {
		client = shared.BearerClient(client, strings.TrimSpace(apiKey))
	}
	return &Fetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// FetchRaw returns the gateway's records in presentation order.
func (f *Fetcher) FetchRaw(ctx context.Context) ([]gjson.Result, error) {
	body, err := shared.DoJSON(ctx, f.client, shared.Request{
		Op:      "fetch models",
		URL:     f.baseURL + "/models",
		Headers: map[string]string{"User-Agent": version.UserAgent()},
	})
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, &core.FetchError{Op: "fetch models", Err: fmt.Errorf("response is not valid JSON")}
	}

	root := gjson.ParseBytes(body)
	list := root.Get("data")
	if root.IsArray() {
		list = root
	}
	records := list.Array()
	SortRecords(records)
	return records, nil
}

// Fetch returns the normalized catalog. A listing where no record survives
// normalization is an *core.EmptyCatalogError.
func (f *Fetcher) Fetch(ctx context.Context) ([]core.ModelConfig, error) {
	records, err := f.FetchRaw(ctx)
	if err != nil {
		return nil, err
	}
	models := NormalizeAll(records)
	if len(models) == 0 {
		return nil, core.NewEmptyCatalogError(len(records))
	}
	return models, nil
}

// NormalizeAll normalizes records in order, dropping invalid ones and
// keeping the first record for a duplicated id.
func NormalizeAll(records []gjson.Result) []core.ModelConfig {
	models := make([]core.ModelConfig, 0, len(records))
	for _, rec := range records {
		if m, ok := Normalize(rec); ok {
			models = append(models, m)
		}
	}
	return lo.UniqBy(models, func(m core.ModelConfig) string { return m.ID })
}

// SortRecords orders records by preferred index ascending, then by display
// name (id when the name is absent). The sort is stable.
func SortRecords(records []gjson.Result) {
	sort.SliceStable(records, func(i, j int) bool {
		pi, pj := preferredIndex(records[i]), preferredIndex(records[j])
		if pi != pj {
			return pi < pj
		}
		return sortName(records[i]) < sortName(records[j])
	})
}

func preferredIndex(rec gjson.Result) int {
	v := rec.Get("preferred_index")
	if !v.Exists() {
		v = rec.Get("preferredIndex")
	}
	if v.Type != gjson.Number {
		return missingIndex
	}
	f := v.Float()
	if f < 0 || f != math.Trunc(f) || f >= math.MaxInt32 {
		return missingIndex
	}
	return int(f)
}

// sortName mirrors the name Normalize publishes: the trimmed name, else the
// trimmed id.
func sortName(rec gjson.Result) string {
	if name := rec.Get("name"); name.Type == gjson.String {
		if trimmed := strings.TrimSpace(name.String()); trimmed != "" {
			return trimmed
		}
	}
	return strings.TrimSpace(rec.Get("id").String())
}

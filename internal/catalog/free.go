package catalog

import (
	"context"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/janekbaraniewski/usagebridge/internal/core"
	"github.com/janekbaraniewski/usagebridge/internal/parsers"
)

// IsFree reports whether every pricing field of rec is zero. A record
// without pricing data is not free.
func IsFree(rec gjson.Result) bool {
	pricing := rec.Get("pricing")
	if !pricing.IsObject() {
		return false
	}
	fields := 0
	free := true
	pricing.ForEach(func(_, v gjson.Result) bool {
		fields++
		price := parsers.Float(v)
		if price == nil || *price != 0 {
			free = false
			return false
		}
		return true
	})
	return fields > 0 && free
}

// FreeModels returns the normalized models whose raw records are free.
func FreeModels(records []gjson.Result) []core.ModelConfig {
	return NormalizeAll(lo.Filter(records, func(rec gjson.Result, _ int) bool {
		return IsFree(rec)
	}))
}

// FetchFree lists the gateway's free models in presentation order.
func (f *Fetcher) FetchFree(ctx context.Context) ([]core.ModelConfig, error) {
	records, err := f.FetchRaw(ctx)
	if err != nil {
		return nil, err
	}
	return FreeModels(records), nil
}

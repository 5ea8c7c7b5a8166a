// Package catalog turns a model gateway's raw listing into the canonical
// ModelConfig catalog and publishes it to the host's provider registry.
package catalog

import (
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/janekbaraniewski/usagebridge/internal/core"
	"github.com/janekbaraniewski/usagebridge/internal/parsers"
)

const (
	DefaultContextWindow = 128000
	MinMaxTokens         = 4096
	MaxMaxTokens         = 65536
)

// GatewayCompat is shared by every model served through the gateway.
var GatewayCompat = core.ModelCompat{
	SupportsStore:           false,
	SupportsDeveloperRole:   false,
	SupportsReasoningEffort: true,
	MaxTokensField:          "max_tokens",
}

var reasoningMarkers = []string{"reasoning", "include_reasoning"}

// Normalize maps one raw gateway record to a ModelConfig. It reports false
// when the record has no usable id. Missing or mistyped fields never fail;
// they fall back to defaults.
func Normalize(rec gjson.Result) (core.ModelConfig, bool) {
	id := strings.TrimSpace(rec.Get("id").String())
	if id == "" || rec.Get("id").Type != gjson.String {
		return core.ModelConfig{}, false
	}

	name := strings.TrimSpace(rec.Get("name").String())
	if name == "" || rec.Get("name").Type != gjson.String {
		name = id
	}

	contextWindow, ok := parsers.FirstPositiveInt(
		rec.Get("context_length"),
		rec.Get("top_provider.context_length"),
	)
	if !ok {
		contextWindow = DefaultContextWindow
	}

	maxTokens, ok := parsers.PositiveInt(rec.Get("top_provider.max_completion_tokens"))
	if !ok {
		maxTokens = EstimateMaxTokens(contextWindow)
	}

	input := []string{core.InputText}
	if hasString(rec.Get("architecture.input_modalities"), core.InputImage) {
		input = append(input, core.InputImage)
	}

	params := rec.Get("supported_parameters")
	reasoning := lo.SomeBy(reasoningMarkers, func(marker string) bool {
		return hasString(params, marker)
	})

	return core.ModelConfig{
		ID:            id,
		Name:          name,
		Reasoning:     reasoning,
		Input:         input,
		Cost:          core.ModelCost{},
		ContextWindow: contextWindow,
		MaxTokens:     maxTokens,
		Compat:        GatewayCompat,
	}, true
}

// NormalizeJSON is Normalize for a single encoded record.
func NormalizeJSON(raw []byte) (core.ModelConfig, bool) {
	return Normalize(gjson.ParseBytes(raw))
}

// EstimateMaxTokens derives an output cap when the gateway does not state one.
func EstimateMaxTokens(contextWindow int) int {
	return min(max(contextWindow/4, MinMaxTokens), MaxMaxTokens)
}

func hasString(list gjson.Result, want string) bool {
	if !list.IsArray() {
		return false
	}
	found := false
	list.ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.String && v.String() == want {
			found = true
			return false
		}
		return true
	})
	return found
}

package core

import "time"

type Severity string

const (
	SeverityNormal    Severity = "NORMAL"
	SeverityWarning   Severity = "WARNING"
	SeverityCritical  Severity = "CRITICAL"
	SeverityUnlimited Severity = "UNLIMITED"
)

// ModelCost is the per-token price vector published with a model.
type ModelCost struct {
	Input      float64 `json:"input"`
	Output     float64 `json:"output"`
	CacheRead  float64 `json:"cacheRead"`
	CacheWrite float64 `json:"cacheWrite"`
}

// ModelCompat describes request-shape quirks of the gateway serving a model.
// It is constant per gateway, never derived per model.
type ModelCompat struct {
	SupportsStore           bool   `json:"supportsStore"`
	SupportsDeveloperRole   bool   `json:"supportsDeveloperRole"`
	SupportsReasoningEffort bool   `json:"supportsReasoningEffort"`
	MaxTokensField          string `json:"maxTokensField"`
}

const (
	InputText  = "text"
	InputImage = "image"
)

type ModelConfig struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Reasoning     bool        `json:"reasoning"`
	Input         []string    `json:"input"`
	Cost          ModelCost   `json:"cost"`
	ContextWindow int         `json:"contextWindow"`
	MaxTokens     int         `json:"maxTokens"`
	Compat        ModelCompat `json:"compat"`
}

func (m ModelConfig) SupportsImages() bool {
	for _, in := range m.Input {
		if in == InputImage {
			return true
		}
	}
	return false
}

type CatalogSource string

const (
	CatalogSourceLive     CatalogSource = "live"
	CatalogSourceFallback CatalogSource = "fallback"
)

// Catalog is one published snapshot of models. Models must not be mutated
// after publication; a refresh replaces the whole Catalog.
type Catalog struct {
	Models    []ModelConfig `json:"models"`
	Source    CatalogSource `json:"source"`
	FetchedAt time.Time     `json:"fetched_at"`
}

func (c Catalog) Len() int { return len(c.Models) }

package catalog

import "github.com/janekbaraniewski/usagebridge/internal/core"

var fallbackModels = []core.ModelConfig{
	{
		ID:            "anthropic/claude-sonnet-4.5",
		Name:          "Anthropic: Claude Sonnet 4.5",
		Reasoning:     true,
		Input:         []string{core.InputText, core.InputImage},
		ContextWindow: 1000000,
		MaxTokens:     64000,
	},
	{
		ID:            "google/gemini-2.5-pro",
		Name:          "Google: Gemini 2.5 Pro",
		Reasoning:     true,
		Input:         []string{core.InputText, core.InputImage},
		ContextWindow: 1048576,
		MaxTokens:     65536,
	},
	{
		ID:            "openai/gpt-4.1",
		Name:          "OpenAI: GPT-4.1",
		Reasoning:     false,
		Input:         []string{core.InputText, core.InputImage},
		ContextWindow: 1047576,
		MaxTokens:     32768,
	},
	{
		ID:            "deepseek/deepseek-chat-v3.1",
		Name:          "DeepSeek: DeepSeek V3.1",
		Reasoning:     true,
		Input:         []string{core.InputText},
		ContextWindow: 163840,
		MaxTokens:     40960,
	},
	{
		ID:            "x-ai/grok-code-fast-1",
		Name:          "xAI: Grok Code Fast 1",
		Reasoning:     true,
		Input:         []string{core.InputText},
		ContextWindow: 256000,
		MaxTokens:     10000,
	},
}

// Fallback returns the compiled-in catalog used when the initial fetch
// fails. Each call returns a fresh copy.
func Fallback() []core.ModelConfig {
	out := make([]core.ModelConfig, len(fallbackModels))
	for i, m := range fallbackModels {
		m.Input = append([]string(nil), m.Input...)
		m.Compat = GatewayCompat
		out[i] = m
	}
	return out
}

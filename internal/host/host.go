// Package host defines the ports through which extensions talk to the agent
// runtime: provider, command and tool registries plus a small UI surface.
package host

import (
	"context"
	"encoding/json"

	"github.com/janekbaraniewski/usagebridge/internal/core"
)

// ProviderConfig is what a provider registration publishes to the runtime.
type ProviderConfig struct {
	Name    string             `json:"name"`
	BaseURL string             `json:"baseUrl"`
	API     string             `json:"api"` // request dialect, e.g. "openai-completions"
	Models  []core.ModelConfig `json:"models"`
}

type NotifyLevel string

const (
	NotifyInfo    NotifyLevel = "info"
	NotifyWarning NotifyLevel = "warning"
	NotifyError   NotifyLevel = "error"
)

// UI is the display surface offered to command handlers.
type UI interface {
	Notify(msg string, level NotifyLevel)
	// SetWidget shows lines under key. Nil lines remove the widget.
	SetWidget(key string, lines []string)
}

type CommandContext struct {
	UI UI
}

type Command struct {
	Name        string
	Description string
	Handler     func(ctx context.Context, args string, cc CommandContext) error
}

type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

func TextContent(text string) ContentBlock {
	return ContentBlock{Type: "text", Text: text}
}

type ToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage
	Execute     func(ctx context.Context, params json.RawMessage) (ToolResult, error)
}

// EmptyParameters is the schema of a tool that takes no arguments.
var EmptyParameters = json.RawMessage(`{"type":"object","properties":{},"additionalProperties":false}`)

type ProviderRegistry interface {
	RegisterProvider(cfg ProviderConfig) error
}

type CommandRegistry interface {
	RegisterCommand(cmd Command) error
}

type ToolRegistry interface {
	RegisterTool(tool Tool) error
}

// API is the full registration surface handed to an extension entry point.
type API interface {
	ProviderRegistry
	CommandRegistry
	ToolRegistry
}

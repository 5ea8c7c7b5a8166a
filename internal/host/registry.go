package host

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Registry is an in-process host: it stores registrations and dispatches
// command and tool invocations.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]ProviderConfig
	commands  map[string]Command
	tools     map[string]Tool
	onPublish []func(ProviderConfig)
}

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]ProviderConfig),
		commands:  make(map[string]Command),
		tools:     make(map[string]Tool),
	}
}

// OnProviderRegistered adds a hook invoked after every provider registration.
func (r *Registry) OnProviderRegistered(fn func(ProviderConfig)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.onPublish = append(r.onPublish, fn)
	r.mu.Unlock()
}

// RegisterProvider replaces any previous registration under the same name.
func (r *Registry) RegisterProvider(cfg ProviderConfig) error {
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		return fmt.Errorf("provider has empty name")
	}
	r.mu.Lock()
	r.providers[name] = cfg
	hooks := append([]func(ProviderConfig){}, r.onPublish...)
	r.mu.Unlock()

	for _, fn := range hooks {
		fn(cfg)
	}
	return nil
}

func (r *Registry) RegisterCommand(cmd Command) error {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return fmt.Errorf("command has empty name")
	}
	if cmd.Handler == nil {
		return fmt.Errorf("command %q has no handler", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.commands[name]; exists {
		return fmt.Errorf("command %q already registered", name)
	}
	r.commands[name] = cmd
	return nil
}

func (r *Registry) RegisterTool(tool Tool) error {
	name := strings.TrimSpace(tool.Name)
	if name == "" {
		return fmt.Errorf("tool has empty name")
	}
	if tool.Execute == nil {
		return fmt.Errorf("tool %q has no execute function", name)
	}
	if len(tool.Parameters) == 0 {
		tool.Parameters = EmptyParameters
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.tools[name] = tool
	return nil
}

func (r *Registry) Provider(name string) (ProviderConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.providers[name]
	return cfg, ok
}

// Commands returns registered commands sorted by name.
func (r *Registry) Commands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Tools returns registered tools sorted by name.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) RunCommand(ctx context.Context, name, args string, ui UI) error {
	r.mu.RLock()
	cmd, ok := r.commands[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown command %q", name)
	}
	return cmd.Handler(ctx, args, CommandContext{UI: ui})
}

// CallTool executes a tool. Execution errors are folded into an error
// result, matching how the runtime reports tool failures to the model.
func (r *Registry) CallTool(ctx context.Context, name string, params json.RawMessage) (ToolResult, error) {
	r.mu.RLock()
	tool, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return ToolResult{}, fmt.Errorf("unknown tool %q", name)
	}
	if len(params) == 0 {
		params = json.RawMessage(`{}`)
	}

	callID := uuid.NewString()
	log.Printf("[host] tool call %s id=%s", name, callID)

	res, err := tool.Execute(ctx, params)
	if err != nil {
		log.Printf("[host] tool call %s id=%s failed: %v", name, callID, err)
		return ToolResult{Content: []ContentBlock{TextContent(err.Error())}, IsError: true}, nil
	}
	return res, nil
}

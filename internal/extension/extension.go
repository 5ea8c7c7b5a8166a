// Package extension is the entry point the host runtime calls. It loads the
// model catalog (falling back to the built-in table), publishes it, and
// registers the refresh and quota commands and tools.
package extension

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/usagebridge/internal/catalog"
	"github.com/janekbaraniewski/usagebridge/internal/core"
	"github.com/janekbaraniewski/usagebridge/internal/host"
	"github.com/janekbaraniewski/usagebridge/internal/providers"
	"github.com/janekbaraniewski/usagebridge/internal/quota"
	"github.com/janekbaraniewski/usagebridge/internal/tui"
)

const (
	CommandRefreshModels = "refresh-models"
	CommandFreeModels    = "free-models"
	ToolRefreshModels    = "refresh_models"
)

// FreeLister is implemented by catalog sources that can list free models.
type FreeLister interface {
	FetchFree(ctx context.Context) ([]core.ModelConfig, error)
}

type Deps struct {
	Source    catalog.Source
	BaseURL   string // published with the provider
	Reporters []providers.QuotaReporter

	// Window is how long quota widgets stay up; zero means 60s.
	Window    time.Duration
	Width     int
	AfterFunc quota.AfterFunc
	Now       func() time.Time
}

type Extension struct {
	deps     Deps
	bridge   *catalog.Bridge
	displays map[string]*quota.Display
}

// Register performs the initial catalog load and registers every command
// and tool on api. Only registration failures are returned; a failed
// initial fetch publishes the fallback table instead.
func Register(ctx context.Context, api host.API, deps Deps) (*Extension, error) {
	if deps.Source == nil {
		return nil, fmt.Errorf("extension: no catalog source")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Width <= 0 {
		deps.Width = tui.DefaultWidth
	}

	ext := &Extension{
		deps: deps,
		bridge: catalog.NewBridge(deps.Source, api, catalog.BridgeOptions{
			BaseURL: deps.BaseURL,
			Now:     deps.Now,
		}),
		displays: make(map[string]*quota.Display),
	}

	if _, err := ext.bridge.Load(ctx); err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	commands := []host.Command{
		{
			Name:        CommandRefreshModels,
			Description: "Re-fetch the model list from the gateway and republish it",
			Handler:     ext.refreshCommand,
		},
		{
			Name:        CommandFreeModels,
			Description: "List models the gateway currently offers for free",
			Handler:     ext.freeModelsCommand,
		},
	}
	tools := []host.Tool{
		{
			Name:        ToolRefreshModels,
			Description: "Refresh the model catalog from the gateway. Returns the number of models published.",
			Parameters:  host.EmptyParameters,
			Execute:     ext.refreshTool,
		},
	}

	for _, r := range deps.Reporters {
		key := r.ID() + "-quota"
		ext.displays[r.ID()] = quota.NewDisplay(key, deps.Window, deps.AfterFunc)
		commands = append(commands, host.Command{
			Name:        key,
			Description: "Show " + r.Describe().Name + " quota",
			Handler: func(ctx context.Context, _ string, cc host.CommandContext) error {
				return ext.quotaCommand(ctx, r, cc)
			},
		})
		tools = append(tools, host.Tool{
			Name:        r.ID() + "_quota",
			Description: "Report remaining " + r.Describe().Name + " quota per model or bucket.",
			Parameters:  host.EmptyParameters,
			Execute: func(ctx context.Context, _ json.RawMessage) (host.ToolResult, error) {
				return ext.quotaTool(ctx, r)
			},
		})
	}

	for _, cmd := range commands {
		if err := api.RegisterCommand(cmd); err != nil {
			return nil, fmt.Errorf("registering command %s: %w", cmd.Name, err)
		}
	}
	for _, tool := range tools {
		if err := api.RegisterTool(tool); err != nil {
			return nil, fmt.Errorf("registering tool %s: %w", tool.Name, err)
		}
	}
	log.Printf("[extension] registered %d commands, %d tools", len(commands), len(tools))
	return ext, nil
}

// Catalog exposes the bridge that owns the published catalog.
func (e *Extension) Catalog() *catalog.Bridge { return e.bridge }

// Refresh is the shared path of the refresh command, tool and file watcher.
func (e *Extension) Refresh(ctx context.Context) (core.Catalog, error) {
	return e.bridge.Refresh(ctx)
}

// Close clears any quota widget still on screen.
func (e *Extension) Close() {
	for _, d := range e.displays {
		d.Clear()
	}
}

func (e *Extension) refreshCommand(ctx context.Context, _ string, cc host.CommandContext) error {
	cat, err := e.Refresh(ctx)
	if err != nil {
		notify(cc, "Model refresh failed: "+err.Error(), host.NotifyError)
		return err
	}
	notify(cc, refreshSummary(cat), host.NotifyInfo)
	return nil
}

func (e *Extension) refreshTool(ctx context.Context, _ json.RawMessage) (host.ToolResult, error) {
	cat, err := e.Refresh(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return host.ToolResult{Content: []host.ContentBlock{host.TextContent(refreshSummary(cat))}}, nil
}

func refreshSummary(cat core.Catalog) string {
	return fmt.Sprintf("Refreshed %d models from %s", cat.Len(), catalog.ProviderName)
}

func (e *Extension) freeModelsCommand(ctx context.Context, _ string, cc host.CommandContext) error {
	lister, ok := e.deps.Source.(FreeLister)
	if !ok {
		err := fmt.Errorf("catalog source cannot list free models")
		notify(cc, err.Error(), host.NotifyError)
		return err
	}
	models, err := lister.FetchFree(ctx)
	if err != nil {
		notify(cc, "Listing free models failed: "+err.Error(), host.NotifyError)
		return err
	}
	if len(models) == 0 {
		notify(cc, "No free models right now", host.NotifyInfo)
		return nil
	}
	lines := lo.Map(models, func(m core.ModelConfig, _ int) string {
		if m.Name == m.ID {
			return "  " + m.ID
		}
		return "  " + m.ID + " (" + m.Name + ")"
	})
	notify(cc, fmt.Sprintf("%d free models:\n%s", len(models), strings.Join(lines, "\n")), host.NotifyInfo)
	return nil
}

func (e *Extension) quotaCommand(ctx context.Context, r providers.QuotaReporter, cc host.CommandContext) error {
	report, err := r.Report(ctx)
	if err != nil {
		e.displays[r.ID()].Clear()
		notify(cc, r.Describe().Name+" quota: "+err.Error(), host.NotifyError)
		return err
	}
	if cc.UI == nil {
		return nil
	}
	e.displays[r.ID()].Show(cc.UI, tui.RenderReport(report, e.deps.Width, e.deps.Now()))
	return nil
}

func (e *Extension) quotaTool(ctx context.Context, r providers.QuotaReporter) (host.ToolResult, error) {
	report, err := r.Report(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	text := tui.PlainReport(report, e.deps.Now())
	return host.ToolResult{Content: []host.ContentBlock{host.TextContent(text)}}, nil
}

func errorResult(err error) host.ToolResult {
	return host.ToolResult{Content: []host.ContentBlock{host.TextContent(err.Error())}, IsError: true}
}

func notify(cc host.CommandContext, msg string, level host.NotifyLevel) {
	if cc.UI != nil {
		cc.UI.Notify(msg, level)
	}
}

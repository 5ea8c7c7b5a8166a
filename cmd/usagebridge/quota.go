package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/usagebridge/internal/config"
	"github.com/janekbaraniewski/usagebridge/internal/providers"
	"github.com/janekbaraniewski/usagebridge/internal/providers/shared"
	"github.com/janekbaraniewski/usagebridge/internal/tui"
)

func newQuotaCommand(cfg config.Config) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "quota",
		Short: "Show provider quota",
	}
	for _, vendor := range []struct{ id, short string }{
		{"antigravity", "Show Antigravity per-model quota"},
		{"copilot", "Show GitHub Copilot quota snapshots"},
	} {
		cmd.AddCommand(&cobra.Command{
			Use:   vendor.id,
			Short: vendor.short,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runQuota(cmd.Context(), cfg, vendor.id, cmd.OutOrStdout(), plain)
			},
		})
	}
	cmd.PersistentFlags().BoolVar(&plain, "plain", false, "print without colors")
	return cmd
}

// runQuota prints one report. It talks to the vendor only; the model
// catalog is not loaded.
func runQuota(ctx context.Context, cfg config.Config, id string, out io.Writer, plain bool) error {
	reporters := providers.AllQuotaReporters(providers.Options{
		Config:     cfg,
		HTTPClient: shared.NewHTTPClient(cfg.HTTPTimeout()),
	})
	r, ok := providers.QuotaReporterByID(reporters, id)
	if !ok {
		return fmt.Errorf("unknown quota provider %q", id)
	}

	report, err := r.Report(ctx)
	if err != nil {
		return fmt.Errorf("%s quota: %w", id, err)
	}

	now := time.Now()
	text := tui.PlainReport(report, now)
	if !plain {
		text = strings.Join(tui.RenderReport(report, tui.DefaultWidth, now), "\n")
	}
	_, err = fmt.Fprintln(out, text)
	return err
}

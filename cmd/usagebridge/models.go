package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/usagebridge/internal/config"
	"github.com/janekbaraniewski/usagebridge/internal/core"
	"github.com/janekbaraniewski/usagebridge/internal/extension"
)

func newModelsCommand(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect and refresh the published model catalog",
	}
	cmd.AddCommand(newModelsListCommand(cfg))
	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Fetch the catalog again and republish it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newBridgeHost(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return rt.registry.RunCommand(cmd.Context(), extension.CommandRefreshModels, "", consoleUI{})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "free",
		Short: "List models the gateway offers for free",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newBridgeHost(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return rt.registry.RunCommand(cmd.Context(), extension.CommandFreeModels, "", consoleUI{})
		},
	})
	return cmd
}

func newModelsListCommand(cfg config.Config) *cobra.Command {
	var (
		filter string
		images bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the models published after the initial load",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newBridgeHost(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			cat := rt.ext.Catalog().Current()
			if cat.Source == core.CatalogSourceFallback {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: gateway unreachable, showing the built-in fallback catalog")
			}
			return printModels(cmd.OutOrStdout(), cmd.ErrOrStderr(), cat, strings.ToLower(strings.TrimSpace(filter)), images)
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "only show models whose id contains this text")
	cmd.Flags().BoolVar(&images, "images", false, "only show models that accept image input")
	return cmd
}

func printModels(out, summary io.Writer, cat core.Catalog, filter string, imagesOnly bool) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCONTEXT\tMAX OUT\tINPUT\tREASONING")
	shown := 0
	for _, m := range cat.Models {
		if filter != "" && !strings.Contains(strings.ToLower(m.ID), filter) {
			continue
		}
		if imagesOnly && !m.SupportsImages() {
			continue
		}
		reasoning := "-"
		if m.Reasoning {
			reasoning = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			m.ID,
			m.Name,
			humanize.Comma(int64(m.ContextWindow)),
			humanize.Comma(int64(m.MaxTokens)),
			strings.Join(m.Input, "+"),
			reasoning,
		)
		shown++
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(summary, "%d of %d models (%s)\n", shown, cat.Len(), cat.Source)
	return nil
}

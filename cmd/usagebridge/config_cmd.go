package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/usagebridge/internal/config"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Printf("# %s\n%s\n", config.ConfigPath(), data)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set-gateway <url>",
		Short: "Point the catalog at another OpenAI-compatible gateway",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			raw := strings.TrimSpace(args[0])
			u, err := url.Parse(raw)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("invalid gateway url %q", raw)
			}
			if err := config.SaveGatewayURL(raw); err != nil {
				return fmt.Errorf("saving gateway url: %w", err)
			}
			fmt.Printf("gateway set to %s\n", raw)
			return nil
		},
	})
	return cmd
}

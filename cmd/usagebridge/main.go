package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/usagebridge/internal/config"
)

func main() {
	if os.Getenv("USAGEBRIDGE_DEBUG") != "" {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Config path: %s\n", config.ConfigPath())
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:           "usagebridge",
		Short:         "usagebridge keeps an agent's model catalog fresh and reports Antigravity and Copilot quota.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(cmd.Context(), cfg)
		},
	}

	root.AddCommand(newModelsCommand(cfg))
	root.AddCommand(newQuotaCommand(cfg))
	root.AddCommand(newDashboardCommand(cfg))
	root.AddCommand(newWatchCommand(cfg))
	root.AddCommand(newConfigCommand())
	root.AddCommand(newVersionCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

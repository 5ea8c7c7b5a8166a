package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/usagebridge/internal/config"
	"github.com/janekbaraniewski/usagebridge/internal/watch"
)

func newWatchCommand(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Refresh the model catalog whenever settings or credentials change",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := newBridgeHost(ctx, cfg)
			if err != nil {
				return err
			}
			cat := rt.ext.Catalog().Current()
			fmt.Printf("loaded %d models (%s)\n", cat.Len(), cat.Source)

			files := []string{config.ConfigPath(), cfg.AuthPath}
			w, err := watch.New(files, 0, func(ctx context.Context, path string) {
				cat, err := rt.ext.Refresh(ctx)
				if err != nil {
					fmt.Fprintf(os.Stderr, "refresh after %s changed failed: %v\n", path, err)
					return
				}
				fmt.Printf("%s changed: published %d models\n", path, cat.Len())
			})
			if err != nil {
				return err
			}
			defer w.Close()

			fmt.Printf("watching %s and %s\n", files[0], files[1])
			w.Run(ctx)
			return nil
		},
	}
}

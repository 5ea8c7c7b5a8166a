package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/usagebridge/internal/config"
	"github.com/janekbaraniewski/usagebridge/internal/tui"
)

func newDashboardCommand(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Interactive view of the catalog and quota widgets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(cmd.Context(), cfg)
		},
	}
}

func runDashboard(parent context.Context, cfg config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	rt, err := newBridgeHost(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.ext.Close()

	board := tui.NewBoard()
	model := tui.NewModel(ctx, rt.registry, rt.ext.Catalog(), board)
	program := tea.NewProgram(model, tea.WithAltScreen())
	board.SetOnChange(func() {
		program.Send(tui.BoardChangedMsg{})
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
			program.Quit()
		case <-ctx.Done():
		}
	}()

	if _, err := program.Run(); err != nil {
		log.SetOutput(os.Stderr)
		log.Printf("TUI error: %v", err)
		return err
	}
	return nil
}

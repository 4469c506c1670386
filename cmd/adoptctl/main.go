// Command adoptctl runs maintenance tasks against the adoption database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/adoption-service/internal/app"
	"github.com/spec-kit/adoption-service/internal/config"
	"github.com/spec-kit/adoption-service/internal/observability"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "adoptctl",
		Short:         "Maintenance commands for the pet adoption service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(reconcileCmd())
	rootCmd.AddCommand(unbanSweepCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withContainer loads configuration, builds the container and closes it once
// fn returns.
func withContainer(ctx context.Context, fn func(*app.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	container, err := app.Build(ctx, *cfg, logger)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	defer container.Close()

	if container.Postgres.PoolHandle() == nil {
		logger.Warn("running against the in-memory store; changes are not persisted", zap.String("hint", "set POSTGRES_DSN"))
	}
	return fn(container)
}

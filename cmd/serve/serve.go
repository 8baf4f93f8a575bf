// Package serve implements the long-running daemon command: scheduled
// imports plus the operator HTTP API.
package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/estatelink/property-importer/cmd/common"
	"github.com/estatelink/property-importer/internal/api"
)

const shutdownTimeout = 30 * time.Second

// NewCommand creates the serve command.
func NewCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the import scheduler and operator API",
		Long: `Start the property importer as a daemon. Imports fire on the configured
cron schedule; the operator API exposes status, manual triggering, and run
history. The process runs until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	return cmd
}

func run(ctx context.Context, configPath string) error {
	deps, err := common.NewCommandDeps(configPath)
	if err != nil {
		return err
	}

	pipeline, err := common.BuildPipeline(ctx, deps)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	if startErr := pipeline.Guard.Start(); startErr != nil {
		return fmt.Errorf("start schedule: %w", startErr)
	}

	server := api.NewServer(
		deps.Config.Server,
		api.NewImportHandler(pipeline.Guard, pipeline.Runs),
		deps.Logger,
	)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-signals:
		deps.Logger.Info("shutdown signal received", "signal", sig.String())
	case err = <-serverErr:
		if err != nil {
			deps.Logger.Error("operator API failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if stopErr := pipeline.Guard.Stop(shutdownCtx); stopErr != nil {
		deps.Logger.Warn("schedule stop incomplete", "error", stopErr)
	}
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		deps.Logger.Warn("operator API shutdown incomplete", "error", shutdownErr)
	}

	deps.Logger.Info("importer stopped")
	return err
}

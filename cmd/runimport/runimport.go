// Package runimport implements the one-shot manual import command.
package runimport

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/estatelink/property-importer/cmd/common"
	"github.com/estatelink/property-importer/internal/domain"
)

// NewCommand creates the run command.
func NewCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single import now",
		Long: `Fetch the source feed and run the full import pipeline once, then print
a summary of the run. Fails if another run is already in progress.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	return cmd
}

func run(cmd *cobra.Command, configPath string) error {
	deps, err := common.NewCommandDeps(configPath)
	if err != nil {
		return err
	}

	pipeline, err := common.BuildPipeline(cmd.Context(), deps)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	summary, err := pipeline.Guard.TriggerManually(domain.TriggerManual)
	if summary != nil {
		printSummary(summary)
	}
	if err != nil {
		return fmt.Errorf("import run: %w", err)
	}

	return nil
}

// printSummary renders the run counters as a table.
func printSummary(run *domain.ImportRun) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Run", "Status", "Processed", "Created", "Duplicates", "Failed"})
	t.AppendRow(table.Row{
		run.ID,
		string(run.Status),
		run.Processed,
		run.Created,
		run.Duplicates,
		run.Failed,
	})
	t.Render()
}

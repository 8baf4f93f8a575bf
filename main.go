package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/estatelink/property-importer/cmd/runimport"
	"github.com/estatelink/property-importer/cmd/serve"
)

func main() {
	root := &cobra.Command{
		Use:   "property-importer",
		Short: "Scheduled import pipeline for real-estate listings",
	}
	root.AddCommand(
		serve.NewCommand(),
		runimport.NewCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

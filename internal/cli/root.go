// Package cli implements the genebank command line with cobra.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the genebank command tree.
func NewRootCmd() *cobra.Command {
	var configPath string
	rootCmd := &cobra.Command{
		Use:          "genebank",
		Short:        "genebank - genetic resource accession catalogue",
		Long:         `genebank serves and maintains a catalogue of germplasm accessions, accession sets and institutes.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML configuration file")

	rootCmd.AddCommand(
		newServeCmd(&configPath),
		newImportCmd(&configPath),
		newExportCmd(&configPath),
		newGroupCmd(&configPath),
		newUserCmd(&configPath),
		newTokenCmd(&configPath),
	)
	return rootCmd
}

package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Without a subcommand it serves the API.
func NewRootCmd() *cobra.Command {
	serve := NewServeCmd()

	cmd := &cobra.Command{
		Use:   "plant-disease-detection",
		Short: "Simulated plant leaf disease detection service",
		Long: `Upload a plant leaf photo and receive a simulated diagnosis with a
confidence score and treatment advice. The "analysis" is a timed script followed
by a random pick from a fixed disease catalog; no image content is inspected.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	cmd.Flags().AddFlagSet(serve.Flags())
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(serve)
	cmd.AddCommand(NewCatalogCmd())
	return cmd
}

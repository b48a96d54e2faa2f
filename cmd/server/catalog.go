package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satyanarayana32518/plant-disease-detection/internal/catalog"
	"github.com/satyanarayana32518/plant-disease-detection/internal/config"
	"github.com/satyanarayana32518/plant-disease-detection/internal/report"
)

func NewCatalogCmd() *cobra.Command {
	var (
		path     string
		validate bool
	)
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the active disease catalog",
		Long: fmt.Sprintf(`Print the disease catalog as a Markdown table.

The catalog comes from --catalog, CATALOG_FILE, or %s when that file
exists; otherwise the built-in table is used.`, config.DefaultCatalogPath()),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				path = cfg.CatalogFile
			}
			c, err := catalog.Load(path)
			if err != nil {
				return err
			}
			if validate {
				fmt.Fprintf(cmd.OutOrStdout(), "catalog ok: %d records\n", c.Len())
				return nil
			}
			return report.WriteCatalog(cmd.OutOrStdout(), c)
		},
	}
	cmd.Flags().StringVar(&path, "catalog", "", "YAML disease catalog")
	cmd.Flags().BoolVar(&validate, "validate", false, "only validate the catalog")
	return cmd
}

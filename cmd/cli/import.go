package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/prilavok/catalog-service/internal/database"
	"github.com/prilavok/catalog-service/internal/importer"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Run a full catalog import from the content directory",
	Long: `Run the catalog import pipeline: clear the current catalog, discover vendor
feed folders, persist their categories and products, join prices and stocks,
and relink categories to products. The whole run is one transaction; on any
failure the previous catalog stays in place.`,
	Example: `  catalog-service import
  catalog-service import --config ./config/config.yaml`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	imp := importer.New(database.Catalog(), cfg.Content.BaseDir, *logger)

	summary, err := imp.Run(context.Background())
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FOLDER\tPRODUCTS\tCATEGORIES")
	for _, r := range summary.Results {
		fmt.Fprintf(w, "%s\t%d\t%d\n", r.Folder, r.Products, r.Categories)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d products, %d categories\n", summary.TotalProducts, summary.TotalCategories)
	return nil
}

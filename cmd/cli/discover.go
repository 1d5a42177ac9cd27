package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/prilavok/catalog-service/internal/feed"
)

var discoverOutput string

// discoverCmd represents the discover command
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover vendor feed folders in the content directory",
	Long: `Scan the content directory for vendor folders holding XML feed files and
show how their files classify: import, prices, rests, and the shared catalog
file. Nothing is imported.

Output can be formatted as a human-readable table (default) or JSON.`,
	Example: `  catalog-service discover
  catalog-service discover --output json`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().StringVar(&discoverOutput, "output", "table", "Output format: table or json")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if cfg == nil {
		return fmt.Errorf("config not loaded")
	}

	baseDir := cfg.Content.BaseDir
	logger.Info().Str("base_dir", baseDir).Msg("Starting discovery")

	folders, err := feed.Discover(baseDir, *logger)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	logger.Info().Msgf("Found %d feed folders", len(folders))

	switch strings.ToLower(discoverOutput) {
	case "json":
		return outputDiscoverJSON(folders)
	case "table":
		outputDiscoverTable(folders)
	default:
		return fmt.Errorf("invalid output format: %s (use 'table' or 'json')", discoverOutput)
	}
	return nil
}

func outputDiscoverJSON(folders []feed.Folder) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(folders)
}

func outputDiscoverTable(folders []feed.Folder) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FOLDER\tIMPORT\tPRICES\tRESTS\tCATALOG")
	for _, f := range folders {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n",
			f.Name, len(f.ImportFiles), len(f.PriceFiles), len(f.RestFiles), len(f.CatalogFiles))
	}
	w.Flush()
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/prilavok/catalog-service/internal/database"
)

var (
	exportOut    string
	exportFolder string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the persisted catalog as an XLSX price list",
	Long: `Export the persisted products to an XLSX workbook with one row per product:
article, name, category, price, quantity and source folder. Useful for handing
the imported catalog to buyers without database access.`,
	Example: `  catalog-service export --out catalog.xlsx
  catalog-service export --out vendor1.xlsx --folder vendor1`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportOut, "out", "catalog.xlsx", "Output XLSX file path")
	exportCmd.Flags().StringVar(&exportFolder, "folder", "", "Only export products from this feed folder")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	products, err := database.Catalog().ProductsByFolder(ctx, exportFolder)
	if err != nil {
		return fmt.Errorf("loading products: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Products"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Article", "Name", "Description", "Category", "Price", "Quantity", "Folder"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for row, p := range products {
		values := []interface{}{p.Article, p.Name, p.Description, p.Category, p.Price, p.Quantity, p.Folder}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(exportOut); err != nil {
		return fmt.Errorf("writing %s: %w", exportOut, err)
	}

	logger.Info().Str("file", exportOut).Int("products", len(products)).Msg("Catalog exported")
	return nil
}

package importer

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/prilavok/catalog-service/internal/database"
	"github.com/prilavok/catalog-service/internal/feed"
	"github.com/prilavok/catalog-service/internal/metrics"
	feedxml "github.com/prilavok/catalog-service/internal/parsers/xml"
)

const importFilesDir = "import_files"

// ExtractProducts pulls product records out of a decoded import document.
// Nodes missing id, category, name or article are dropped individually.
// Records come back with zero price and quantity; the offer joins fill those
// in later.
func ExtractProducts(doc map[string]interface{}, folder feed.Folder, logger zerolog.Logger) []database.Product {
	items := feedxml.List(doc, "КоммерческаяИнформация", "Каталог", "Товары", "Товар")
	if len(items) == 0 {
		logger.Info().Msg("no products in import document")
		return nil
	}

	imageFiles := listImageFiles(folder, logger)
	now := time.Now().UTC()

	products := make([]database.Product, 0, len(items))
	for _, item := range items {
		id := feedxml.Text(item, "Ид")
		category := feedxml.Text(item, "Группы", "Ид")
		name := feedxml.Text(item, "Наименование")
		article := feedxml.Text(item, "Артикул")

		if id == "" || category == "" || name == "" || article == "" {
			logger.Debug().
				Str("id", id).
				Str("category", category).
				Msg("product without required fields skipped")
			metrics.RecordSkipped("invalid_product")
			continue
		}

		products = append(products, database.Product{
			ID:          id,
			Name:        name,
			Article:     article,
			Description: feedxml.Text(item, "Описание"),
			Category:    category,
			Price:       0,
			Quantity:    0,
			Images:      matchImages(imageFiles, id, folder.Name),
			Folder:      folder.Name,
			LastUpdate:  now,
		})
	}
	return products
}

// listImageFiles reads the folder's import_files directory once. A missing or
// unreadable directory means no images, not a failed import.
func listImageFiles(folder feed.Folder, logger zerolog.Logger) []string {
	entries, err := os.ReadDir(filepath.Join(folder.Path, importFilesDir))
	if err != nil {
		logger.Warn().Err(err).Str("folder", folder.Name).Msg("cannot list image files")
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names
}

// matchImages selects files prefixed by the product id and maps them to
// web-relative paths.
func matchImages(files []string, productID, folderName string) []string {
	images := []string{}
	for _, file := range files {
		if strings.HasPrefix(file, productID) {
			images = append(images, "/"+folderName+"/"+importFilesDir+"/"+file)
		}
	}
	return images
}

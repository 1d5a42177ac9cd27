// Package importer runs the catalog import pipeline: discover feed folders,
// decode their XML exports, persist categories and products, join prices and
// stocks, and link categories to products, all inside one transaction.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/prilavok/catalog-service/internal/feed"
	"github.com/prilavok/catalog-service/internal/metrics"
	feedxml "github.com/prilavok/catalog-service/internal/parsers/xml"
)

// Importer orchestrates one full catalog import run
type Importer struct {
	store   Store
	baseDir string
	logger  zerolog.Logger
}

// New creates an importer over the given store and content directory
func New(store Store, baseDir string, logger zerolog.Logger) *Importer {
	return &Importer{
		store:   store,
		baseDir: baseDir,
		logger:  logger,
	}
}

// FolderResult reports what one feed folder contributed
type FolderResult struct {
	Folder     string `json:"folder"`
	Products   int    `json:"products"`
	Categories int    `json:"categories"`
}

// Summary is the committed outcome of an import run. Totals are counted
// inside the transaction, after linking.
type Summary struct {
	Results         []FolderResult `json:"results"`
	TotalProducts   int64          `json:"totalProducts"`
	TotalCategories int64          `json:"totalCategories"`
}

// Run executes the import inside one transaction. Any error at any stage
// aborts the transaction: readers observe either the previous catalog or the
// fully imported one, never a partial state.
func (imp *Importer) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	imp.logger.Info().Str("base_dir", imp.baseDir).Msg("starting catalog import")

	var summary *Summary
	err := imp.store.WithTransaction(ctx, func(ctx context.Context) error {
		s, err := imp.run(ctx)
		if err != nil {
			return err
		}
		summary = s
		return nil
	})
	if err != nil {
		metrics.RecordImportRun("error", time.Since(start))
		imp.logger.Error().Err(err).Msg("catalog import aborted")
		return nil, err
	}

	metrics.RecordImportRun("success", time.Since(start))
	metrics.RecordImportTotals(summary.TotalProducts, summary.TotalCategories)
	imp.logger.Info().
		Int64("products", summary.TotalProducts).
		Int64("categories", summary.TotalCategories).
		Dur("duration", time.Since(start)).
		Msg("catalog import committed")
	return summary, nil
}

func (imp *Importer) run(ctx context.Context) (*Summary, error) {
	if err := imp.store.DeleteAll(ctx); err != nil {
		return nil, err
	}
	imp.logger.Info().Msg("previous catalog cleared")

	folders, err := feed.Discover(imp.baseDir, imp.logger)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Results: []FolderResult{}}
	for _, folder := range folders {
		result, err := imp.processFolder(ctx, folder)
		if err != nil {
			return nil, err
		}
		if result != nil {
			summary.Results = append(summary.Results, *result)
			metrics.RecordFolderProcessed()
		}
	}

	if err := LinkCategories(ctx, imp.store, imp.logger); err != nil {
		return nil, err
	}

	if summary.TotalProducts, err = imp.store.CountProducts(ctx); err != nil {
		return nil, err
	}
	if summary.TotalCategories, err = imp.store.CountCategories(ctx); err != nil {
		return nil, err
	}
	return summary, nil
}

// processFolder handles one feed folder. Folders without an import file are
// skipped and contribute nothing to the summary; every other failure is fatal
// for the whole run.
func (imp *Importer) processFolder(ctx context.Context, folder feed.Folder) (*FolderResult, error) {
	logger := imp.logger.With().Str("folder", folder.Name).Logger()

	if len(folder.ImportFiles) == 0 {
		logger.Info().Msg("no import file, folder skipped")
		return nil, nil
	}

	importDoc, err := imp.readFeedFile(filepath.Join(folder.Path, folder.ImportFiles[0]))
	if err != nil {
		return nil, err
	}

	result := &FolderResult{Folder: folder.Name}

	if len(folder.CatalogFiles) > 0 {
		// the shared catalog file lives in the base directory
		catalogDoc, err := imp.readFeedFile(filepath.Join(imp.baseDir, folder.CatalogFiles[0]))
		if err != nil {
			return nil, err
		}
		cats := BuildCategories(catalogDoc, folder.Name, logger)
		if err := imp.store.InsertCategories(ctx, cats); err != nil {
			return nil, err
		}
		result.Categories = len(cats)
		logger.Info().Int("categories", len(cats)).Msg("categories persisted")
	} else {
		logger.Info().Msg("no catalog file, categories skipped")
	}

	var pricesDoc, restsDoc map[string]interface{}
	if len(folder.PriceFiles) > 0 {
		if pricesDoc, err = imp.readFeedFile(filepath.Join(folder.Path, folder.PriceFiles[0])); err != nil {
			return nil, err
		}
	}
	if len(folder.RestFiles) > 0 {
		if restsDoc, err = imp.readFeedFile(filepath.Join(folder.Path, folder.RestFiles[0])); err != nil {
			return nil, err
		}
	}

	products := ExtractProducts(importDoc, folder, logger)
	result.Products = len(products)
	if len(products) == 0 {
		return result, nil
	}
	if err := imp.store.InsertProducts(ctx, products); err != nil {
		return nil, err
	}
	logger.Info().Int("products", len(products)).Msg("products persisted")

	if pricesDoc != nil {
		matched, err := ApplyPrices(ctx, imp.store, pricesDoc, folder.Name, logger)
		if err != nil {
			return nil, err
		}
		logger.Info().Int("matched", matched).Msg("prices applied")
	}
	if restsDoc != nil {
		matched, err := ApplyStocks(ctx, imp.store, restsDoc, folder.Name, logger)
		if err != nil {
			return nil, err
		}
		logger.Info().Int("matched", matched).Msg("stocks applied")
	}

	return result, nil
}

func (imp *Importer) readFeedFile(path string) (map[string]interface{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading feed file %s: %w", path, err)
	}
	doc, err := feedxml.Decode(content)
	if err != nil {
		return nil, fmt.Errorf("feed file %s: %w", path, err)
	}
	return doc, nil
}

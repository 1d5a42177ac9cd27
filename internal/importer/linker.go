package importer

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/prilavok/catalog-service/internal/database"
)

// LinkCategories rebuilds every category's product list from the persisted
// products, grouped by category reference. Runs once per import, after all
// folders; the write is a full overwrite, so categories without products end
// up with an empty list.
func LinkCategories(ctx context.Context, store Store, logger zerolog.Logger) error {
	products, err := store.ListProducts(ctx)
	if err != nil {
		return err
	}
	categories, err := store.ListCategories(ctx)
	if err != nil {
		return err
	}

	logger.Info().
		Int("products", len(products)).
		Int("categories", len(categories)).
		Msg("linking categories to products")

	byCategory := make(map[string][]string)
	for _, p := range products {
		if p.Category != "" {
			byCategory[p.Category] = append(byCategory[p.Category], p.OID.Hex())
		}
	}

	updates := make([]database.CategoryProducts, 0, len(categories))
	for _, c := range categories {
		updates = append(updates, database.CategoryProducts{
			CategoryID:  c.ID,
			ProductKeys: byCategory[c.ID],
		})
	}
	return store.UpdateCategoryProducts(ctx, updates)
}

package importer

import (
	"context"

	"github.com/prilavok/catalog-service/internal/database"
)

// Store is the persistence surface the import pipeline runs against. The
// production implementation is database.CatalogStore; tests substitute an
// in-memory fake.
type Store interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	DeleteAll(ctx context.Context) error
	InsertCategories(ctx context.Context, cats []database.Category) error
	InsertProducts(ctx context.Context, prods []database.Product) error
	SetProductPrice(ctx context.Context, id, folder string, price float64) (bool, error)
	SetProductQuantity(ctx context.Context, id, folder string, quantity int) (bool, error)
	ListCategories(ctx context.Context) ([]database.Category, error)
	ListProducts(ctx context.Context) ([]database.Product, error)
	UpdateCategoryProducts(ctx context.Context, updates []database.CategoryProducts) error
	CountCategories(ctx context.Context) (int64, error)
	CountProducts(ctx context.Context) (int64, error)
}

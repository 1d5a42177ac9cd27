package importer

import (
	"context"
	"fmt"
	"slices"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/prilavok/catalog-service/internal/database"
)

// memStore is an in-memory Store for pipeline tests. WithTransaction restores
// a snapshot on error, mirroring the transaction abort of the real store.
type memStore struct {
	categories []database.Category
	products   []database.Product

	linkErr error // injected UpdateCategoryProducts failure
}

func (m *memStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	catsSnapshot := slices.Clone(m.categories)
	prodsSnapshot := slices.Clone(m.products)
	if err := fn(ctx); err != nil {
		m.categories = catsSnapshot
		m.products = prodsSnapshot
		return err
	}
	return nil
}

func (m *memStore) DeleteAll(ctx context.Context) error {
	m.categories = nil
	m.products = nil
	return nil
}

func (m *memStore) InsertCategories(ctx context.Context, cats []database.Category) error {
	seen := make(map[string]bool, len(m.categories))
	for _, c := range m.categories {
		seen[c.ID] = true
	}
	for _, c := range cats {
		if seen[c.ID] {
			return fmt.Errorf("duplicate category id %s", c.ID)
		}
		seen[c.ID] = true
	}
	for _, c := range cats {
		c.OID = primitive.NewObjectID()
		m.categories = append(m.categories, c)
	}
	return nil
}

func (m *memStore) InsertProducts(ctx context.Context, prods []database.Product) error {
	for _, p := range prods {
		if m.findProduct(p.ID, p.Folder) != nil {
			continue // unordered insert tolerates duplicates
		}
		p.OID = primitive.NewObjectID()
		m.products = append(m.products, p)
	}
	return nil
}

func (m *memStore) findProduct(id, folder string) *database.Product {
	for i := range m.products {
		if m.products[i].ID == id && m.products[i].Folder == folder {
			return &m.products[i]
		}
	}
	return nil
}

func (m *memStore) SetProductPrice(ctx context.Context, id, folder string, price float64) (bool, error) {
	p := m.findProduct(id, folder)
	if p == nil {
		return false, nil
	}
	p.Price = price
	return true, nil
}

func (m *memStore) SetProductQuantity(ctx context.Context, id, folder string, quantity int) (bool, error) {
	p := m.findProduct(id, folder)
	if p == nil {
		return false, nil
	}
	p.Quantity = quantity
	return true, nil
}

func (m *memStore) ListCategories(ctx context.Context) ([]database.Category, error) {
	return slices.Clone(m.categories), nil
}

func (m *memStore) ListProducts(ctx context.Context) ([]database.Product, error) {
	return slices.Clone(m.products), nil
}

func (m *memStore) UpdateCategoryProducts(ctx context.Context, updates []database.CategoryProducts) error {
	if m.linkErr != nil {
		return m.linkErr
	}
	for _, u := range updates {
		keys := u.ProductKeys
		if keys == nil {
			keys = []string{}
		}
		for i := range m.categories {
			if m.categories[i].ID == u.CategoryID {
				m.categories[i].Products = keys
			}
		}
	}
	return nil
}

func (m *memStore) CountCategories(ctx context.Context) (int64, error) {
	return int64(len(m.categories)), nil
}

func (m *memStore) CountProducts(ctx context.Context) (int64, error) {
	return int64(len(m.products)), nil
}

func (m *memStore) category(id string) *database.Category {
	for i := range m.categories {
		if m.categories[i].ID == id {
			return &m.categories[i]
		}
	}
	return nil
}

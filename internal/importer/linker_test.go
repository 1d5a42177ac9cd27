package importer

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prilavok/catalog-service/internal/database"
)

func TestLinkCategories(t *testing.T) {
	ctx := context.Background()
	m := &memStore{}
	require.NoError(t, m.InsertCategories(ctx, []database.Category{
		{ID: "A", Name: "Первая", Folder: "vendor1"},
		{ID: "B", Name: "Вторая", Folder: "vendor1"},
		{ID: "C", Name: "Пустая", Folder: "vendor1", Products: []string{"stale"}},
	}))
	require.NoError(t, m.InsertProducts(ctx, []database.Product{
		{ID: "1", Name: "Один", Article: "A-1", Category: "A", Folder: "vendor1"},
		{ID: "2", Name: "Два", Article: "A-2", Category: "A", Folder: "vendor1"},
		{ID: "3", Name: "Три", Article: "A-3", Category: "B", Folder: "vendor1"},
		{ID: "4", Name: "Без категории", Article: "A-4", Folder: "vendor1"},
	}))

	require.NoError(t, LinkCategories(ctx, m, zerolog.Nop()))

	keys := func(id string) []string {
		var out []string
		for _, p := range m.products {
			if p.Category == id {
				out = append(out, p.OID.Hex())
			}
		}
		return out
	}

	assert.Equal(t, keys("A"), m.category("A").Products)
	assert.Equal(t, keys("B"), m.category("B").Products)
	// full overwrite: stale entries are replaced with an empty list
	assert.Equal(t, []string{}, m.category("C").Products)
}

func TestLinkCategoriesEmptyStore(t *testing.T) {
	m := &memStore{}
	require.NoError(t, LinkCategories(context.Background(), m, zerolog.Nop()))
	assert.Empty(t, m.categories)
}

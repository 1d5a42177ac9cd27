package e2e

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/prilavok/catalog-service/internal/database"
	"github.com/prilavok/catalog-service/internal/importer"
)

const testDatabase = "catalog_test"

const catalogXML = `<?xml version="1.0" encoding="UTF-8"?>
<КоммерческаяИнформация>
	<Классификатор>
		<Группы>
			<Группа>
				<Ид>cat-1</Ид>
				<Наименование>Инструменты</Наименование>
				<Группы>
					<Группа><Ид>cat-2</Ид><Наименование>Дрели</Наименование></Группа>
				</Группы>
			</Группа>
		</Группы>
	</Классификатор>
</КоммерческаяИнформация>`

const importXML = `<?xml version="1.0" encoding="UTF-8"?>
<КоммерческаяИнформация>
	<Каталог>
		<Товары>
			<Товар>
				<Ид>prod-1</Ид>
				<Наименование>Дрель</Наименование>
				<Артикул>DR-100</Артикул>
				<Группы><Ид>cat-2</Ид></Группы>
			</Товар>
			<Товар>
				<Ид>prod-2</Ид>
				<Наименование>Набор бит</Наименование>
				<Артикул>NB-5</Артикул>
				<Группы><Ид>cat-1</Ид></Группы>
			</Товар>
		</Товары>
	</Каталог>
</КоммерческаяИнформация>`

const pricesXML = `<КоммерческаяИнформация><ПакетПредложений><Предложения>
	<Предложение>
		<Ид>prod-1</Ид>
		<Цены><Цена><ЦенаЗаЕдиницу>100.50</ЦенаЗаЕдиницу></Цена></Цены>
	</Предложение>
</Предложения></ПакетПредложений></КоммерческаяИнформация>`

const restsXML = `<КоммерческаяИнформация><ПакетПредложений><Предложения>
	<Предложение>
		<Ид>prod-1</Ид>
		<Остатки><Остаток><Склад><Количество>3</Количество></Склад></Остаток></Остатки>
	</Предложение>
</Предложения></ПакетПредложений></КоммерческаяИнформация>`

func writeContentDir(t *testing.T) string {
	t.Helper()
	base := t.TempDir()

	write := func(path, content string) {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	write(filepath.Join(base, "import___catalog.xml"), catalogXML)
	write(filepath.Join(base, "vendor1", "import___v1.xml"), importXML)
	write(filepath.Join(base, "vendor1", "prices___v1.xml"), pricesXML)
	write(filepath.Join(base, "vendor1", "rests___v1.xml"), restsXML)
	write(filepath.Join(base, "vendor1", "import_files", "prod-1_main.jpg"), "img")

	return base
}

// TestE2EImport runs the full import pipeline against a real document store.
// Transactions require a replica set, so the container starts as one.
func TestE2EImport(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7", mongodb.WithReplicaSet("rs0"))
	require.NoError(t, err)
	defer mongoContainer.Terminate(ctx)

	connStr, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	require.NoError(t, database.Connect(ctx, connStr, testDatabase, 0))
	defer database.Close(ctx)

	require.NoError(t, database.EnsureIndexes(ctx, database.Client().Database(testDatabase)))

	store := database.Catalog()
	baseDir := writeContentDir(t)
	imp := importer.New(store, baseDir, zerolog.Nop())

	summary, err := imp.Run(ctx)
	require.NoError(t, err)

	require.Len(t, summary.Results, 1)
	assert.Equal(t, "vendor1", summary.Results[0].Folder)
	assert.Equal(t, int64(2), summary.TotalProducts)
	assert.Equal(t, int64(2), summary.TotalCategories)

	t.Run("PersistedProducts", func(t *testing.T) {
		products, err := store.ProductsByFolder(ctx, "vendor1")
		require.NoError(t, err)
		require.Len(t, products, 2)

		byID := make(map[string]int)
		for i, p := range products {
			byID[p.ID] = i
		}

		prod1 := products[byID["prod-1"]]
		assert.Equal(t, 100.50, prod1.Price)
		assert.Equal(t, 3, prod1.Quantity)
		assert.Equal(t, []string{"/vendor1/import_files/prod-1_main.jpg"}, prod1.Images)
		assert.False(t, prod1.LastUpdate.IsZero())

		prod2 := products[byID["prod-2"]]
		assert.Zero(t, prod2.Price)
		assert.Zero(t, prod2.Quantity)
	})

	t.Run("PersistedCategoriesLinked", func(t *testing.T) {
		categories, err := store.ListCategories(ctx)
		require.NoError(t, err)
		require.Len(t, categories, 2)

		byID := make(map[string]int)
		for i, c := range categories {
			byID[c.ID] = i
		}

		cat1 := categories[byID["cat-1"]]
		assert.Equal(t, []string{"cat-2"}, cat1.Children)
		assert.Len(t, cat1.Products, 1)

		cat2 := categories[byID["cat-2"]]
		require.NotNil(t, cat2.ParentID)
		assert.Equal(t, "cat-1", *cat2.ParentID)
		assert.Len(t, cat2.Products, 1)
	})

	t.Run("ReimportReplaces", func(t *testing.T) {
		second, err := imp.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, summary.TotalProducts, second.TotalProducts)
		assert.Equal(t, summary.TotalCategories, second.TotalCategories)

		count, err := store.CountProducts(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("AbortKeepsPreviousCatalog", func(t *testing.T) {
		// corrupt the import file so the run fails mid-transaction
		require.NoError(t, os.WriteFile(
			filepath.Join(baseDir, "vendor1", "import___v1.xml"),
			[]byte("<КоммерческаяИнформация><Каталог>"), 0o644))

		_, err := imp.Run(ctx)
		require.Error(t, err)

		count, err := store.CountProducts(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		catCount, err := store.CountCategories(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), catCount)
	})
}

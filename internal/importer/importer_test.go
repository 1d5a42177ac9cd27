package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/prilavok/catalog-service/internal/database"
)

const fixtureCatalogXML = `<?xml version="1.0" encoding="UTF-8"?>
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

const fixtureImportXML = `<?xml version="1.0" encoding="UTF-8"?>
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

const fixturePricesXML = `<КоммерческаяИнформация><ПакетПредложений><Предложения>
	<Предложение>
		<Ид>prod-1</Ид>
		<Цены><Цена><ЦенаЗаЕдиницу>100.50</ЦенаЗаЕдиницу></Цена></Цены>
	</Предложение>
</Предложения></ПакетПредложений></КоммерческаяИнформация>`

const fixtureRestsXML = `<КоммерческаяИнформация><ПакетПредложений><Предложения>
	<Предложение>
		<Ид>prod-1</Ид>
		<Остатки><Остаток><Склад><Количество>3</Количество></Склад></Остаток></Остатки>
	</Предложение>
</Предложения></ПакетПредложений></КоммерческаяИнформация>`

// writeFixtureFeed lays out a content directory with a shared catalog file,
// one full vendor folder and one folder without an import file.
func writeFixtureFeed(t *testing.T) string {
	t.Helper()
	base := t.TempDir()

	write := func(path, content string) {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	write(filepath.Join(base, "import___catalog.xml"), fixtureCatalogXML)
	write(filepath.Join(base, "vendor1", "import___v1.xml"), fixtureImportXML)
	write(filepath.Join(base, "vendor1", "prices___v1.xml"), fixturePricesXML)
	write(filepath.Join(base, "vendor1", "rests___v1.xml"), fixtureRestsXML)
	write(filepath.Join(base, "vendor1", "import_files", "prod-1_main.jpg"), "img")
	write(filepath.Join(base, "vendor2", "prices___v2.xml"), fixturePricesXML)

	return base
}

func TestImporterRun(t *testing.T) {
	base := writeFixtureFeed(t)
	m := &memStore{}
	imp := New(m, base, zerolog.Nop())

	summary, err := imp.Run(context.Background())
	require.NoError(t, err)

	// vendor2 has no import file and is absent from the results
	require.Len(t, summary.Results, 1)
	assert.Equal(t, FolderResult{Folder: "vendor1", Products: 2, Categories: 2}, summary.Results[0])
	assert.Equal(t, int64(2), summary.TotalProducts)
	assert.Equal(t, int64(2), summary.TotalCategories)

	cat1 := m.category("cat-1")
	require.NotNil(t, cat1)
	assert.Equal(t, []string{"cat-2"}, cat1.Children)
	assert.Nil(t, cat1.ParentID)

	prod1 := m.findProduct("prod-1", "vendor1")
	require.NotNil(t, prod1)
	assert.Equal(t, 100.50, prod1.Price)
	assert.Equal(t, 3, prod1.Quantity)
	assert.Equal(t, []string{"/vendor1/import_files/prod-1_main.jpg"}, prod1.Images)

	prod2 := m.findProduct("prod-2", "vendor1")
	require.NotNil(t, prod2)
	assert.Zero(t, prod2.Price)
	assert.Zero(t, prod2.Quantity)

	// linker grouped products by category reference
	assert.Equal(t, []string{prod1.OID.Hex()}, m.category("cat-2").Products)
	assert.Equal(t, []string{prod2.OID.Hex()}, cat1.Products)
}

func TestImporterRunReplacesPreviousCatalog(t *testing.T) {
	base := writeFixtureFeed(t)
	m := &memStore{}
	imp := New(m, base, zerolog.Nop())

	first, err := imp.Run(context.Background())
	require.NoError(t, err)
	second, err := imp.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.TotalProducts, second.TotalProducts)
	assert.Equal(t, first.TotalCategories, second.TotalCategories)
	assert.Len(t, m.products, 2)
	assert.Len(t, m.categories, 2)
}

func TestImporterRunAbortKeepsPreviousCatalog(t *testing.T) {
	base := writeFixtureFeed(t)
	m := &memStore{
		categories: []database.Category{{OID: primitive.NewObjectID(), ID: "old-cat", Name: "Старая", Folder: "old"}},
		products:   []database.Product{{OID: primitive.NewObjectID(), ID: "old-prod", Name: "Старый", Article: "O-1", Folder: "old"}},
		linkErr:    errors.New("bulk write failed"),
	}
	imp := New(m, base, zerolog.Nop())

	_, err := imp.Run(context.Background())
	require.Error(t, err)

	// transaction abort leaves the previous catalog in place
	require.Len(t, m.categories, 1)
	require.Len(t, m.products, 1)
	assert.Equal(t, "old-cat", m.categories[0].ID)
	assert.Equal(t, "old-prod", m.products[0].ID)
}

func TestImporterRunMalformedFeedAborts(t *testing.T) {
	base := writeFixtureFeed(t)
	require.NoError(t, os.WriteFile(
		filepath.Join(base, "vendor1", "import___v1.xml"),
		[]byte("<КоммерческаяИнформация><Каталог>"), 0o644))

	m := &memStore{
		products: []database.Product{{OID: primitive.NewObjectID(), ID: "old-prod", Name: "Старый", Article: "O-1", Folder: "old"}},
	}
	imp := New(m, base, zerolog.Nop())

	_, err := imp.Run(context.Background())
	require.Error(t, err)
	require.Len(t, m.products, 1)
	assert.Equal(t, "old-prod", m.products[0].ID)
}

func TestImporterRunMissingBaseDir(t *testing.T) {
	m := &memStore{}
	imp := New(m, filepath.Join(t.TempDir(), "missing"), zerolog.Nop())
	_, err := imp.Run(context.Background())
	assert.Error(t, err)
}

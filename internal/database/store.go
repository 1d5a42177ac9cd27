package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	categoriesCollection = "categories"
	productsCollection   = "products"
)

// CatalogStore provides the persistence operations the import pipeline and the
// HTTP surface need, on top of the document store driver. All methods honor a
// session bound to the context, so everything called under WithTransaction
// runs inside one transaction.
type CatalogStore struct {
	client     *mongo.Client
	categories *mongo.Collection
	products   *mongo.Collection
}

// NewCatalogStore creates a catalog store over the given database
func NewCatalogStore(client *mongo.Client, db *mongo.Database) *CatalogStore {
	return &CatalogStore{
		client:     client,
		categories: db.Collection(categoriesCollection),
		products:   db.Collection(productsCollection),
	}
}

// WithTransaction runs fn inside one session transaction. The callback context
// carries the session; any error aborts the transaction.
func (s *CatalogStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// DeleteAll removes every category and product record
func (s *CatalogStore) DeleteAll(ctx context.Context) error {
	if _, err := s.categories.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("clearing categories: %w", err)
	}
	if _, err := s.products.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("clearing products: %w", err)
	}
	return nil
}

// InsertCategories persists categories in one ordered bulk insert. A
// uniqueness violation fails the whole batch.
func (s *CatalogStore) InsertCategories(ctx context.Context, cats []Category) error {
	if len(cats) == 0 {
		return nil
	}
	docs := make([]interface{}, len(cats))
	for i := range cats {
		docs[i] = cats[i]
	}
	if _, err := s.categories.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("inserting categories: %w", err)
	}
	return nil
}

// InsertProducts persists products in one unordered bulk insert: a duplicate
// key on one record does not block its siblings and is not surfaced as a
// failure.
func (s *CatalogStore) InsertProducts(ctx context.Context, prods []Product) error {
	if len(prods) == 0 {
		return nil
	}
	docs := make([]interface{}, len(prods))
	for i := range prods {
		docs[i] = prods[i]
	}
	opts := options.InsertMany().SetOrdered(false)
	_, err := s.products.InsertMany(ctx, docs, opts)
	if err == nil {
		return nil
	}

	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) && allDuplicateKey(bwe) {
		log.Warn().Int("duplicates", len(bwe.WriteErrors)).Msg("duplicate products skipped during bulk insert")
		return nil
	}
	return fmt.Errorf("inserting products: %w", err)
}

func allDuplicateKey(bwe mongo.BulkWriteException) bool {
	if len(bwe.WriteErrors) == 0 {
		return false
	}
	for _, we := range bwe.WriteErrors {
		if we.Code != 11000 {
			return false
		}
	}
	return true
}

// SetProductPrice updates the price of the product matching (id, folder).
// Returns false when no product matched.
func (s *CatalogStore) SetProductPrice(ctx context.Context, id, folder string, price float64) (bool, error) {
	return s.updateProductField(ctx, id, folder, bson.M{"price": price})
}

// SetProductQuantity updates the quantity of the product matching (id, folder).
// Returns false when no product matched.
func (s *CatalogStore) SetProductQuantity(ctx context.Context, id, folder string, quantity int) (bool, error) {
	return s.updateProductField(ctx, id, folder, bson.M{"quantity": quantity})
}

func (s *CatalogStore) updateProductField(ctx context.Context, id, folder string, fields bson.M) (bool, error) {
	res := s.products.FindOneAndUpdate(ctx,
		bson.M{"id": id, "folder": folder},
		bson.M{"$set": fields},
	)
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("updating product %s/%s: %w", folder, id, err)
	}
	return true, nil
}

// ListCategories returns all persisted categories
func (s *CatalogStore) ListCategories(ctx context.Context) ([]Category, error) {
	cursor, err := s.categories.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	var cats []Category
	if err := cursor.All(ctx, &cats); err != nil {
		return nil, fmt.Errorf("decoding categories: %w", err)
	}
	return cats, nil
}

// ListProducts returns all persisted products
func (s *CatalogStore) ListProducts(ctx context.Context) ([]Product, error) {
	return s.findProducts(ctx, bson.M{})
}

// ProductsByFolder returns products filtered by source folder; an empty folder
// returns everything.
func (s *CatalogStore) ProductsByFolder(ctx context.Context, folder string) ([]Product, error) {
	filter := bson.M{}
	if folder != "" {
		filter["folder"] = folder
	}
	return s.findProducts(ctx, filter)
}

func (s *CatalogStore) findProducts(ctx context.Context, filter bson.M) ([]Product, error) {
	cursor, err := s.products.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	var prods []Product
	if err := cursor.All(ctx, &prods); err != nil {
		return nil, fmt.Errorf("decoding products: %w", err)
	}
	return prods, nil
}

// UpdateCategoryProducts overwrites the products list of every category named
// in updates, in one unordered bulk write.
func (s *CatalogStore) UpdateCategoryProducts(ctx context.Context, updates []CategoryProducts) error {
	if len(updates) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(updates))
	for _, u := range updates {
		keys := u.ProductKeys
		if keys == nil {
			keys = []string{}
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"id": u.CategoryID}).
			SetUpdate(bson.M{"$set": bson.M{"products": keys}}))
	}
	opts := options.BulkWrite().SetOrdered(false)
	if _, err := s.categories.BulkWrite(ctx, models, opts); err != nil {
		return fmt.Errorf("updating category products: %w", err)
	}
	return nil
}

// CountCategories returns the number of persisted categories
func (s *CatalogStore) CountCategories(ctx context.Context) (int64, error) {
	n, err := s.categories.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("counting categories: %w", err)
	}
	return n, nil
}

// CountProducts returns the number of persisted products
func (s *CatalogStore) CountProducts(ctx context.Context) (int64, error) {
	n, err := s.products.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}
	return n, nil
}

package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	client   *mongo.Client
	catalog  *CatalogStore
	connMu   sync.RWMutex
	connOnce sync.Once
)

// Connect creates the document store client (safe for concurrent use)
func Connect(ctx context.Context, uri, dbName string, connectTimeout time.Duration) error {
	var initErr error
	connOnce.Do(func() {
		if connectTimeout <= 0 {
			connectTimeout = 10 * time.Second
		}
		connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()

		c, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
		if err != nil {
			initErr = fmt.Errorf("error creating mongo client: %w", err)
			return
		}

		if err := c.Ping(connectCtx, readpref.Primary()); err != nil {
			_ = c.Disconnect(context.Background())
			initErr = fmt.Errorf("error connecting to mongo: %w", err)
			return
		}

		connMu.Lock()
		client = c
		catalog = NewCatalogStore(c, c.Database(dbName))
		connMu.Unlock()
	})

	if initErr != nil {
		connOnce = sync.Once{} // reset on failure
		return initErr
	}
	return nil
}

// Close disconnects the document store client
func Close(ctx context.Context) {
	connMu.Lock()
	defer connMu.Unlock()
	if client != nil {
		_ = client.Disconnect(ctx)
		client = nil
		catalog = nil
	}
	connOnce = sync.Once{} // reset to allow reconnection
}

// Client returns the document store client
func Client() *mongo.Client {
	connMu.RLock()
	defer connMu.RUnlock()
	return client
}

// Catalog returns the catalog store backed by the global client
func Catalog() *CatalogStore {
	connMu.RLock()
	defer connMu.RUnlock()
	return catalog
}

// Status returns the current status of the document store connection
func Status(ctx context.Context) error {
	connMu.RLock()
	c := client
	connMu.RUnlock()

	if c == nil {
		return fmt.Errorf("document store not initialized")
	}
	return c.Ping(ctx, readpref.Primary())
}

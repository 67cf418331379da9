package app

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront-api/internal/domain/order"
	"github.com/xenking/storefront-api/internal/domain/product"
	"github.com/xenking/storefront-api/internal/storage/memory"
	"github.com/xenking/storefront-api/internal/storage/mongo"
	"github.com/xenking/storefront-api/internal/storage/postgres"
)

// Stores are the repositories for the configured driver.
type Stores struct {
	Products product.Repository
	Orders   order.Repository
	// Ping reports whether the backing database is reachable.
	Ping  func(context.Context) error
	Close func()
}

// OpenStores connects to the configured driver and prepares its collections.
func OpenStores(ctx context.Context, cfg *Config) (*Stores, error) {
	switch cfg.StorageDriver {
	case DriverMongo:
		client, err := mongo.Connect(ctx, cfg.DatabaseURI)
		if err != nil {
			return nil, errors.Wrap(err, "mongo")
		}
		db := client.Database(cfg.DatabaseName)
		return &Stores{
			Products: mongo.NewProductRepository(db, cfg.ProductCollection),
			Orders:   mongo.NewOrderRepository(db, cfg.OrderCollection),
			Ping:     mongo.Pinger(client),
			Close: func() {
				_ = client.Disconnect(context.Background())
			},
		}, nil

	case DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURI)
		if err != nil {
			return nil, errors.Wrap(err, "postgres")
		}
		err = postgres.Migrate(ctx, pool, postgres.Tables{
			Products: cfg.ProductCollection,
			Orders:   cfg.OrderCollection,
		})
		if err != nil {
			pool.Close()
			return nil, err
		}
		return &Stores{
			Products: postgres.NewProductRepository(pool, cfg.ProductCollection),
			Orders:   postgres.NewOrderRepository(pool, cfg.OrderCollection),
			Ping:     pool.Ping,
			Close:    pool.Close,
		}, nil

	case DriverMemory:
		return &Stores{
			Products: memory.NewProductStore(),
			Orders:   memory.NewOrderStore(),
			Ping:     memory.Ping,
			Close:    func() {},
		}, nil

	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

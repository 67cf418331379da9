// Command seed-db loads products from JSON files into the configured store.
//
//	seed-db [flags] products.json [more.json.gz ...]
//
// Files are JSON arrays of products; a .gz suffix means gzip-compressed.
// Products whose name is already stored are skipped, so reseeding is safe.
package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	appkg "github.com/xenking/storefront-api/internal/app"
	"github.com/xenking/storefront-api/internal/domain/product"
)

const defaultSeedFile = "db/seed/products.json"

type productJSON struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	ImageURL    string          `json:"imageUrl"`
}

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, _ *app.Telemetry) error {
		cfg, files, err := appkg.LoadConfigArgs(os.Args[1:])
		if err != nil {
			return err
		}
		if len(files) == 0 {
			files = []string{defaultSeedFile}
		}
		return run(ctx, lg, cfg, files)
	})
}

func run(ctx context.Context, lg *zap.Logger, cfg *appkg.Config, files []string) error {
	batches, err := readFiles(ctx, files)
	if err != nil {
		return err
	}

	stores, err := appkg.OpenStores(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "open stores")
	}
	defer stores.Close()

	created, skipped, err := seed(ctx, lg, product.NewService(stores.Products, cfg.Diag()), files, batches)
	if err != nil {
		return err
	}

	lg.Info("Seed completed",
		zap.String("storage", cfg.StorageDriver),
		zap.Int("created", created),
		zap.Int("skipped", skipped),
	)
	return nil
}

// seed creates every product whose name is not stored yet.
func seed(ctx context.Context, lg *zap.Logger, svc *product.Service, files []string, batches [][]productJSON) (created, skipped int, err error) {
	existing, err := svc.List(ctx)
	if err != nil {
		return 0, 0, errors.Wrap(err, "list existing products")
	}
	seen := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		seen[p.Name] = struct{}{}
	}

	for i, batch := range batches {
		for _, p := range batch {
			if _, ok := seen[p.Name]; ok {
				skipped++
				continue
			}
			stored, err := svc.Create(ctx, p.fields())
			if err != nil {
				return created, skipped, errors.Wrapf(err, "seed %q from %s", p.Name, files[i])
			}
			seen[p.Name] = struct{}{}
			created++
			lg.Debug("Seeded product", zap.String("id", stored.ID), zap.String("name", stored.Name))
		}
	}
	return created, skipped, nil
}

func (p productJSON) fields() product.Fields {
	f := product.Fields{
		Name:     &p.Name,
		Price:    &p.Price,
		ImageURL: &p.ImageURL,
	}
	if p.Description != "" {
		f.Description = &p.Description
	}
	return f
}

// readFiles decodes every file concurrently and returns the batches in
// argument order.
func readFiles(ctx context.Context, files []string) ([][]productJSON, error) {
	batches := make([][]productJSON, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			batch, err := readFile(ctx, path)
			if err != nil {
				return errors.Wrapf(err, "read %s", path)
			}
			batches[i] = batch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}

func readFile(ctx context.Context, path string) ([]productJSON, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "gzip")
		}
		defer gz.Close()
		r = gz
	}

	var products []productJSON
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

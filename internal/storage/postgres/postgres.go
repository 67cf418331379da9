// Package postgres stores products and orders in PostgreSQL. Products are
// rows; order items are kept as a JSONB document alongside each order.
package postgres

import (
	"context"
	"strings"
	"text/template"

	"github.com/go-faster/errors"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-api/db"
)

// Tables names the tables backing each resource.
type Tables struct {
	Products string
	Orders   string
}

func quote(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// NewPool creates a pgxpool.Pool configured with shopspring/decimal support
// for NUMERIC columns.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse database config")
	}

	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create connection pool")
	}

	return pool, nil
}

var schemaTemplate = template.Must(template.New("schema").Parse(db.Schema))

// Migrate creates the tables named by t when they do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool, t Tables) error {
	var ddl strings.Builder
	err := schemaTemplate.Execute(&ddl, map[string]string{
		"Products":             quote(t.Products),
		"Orders":               quote(t.Orders),
		"ProductsCreatedIndex": quote(t.Products + "_created_at_idx"),
		"OrdersCreatedIndex":   quote(t.Orders + "_created_at_idx"),
	})
	if err != nil {
		return errors.Wrap(err, "render schema")
	}

	if _, err := pool.Exec(ctx, ddl.String()); err != nil {
		return errors.Wrap(err, "run migrations")
	}
	return nil
}

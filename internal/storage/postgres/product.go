package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-api/internal/domain/product"
)

const productColumns = `id, name, price, description, image_url, created_at, updated_at`

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool

	listSQL   string
	getSQL    string
	existsSQL string
	insertSQL string
	updateSQL string
	deleteSQL string
}

// NewProductRepository returns a ProductRepository that uses the given pool
// and table.
func NewProductRepository(pool *pgxpool.Pool, table string) *ProductRepository {
	t := quote(table)
	return &ProductRepository{
		pool:      pool,
		listSQL:   fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at, id`, productColumns, t),
		getSQL:    fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, productColumns, t),
		existsSQL: fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, t),
		insertSQL: fmt.Sprintf(`INSERT INTO %s (id, name, price, description, image_url)
			VALUES ($1, $2, $3, $4, $5) RETURNING price, created_at, updated_at`, t),
		updateSQL: fmt.Sprintf(`UPDATE %s SET
			name = COALESCE($2::text, name),
			price = COALESCE($3::numeric, price),
			description = COALESCE($4::text, description),
			image_url = COALESCE($5::text, image_url),
			updated_at = now()
			WHERE id = $1 RETURNING %s`, t, productColumns),
		deleteSQL: fmt.Sprintf(`DELETE FROM %s WHERE id = $1 RETURNING %s`, t, productColumns),
	}
}

// List returns all products ordered by creation time.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, r.listSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	return r.one(ctx, "get", r.getSQL, id)
}

func (r *ProductRepository) Exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	if err := r.pool.QueryRow(ctx, r.existsSQL, id).Scan(&ok); err != nil {
		return false, errors.Wrapf(err, "check product %q", id)
	}
	return ok, nil
}

// Create inserts p under a fresh id and fills in the stored price and
// timestamps.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	id := uuid.NewString()
	err := r.pool.QueryRow(ctx, r.insertSQL, id, p.Name, p.Price, p.Description, p.ImageURL).
		Scan(&p.Price, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "insert product")
	}
	p.ID = id
	return nil
}

// Update applies the provided fields in a single statement.
func (r *ProductRepository) Update(ctx context.Context, id string, f product.Fields) (*product.Product, error) {
	return r.one(ctx, "update", r.updateSQL, id, f.Name, f.Price, f.Description, f.ImageURL)
}

func (r *ProductRepository) Delete(ctx context.Context, id string) (*product.Product, error) {
	return r.one(ctx, "delete", r.deleteSQL, id)
}

func (r *ProductRepository) one(ctx context.Context, op, sql, id string, args ...any) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, sql, append([]any{id}, args...)...)
	if err != nil {
		return nil, errors.Wrapf(err, "%s product %q", op, id)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "%s product %q", op, id)
	}
	return &p, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

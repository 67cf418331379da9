package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-api/internal/domain/order"
)

const orderColumns = `id, first_name, last_name, address1, address2, city, state, zip, country,
	phone, email, order_total, items, created_at, updated_at`

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool

	listSQL   string
	getSQL    string
	insertSQL string
	updateSQL string
	deleteSQL string
}

// NewOrderRepository returns an OrderRepository that uses the given pool
// and table.
func NewOrderRepository(pool *pgxpool.Pool, table string) *OrderRepository {
	t := quote(table)
	return &OrderRepository{
		pool:    pool,
		listSQL: fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at, id`, orderColumns, t),
		getSQL:  fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, orderColumns, t),
		insertSQL: fmt.Sprintf(`INSERT INTO %s (id, first_name, last_name, address1, address2, city, state,
			zip, country, phone, email, order_total, items)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING order_total, created_at, updated_at`, t),
		updateSQL: fmt.Sprintf(`UPDATE %s SET
			first_name = COALESCE($2::text, first_name),
			last_name = COALESCE($3::text, last_name),
			address1 = COALESCE($4::text, address1),
			address2 = COALESCE($5::text, address2),
			city = COALESCE($6::text, city),
			state = COALESCE($7::text, state),
			zip = COALESCE($8::text, zip),
			country = COALESCE($9::text, country),
			phone = COALESCE($10::text, phone),
			email = COALESCE($11::text, email),
			order_total = COALESCE($12::numeric, order_total),
			items = COALESCE($13::jsonb, items),
			updated_at = now()
			WHERE id = $1 RETURNING %s`, t, orderColumns),
		deleteSQL: fmt.Sprintf(`DELETE FROM %s WHERE id = $1 RETURNING %s`, t, orderColumns),
	}
}

// List returns all orders ordered by creation time.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, r.listSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return pgx.CollectRows(rows, scanOrder)
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	return r.one(ctx, "get", r.getSQL, id)
}

// Create persists a new order. The order items are serialized to JSON for
// storage in the JSONB column.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	items := o.Items
	if items == nil {
		items = []order.Item{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "marshal order items")
	}

	id := uuid.NewString()
	err = r.pool.QueryRow(ctx, r.insertSQL,
		id, o.FirstName, o.LastName, o.Address1, o.Address2, o.City, o.State,
		o.Zip, o.Country, o.Phone, o.Email, o.OrderTotal, itemsJSON,
	).Scan(&o.OrderTotal, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "insert order")
	}
	o.ID = id
	return nil
}

// Update applies the provided fields in a single statement. Absent items
// leave the stored items untouched.
func (r *OrderRepository) Update(ctx context.Context, id string, f order.Fields) (*order.Order, error) {
	var itemsJSON []byte
	if f.Items != nil {
		items := *f.Items
		if items == nil {
			items = []order.Item{}
		}
		var err error
		if itemsJSON, err = json.Marshal(items); err != nil {
			return nil, errors.Wrap(err, "marshal order items")
		}
	}

	return r.one(ctx, "update", r.updateSQL, id,
		f.FirstName, f.LastName, f.Address1, f.Address2, f.City, f.State,
		f.Zip, f.Country, f.Phone, f.Email, f.OrderTotal, itemsJSON,
	)
}

func (r *OrderRepository) Delete(ctx context.Context, id string) (*order.Order, error) {
	return r.one(ctx, "delete", r.deleteSQL, id)
}

func (r *OrderRepository) one(ctx context.Context, op, sql, id string, args ...any) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, sql, append([]any{id}, args...)...)
	if err != nil {
		return nil, errors.Wrapf(err, "%s order %q", op, id)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "%s order %q", op, id)
	}
	return &o, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o     order.Order
		items []byte
	)
	err := row.Scan(
		&o.ID, &o.FirstName, &o.LastName, &o.Address1, &o.Address2, &o.City, &o.State,
		&o.Zip, &o.Country, &o.Phone, &o.Email, &o.OrderTotal, &items, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return o, errors.Wrap(err, "unmarshal order items")
	}
	return o, nil
}

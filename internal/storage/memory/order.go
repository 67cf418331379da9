package memory

import (
	"context"
	"slices"
	"time"

	"github.com/xenking/storefront-api/internal/domain/order"
)

var _ order.Repository = (*OrderStore)(nil)

// OrderStore implements order.Repository in memory. Item slices are copied
// on the way in and out so callers never share backing arrays with the store.
type OrderStore struct {
	c *collection[order.Order]
}

// NewOrderStore returns an empty OrderStore.
func NewOrderStore() *OrderStore {
	return &OrderStore{c: newCollection[order.Order]()}
}

func (s *OrderStore) List(_ context.Context) ([]order.Order, error) {
	orders := s.c.list()
	for i := range orders {
		orders[i].Items = slices.Clone(orders[i].Items)
	}
	return orders, nil
}

func (s *OrderStore) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := s.c.get(id)
	if !ok {
		return nil, order.ErrNotFound
	}
	o.Items = slices.Clone(o.Items)
	return &o, nil
}

func (s *OrderStore) Create(_ context.Context, o *order.Order) error {
	stored := s.c.insert(func(id string, now time.Time) order.Order {
		o.ID = id
		o.CreatedAt = now
		o.UpdatedAt = now
		doc := *o
		doc.Items = slices.Clone(o.Items)
		return doc
	})
	o.ID = stored.ID
	return nil
}

func (s *OrderStore) Update(_ context.Context, id string, f order.Fields) (*order.Order, error) {
	o, ok := s.c.update(id, func(o *order.Order, now time.Time) {
		f.Apply(o)
		o.UpdatedAt = now
	})
	if !ok {
		return nil, order.ErrNotFound
	}
	o.Items = slices.Clone(o.Items)
	return &o, nil
}

func (s *OrderStore) Delete(_ context.Context, id string) (*order.Order, error) {
	o, ok := s.c.remove(id)
	if !ok {
		return nil, order.ErrNotFound
	}
	return &o, nil
}

package memory

import (
	"context"
	"time"

	"github.com/xenking/storefront-api/internal/domain/product"
)

var _ product.Repository = (*ProductStore)(nil)

// ProductStore implements product.Repository in memory.
type ProductStore struct {
	c *collection[product.Product]
}

// NewProductStore returns an empty ProductStore.
func NewProductStore() *ProductStore {
	return &ProductStore{c: newCollection[product.Product]()}
}

func (s *ProductStore) List(_ context.Context) ([]product.Product, error) {
	return s.c.list(), nil
}

func (s *ProductStore) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := s.c.get(id)
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (s *ProductStore) Exists(_ context.Context, id string) (bool, error) {
	_, ok := s.c.get(id)
	return ok, nil
}

// Create assigns p a new id and timestamps and stores a copy.
func (s *ProductStore) Create(_ context.Context, p *product.Product) error {
	stored := s.c.insert(func(id string, now time.Time) product.Product {
		p.ID = id
		p.CreatedAt = now
		p.UpdatedAt = now
		return *p
	})
	*p = stored
	return nil
}

func (s *ProductStore) Update(_ context.Context, id string, f product.Fields) (*product.Product, error) {
	p, ok := s.c.update(id, func(p *product.Product, now time.Time) {
		f.Apply(p)
		p.UpdatedAt = now
	})
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (s *ProductStore) Delete(_ context.Context, id string) (*product.Product, error) {
	p, ok := s.c.remove(id)
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

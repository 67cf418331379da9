package product

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/storefront-api/internal/diag"
)

// Service implements product CRUD on top of a Repository.
type Service struct {
	repo Repository
	diag diag.Gate
}

// NewService creates a product Service. The repository is owned by the
// caller.
func NewService(repo Repository, gate diag.Gate) *Service {
	return &Service{
		repo: repo,
		diag: gate,
	}
}

// List returns every product. The result is never nil.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	if products == nil {
		products = []Product{}
	}
	s.diag.Trace(ctx, "Got back products", zap.Int("count", len(products)))
	return products, nil
}

// Get returns the product with the given id, or nil when none exists.
// Absence is not an error at this layer.
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get product %s", id)
	}
	s.diag.Trace(ctx, "Got back product", zap.String("id", p.ID))
	return p, nil
}

// Create validates f and persists a new product.
func (s *Service) Create(ctx context.Context, f Fields) (*Product, error) {
	if err := f.validate(true); err != nil {
		return nil, err
	}

	var p Product
	f.Apply(&p)
	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, errors.Wrap(err, "create product")
	}
	s.diag.Trace(ctx, "Created product", zap.String("id", p.ID))
	return &p, nil
}

// Update applies the provided fields to the product with the given id after
// validating them. A missing product yields *NotFoundError.
func (s *Service) Update(ctx context.Context, id string, f Fields) (*Product, error) {
	if err := f.validate(false); err != nil {
		return nil, err
	}

	p, err := s.repo.Update(ctx, id, f)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, errors.Wrapf(err, "update product %s", id)
	}
	s.diag.Trace(ctx, "Updated product", zap.String("id", p.ID))
	return p, nil
}

// Delete removes the product with the given id and returns it. Deleting a
// missing product returns nil without error.
func (s *Service) Delete(ctx context.Context, id string) (*Product, error) {
	p, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "delete product %s", id)
	}
	s.diag.Trace(ctx, "Deleted product", zap.String("id", p.ID))
	return p, nil
}

package product

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
type Product struct {
	ID          string
	Name        string
	Price       decimal.Decimal
	Description string
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Fields carries product attributes for create and partial update. A nil
// field is "not provided".
type Fields struct {
	Name        *string
	Price       *decimal.Decimal
	Description *string
	ImageURL    *string
}

// Apply copies every provided field onto p.
func (f Fields) Apply(p *Product) {
	if f.Name != nil {
		p.Name = *f.Name
	}
	if f.Price != nil {
		p.Price = *f.Price
	}
	if f.Description != nil {
		p.Description = *f.Description
	}
	if f.ImageURL != nil {
		p.ImageURL = *f.ImageURL
	}
}

// Empty reports whether no field is provided.
func (f Fields) Empty() bool {
	return f.Name == nil && f.Price == nil && f.Description == nil && f.ImageURL == nil
}

// validate checks the stored-document rules. With requireAll set, missing
// required fields are reported too; otherwise only provided fields are checked.
func (f Fields) validate(requireAll bool) error {
	var problems []string
	if f.Name == nil {
		if requireAll {
			problems = append(problems, "name is required")
		}
	} else if strings.TrimSpace(*f.Name) == "" {
		problems = append(problems, "name is required")
	}
	if f.Price == nil && requireAll {
		problems = append(problems, "price is required")
	}
	if f.ImageURL == nil {
		if requireAll {
			problems = append(problems, "imageUrl is required")
		}
	} else if strings.TrimSpace(*f.ImageURL) == "" {
		problems = append(problems, "imageUrl is required")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// ValidationError lists the rules a product document violates.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "product validation failed: " + strings.Join(e.Problems, ", ")
}

// NotFoundError indicates that an update targeted a missing product.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Product with id %s not found.", e.ID)
}

// Is makes errors.Is(err, ErrNotFound) hold for NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Repository defines persistence operations for the product collection.
// Lookups by an unknown id return ErrNotFound.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, id string, f Fields) (*Product, error)
	Delete(ctx context.Context, id string) (*Product, error)
}

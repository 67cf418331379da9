package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
)

// ProductChecker reports whether a product exists. An id the store cannot
// interpret must be reported as absent, not as an error.
type ProductChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// ProductNotFoundError indicates that an order item references a product
// that does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Invalid productId '%s'. The product does not exist.", e.ProductID)
}

// CheckReferences confirms that every item references an existing product.
// Items are checked one at a time in order and the first missing product
// stops the check, so the reported id is always the earliest bad reference.
func CheckReferences(ctx context.Context, products ProductChecker, items []Item) error {
	for _, item := range items {
		ok, err := products.Exists(ctx, item.ProductID)
		if err != nil {
			return errors.Wrapf(err, "check product %s", item.ProductID)
		}
		if !ok {
			return &ProductNotFoundError{ProductID: item.ProductID}
		}
	}
	return nil
}

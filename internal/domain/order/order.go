package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Order is a customer order with shipping details and line items. OrderTotal
// and item prices are snapshots supplied by the caller.
type Order struct {
	ID         string
	FirstName  string
	LastName   string
	Address1   string
	Address2   string
	City       string
	State      string
	Zip        string
	Country    string
	Phone      string
	Email      string
	OrderTotal decimal.Decimal
	Items      []Item
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Item represents a single line item in an order. Price is the product price
// at the time the order was placed.
type Item struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Fields carries order attributes for create and partial update. A nil field
// is "not provided"; Items distinguishes "absent" (nil) from "empty".
type Fields struct {
	FirstName  *string
	LastName   *string
	Address1   *string
	Address2   *string
	City       *string
	State      *string
	Zip        *string
	Country    *string
	Phone      *string
	Email      *string
	OrderTotal *decimal.Decimal
	Items      *[]Item
}

// Apply copies every provided field onto o.
func (f Fields) Apply(o *Order) {
	for _, s := range f.strings(o) {
		if s.value != nil {
			*s.target = *s.value
		}
	}
	if f.OrderTotal != nil {
		o.OrderTotal = *f.OrderTotal
	}
	if f.Items != nil {
		o.Items = append([]Item(nil), (*f.Items)...)
	}
}

// ItemsOrNil returns the provided items, or nil when items are absent.
func (f Fields) ItemsOrNil() []Item {
	if f.Items == nil {
		return nil
	}
	return *f.Items
}

type stringField struct {
	name     string
	required bool
	value    *string
	target   *string
}

func (f Fields) strings(o *Order) []stringField {
	return []stringField{
		{name: "firstName", required: true, value: f.FirstName, target: &o.FirstName},
		{name: "lastName", required: true, value: f.LastName, target: &o.LastName},
		{name: "address1", required: true, value: f.Address1, target: &o.Address1},
		{name: "address2", value: f.Address2, target: &o.Address2},
		{name: "city", required: true, value: f.City, target: &o.City},
		{name: "state", required: true, value: f.State, target: &o.State},
		{name: "zip", required: true, value: f.Zip, target: &o.Zip},
		{name: "country", required: true, value: f.Country, target: &o.Country},
		{name: "phone", required: true, value: f.Phone, target: &o.Phone},
		{name: "email", required: true, value: f.Email, target: &o.Email},
	}
}

// validate checks the stored-document rules. With requireAll set, missing
// required fields are reported too; otherwise only provided fields are checked.
func (f Fields) validate(requireAll bool) error {
	var problems []string
	for _, s := range f.strings(&Order{}) {
		if !s.required {
			continue
		}
		if s.value == nil {
			if requireAll {
				problems = append(problems, s.name+" is required")
			}
		} else if strings.TrimSpace(*s.value) == "" {
			problems = append(problems, s.name+" is required")
		}
	}
	if f.OrderTotal == nil && requireAll {
		problems = append(problems, "orderTotal is required")
	}
	for i, item := range f.ItemsOrNil() {
		if item.ProductID == "" {
			problems = append(problems, fmt.Sprintf("items.%d.productId is required", i))
		}
		if item.Quantity < 1 {
			problems = append(problems, fmt.Sprintf("items.%d.quantity must be at least 1", i))
		}
		if item.Price.IsNegative() {
			problems = append(problems, fmt.Sprintf("items.%d.price must not be negative", i))
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// ValidationError lists the rules an order document violates.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "order validation failed: " + strings.Join(e.Problems, ", ")
}

// NotFoundError indicates that an update targeted a missing order.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Order with id %s not found.", e.ID)
}

// Is makes errors.Is(err, ErrNotFound) hold for NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Repository defines persistence operations for the order collection.
// Lookups by an unknown id return ErrNotFound.
type Repository interface {
	List(ctx context.Context) ([]Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	Create(ctx context.Context, o *Order) error
	Update(ctx context.Context, id string, f Fields) (*Order, error)
	Delete(ctx context.Context, id string) (*Order, error)
}

package order

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/storefront-api/internal/diag"
)

const instrumentationName = "github.com/xenking/storefront-api/internal/domain/order"

// Options holds the optional collaborators of a Service. Nil providers fall
// back to no-op implementations.
type Options struct {
	Diag           diag.Gate
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Service encapsulates order CRUD and the product cross-reference check.
type Service struct {
	products ProductChecker
	orders   Repository
	diag     diag.Gate

	tracer     trace.Tracer
	rejections metric.Int64Counter
}

// NewService creates an order Service with the required domain dependencies.
func NewService(products ProductChecker, orders Repository, opts Options) (*Service, error) {
	if opts.TracerProvider == nil {
		opts.TracerProvider = tracenoop.NewTracerProvider()
	}
	if opts.MeterProvider == nil {
		opts.MeterProvider = metricnoop.NewMeterProvider()
	}

	rejections, err := opts.MeterProvider.Meter(instrumentationName).Int64Counter(
		"storefront.order.reference_rejections",
		metric.WithDescription("Order writes rejected because an item referenced a missing product"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create rejections counter")
	}

	return &Service{
		products:   products,
		orders:     orders,
		diag:       opts.Diag,
		tracer:     opts.TracerProvider.Tracer(instrumentationName),
		rejections: rejections,
	}, nil
}

// List returns every order. The result is never nil.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	if orders == nil {
		orders = []Order{}
	}
	s.diag.Trace(ctx, "Got back orders", zap.Int("count", len(orders)))
	return orders, nil
}

// Get returns the order with the given id, or nil when none exists.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get order %s", id)
	}
	s.diag.Trace(ctx, "Got back order", zap.String("id", o.ID))
	return o, nil
}

// Create verifies every item's product, validates f and persists the order.
// When a product is missing the order collection is never written.
func (s *Service) Create(ctx context.Context, f Fields) (*Order, error) {
	if err := s.checkReferences(ctx, "create", f.ItemsOrNil()); err != nil {
		return nil, err
	}
	if err := f.validate(true); err != nil {
		return nil, err
	}

	var o Order
	f.Apply(&o)
	if o.Items == nil {
		o.Items = []Item{}
	}
	if err := s.orders.Create(ctx, &o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	s.diag.Trace(ctx, "Created order", zap.String("id", o.ID), zap.Int("items", len(o.Items)))
	return &o, nil
}

// Update verifies the products of any supplied items, then applies f to the
// order with the given id. A missing order yields *NotFoundError.
func (s *Service) Update(ctx context.Context, id string, f Fields) (*Order, error) {
	if err := s.checkReferences(ctx, "update", f.ItemsOrNil()); err != nil {
		return nil, err
	}
	if err := f.validate(false); err != nil {
		return nil, err
	}

	o, err := s.orders.Update(ctx, id, f)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, errors.Wrapf(err, "update order %s", id)
	}
	s.diag.Trace(ctx, "Updated order", zap.String("id", o.ID))
	return o, nil
}

// Delete removes the order with the given id and returns it. Deleting a
// missing order returns nil without error.
func (s *Service) Delete(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "delete order %s", id)
	}
	s.diag.Trace(ctx, "Deleted order", zap.String("id", o.ID))
	return o, nil
}

func (s *Service) checkReferences(ctx context.Context, op string, items []Item) error {
	ctx, span := s.tracer.Start(ctx, "order.CheckReferences", trace.WithAttributes(
		attribute.String("order.operation", op),
		attribute.Int("order.items", len(items)),
	))
	defer span.End()

	err := CheckReferences(ctx, s.products, items)
	if err == nil {
		return nil
	}

	var pnfErr *ProductNotFoundError
	if errors.As(err, &pnfErr) {
		s.rejections.Add(ctx, 1, metric.WithAttributes(attribute.String("order.operation", op)))
		span.SetAttributes(attribute.String("order.missing_product_id", pnfErr.ProductID))
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

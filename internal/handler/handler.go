// Package handler exposes the product and order services over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/xenking/storefront-api/internal/diag"
	"github.com/xenking/storefront-api/internal/domain/order"
	"github.com/xenking/storefront-api/internal/domain/product"
)

// ProductService is the product behaviour the handler depends on.
type ProductService interface {
	List(ctx context.Context) ([]product.Product, error)
	Get(ctx context.Context, id string) (*product.Product, error)
	Create(ctx context.Context, f product.Fields) (*product.Product, error)
	Update(ctx context.Context, id string, f product.Fields) (*product.Product, error)
	Delete(ctx context.Context, id string) (*product.Product, error)
}

// OrderService is the order behaviour the handler depends on.
type OrderService interface {
	List(ctx context.Context) ([]order.Order, error)
	Get(ctx context.Context, id string) (*order.Order, error)
	Create(ctx context.Context, f order.Fields) (*order.Order, error)
	Update(ctx context.Context, id string, f order.Fields) (*order.Order, error)
	Delete(ctx context.Context, id string) (*order.Order, error)
}

// Handler serves the /product and /order resources.
type Handler struct {
	products ProductService
	orders   OrderService
	diag     diag.Gate
	validate *validator.Validate
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(products ProductService, orders OrderService, gate diag.Gate) *Handler {
	return &Handler{
		products: products,
		orders:   orders,
		diag:     gate,
		validate: newValidator(),
	}
}

// Register mounts the resource routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/product", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Post("/", h.createProduct)
		r.Get("/{id}", h.getProduct)
		r.Put("/{id}", h.updateProduct)
		r.Delete("/{id}", h.deleteProduct)
	})
	r.Route("/order", func(r chi.Router) {
		r.Get("/", h.listOrders)
		r.Post("/", h.createOrder)
		r.Get("/{id}", h.getOrder)
		r.Put("/{id}", h.updateOrder)
		r.Delete("/{id}", h.deleteOrder)
	})
}

func (h *Handler) enter(r *http.Request, op string) {
	h.diag.Trace(r.Context(), op,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
}

// fail writes the 500 envelope for a rejected service call.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	h.diag.Error(r.Context(), message, err)
	writeError(w, http.StatusInternalServerError, message, err.Error())
}

// decode reads the JSON body into v and, when validate is set, checks its
// constraints. An empty body decodes as an empty object. It writes the 4xx
// envelope itself and reports false on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any, validate bool) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		h.diag.Error(r.Context(), msgUnparsable, err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge, err.Error())
			return false
		}
		writeError(w, http.StatusBadRequest, msgUnparsable, err.Error())
		return false
	}
	if !validate {
		return true
	}
	return h.check(w, r, v)
}

// check validates every value and writes a single 400 envelope listing all
// failed constraints.
func (h *Handler) check(w http.ResponseWriter, r *http.Request, values ...any) bool {
	var failed validator.ValidationErrors
	for _, v := range values {
		err := h.validate.Struct(v)
		if err == nil {
			continue
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			h.fail(w, r, msgValidation, err)
			return false
		}
		failed = append(failed, verrs...)
	}
	if len(failed) == 0 {
		return true
	}
	h.diag.Error(r.Context(), msgValidation, failed)
	writeError(w, http.StatusBadRequest, msgValidation, describe(failed))
	return false
}

// maxBodyBytes caps request bodies at 1 MiB.
const maxBodyBytes = 1 << 20

const (
	msgUnparsable = "Request body could not be parsed."
	msgValidation = "Validation failed."
	msgTooLarge   = "Request body is too large."
)

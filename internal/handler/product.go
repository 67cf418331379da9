package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-api/internal/domain/product"
)

const (
	msgProductsList   = "Products could not be retrieved."
	msgProductGet     = "Product could not be retrieved."
	msgProductCreate  = "Product could not be created."
	msgProductUpdate  = "Product could not be updated."
	msgProductDelete  = "Product could not be deleted."
	msgProductMissing = "Product not found."
)

// productRequest is the body of POST and PUT /product. Constraints are only
// checked on create.
type productRequest struct {
	Name        *string          `json:"name" validate:"required"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Description *string          `json:"description" validate:"omitempty,min=5"`
	ImageURL    *string          `json:"imageUrl" validate:"required,url"`
}

func (req productRequest) fields() product.Fields {
	return product.Fields{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("_id", func(e *jx.Encoder) { e.Str(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("price", func(e *jx.Encoder) { e.Float64(p.Price.InexactFloat64()) })
		if p.Description != "" {
			e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
		}
		e.Field("imageUrl", func(e *jx.Encoder) { e.Str(p.ImageURL) })
		e.Field("createdAt", func(e *jx.Encoder) { encodeTime(e, p.CreatedAt) })
		e.Field("updatedAt", func(e *jx.Encoder) { encodeTime(e, p.UpdatedAt) })
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	h.enter(r, "List products")

	products, err := h.products.List(r.Context())
	if err != nil {
		h.fail(w, r, msgProductsList, err)
		return
	}
	writeData(w, http.StatusOK, encodeArray(products, encodeProduct))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	h.enter(r, "Get product")

	id := chi.URLParam(r, "id")
	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, msgProductGet, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, msgProductMissing, "Product with id "+id+" not found.")
		return
	}
	writeData(w, http.StatusOK, func(e *jx.Encoder) { encodeProduct(e, *p) })
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	h.enter(r, "Create product")

	var req productRequest
	if !h.decode(w, r, &req, true) {
		return
	}
	p, err := h.products.Create(r.Context(), req.fields())
	if err != nil {
		h.fail(w, r, msgProductCreate, err)
		return
	}
	writeData(w, http.StatusCreated, func(e *jx.Encoder) { encodeProduct(e, *p) })
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	h.enter(r, "Update product")

	var req productRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	p, err := h.products.Update(r.Context(), chi.URLParam(r, "id"), req.fields())
	if err != nil {
		h.fail(w, r, msgProductUpdate, err)
		return
	}
	writeData(w, http.StatusOK, func(e *jx.Encoder) { encodeProduct(e, *p) })
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	h.enter(r, "Delete product")

	if _, err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, msgProductDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-api/internal/domain/order"
)

const (
	msgOrdersList   = "Orders could not be retrieved."
	msgOrderGet     = "Order could not be retrieved."
	msgOrderCreate  = "Order could not be created."
	msgOrderUpdate  = "Order could not be updated."
	msgOrderDelete  = "Order could not be deleted."
	msgOrderMissing = "Order not found."
)

type orderItemRequest struct {
	ProductID string           `json:"productId" validate:"required"`
	Quantity  int              `json:"quantity" validate:"gte=1"`
	Price     *decimal.Decimal `json:"price" validate:"required"`
}

// orderRequest is the body of POST and PUT /order. Constraints are checked
// in full on create. On update only supplied items are checked.
type orderRequest struct {
	FirstName  *string             `json:"firstName" validate:"required"`
	LastName   *string             `json:"lastName" validate:"required"`
	Address1   *string             `json:"address1" validate:"required"`
	Address2   *string             `json:"address2"`
	City       *string             `json:"city" validate:"required"`
	State      *string             `json:"state" validate:"required"`
	Zip        *string             `json:"zip" validate:"required"`
	Country    *string             `json:"country" validate:"required"`
	Phone      *string             `json:"phone" validate:"required"`
	Email      *string             `json:"email" validate:"required"`
	OrderTotal *decimal.Decimal    `json:"orderTotal" validate:"required"`
	Items      *[]orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (req orderRequest) fields() order.Fields {
	f := order.Fields{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Address1:   req.Address1,
		Address2:   req.Address2,
		City:       req.City,
		State:      req.State,
		Zip:        req.Zip,
		Country:    req.Country,
		Phone:      req.Phone,
		Email:      req.Email,
		OrderTotal: req.OrderTotal,
	}
	if req.Items != nil {
		items := make([]order.Item, 0, len(*req.Items))
		for _, it := range *req.Items {
			item := order.Item{ProductID: it.ProductID, Quantity: it.Quantity}
			if it.Price != nil {
				item.Price = *it.Price
			}
			items = append(items, item)
		}
		f.Items = &items
	}
	return f
}

func encodeItem(e *jx.Encoder, it order.Item) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("productId", func(e *jx.Encoder) { e.Str(it.ProductID) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
		e.Field("price", func(e *jx.Encoder) { e.Float64(it.Price.InexactFloat64()) })
	})
}

func encodeOrder(e *jx.Encoder, o order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("_id", func(e *jx.Encoder) { e.Str(o.ID) })
		for _, f := range []struct{ name, value string }{
			{"firstName", o.FirstName},
			{"lastName", o.LastName},
			{"address1", o.Address1},
			{"address2", o.Address2},
			{"city", o.City},
			{"state", o.State},
			{"zip", o.Zip},
			{"country", o.Country},
			{"phone", o.Phone},
			{"email", o.Email},
		} {
			if f.name == "address2" && f.value == "" {
				continue
			}
			e.Field(f.name, func(e *jx.Encoder) { e.Str(f.value) })
		}
		e.Field("orderTotal", func(e *jx.Encoder) { e.Float64(o.OrderTotal.InexactFloat64()) })
		e.Field("items", encodeArray(o.Items, encodeItem))
		e.Field("createdAt", func(e *jx.Encoder) { encodeTime(e, o.CreatedAt) })
		e.Field("updatedAt", func(e *jx.Encoder) { encodeTime(e, o.UpdatedAt) })
	})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	h.enter(r, "List orders")

	orders, err := h.orders.List(r.Context())
	if err != nil {
		h.fail(w, r, msgOrdersList, err)
		return
	}
	writeData(w, http.StatusOK, encodeArray(orders, encodeOrder))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	h.enter(r, "Get order")

	id := chi.URLParam(r, "id")
	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, msgOrderGet, err)
		return
	}
	if o == nil {
		writeError(w, http.StatusNotFound, msgOrderMissing, "Order with id "+id+" not found.")
		return
	}
	writeData(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, *o) })
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	h.enter(r, "Create order")

	var req orderRequest
	if !h.decode(w, r, &req, true) {
		return
	}
	o, err := h.orders.Create(r.Context(), req.fields())
	if err != nil {
		h.fail(w, r, msgOrderCreate, err)
		return
	}
	writeData(w, http.StatusCreated, func(e *jx.Encoder) { encodeOrder(e, *o) })
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	h.enter(r, "Update order")

	var req orderRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	if req.Items != nil {
		items := make([]any, 0, len(*req.Items))
		for _, it := range *req.Items {
			items = append(items, it)
		}
		if !h.check(w, r, items...) {
			return
		}
	}
	o, err := h.orders.Update(r.Context(), chi.URLParam(r, "id"), req.fields())
	if err != nil {
		h.fail(w, r, msgOrderUpdate, err)
		return
	}
	writeData(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, *o) })
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	h.enter(r, "Delete order")

	if _, err := h.orders.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, msgOrderDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

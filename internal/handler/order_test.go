package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront-api/internal/diag"
)

type orderDTO struct {
	ID         string  `json:"_id"`
	FirstName  string  `json:"firstName"`
	City       string  `json:"city"`
	OrderTotal float64 `json:"orderTotal"`
	Items      []struct {
		ProductID string  `json:"productId"`
		Quantity  int     `json:"quantity"`
		Price     float64 `json:"price"`
	} `json:"items"`
}

func orderBody(items string) string {
	return fmt.Sprintf(`{
		"firstName":"Ada","lastName":"Lovelace","address1":"1 Main St",
		"city":"London","state":"LDN","zip":"N1","country":"UK",
		"phone":"123","email":"ada@example.com","orderTotal":19.98,
		"items":%s
	}`, items)
}

func TestOrder_Create(t *testing.T) {
	srv := newTestServer(t, diag.Gate{})
	a := createProduct(t, srv, `{"name":"A","price":9.99,"imageUrl":"http://x.com/a.png"}`)
	b := createProduct(t, srv, `{"name":"B","price":4.99,"imageUrl":"http://x.com/b.png"}`)

	items := fmt.Sprintf(`[{"productId":%q,"quantity":1,"price":9.99},{"productId":%q,"quantity":2,"price":4.99}]`, b.ID, a.ID)
	resp, env := do(t, srv.Server, http.MethodPost, "/order", orderBody(items))
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Details)

	o := decodeData[orderDTO](t, env)
	assert.NotEmpty(t, o.ID)
	assert.InDelta(t, 19.98, o.OrderTotal, 1e-9)
	require.Len(t, o.Items, 2)
	assert.Equal(t, b.ID, o.Items[0].ProductID)
	assert.Equal(t, a.ID, o.Items[1].ProductID)
	assert.Equal(t, 2, o.Items[1].Quantity)

	resp, env = do(t, srv.Server, http.MethodGet, "/order/"+o.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, o, decodeData[orderDTO](t, env))
}

func TestOrder_Create_UnknownProduct(t *testing.T) {
	srv := newTestServer(t, diag.Gate{})
	a := createProduct(t, srv, `{"name":"A","price":9.99,"imageUrl":"http://x.com/a.png"}`)

	items := fmt.Sprintf(`[{"productId":%q,"quantity":1,"price":9.99},{"productId":"ghost-1","quantity":1,"price":9.99},{"productId":"ghost-2","quantity":1,"price":9.99}]`, a.ID)
	resp, env := do(t, srv.Server, http.MethodPost, "/order", orderBody(items))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Order could not be created.", env.Message)
	assert.Equal(t, "Invalid productId 'ghost-1'. The product does not exist.", env.Details)

	_, env = do(t, srv.Server, http.MethodGet, "/order", "")
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestOrder_Create_Validation(t *testing.T) {
	srv := newTestServer(t, diag.Gate{})

	resp, env := do(t, srv.Server, http.MethodPost, "/order", `{"firstName":"Ada","items":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed.", env.Message)
	assert.Equal(t, "Last name is required; Address 1 is required; City is required; State is required; "+
		"Zip is required; Country is required; Phone is required; Email is required; "+
		"Order total is required; Items are required", env.Details)

	resp, env = do(t, srv.Server, http.MethodPost, "/order", orderBody(`[{"quantity":1,"price":9.99}]`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Item productId is required", env.Details)
}

func TestOrder_Create_ItemRules(t *testing.T) {
	srv := newTestServer(t, diag.Gate{})
	a := createProduct(t, srv, `{"name":"A","price":9.99,"imageUrl":"http://x.com/a.png"}`)

	for _, tt := range []struct {
		name    string
		items   string
		details string
	}{
		{"NoPrice", fmt.Sprintf(`[{"productId":%q,"quantity":1}]`, a.ID), "Price is required"},
		{"ZeroQuantity", fmt.Sprintf(`[{"productId":%q,"quantity":0,"price":9.99}]`, a.ID), "Item quantity must be at least 1"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			resp, env := do(t, srv.Server, http.MethodPost, "/order", orderBody(tt.items))
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "Validation failed.", env.Message)
			assert.Equal(t, tt.details, env.Details)
		})
	}

	_, env := do(t, srv.Server, http.MethodGet, "/order", "")
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestOrder_Update_ItemRules(t *testing.T) {
	srv := newTestServer(t, diag.Gate{})
	a := createProduct(t, srv, `{"name":"A","price":9.99,"imageUrl":"http://x.com/a.png"}`)
	_, env := do(t, srv.Server, http.MethodPost, "/order", orderBody(fmt.Sprintf(`[{"productId":%q,"quantity":2,"price":9.99}]`, a.ID)))
	o := decodeData[orderDTO](t, env)

	body := fmt.Sprintf(`{"items":[{"productId":%q,"quantity":-3}]}`, a.ID)
	resp, env := do(t, srv.Server, http.MethodPut, "/order/"+o.ID, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed.", env.Message)
	assert.Equal(t, "Item quantity must be at least 1; Price is required", env.Details)

	resp, env = do(t, srv.Server, http.MethodGet, "/order/"+o.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeData[orderDTO](t, env)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.InDelta(t, 9.99, got.Items[0].Price, 1e-9)
}

func TestOrder_Update(t *testing.T) {
	srv := newTestServer(t, diag.Gate{})
	a := createProduct(t, srv, `{"name":"A","price":9.99,"imageUrl":"http://x.com/a.png"}`)

	_, env := do(t, srv.Server, http.MethodPost, "/order", orderBody(fmt.Sprintf(`[{"productId":%q,"quantity":1,"price":9.99}]`, a.ID)))
	o := decodeData[orderDTO](t, env)

	resp, env := do(t, srv.Server, http.MethodPut, "/order/"+o.ID, `{"city":"Paris"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeData[orderDTO](t, env)
	assert.Equal(t, "Paris", got.City)
	assert.Equal(t, "Ada", got.FirstName)
	assert.Len(t, got.Items, 1)

	resp, env = do(t, srv.Server, http.MethodPut, "/order/"+o.ID, `{"items":[{"productId":"ghost","quantity":1,"price":9.99}]}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Order could not be updated.", env.Message)
	assert.Contains(t, env.Details, "ghost")

	resp, env = do(t, srv.Server, http.MethodPut, "/order/"+o.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Paris", decodeData[orderDTO](t, env).City)

	resp, env = do(t, srv.Server, http.MethodPut, "/order/missing", `{"city":"Paris"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Order with id missing not found.", env.Details)
}

func TestOrder_GetAndDelete(t *testing.T) {
	srv := newTestServer(t, diag.Gate{})
	a := createProduct(t, srv, `{"name":"A","price":9.99,"imageUrl":"http://x.com/a.png"}`)
	_, env := do(t, srv.Server, http.MethodPost, "/order", orderBody(fmt.Sprintf(`[{"productId":%q,"quantity":1,"price":9.99}]`, a.ID)))
	o := decodeData[orderDTO](t, env)

	resp, _ := do(t, srv.Server, http.MethodDelete, "/order/"+o.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, env = do(t, srv.Server, http.MethodGet, "/order/"+o.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Order not found.", env.Message)

	resp, _ = do(t, srv.Server, http.MethodDelete, "/order/"+o.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

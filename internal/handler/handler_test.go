package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xenking/storefront-api/internal/diag"
	"github.com/xenking/storefront-api/internal/domain/order"
	"github.com/xenking/storefront-api/internal/domain/product"
	"github.com/xenking/storefront-api/internal/storage/memory"
)

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Details string          `json:"details"`
}

type testServer struct {
	*httptest.Server
	products *product.Service
	orders   *order.Service
}

func newTestServer(t *testing.T, gate diag.Gate) *testServer {
	t.Helper()

	productStore := memory.NewProductStore()
	products := product.NewService(productStore, gate)
	orders, err := order.NewService(productStore, memory.NewOrderStore(), order.Options{Diag: gate})
	require.NoError(t, err)

	return &testServer{
		Server:   newServer(t, NewHandler(products, orders, gate)),
		products: products,
		orders:   orders,
	}
}

func newServer(t *testing.T, h *Handler) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	h.Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, envelope) {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

type mockProducts struct {
	mock.Mock
}

func (m *mockProducts) List(ctx context.Context) ([]product.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.Product), args.Error(1)
}

func (m *mockProducts) Get(ctx context.Context, id string) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *mockProducts) Create(ctx context.Context, f product.Fields) (*product.Product, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *mockProducts) Update(ctx context.Context, id string, f product.Fields) (*product.Product, error) {
	args := m.Called(ctx, id, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *mockProducts) Delete(ctx context.Context, id string) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func TestHandler_StorageFailure(t *testing.T) {
	products := new(mockProducts)
	products.On("List", mock.Anything).Return(nil, errors.New("connection refused"))
	products.On("Delete", mock.Anything, "p1").Return(nil, errors.New("connection refused"))

	srv := newServer(t, NewHandler(products, nil, diag.Gate{}))

	resp, env := do(t, srv, http.MethodGet, "/product", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Products could not be retrieved.", env.Message)
	assert.Equal(t, "connection refused", env.Details)

	resp, env = do(t, srv, http.MethodDelete, "/product/p1", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Product could not be deleted.", env.Message)

	products.AssertExpectations(t)
}

func TestHandler_DiagnosticGate(t *testing.T) {
	for _, tt := range []struct {
		level string
		want  int
	}{
		{level: "", want: 0},
		{level: "debug", want: 0},
		{level: "TRACE", want: 0},
		{level: "trace", want: 2},
	} {
		t.Run("level="+tt.level, func(t *testing.T) {
			core, logs := observer.New(zap.DebugLevel)
			products := new(mockProducts)
			products.On("List", mock.Anything).Return(nil, errors.New("boom"))

			r := chi.NewRouter()
			r.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					next.ServeHTTP(w, req.WithContext(zctx.Base(req.Context(), zap.New(core))))
				})
			})
			NewHandler(products, nil, diag.New(tt.level)).Register(r)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/product", nil))
			assert.Equal(t, http.StatusInternalServerError, rec.Code)

			// Entry line plus the raw error.
			assert.Equal(t, tt.want, logs.Len())
		})
	}
}

func TestHandler_MalformedBody(t *testing.T) {
	srv := newTestServer(t, diag.Gate{})

	for _, path := range []string{"/product", "/order"} {
		resp, env := do(t, srv.Server, http.MethodPost, path, `{"name":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		assert.Equal(t, "error", env.Status)
		assert.Equal(t, "Request body could not be parsed.", env.Message)
		assert.NotEmpty(t, env.Details)
	}
}

func TestHandler_BodySize(t *testing.T) {
	srv := newTestServer(t, diag.Gate{})
	r := chi.NewRouter()
	NewHandler(srv.products, srv.orders, diag.Gate{}).Register(r)

	body := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/product", strings.NewReader(body)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "Request body is too large.", env.Message)
	assert.Empty(t, mustList(t, srv))
}

func TestHandler_EmptyBody(t *testing.T) {
	srv := newTestServer(t, diag.Gate{})
	p := createProduct(t, srv, `{"name":"A","price":9.99,"imageUrl":"http://x.com/a.png"}`)

	resp, env := do(t, srv.Server, http.MethodPost, "/product", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed.", env.Message)

	resp, env = do(t, srv.Server, http.MethodPut, "/product/"+p.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Details)
	assert.Equal(t, "A", decodeData[productDTO](t, env).Name)
}

func mustList(t *testing.T, srv *testServer) []product.Product {
	t.Helper()
	list, err := srv.products.List(context.Background())
	require.NoError(t, err)
	return list
}

package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProducts struct {
	known map[string]bool
	err   error
	calls []string
}

func newMockProducts(ids ...string) *mockProducts {
	m := &mockProducts{known: make(map[string]bool)}
	for _, id := range ids {
		m.known[id] = true
	}
	return m
}

func (m *mockProducts) Exists(_ context.Context, id string) (bool, error) {
	m.calls = append(m.calls, id)
	if m.err != nil {
		return false, m.err
	}
	return m.known[id], nil
}

func TestCheckReferences(t *testing.T) {
	tests := []struct {
		name      string
		known     []string
		items     []string
		missing   string
		wantCalls []string
	}{
		{name: "no items", known: []string{"a"}, items: nil, wantCalls: nil},
		{name: "all present", known: []string{"a", "b"}, items: []string{"a", "b", "a"}, wantCalls: []string{"a", "b", "a"}},
		{name: "first missing", known: []string{"b"}, items: []string{"x", "b"}, missing: "x", wantCalls: []string{"x"}},
		{name: "stops at first missing", known: []string{"a"}, items: []string{"a", "x", "y"}, missing: "x", wantCalls: []string{"a", "x"}},
		{name: "unparsable id", known: []string{"a"}, items: []string{"not-an-id"}, missing: "not-an-id", wantCalls: []string{"not-an-id"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := newMockProducts(tt.known...)
			items := make([]Item, 0, len(tt.items))
			for _, id := range tt.items {
				items = append(items, Item{ProductID: id, Quantity: 1})
			}

			err := CheckReferences(context.Background(), products, items)
			assert.Equal(t, tt.wantCalls, products.calls)
			if tt.missing == "" {
				require.NoError(t, err)
				return
			}

			var pnfErr *ProductNotFoundError
			require.ErrorAs(t, err, &pnfErr)
			assert.Equal(t, tt.missing, pnfErr.ProductID)
			assert.Equal(t, "Invalid productId '"+tt.missing+"'. The product does not exist.", err.Error())
		})
	}
}

func TestCheckReferences_StorageError(t *testing.T) {
	products := newMockProducts("a")
	products.err = errors.New("connection reset")

	err := CheckReferences(context.Background(), products, []Item{{ProductID: "a"}, {ProductID: "b"}})
	require.Error(t, err)

	var pnfErr *ProductNotFoundError
	assert.False(t, errors.As(err, &pnfErr))
	assert.ErrorContains(t, err, "check product a")
	assert.Equal(t, []string{"a"}, products.calls)
}

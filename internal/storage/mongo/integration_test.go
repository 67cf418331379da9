//go:build integration

package mongo_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xenking/storefront-api/internal/diag"
	"github.com/xenking/storefront-api/internal/domain/order"
	"github.com/xenking/storefront-api/internal/domain/product"
	"github.com/xenking/storefront-api/internal/storage/mongo"
)

func ptr[T any](v T) *T { return &v }

func startMongo(t *testing.T) (*mongo.ProductRepository, *mongo.OrderRepository) {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "27017/tcp")
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, fmt.Sprintf("mongodb://%s:%s/?directConnection=true", host, port.Port()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	require.NoError(t, mongo.Pinger(client)(ctx))

	db := client.Database("shop_test")
	return mongo.NewProductRepository(db, "product"), mongo.NewOrderRepository(db, "order")
}

func TestProductRepository(t *testing.T) {
	ctx := context.Background()
	repo, _ := startMongo(t)
	svc := product.NewService(repo, diag.New(""))

	created, err := svc.Create(ctx, product.Fields{
		Name:     ptr("Widget"),
		Price:    ptr(decimal.RequireFromString("9.99")),
		ImageURL: ptr("http://x/y.png"),
	})
	require.NoError(t, err)
	assert.Len(t, created.ID, 24)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("9.99")))

	got, err = svc.Get(ctx, "not-an-object-id")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = svc.Get(ctx, primitive.NewObjectID().Hex())
	require.NoError(t, err)
	assert.Nil(t, got)

	updated, err := svc.Update(ctx, created.ID, product.Fields{Description: ptr("Fresh stock")})
	require.NoError(t, err)
	assert.Equal(t, "Fresh stock", updated.Description)
	assert.Equal(t, "Widget", updated.Name)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	_, err = svc.Update(ctx, primitive.NewObjectID().Hex(), product.Fields{Name: ptr("x")})
	require.ErrorIs(t, err, product.ErrNotFound)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	deleted, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	deleted, err = svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, deleted)
}

func TestOrderRepository(t *testing.T) {
	ctx := context.Background()
	productRepo, orderRepo := startMongo(t)
	products := product.NewService(productRepo, diag.New(""))
	orders, err := order.NewService(productRepo, orderRepo, order.Options{})
	require.NoError(t, err)

	widget, err := products.Create(ctx, product.Fields{
		Name:     ptr("Widget"),
		Price:    ptr(decimal.RequireFromString("4.99")),
		ImageURL: ptr("http://x/y.png"),
	})
	require.NoError(t, err)

	missing := primitive.NewObjectID().Hex()
	items := []order.Item{
		{ProductID: widget.ID, Quantity: 1, Price: decimal.RequireFromString("4.99")},
		{ProductID: missing, Quantity: 1},
	}
	f := order.Fields{
		FirstName:  ptr("Ada"),
		LastName:   ptr("Lovelace"),
		Address1:   ptr("1 Main St"),
		City:       ptr("London"),
		State:      ptr("LDN"),
		Zip:        ptr("N1"),
		Country:    ptr("UK"),
		Phone:      ptr("123"),
		Email:      ptr("ada@example.com"),
		OrderTotal: ptr(decimal.RequireFromString("4.99")),
		Items:      &items,
	}

	_, err = orders.Create(ctx, f)
	var pnfErr *order.ProductNotFoundError
	require.ErrorAs(t, err, &pnfErr)
	assert.Equal(t, missing, pnfErr.ProductID)

	list, err := orders.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	items = items[:1]
	created, err := orders.Create(ctx, f)
	require.NoError(t, err)

	got, err := orders.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, widget.ID, got.Items[0].ProductID)

	updated, err := orders.Update(ctx, created.ID, order.Fields{Zip: ptr("N2")})
	require.NoError(t, err)
	assert.Equal(t, "N2", updated.Zip)
	assert.Len(t, updated.Items, 1)
}

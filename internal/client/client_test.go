package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/storefront/internal/auth"
	"github.com/geocoder89/storefront/internal/client"
	"github.com/geocoder89/storefront/internal/config"
	"github.com/geocoder89/storefront/internal/db"
	"github.com/geocoder89/storefront/internal/domain/cart"
	"github.com/geocoder89/storefront/internal/domain/order"
	"github.com/geocoder89/storefront/internal/domain/product"
	apphttp "github.com/geocoder89/storefront/internal/http"
	"github.com/geocoder89/storefront/internal/repo/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *client.Client {
	t.Helper()

	users := memory.NewUsersRepo()
	require.NoError(t, db.EnsureAdminUser(context.Background(), users, config.Config{
		AdminEmail: "admin@example.com", AdminPassword: "admin-pass", AdminName: "Admin",
	}))

	srv := httptest.NewServer(apphttp.NewRouter(apphttp.RouterDeps{
		Env:           "test",
		Users:         users,
		Products:      memory.NewProductsRepo(),
		Tokens:        auth.NewManager("test-secret", time.Hour),
		AuthRateLimit: 100,
	}))
	t.Cleanup(srv.Close)

	return client.New(srv.URL)
}

func ptr[T any](v T) *T { return &v }

func TestClientCatalog(t *testing.T) {
	ctx := context.Background()
	c := newServer(t)

	_, err := c.ListProducts(ctx)
	require.Error(t, err)
	assert.True(t, client.IsStatus(err, http.StatusNotFound))

	login, err := c.Login(ctx, "admin@example.com", "admin-pass")
	require.NoError(t, err)
	admin := c.WithToken(login.Token)

	_, err = c.AddProduct(ctx, product.CreateProductRequest{Title: "x"})
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))

	p, err := admin.AddProduct(ctx, product.CreateProductRequest{
		Title: "Phone", Description: "A phone", Category: "tech", Image: "p.png",
		Price: ptr(10.0), InStock: ptr(0.0), Rating: ptr(4.5),
	})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)

	_, err = admin.AddProduct(ctx, product.CreateProductRequest{
		Title: "Phone", Description: "A phone", Category: "tech", Image: "p.png",
		Price: ptr(10.0), InStock: ptr(0.0), Rating: ptr(4.5),
	})
	var apiErr *client.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "Product already exists", apiErr.Error())

	many, err := admin.AddManyProducts(ctx, []product.BulkProduct{{Title: "a", Price: 1}, {Title: "b", Price: 2}})
	require.NoError(t, err)
	assert.Len(t, many, 2)

	updated, err := admin.UpdateProduct(ctx, p.ID, product.UpdateProductRequest{Price: ptr(12.0)})
	require.NoError(t, err)
	assert.Equal(t, 12.0, updated.Price)
	assert.Equal(t, "Phone", updated.Title)

	got, err := c.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.0, got.Price)

	require.NoError(t, admin.DeleteProduct(ctx, p.ID))

	n, err := admin.DeleteAllProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestClientAccountCartAndOrders(t *testing.T) {
	ctx := context.Background()
	c := newServer(t)

	u, err := c.Register(ctx, "Ada", "ada@example.com", "secret")
	require.NoError(t, err)

	_, err = c.Register(ctx, "Ada", "ada@example.com", "secret")
	assert.True(t, client.IsStatus(err, http.StatusConflict))

	_, err = c.Login(ctx, "ada@example.com", "wrong")
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))

	login, err := c.Login(ctx, "ada@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, login.ID)
	ada := c.WithToken(login.Token)

	price := 2.0
	withCart, err := ada.AddCartItem(ctx, u.ID, cart.Item{ID: "p1", Price: &price, Fields: map[string]any{"title": "Pen"}})
	require.NoError(t, err)
	require.Len(t, withCart.UserDatas.CartList, 1)

	items, err := ada.UpdateQuantity(ctx, u.ID, "p1", 3)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)

	res, err := ada.Checkout(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, res.Order.Total)
	assert.Equal(t, 6.0, *res.Order.Total)
	assert.Empty(t, res.User.UserDatas.CartList)

	_, err = ada.AppendOrder(ctx, u.ID, order.Order{Fields: map[string]any{"note": "manual"}})
	require.NoError(t, err)

	orders, err := ada.ListOrders(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "manual", orders[1].Fields["note"])

	items, err = ada.RemoveCartItem(ctx, u.ID, "nothing-here")
	require.NoError(t, err)
	assert.Empty(t, items)

	emptied, err := ada.EmptyCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, emptied.UserDatas.CartList)
}

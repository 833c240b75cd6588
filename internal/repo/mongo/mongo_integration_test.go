package mongo

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/storefront/internal/db"
	"github.com/geocoder89/storefront/internal/domain/cart"
	"github.com/geocoder89/storefront/internal/domain/order"
	"github.com/geocoder89/storefront/internal/domain/product"
	"github.com/geocoder89/storefront/internal/domain/user"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

var testClient *mongo.Client

// TestMain starts a throwaway mongo container when STOREFRONT_INTEGRATION=1.
func TestMain(m *testing.M) {
	if os.Getenv("STOREFRONT_INTEGRATION") != "1" {
		os.Exit(m.Run())
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("could not construct pool: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		log.Fatalf("could not connect to docker: %s", err)
	}

	res, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "7.0",
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("could not start mongo: %s", err)
	}
	_ = res.Expire(120)

	uri := fmt.Sprintf("mongodb://%s", res.GetHostPort("27017/tcp"))
	if err := pool.Retry(func() error {
		var errRetry error
		testClient, errRetry = db.Connect(context.Background(), uri)
		return errRetry
	}); err != nil {
		log.Fatalf("could not connect to mongo: %s", err)
	}

	code := m.Run()

	_ = testClient.Disconnect(context.Background())
	_ = pool.Purge(res)
	os.Exit(code)
}

func testDB(t *testing.T) *mongo.Database {
	t.Helper()
	if testClient == nil {
		t.Skip("set STOREFRONT_INTEGRATION=1 to run mongo integration tests")
	}
	d := testClient.Database(fmt.Sprintf("storefront_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() { _ = d.Drop(context.Background()) })
	return d
}

func fptr(v float64) *float64 { return &v }

func TestUsersRepo_Integration(t *testing.T) {
	ctx := context.Background()
	repo, err := NewUsersRepo(ctx, testDB(t), nil)
	require.NoError(t, err)

	u, err := repo.Create(ctx, user.User{Name: "A", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)
	assert.Equal(t, user.RoleUser, u.Role)

	_, err = repo.Create(ctx, user.User{Name: "B", Email: " A@X.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	byEmail, err := repo.GetByEmail(ctx, "A@x.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = repo.GetByID(ctx, "not-hex")
	assert.ErrorIs(t, err, user.ErrNotFound)

	item := cart.Item{ID: "p1", Price: fptr(2.5), Fields: map[string]any{"title": "Mug", "tags": []any{"a"}}}
	_, err = repo.AddCartItem(ctx, u.ID, item)
	require.NoError(t, err)
	got, err := repo.AddCartItem(ctx, u.ID, cart.Item{ID: "p1", Quantity: 2})
	require.NoError(t, err)
	require.Len(t, got.UserDatas.CartList, 1)
	assert.Equal(t, 3, got.UserDatas.CartList[0].Quantity)
	assert.Equal(t, "Mug", got.UserDatas.CartList[0].Fields["title"])
	assert.Equal(t, []any{"a"}, got.UserDatas.CartList[0].Fields["tags"])

	loose := cart.Item{ID: "p9", Fields: map[string]any{"price": "N/A"}}
	got, err = repo.AddCartItem(ctx, u.ID, loose)
	require.NoError(t, err)
	require.Len(t, got.UserDatas.CartList, 2)
	assert.Nil(t, got.UserDatas.CartList[1].Price)
	assert.Equal(t, "N/A", got.UserDatas.CartList[1].Fields["price"])
	got, err = repo.RemoveCartItem(ctx, u.ID, "p9")
	require.NoError(t, err)
	require.Len(t, got.UserDatas.CartList, 1)

	got, err = repo.AddCartItem(ctx, u.ID, cart.Item{ID: "p2", Price: fptr(1)})
	require.NoError(t, err)
	require.Len(t, got.UserDatas.CartList, 2)

	got, err = repo.SetCartItemQuantity(ctx, u.ID, "p2", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, got.UserDatas.CartList[1].Quantity)

	_, err = repo.SetCartItemQuantity(ctx, u.ID, "nope", 4)
	assert.ErrorIs(t, err, cart.ErrItemNotFound)

	got, err = repo.RemoveCartItem(ctx, u.ID, "nope")
	require.NoError(t, err)
	assert.Len(t, got.UserDatas.CartList, 2)

	o, err := order.FromCart("o1", got.UserDatas.CartList, time.Now())
	require.NoError(t, err)

	_, err = repo.Checkout(ctx, u.ID, got.UserDatas.CartVersion+5, o)
	assert.ErrorIs(t, err, order.ErrConcurrentCheckout)

	done, err := repo.Checkout(ctx, u.ID, got.UserDatas.CartVersion, o)
	require.NoError(t, err)
	assert.Empty(t, done.UserDatas.CartList)
	require.Len(t, done.UserDatas.YourOrders, 1)
	assert.Equal(t, 11.5, *done.UserDatas.YourOrders[0].Total)

	done, err = repo.AppendOrder(ctx, u.ID, order.Order{Fields: map[string]any{"note": "gift"}})
	require.NoError(t, err)
	require.Len(t, done.UserDatas.YourOrders, 2)
	assert.Equal(t, "gift", done.UserDatas.YourOrders[1].Fields["note"])

	_, err = repo.ClearCart(ctx, "64b000000000000000000000")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestUsersRepo_ConcurrentAppendsMerge(t *testing.T) {
	ctx := context.Background()
	repo, err := NewUsersRepo(ctx, testDB(t), nil)
	require.NoError(t, err)

	u, err := repo.Create(ctx, user.User{Name: "A", Email: "c@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AddCartItem(ctx, u.ID, cart.Item{ID: "same"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got.UserDatas.CartList, 1)
	assert.Equal(t, 8, got.UserDatas.CartList[0].Quantity)
}

func TestProductsRepo_Integration(t *testing.T) {
	ctx := context.Background()
	repo := NewProductsRepo(testDB(t), nil)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	base := product.Product{Title: "Lamp", Description: "d", Category: "home", Image: "l.png", Price: 10, InStock: 0, Rating: 4}
	p, err := repo.Create(ctx, base)
	require.NoError(t, err)

	_, err = repo.Create(ctx, base)
	assert.ErrorIs(t, err, product.ErrAlreadyExists)

	price := 12.0
	up, err := repo.Update(ctx, p.ID, product.UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 12.0, up.Price)
	assert.Equal(t, "Lamp", up.Title)

	_, err = repo.InsertMany(ctx, []product.Product{base, base})
	require.NoError(t, err)

	list, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), product.ErrNotFound)
	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, product.ErrNotFound)

	n, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

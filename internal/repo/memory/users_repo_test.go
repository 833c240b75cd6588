package memory

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/geocoder89/storefront/internal/domain/cart"
	"github.com/geocoder89/storefront/internal/domain/order"
	"github.com/geocoder89/storefront/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(t *testing.T, r *UsersRepo, email string) user.User {
	t.Helper()
	u, err := r.Create(context.Background(), user.User{Name: "A", Email: email, PasswordHash: "h"})
	require.NoError(t, err)
	return u
}

func price(v float64) *float64 { return &v }

func TestUsersRepo_CreateRejectsDuplicateEmail(t *testing.T) {
	r := NewUsersRepo()
	u := newUser(t, r, "a@x.com")

	assert.Equal(t, user.RoleUser, u.Role)
	assert.NotNil(t, u.UserDatas.CartList)
	assert.NotNil(t, u.UserDatas.YourOrders)

	_, err := r.Create(context.Background(), user.User{Name: "B", Email: "A@x.com"})
	assert.ErrorIs(t, err, user.ErrEmailTaken)
	assert.Len(t, r.items, 1)

	assert.Equal(t, "a@x.com", u.Email)
	found, err := r.GetByEmail(context.Background(), " A@X.COM ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
}

func TestUsersRepo_AddCartItemMergesSameID(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()
	u := newUser(t, r, "a@x.com")

	_, err := r.AddCartItem(ctx, u.ID, cart.Item{ID: "p1", Price: price(5), Fields: map[string]any{"title": "Mug"}})
	require.NoError(t, err)
	got, err := r.AddCartItem(ctx, u.ID, cart.Item{ID: "p1", Quantity: 2})
	require.NoError(t, err)

	require.Len(t, got.UserDatas.CartList, 1)
	assert.Equal(t, 3, got.UserDatas.CartList[0].Quantity)
	assert.Equal(t, "Mug", got.UserDatas.CartList[0].Fields["title"])

	got, err = r.AddCartItem(ctx, u.ID, cart.Item{})
	require.NoError(t, err)
	require.Len(t, got.UserDatas.CartList, 2)
	assert.NotEmpty(t, got.UserDatas.CartList[1].ID)
}

func TestUsersRepo_AddCartItemUnknownUser(t *testing.T) {
	r := NewUsersRepo()
	_, err := r.AddCartItem(context.Background(), "missing", cart.Item{ID: "p1"})
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestUsersRepo_SetQuantityUnknownItemLeavesCart(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()
	u := newUser(t, r, "a@x.com")
	_, err := r.AddCartItem(ctx, u.ID, cart.Item{ID: "p1"})
	require.NoError(t, err)

	_, err = r.SetCartItemQuantity(ctx, u.ID, "nope", 4)
	assert.ErrorIs(t, err, cart.ErrItemNotFound)

	after, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, after.UserDatas.CartList, 1)
	assert.Equal(t, 1, after.UserDatas.CartList[0].Quantity)

	got, err := r.SetCartItemQuantity(ctx, u.ID, "p1", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, got.UserDatas.CartList[0].Quantity)
}

func TestUsersRepo_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()
	u := newUser(t, r, "a@x.com")

	for _, id := range []string{"a", "b"} {
		_, err := r.AddCartItem(ctx, u.ID, cart.Item{ID: id})
		require.NoError(t, err)
	}

	got, err := r.RemoveCartItem(ctx, u.ID, "zzz")
	require.NoError(t, err, "removing an absent item is a no-op")
	assert.Len(t, got.UserDatas.CartList, 2)

	got, err = r.RemoveCartItem(ctx, u.ID, "a")
	require.NoError(t, err)
	require.Len(t, got.UserDatas.CartList, 1)
	assert.Equal(t, "b", got.UserDatas.CartList[0].ID)

	_, err = r.RemoveCartItem(ctx, "missing", "a")
	assert.ErrorIs(t, err, user.ErrNotFound)

	got, err = r.ClearCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.UserDatas.CartList)
	assert.NotNil(t, got.UserDatas.CartList)
}

// The final cart length equals distinct appended ids minus successful removals.
func TestUsersRepo_AppendRemoveSequences(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		r := NewUsersRepo()
		u := newUser(t, r, fmt.Sprintf("u%d@x.com", round))
		present := map[string]bool{}

		for step := 0; step < 40; step++ {
			id := fmt.Sprintf("i%d", rng.Intn(8))
			if rng.Intn(2) == 0 {
				_, err := r.AddCartItem(ctx, u.ID, cart.Item{ID: id})
				require.NoError(t, err)
				present[id] = true
			} else {
				_, err := r.RemoveCartItem(ctx, u.ID, id)
				require.NoError(t, err)
				delete(present, id)
			}
		}

		got, err := r.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Len(t, got.UserDatas.CartList, len(present))
	}
}

func TestUsersRepo_AppendOrderAssignsIDAndTime(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()
	u := newUser(t, r, "a@x.com")

	got, err := r.AppendOrder(ctx, u.ID, order.Order{Fields: map[string]any{"title": "Mug"}})
	require.NoError(t, err)
	require.Len(t, got.UserDatas.YourOrders, 1)
	o := got.UserDatas.YourOrders[0]
	assert.NotEmpty(t, o.ID)
	assert.False(t, o.CreatedAt.IsZero())
	assert.Equal(t, "Mug", o.Fields["title"])
}

func TestUsersRepo_CheckoutCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()
	u := newUser(t, r, "a@x.com")

	withItem, err := r.AddCartItem(ctx, u.ID, cart.Item{ID: "p1", Price: price(4), Quantity: 2})
	require.NoError(t, err)
	version := withItem.UserDatas.CartVersion

	o, err := order.FromCart("o1", withItem.UserDatas.CartList, time.Now())
	require.NoError(t, err)

	// a concurrent cart change invalidates the snapshot
	_, err = r.AddCartItem(ctx, u.ID, cart.Item{ID: "p2"})
	require.NoError(t, err)
	_, err = r.Checkout(ctx, u.ID, version, o)
	assert.ErrorIs(t, err, order.ErrConcurrentCheckout)

	fresh, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, fresh.UserDatas.CartList, 2)
	assert.Empty(t, fresh.UserDatas.YourOrders)

	got, err := r.Checkout(ctx, u.ID, fresh.UserDatas.CartVersion, o)
	require.NoError(t, err)
	assert.Empty(t, got.UserDatas.CartList)
	require.Len(t, got.UserDatas.YourOrders, 1)
	assert.Equal(t, 8.0, *got.UserDatas.YourOrders[0].Total)
}

func TestUsersRepo_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()
	u := newUser(t, r, "a@x.com")

	got, err := r.AddCartItem(ctx, u.ID, cart.Item{ID: "p1", Fields: map[string]any{"title": "Mug"}})
	require.NoError(t, err)
	got.UserDatas.CartList[0].Fields["title"] = "changed"

	again, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mug", again.UserDatas.CartList[0].Fields["title"])
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/storefront/internal/config"
	"github.com/geocoder89/storefront/internal/domain/cart"
	"github.com/geocoder89/storefront/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type CartStore interface {
	AddCartItem(ctx context.Context, userID string, item cart.Item) (user.User, error)
	SetCartItemQuantity(ctx context.Context, userID, itemID string, quantity int) (user.User, error)
	RemoveCartItem(ctx context.Context, userID, itemID string) (user.User, error)
	ClearCart(ctx context.Context, userID string) (user.User, error)
}

type CartHandler struct {
	store CartStore
}

func NewCartHandler(store CartStore) *CartHandler {
	return &CartHandler{store: store}
}

func respondCartError(ctx *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, user.ErrNotFound):
		RespondNotFound(ctx, "User not found")
	case errors.Is(err, cart.ErrItemNotFound):
		RespondNotFound(ctx, "User or cart item not found")
	case errors.Is(err, cart.ErrInvalidQuantity):
		RespondBadRequest(ctx, "Quantity must be a whole number of at least 1", nil)
	default:
		respondStoreFailure(ctx, op, err)
	}
}

func (h *CartHandler) AddCartItem(ctx *gin.Context) {
	var item cart.Item

	if !bindJSONWithMessage(ctx, &item, "Provide a valid cart item object") {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.store.AddCartItem(cctx, ctx.Param("_id"), item)
	if err != nil {
		respondCartError(ctx, "users.cart_add", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Cart item added successfully",
		"user":    u,
	})
}

// parseQuantity accepts base-10 integers of at least 1.
func parseQuantity(raw string) (int, bool) {
	q, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || q < 1 {
		return 0, false
	}
	return q, true
}

func (h *CartHandler) UpdateQuantity(ctx *gin.Context) {
	quantity, ok := parseQuantity(ctx.Param("quantity"))
	if !ok {
		RespondBadRequest(ctx, "Quantity must be a whole number of at least 1", gin.H{
			"fields": []FieldError{{Field: "quantity", Rule: "min", Param: "1", Message: validationMessage("min", "1")}},
		})
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.store.SetCartItemQuantity(cctx, ctx.Param("userId"), ctx.Param("_id"), quantity)
	if err != nil {
		respondCartError(ctx, "users.cart_set_quantity", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":  "Cart item quantity updated successfully",
		"cartList": u.UserDatas.CartList,
	})
}

func (h *CartHandler) RemoveCartItem(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.store.RemoveCartItem(cctx, ctx.Param("userId"), ctx.Param("_id"))
	if err != nil {
		respondCartError(ctx, "users.cart_remove", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":  "Cart item removed successfully",
		"cartList": u.UserDatas.CartList,
	})
}

func (h *CartHandler) EmptyCart(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.store.ClearCart(cctx, ctx.Param("id"))
	if err != nil {
		respondCartError(ctx, "users.cart_clear", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "All cart items removed successfully",
		"user":    u,
	})
}

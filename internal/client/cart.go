package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/geocoder89/storefront/internal/domain/cart"
	"github.com/geocoder89/storefront/internal/domain/user"
)

type userEnvelope struct {
	Message string    `json:"message"`
	User    user.User `json:"user"`
}

type cartListEnvelope struct {
	Message  string      `json:"message"`
	CartList []cart.Item `json:"cartList"`
}

func (c *Client) AddCartItem(ctx context.Context, userID string, item cart.Item) (user.User, error) {
	var out userEnvelope
	err := c.do(ctx, http.MethodPut, path("addCartItemInUserDetails", userID), item, &out)
	return out.User, err
}

func (c *Client) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) ([]cart.Item, error) {
	var out cartListEnvelope
	err := c.do(ctx, http.MethodPut, path("updateQuantityInCart", userID, itemID, strconv.Itoa(quantity)), nil, &out)
	return out.CartList, err
}

func (c *Client) RemoveCartItem(ctx context.Context, userID, itemID string) ([]cart.Item, error) {
	var out cartListEnvelope
	err := c.do(ctx, http.MethodDelete, path("removeCartItem", userID, "cart", itemID), nil, &out)
	return out.CartList, err
}

func (c *Client) EmptyCart(ctx context.Context, userID string) (user.User, error) {
	var out userEnvelope
	err := c.do(ctx, http.MethodDelete, path("EmptyUserCart", userID), nil, &out)
	return out.User, err
}

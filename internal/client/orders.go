package client

import (
	"context"
	"net/http"

	"github.com/geocoder89/storefront/internal/domain/order"
	"github.com/geocoder89/storefront/internal/domain/user"
)

type CheckoutResult struct {
	Message string      `json:"message"`
	Order   order.Order `json:"order"`
	User    user.User   `json:"user"`
}

func (c *Client) ListOrders(ctx context.Context, userID string) ([]order.Order, error) {
	var out struct {
		YourOrders []order.Order `json:"yourOrders"`
	}
	err := c.do(ctx, http.MethodGet, path("userorders", userID), nil, &out)
	return out.YourOrders, err
}

func (c *Client) AppendOrder(ctx context.Context, userID string, o order.Order) (user.User, error) {
	var out userEnvelope
	err := c.do(ctx, http.MethodPut, path("yourOrders", userID), o, &out)
	return out.User, err
}

func (c *Client) Checkout(ctx context.Context, userID string) (CheckoutResult, error) {
	var out CheckoutResult
	err := c.do(ctx, http.MethodPost, path("checkout", userID), nil, &out)
	return out, err
}

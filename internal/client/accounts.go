package client

import (
	"context"
	"net/http"

	"github.com/geocoder89/storefront/internal/domain/user"
)

type LoginResult struct {
	Message string `json:"message"`
	ID      string `json:"_id"`
	Token   string `json:"token"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}

func (c *Client) Register(ctx context.Context, name, email, password string) (user.User, error) {
	var out user.User
	err := c.do(ctx, http.MethodPost, "/register", user.RegisterRequest{Name: name, Email: email, Password: password}, &out)
	return out, err
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/login", user.LoginRequest{Email: email, Password: password}, &out)
	return out, err
}

func (c *Client) GetUser(ctx context.Context, userID string) (user.User, error) {
	var out struct {
		User user.User `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, path("user", userID), nil, &out)
	return out.User, err
}

package client

import (
	"context"
	"net/http"

	"github.com/geocoder89/storefront/internal/domain/product"
)

type productEnvelope struct {
	Message string          `json:"message"`
	Product product.Product `json:"product"`
}

func (c *Client) ListProducts(ctx context.Context) ([]product.Product, error) {
	var out struct {
		Product []product.Product `json:"product"`
	}
	err := c.do(ctx, http.MethodGet, "/products", nil, &out)
	return out.Product, err
}

func (c *Client) GetProduct(ctx context.Context, id string) (product.Product, error) {
	var out productEnvelope
	err := c.do(ctx, http.MethodGet, path("products", id), nil, &out)
	return out.Product, err
}

func (c *Client) AddProduct(ctx context.Context, req product.CreateProductRequest) (product.Product, error) {
	var out productEnvelope
	err := c.do(ctx, http.MethodPost, "/addproduct", req, &out)
	return out.Product, err
}

func (c *Client) AddManyProducts(ctx context.Context, ps []product.BulkProduct) ([]product.Product, error) {
	var out struct {
		Products []product.Product `json:"products"`
	}
	err := c.do(ctx, http.MethodPost, "/addmanyproduct", ps, &out)
	return out.Products, err
}

func (c *Client) UpdateProduct(ctx context.Context, id string, req product.UpdateProductRequest) (product.Product, error) {
	var out productEnvelope
	err := c.do(ctx, http.MethodPut, path("updateproduct", id), req, &out)
	return out.Product, err
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, path("deleteproduct", id), nil, nil)
}

func (c *Client) DeleteAllProducts(ctx context.Context) (int64, error) {
	var out struct {
		Result struct {
			DeletedCount int64 `json:"deletedCount"`
		} `json:"result"`
	}
	err := c.do(ctx, http.MethodDelete, "/deleteManyProducts", nil, &out)
	return out.Result.DeletedCount, err
}

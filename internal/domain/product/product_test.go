package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestUpdateProductRequest_Apply(t *testing.T) {
	base := Product{ID: "1", Title: "Lamp", Price: 10, InStock: 3, Rating: 4}

	req := UpdateProductRequest{Price: ptr(12.5), InStock: ptr(0.0)}
	assert.True(t, req.HasChanges())

	got := req.Apply(base)
	assert.Equal(t, "Lamp", got.Title)
	assert.Equal(t, 12.5, got.Price)
	assert.Equal(t, 0.0, got.InStock)
	assert.Equal(t, 4.0, got.Rating)
}

func TestUpdateProductRequest_NoChanges(t *testing.T) {
	assert.False(t, UpdateProductRequest{}.HasChanges())
}

func TestSameListing(t *testing.T) {
	a := Product{Title: "Lamp", Image: "l.png", Category: "home", Description: "d", Price: 10, InStock: 1, Rating: 3}
	b := a
	b.ID = "other"
	b.InCart = true
	assert.True(t, SameListing(a, b))

	b.Rating = 4
	assert.False(t, SameListing(a, b))
}

func TestCreateProductRequest_Product(t *testing.T) {
	req := CreateProductRequest{Title: "T", Description: "D", Category: "C", Image: "I", Price: ptr(10.0), InStock: ptr(0.0), Rating: ptr(5.0)}
	p := req.Product()
	assert.Equal(t, 10.0, p.Price)
	assert.Equal(t, 0.0, p.InStock)
	assert.False(t, p.InCart)
}

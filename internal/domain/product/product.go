package product

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("product not found")
	ErrAlreadyExists = errors.New("product already exists")
	ErrNoChanges     = errors.New("no fields to update")
)

type Product struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Image       string    `json:"image"`
	Price       float64   `json:"price"`
	InStock     float64   `json:"inStock"`
	Rating      float64   `json:"rating"`
	InCart      bool      `json:"inCart"`
	Quantity    float64   `json:"quantity"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateProductRequest uses pointers so that a supplied zero is told apart from a
// missing field.
type CreateProductRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Image       string   `json:"image" binding:"required"`
	Price       *float64 `json:"price" binding:"required,gt=0"`
	InStock     *float64 `json:"inStock" binding:"required,min=0"`
	Rating      *float64 `json:"rating" binding:"required,min=0,max=5"`
	InCart      bool     `json:"inCart"`
	Quantity    float64  `json:"quantity"`
}

func (r CreateProductRequest) Product() Product {
	return Product{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Image:       r.Image,
		Price:       deref(r.Price),
		InStock:     deref(r.InStock),
		Rating:      deref(r.Rating),
		InCart:      r.InCart,
		Quantity:    r.Quantity,
	}
}

// BulkProduct is one element of an addmanyproduct body. Bulk inserts are not
// validated beyond JSON shape.
type BulkProduct struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
	InStock     float64 `json:"inStock"`
	Rating      float64 `json:"rating"`
	InCart      bool    `json:"inCart"`
	Quantity    float64 `json:"quantity"`
}

func (b BulkProduct) Product() Product {
	return Product{
		Title:       b.Title,
		Description: b.Description,
		Category:    b.Category,
		Image:       b.Image,
		Price:       b.Price,
		InStock:     b.InStock,
		Rating:      b.Rating,
		InCart:      b.InCart,
		Quantity:    b.Quantity,
	}
}

type UpdateProductRequest struct {
	Title       *string  `json:"title,omitempty" binding:"omitnil,min=1"`
	Description *string  `json:"description,omitempty" binding:"omitnil,min=1"`
	Category    *string  `json:"category,omitempty" binding:"omitnil,min=1"`
	Image       *string  `json:"image,omitempty" binding:"omitnil,min=1"`
	Price       *float64 `json:"price,omitempty" binding:"omitnil,gt=0"`
	InStock     *float64 `json:"inStock,omitempty" binding:"omitnil,min=0"`
	Rating      *float64 `json:"rating,omitempty" binding:"omitnil,min=0,max=5"`
	InCart      *bool    `json:"inCart,omitempty"`
}

func (r UpdateProductRequest) HasChanges() bool {
	return r.Title != nil || r.Description != nil || r.Category != nil || r.Image != nil ||
		r.Price != nil || r.InStock != nil || r.Rating != nil || r.InCart != nil
}

// Apply copies the present fields onto p.
func (r UpdateProductRequest) Apply(p Product) Product {
	if r.Title != nil {
		p.Title = *r.Title
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Category != nil {
		p.Category = *r.Category
	}
	if r.Image != nil {
		p.Image = *r.Image
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.InStock != nil {
		p.InStock = *r.InStock
	}
	if r.Rating != nil {
		p.Rating = *r.Rating
	}
	if r.InCart != nil {
		p.InCart = *r.InCart
	}
	return p
}

// SameListing reports whether a and b describe the same catalog entry. Duplicate
// creation is detected on this tuple.
func SameListing(a, b Product) bool {
	return a.Title == b.Title &&
		a.Image == b.Image &&
		a.InStock == b.InStock &&
		a.Category == b.Category &&
		a.Price == b.Price &&
		a.Description == b.Description &&
		a.Rating == b.Rating
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

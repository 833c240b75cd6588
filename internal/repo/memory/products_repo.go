package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/storefront/internal/domain/product"
	"github.com/geocoder89/storefront/internal/utils"
)

type ProductsRepo struct {
	mu    sync.RWMutex
	items map[string]product.Product
	order []string // insertion order, for stable listing
	now   func() time.Time
}

func NewProductsRepo() *ProductsRepo {
	return &ProductsRepo{
		items: make(map[string]product.Product),
		now:   time.Now,
	}
}

func (r *ProductsRepo) insertLocked(p product.Product) product.Product {
	now := r.now().UTC()
	p.ID = utils.NewID()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.items[p.ID] = p
	r.order = append(r.order, p.ID)
	return p
}

func (r *ProductsRepo) Create(_ context.Context, p product.Product) (product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if product.SameListing(existing, p) {
			return product.Product{}, product.ErrAlreadyExists
		}
	}
	return r.insertLocked(p), nil
}

func (r *ProductsRepo) InsertMany(_ context.Context, ps []product.Product) ([]product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]product.Product, 0, len(ps))
	for _, p := range ps {
		out = append(out, r.insertLocked(p))
	}
	return out, nil
}

func (r *ProductsRepo) Update(_ context.Context, id string, req product.UpdateProductRequest) (product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return product.Product{}, product.ErrNotFound
	}
	p = req.Apply(p)
	p.UpdatedAt = r.now().UTC()
	r.items[id] = p
	return p, nil
}

func (r *ProductsRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return product.ErrNotFound
	}
	delete(r.items, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *ProductsRepo) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := int64(len(r.items))
	r.items = make(map[string]product.Product)
	r.order = nil
	return n, nil
}

func (r *ProductsRepo) List(_ context.Context) ([]product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]product.Product, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out, nil
}

func (r *ProductsRepo) GetByID(_ context.Context, id string) (product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return product.Product{}, product.ErrNotFound
	}
	return p, nil
}

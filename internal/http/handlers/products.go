package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/geocoder89/storefront/internal/cache"
	"github.com/geocoder89/storefront/internal/config"
	"github.com/geocoder89/storefront/internal/domain/product"
	"github.com/geocoder89/storefront/internal/observability"
	"github.com/geocoder89/storefront/internal/utils"
	"github.com/gin-gonic/gin"
)

type ProductStore interface {
	Create(ctx context.Context, p product.Product) (product.Product, error)
	InsertMany(ctx context.Context, ps []product.Product) ([]product.Product, error)
	Update(ctx context.Context, id string, req product.UpdateProductRequest) (product.Product, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
	List(ctx context.Context) ([]product.Product, error)
	GetByID(ctx context.Context, id string) (product.Product, error)
}

type ProductsHandler struct {
	store ProductStore
	cache cache.Store
	prom  *observability.Prom
	// writes counts catalog invalidations
	writes atomic.Uint64
}

// NewProductsHandler accepts a nil cache, in which case every read hits the store.
func NewProductsHandler(store ProductStore, c cache.Store, prom *observability.Prom) *ProductsHandler {
	return &ProductsHandler{store: store, cache: c, prom: prom}
}

func (h *ProductsHandler) invalidate(ctx context.Context) {
	if h.cache == nil {
		return
	}
	h.writes.Add(1)
	h.cache.DeletePrefix(ctx, utils.CatalogKeyPrefix())
}

// fill caches v read at write generation gen. When a write invalidated the catalog
// in the meantime the entry is removed again so the stale read cannot outlive it.
func (h *ProductsHandler) fill(ctx context.Context, key string, v any, gen uint64) {
	if h.cache == nil {
		return
	}
	cache.SetJSON(ctx, h.cache, key, v)
	if h.writes.Load() != gen {
		h.cache.Delete(ctx, key)
	}
}

func (h *ProductsHandler) AddProduct(ctx *gin.Context) {
	var req product.CreateProductRequest

	if !bindJSONWithMessage(ctx, &req, "All fields are required") {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	p, err := h.store.Create(cctx, req.Product())
	if err != nil {
		if errors.Is(err, product.ErrAlreadyExists) {
			RespondConflict(ctx, "product_exists", "Product already exists")
			return
		}
		respondStoreFailure(ctx, "products.create", err)
		return
	}

	h.invalidate(cctx)

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Product added successfully",
		"product": p,
	})
}

func (h *ProductsHandler) AddManyProducts(ctx *gin.Context) {
	var req []product.BulkProduct

	if !bindJSONWithMessage(ctx, &req, "Invalid product data") {
		return
	}
	if len(req) == 0 {
		RespondBadRequest(ctx, "Invalid product data", nil)
		return
	}

	ps := make([]product.Product, 0, len(req))
	for _, b := range req {
		ps = append(ps, b.Product())
	}

	cctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	created, err := h.store.InsertMany(cctx, ps)
	if err != nil {
		respondStoreFailure(ctx, "products.insert_many", err)
		return
	}

	h.invalidate(cctx)

	ctx.JSON(http.StatusCreated, gin.H{
		"message":  "Products added successfully",
		"products": created,
	})
}

func (h *ProductsHandler) UpdateProduct(ctx *gin.Context) {
	var req product.UpdateProductRequest

	if !BindJSON(ctx, &req) {
		return
	}
	if !req.HasChanges() {
		RespondBadRequest(ctx, "Provide at least one field to update", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	p, err := h.store.Update(cctx, ctx.Param("_id"), req)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			RespondNotFound(ctx, "Product not found")
			return
		}
		respondStoreFailure(ctx, "products.update", err)
		return
	}

	h.invalidate(cctx)

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"product": p,
	})
}

func (h *ProductsHandler) DeleteProduct(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.store.Delete(cctx, ctx.Param("_id")); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			RespondNotFound(ctx, "Product not found")
			return
		}
		respondStoreFailure(ctx, "products.delete", err)
		return
	}

	h.invalidate(cctx)

	ctx.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

func (h *ProductsHandler) DeleteAllProducts(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	n, err := h.store.DeleteAll(cctx)
	if err != nil {
		respondStoreFailure(ctx, "products.delete_all", err)
		return
	}

	h.invalidate(cctx)

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Products deleted successfully",
		"result":  gin.H{"deletedCount": n},
	})
}

func (h *ProductsHandler) ListProducts(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	key := utils.BuildProductsListCacheKey()

	var ps []product.Product
	hit := cache.GetJSON(cctx, h.cache, key, &ps)
	h.prom.ObserveCache(hit)

	if !hit {
		gen := h.writes.Load()
		var err error
		ps, err = h.store.List(cctx)
		if err != nil {
			respondStoreFailure(ctx, "products.list", err)
			return
		}
		if len(ps) > 0 {
			h.fill(cctx, key, ps, gen)
		}
	}

	if len(ps) == 0 {
		RespondNotFound(ctx, "Products not found no products in the DB")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"product": ps})
}

func (h *ProductsHandler) GetProduct(ctx *gin.Context) {
	id := ctx.Param("_id")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	key := utils.BuildProductCacheKey(id)

	var p product.Product
	hit := cache.GetJSON(cctx, h.cache, key, &p)
	h.prom.ObserveCache(hit)

	if !hit {
		gen := h.writes.Load()
		var err error
		p, err = h.store.GetByID(cctx, id)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				RespondNotFound(ctx, "Product not found")
				return
			}
			respondStoreFailure(ctx, "products.get_by_id", err)
			return
		}
		h.fill(cctx, key, p, gen)
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"product": p})
}

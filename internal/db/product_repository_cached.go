package db

import (
	"context"
	"fmt"
	"log"

	"github.com/cafehub/coffeeshop-go/internal/cache"
	"github.com/cafehub/coffeeshop-go/internal/models"
	"github.com/redis/go-redis/v9"
)

// CachedProductRepository wraps ProductRepository with a Redis
// cache-aside layer for reads. Every write path invalidates.
type CachedProductRepository struct {
	repo  *ProductRepository
	cache *cache.RedisCache
}

func NewCachedProductRepository(repo *ProductRepository, cache *cache.RedisCache) *CachedProductRepository {
	return &CachedProductRepository{
		repo:  repo,
		cache: cache,
	}
}

// Cache key helpers
func productKey(id int) string {
	return fmt.Sprintf("product:%d", id)
}

func allProductsKey() string {
	return "products:all"
}

// GetAll returns all products (with caching)
func (r *CachedProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	cacheKey := allProductsKey()

	var products []models.Product
	err := r.cache.Get(ctx, cacheKey, &products)
	if err == nil {
		log.Println("📦 Cache HIT: all products")
		return products, nil
	}

	if err != redis.Nil {
		log.Printf("⚠️ Cache error: %v", err)
	}

	products, err = r.repo.GetAll()
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, cacheKey, products); err != nil {
		log.Printf("⚠️ Failed to cache products: %v", err)
	}

	return products, nil
}

// GetByID returns a single product (with caching)
func (r *CachedProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	cacheKey := productKey(id)

	var product models.Product
	err := r.cache.Get(ctx, cacheKey, &product)
	if err == nil {
		log.Printf("📦 Cache HIT: product %d", id)
		return &product, nil
	}

	if err != redis.Nil {
		log.Printf("⚠️ Cache error: %v", err)
	}

	p, err := r.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if p == nil {
		return nil, nil
	}

	if err := r.cache.Set(ctx, cacheKey, p); err != nil {
		log.Printf("⚠️ Failed to cache product: %v", err)
	}

	return p, nil
}

// GetByCategory bypasses the cache; category listings change with every
// product write and are not hot enough to be worth invalidation keys.
func (r *CachedProductRepository) GetByCategory(categoryID int) ([]models.Product, error) {
	return r.repo.GetByCategory(categoryID)
}

// Create inserts a new product and invalidates the list cache
func (r *CachedProductRepository) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	product, err := r.repo.Create(req)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Delete(ctx, allProductsKey()); err != nil {
		log.Printf("⚠️ Failed to invalidate cache: %v", err)
	}

	return product, nil
}

// Update replaces a product and invalidates its cache entries
func (r *CachedProductRepository) Update(ctx context.Context, id int, req models.CreateProductRequest) (*models.Product, error) {
	product, err := r.repo.Update(id, req)
	if err != nil {
		return nil, err
	}

	r.Invalidate(ctx, id)
	return product, nil
}

// Delete removes a product and invalidates its cache entries
func (r *CachedProductRepository) Delete(ctx context.Context, id int) error {
	if err := r.repo.Delete(id); err != nil {
		return err
	}

	r.Invalidate(ctx, id)
	return nil
}

// Invalidate drops the cache entries for one product. Called by the
// inventory reconciler after a stock change so stale stock counts are
// not served.
func (r *CachedProductRepository) Invalidate(ctx context.Context, id int) {
	if err := r.cache.Delete(ctx, productKey(id)); err != nil {
		log.Printf("⚠️ Failed to invalidate product %d: %v", id, err)
	}
	if err := r.cache.Delete(ctx, allProductsKey()); err != nil {
		log.Printf("⚠️ Failed to invalidate product list: %v", err)
	}
}

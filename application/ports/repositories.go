// Package ports defines the interfaces the application layer consumes.
// Implementations live under infrastructure and pkg.
package ports

import (
	"context"
	"time"

	"inventory-backend/domain/product"
	"inventory-backend/pkg/common"
)

// ProductRepository is the persistence contract for products.
type ProductRepository interface {
	// List returns the page of products selected by params.
	List(ctx context.Context, params common.ListParams) ([]product.Product, error)

	// Count returns the number of products matching the params filter,
	// ignoring pagination. List and Count are independent and safe to
	// run concurrently.
	Count(ctx context.Context, params common.ListParams) (int, error)

	// GetByID returns the product or a not-found error.
	GetByID(ctx context.Context, id string) (*product.Product, error)

	// Create persists a new product.
	Create(ctx context.Context, p *product.Product) error

	// Update applies a partial update and returns the updated product,
	// or a not-found error when the id does not exist.
	Update(ctx context.Context, id string, upd product.Update) (*product.Product, error)

	// Delete removes the product or returns a not-found error.
	Delete(ctx context.Context, id string) error

	// KPI aggregates the whole collection; all metrics are zero when the
	// collection is empty.
	KPI(ctx context.Context) (*product.KPI, error)
}

// ResponseCache is the contract the HTTP layer uses to cache read
// responses and invalidate them on writes.
type ResponseCache interface {
	Get(key string) (body []byte, storedAt time.Time, ok bool)
	Set(key string, body []byte, ttl time.Duration)
	DeleteByPrefix(prefix string) int
	Len() int
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"inventory-backend/domain/product"
	"inventory-backend/pkg/common"
	apperrors "inventory-backend/pkg/errors"
)

// sortColumns maps API sort fields to table columns. The whitelist keeps
// user input out of the ORDER BY clause.
var sortColumns = map[string]string{
	"name":      "name",
	"price":     "price",
	"quantity":  "quantity",
	"createdAt": "created_at",
}

// ProductRepository implements ports.ProductRepository on SQLite.
type ProductRepository struct {
	db      *bun.DB
	timeout time.Duration
}

// NewProductRepository creates a product repository. Every store call is
// bounded by timeout so a slow database surfaces as an error instead of
// stalling the request.
func NewProductRepository(db *bun.DB, timeout time.Duration) *ProductRepository {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ProductRepository{db: db, timeout: timeout}
}

func (r *ProductRepository) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// applySearch adds the case-insensitive substring filter over name OR
// image. An empty search matches everything.
func applySearch(q *bun.SelectQuery, search string) *bun.SelectQuery {
	if search == "" {
		return q
	}
	pattern := "%" + strings.ToLower(search) + "%"
	return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Where("LOWER(name) LIKE ?", pattern).
			WhereOr("LOWER(image) LIKE ?", pattern)
	})
}

// orderClause builds the direction-signed single-column sort expression.
func orderClause(params common.ListParams) string {
	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = sortColumns[common.DefaultSortBy]
	}
	direction := "DESC"
	if params.SortOrder == "asc" {
		direction = "ASC"
	}
	return column + " " + direction
}

// List returns the requested page of products.
func (r *ProductRepository) List(ctx context.Context, params common.ListParams) ([]product.Product, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	products := make([]product.Product, 0, params.Limit)
	q := r.db.NewSelect().Model(&products)
	q = applySearch(q, params.Search)
	q = q.Order(orderClause(params)).
		Limit(params.Limit).
		Offset(params.Offset())

	if err := q.Scan(ctx); err != nil {
		return nil, r.wrap("list products", err)
	}

	for i := range products {
		products[i].ComputeTotals()
	}

	return products, nil
}

// Count returns the total number of products matching the filter.
func (r *ProductRepository) Count(ctx context.Context, params common.ListParams) (int, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	q := r.db.NewSelect().Model((*product.Product)(nil))
	q = applySearch(q, params.Search)

	count, err := q.Count(ctx)
	if err != nil {
		return 0, r.wrap("count products", err)
	}

	return count, nil
}

// GetByID returns a single product or a not-found error.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	p := new(product.Product)
	err := r.db.NewSelect().
		Model(p).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("Product")
		}
		return nil, r.wrap("get product", err)
	}

	p.ComputeTotals()
	return p, nil
}

// Create persists a new product.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	if _, err := r.db.NewInsert().Model(p).Exec(ctx); err != nil {
		return r.wrap("create product", err)
	}

	p.ComputeTotals()
	return nil
}

// Update applies the non-nil fields of upd and returns the updated row.
func (r *ProductRepository) Update(ctx context.Context, id string, upd product.Update) (*product.Product, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	q := r.db.NewUpdate().
		Model((*product.Product)(nil)).
		Where("id = ?", id).
		Set("updated_at = ?", time.Now())

	if upd.Name != nil {
		q = q.Set("name = ?", strings.TrimSpace(*upd.Name))
	}
	if upd.Price != nil {
		q = q.Set("price = ?", *upd.Price)
	}
	if upd.Quantity != nil {
		q = q.Set("quantity = ?", *upd.Quantity)
	}
	if upd.Image != nil {
		q = q.Set("image = ?", *upd.Image)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, r.wrap("update product", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, r.wrap("update product", err)
	}
	if affected == 0 {
		return nil, apperrors.NewNotFoundError("Product")
	}

	return r.GetByID(ctx, id)
}

// Delete removes a product by id.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	res, err := r.db.NewDelete().
		Model((*product.Product)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return r.wrap("delete product", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return r.wrap("delete product", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("Product")
	}

	return nil
}

// KPI aggregates the collection in a single query. COALESCE keeps every
// metric at zero for an empty table instead of NULL.
func (r *ProductRepository) KPI(ctx context.Context) (*product.KPI, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	k := new(product.KPI)
	err := r.db.NewSelect().
		Model((*product.Product)(nil)).
		ColumnExpr("COUNT(*)").
		ColumnExpr("COALESCE(SUM(price * quantity), 0)").
		ColumnExpr("COALESCE(SUM(quantity), 0)").
		ColumnExpr("COALESCE(AVG(price), 0)").
		ColumnExpr("COALESCE(AVG(quantity), 0)").
		Scan(ctx, &k.TotalProducts, &k.TotalValue, &k.TotalUnits, &k.AveragePrice, &k.AverageQuantity)
	if err != nil {
		return nil, r.wrap("aggregate KPIs", err)
	}

	return k, nil
}

func (r *ProductRepository) wrap(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError("product store timed out").WithCause(err)
	}
	return apperrors.NewDatabaseError("failed to "+op, err)
}

// Package services contains the application services sitting between the
// HTTP layer and the repositories.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"inventory-backend/application/ports"
	"inventory-backend/domain/product"
	"inventory-backend/pkg/common"
	apperrors "inventory-backend/pkg/errors"
	"inventory-backend/pkg/utils"
)

// ProductService implements the product use cases.
type ProductService struct {
	repo   ports.ProductRepository
	logger *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(repo ports.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		logger: logger,
	}
}

// ListProducts returns one page of products plus the total match count.
// The page query and the count query are independent and run
// concurrently; the envelope is built only after both complete.
func (s *ProductService) ListProducts(ctx context.Context, params common.ListParams) ([]product.Product, int, error) {
	var (
		products []product.Product
		total    int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.repo.List(gctx, params)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, params)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// GetProduct returns a single product by id.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// CreateProduct assigns identity and timestamps and persists the product.
func (s *ProductService) CreateProduct(ctx context.Context, p *product.Product) error {
	now := time.Now()
	p.ID = uuid.New().String()
	p.Name = strings.TrimSpace(p.Name)
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error("Failed to create product",
			zap.String("productID", p.ID),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// UpdateProduct applies a partial update to an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, upd product.Update) (*product.Product, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.logger.Error("Failed to update product",
				zap.String("productID", id),
				zap.Error(err),
			)
		}
		return nil, err
	}

	return updated, nil
}

// DeleteProduct removes a product by id.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// KPIs returns the aggregate metrics, rounded to 2 decimal places.
func (s *ProductService) KPIs(ctx context.Context) (*product.KPI, error) {
	k, err := s.repo.KPI(ctx)
	if err != nil {
		s.logger.Error("Failed to aggregate KPIs", zap.Error(err))
		return nil, err
	}

	k.TotalValue = utils.Round2(k.TotalValue)
	k.AveragePrice = utils.Round2(k.AveragePrice)
	k.AverageQuantity = utils.Round2(k.AverageQuantity)

	return k, nil
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewValidationError("Invalid product ID format")
	}
	return nil
}

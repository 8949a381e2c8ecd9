package di

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"inventory-backend/application/ports"
	"inventory-backend/application/services"
	"inventory-backend/infrastructure/config"
	"inventory-backend/infrastructure/persistence/sqlite"
	"inventory-backend/pkg/cache"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideDB opens the SQLite database and runs the schema migration
func ProvideDB(ctx context.Context, cfg *config.Config) (*bun.DB, error) {
	db, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := sqlite.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// ProvideProductRepository creates the product store accessor
func ProvideProductRepository(db *bun.DB, cfg *config.Config) ports.ProductRepository {
	return sqlite.NewProductRepository(db, time.Duration(cfg.StoreTimeoutSeconds)*time.Second)
}

// ProvideProductService creates the product application service
func ProvideProductService(repo ports.ProductRepository, logger *zap.Logger) *services.ProductService {
	return services.NewProductService(repo, logger)
}

// ProvideResponseCache creates the process-wide response cache
func ProvideResponseCache(cfg *config.Config) *cache.Cache {
	return cache.New(
		time.Duration(cfg.CacheTTL)*time.Second,
		time.Duration(cfg.CacheSweepInterval)*time.Second,
	)
}

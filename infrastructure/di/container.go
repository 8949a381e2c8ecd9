// Package di assembles the application's dependencies.
package di

import (
	"context"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"inventory-backend/application/ports"
	"inventory-backend/application/services"
	"inventory-backend/infrastructure/config"
	"inventory-backend/pkg/cache"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	DB             *bun.DB
	ProductRepo    ports.ProductRepository
	ProductService *services.ProductService
	Cache          *cache.Cache
}

// Shutdown releases everything the container owns: the cache sweeper,
// the database handle, and the logger's buffers.
func (c *Container) Shutdown(ctx context.Context) error {
	c.Cache.Stop()

	if err := c.DB.Close(); err != nil {
		return err
	}

	_ = c.Logger.Sync()
	return nil
}

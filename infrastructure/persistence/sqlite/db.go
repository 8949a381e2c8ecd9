// Package sqlite implements the product store on SQLite through bun.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"inventory-backend/domain/product"
)

// Open opens (or creates) the SQLite database at path and returns a bun
// handle. Use ":memory:" for an ephemeral database.
func Open(path string) (*bun.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	if path == ":memory:" {
		dsn = "file::memory:?cache=shared"
	}

	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	return db, nil
}

// Migrate creates the products table and its indexes if they do not
// exist yet.
func Migrate(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*product.Product)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create products table: %w", err)
	}

	indexes := []struct {
		name    string
		columns []string
	}{
		{"idx_products_name", []string{"name"}},
		{"idx_products_price", []string{"price"}},
		{"idx_products_created_at", []string{"created_at"}},
		{"idx_products_price_quantity", []string{"price", "quantity"}},
	}

	for _, idx := range indexes {
		if _, err := db.NewCreateIndex().
			Model((*product.Product)(nil)).
			Index(idx.name).
			Column(idx.columns...).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}

	return nil
}

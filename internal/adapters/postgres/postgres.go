// Package postgres provides the PostgreSQL-backed step store and product
// resolver used when scripts live in the shared database instead of the
// in-process prototype store.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // database/sql driver
)

// Persistence owns the database connection and exposes the repositories.
type Persistence struct {
	db       *sql.DB
	logger   *slog.Logger
	steps    *StepRepository
	products *ProductRepository
}

// New connects to PostgreSQL, runs migrations and wires the repositories.
func New(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &Persistence{
		db:       db,
		logger:   logger,
		steps:    NewStepRepository(db, logger),
		products: NewProductRepository(db, logger),
	}

	if err := p.migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return p, nil
}

// Steps returns the step repository.
func (p *Persistence) Steps() *StepRepository {
	return p.steps
}

// Products returns the product repository.
func (p *Persistence) Products() *ProductRepository {
	return p.products
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (p *Persistence) Close() error {
	if p.db == nil {
		return nil
	}
	if err := p.db.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}

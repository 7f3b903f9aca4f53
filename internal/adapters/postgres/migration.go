package postgres

import (
	"context"
	"fmt"
	"sort"
)

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE products (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				script_id VARCHAR(255) NOT NULL,
				attendance_types TEXT[] NOT NULL,
				person_types TEXT[] NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT true
			);

			CREATE TABLE steps (
				id VARCHAR(255) PRIMARY KEY,
				title VARCHAR(255) NOT NULL,
				content TEXT NOT NULL DEFAULT '',
				display_order INT NOT NULL DEFAULT 0,
				product_id VARCHAR(255),
				tabulation_name VARCHAR(255),
				tabulation_description TEXT
			);

			CREATE TABLE step_buttons (
				step_id VARCHAR(255) NOT NULL REFERENCES steps(id) ON DELETE CASCADE,
				id VARCHAR(255) NOT NULL,
				label VARCHAR(255) NOT NULL,
				next_step_id VARCHAR(255),
				display_order INT NOT NULL DEFAULT 0,
				is_primary BOOLEAN NOT NULL DEFAULT false,
				PRIMARY KEY (step_id, id)
			);

			CREATE INDEX idx_steps_product_id ON steps(product_id);
			CREATE INDEX idx_steps_title ON steps(LOWER(title));
		`,
	}
}

// migrate applies pending schema migrations in version order, tracking the
// applied version in schema_migrations.
func (p *Persistence) migrate(ctx context.Context) error {
	const createMigrationsSQL = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`
	if _, err := p.db.ExecContext(ctx, createMigrationsSQL); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	var current int
	row := p.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`)
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	all := migrations()
	versions := make([]int, 0, len(all))
	for v := range all {
		versions = append(versions, v)
	}
	sort.Ints(versions)

	for _, v := range versions {
		if v <= current {
			continue
		}
		p.logger.InfoContext(ctx, "applying schema migration", "version", v)

		tx, err := p.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", v, err)
		}
		if _, err := tx.ExecContext(ctx, all[v]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to apply migration %d: %w", v, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, v); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", v, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", v, err)
		}
	}
	return nil
}

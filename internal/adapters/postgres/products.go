package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/callguide/roteiro/pkg/domain"
)

// ProductRepository implements ports.ProductResolver over the products table.
type ProductRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db *sql.DB, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{db: db, logger: logger}
}

// GetProductByID resolves a product.
func (r *ProductRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT id, name, script_id, attendance_types, person_types, is_active
		FROM products
		WHERE id = $1
	`

	var (
		p          domain.Product
		attendance pq.StringArray
		persons    pq.StringArray
	)
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.Name, &p.ScriptID, &attendance, &persons, &p.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	p.AttendanceTypes = toAttendanceTypes(attendance)
	p.PersonTypes = toPersonTypes(persons)
	return &p, nil
}

// ListProducts returns all products ordered by name.
func (r *ProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, name, script_id, attendance_types, person_types, is_active
		FROM products
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", closeErr)
		}
	}()

	var products []domain.Product
	for rows.Next() {
		var (
			p          domain.Product
			attendance pq.StringArray
			persons    pq.StringArray
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.ScriptID, &attendance, &persons, &p.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.AttendanceTypes = toAttendanceTypes(attendance)
		p.PersonTypes = toPersonTypes(persons)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

// SaveProduct upserts a product.
func (r *ProductRepository) SaveProduct(ctx context.Context, p domain.Product) error {
	query := `
		INSERT INTO products (id, name, script_id, attendance_types, person_types, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			script_id = EXCLUDED.script_id,
			attendance_types = EXCLUDED.attendance_types,
			person_types = EXCLUDED.person_types,
			is_active = EXCLUDED.is_active
	`

	attendance := make(pq.StringArray, 0, len(p.AttendanceTypes))
	for _, a := range p.AttendanceTypes {
		attendance = append(attendance, string(a))
	}
	persons := make(pq.StringArray, 0, len(p.PersonTypes))
	for _, pt := range p.PersonTypes {
		persons = append(persons, string(pt))
	}

	if _, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.ScriptID, attendance, persons, p.IsActive); err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

func toAttendanceTypes(values pq.StringArray) []domain.AttendanceType {
	out := make([]domain.AttendanceType, 0, len(values))
	for _, v := range values {
		out = append(out, domain.AttendanceType(v))
	}
	return out
}

func toPersonTypes(values pq.StringArray) []domain.PersonType {
	out := make([]domain.PersonType, 0, len(values))
	for _, v := range values {
		out = append(out, domain.PersonType(v))
	}
	return out
}

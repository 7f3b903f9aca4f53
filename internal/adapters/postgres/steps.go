package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/callguide/roteiro/pkg/domain"
)

// StepRepository implements ports.StepStore over the steps and
// step_buttons tables.
type StepRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStepRepository creates a new step repository.
func NewStepRepository(db *sql.DB, logger *slog.Logger) *StepRepository {
	return &StepRepository{db: db, logger: logger}
}

// GetStepByID retrieves a step with its buttons. A non-empty productID
// restricts the match to steps owned by that product (steps without an
// owner remain visible to every product).
func (r *StepRepository) GetStepByID(ctx context.Context, id, productID string) (*domain.Step, error) {
	query := `
		SELECT id, title, content, display_order, product_id, tabulation_name, tabulation_description
		FROM steps
		WHERE id = $1 AND ($2 = '' OR product_id IS NULL OR product_id = '' OR product_id = $2)
	`

	step, err := r.scanStep(r.db.QueryRowContext(ctx, query, id, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrStepNotFound
		}
		return nil, fmt.Errorf("failed to query step: %w", err)
	}

	buttons, err := r.buttonsForStep(ctx, step.ID)
	if err != nil {
		return nil, err
	}
	step.Buttons = buttons
	return step, nil
}

// ListSteps returns all steps with their buttons, ordered for display.
func (r *StepRepository) ListSteps(ctx context.Context) ([]domain.Step, error) {
	query := `
		SELECT id, title, content, display_order, product_id, tabulation_name, tabulation_description
		FROM steps
		ORDER BY display_order, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query steps: %w", err)
	}
	defer r.closeRows(ctx, rows)

	var steps []domain.Step
	for rows.Next() {
		step, err := r.scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		steps = append(steps, *step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating steps: %w", err)
	}

	for i := range steps {
		buttons, err := r.buttonsForStep(ctx, steps[i].ID)
		if err != nil {
			return nil, err
		}
		steps[i].Buttons = buttons
	}
	return steps, nil
}

// SaveStep upserts a step and replaces its buttons in one transaction.
func (r *StepRepository) SaveStep(ctx context.Context, step domain.Step) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	var tabName, tabDesc sql.NullString
	if step.Tabulation != nil {
		tabName = sql.NullString{String: step.Tabulation.Name, Valid: true}
		tabDesc = sql.NullString{String: step.Tabulation.Description, Valid: true}
	}

	upsert := `
		INSERT INTO steps (id, title, content, display_order, product_id, tabulation_name, tabulation_description)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			display_order = EXCLUDED.display_order,
			product_id = EXCLUDED.product_id,
			tabulation_name = EXCLUDED.tabulation_name,
			tabulation_description = EXCLUDED.tabulation_description
	`
	if _, err := tx.ExecContext(ctx, upsert,
		step.ID, step.Title, step.Content, step.Order, step.ProductID, tabName, tabDesc,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to upsert step: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM step_buttons WHERE step_id = $1`, step.ID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to clear step buttons: %w", err)
	}

	for _, b := range step.Buttons {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO step_buttons (step_id, id, label, next_step_id, display_order, is_primary)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		`, step.ID, b.ID, b.Label, b.NextStepID, b.Order, b.Primary); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert button %s: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit step: %w", err)
	}
	return nil
}

func (r *StepRepository) buttonsForStep(ctx context.Context, stepID string) ([]domain.Button, error) {
	query := `
		SELECT id, label, next_step_id, display_order, is_primary
		FROM step_buttons
		WHERE step_id = $1
		ORDER BY display_order, id
	`

	rows, err := r.db.QueryContext(ctx, query, stepID)
	if err != nil {
		return nil, fmt.Errorf("failed to query step buttons: %w", err)
	}
	defer r.closeRows(ctx, rows)

	var buttons []domain.Button
	for rows.Next() {
		var (
			b    domain.Button
			next sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.Label, &next, &b.Order, &b.Primary); err != nil {
			return nil, fmt.Errorf("failed to scan button: %w", err)
		}
		// NULL next_step_id is the terminal transition, kept as "".
		b.NextStepID = next.String
		buttons = append(buttons, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating buttons: %w", err)
	}
	return buttons, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *StepRepository) scanStep(row rowScanner) (*domain.Step, error) {
	var (
		step             domain.Step
		productID        sql.NullString
		tabName, tabDesc sql.NullString
	)
	err := row.Scan(&step.ID, &step.Title, &step.Content, &step.Order, &productID, &tabName, &tabDesc)
	if err != nil {
		return nil, err
	}
	step.ProductID = productID.String
	if tabName.Valid {
		step.Tabulation = &domain.TabulationInfo{
			Name:        tabName.String,
			Description: tabDesc.String,
		}
	}
	return &step, nil
}

func (r *StepRepository) closeRows(ctx context.Context, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
	}
}

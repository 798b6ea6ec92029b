// Package steps stores the ordered steps of a checklist.
package steps

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/you-kimono/checkilists/internal/common"
	"github.com/you-kimono/checkilists/internal/dbx"
	"github.com/you-kimono/checkilists/internal/server/models"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, step *models.Step) (*models.Step, error) {
	query :=
		`INSERT INTO steps (checklist_id, text, description, position, completed)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		step.ChecklistID, step.Text, step.Description, step.Order, step.Completed).
		Scan(&step.ID, dbx.Timestamp(&step.CreatedAt), dbx.Timestamp(&step.UpdatedAt))

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return step, nil
}

// Get finds a step only when it belongs to checklistID.
func (r *SQLRepository) Get(ctx context.Context, stepID, checklistID int64) (*models.Step, error) {
	query :=
		`SELECT id, checklist_id, text, description, position, completed, created_at, updated_at FROM steps
		 WHERE id = $1 AND checklist_id = $2
		 `

	step := &models.Step{}
	err := r.db.QueryRowContext(ctx, query, stepID, checklistID).Scan(
		&step.ID, &step.ChecklistID, &step.Text, &step.Description, &step.Order, &step.Completed,
		dbx.Timestamp(&step.CreatedAt), dbx.Timestamp(&step.UpdatedAt),
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return step, nil
}

// ListByChecklist returns the steps of one checklist by ascending order, ties
// broken by id.
func (r *SQLRepository) ListByChecklist(ctx context.Context, checklistID int64) ([]*models.Step, error) {
	query :=
		`SELECT id, checklist_id, text, description, position, completed, created_at, updated_at FROM steps
		 WHERE checklist_id = $1
		 ORDER BY position, id
		 `

	return r.list(ctx, query, checklistID)
}

// ListByOwner returns the steps of all checklists owned by ownerID, grouped
// by checklist and ordered within each group.
func (r *SQLRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Step, error) {
	query :=
		`SELECT s.id, s.checklist_id, s.text, s.description, s.position, s.completed, s.created_at, s.updated_at
		 FROM steps s
		 JOIN checklists c ON c.id = s.checklist_id
		 WHERE c.owner_id = $1
		 ORDER BY s.checklist_id, s.position, s.id
		 `

	return r.list(ctx, query, ownerID)
}

func (r *SQLRepository) list(ctx context.Context, query string, arg any) ([]*models.Step, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to select steps: %w", err)
	}
	defer rows.Close()

	result := []*models.Step{}
	for rows.Next() {
		var item models.Step
		if err := rows.Scan(
			&item.ID, &item.ChecklistID, &item.Text, &item.Description, &item.Order, &item.Completed,
			dbx.Timestamp(&item.CreatedAt), dbx.Timestamp(&item.UpdatedAt),
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update overwrites text, description, order and completion of the step
// identified by (ID, ChecklistID).
func (r *SQLRepository) Update(ctx context.Context, step *models.Step) (*models.Step, error) {
	query :=
		`UPDATE steps SET text = $1, description = $2, position = $3, completed = $4, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $5 AND checklist_id = $6
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		step.Text, step.Description, step.Order, step.Completed, step.ID, step.ChecklistID).
		Scan(dbx.Timestamp(&step.CreatedAt), dbx.Timestamp(&step.UpdatedAt))

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return step, nil
}

func (r *SQLRepository) Delete(ctx context.Context, stepID, checklistID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM steps WHERE id = $1 AND checklist_id = $2`, stepID, checklistID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *SQLRepository) DeleteByChecklist(ctx context.Context, checklistID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM steps WHERE checklist_id = $1`, checklistID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Package checklists stores checklist records. Every query carries the owner
// predicate, so a checklist of another account is indistinguishable from a
// missing one and surfaces as common.ErrorNotFound.
package checklists

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

func (r *SQLRepository) Create(ctx context.Context, checklist *models.Checklist) (*models.Checklist, error) {
	query :=
		`INSERT INTO checklists (title, description, owner_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, checklist.Title, checklist.Description, checklist.OwnerID).
		Scan(&checklist.ID, dbx.Timestamp(&checklist.CreatedAt), dbx.Timestamp(&checklist.UpdatedAt))

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return checklist, nil
}

func (r *SQLRepository) GetOwned(ctx context.Context, id, ownerID int64) (*models.Checklist, error) {
	query :=
		`SELECT id, title, description, owner_id, created_at, updated_at FROM checklists
		 WHERE id = $1 AND owner_id = $2
		 `

	checklist := &models.Checklist{}
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&checklist.ID, &checklist.Title, &checklist.Description, &checklist.OwnerID,
		dbx.Timestamp(&checklist.CreatedAt), dbx.Timestamp(&checklist.UpdatedAt),
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return checklist, nil
}

// ListOwned returns the owner's checklists by ascending id, without steps.
func (r *SQLRepository) ListOwned(ctx context.Context, ownerID int64) ([]*models.Checklist, error) {
	query :=
		`SELECT id, title, description, owner_id, created_at, updated_at FROM checklists
		 WHERE owner_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select checklists: %w", err)
	}
	defer rows.Close()

	result := []*models.Checklist{}
	for rows.Next() {
		var item models.Checklist
		if err := rows.Scan(
			&item.ID, &item.Title, &item.Description, &item.OwnerID,
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

// Update overwrites title and description of the checklist identified by
// (ID, OwnerID). ID and OwnerID themselves never change.
func (r *SQLRepository) Update(ctx context.Context, checklist *models.Checklist) (*models.Checklist, error) {
	query :=
		`UPDATE checklists SET title = $1, description = $2, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $3 AND owner_id = $4
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, checklist.Title, checklist.Description, checklist.ID, checklist.OwnerID).
		Scan(dbx.Timestamp(&checklist.CreatedAt), dbx.Timestamp(&checklist.UpdatedAt))

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return checklist, nil
}

func (r *SQLRepository) Delete(ctx context.Context, id, ownerID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM checklists WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

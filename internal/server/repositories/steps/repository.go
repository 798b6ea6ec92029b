package steps

import (
	"context"

	"github.com/you-kimono/checkilists/internal/server/models"
)

// Repository addresses steps within a checklist. Checklist ownership is
// checked by the caller before any of these methods run.
type Repository interface {
	Create(ctx context.Context, step *models.Step) (*models.Step, error)
	Get(ctx context.Context, stepID, checklistID int64) (*models.Step, error)
	ListByChecklist(ctx context.Context, checklistID int64) ([]*models.Step, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Step, error)
	Update(ctx context.Context, step *models.Step) (*models.Step, error)
	Delete(ctx context.Context, stepID, checklistID int64) error
	DeleteByChecklist(ctx context.Context, checklistID int64) error
}

package checklists

import (
	"context"

	"github.com/you-kimono/checkilists/internal/server/models"
)

// Repository addresses checklists by (id, owner) on every read and write.
type Repository interface {
	Create(ctx context.Context, checklist *models.Checklist) (*models.Checklist, error)
	GetOwned(ctx context.Context, id, ownerID int64) (*models.Checklist, error)
	ListOwned(ctx context.Context, ownerID int64) ([]*models.Checklist, error)
	Update(ctx context.Context, checklist *models.Checklist) (*models.Checklist, error)
	Delete(ctx context.Context, id, ownerID int64) error
}

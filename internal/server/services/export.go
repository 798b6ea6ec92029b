package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/you-kimono/checkilists/internal/common"
	"github.com/you-kimono/checkilists/internal/logging"
	"github.com/you-kimono/checkilists/internal/server/models"
)

// ObjectStorage keeps exported documents and hands out time-limited links.
type ObjectStorage interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ChecklistReader returns an owned checklist with its steps.
type ChecklistReader interface {
	GetChecklist(ctx context.Context, ownerEmail string, id int64) (*models.Checklist, error)
}

// Export describes a stored checklist document.
type Export struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}

type exportStep struct {
	ID          int64  `json:"id"`
	Text        string `json:"text"`
	Description string `json:"description"`
	Order       int    `json:"order"`
	Completed   bool   `json:"completed"`
}

type exportDocument struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	ExportedAt  time.Time    `json:"exported_at"`
	Steps       []exportStep `json:"steps"`
}

type ExportService struct {
	checklists ChecklistReader
	storage    ObjectStorage
	linkTTL    time.Duration
	logger     logging.Logger
	now        func() time.Time
}

func NewExportService(checklists ChecklistReader, storage ObjectStorage, linkTTL time.Duration, logger logging.Logger) *ExportService {
	return &ExportService{
		checklists: checklists,
		storage:    storage,
		linkTTL:    linkTTL,
		logger:     logger.With("module", "export"),
		now:        time.Now,
	}
}

// ExportKey is the object key for a new export of an account's checklist.
func ExportKey(accountID int64) string {
	return fmt.Sprintf("exports/%d/%v.json", accountID, uuid.New())
}

// Export writes the owned checklist with its steps as a JSON document and
// returns a presigned download link. Ownership failures come back exactly as
// GetChecklist reports them.
func (s *ExportService) Export(ctx context.Context, ownerEmail string, checklistID int64) (*Export, error) {
	checklist, err := s.checklists.GetChecklist(ctx, ownerEmail, checklistID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	doc := exportDocument{
		ID:          checklist.ID,
		Title:       checklist.Title,
		Description: checklist.Description,
		CreatedAt:   checklist.CreatedAt,
		UpdatedAt:   checklist.UpdatedAt,
		ExportedAt:  now,
		Steps:       make([]exportStep, 0, len(checklist.Steps)),
	}
	for _, st := range checklist.Steps {
		doc.Steps = append(doc.Steps, exportStep{
			ID:          st.ID,
			Text:        st.Text,
			Description: st.Description,
			Order:       st.Order,
			Completed:   st.Completed,
		})
	}

	body, err := json.Marshal(doc)
	if err != nil {
		s.logger.Error(ctx, "export encode failed", "checklist_id", checklistID, "error", err)
		return nil, common.ErrorInternal
	}

	key := ExportKey(checklist.OwnerID)
	if err := s.storage.Put(ctx, key, body, "application/json"); err != nil {
		s.logger.Error(ctx, "export upload failed", "key", key, "error", err)
		return nil, common.ErrorInternal
	}

	url, err := s.storage.PresignGet(ctx, key, s.linkTTL)
	if err != nil {
		s.logger.Error(ctx, "export presign failed", "key", key, "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "checklist exported", "checklist_id", checklistID, "key", key)
	return &Export{Key: key, URL: url, ExpiresAt: now.Add(s.linkTTL)}, nil
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/you-kimono/checkilists/internal/common"
	"github.com/you-kimono/checkilists/internal/dbx"
	"github.com/you-kimono/checkilists/internal/logging"
	"github.com/you-kimono/checkilists/internal/server/models"
	"github.com/you-kimono/checkilists/internal/server/repositories/repomanager"
)

// AccountFinder resolves the owner of a request from its email.
type AccountFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
}

// ChecklistFields are the caller-editable attributes of a checklist.
type ChecklistFields struct {
	Title       string
	Description string
}

func (f ChecklistFields) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Title, validation.Required, validation.Length(1, 255)),
	)
}

// StepFields are the caller-editable attributes of a step.
type StepFields struct {
	Text        string
	Description string
	Order       int
	Completed   bool
}

func (f StepFields) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Text, validation.Required),
		validation.Field(&f.Order, validation.Min(math.MinInt32), validation.Max(math.MaxInt32)),
	)
}

// StepChange overwrites the step with the given ID.
type StepChange struct {
	ID int64
	StepFields
}

// ChecklistChange overwrites title and description and, when Steps is
// non-empty, the listed steps too, all in one transaction.
type ChecklistChange struct {
	ChecklistFields
	Steps []StepChange
}

// ChecklistService performs checklist and step operations scoped to the
// acting owner. Another account's checklist is reported exactly like a
// missing one, and checklist ownership is always settled before any step
// lookup.
type ChecklistService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	accounts    AccountFinder
	logger      logging.Logger
}

func NewChecklistService(db *sql.DB, m repomanager.RepositoryManager, accounts AccountFinder, logger logging.Logger) *ChecklistService {
	return &ChecklistService{
		db:          db,
		repomanager: m,
		accounts:    accounts,
		logger:      logger.With("module", "checklists"),
	}
}

func (s *ChecklistService) CreateChecklist(ctx context.Context, ownerEmail string, in ChecklistFields) (*models.Checklist, error) {
	if err := in.Validate(); err != nil {
		return nil, common.Validation("%v", err)
	}

	owner, err := s.accounts.FindByEmail(ctx, ownerEmail)
	if err != nil {
		return nil, err
	}

	checklist, err := s.repomanager.Checklists(s.db).Create(ctx, &models.Checklist{
		Title:       in.Title,
		Description: in.Description,
		OwnerID:     owner.ID,
	})
	if err != nil {
		return nil, s.internal(ctx, "checklist create failed", err)
	}

	checklist.Steps = []models.Step{}
	s.logger.Debug(ctx, "checklist created", "checklist_id", checklist.ID, "owner_id", owner.ID)
	return checklist, nil
}

// GetChecklist returns the checklist with its steps.
func (s *ChecklistService) GetChecklist(ctx context.Context, ownerEmail string, id int64) (*models.Checklist, error) {
	owner, err := s.accounts.FindByEmail(ctx, ownerEmail)
	if err != nil {
		return nil, err
	}

	checklist, err := s.ownedChecklist(ctx, s.db, id, owner.ID)
	if err != nil {
		return nil, err
	}

	list, err := s.repomanager.Steps(s.db).ListByChecklist(ctx, id)
	if err != nil {
		return nil, s.internal(ctx, "step list failed", err)
	}
	checklist.Steps = flatten(list)

	return checklist, nil
}

// ListChecklists returns every checklist of the owner, by ascending id, each
// with its steps.
func (s *ChecklistService) ListChecklists(ctx context.Context, ownerEmail string) ([]*models.Checklist, error) {
	owner, err := s.accounts.FindByEmail(ctx, ownerEmail)
	if err != nil {
		return nil, err
	}

	checklists, err := s.repomanager.Checklists(s.db).ListOwned(ctx, owner.ID)
	if err != nil {
		return nil, s.internal(ctx, "checklist list failed", err)
	}

	allSteps, err := s.repomanager.Steps(s.db).ListByOwner(ctx, owner.ID)
	if err != nil {
		return nil, s.internal(ctx, "step list failed", err)
	}

	byChecklist := make(map[int64][]models.Step, len(checklists))
	for _, st := range allSteps {
		byChecklist[st.ChecklistID] = append(byChecklist[st.ChecklistID], *st)
	}
	for _, c := range checklists {
		c.Steps = byChecklist[c.ID]
		if c.Steps == nil {
			c.Steps = []models.Step{}
		}
	}

	return checklists, nil
}

// UpdateChecklist overwrites title and description, then every step listed
// in the change. A step id that does not belong to the checklist aborts the
// whole update with common.ErrUnknownStep.
func (s *ChecklistService) UpdateChecklist(ctx context.Context, ownerEmail string, id int64, in ChecklistChange) (*models.Checklist, error) {
	if err := in.ChecklistFields.Validate(); err != nil {
		return nil, common.Validation("%v", err)
	}
	for _, st := range in.Steps {
		if err := st.StepFields.Validate(); err != nil {
			return nil, common.Validation("step %d: %v", st.ID, err)
		}
	}

	owner, err := s.accounts.FindByEmail(ctx, ownerEmail)
	if err != nil {
		return nil, err
	}

	var result *models.Checklist
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.ownedChecklist(ctx, tx, id, owner.ID); err != nil {
			return err
		}

		checklist, err := s.repomanager.Checklists(tx).Update(ctx, &models.Checklist{
			ID:          id,
			OwnerID:     owner.ID,
			Title:       in.Title,
			Description: in.Description,
		})
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.UnknownChecklist(id)
			}
			return s.internal(ctx, "checklist update failed", err)
		}

		stepRepo := s.repomanager.Steps(tx)
		for _, change := range in.Steps {
			if _, err := s.updateStep(ctx, stepRepo, id, change); err != nil {
				return err
			}
		}

		list, err := stepRepo.ListByChecklist(ctx, id)
		if err != nil {
			return s.internal(ctx, "step list failed", err)
		}
		checklist.Steps = flatten(list)
		result = checklist
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// DeleteChecklist removes the checklist and its steps.
func (s *ChecklistService) DeleteChecklist(ctx context.Context, ownerEmail string, id int64) error {
	owner, err := s.accounts.FindByEmail(ctx, ownerEmail)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.ownedChecklist(ctx, tx, id, owner.ID); err != nil {
			return err
		}

		if err := s.repomanager.Steps(tx).DeleteByChecklist(ctx, id); err != nil {
			return s.internal(ctx, "step delete failed", err)
		}

		if err := s.repomanager.Checklists(tx).Delete(ctx, id, owner.ID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.UnknownChecklist(id)
			}
			return s.internal(ctx, "checklist delete failed", err)
		}
		return nil
	})
}

func (s *ChecklistService) CreateStep(ctx context.Context, ownerEmail string, checklistID int64, in StepFields) (*models.Step, error) {
	if _, err := s.authorize(ctx, ownerEmail, checklistID); err != nil {
		return nil, err
	}

	if err := in.Validate(); err != nil {
		return nil, common.Validation("%v", err)
	}

	step, err := s.repomanager.Steps(s.db).Create(ctx, &models.Step{
		ChecklistID: checklistID,
		Text:        in.Text,
		Description: in.Description,
		Order:       in.Order,
		Completed:   in.Completed,
	})
	if err != nil {
		return nil, s.internal(ctx, "step create failed", err)
	}
	return step, nil
}

func (s *ChecklistService) GetStep(ctx context.Context, ownerEmail string, checklistID, stepID int64) (*models.Step, error) {
	if _, err := s.authorize(ctx, ownerEmail, checklistID); err != nil {
		return nil, err
	}

	return s.step(ctx, s.repomanager.Steps(s.db), checklistID, stepID)
}

// ListSteps returns the checklist's steps by ascending order.
func (s *ChecklistService) ListSteps(ctx context.Context, ownerEmail string, checklistID int64) ([]*models.Step, error) {
	if _, err := s.authorize(ctx, ownerEmail, checklistID); err != nil {
		return nil, err
	}

	list, err := s.repomanager.Steps(s.db).ListByChecklist(ctx, checklistID)
	if err != nil {
		return nil, s.internal(ctx, "step list failed", err)
	}
	return list, nil
}

func (s *ChecklistService) UpdateStep(ctx context.Context, ownerEmail string, checklistID int64, change StepChange) (*models.Step, error) {
	if _, err := s.authorize(ctx, ownerEmail, checklistID); err != nil {
		return nil, err
	}

	if err := change.Validate(); err != nil {
		return nil, common.Validation("%v", err)
	}

	return s.updateStep(ctx, s.repomanager.Steps(s.db), checklistID, change)
}

func (s *ChecklistService) DeleteStep(ctx context.Context, ownerEmail string, checklistID, stepID int64) error {
	if _, err := s.authorize(ctx, ownerEmail, checklistID); err != nil {
		return err
	}

	if err := s.repomanager.Steps(s.db).Delete(ctx, stepID, checklistID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.UnknownStep(stepID)
		}
		return s.internal(ctx, "step delete failed", err)
	}
	return nil
}

// authorize resolves the owner and checks the checklist belongs to them.
func (s *ChecklistService) authorize(ctx context.Context, ownerEmail string, checklistID int64) (*models.Checklist, error) {
	owner, err := s.accounts.FindByEmail(ctx, ownerEmail)
	if err != nil {
		return nil, err
	}
	return s.ownedChecklist(ctx, s.db, checklistID, owner.ID)
}

func (s *ChecklistService) ownedChecklist(ctx context.Context, db dbx.DBTX, id, ownerID int64) (*models.Checklist, error) {
	checklist, err := s.repomanager.Checklists(db).GetOwned(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.UnknownChecklist(id)
		}
		return nil, s.internal(ctx, "checklist lookup failed", err)
	}
	return checklist, nil
}

type stepStore interface {
	Get(ctx context.Context, stepID, checklistID int64) (*models.Step, error)
	Update(ctx context.Context, step *models.Step) (*models.Step, error)
}

func (s *ChecklistService) step(ctx context.Context, repo stepStore, checklistID, stepID int64) (*models.Step, error) {
	step, err := repo.Get(ctx, stepID, checklistID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.UnknownStep(stepID)
		}
		return nil, s.internal(ctx, "step lookup failed", err)
	}
	return step, nil
}

func (s *ChecklistService) updateStep(ctx context.Context, repo stepStore, checklistID int64, change StepChange) (*models.Step, error) {
	step, err := s.step(ctx, repo, checklistID, change.ID)
	if err != nil {
		return nil, err
	}

	step.Text = change.Text
	step.Description = change.Description
	step.Order = change.Order
	step.Completed = change.Completed

	updated, err := repo.Update(ctx, step)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.UnknownStep(change.ID)
		}
		return nil, s.internal(ctx, "step update failed", err)
	}
	return updated, nil
}

// internal logs a storage fault and hides it behind common.ErrorInternal.
func (s *ChecklistService) internal(ctx context.Context, msg string, err error) error {
	s.logger.Error(ctx, msg, "error", err)
	return common.ErrorInternal
}

func flatten(list []*models.Step) []models.Step {
	out := make([]models.Step, 0, len(list))
	for _, st := range list {
		out = append(out, *st)
	}
	return out
}

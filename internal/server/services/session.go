package services

import (
	"context"
	"errors"

	"github.com/you-kimono/checkilists/internal/common"
	"github.com/you-kimono/checkilists/internal/logging"
	"github.com/you-kimono/checkilists/internal/server/auth"
	"github.com/you-kimono/checkilists/internal/server/models"
)

// TokenIssuer signs and checks bearer tokens carrying an email subject.
type TokenIssuer interface {
	Issue(subject string) (string, error)
	Verify(token string) (string, error)
}

// TokenPair is what a successful login hands back.
type TokenPair struct {
	AccessToken string
	TokenType   string
}

// SessionService is the façade the transports call. Every checklist, step
// and profile operation takes the bearer token and verifies it before any
// repository is reached; the token subject becomes the acting owner.
type SessionService struct {
	identities *IdentityService
	checklists *ChecklistService
	exports    *ExportService
	tokens     TokenIssuer
	logger     logging.Logger
}

func NewSessionService(identities *IdentityService, checklists *ChecklistService, exports *ExportService, tokens TokenIssuer, logger logging.Logger) *SessionService {
	return &SessionService{
		identities: identities,
		checklists: checklists,
		exports:    exports,
		tokens:     tokens,
		logger:     logger.With("module", "session"),
	}
}

func (s *SessionService) Register(ctx context.Context, email, password string) (*models.Account, error) {
	return s.identities.Register(ctx, email, password)
}

// Login checks the credentials and issues an access token. Unknown email and
// wrong password are indistinguishable: both return common.ErrLoginFailed.
func (s *SessionService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	account, err := s.identities.CheckCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(account.Email)
	if err != nil {
		s.logger.Error(ctx, "token issue failed", "error", err)
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: token, TokenType: auth.TokenType}, nil
}

// Authenticate returns the email carried by a valid token.
func (s *SessionService) Authenticate(ctx context.Context, token string) (string, error) {
	subject, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.Debug(ctx, "token rejected", "error", err)
		return "", common.ErrInvalidToken
	}
	return subject, nil
}

// GetProfile returns the caller's own account. Any other id is reported as
// unknown.
func (s *SessionService) GetProfile(ctx context.Context, token string, id int64) (*models.Account, error) {
	account, err := s.self(ctx, token, id)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// DeleteProfile removes the caller's own account with all its checklists.
func (s *SessionService) DeleteProfile(ctx context.Context, token string, id int64) error {
	if _, err := s.self(ctx, token, id); err != nil {
		return err
	}
	return s.identities.Delete(ctx, id)
}

func (s *SessionService) self(ctx context.Context, token string, id int64) (*models.Account, error) {
	email, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	account, err := s.identities.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrUnknownAccount) {
			return nil, common.UnknownAccountID(id)
		}
		return nil, err
	}
	if account.ID != id {
		return nil, common.UnknownAccountID(id)
	}
	return account, nil
}

func (s *SessionService) CreateChecklist(ctx context.Context, token string, in ChecklistFields) (*models.Checklist, error) {
	email, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.checklists.CreateChecklist(ctx, email, in)
}

func (s *SessionService) GetChecklist(ctx context.Context, token string, id int64) (*models.Checklist, error) {
	email, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.checklists.GetChecklist(ctx, email, id)
}

func (s *SessionService) ListChecklists(ctx context.Context, token string) ([]*models.Checklist, error) {
	email, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.checklists.ListChecklists(ctx, email)
}

func (s *SessionService) UpdateChecklist(ctx context.Context, token string, id int64, in ChecklistChange) (*models.Checklist, error) {
	email, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.checklists.UpdateChecklist(ctx, email, id, in)
}

func (s *SessionService) DeleteChecklist(ctx context.Context, token string, id int64) error {
	email, err := s.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	return s.checklists.DeleteChecklist(ctx, email, id)
}

func (s *SessionService) CreateStep(ctx context.Context, token string, checklistID int64, in StepFields) (*models.Step, error) {
	email, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.checklists.CreateStep(ctx, email, checklistID, in)
}

func (s *SessionService) GetStep(ctx context.Context, token string, checklistID, stepID int64) (*models.Step, error) {
	email, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.checklists.GetStep(ctx, email, checklistID, stepID)
}

func (s *SessionService) ListSteps(ctx context.Context, token string, checklistID int64) ([]*models.Step, error) {
	email, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.checklists.ListSteps(ctx, email, checklistID)
}

func (s *SessionService) UpdateStep(ctx context.Context, token string, checklistID int64, change StepChange) (*models.Step, error) {
	email, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.checklists.UpdateStep(ctx, email, checklistID, change)
}

func (s *SessionService) DeleteStep(ctx context.Context, token string, checklistID, stepID int64) error {
	email, err := s.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	return s.checklists.DeleteStep(ctx, email, checklistID, stepID)
}

func (s *SessionService) ExportChecklist(ctx context.Context, token string, id int64) (*Export, error) {
	email, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.exports.Export(ctx, email, id)
}

// Package services contains server-side business logic: the identity
// directory, ownership-scoped checklist operations, checklist export and the
// session façade the transports call.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/you-kimono/checkilists/internal/common"
	"github.com/you-kimono/checkilists/internal/dbx"
	"github.com/you-kimono/checkilists/internal/logging"
	"github.com/you-kimono/checkilists/internal/server/credentials"
	"github.com/you-kimono/checkilists/internal/server/models"
	"github.com/you-kimono/checkilists/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// NormalizeEmail returns the canonical form stored and looked up everywhere:
// surrounding whitespace removed, whole address lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IdentityService keeps account records keyed by unique email.
type IdentityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      credentials.Hasher
	logger      logging.Logger
}

func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, hasher credentials.Hasher, logger logging.Logger) *IdentityService {
	return &IdentityService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		logger:      logger.With("module", "identity"),
	}
}

type registration struct {
	Email    string
	Password string
}

func (r registration) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.EmailFormat),
		validation.Field(&r.Password, validation.Required),
	)
}

// Register stores a new account. A taken email fails with
// common.ErrDuplicateIdentity; the unique index decides, not a pre-check.
func (s *IdentityService) Register(ctx context.Context, email, password string) (*models.Account, error) {
	in := registration{Email: NormalizeEmail(email), Password: password}
	if err := in.Validate(); err != nil {
		return nil, common.Validation("%v", err)
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, common.Validation("password: too long")
		}
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return nil, common.ErrorInternal
	}

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.Create(ctx, &models.Account{Email: in.Email, PasswordHash: digest})
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrDuplicateIdentity
		}
		s.logger.Error(ctx, "account create failed", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "account registered", "account_id", account.ID)
	return account, nil
}

func (s *IdentityService) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.UnknownAccountID(id)
		}
		s.logger.Error(ctx, "account lookup failed", "account_id", id, "error", err)
		return nil, common.ErrorInternal
	}
	return account, nil
}

// FindByEmail normalizes email the same way Register does before the lookup.
func (s *IdentityService) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	email = NormalizeEmail(email)

	account, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.UnknownAccountEmail(email)
		}
		s.logger.Error(ctx, "account lookup failed", "error", err)
		return nil, common.ErrorInternal
	}
	return account, nil
}

// Delete removes the account; its checklists and steps go with it.
func (s *IdentityService) Delete(ctx context.Context, id int64) error {
	err := s.repomanager.Accounts(s.db).Delete(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.UnknownAccountID(id)
		}
		s.logger.Error(ctx, "account delete failed", "account_id", id, "error", err)
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "account deleted", "account_id", id)
	return nil
}

// CheckCredentials returns the account when password matches. Unknown email
// and wrong password both yield common.ErrLoginFailed after a full hash
// comparison.
func (s *IdentityService) CheckCredentials(ctx context.Context, email, password string) (*models.Account, error) {
	account, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrUnknownAccount) {
			s.hasher.Burn(password)
			return nil, common.ErrLoginFailed
		}
		return nil, err
	}

	if !s.hasher.Verify(account.PasswordHash, password) {
		return nil, common.ErrLoginFailed
	}
	return account, nil
}

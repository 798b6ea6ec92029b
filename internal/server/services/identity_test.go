package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you-kimono/checkilists/internal/common"
	"github.com/you-kimono/checkilists/internal/dbx"
	"github.com/you-kimono/checkilists/internal/logging"
	"github.com/you-kimono/checkilists/internal/server/models"
	"golang.org/x/crypto/bcrypt"
)

func newIdentityService(t *testing.T, repo *fakeAccountsRepo, h *fakeHasher) *IdentityService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	t.Cleanup(func() { _ = db.Close() })
	return NewIdentityService(db, &fakeRepoManager{a: repo}, h, logging.Discard())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.Com\t"))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestIdentityService_Register(t *testing.T) {
	repo := newFakeAccountsRepo()
	s := newIdentityService(t, repo, &fakeHasher{})

	acc, err := s.Register(context.Background(), " Alice@Example.COM ", "pw")
	require.NoError(t, err)

	assert.Equal(t, int64(1), acc.ID)
	assert.Equal(t, "alice@example.com", acc.Email)
	assert.NotEqual(t, "pw", acc.PasswordHash)
	assert.Equal(t, "hashed:pw", repo.created.PasswordHash)
}

func TestIdentityService_Register_Duplicate(t *testing.T) {
	repo := newFakeAccountsRepo()
	repo.createErr = fmt.Errorf("%w: %w", dbx.ErrUniqueViolation, errBoom{})
	s := newIdentityService(t, repo, &fakeHasher{})

	_, err := s.Register(context.Background(), "a@x.com", "pw")
	assert.ErrorIs(t, err, common.ErrDuplicateIdentity)
}

func TestIdentityService_Register_StorageFaultIsHidden(t *testing.T) {
	repo := newFakeAccountsRepo()
	repo.createErr = errBoom{}
	s := newIdentityService(t, repo, &fakeHasher{})

	_, err := s.Register(context.Background(), "a@x.com", "pw")
	require.ErrorIs(t, err, common.ErrorInternal)
	assert.NotContains(t, err.Error(), "pq raw storage text")
}

func TestIdentityService_Register_Validation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "pw"},
		{"blank email", "   ", "pw"},
		{"malformed email", "not-an-email", "pw"},
		{"display name form", "Alice <a@x.com>", "pw"},
		{"empty password", "a@x.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeAccountsRepo()
			s := newIdentityService(t, repo, &fakeHasher{})

			_, err := s.Register(context.Background(), tt.email, tt.password)
			assert.ErrorIs(t, err, common.ErrorValidation)
			assert.Nil(t, repo.created)
		})
	}
}

func TestIdentityService_Register_HashErrors(t *testing.T) {
	t.Run("too long", func(t *testing.T) {
		s := newIdentityService(t, newFakeAccountsRepo(), &fakeHasher{hashErr: bcrypt.ErrPasswordTooLong})
		_, err := s.Register(context.Background(), "a@x.com", strings.Repeat("p", 100))
		assert.ErrorIs(t, err, common.ErrorValidation)
	})

	t.Run("other", func(t *testing.T) {
		s := newIdentityService(t, newFakeAccountsRepo(), &fakeHasher{hashErr: errors.New("rand failed")})
		_, err := s.Register(context.Background(), "a@x.com", "pw")
		assert.ErrorIs(t, err, common.ErrorInternal)
	})
}

func TestIdentityService_FindByID(t *testing.T) {
	repo := newFakeAccountsRepo(&models.Account{ID: 7, Email: "a@x.com"})
	s := newIdentityService(t, repo, &fakeHasher{})

	acc, err := s.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", acc.Email)

	_, err = s.FindByID(context.Background(), 8)
	require.ErrorIs(t, err, common.ErrUnknownAccount)
	var lookup *common.LookupError
	require.ErrorAs(t, err, &lookup)
	assert.Equal(t, "id=8", lookup.Key)
}

func TestIdentityService_FindByEmail(t *testing.T) {
	repo := newFakeAccountsRepo(&models.Account{ID: 1, Email: "a@x.com"})
	s := newIdentityService(t, repo, &fakeHasher{})

	acc, err := s.FindByEmail(context.Background(), " A@x.COM")
	require.NoError(t, err)
	assert.Equal(t, int64(1), acc.ID)

	_, err = s.FindByEmail(context.Background(), "B@x.com")
	require.ErrorIs(t, err, common.ErrUnknownAccount)
	assert.Contains(t, err.Error(), "email=b@x.com")
}

func TestIdentityService_FindByEmail_StorageFault(t *testing.T) {
	repo := newFakeAccountsRepo()
	repo.getErr = errBoom{}
	s := newIdentityService(t, repo, &fakeHasher{})

	_, err := s.FindByEmail(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.NotErrorIs(t, err, common.ErrUnknownAccount)
}

func TestIdentityService_Delete(t *testing.T) {
	repo := newFakeAccountsRepo(&models.Account{ID: 1, Email: "a@x.com"})
	s := newIdentityService(t, repo, &fakeHasher{})

	require.NoError(t, s.Delete(context.Background(), 1))
	assert.Equal(t, []int64{1}, repo.deleted)

	assert.ErrorIs(t, s.Delete(context.Background(), 1), common.ErrUnknownAccount)

	repo.deleteErr = errBoom{}
	assert.ErrorIs(t, s.Delete(context.Background(), 1), common.ErrorInternal)
}

func TestIdentityService_CheckCredentials(t *testing.T) {
	h := &fakeHasher{}
	repo := newFakeAccountsRepo(&models.Account{ID: 1, Email: "a@x.com", PasswordHash: "hashed:pw"})
	s := newIdentityService(t, repo, h)

	acc, err := s.CheckCredentials(context.Background(), "A@X.COM", "pw")
	require.NoError(t, err)
	assert.Equal(t, int64(1), acc.ID)

	_, wrongPassword := s.CheckCredentials(context.Background(), "a@x.com", "nope")
	_, unknownEmail := s.CheckCredentials(context.Background(), "ghost@x.com", "pw")

	assert.ErrorIs(t, wrongPassword, common.ErrLoginFailed)
	assert.ErrorIs(t, unknownEmail, common.ErrLoginFailed)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, 1, h.burned)
}

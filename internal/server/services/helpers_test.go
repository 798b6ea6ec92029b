package services

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/you-kimono/checkilists/internal/common"
	"github.com/you-kimono/checkilists/internal/dbx"
	"github.com/you-kimono/checkilists/internal/server/models"
	"github.com/you-kimono/checkilists/internal/server/repositories/accounts"
	"github.com/you-kimono/checkilists/internal/server/repositories/checklists"
	"github.com/you-kimono/checkilists/internal/server/repositories/steps"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom: pq raw storage text" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

// fakeHasher marks digests with a prefix so tests can see the plaintext never lands in storage.
type fakeHasher struct {
	hashErr error
	burned  int
}

func (h *fakeHasher) Hash(plaintext string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + plaintext, nil
}

func (h *fakeHasher) Verify(digest, plaintext string) bool {
	return digest == "hashed:"+plaintext
}

func (h *fakeHasher) Burn(string) { h.burned++ }

type fakeAccountsRepo struct {
	byEmail   map[string]*models.Account
	created   *models.Account
	createErr error
	getErr    error
	deleteErr error
	deleted   []int64
}

func newFakeAccountsRepo(list ...*models.Account) *fakeAccountsRepo {
	r := &fakeAccountsRepo{byEmail: map[string]*models.Account{}}
	for _, a := range list {
		r.byEmail[a.Email] = a
	}
	return r
}

func (f *fakeAccountsRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	a.ID = int64(len(f.byEmail) + 1)
	f.byEmail[a.Email] = a
	f.created = a
	return a, nil
}

func (f *fakeAccountsRepo) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, a := range f.byEmail {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccountsRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if strings.TrimSpace(email) != email {
		panic("email must be normalized before the repository is called")
	}
	if a, ok := f.byEmail[email]; ok {
		return a, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccountsRepo) Delete(ctx context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for email, a := range f.byEmail {
		if a.ID == id {
			delete(f.byEmail, email)
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return common.ErrorNotFound
}

type fakeChecklistsRepo struct {
	getOut    *models.Checklist
	getErr    error
	createErr error
	listErr   error
	updateErr error
	deleteErr error
}

func (f *fakeChecklistsRepo) Create(ctx context.Context, c *models.Checklist) (*models.Checklist, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	c.ID = 1
	return c, nil
}

func (f *fakeChecklistsRepo) GetOwned(ctx context.Context, id, ownerID int64) (*models.Checklist, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.getOut == nil || f.getOut.ID != id || f.getOut.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	c := *f.getOut
	return &c, nil
}

func (f *fakeChecklistsRepo) ListOwned(ctx context.Context, ownerID int64) ([]*models.Checklist, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.getOut != nil && f.getOut.OwnerID == ownerID {
		c := *f.getOut
		return []*models.Checklist{&c}, nil
	}
	return []*models.Checklist{}, nil
}

func (f *fakeChecklistsRepo) Update(ctx context.Context, c *models.Checklist) (*models.Checklist, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return c, nil
}

func (f *fakeChecklistsRepo) Delete(ctx context.Context, id, ownerID int64) error {
	return f.deleteErr
}

type fakeStepsRepo struct {
	getOut    *models.Step
	getErr    error
	listOut   []*models.Step
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	calls     []string
}

func (f *fakeStepsRepo) Create(ctx context.Context, s *models.Step) (*models.Step, error) {
	f.calls = append(f.calls, "create")
	if f.createErr != nil {
		return nil, f.createErr
	}
	s.ID = 1
	return s, nil
}

func (f *fakeStepsRepo) Get(ctx context.Context, stepID, checklistID int64) (*models.Step, error) {
	f.calls = append(f.calls, "get")
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.getOut == nil || f.getOut.ID != stepID || f.getOut.ChecklistID != checklistID {
		return nil, common.ErrorNotFound
	}
	s := *f.getOut
	return &s, nil
}

func (f *fakeStepsRepo) ListByChecklist(ctx context.Context, checklistID int64) ([]*models.Step, error) {
	f.calls = append(f.calls, "list")
	return f.listOut, f.listErr
}

func (f *fakeStepsRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Step, error) {
	f.calls = append(f.calls, "list-owner")
	return f.listOut, f.listErr
}

func (f *fakeStepsRepo) Update(ctx context.Context, s *models.Step) (*models.Step, error) {
	f.calls = append(f.calls, "update")
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return s, nil
}

func (f *fakeStepsRepo) Delete(ctx context.Context, stepID, checklistID int64) error {
	f.calls = append(f.calls, "delete")
	return f.deleteErr
}

func (f *fakeStepsRepo) DeleteByChecklist(ctx context.Context, checklistID int64) error {
	f.calls = append(f.calls, "delete-by-checklist")
	return f.deleteErr
}

type fakeRepoManager struct {
	a *fakeAccountsRepo
	c *fakeChecklistsRepo
	s *fakeStepsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(db dbx.DBTX) accounts.Repository     { return m.a }
func (m *fakeRepoManager) Checklists(db dbx.DBTX) checklists.Repository { return m.c }
func (m *fakeRepoManager) Steps(db dbx.DBTX) steps.Repository           { return m.s }

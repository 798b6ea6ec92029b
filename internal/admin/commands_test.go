package admin

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you-kimono/checkilists/internal/common"
	"github.com/you-kimono/checkilists/internal/server/config"
)

func stubPassword(t *testing.T, pw string, err error) {
	t.Helper()
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), err }
	t.Cleanup(func() { readPassword = orig })
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = filepath.Join(t.TempDir(), "admin.db")
	c.PasswordHashCost = 4
	c.LogLevel = "error"
	return c
}

func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := NewRootCmd(cfg)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateRegisterDelete(t *testing.T) {
	cfg := testConfig(t)
	stubPassword(t, "s3cret", nil)

	out, err := run(t, cfg, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "migrations applied\n", out)

	out, err = run(t, cfg, "register", "--email", " Ops@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "registered account id=1 email=ops@example.com\n", out)

	_, err = run(t, cfg, "register", "--email", "ops@example.com")
	require.ErrorIs(t, err, common.ErrDuplicateIdentity)

	out, err = run(t, cfg, "delete-account", "--id", "1")
	require.NoError(t, err)
	assert.Equal(t, "deleted account id=1\n", out)

	_, err = run(t, cfg, "delete-account", "--id", "1")
	require.ErrorIs(t, err, common.ErrUnknownAccount)
}

func TestRegister_RequiresEmail(t *testing.T) {
	_, err := run(t, testConfig(t), "register")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "email" not set`)
}

func TestRegister_PasswordReadError(t *testing.T) {
	stubPassword(t, "", errors.New("not a terminal"))

	_, err := run(t, testConfig(t), "register", "--email", "a@x.com")
	require.EqualError(t, err, "not a terminal")
}

func TestDeleteAccount_RejectsNonPositiveID(t *testing.T) {
	_, err := run(t, testConfig(t), "delete-account", "--id", "0")
	require.EqualError(t, err, "--id must be a positive integer")
}

func TestDriverFlagOverridesConfig(t *testing.T) {
	cfg := testConfig(t)

	_, err := run(t, cfg, "--driver", "mysql", "migrate")
	require.Error(t, err)
	assert.Equal(t, "mysql", cfg.DatabaseDriver)
	assert.Contains(t, err.Error(), `unsupported database driver "mysql"`)
}

func TestRuntimeOpen_WiresSQLite(t *testing.T) {
	rt := &runtime{cfg: testConfig(t)}

	require.NoError(t, rt.open(context.Background(), &cobra.Command{}))
	require.NotNil(t, rt.db)
	require.NotNil(t, rt.manager)
	require.NotNil(t, rt.identities)

	require.NoError(t, rt.manager.RunMigrations(context.Background(), rt.db))
	account, err := rt.identities.Register(context.Background(), "wired@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, int64(1), account.ID)

	rt.close()
	assert.Nil(t, rt.db)
}

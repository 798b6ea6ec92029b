package admin

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func migrateCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.open(cmd.Context(), cmd); err != nil {
				return err
			}
			defer rt.close()

			if err := rt.manager.RunMigrations(cmd.Context(), rt.db); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func registerCmd(rt *runtime) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account; the password is read from the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := getPassword(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer clear(password)

			if err := rt.open(cmd.Context(), cmd); err != nil {
				return err
			}
			defer rt.close()

			account, err := rt.identities.Register(cmd.Context(), email, string(password))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "registered account id=%d email=%s\n", account.ID, account.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func deleteAccountCmd(rt *runtime) *cobra.Command {
	var id int64

	cmd := &cobra.Command{
		Use:   "delete-account",
		Short: "Delete an account with its checklists and steps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if id <= 0 {
				return errors.New("--id must be a positive integer")
			}

			if err := rt.open(cmd.Context(), cmd); err != nil {
				return err
			}
			defer rt.close()

			if err := rt.identities.Delete(cmd.Context(), id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted account id=%d\n", id)
			return nil
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "account id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func getPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

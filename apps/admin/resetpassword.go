package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/coursecatalog/backend/core/user"
)

func (cli *commandLine) resetPasswordCommand() *cobra.Command {
	var login string
	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Reset a user's password, the password is prompted next",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			pwd, confirm, err := cli.promptNewPassword()
			if err != nil {
				return err
			}
			return cli.resetPassword(login, user.ResetUserPassword{Password: pwd, PasswordConfirm: confirm})
		},
	}
	cmd.Flags().StringVar(&login, "login", "", "The user's login")
	_ = cmd.MarkFlagRequired("login")
	return cmd
}

func (cli *commandLine) resetPassword(login string, rp user.ResetUserPassword) error {
	if err := cli.usrSvc.ResetPassword(context.Background(), login, rp); err != nil {
		if err == user.ErrNotFound {
			return err
		}
		return cli.describe(err)
	}
	cli.printf("password of %q updated\n", login)
	return nil
}

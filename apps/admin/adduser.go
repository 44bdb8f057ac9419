package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/coursecatalog/backend/core/user"
)

func (cli *commandLine) addUserCommand() *cobra.Command {
	var nu user.NewUser
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user, the password is prompted next",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			var err error
			if nu.Password, nu.PasswordConfirm, err = cli.promptNewPassword(); err != nil {
				return err
			}
			return cli.addUser(nu)
		},
	}
	cmd.Flags().StringVar(&nu.Login, "login", "", "The user's login")
	cmd.Flags().StringVar(&nu.FirstName, "first-name", "", "The user's first name")
	cmd.Flags().StringVar(&nu.LastName, "last-name", "", "The user's last name")
	cmd.Flags().StringVar(&nu.MiddleName, "middle-name", "", "The user's middle name")
	_ = cmd.MarkFlagRequired("login")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")
	return cmd
}

func (cli *commandLine) addUser(nu user.NewUser) error {
	usr, err := cli.usrSvc.Create(context.Background(), nu)
	if err != nil {
		return cli.describe(err)
	}
	cli.printf("user %q created (id %d)\n", usr.Login, usr.ID)
	return nil
}

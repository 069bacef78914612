// Package users provides the user management commands.
package users

import (
	"github.com/spf13/cobra"

	"github.com/endorses/dashsync/internal/pkg/cmdutil"
	"github.com/endorses/dashsync/internal/pkg/commands"
)

// UsersCmd is the base users command
var UsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage dashboard users",
}

var (
	username string
	password string
	role     string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a user",
	Long: `Add a dashboard user.

Examples:
  dashsync users add --username bob --password s3cret --role viewer`,
	Run: func(cmd *cobra.Command, args []string) {
		run(func(s *cmdutil.Session) error {
			return s.Handlers.AddUser(s.Ctx, commands.NewUser{Username: username, Password: password, Role: role})
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a user",
	Run: func(cmd *cobra.Command, args []string) {
		run(func(s *cmdutil.Session) error {
			return s.Handlers.DeleteUser(s.Ctx, username)
		})
	},
}

func init() {
	UsersCmd.AddCommand(addCmd)
	UsersCmd.AddCommand(deleteCmd)

	addCmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	addCmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	addCmd.Flags().StringVarP(&role, "role", "r", "", "Role")
	deleteCmd.Flags().StringVarP(&username, "username", "u", "", "Username")
}

func run(action func(s *cmdutil.Session) error) {
	s := cmdutil.MustSession()
	err := action(s)
	s.Close()
	if err != nil {
		cmdutil.Exit(err)
	}
}

// Package login provides the login command.
package login

import (
	"github.com/spf13/cobra"

	"github.com/endorses/dashsync/internal/pkg/cmdutil"
	"github.com/endorses/dashsync/internal/pkg/commands"
)

var creds commands.Credentials

// LoginCmd submits credentials to the server
var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the dashboard",
	Long: `Log in to the dashboard.

Examples:
  dashsync login --username admin --password s3cret
  dashsync login -u admin -p s3cret --totp 123456 --remember-me`,
	Run: func(cmd *cobra.Command, args []string) {
		s := cmdutil.MustSession()
		err := s.Handlers.Login(s.Ctx, creds)
		s.Close()
		if err != nil {
			cmdutil.Exit(err)
		}
	},
}

func init() {
	LoginCmd.Flags().StringVarP(&creds.Username, "username", "u", "", "Username")
	LoginCmd.Flags().StringVarP(&creds.Password, "password", "p", "", "Password")
	LoginCmd.Flags().BoolVar(&creds.RememberMe, "remember-me", false, "Keep the session")
	LoginCmd.Flags().StringVar(&creds.TOTP, "totp", "", "One-time code")
	LoginCmd.Flags().StringVar(&creds.Captcha, "captcha", "", "Captcha answer")
}

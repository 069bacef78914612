// Package attack provides the attack start and stop commands.
package attack

import (
	"github.com/spf13/cobra"

	"github.com/endorses/dashsync/internal/pkg/cmdutil"
)

// AttackCmd is the base attack command
var AttackCmd = &cobra.Command{
	Use:   "attack",
	Short: "Start or stop the server-side attack job",
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the attack job",
	Run: func(cmd *cobra.Command, args []string) {
		s := cmdutil.MustSession()
		err := s.Handlers.StartAttack(s.Ctx)
		s.Close()
		if err != nil {
			cmdutil.Exit(err)
		}
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the attack job",
	Run: func(cmd *cobra.Command, args []string) {
		s := cmdutil.MustSession()
		err := s.Handlers.StopAttack(s.Ctx)
		s.Close()
		if err != nil {
			cmdutil.Exit(err)
		}
	},
}

func init() {
	AttackCmd.AddCommand(startCmd)
	AttackCmd.AddCommand(stopCmd)
}

// Package tasks provides the scheduled task commands.
package tasks

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/endorses/dashsync/internal/pkg/cmdutil"
	"github.com/endorses/dashsync/internal/pkg/output"
	"github.com/endorses/dashsync/internal/pkg/types"
)

// TasksCmd is the base tasks command
var TasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Show scheduled tasks",
	Long: `Show scheduled tasks.

Subcommands:
  list      - All scheduled tasks
  upcoming  - Tasks the server considers upcoming; reminds once per task`,
}

var jsonOutput bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled tasks",
	Run:   runList,
}

var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "List upcoming tasks",
	Long: `List upcoming tasks. With notifications.ledger configured, each task
occurrence is reminded at most once across runs.`,
	Run: runUpcoming,
}

func init() {
	TasksCmd.AddCommand(listCmd)
	TasksCmd.AddCommand(upcomingCmd)
	TasksCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON (default when stdout is not a terminal)")
}

func runList(cmd *cobra.Command, args []string) {
	s := cmdutil.MustSession()
	defer s.Close()

	tasks, err := s.Handlers.LoadScheduledTasks(s.Ctx)
	if err != nil {
		s.Close()
		cmdutil.Exit(err)
	}
	if err := printTasks(tasks); err != nil {
		s.Close()
		cmdutil.OutputError(err, cmdutil.ExitGeneralError)
	}
}

func runUpcoming(cmd *cobra.Command, args []string) {
	s := cmdutil.MustSession()
	defer s.Close()

	tasks, err := s.Handlers.CheckUpcomingTasks(s.Ctx)
	if err != nil {
		s.Close()
		cmdutil.Exit(err)
	}
	if err := printTasks(tasks); err != nil {
		s.Close()
		cmdutil.OutputError(err, cmdutil.ExitGeneralError)
	}
}

func printTasks(tasks []types.Task) error {
	if output.UseJSON(jsonOutput) {
		return output.WriteJSON(os.Stdout, tasks, output.IsTTY())
	}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{t.Time, t.Name, t.Description})
	}
	_, err := fmt.Fprintln(os.Stdout, output.Table([]string{"Time", "Name", "Description"}, rows))
	return err
}

// Package logs provides the log filter and export commands.
package logs

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/endorses/dashsync/internal/pkg/cmdutil"
	"github.com/endorses/dashsync/internal/pkg/commands"
	"github.com/endorses/dashsync/internal/pkg/output"
	"github.com/endorses/dashsync/internal/pkg/types"
)

// LogsCmd is the base logs command
var LogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Query and export server logs",
	Long: `Query and export server logs.

Subcommands:
  filter  - Show log entries matching level, tag and date
  export  - Download the log export as json, xml or csv`,
}

var (
	filterLevel string
	filterTag   string
	filterDate  string
	jsonOutput  bool
	exportFmt   string
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Show log entries",
	Long: `Show log entries matching the given filter. Empty fields match everything.

Examples:
  dashsync logs filter --level error
  dashsync logs filter --tag auth --date 2024-01-01 --json`,
	Run: runFilter,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export logs to a file",
	Long: `Download the log export and save it as logs.<format> in the export directory.

Examples:
  dashsync logs export --format csv`,
	Run: runExport,
}

func init() {
	LogsCmd.AddCommand(filterCmd)
	LogsCmd.AddCommand(exportCmd)

	filterCmd.Flags().StringVarP(&filterLevel, "level", "l", "", "Log level (TRACE, DEBUG, INFO, WARNING, ERROR, CRITICAL)")
	filterCmd.Flags().StringVarP(&filterTag, "tag", "t", "", "Tag")
	filterCmd.Flags().StringVarP(&filterDate, "date", "d", "", "Date (as shown in the log table)")
	filterCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON (default when stdout is not a terminal)")

	exportCmd.Flags().StringVarP(&exportFmt, "format", "f", "csv", "Export format (json, xml, csv)")
}

func runFilter(cmd *cobra.Command, args []string) {
	s := cmdutil.MustSession()
	defer s.Close()

	entries, err := s.Handlers.FilterLogs(s.Ctx, commands.LogFilter{
		Level: filterLevel,
		Tag:   filterTag,
		Date:  filterDate,
	})
	if err != nil {
		s.Close()
		cmdutil.Exit(err)
	}
	if err := printEntries(entries); err != nil {
		s.Close()
		cmdutil.OutputError(err, cmdutil.ExitGeneralError)
	}
}

func printEntries(entries []types.LogEntry) error {
	if output.UseJSON(jsonOutput) {
		return output.WriteJSON(os.Stdout, entries, output.IsTTY())
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Date, string(e.Level), e.Tag, e.Message})
	}
	_, err := fmt.Fprintln(os.Stdout, output.Table([]string{"Date", "Level", "Tag", "Message"}, rows))
	return err
}

func runExport(cmd *cobra.Command, args []string) {
	s := cmdutil.MustSession()
	defer s.Close()

	if _, err := s.Handlers.ExportLogs(s.Ctx, exportFmt); err != nil {
		s.Close()
		cmdutil.Exit(err)
	}
}

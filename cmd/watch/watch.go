// Package watch provides the interactive terminal dashboard command.
package watch

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/endorses/dashsync/internal/pkg/cmdutil"
	"github.com/endorses/dashsync/internal/pkg/signals"
	"github.com/endorses/dashsync/internal/pkg/tui"
)

// WatchCmd opens the live dashboard
var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Open the live dashboard (TUI)",
	Long: `Open the live dashboard in the terminal.

The log table and task calendar are loaded from the server and then kept up to
date by the push channel. When the channel drops it reconnects with backoff
and resynchronizes before showing new updates.

Keys:
  0      show all levels
  1-6    filter by TRACE, DEBUG, INFO, WARNING, ERROR, CRITICAL
  r      resynchronize with the server
  x      export logs as CSV
  q      quit

Examples:
  dashsync watch -s https://dash.example.com
  dashsync watch --locale ru`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cleanup := signals.SetupHandler(ctx, cancel)
	defer cleanup()

	sink, flush := cmdutil.NewSink()
	defer flush()

	config := cmdutil.GetDashboardConfig()
	config.Sink = sink
	return tui.Run(ctx, config)
}

package components

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/endorses/dashsync/internal/pkg/types"
)

// LogTable shows the current log snapshot
type LogTable struct {
	table   table.Model
	entries []types.LogEntry
	width   int
}

// NewLogTable creates an empty log table
func NewLogTable() LogTable {
	t := table.New(
		table.WithColumns(logColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorBase01).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(colorBase3).
		Background(colorBase03).
		Bold(false)
	t.SetStyles(styles)
	return LogTable{table: t, width: 80}
}

func logColumns(width int) []table.Column {
	const dateW, levelW, tagW = 12, 10, 14
	msgW := width - dateW - levelW - tagW - 8
	if msgW < 20 {
		msgW = 20
	}
	return []table.Column{
		{Title: "Date", Width: dateW},
		{Title: "Level", Width: levelW},
		{Title: "Tag", Width: tagW},
		{Title: "Message", Width: msgW},
	}
}

// SetEntries replaces the table content. The slice is not retained beyond
// the rows built from it.
func (l *LogTable) SetEntries(entries []types.LogEntry) {
	l.entries = entries
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, table.Row{e.Date, string(e.Level), e.Tag, e.Message})
	}
	l.table.SetRows(rows)
	if l.table.Cursor() >= len(rows) {
		l.table.SetCursor(0)
	}
}

// Entries returns the displayed snapshot
func (l *LogTable) Entries() []types.LogEntry {
	return l.entries
}

// SetSize updates the layout dimensions
func (l *LogTable) SetSize(width, height int) {
	l.width = width
	l.table.SetColumns(logColumns(width))
	l.table.SetWidth(width)
	if height < 3 {
		height = 3
	}
	l.table.SetHeight(height)
}

// Update forwards navigation keys to the table
func (l *LogTable) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	l.table, cmd = l.table.Update(msg)
	return cmd
}

// View renders the table
func (l *LogTable) View() string {
	if len(l.entries) == 0 {
		return lipgloss.NewStyle().Foreground(colorBase01).Render("  no log entries")
	}
	return l.table.View()
}

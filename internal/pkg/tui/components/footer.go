package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/endorses/dashsync/internal/pkg/logger"
)

const keyHints = "0 all · 1-6 level · r resync · x export csv · ↑/↓ scroll · q quit"

// Footer shows key hints and the most recent console warning
type Footer struct {
	width int
	last  *logger.Record
}

// NewFooter creates a footer
func NewFooter() Footer {
	return Footer{}
}

// SetWidth updates the layout width
func (f *Footer) SetWidth(width int) {
	f.width = width
}

// SetLastRecord shows r on the console line (nil clears it)
func (f *Footer) SetLastRecord(r *logger.Record) {
	f.last = r
}

// View renders the console line and key hints
func (f *Footer) View() string {
	hints := lipgloss.NewStyle().Foreground(colorBase01).Width(f.width).Render(keyHints)
	if f.last == nil {
		return hints
	}
	line := logger.FormatLevel(f.last.Level) + " " + f.last.Message
	if f.last.Attrs != "" {
		line += " " + f.last.Attrs
	}
	console := lipgloss.NewStyle().Foreground(colorOrange).MaxWidth(f.width).Render(line)
	return console + "\n" + hints
}

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/endorses/dashsync/internal/pkg/types"
)

// TaskList shows the scheduled tasks
type TaskList struct {
	tasks []types.Task
	width int
	max   int
}

// NewTaskList creates an empty task list showing at most max rows
func NewTaskList(max int) TaskList {
	return TaskList{max: max, width: 80}
}

// SetTasks replaces the listed tasks
func (l *TaskList) SetTasks(tasks []types.Task) {
	l.tasks = tasks
}

// Tasks returns the listed tasks
func (l *TaskList) Tasks() []types.Task {
	return l.tasks
}

// SetWidth updates the layout width
func (l *TaskList) SetWidth(width int) {
	l.width = width
}

// View renders one line per task
func (l *TaskList) View() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorBlue).Render("Scheduled tasks")
	if len(l.tasks) == 0 {
		return title + "\n" + lipgloss.NewStyle().Foreground(colorBase01).Render("  none")
	}

	timeStyle := lipgloss.NewStyle().Foreground(colorCyan)
	descStyle := lipgloss.NewStyle().Foreground(colorBase01)

	var b strings.Builder
	b.WriteString(title)
	for i, t := range l.tasks {
		if l.max > 0 && i == l.max {
			b.WriteString("\n" + descStyle.Render("  …"))
			break
		}
		line := "  " + timeStyle.Render(t.Time) + "  " + t.Name
		if t.Description != "" {
			line += "  " + descStyle.Render(t.Description)
		}
		b.WriteString("\n" + lipgloss.NewStyle().MaxWidth(l.width).Render(line))
	}
	return b.String()
}

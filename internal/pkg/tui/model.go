// Package tui is the terminal front end of the dashboard: a bubbletea
// program showing the log table, the task calendar, the push channel state
// and action feedback.
package tui

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/endorses/dashsync/internal/pkg/commands"
	"github.com/endorses/dashsync/internal/pkg/constants"
	"github.com/endorses/dashsync/internal/pkg/i18n"
	"github.com/endorses/dashsync/internal/pkg/logger"
	"github.com/endorses/dashsync/internal/pkg/tui/components"
	"github.com/endorses/dashsync/internal/pkg/types"
)

// Actions are the dashboard operations reachable from the keyboard.
// *commands.Handlers implements it.
type Actions interface {
	FilterLogs(ctx context.Context, f commands.LogFilter) ([]types.LogEntry, error)
	ExportLogs(ctx context.Context, format string) (string, error)
	Resync(ctx context.Context) error
}

const taskRows = 6

// Model is the bubbletea model of the dashboard
type Model struct {
	ctx     context.Context
	actions Actions
	printer *i18n.Printer
	console *logger.ConsoleBuffer

	header components.Header
	logs   components.LogTable
	tasks  components.TaskList
	toast  components.Toast
	footer components.Footer

	state  types.ChannelState
	level  string
	width  int
	height int
}

// NewModel creates the model. console may be nil.
func NewModel(ctx context.Context, actions Actions, printer *i18n.Printer, console *logger.ConsoleBuffer) Model {
	if printer == nil {
		printer = i18n.New("")
	}
	m := Model{
		ctx:     ctx,
		actions: actions,
		printer: printer,
		console: console,
		header:  components.NewHeader("dashsync"),
		logs:    components.NewLogTable(),
		tasks:   components.NewTaskList(taskRows),
		toast:   components.NewToast(),
		footer:  components.NewFooter(),
		state:   types.ChannelConnecting,
	}
	m.header.SetState(m.state, m.stateLabel(m.state))
	return m
}

// Init starts the console poller
func (m Model) Init() tea.Cmd {
	return consoleTick()
}

func consoleTick() tea.Cmd {
	return tea.Tick(constants.ConsolePollInterval, func(time.Time) tea.Msg {
		return consoleTickMsg{}
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case LogsMsg:
		m.logs.SetEntries(msg.Entries)
		return m, nil

	case TasksMsg:
		m.tasks.SetTasks(msg.Tasks)
		return m, nil

	case LoadingMsg:
		cmd := m.header.SetLoading(msg.Active)
		return m, cmd

	case FeedbackMsg:
		var cmd tea.Cmd
		if msg.Failure {
			cmd = m.toast.Show(msg.Message, components.ToastError, components.ToastDurationLong)
		} else {
			cmd = m.toast.Show(msg.Message, components.ToastSuccess, components.ToastDurationNormal)
		}
		return m, cmd

	case ReminderMsg:
		text := m.printer.Sprintf(i18n.MsgUpcomingTask, msg.Task.Name, msg.Task.Time)
		cmd := m.toast.Show(text, components.ToastInfo, components.ToastDurationLong)
		return m, cmd

	case ChannelStateMsg:
		m.state = msg.State
		m.header.SetState(msg.State, m.stateLabel(msg.State))
		return m, nil

	case components.ToastTickMsg:
		cmd := m.toast.Update(msg)
		return m, cmd

	case consoleTickMsg:
		m.refreshConsole()
		return m, consoleTick()
	}

	cmd := m.header.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "0", "1", "2", "3", "4", "5", "6":
		m.level = ""
		if n := int(key[0] - '0'); n > 0 {
			m.level = string(types.LogLevels[n-1])
		}
		m.header.SetLevel(m.level)
		return m, m.run(func(ctx context.Context) {
			_, _ = m.actions.FilterLogs(ctx, commands.LogFilter{Level: m.level})
		})

	case "r":
		return m, m.run(func(ctx context.Context) {
			_ = m.actions.Resync(ctx)
		})

	case "x":
		return m, m.run(func(ctx context.Context) {
			_, _ = m.actions.ExportLogs(ctx, "csv")
		})
	}

	cmd := m.logs.Update(msg)
	return m, cmd
}

// run executes an action off the update loop. Results arrive through the
// bridge as render and feedback messages.
func (m Model) run(fn func(ctx context.Context)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		fn(ctx)
		return nil
	}
}

func (m *Model) refreshConsole() {
	if m.console == nil {
		return
	}
	recent := m.console.GetRecent(constants.ConsoleBufferSize)
	for i := len(recent) - 1; i >= 0; i-- {
		if recent[i].Level >= slog.LevelWarn {
			r := recent[i]
			m.footer.SetLastRecord(&r)
			return
		}
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.header.SetWidth(width)
	m.toast.SetWidth(width)
	m.footer.SetWidth(width)
	m.tasks.SetWidth(width)
	// header, task block, toast and footer lines
	m.logs.SetSize(width, height-(taskRows+2)-6)
}

func (m Model) stateLabel(state types.ChannelState) string {
	switch state {
	case types.ChannelOpen:
		return m.printer.Sprintf(i18n.MsgChannelOpen)
	case types.ChannelReconnecting:
		return m.printer.Sprintf(i18n.MsgChannelRetrying)
	case types.ChannelClosed:
		return m.printer.Sprintf(i18n.MsgChannelClosed)
	default:
		return m.printer.Sprintf(i18n.MsgChannelWaiting)
	}
}

// View renders the dashboard
func (m Model) View() string {
	sections := []string{
		m.header.View(),
		m.logs.View(),
		m.tasks.View(),
	}
	if toast := m.toast.View(); toast != "" {
		sections = append(sections, toast)
	}
	sections = append(sections, m.footer.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

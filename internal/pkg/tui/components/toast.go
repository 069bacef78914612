package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/endorses/dashsync/internal/pkg/constants"
)

// ToastType defines the severity of a toast notification
type ToastType int

const (
	ToastSuccess ToastType = iota
	ToastError
	ToastInfo
)

// Toast durations
const (
	ToastDurationNormal = 3 * time.Second
	ToastDurationLong   = 5 * time.Second
)

type toastQueueItem struct {
	message   string
	toastType ToastType
	duration  time.Duration
}

// Toast is a temporary notification shown above the footer. Toasts shown
// while one is visible are queued and displayed in order.
type Toast struct {
	active    bool
	message   string
	toastType ToastType
	startTime time.Time
	duration  time.Duration
	width     int
	queue     []toastQueueItem
}

// ToastTickMsg is sent periodically to check if the toast should be dismissed
type ToastTickMsg struct {
	Time time.Time
}

// NewToast creates an inactive toast
func NewToast() Toast {
	return Toast{duration: ToastDurationNormal}
}

// Show displays message, or queues it when a toast is already visible
func (t *Toast) Show(message string, toastType ToastType, duration time.Duration) tea.Cmd {
	if t.active {
		t.queue = append(t.queue, toastQueueItem{message: message, toastType: toastType, duration: duration})
		return nil
	}

	t.active = true
	t.message = message
	t.toastType = toastType
	t.startTime = time.Now()
	t.duration = duration
	return t.tickCmd()
}

// Hide dismisses the current toast
func (t *Toast) Hide() {
	t.active = false
}

// IsActive returns whether a toast is visible
func (t *Toast) IsActive() bool {
	return t.active
}

// Message returns the visible message
func (t *Toast) Message() string {
	return t.message
}

// Pending returns the number of queued toasts
func (t *Toast) Pending() int {
	return len(t.queue)
}

// SetWidth updates the layout width
func (t *Toast) SetWidth(width int) {
	t.width = width
}

// Update expires the toast and promotes the next queued one
func (t *Toast) Update(msg tea.Msg) tea.Cmd {
	if !t.active {
		return nil
	}
	tick, ok := msg.(ToastTickMsg)
	if !ok {
		return nil
	}
	if tick.Time.Sub(t.startTime) < t.duration {
		return t.tickCmd()
	}

	t.Hide()
	if len(t.queue) > 0 {
		next := t.queue[0]
		t.queue = t.queue[1:]
		return t.Show(next.message, next.toastType, next.duration)
	}
	return nil
}

func (t *Toast) tickCmd() tea.Cmd {
	return tea.Tick(constants.TUITickInterval, func(now time.Time) tea.Msg {
		return ToastTickMsg{Time: now}
	})
}

func (t *Toast) icon() string {
	switch t.toastType {
	case ToastSuccess:
		return "✓"
	case ToastError:
		return "✗"
	default:
		return "ⓘ "
	}
}

// View renders the toast
func (t *Toast) View() string {
	if !t.active {
		return ""
	}

	bg := colorBlue
	switch t.toastType {
	case ToastSuccess:
		bg = colorGreen
	case ToastError:
		bg = colorRed
	}

	content := " " + t.icon() + " " + t.message + " "
	styled := lipgloss.NewStyle().
		Foreground(colorBase3).
		Background(bg).
		Padding(0, 2).
		Render(content)
	return lipgloss.PlaceHorizontal(t.width, lipgloss.Center, styled)
}

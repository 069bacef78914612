package tui

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/endorses/dashsync/internal/pkg/logger"
	"github.com/endorses/dashsync/internal/pkg/types"
)

// Bridge forwards dashboard callbacks into the bubbletea program as
// messages. It satisfies dashboard.Frontend and reminders.Notifier.
type Bridge struct {
	mu      sync.RWMutex
	program *tea.Program
	dropped int
}

// NewBridge creates a bridge with no program attached
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach connects the bridge to p. Sends block until p is running.
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.program = p
}

// Dropped returns how many messages arrived before a program was attached
func (b *Bridge) Dropped() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.program
	if p == nil {
		b.dropped++
		b.mu.Unlock()
		logger.Debug("Dropping UI message, no program attached", "type", fmt.Sprintf("%T", msg))
		return
	}
	b.mu.Unlock()
	p.Send(msg)
}

// RenderLogs implements projector.Renderer
func (b *Bridge) RenderLogs(entries []types.LogEntry) {
	b.send(LogsMsg{Entries: entries})
}

// RenderTasks implements projector.Renderer
func (b *Bridge) RenderTasks(tasks []types.Task) {
	b.send(TasksMsg{Tasks: tasks})
}

// Show implements transport.Indicator
func (b *Bridge) Show() {
	b.send(LoadingMsg{Active: true})
}

// Hide implements transport.Indicator
func (b *Bridge) Hide() {
	b.send(LoadingMsg{Active: false})
}

// Success implements commands.Feedback
func (b *Bridge) Success(message string) {
	b.send(FeedbackMsg{Message: message})
}

// Failure implements commands.Feedback
func (b *Bridge) Failure(message string) {
	b.send(FeedbackMsg{Message: message, Failure: true})
}

// ChannelStateChanged reports push channel transitions
func (b *Bridge) ChannelStateChanged(state types.ChannelState) {
	b.send(ChannelStateMsg{State: state})
}

// Notify implements reminders.Notifier
func (b *Bridge) Notify(_ context.Context, task types.Task) error {
	b.send(ReminderMsg{Task: task})
	return nil
}

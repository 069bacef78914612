package tui

import "github.com/endorses/dashsync/internal/pkg/types"

// LogsMsg carries an applied log snapshot
type LogsMsg struct {
	Entries []types.LogEntry
}

// TasksMsg carries an applied task snapshot
type TasksMsg struct {
	Tasks []types.Task
}

// LoadingMsg toggles the loading spinner
type LoadingMsg struct {
	Active bool
}

// FeedbackMsg is the outcome of a user action
type FeedbackMsg struct {
	Message string
	Failure bool
}

// ChannelStateMsg reports a push channel transition
type ChannelStateMsg struct {
	State types.ChannelState
}

// ReminderMsg announces an upcoming task
type ReminderMsg struct {
	Task types.Task
}

// consoleTickMsg refreshes the console line
type consoleTickMsg struct{}

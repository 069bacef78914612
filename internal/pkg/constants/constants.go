// Package constants provides shared constants used across dashsync components.
package constants

import "time"

// Transport defaults
const (
	// DefaultRequestTimeout bounds a single request/response exchange
	DefaultRequestTimeout = 30 * time.Second

	// MaxErrorBodyBytes is how much of a failed response body is kept for logging
	MaxErrorBodyBytes = 512
)

// Push channel reconnection policy
//
// Backoff doubles per consecutive failure: 1s, 2s, 4s, 8s, 16s, 30s (cap).
// MinReconnectBackoff is also the floor applied to any configured minimum so
// the channel never reconnects in a tight loop.
const (
	MinReconnectBackoff     = 1 * time.Second
	DefaultReconnectBackoff = 1 * time.Second
	MaxReconnectBackoff     = 30 * time.Second

	// DialTimeout bounds the websocket handshake
	DialTimeout = 10 * time.Second

	// DefaultPushPath is the push endpoint relative to the server URL
	DefaultPushPath = "/ws/updates"
)

// Task reminders
const (
	// DefaultUpcomingInterval is the period of the upcoming-task check
	DefaultUpcomingInterval = 1 * time.Minute

	// DefaultReminderLookahead is how far ahead a pushed task counts as upcoming
	DefaultReminderLookahead = 15 * time.Minute

	// ReminderRetention is how long a delivered key is kept past the reminder
	// window before it may be pruned from the ledger
	ReminderRetention = 24 * time.Hour

	// LedgerPruneInterval is the period of ledger pruning in the dashboard
	LedgerPruneInterval = 1 * time.Hour
)

// Shutdown and graceful termination
const (
	// GracefulShutdownTimeout is the time to wait for graceful component shutdown
	GracefulShutdownTimeout = 2 * time.Second
)

// Channel buffer sizes
const (
	// SignalChannelBuffer is the buffer size for OS signal channels
	SignalChannelBuffer = 1

	// ConsoleBufferSize is the number of log records kept for the terminal UI
	ConsoleBufferSize = 200
)

// Terminal UI timing
const (
	// TUITickInterval drives toast expiry checks
	TUITickInterval = 100 * time.Millisecond

	// ConsolePollInterval is how often the UI refreshes its console line
	ConsolePollInterval = 1 * time.Second
)

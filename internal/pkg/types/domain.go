// Package types holds the domain model shared by the transport, push channel,
// projector and command layers.
package types

import (
	"fmt"
	"strings"
	"time"
)

// LogLevel is the severity of a log entry as reported by the server
type LogLevel string

const (
	LevelTrace    LogLevel = "TRACE"
	LevelDebug    LogLevel = "DEBUG"
	LevelInfo     LogLevel = "INFO"
	LevelWarning  LogLevel = "WARNING"
	LevelError    LogLevel = "ERROR"
	LevelCritical LogLevel = "CRITICAL"
)

// LogLevels lists every level in ascending severity
var LogLevels = []LogLevel{LevelTrace, LevelDebug, LevelInfo, LevelWarning, LevelError, LevelCritical}

// ParseLogLevel returns the canonical level for s (case-insensitive)
func ParseLogLevel(s string) (LogLevel, error) {
	upper := LogLevel(strings.ToUpper(strings.TrimSpace(s)))
	for _, l := range LogLevels {
		if l == upper {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown log level %q", s)
}

// LogEntry is a single row of the log table. Entries are immutable once received.
type LogEntry struct {
	Date    string   `json:"date"`
	Level   LogLevel `json:"level"`
	Tag     string   `json:"tag"`
	Message string   `json:"message"`
}

// Task is a scheduled task shown on the calendar
type Task struct {
	Name        string `json:"name"`
	Time        string `json:"time"`
	Description string `json:"description"`
}

// taskTimeLayouts are the timestamp layouts accepted for Task.Time
var taskTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTaskTime parses a task timestamp. Layouts without a zone are wall
// clock times in the local zone, as the calendar shows them.
func ParseTaskTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range taskTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized task time %q", s)
}

// Scheduled returns the parsed scheduled time of the task
func (t Task) Scheduled() (time.Time, error) {
	return ParseTaskTime(t.Time)
}

// ReminderKey identifies one occurrence of a task: the same name at the same
// instant yields the same key regardless of how the time was formatted.
func (t Task) ReminderKey() string {
	ts, err := t.Scheduled()
	if err != nil {
		return t.Name + "@" + strings.TrimSpace(t.Time)
	}
	return t.Name + "@" + ts.UTC().Format(time.RFC3339)
}

// Source identifies where a snapshot came from
type Source int

const (
	SourceInitialLoad Source = iota
	SourceFilterQuery
	SourcePushUpdate
)

func (s Source) String() string {
	switch s {
	case SourceInitialLoad:
		return "initial_load"
	case SourceFilterQuery:
		return "filter_query"
	case SourcePushUpdate:
		return "push_update"
	default:
		return "unknown"
	}
}

// ChannelState is the lifecycle state of the push channel
type ChannelState int

const (
	ChannelConnecting ChannelState = iota
	ChannelOpen
	ChannelClosed
	ChannelReconnecting
)

func (s ChannelState) String() string {
	switch s {
	case ChannelConnecting:
		return "connecting"
	case ChannelOpen:
		return "open"
	case ChannelClosed:
		return "closed"
	case ChannelReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// ValidateLogSnapshot checks every entry of a log snapshot. A nil snapshot is
// malformed; an empty one is valid.
func ValidateLogSnapshot(entries []LogEntry) error {
	if entries == nil {
		return &ParseError{Subject: "log snapshot", Reason: "missing logs"}
	}
	for i, e := range entries {
		if e.Date == "" {
			return &ParseError{Subject: "log snapshot", Reason: fmt.Sprintf("entry %d: missing date", i)}
		}
		if _, err := ParseLogLevel(string(e.Level)); err != nil {
			return &ParseError{Subject: "log snapshot", Reason: fmt.Sprintf("entry %d", i), Err: err}
		}
	}
	return nil
}

// ValidateTaskSnapshot checks every task of a task snapshot
func ValidateTaskSnapshot(tasks []Task) error {
	if tasks == nil {
		return &ParseError{Subject: "task snapshot", Reason: "missing tasks"}
	}
	for i, t := range tasks {
		if t.Name == "" {
			return &ParseError{Subject: "task snapshot", Reason: fmt.Sprintf("task %d: missing name", i)}
		}
		if _, err := t.Scheduled(); err != nil {
			return &ParseError{Subject: "task snapshot", Reason: fmt.Sprintf("task %d", i), Err: err}
		}
	}
	return nil
}

package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// EventKind discriminates push events
type EventKind string

const (
	EventLogUpdate  EventKind = "log_update"
	EventTaskUpdate EventKind = "task_update"
)

// ErrUnknownEventKind is returned by DecodePushEvent for well-formed frames whose
// kind is not recognized. Such frames are ignored, not reported.
var ErrUnknownEventKind = errors.New("unknown push event kind")

// PushEvent is one decoded push frame. Exactly one of Logs or Tasks is set,
// according to Kind.
type PushEvent struct {
	Kind  EventKind
	Logs  []LogEntry
	Tasks []Task
}

// pushFrame is the wire envelope. The server sends {"type": ..., "logs": [...]}
// or {"type": ..., "tasks": [...]}; "kind" and "payload" are accepted as aliases.
type pushFrame struct {
	Type    string          `json:"type"`
	Kind    string          `json:"kind"`
	Logs    json.RawMessage `json:"logs"`
	Tasks   json.RawMessage `json:"tasks"`
	Payload json.RawMessage `json:"payload"`
}

// DecodePushEvent parses a push frame. Malformed frames yield a *ParseError.
func DecodePushEvent(frame []byte) (PushEvent, error) {
	var f pushFrame
	if err := json.Unmarshal(frame, &f); err != nil {
		return PushEvent{}, &ParseError{Subject: "push frame", Reason: "invalid json", Err: err}
	}

	kind := f.Type
	if kind == "" {
		kind = f.Kind
	}
	if kind == "" {
		return PushEvent{}, &ParseError{Subject: "push frame", Reason: "missing kind"}
	}

	switch EventKind(kind) {
	case EventLogUpdate:
		raw := f.Logs
		if raw == nil {
			raw = f.Payload
		}
		logs, err := DecodeLogEntries(raw)
		if err != nil {
			return PushEvent{}, err
		}
		return PushEvent{Kind: EventLogUpdate, Logs: logs}, nil
	case EventTaskUpdate:
		raw := f.Tasks
		if raw == nil {
			raw = f.Payload
		}
		tasks, err := DecodeTasks(raw)
		if err != nil {
			return PushEvent{}, err
		}
		return PushEvent{Kind: EventTaskUpdate, Tasks: tasks}, nil
	default:
		return PushEvent{}, fmt.Errorf("%w: %q", ErrUnknownEventKind, kind)
	}
}

// wireLogEntry uses pointers so absent required fields can be told apart from
// empty ones
type wireLogEntry struct {
	Date    *string `json:"date"`
	Level   *string `json:"level"`
	Tag     string  `json:"tag"`
	Message string  `json:"message"`
}

type wireTask struct {
	Name        *string `json:"name"`
	Time        *string `json:"time"`
	Description string  `json:"description"`
}

// DecodeLogEntries decodes a JSON array of log entries, requiring date and a
// known level on every element
func DecodeLogEntries(raw json.RawMessage) ([]LogEntry, error) {
	if isAbsent(raw) {
		return nil, &ParseError{Subject: "log snapshot", Reason: "missing logs"}
	}
	var wire []wireLogEntry
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &ParseError{Subject: "log snapshot", Reason: "logs is not a list of entries", Err: err}
	}

	entries := make([]LogEntry, 0, len(wire))
	for i, w := range wire {
		if w.Date == nil || *w.Date == "" {
			return nil, &ParseError{Subject: "log snapshot", Reason: fmt.Sprintf("entry %d: missing date", i)}
		}
		if w.Level == nil {
			return nil, &ParseError{Subject: "log snapshot", Reason: fmt.Sprintf("entry %d: missing level", i)}
		}
		level, err := ParseLogLevel(*w.Level)
		if err != nil {
			return nil, &ParseError{Subject: "log snapshot", Reason: fmt.Sprintf("entry %d", i), Err: err}
		}
		entries = append(entries, LogEntry{
			Date:    *w.Date,
			Level:   level,
			Tag:     w.Tag,
			Message: w.Message,
		})
	}
	return entries, nil
}

// DecodeTasks decodes a JSON array of tasks, requiring name and a parseable time
func DecodeTasks(raw json.RawMessage) ([]Task, error) {
	if isAbsent(raw) {
		return nil, &ParseError{Subject: "task snapshot", Reason: "missing tasks"}
	}
	var wire []wireTask
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &ParseError{Subject: "task snapshot", Reason: "tasks is not a list of tasks", Err: err}
	}

	tasks := make([]Task, 0, len(wire))
	for i, w := range wire {
		if w.Name == nil || *w.Name == "" {
			return nil, &ParseError{Subject: "task snapshot", Reason: fmt.Sprintf("task %d: missing name", i)}
		}
		if w.Time == nil {
			return nil, &ParseError{Subject: "task snapshot", Reason: fmt.Sprintf("task %d: missing time", i)}
		}
		if _, err := ParseTaskTime(*w.Time); err != nil {
			return nil, &ParseError{Subject: "task snapshot", Reason: fmt.Sprintf("task %d", i), Err: err}
		}
		tasks = append(tasks, Task{Name: *w.Name, Time: *w.Time, Description: w.Description})
	}
	return tasks, nil
}

// DecodeLogsResponse decodes a {"logs": [...]} response body
func DecodeLogsResponse(body []byte) ([]LogEntry, error) {
	var resp struct {
		Logs json.RawMessage `json:"logs"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ParseError{Subject: "logs response", Reason: "invalid json", Err: err}
	}
	return DecodeLogEntries(resp.Logs)
}

// DecodeTasksResponse decodes a {"tasks": [...]} response body
func DecodeTasksResponse(body []byte) ([]Task, error) {
	var resp struct {
		Tasks json.RawMessage `json:"tasks"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ParseError{Subject: "tasks response", Reason: "invalid json", Err: err}
	}
	return DecodeTasks(resp.Tasks)
}

// Outcome is the {success, message} body returned by command endpoints
type Outcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DecodeOutcome decodes a command response. A body with success=false is
// returned as a *DomainFailure.
func DecodeOutcome(body []byte) (Outcome, error) {
	var o struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &o); err != nil {
		return Outcome{}, &ParseError{Subject: "command response", Reason: "invalid json", Err: err}
	}
	if o.Success == nil {
		return Outcome{}, &ParseError{Subject: "command response", Reason: "missing success"}
	}
	if !*o.Success {
		return Outcome{Message: o.Message}, &DomainFailure{Message: o.Message}
	}
	return Outcome{Success: true, Message: o.Message}, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Package reminders tracks which task reminders have already been delivered
// so each (name, time) occurrence is announced at most once.
package reminders

import (
	"context"
	"sync"
	"time"

	"github.com/endorses/dashsync/internal/pkg/constants"
	"github.com/endorses/dashsync/internal/pkg/logger"
	"github.com/endorses/dashsync/internal/pkg/types"
)

// Ledger records delivered reminder keys
type Ledger interface {
	// MarkIfNew records key and reports whether it was not recorded before.
	// Callers deliver the reminder only when it returns true.
	MarkIfNew(ctx context.Context, key string) (bool, error)
	Close() error
}

// Pruner is implemented by ledgers that can forget old keys
type Pruner interface {
	// Prune removes keys delivered before cutoff and returns how many
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// PruneBefore prunes l when it supports pruning. A key delivered before
// cutoff belongs to a task that can no longer be reminded, provided cutoff
// trails the reminder window.
func PruneBefore(ctx context.Context, l Ledger, cutoff time.Time) (int64, error) {
	p, ok := l.(Pruner)
	if !ok {
		return 0, nil
	}
	n, err := p.Prune(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.DebugContext(ctx, "Pruned reminder ledger", "removed", n, "cutoff", cutoff)
	}
	return n, nil
}

// RetentionCutoff is the prune cutoff at now. A task is reminded no earlier
// than lookahead before it is due, so keys delivered before the cutoff name
// tasks that ended at least ReminderRetention ago.
func RetentionCutoff(now time.Time, lookahead time.Duration) time.Time {
	if lookahead <= 0 {
		lookahead = constants.DefaultReminderLookahead
	}
	return now.Add(-lookahead - constants.ReminderRetention)
}

// Notifier delivers a reminder for a task
type Notifier interface {
	Notify(ctx context.Context, task types.Task) error
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, task types.Task) error

// Notify calls f
func (f NotifierFunc) Notify(ctx context.Context, task types.Task) error {
	return f(ctx, task)
}

// LogNotifier announces reminders through the process logger
type LogNotifier struct{}

// Notify logs the upcoming task
func (LogNotifier) Notify(ctx context.Context, task types.Task) error {
	logger.InfoContext(ctx, "Upcoming task",
		"name", task.Name,
		"time", task.Time,
		"description", task.Description)
	return nil
}

// MemoryLedger keeps keys for the lifetime of the process
type MemoryLedger struct {
	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

// NewMemoryLedger returns an empty in-memory ledger
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{seen: make(map[string]time.Time), now: time.Now}
}

// MarkIfNew records key in memory
func (l *MemoryLedger) MarkIfNew(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.seen[key]; ok {
		return false, nil
	}
	l.seen[key] = l.now()
	return true, nil
}

// Prune forgets keys delivered before cutoff
func (l *MemoryLedger) Prune(_ context.Context, cutoff time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int64
	for key, at := range l.seen {
		if at.Before(cutoff) {
			delete(l.seen, key)
			n++
		}
	}
	return n, nil
}

// Len returns the number of recorded keys
func (l *MemoryLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen)
}

// Close is a no-op
func (l *MemoryLedger) Close() error { return nil }

// Open returns the ledger for path: an in-memory ledger when path is empty,
// a SQLite ledger otherwise.
func Open(path string) (Ledger, error) {
	if path == "" {
		return NewMemoryLedger(), nil
	}
	return NewSQLiteLedger(path)
}

package commands

import (
	"strings"
	"sync"
	"time"

	"github.com/endorses/dashsync/internal/pkg/logger"
)

const (
	// DefaultMaxLoginFailures is the number of rejected logins before blocking.
	DefaultMaxLoginFailures = 5
	// DefaultLoginBlock is how long a username stays blocked.
	DefaultLoginBlock = 60 * time.Second
)

type failureRecord struct {
	count     int
	firstFail time.Time
	blocked   bool
	blockTime time.Time
}

// LoginThrottle tracks rejected logins per username and refuses further
// attempts for a while once the limit is hit. Expired records are pruned
// whenever a failure is recorded.
type LoginThrottle struct {
	mu            sync.Mutex
	failures      map[string]*failureRecord
	maxFailures   int
	blockDuration time.Duration
	now           func() time.Time
}

// NewLoginThrottle creates a throttle. Non-positive values fall back to
// the defaults.
func NewLoginThrottle(maxFailures int, blockDuration time.Duration) *LoginThrottle {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxLoginFailures
	}
	if blockDuration <= 0 {
		blockDuration = DefaultLoginBlock
	}
	return &LoginThrottle{
		failures:      make(map[string]*failureRecord),
		maxFailures:   maxFailures,
		blockDuration: blockDuration,
		now:           time.Now,
	}
}

func throttleKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// IsBlocked reports whether username is currently blocked
func (t *LoginThrottle) IsBlocked(username string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	record, ok := t.failures[throttleKey(username)]
	if !ok || !record.blocked {
		return false
	}
	return t.now().Sub(record.blockTime) < t.blockDuration
}

// RecordFailure records a rejected login. Returns true if username is now blocked.
func (t *LoginThrottle) RecordFailure(username string) bool {
	key := throttleKey(username)

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.prune(now)

	record, ok := t.failures[key]
	if !ok {
		record = &failureRecord{firstFail: now}
		t.failures[key] = record
	}

	// A lapsed block or failure window starts a fresh count
	if (record.blocked && now.Sub(record.blockTime) >= t.blockDuration) ||
		(!record.blocked && now.Sub(record.firstFail) >= t.blockDuration) {
		*record = failureRecord{firstFail: now}
	}

	record.count++
	if record.count >= t.maxFailures && !record.blocked {
		record.blocked = true
		record.blockTime = now
		logger.Warn("Login blocked after repeated failures",
			"username", key,
			"failure_count", record.count)
	}
	return record.blocked
}

// RecordSuccess clears failure tracking for username
func (t *LoginThrottle) RecordSuccess(username string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, throttleKey(username))
}

func (t *LoginThrottle) prune(now time.Time) {
	for key, record := range t.failures {
		since := record.firstFail
		if record.blocked {
			since = record.blockTime
		}
		if now.Sub(since) >= t.blockDuration*2 {
			delete(t.failures, key)
		}
	}
}

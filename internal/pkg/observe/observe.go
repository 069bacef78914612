// Package observe provides the error-observability sink. Recoverable faults
// (malformed frames, rejected snapshots) are reported here instead of being
// surfaced to the user.
package observe

import (
	"context"
	"errors"
	"sync"

	"github.com/endorses/dashsync/internal/pkg/logger"
	"github.com/endorses/dashsync/internal/pkg/types"
)

// Sink receives recoverable errors. Implementations must be safe for
// concurrent use.
type Sink interface {
	Report(ctx context.Context, err error, attrs ...any)
}

// LogSink reports errors through the process logger. Parse errors are logged
// at warn level, everything else at error level.
type LogSink struct{}

// NewLogSink returns a sink backed by the process logger
func NewLogSink() *LogSink {
	return &LogSink{}
}

// Report logs err with attrs
func (LogSink) Report(ctx context.Context, err error, attrs ...any) {
	if err == nil {
		return
	}
	args := append([]any{"error", err.Error()}, attrs...)
	var pe *types.ParseError
	if errors.As(err, &pe) {
		logger.WarnContext(ctx, "Discarded malformed data", append(args, "subject", pe.Subject)...)
		return
	}
	logger.ErrorContext(ctx, "Recoverable error", args...)
}

// Multi fans a report out to several sinks in order
type Multi []Sink

// Report forwards err to every sink
func (m Multi) Report(ctx context.Context, err error, attrs ...any) {
	for _, s := range m {
		if s != nil {
			s.Report(ctx, err, attrs...)
		}
	}
}

// Report is one recorded call on a Recorder
type Report struct {
	Err   error
	Attrs []any
}

// Recorder keeps every report in memory. The terminal UI uses it to show the
// most recent fault; tests use it to count reports.
type Recorder struct {
	mu      sync.Mutex
	reports []Report
}

// Report records err
func (r *Recorder) Report(_ context.Context, err error, attrs ...any) {
	if err == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, Report{Err: err, Attrs: attrs})
}

// Reports returns a copy of the recorded reports
func (r *Recorder) Reports() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Report, len(r.reports))
	copy(out, r.reports)
	return out
}

// Len returns the number of recorded reports
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}

// Last returns the most recent report, if any
func (r *Recorder) Last() (Report, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.reports) == 0 {
		return Report{}, false
	}
	return r.reports[len(r.reports)-1], true
}

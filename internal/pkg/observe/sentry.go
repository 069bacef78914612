package observe

import (
	"context"
	"fmt"
	"runtime"
	"time"

	gosentry "github.com/getsentry/sentry-go"

	"github.com/endorses/dashsync/internal/pkg/types"
)

// SentryConfig configures the Sentry sink
type SentryConfig struct {
	DSN         string
	Release     string
	Environment string
}

// SentrySink forwards reports to Sentry. Parse errors are sent as warnings.
type SentrySink struct {
	hub *gosentry.Hub
}

// NewSentrySink initializes a dedicated Sentry client. An empty DSN returns
// (nil, nil) so callers can skip the sink.
func NewSentrySink(cfg SentryConfig) (*SentrySink, error) {
	if cfg.DSN == "" {
		return nil, nil
	}

	client, err := gosentry.NewClient(gosentry.ClientOptions{
		Dsn:              cfg.DSN,
		Release:          cfg.Release,
		Environment:      cfg.Environment,
		AttachStacktrace: true,
		SampleRate:       1.0,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sentry: %w", err)
	}

	scope := gosentry.NewScope()
	scope.SetTag("os", runtime.GOOS)
	scope.SetTag("arch", runtime.GOARCH)
	scope.SetTag("go_version", runtime.Version())

	return &SentrySink{hub: gosentry.NewHub(client, scope)}, nil
}

// Report captures err with attrs attached as a "details" context
func (s *SentrySink) Report(_ context.Context, err error, attrs ...any) {
	if s == nil || err == nil {
		return
	}
	s.hub.WithScope(func(scope *gosentry.Scope) {
		if types.IsParseError(err) {
			scope.SetLevel(gosentry.LevelWarning)
		}
		if len(attrs) > 1 {
			details := gosentry.Context{}
			for i := 0; i+1 < len(attrs); i += 2 {
				details[fmt.Sprint(attrs[i])] = attrs[i+1]
			}
			scope.SetContext("details", details)
		}
		s.hub.CaptureException(err)
	})
}

// Flush waits up to timeout for buffered events to be sent
func (s *SentrySink) Flush(timeout time.Duration) bool {
	if s == nil {
		return true
	}
	return s.hub.Flush(timeout)
}

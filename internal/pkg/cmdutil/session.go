package cmdutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/endorses/dashsync/internal/pkg/commands"
	"github.com/endorses/dashsync/internal/pkg/constants"
	"github.com/endorses/dashsync/internal/pkg/i18n"
	"github.com/endorses/dashsync/internal/pkg/logger"
	"github.com/endorses/dashsync/internal/pkg/observe"
	"github.com/endorses/dashsync/internal/pkg/projector"
	"github.com/endorses/dashsync/internal/pkg/reminders"
	"github.com/endorses/dashsync/internal/pkg/signals"
	"github.com/endorses/dashsync/internal/pkg/transport"
	"github.com/endorses/dashsync/internal/pkg/version"
)

// NewSink returns the configured error sink: the log sink, plus Sentry when
// a DSN is configured. flush must be called before exit.
func NewSink() (sink observe.Sink, flush func()) {
	sentry, err := observe.NewSentrySink(observe.SentryConfig{
		DSN:         viper.GetString(KeySentryDSN),
		Release:     version.Release(),
		Environment: viper.GetString(KeyEnvironment),
	})
	if err != nil {
		logger.Warn("Sentry disabled", "error", err)
	}
	if sentry == nil {
		return observe.NewLogSink(), func() {}
	}
	return observe.Multi{observe.NewLogSink(), sentry}, func() {
		sentry.Flush(constants.GracefulShutdownTimeout)
	}
}

// ConsoleFeedback prints action outcomes for one-shot commands
type ConsoleFeedback struct {
	W io.Writer
}

// Success prints message
func (f ConsoleFeedback) Success(message string) {
	fmt.Fprintln(f.W, message)
}

// Failure prints message prefixed with "error:"
func (f ConsoleFeedback) Failure(message string) {
	fmt.Fprintln(f.W, "error: "+message)
}

// Session is the object graph used by one-shot commands: handlers over a
// headless projector with the configured reminder ledger
type Session struct {
	Ctx      context.Context
	Handlers *commands.Handlers
	View     *projector.Projector

	ledger  reminders.Ledger
	flush   func()
	cleanup func()
	cancel  context.CancelFunc
}

// NewSession builds a session from flags and config. Interrupts cancel
// Session.Ctx.
func NewSession() (*Session, error) {
	client, err := transport.NewClient(GetClientConfig())
	if err != nil {
		return nil, err
	}
	ledger, err := reminders.Open(viper.GetString(KeyLedger))
	if err != nil {
		return nil, fmt.Errorf("failed to open reminder ledger: %w", err)
	}
	lookahead := GetDurationConfig(KeyLookahead, constants.DefaultReminderLookahead)
	if _, err := reminders.PruneBefore(context.Background(), ledger, reminders.RetentionCutoff(time.Now(), lookahead)); err != nil {
		logger.Warn("Reminder ledger prune failed", "error", err)
	}
	sink, flush := NewSink()

	view := projector.New(projector.Config{
		Sink:      sink,
		Ledger:    ledger,
		Lookahead: lookahead,
	})
	handlers := commands.New(commands.Config{
		Requester: client,
		View:      view,
		Feedback:  ConsoleFeedback{W: os.Stderr},
		Saver:     commands.FileSaver{Dir: viper.GetString(KeyExportDir)},
		Sink:      sink,
		Printer:   i18n.New(viper.GetString(KeyLocale)),
	})

	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		Ctx:      ctx,
		Handlers: handlers,
		View:     view,
		ledger:   ledger,
		flush:    flush,
		cleanup:  signals.SetupHandler(ctx, cancel),
		cancel:   cancel,
	}, nil
}

// Close releases the session
func (s *Session) Close() {
	s.cleanup()
	s.cancel()
	s.flush()
	if err := s.ledger.Close(); err != nil {
		logger.Warn("Failed to close reminder ledger", "error", err)
	}
}

// MustSession returns a session or exits with a JSON error
func MustSession() *Session {
	s, err := NewSession()
	if err != nil {
		OutputError(err, ExitGeneralError)
	}
	return s
}

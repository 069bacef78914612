// Package commands translates user actions into transport calls, routes log
// and task results through the projector and reports the outcome as
// user-visible feedback.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/endorses/dashsync/internal/pkg/i18n"
	"github.com/endorses/dashsync/internal/pkg/logger"
	"github.com/endorses/dashsync/internal/pkg/observe"
	"github.com/endorses/dashsync/internal/pkg/transport"
	"github.com/endorses/dashsync/internal/pkg/types"
)

// Server endpoints
const (
	EndpointFilterLogs     = "/api/filter_logs"
	EndpointExportLogs     = "/api/export_logs"
	EndpointLogin          = "/api/login"
	EndpointScheduledTasks = "/api/scheduled_tasks"
	EndpointUpcomingTasks  = "/api/upcoming_tasks"
	EndpointStartAttack    = "/api/start_attack"
	EndpointStopAttack     = "/api/stop_attack"
	EndpointAddUser        = "/api/add_user"
	EndpointDeleteUser     = "/api/delete_user"
)

// Requester performs server calls. *transport.Client and
// *transport.LoadingClient both satisfy it.
type Requester interface {
	Request(ctx context.Context, endpoint, method string, body any) (json.RawMessage, error)
	Download(ctx context.Context, endpoint string) (*transport.Blob, error)
}

// View is the part of the projector the handlers feed
type View interface {
	NextSequence() uint64
	ApplyLogSnapshot(entries []types.LogEntry, source types.Source, seq uint64) bool
	ApplyTaskSnapshot(tasks []types.Task, source types.Source) bool
	NotifyUpcoming(ctx context.Context, tasks []types.Task) int
}

// Feedback shows the outcome of an action to the user
type Feedback interface {
	Success(message string)
	Failure(message string)
}

// Config wires a Handlers
type Config struct {
	Requester Requester
	View      View
	Feedback  Feedback
	Saver     Saver
	Sink      observe.Sink
	Printer   *i18n.Printer
	Throttle  *LoginThrottle
}

// Handlers implements every dashboard action
type Handlers struct {
	client   Requester
	view     View
	feedback Feedback
	saver    Saver
	sink     observe.Sink
	printer  *i18n.Printer
	throttle *LoginThrottle

	mu         sync.Mutex
	lastFilter LogFilter
}

// New creates handlers. Requester and View are required.
func New(config Config) *Handlers {
	h := &Handlers{
		client:   config.Requester,
		view:     config.View,
		feedback: config.Feedback,
		saver:    config.Saver,
		sink:     config.Sink,
		printer:  config.Printer,
		throttle: config.Throttle,
	}
	if h.feedback == nil {
		h.feedback = LogFeedback{}
	}
	if h.saver == nil {
		h.saver = FileSaver{}
	}
	if h.sink == nil {
		h.sink = observe.NewLogSink()
	}
	if h.printer == nil {
		h.printer = i18n.New("")
	}
	if h.throttle == nil {
		h.throttle = NewLoginThrottle(DefaultMaxLoginFailures, DefaultLoginBlock)
	}
	return h
}

// LastFilter returns the most recently submitted log filter
func (h *Handlers) LastFilter() LogFilter {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastFilter
}

// outcome posts body to endpoint and decodes the {success, message} reply.
// On success the server message is shown, or fallback when it is empty.
func (h *Handlers) outcome(ctx context.Context, endpoint string, body any, fallback string) error {
	raw, err := h.client.Request(ctx, endpoint, http.MethodPost, body)
	if err != nil {
		return h.fail(ctx, endpoint, err)
	}
	out, err := types.DecodeOutcome(raw)
	if err != nil {
		return h.fail(ctx, endpoint, err)
	}
	msg := out.Message
	if msg == "" {
		msg = fallback
	}
	h.feedback.Success(msg)
	return nil
}

// invalid shows a validation message and returns the matching error.
// Nothing is sent to the server.
func (h *Handlers) invalid(field, reason, message string) error {
	h.feedback.Failure(message)
	return &types.ValidationError{Field: field, Reason: reason}
}

func (h *Handlers) required(field string) error {
	return h.invalid(field, "is required", h.printer.Sprintf(i18n.MsgFieldRequired, field))
}

// fail maps err to a user-visible message and returns it unchanged
func (h *Handlers) fail(ctx context.Context, endpoint string, err error) error {
	var (
		te *types.TransportError
		df *types.DomainFailure
		pe *types.ParseError
	)
	switch {
	case errors.As(err, &df):
		h.feedback.Failure(df.Message)
	case errors.As(err, &te):
		h.feedback.Failure(h.printer.Sprintf(i18n.MsgRequestFailed, fmt.Sprintf("%d %s", te.StatusCode, te.Status)))
	case errors.As(err, &pe):
		h.sink.Report(ctx, err, "component", "commands", "endpoint", endpoint)
		h.feedback.Failure(h.printer.Sprintf(i18n.MsgMalformedReply))
	default:
		h.feedback.Failure(h.printer.Sprintf(i18n.MsgNoResponse))
	}
	logger.DebugContext(ctx, "Command failed", "endpoint", endpoint, "error", err)
	return err
}

// LogFeedback writes feedback to the process logger. It is the default when
// no interactive front end is attached.
type LogFeedback struct{}

// Success logs message at info level
func (LogFeedback) Success(message string) {
	logger.Info(message)
}

// Failure logs message at warn level
func (LogFeedback) Failure(message string) {
	logger.Warn(message)
}

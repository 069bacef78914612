package commands

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/endorses/dashsync/internal/pkg/i18n"
	"github.com/endorses/dashsync/internal/pkg/logger"
	"github.com/endorses/dashsync/internal/pkg/types"
)

// LoadScheduledTasks fetches the task calendar and applies it as an
// InitialLoad snapshot
func (h *Handlers) LoadScheduledTasks(ctx context.Context) ([]types.Task, error) {
	tasks, err := h.fetchTasks(ctx, EndpointScheduledTasks)
	if err != nil {
		return nil, err
	}
	h.view.ApplyTaskSnapshot(tasks, types.SourceInitialLoad)
	return tasks, nil
}

// CheckUpcomingTasks fetches the tasks the server considers upcoming and
// raises a reminder for each one not reminded before
func (h *Handlers) CheckUpcomingTasks(ctx context.Context) ([]types.Task, error) {
	tasks, err := h.fetchTasks(ctx, EndpointUpcomingTasks)
	if err != nil {
		return nil, err
	}
	if fired := h.view.NotifyUpcoming(ctx, tasks); fired > 0 {
		logger.DebugContext(ctx, "Delivered task reminders", "count", fired)
	}
	return tasks, nil
}

func (h *Handlers) fetchTasks(ctx context.Context, endpoint string) ([]types.Task, error) {
	raw, err := h.client.Request(ctx, endpoint, http.MethodGet, nil)
	if err != nil {
		return nil, h.fail(ctx, endpoint, err)
	}
	tasks, err := types.DecodeTasksResponse(raw)
	if err != nil {
		return nil, h.fail(ctx, endpoint, err)
	}
	return tasks, nil
}

// InitialLoad pulls logs with an empty filter and the task calendar
func (h *Handlers) InitialLoad(ctx context.Context) error {
	return h.reload(ctx, LogFilter{})
}

// Resync re-issues the last submitted filter and reloads the calendar. It
// runs after the push channel recovers so nothing missed while disconnected
// stays hidden.
func (h *Handlers) Resync(ctx context.Context) error {
	if err := h.reload(ctx, h.LastFilter()); err != nil {
		return err
	}
	h.feedback.Success(h.printer.Sprintf(i18n.MsgResynced))
	return nil
}

func (h *Handlers) reload(ctx context.Context, f LogFilter) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, _, err := h.loadLogs(gctx, f, types.SourceInitialLoad)
		return err
	})
	g.Go(func() error {
		_, err := h.LoadScheduledTasks(gctx)
		return err
	})
	return g.Wait()
}

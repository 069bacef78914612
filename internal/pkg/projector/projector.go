// Package projector reconciles log and task snapshots arriving from pulls and
// pushes into the view stores and hands every applied snapshot to a Renderer.
//
// Pulls and pushes draw from one sequence counter. A push is applied as soon
// as it arrives and raises the applied mark; a pull is applied only when its
// sequence is newer than everything already applied, so a slow filter
// response never overwrites fresher pushed data.
package projector

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/endorses/dashsync/internal/pkg/constants"
	"github.com/endorses/dashsync/internal/pkg/logger"
	"github.com/endorses/dashsync/internal/pkg/observe"
	"github.com/endorses/dashsync/internal/pkg/reminders"
	"github.com/endorses/dashsync/internal/pkg/types"
)

// Renderer receives every applied snapshot. Slices handed to it are copies
// owned by the renderer.
type Renderer interface {
	RenderLogs(entries []types.LogEntry)
	RenderTasks(tasks []types.Task)
}

// Config configures a Projector
type Config struct {
	Renderer Renderer
	Sink     observe.Sink
	Ledger   reminders.Ledger
	Notifier reminders.Notifier

	// Lookahead is how far ahead of now a pushed task triggers a reminder
	Lookahead time.Duration

	// Now replaces the clock in tests
	Now func() time.Time
}

// Projector is the single writer of the log and task view stores
type Projector struct {
	renderer  Renderer
	sink      observe.Sink
	ledger    reminders.Ledger
	notifier  reminders.Notifier
	lookahead time.Duration
	now       func() time.Time

	seq atomic.Uint64

	mu             sync.Mutex
	logs           []types.LogEntry
	tasks          []types.Task
	highestApplied uint64
	logGen         uint64
	taskGen        uint64

	renderMu        sync.Mutex
	renderedLogGen  uint64
	renderedTaskGen uint64
}

// New creates a projector with empty stores
func New(config Config) *Projector {
	p := &Projector{
		renderer:  config.Renderer,
		sink:      config.Sink,
		ledger:    config.Ledger,
		notifier:  config.Notifier,
		lookahead: config.Lookahead,
		now:       config.Now,
	}
	if p.renderer == nil {
		p.renderer = nopRenderer{}
	}
	if p.sink == nil {
		p.sink = observe.NewLogSink()
	}
	if p.ledger == nil {
		p.ledger = reminders.NewMemoryLedger()
	}
	if p.notifier == nil {
		p.notifier = reminders.LogNotifier{}
	}
	if p.lookahead <= 0 {
		p.lookahead = constants.DefaultReminderLookahead
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// NextSequence reserves the next sequence number. Callers take one before
// issuing a pull so the response can be ordered against pushes that arrive
// while the request is in flight.
func (p *Projector) NextSequence() uint64 {
	return p.seq.Add(1)
}

// ApplyLogSnapshot replaces the log store with entries and reports whether
// the snapshot was applied.
func (p *Projector) ApplyLogSnapshot(entries []types.LogEntry, source types.Source, seq uint64) bool {
	if err := types.ValidateLogSnapshot(entries); err != nil {
		p.sink.Report(context.Background(), err, "component", "projector", "source", source.String())
		return false
	}

	p.mu.Lock()
	if source != types.SourcePushUpdate && seq <= p.highestApplied {
		highest := p.highestApplied
		p.mu.Unlock()
		logger.Debug("Discarding stale log snapshot",
			"source", source.String(),
			"sequence", seq,
			"highest_applied", highest)
		return false
	}
	if seq > p.highestApplied {
		p.highestApplied = seq
	}
	p.logs = cloneLogs(entries)
	p.logGen++
	gen := p.logGen
	snapshot := cloneLogs(p.logs)
	p.mu.Unlock()

	p.renderMu.Lock()
	if gen > p.renderedLogGen {
		p.renderedLogGen = gen
		p.renderer.RenderLogs(snapshot)
	}
	p.renderMu.Unlock()
	return true
}

// ApplyTaskSnapshot replaces the task store with tasks. Task snapshots are
// last-arrival-wins. Pushed and initially loaded tasks due within the
// look-ahead window raise reminders.
func (p *Projector) ApplyTaskSnapshot(tasks []types.Task, source types.Source) bool {
	if err := types.ValidateTaskSnapshot(tasks); err != nil {
		p.sink.Report(context.Background(), err, "component", "projector", "source", source.String())
		return false
	}

	p.mu.Lock()
	p.tasks = cloneTasks(tasks)
	p.taskGen++
	gen := p.taskGen
	snapshot := cloneTasks(p.tasks)
	p.mu.Unlock()

	p.renderMu.Lock()
	if gen > p.renderedTaskGen {
		p.renderedTaskGen = gen
		p.renderer.RenderTasks(snapshot)
	}
	p.renderMu.Unlock()

	if source == types.SourcePushUpdate || source == types.SourceInitialLoad {
		p.remindDue(context.Background(), snapshot)
	}
	return true
}

// NotifyUpcoming raises reminders for tasks the server declared upcoming and
// returns how many were delivered. Tasks already reminded are skipped.
func (p *Projector) NotifyUpcoming(ctx context.Context, tasks []types.Task) int {
	fired := 0
	for _, t := range tasks {
		if p.remind(ctx, t) {
			fired++
		}
	}
	return fired
}

// HandlePush applies a push event. It is registered as a push channel
// subscriber for both event kinds.
func (p *Projector) HandlePush(event types.PushEvent) {
	switch event.Kind {
	case types.EventLogUpdate:
		p.ApplyLogSnapshot(event.Logs, types.SourcePushUpdate, p.NextSequence())
	case types.EventTaskUpdate:
		p.ApplyTaskSnapshot(event.Tasks, types.SourcePushUpdate)
	}
}

// Logs returns a copy of the log store
func (p *Projector) Logs() []types.LogEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return cloneLogs(p.logs)
}

// Tasks returns a copy of the task store
func (p *Projector) Tasks() []types.Task {
	p.mu.Lock()
	defer p.mu.Unlock()
	return cloneTasks(p.tasks)
}

// HighestApplied returns the sequence of the newest applied log snapshot
func (p *Projector) HighestApplied() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.highestApplied
}

func (p *Projector) remindDue(ctx context.Context, tasks []types.Task) {
	now := p.now()
	horizon := now.Add(p.lookahead)
	for _, t := range tasks {
		at, err := t.Scheduled()
		if err != nil || at.Before(now) || at.After(horizon) {
			continue
		}
		p.remind(ctx, t)
	}
}

// remind delivers a reminder for t unless its key was already recorded
func (p *Projector) remind(ctx context.Context, t types.Task) bool {
	key := t.ReminderKey()
	fresh, err := p.ledger.MarkIfNew(ctx, key)
	if err != nil {
		p.sink.Report(ctx, err, "component", "projector", "reminder", key)
		return false
	}
	if !fresh {
		return false
	}
	if err := p.notifier.Notify(ctx, t); err != nil {
		p.sink.Report(ctx, err, "component", "projector", "reminder", key)
		return false
	}
	return true
}

func cloneLogs(in []types.LogEntry) []types.LogEntry {
	if in == nil {
		return nil
	}
	out := make([]types.LogEntry, len(in))
	copy(out, in)
	return out
}

func cloneTasks(in []types.Task) []types.Task {
	if in == nil {
		return nil
	}
	out := make([]types.Task, len(in))
	copy(out, in)
	return out
}

type nopRenderer struct{}

func (nopRenderer) RenderLogs([]types.LogEntry) {}
func (nopRenderer) RenderTasks([]types.Task)    {}

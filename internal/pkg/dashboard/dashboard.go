// Package dashboard builds the process-wide object graph: one transport
// client, one projector, one push channel and the command handlers, wired
// together and run as a unit.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/endorses/dashsync/internal/pkg/commands"
	"github.com/endorses/dashsync/internal/pkg/constants"
	"github.com/endorses/dashsync/internal/pkg/i18n"
	"github.com/endorses/dashsync/internal/pkg/logger"
	"github.com/endorses/dashsync/internal/pkg/observe"
	"github.com/endorses/dashsync/internal/pkg/projector"
	"github.com/endorses/dashsync/internal/pkg/pushchannel"
	"github.com/endorses/dashsync/internal/pkg/reminders"
	"github.com/endorses/dashsync/internal/pkg/transport"
	"github.com/endorses/dashsync/internal/pkg/types"
)

// Config holds everything needed to build a Dashboard
type Config struct {
	Server transport.ClientConfig

	// PushPath is the push endpoint relative to the server URL
	PushPath string

	MinBackoff time.Duration
	MaxBackoff time.Duration

	// UpcomingInterval is the period of the upcoming-task check
	UpcomingInterval time.Duration

	// Lookahead is the reminder window for pushed tasks
	Lookahead time.Duration

	// LedgerPath selects a SQLite reminder ledger; empty keeps it in memory
	LedgerPath string

	ExportDir string
	Locale    string
	Sink      observe.Sink
}

// Frontend is what the dashboard renders into. Every method may be called
// from any goroutine.
type Frontend interface {
	projector.Renderer
	transport.Indicator
	commands.Feedback
	ChannelStateChanged(state types.ChannelState)
}

// Dashboard owns the singleton components of one process
type Dashboard struct {
	Client    *transport.Client
	Loading   *transport.LoadingIndicator
	Projector *projector.Projector
	Channel   *pushchannel.Manager
	Handlers  *commands.Handlers
	Ledger    reminders.Ledger
	Printer   *i18n.Printer

	sink             observe.Sink
	upcomingInterval time.Duration
	pruneInterval    time.Duration
	lookahead        time.Duration
	unsubscribe      []func()

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New builds the dashboard. front may be nil for headless use.
func New(config Config, front Frontend) (*Dashboard, error) {
	if front == nil {
		front = headless{}
	}
	sink := config.Sink
	if sink == nil {
		sink = observe.NewLogSink()
	}
	printer := i18n.New(config.Locale)

	client, err := transport.NewClient(config.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport client: %w", err)
	}

	pushPath := config.PushPath
	if pushPath == "" {
		pushPath = constants.DefaultPushPath
	}
	dialer, err := pushchannel.NewWebsocketDialer(pushchannel.PushURL(client.BaseURL(), pushPath), config.Server.TLS)
	if err != nil {
		return nil, fmt.Errorf("failed to create push dialer: %w", err)
	}

	ledger, err := reminders.Open(config.LedgerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open reminder ledger: %w", err)
	}

	notifier := reminders.Notifier(reminders.LogNotifier{})
	if n, ok := front.(reminders.Notifier); ok {
		notifier = n
	}

	proj := projector.New(projector.Config{
		Renderer:  front,
		Sink:      sink,
		Ledger:    ledger,
		Notifier:  notifier,
		Lookahead: config.Lookahead,
	})

	loading := transport.NewLoadingIndicator(front)
	handlers := commands.New(commands.Config{
		Requester: client.WithLoading(loading),
		View:      proj,
		Feedback:  front,
		Saver:     commands.FileSaver{Dir: config.ExportDir},
		Sink:      sink,
		Printer:   printer,
	})

	channel := pushchannel.NewManager(pushchannel.Config{
		MinBackoff: config.MinBackoff,
		MaxBackoff: config.MaxBackoff,
		Sink:       sink,
	}, dialer)
	channel.SetResync(handlers.Resync)
	channel.OnStateChange(front.ChannelStateChanged)

	interval := config.UpcomingInterval
	if interval <= 0 {
		interval = constants.DefaultUpcomingInterval
	}

	return &Dashboard{
		Client:    client,
		Loading:   loading,
		Projector: proj,
		Channel:   channel,
		Handlers:  handlers,
		Ledger:    ledger,
		Printer:   printer,
		sink:      sink,
		unsubscribe: []func(){
			channel.Subscribe(types.EventLogUpdate, proj.HandlePush),
			channel.Subscribe(types.EventTaskUpdate, proj.HandlePush),
		},
		upcomingInterval: interval,
		pruneInterval:    constants.LedgerPruneInterval,
		lookahead:        config.Lookahead,
	}, nil
}

// Run starts the push channel, performs the initial load and runs the
// periodic upcoming-task check and ledger pruning until ctx is cancelled or
// Close is called.
func (d *Dashboard) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	d.mu.Lock()
	d.cancel = cancel
	d.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.Channel.Run(gctx)
	})
	g.Go(func() error {
		if err := d.Handlers.InitialLoad(gctx); err != nil && gctx.Err() == nil {
			logger.Warn("Initial load failed", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		d.pollUpcoming(gctx)
		return nil
	})
	g.Go(func() error {
		d.pruneLedger(gctx)
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (d *Dashboard) pollUpcoming(ctx context.Context) {
	ticker := time.NewTicker(d.upcomingInterval)
	defer ticker.Stop()

	for {
		if _, err := d.Handlers.CheckUpcomingTasks(ctx); err != nil && ctx.Err() == nil {
			logger.Debug("Upcoming task check failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (d *Dashboard) pruneLedger(ctx context.Context) {
	ticker := time.NewTicker(d.pruneInterval)
	defer ticker.Stop()

	for {
		cutoff := reminders.RetentionCutoff(time.Now(), d.lookahead)
		if _, err := reminders.PruneBefore(ctx, d.Ledger, cutoff); err != nil && ctx.Err() == nil {
			logger.Warn("Reminder ledger prune failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Close stops Run and releases the push channel and the reminder ledger
func (d *Dashboard) Close() error {
	d.mu.Lock()
	cancel := d.cancel
	d.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	for _, unsubscribe := range d.unsubscribe {
		unsubscribe()
	}
	return errors.Join(d.Channel.Close(), d.Ledger.Close())
}

// headless is the frontend used when nothing is attached: renders are
// dropped and feedback goes to the log
type headless struct {
	commands.LogFeedback
}

func (headless) RenderLogs([]types.LogEntry) {}
func (headless) RenderTasks([]types.Task)    {}
func (headless) Show()                       {}
func (headless) Hide()                       {}

func (headless) ChannelStateChanged(state types.ChannelState) {
	logger.Info("Push channel state", "state", state.String())
}

// Package pushchannel owns the single long-lived push connection: it dials,
// decodes inbound frames into typed events, fans them out to subscribers, and
// reconnects with backoff when the connection drops.
package pushchannel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/endorses/dashsync/internal/pkg/constants"
	"github.com/endorses/dashsync/internal/pkg/logger"
	"github.com/endorses/dashsync/internal/pkg/observe"
	"github.com/endorses/dashsync/internal/pkg/types"
)

// ErrAlreadyRunning is returned by Run when another Run is active
var ErrAlreadyRunning = errors.New("push channel already running")

// Handler receives decoded events of one kind
type Handler func(types.PushEvent)

// ResyncFunc performs a full pull of server state. It is called after the
// channel reopens following a Reconnecting period, before any frame from the
// new connection is dispatched.
type ResyncFunc func(ctx context.Context) error

// Config holds configuration for the manager
type Config struct {
	// MinBackoff is the first reconnect delay; values below one second are raised to it
	MinBackoff time.Duration

	// MaxBackoff caps the exponential reconnect delay (default: 30s)
	MaxBackoff time.Duration

	// Sink receives malformed-frame and resync errors (default: log sink)
	Sink observe.Sink
}

type subscription struct {
	id      int
	handler Handler
}

// Manager is the push channel state machine:
//
//	Connecting -> Open -> (Closed | Reconnecting -> Connecting)
//
// Closed is terminal and only reached through Close or cancellation of Run.
type Manager struct {
	dialer     Dialer
	sink       observe.Sink
	minBackoff time.Duration
	maxBackoff time.Duration
	after      func(time.Duration) <-chan time.Time

	mu          sync.RWMutex
	state       types.ChannelState
	subscribers map[types.EventKind][]subscription
	listeners   []func(types.ChannelState)
	resync      ResyncFunc
	nextSubID   int
	running     bool
	closed      bool
	cancel      context.CancelFunc
	conn        Conn
	resyncs     int
}

// NewManager creates a manager in the Connecting state. Nothing is dialed
// until Run is called.
func NewManager(config Config, dialer Dialer) *Manager {
	minBackoff := config.MinBackoff
	if minBackoff < constants.MinReconnectBackoff {
		minBackoff = constants.MinReconnectBackoff
	}
	maxBackoff := config.MaxBackoff
	if maxBackoff == 0 {
		maxBackoff = constants.MaxReconnectBackoff
	}
	if maxBackoff < minBackoff {
		maxBackoff = minBackoff
	}
	sink := config.Sink
	if sink == nil {
		sink = observe.NewLogSink()
	}

	return &Manager{
		dialer:      dialer,
		sink:        sink,
		minBackoff:  minBackoff,
		maxBackoff:  maxBackoff,
		after:       time.After,
		state:       types.ChannelConnecting,
		subscribers: make(map[types.EventKind][]subscription),
	}
}

// State returns the current channel state
func (m *Manager) State() types.ChannelState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Resyncs returns how many resynchronizations have been requested
func (m *Manager) Resyncs() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resyncs
}

// Subscribe registers h for events of kind. Handlers of the same kind run in
// registration order on the reader goroutine. The returned func unsubscribes.
func (m *Manager) Subscribe(kind types.EventKind, h Handler) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextSubID++
	id := m.nextSubID
	m.subscribers[kind] = append(m.subscribers[kind], subscription{id: id, handler: h})

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		subs := m.subscribers[kind]
		for i, s := range subs {
			if s.id == id {
				m.subscribers[kind] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// OnStateChange registers fn to be called after every state transition
func (m *Manager) OnStateChange(fn func(types.ChannelState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// SetResync installs the resynchronization callback
func (m *Manager) SetResync(fn ResyncFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resync = fn
}

// Run dials and serves the channel until ctx is cancelled or Close is
// called, reconnecting with exponential backoff after every failure. Once Run
// returns the manager is Closed and later calls to Run return nil at once.
func (m *Manager) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.running = true
	m.cancel = cancel
	m.mu.Unlock()

	// however Run ends, the manager is closed for good
	defer func() {
		m.mu.Lock()
		m.running = false
		m.closed = true
		m.cancel = nil
		m.mu.Unlock()
		m.setState(types.ChannelClosed)
	}()

	failures := 0
	reconnecting := false
	for {
		if ctx.Err() != nil {
			return nil
		}
		m.setState(types.ChannelConnecting)

		dialCtx, dialCancel := context.WithTimeout(ctx, constants.DialTimeout)
		conn, err := m.dialer.Dial(dialCtx)
		dialCancel()
		if err == nil {
			failures = 0
			err = m.serve(ctx, conn, reconnecting)
		}
		if ctx.Err() != nil {
			return nil
		}

		failures++
		reconnecting = true
		delay := m.backoff(failures)
		logger.Warn("Push channel lost, scheduling reconnect",
			"error", err,
			"attempt", failures,
			"backoff", delay)
		m.setState(types.ChannelReconnecting)

		select {
		case <-ctx.Done():
			return nil
		case <-m.after(delay):
		}
	}
}

// Close shuts the channel down permanently
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closed = true
	cancel := m.cancel
	conn := m.conn
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	var err error
	if conn != nil {
		err = conn.Close()
	}
	m.setState(types.ChannelClosed)
	return err
}

// serve reads frames from conn until it fails or ctx ends
func (m *Manager) serve(ctx context.Context, conn Conn, resync bool) error {
	m.mu.Lock()
	m.conn = conn
	m.mu.Unlock()

	// ReadMessage does not observe ctx; closing the conn unblocks it
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer func() {
		stop()
		m.mu.Lock()
		m.conn = nil
		m.mu.Unlock()
		_ = conn.Close()
	}()

	m.setState(types.ChannelOpen)
	logger.Info("Push channel open", "resync", resync)

	if resync {
		m.runResync(ctx)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read push frame: %w", err)
		}
		m.dispatch(ctx, data)
	}
}

func (m *Manager) runResync(ctx context.Context) {
	m.mu.Lock()
	fn := m.resync
	m.resyncs++
	m.mu.Unlock()

	if fn == nil {
		return
	}
	if err := fn(ctx); err != nil && ctx.Err() == nil {
		m.sink.Report(ctx, fmt.Errorf("resync after reconnect: %w", err), "component", "pushchannel")
	}
}

// dispatch decodes one frame and hands it to the subscribers of its kind.
// Bad frames are reported and dropped; the channel stays up.
func (m *Manager) dispatch(ctx context.Context, data []byte) {
	event, err := types.DecodePushEvent(data)
	if err != nil {
		if errors.Is(err, types.ErrUnknownEventKind) {
			logger.Debug("Ignoring push frame", "reason", err.Error())
			return
		}
		m.sink.Report(ctx, err, "component", "pushchannel", "frame_bytes", len(data))
		return
	}

	m.mu.RLock()
	subs := make([]subscription, len(m.subscribers[event.Kind]))
	copy(subs, m.subscribers[event.Kind])
	m.mu.RUnlock()

	for _, s := range subs {
		m.invoke(ctx, s.handler, event)
	}
}

func (m *Manager) invoke(ctx context.Context, h Handler, event types.PushEvent) {
	defer func() {
		if r := recover(); r != nil {
			m.sink.Report(ctx, fmt.Errorf("panic in %s subscriber: %v", event.Kind, r), "component", "pushchannel")
		}
	}()
	h(event)
}

// backoff returns the delay before reconnect attempt n (1-based):
// min, 2*min, 4*min, ... capped at max
func (m *Manager) backoff(n int) time.Duration {
	shift := min(n-1, 16)
	d := m.minBackoff << uint(shift)
	if d > m.maxBackoff || d <= 0 {
		d = m.maxBackoff
	}
	return d
}

// setState transitions and notifies listeners. Closed is terminal.
func (m *Manager) setState(s types.ChannelState) {
	m.mu.Lock()
	if m.state == s || m.state == types.ChannelClosed {
		m.mu.Unlock()
		return
	}
	prev := m.state
	m.state = s
	listeners := make([]func(types.ChannelState), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	logger.Debug("Push channel state change", "from", prev.String(), "to", s.String())
	for _, fn := range listeners {
		fn(s)
	}
}

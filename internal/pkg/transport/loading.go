package transport

import (
	"context"
	"encoding/json"
	"sync"
)

// Indicator is the shared loading widget
type Indicator interface {
	Show()
	Hide()
}

// LoadingIndicator reference-counts outstanding wrapped calls. The widget is
// shown when the count leaves zero and hidden when it returns to zero.
type LoadingIndicator struct {
	mu        sync.Mutex
	count     int
	indicator Indicator
}

// NewLoadingIndicator creates a counter driving ind (which may be nil)
func NewLoadingIndicator(ind Indicator) *LoadingIndicator {
	return &LoadingIndicator{indicator: ind}
}

// SetIndicator replaces the widget. If calls are outstanding the old widget
// is hidden and the new one shown immediately.
func (l *LoadingIndicator) SetIndicator(ind Indicator) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.count > 0 {
		if l.indicator != nil {
			l.indicator.Hide()
		}
		if ind != nil {
			ind.Show()
		}
	}
	l.indicator = ind
}

// Acquire registers an outstanding call and returns its release func.
// Calling release more than once has no further effect.
func (l *LoadingIndicator) Acquire() (release func()) {
	l.mu.Lock()
	l.count++
	if l.count == 1 && l.indicator != nil {
		l.indicator.Show()
	}
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.count--
			if l.count == 0 && l.indicator != nil {
				l.indicator.Hide()
			}
		})
	}
}

// Outstanding returns the number of unreleased calls
func (l *LoadingIndicator) Outstanding() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// LoadingClient wraps a Client so every call holds the loading indicator for
// its whole duration, on success and failure alike
type LoadingClient struct {
	client  *Client
	loading *LoadingIndicator
}

// WithLoading returns a loading-aware view of c
func (c *Client) WithLoading(l *LoadingIndicator) *LoadingClient {
	return &LoadingClient{client: c, loading: l}
}

// Request is Client.Request under the loading indicator
func (lc *LoadingClient) Request(ctx context.Context, endpoint, method string, body any) (json.RawMessage, error) {
	release := lc.loading.Acquire()
	defer release()
	return lc.client.Request(ctx, endpoint, method, body)
}

// Download is Client.Download under the loading indicator
func (lc *LoadingClient) Download(ctx context.Context, endpoint string) (*Blob, error) {
	release := lc.loading.Acquire()
	defer release()
	return lc.client.Download(ctx, endpoint)
}

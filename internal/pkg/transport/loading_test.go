package transport

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingIndicator struct {
	mu      sync.Mutex
	shows   int
	hides   int
	visible bool
}

func (c *countingIndicator) Show() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shows++
	c.visible = true
}

func (c *countingIndicator) Hide() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hides++
	c.visible = false
}

func (c *countingIndicator) isVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

func TestLoadingIndicator_OverlappingCalls(t *testing.T) {
	ind := &countingIndicator{}
	l := NewLoadingIndicator(ind)

	releaseA := l.Acquire()
	releaseB := l.Acquire()
	assert.True(t, ind.isVisible())
	assert.Equal(t, 2, l.Outstanding())

	// First call finishing must not hide the indicator while B is pending
	releaseA()
	assert.True(t, ind.isVisible())

	releaseA() // idempotent
	assert.Equal(t, 1, l.Outstanding())

	releaseB()
	assert.False(t, ind.isVisible())
	assert.Equal(t, 1, ind.shows)
	assert.Equal(t, 1, ind.hides)
}

func TestLoadingIndicator_SetIndicatorWhilePending(t *testing.T) {
	l := NewLoadingIndicator(nil)
	release := l.Acquire()

	ind := &countingIndicator{}
	l.SetIndicator(ind)
	assert.True(t, ind.isVisible())

	release()
	assert.False(t, ind.isVisible())
}

func TestLoadingIndicator_ReplaceWhilePendingHidesOld(t *testing.T) {
	old := &countingIndicator{}
	l := NewLoadingIndicator(old)
	release := l.Acquire()
	require.True(t, old.isVisible())

	replacement := &countingIndicator{}
	l.SetIndicator(replacement)
	assert.False(t, old.isVisible(), "replaced widget must not stay visible")
	assert.True(t, replacement.isVisible())

	release()
	assert.False(t, replacement.isVisible())
	assert.Equal(t, 1, old.shows)
	assert.Equal(t, 1, old.hides)
}

func TestLoadingIndicator_ReplaceWhenIdleIsSilent(t *testing.T) {
	old := &countingIndicator{}
	l := NewLoadingIndicator(old)

	replacement := &countingIndicator{}
	l.SetIndicator(replacement)
	assert.Zero(t, old.hides)
	assert.Zero(t, replacement.shows)
}

func TestLoadingClient_ReleasesOnFailure(t *testing.T) {
	ind := &countingIndicator{}
	loading := NewLoadingIndicator(ind)

	block := make(chan struct{})
	entered := make(chan struct{}, 2)
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		entered <- struct{}{}
		<-block
		if r.URL.Path == "/api/stop_attack" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	lc := c.WithLoading(loading)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, endpoint := range []string{"/api/start_attack", "/api/stop_attack"} {
		wg.Add(1)
		go func(i int, endpoint string) {
			defer wg.Done()
			_, errs[i] = lc.Request(context.Background(), endpoint, http.MethodPost, nil)
		}(i, endpoint)
	}

	<-entered
	<-entered
	assert.Equal(t, 2, loading.Outstanding())
	assert.True(t, ind.isVisible())

	close(block)
	wg.Wait()

	require.NoError(t, errs[0])
	require.Error(t, errs[1])
	assert.Equal(t, 0, loading.Outstanding())
	assert.False(t, ind.isVisible())
	assert.Equal(t, 1, ind.shows)
	assert.Equal(t, 1, ind.hides)
}

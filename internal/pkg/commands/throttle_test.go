package commands

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endorses/dashsync/internal/pkg/types"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestThrottle(maxFailures int, block time.Duration) (*LoginThrottle, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	th := NewLoginThrottle(maxFailures, block)
	th.now = clock.Now
	return th, clock
}

func TestLoginThrottle_BasicBlocking(t *testing.T) {
	th, clock := newTestThrottle(3, time.Minute)

	assert.False(t, th.IsBlocked("admin"))
	assert.False(t, th.RecordFailure("admin"))
	assert.False(t, th.RecordFailure("admin"))
	assert.True(t, th.RecordFailure("admin"))
	assert.True(t, th.IsBlocked("admin"))
	assert.True(t, th.IsBlocked(" ADMIN "), "usernames compare case-insensitively")

	clock.Advance(time.Minute)
	assert.False(t, th.IsBlocked("admin"))
	assert.False(t, th.RecordFailure("admin"), "expired block starts a fresh count")
}

func TestLoginThrottle_SuccessResetsFailures(t *testing.T) {
	th, _ := newTestThrottle(3, time.Minute)

	th.RecordFailure("admin")
	th.RecordFailure("admin")
	th.RecordSuccess("admin")

	assert.False(t, th.RecordFailure("admin"))
	assert.False(t, th.RecordFailure("admin"))
	assert.True(t, th.RecordFailure("admin"))
}

func TestLoginThrottle_WindowExpiryResetsCount(t *testing.T) {
	th, clock := newTestThrottle(2, time.Minute)

	assert.False(t, th.RecordFailure("admin"))
	clock.Advance(2 * time.Minute)
	assert.False(t, th.RecordFailure("admin"))
	assert.True(t, th.RecordFailure("admin"))
}

func TestLoginThrottle_UsersIndependent(t *testing.T) {
	th, _ := newTestThrottle(2, time.Minute)

	th.RecordFailure("alice")
	th.RecordFailure("alice")

	assert.True(t, th.IsBlocked("alice"))
	assert.False(t, th.IsBlocked("bob"))
}

func TestLoginThrottle_PrunesStaleRecords(t *testing.T) {
	th, clock := newTestThrottle(5, time.Minute)

	th.RecordFailure("alice")
	clock.Advance(3 * time.Minute)
	th.RecordFailure("bob")

	th.mu.Lock()
	defer th.mu.Unlock()
	assert.Len(t, th.failures, 1)
	assert.Contains(t, th.failures, "bob")
}

func TestLoginThrottle_Defaults(t *testing.T) {
	th := NewLoginThrottle(0, 0)
	assert.Equal(t, DefaultMaxLoginFailures, th.maxFailures)
	assert.Equal(t, DefaultLoginBlock, th.blockDuration)
}

func TestLogin_BlockedAfterRejections(t *testing.T) {
	f := newFixture(t, "en")
	f.h.throttle, _ = newTestThrottle(2, time.Minute)
	f.mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"success":false,"message":"Invalid credentials"}`)
	})

	creds := Credentials{Username: "admin", Password: "wrong"}
	for i := 0; i < 2; i++ {
		err := f.h.Login(context.Background(), creds)
		require.Error(t, err)
		assert.True(t, types.IsDomainFailure(err))
	}

	err := f.h.Login(context.Background(), creds)
	require.Error(t, err)
	assert.True(t, types.IsValidationError(err))
	assert.Equal(t, int32(2), f.calls.Load(), "blocked login is never sent")
	assert.Equal(t, "Too many failed logins for admin, try again later", f.feedback.failures[len(f.feedback.failures)-1])
}

func TestLogin_TransportErrorNotCounted(t *testing.T) {
	f := newFixture(t, "en")
	f.h.throttle, _ = newTestThrottle(1, time.Minute)
	f.mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	err := f.h.Login(context.Background(), Credentials{Username: "admin", Password: "pw"})
	assert.True(t, types.IsTransportError(err))
	assert.False(t, f.h.throttle.IsBlocked("admin"))
}

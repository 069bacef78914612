package commands

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endorses/dashsync/internal/pkg/i18n"
	"github.com/endorses/dashsync/internal/pkg/observe"
	"github.com/endorses/dashsync/internal/pkg/projector"
	"github.com/endorses/dashsync/internal/pkg/transport"
	"github.com/endorses/dashsync/internal/pkg/types"
)

type recordingFeedback struct {
	mu        sync.Mutex
	successes []string
	failures  []string
}

func (f *recordingFeedback) Success(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.successes = append(f.successes, message)
}

func (f *recordingFeedback) Failure(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, message)
}

type fixture struct {
	h        *Handlers
	view     *projector.Projector
	feedback *recordingFeedback
	sink     *observe.Recorder
	mux      *http.ServeMux
	calls    atomic.Int32
	dir      string
}

func newFixture(t *testing.T, locale string) *fixture {
	t.Helper()
	f := &fixture{
		feedback: &recordingFeedback{},
		sink:     &observe.Recorder{},
		mux:      http.NewServeMux(),
		dir:      t.TempDir(),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := transport.NewClient(transport.ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	f.view = projector.New(projector.Config{
		Sink: f.sink,
		Now:  func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	})
	f.h = New(Config{
		Requester: client,
		View:      f.view,
		Feedback:  f.feedback,
		Saver:     FileSaver{Dir: f.dir},
		Sink:      f.sink,
		Printer:   i18n.New(locale),
	})
	return f
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestFilterLogs_ErrorLevelShowsExactlyThatRow(t *testing.T) {
	f := newFixture(t, "en")
	f.mux.HandleFunc("/api/filter_logs", func(w http.ResponseWriter, r *http.Request) {
		var got LogFilter
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, LogFilter{Level: "ERROR"}, got)
		writeJSON(w, `{"logs":[{"date":"2024-01-01","level":"ERROR","tag":"auth","message":"fail"}]}`)
	})

	entries, err := f.h.FilterLogs(context.Background(), LogFilter{Level: "error"})
	require.NoError(t, err)

	want := []types.LogEntry{{Date: "2024-01-01", Level: types.LevelError, Tag: "auth", Message: "fail"}}
	assert.Equal(t, want, entries)
	assert.Equal(t, want, f.view.Logs())
	assert.Equal(t, []string{"Showing 1 log entry"}, f.feedback.successes)
	assert.Equal(t, LogFilter{Level: "ERROR"}, f.h.LastFilter())
}

func TestFilterLogs_PushDuringRequestWins(t *testing.T) {
	f := newFixture(t, "en")
	received := make(chan struct{})
	release := make(chan struct{})
	var releaseOnce sync.Once
	unblock := func() { releaseOnce.Do(func() { close(release) }) }
	t.Cleanup(unblock)

	f.mux.HandleFunc("/api/filter_logs", func(w http.ResponseWriter, r *http.Request) {
		close(received)
		<-release
		writeJSON(w, `{"logs":[{"date":"2024-01-01","level":"INFO","tag":"boot","message":"pulled"}]}`)
	})

	type result struct {
		entries []types.LogEntry
		err     error
	}
	done := make(chan result, 1)
	go func() {
		entries, err := f.h.FilterLogs(context.Background(), LogFilter{})
		done <- result{entries, err}
	}()

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("filter request never reached the server")
	}

	pushed := []types.LogEntry{{Date: "2024-01-01", Level: types.LevelError, Tag: "auth", Message: "pushed"}}
	require.True(t, f.view.ApplyLogSnapshot(pushed, types.SourcePushUpdate, f.view.NextSequence()))
	unblock()

	var res result
	select {
	case res = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("FilterLogs did not return")
	}
	require.NoError(t, res.err)
	require.Len(t, res.entries, 1)
	assert.Equal(t, "pulled", res.entries[0].Message, "caller still gets the server result")

	assert.Equal(t, pushed, f.view.Logs(), "older reply must not overwrite the push")
	assert.Empty(t, f.feedback.successes, "discarded reply shows no count")
	assert.Empty(t, f.feedback.failures)
}

func TestFilterLogs_UnknownLevelNeverSent(t *testing.T) {
	f := newFixture(t, "en")

	_, err := f.h.FilterLogs(context.Background(), LogFilter{Level: "LOUD"})
	require.Error(t, err)
	assert.True(t, types.IsValidationError(err))
	assert.Equal(t, int32(0), f.calls.Load())
	assert.Equal(t, []string{`Unknown log level "LOUD"`}, f.feedback.failures)
}

func TestFilterLogs_MalformedReplyLeavesStoreAndReports(t *testing.T) {
	f := newFixture(t, "en")
	f.mux.HandleFunc("/api/filter_logs", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"rows":[]}`)
	})

	_, err := f.h.FilterLogs(context.Background(), LogFilter{})
	require.Error(t, err)
	assert.True(t, types.IsParseError(err))
	assert.Nil(t, f.view.Logs())
	assert.Equal(t, 1, f.sink.Len())
	assert.Equal(t, []string{"The server sent an unreadable response"}, f.feedback.failures)
}

func TestFilterLogs_TransportErrorLocalized(t *testing.T) {
	f := newFixture(t, "ru")
	f.mux.HandleFunc("/api/filter_logs", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := f.h.FilterLogs(context.Background(), LogFilter{})
	require.Error(t, err)
	assert.True(t, types.IsTransportError(err))
	assert.Equal(t, []string{"Ошибка запроса: 500 Internal Server Error"}, f.feedback.failures)
}

func TestNoResponseShowsGenericMessage(t *testing.T) {
	client, err := transport.NewClient(transport.ClientConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	require.NoError(t, err)
	feedback := &recordingFeedback{}
	h := New(Config{Requester: client, View: projector.New(projector.Config{}), Feedback: feedback})

	err = h.StartAttack(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNoResponse)
	assert.Equal(t, []string{"Request failed: the server did not respond"}, feedback.failures)
}

func TestExportLogs_SavesBlobVerbatim(t *testing.T) {
	f := newFixture(t, "en")
	csv := "date,level,tag,message\n2024-01-01,ERROR,auth,fail\n"
	f.mux.HandleFunc("/api/export_logs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "csv", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(csv))
	})

	path, err := f.h.ExportLogs(context.Background(), "CSV")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.dir, "logs.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, csv, string(data))
	assert.Equal(t, []string{"Exported logs to " + path}, f.feedback.successes)
}

func TestExportLogs_Validation(t *testing.T) {
	f := newFixture(t, "en")

	_, err := f.h.ExportLogs(context.Background(), "")
	assert.True(t, types.IsValidationError(err))
	_, err = f.h.ExportLogs(context.Background(), "pdf")
	assert.True(t, types.IsValidationError(err))

	assert.Equal(t, int32(0), f.calls.Load())
	assert.Equal(t, []string{"format is required", `Unsupported export format "pdf"`}, f.feedback.failures)
}

func TestLogin(t *testing.T) {
	f := newFixture(t, "en")
	f.mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "admin", body["username"])
		assert.Equal(t, true, body["rememberMe"])
		assert.Equal(t, "123456", body["totp"])
		writeJSON(w, `{"success":true,"message":""}`)
	})

	require.NoError(t, f.h.Login(context.Background(), Credentials{
		Username: " admin ", Password: "secret", RememberMe: true, TOTP: "123456",
	}))
	assert.Equal(t, []string{"Logged in as admin"}, f.feedback.successes)

	err := f.h.Login(context.Background(), Credentials{Username: "admin"})
	assert.True(t, types.IsValidationError(err))
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestDomainFailureShownVerbatim(t *testing.T) {
	f := newFixture(t, "ru")
	f.mux.HandleFunc("/api/add_user", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"success":false,"message":"User already exists"}`)
	})

	err := f.h.AddUser(context.Background(), NewUser{Username: "bob", Password: "pw", Role: "viewer"})
	require.Error(t, err)
	assert.True(t, types.IsDomainFailure(err))
	assert.Equal(t, []string{"User already exists"}, f.feedback.failures)
}

func TestUserAndAttackActions(t *testing.T) {
	f := newFixture(t, "en")
	var paths []string
	var mu sync.Mutex
	ok := func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		assert.Equal(t, http.MethodPost, r.Method)
		writeJSON(w, `{"success":true,"message":"done"}`)
	}
	for _, p := range []string{"/api/start_attack", "/api/stop_attack", "/api/add_user", "/api/delete_user"} {
		f.mux.HandleFunc(p, ok)
	}
	ctx := context.Background()

	require.NoError(t, f.h.StartAttack(ctx))
	require.NoError(t, f.h.StopAttack(ctx))
	require.NoError(t, f.h.AddUser(ctx, NewUser{Username: "bob", Password: "pw", Role: "viewer"}))
	require.NoError(t, f.h.DeleteUser(ctx, "bob"))

	assert.True(t, types.IsValidationError(f.h.AddUser(ctx, NewUser{Username: "bob", Password: "pw"})))
	assert.True(t, types.IsValidationError(f.h.DeleteUser(ctx, "  ")))

	assert.Equal(t, []string{"/api/start_attack", "/api/stop_attack", "/api/add_user", "/api/delete_user"}, paths)
	assert.Equal(t, []string{"done", "done", "done", "done"}, f.feedback.successes)
	assert.Equal(t, []string{"role is required", "username is required"}, f.feedback.failures)
}

func TestTasksAndResync(t *testing.T) {
	f := newFixture(t, "en")
	var filters []LogFilter
	var mu sync.Mutex
	f.mux.HandleFunc("/api/filter_logs", func(w http.ResponseWriter, r *http.Request) {
		var got LogFilter
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		mu.Lock()
		filters = append(filters, got)
		mu.Unlock()
		writeJSON(w, `{"logs":[{"date":"2024-05-01","level":"WARNING","tag":"net","message":"slow"}]}`)
	})
	f.mux.HandleFunc("/api/scheduled_tasks", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"tasks":[{"name":"backup","time":"2024-05-01T12:05:00Z","description":"nightly"}]}`)
	})
	f.mux.HandleFunc("/api/upcoming_tasks", func(w http.ResponseWriter, r *http.Request) {
		// the same instant as a zone-less local wall clock time
		local := time.Date(2024, 5, 1, 12, 5, 0, 0, time.UTC).Local().Format("2006-01-02 15:04")
		writeJSON(w, `{"tasks":[{"name":"backup","time":"`+local+`"}]}`)
	})
	ctx := context.Background()

	require.NoError(t, f.h.InitialLoad(ctx))
	assert.Len(t, f.view.Logs(), 1)
	assert.Equal(t, "backup", f.view.Tasks()[0].Name)

	// the initial load already reminded for backup
	tasks, err := f.h.CheckUpcomingTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
	assert.Equal(t, 0, f.view.NotifyUpcoming(ctx, tasks))

	_, err = f.h.FilterLogs(ctx, LogFilter{Tag: "net"})
	require.NoError(t, err)
	require.NoError(t, f.h.Resync(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []LogFilter{{}, {Tag: "net"}, {Tag: "net"}}, filters)
	assert.Contains(t, f.feedback.successes, "Resynchronized with server")
}

func TestFileSaver_ReplacesExisting(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	s := FileSaver{Dir: dir}

	_, err := s.Save("logs.json", []byte("old"))
	require.NoError(t, err)
	path, err := s.Save("logs.json", []byte("new"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

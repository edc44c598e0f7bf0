package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hemanthreddy410/job-scraping-tool/internal/config"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/domain"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/events"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/scrape/types"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/store"
)

func newTestDeps(t *testing.T) Deps {
	t.Helper()
	dir := t.TempDir()

	db, err := store.Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db.Pool))

	cfgPath := filepath.Join(dir, "config.yml")
	cfg := config.DefaultConfig()
	require.NoError(t, config.SaveAtomic(cfgPath, cfg))

	cfgVal := &atomic.Value{}
	cfgVal.Store(cfg)
	statusVal := &atomic.Value{}
	statusVal.Store(types.RunStatus{})

	return Deps{
		DB:          db.Pool,
		Hub:         events.NewHub(),
		CfgVal:      cfgVal,
		RunStatus:   statusVal,
		UserCfgPath: cfgPath,
		LoadCfg:     func() (config.Config, error) { return config.Load(cfgPath) },
		TriggerRun: func(ctx context.Context, cfg config.Config) (domain.Result, error) {
			return domain.Result{RunID: "run-stub", State: domain.StateDone}, nil
		},
	}
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func archiveRun(t *testing.T, d Deps, id string, started time.Time) {
	t.Helper()
	posted := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	res := domain.Result{
		RunID: id,
		State: domain.StateDone,
		Jobs: []domain.Job{
			{Company: "Acme", Title: "Data Engineer", Location: "Remote",
				URL: "https://acme.example/j/1", PostedAt: &posted,
				Source: domain.SourceGreenhouse, ExternalID: "1"},
		},
		Stats: domain.SummaryStats{TotalRaw: 3, TotalUnique: 1, FilteredOut: 2,
			BySource:   map[domain.Source]int{domain.SourceGreenhouse: 1},
			ByCategory: map[string]int{"Data Engineering": 1}},
		Errors: []domain.FetchError{
			{Source: domain.SourceLever, Company: "Ghost", Kind: domain.KindSourceNotFound, Message: "board not found"},
		},
		StartedAt:  started,
		FinishedAt: started.Add(time.Minute),
	}
	require.NoError(t, store.SaveRun(context.Background(), d.DB, res))
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(NewMux(newTestDeps(t)))
	defer srv.Close()

	var body map[string]bool
	resp := getJSON(t, srv.URL+"/health", &body)
	assert.Equal(t, 200, resp.StatusCode)
	assert.True(t, body["ok"])
}

func TestStatusStartsIdle(t *testing.T) {
	srv := httptest.NewServer(NewMux(newTestDeps(t)))
	defer srv.Close()

	var st types.RunStatus
	getJSON(t, srv.URL+"/status", &st)
	assert.False(t, st.Running)
	assert.Empty(t, st.LastRunID)
}

func TestTriggerRunLifecycle(t *testing.T) {
	d := newTestDeps(t)
	gate := make(chan struct{})
	d.TriggerRun = func(ctx context.Context, cfg config.Config) (domain.Result, error) {
		<-gate
		return domain.Result{RunID: "run-42", State: domain.StateDone, Jobs: make([]domain.Job, 3)}, nil
	}
	srv := httptest.NewServer(NewMux(d))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/run", "application/json", nil)
	require.NoError(t, err)
	var ack map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
	resp.Body.Close()
	assert.Equal(t, true, ack["ok"])

	// a second trigger while the first is still going is refused
	resp, err = http.Post(srv.URL+"/run", "application/json", nil)
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
	resp.Body.Close()
	assert.Equal(t, false, ack["ok"])
	assert.Equal(t, "already running", ack["msg"])

	close(gate)
	assert.Eventually(t, func() bool {
		var st types.RunStatus
		getJSON(t, srv.URL+"/status", &st)
		return !st.Running && st.LastRunID == "run-42"
	}, 2*time.Second, 10*time.Millisecond)

	var st types.RunStatus
	getJSON(t, srv.URL+"/status", &st)
	assert.Equal(t, 3, st.LastJobs)
	assert.Empty(t, st.LastError)
	assert.NotEmpty(t, st.LastOkAt)
}

func TestTriggerRunRecordsFailure(t *testing.T) {
	d := newTestDeps(t)
	d.TriggerRun = func(ctx context.Context, cfg config.Config) (domain.Result, error) {
		return domain.Result{RunID: "run-bad", State: domain.StateFailed}, context.DeadlineExceeded
	}
	srv := httptest.NewServer(NewMux(d))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/run", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Eventually(t, func() bool {
		var st types.RunStatus
		getJSON(t, srv.URL+"/status", &st)
		return !st.Running && st.LastError != ""
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRunsListAndDetail(t *testing.T) {
	d := newTestDeps(t)
	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	archiveRun(t, d, "run-1", base)
	archiveRun(t, d, "run-2", base.Add(time.Hour))

	srv := httptest.NewServer(NewMux(d))
	defer srv.Close()

	var runs []store.RunRow
	getJSON(t, srv.URL+"/runs", &runs)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)

	runs = nil
	getJSON(t, srv.URL+"/runs?limit=1", &runs)
	assert.Len(t, runs, 1)

	var detail RunDetail
	resp := getJSON(t, srv.URL+"/runs/run-1", &detail)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "run-1", detail.Run.ID)
	require.Len(t, detail.Jobs, 1)
	assert.Equal(t, "Data Engineer", detail.Jobs[0].Title)
	require.Len(t, detail.Errors, 1)
	assert.Equal(t, domain.KindSourceNotFound, detail.Errors[0].Kind)
}

func TestRunsNotFound(t *testing.T) {
	srv := httptest.NewServer(NewMux(newTestDeps(t)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/runs/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/runs/a/b")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)
}

func TestConfigGetAndValidate(t *testing.T) {
	srv := httptest.NewServer(NewMux(newTestDeps(t)))
	defer srv.Close()

	var cfg config.Config
	getJSON(t, srv.URL+"/config", &cfg)
	assert.Equal(t, 38471, cfg.App.Port)

	var p map[string]string
	getJSON(t, srv.URL+"/config/path", &p)
	assert.Contains(t, p["path"], "config.yml")

	var vr config.Validation
	getJSON(t, srv.URL+"/config/validate", &vr)
	assert.True(t, vr.OK())
}

func TestConfigPut(t *testing.T) {
	d := newTestDeps(t)
	srv := httptest.NewServer(NewMux(d))
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.App.Port = 2222
	body, err := json.Marshal(cfg)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/config", bytes.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	var saved config.Config
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&saved))
	assert.Equal(t, 2222, saved.App.Port)

	// the running process sees the new config at once
	var current config.Config
	getJSON(t, srv.URL+"/config", &current)
	assert.Equal(t, 2222, current.App.Port)

	// and the file on disk agrees
	onDisk, err := config.Load(d.UserCfgPath)
	require.NoError(t, err)
	assert.Equal(t, 2222, onDisk.App.Port)
}

func TestConfigPutRejectsInvalid(t *testing.T) {
	srv := httptest.NewServer(NewMux(newTestDeps(t)))
	defer srv.Close()

	t.Run("bad json", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPut, srv.URL+"/config", bytes.NewReader([]byte("{nope")))
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, 400, resp.StatusCode)
	})

	t.Run("fails validation", func(t *testing.T) {
		var cfg config.Config // no sources enabled
		body, _ := json.Marshal(cfg)
		req, _ := http.NewRequest(http.MethodPut, srv.URL+"/config", bytes.NewReader(body))
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, 400, resp.StatusCode)

		var vr config.Validation
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&vr))
		assert.NotEmpty(t, vr.Errors)
	})
}

func TestDBCleanup(t *testing.T) {
	srv := httptest.NewServer(NewMux(newTestDeps(t)))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/db/cleanup", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, float64(0), body["deleted"])
}

func TestMethodNotAllowed(t *testing.T) {
	srv := httptest.NewServer(NewMux(newTestDeps(t)))
	defer srv.Close()

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodPost, "/status"},
		{http.MethodGet, "/run"},
		{http.MethodPost, "/runs"},
		{http.MethodDelete, "/config"},
		{http.MethodGet, "/db/cleanup"},
		{http.MethodPost, "/events"},
	} {
		req, _ := http.NewRequest(tc.method, srv.URL+tc.path, nil)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, 405, resp.StatusCode, "%s %s", tc.method, tc.path)
	}
}

func TestServeSSEStreamsEvents(t *testing.T) {
	hub := events.NewHub()
	h := EventsHandler{Hub: hub}
	srv := httptest.NewServer(http.HandlerFunc(h.ServeSSE))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	readFrame := func() string {
		t.Helper()
		var data string
		for {
			line, err := r.ReadString('\n')
			require.NoError(t, err)
			if line == "\n" {
				return data
			}
			if len(line) > 6 && line[:6] == "data: " {
				data = line[6 : len(line)-1]
			}
		}
	}

	// the stream opens with a ping envelope
	var ping events.Event
	require.NoError(t, json.Unmarshal([]byte(readFrame()), &ping))
	assert.Equal(t, events.TypePing, ping.Type)

	// the subscriber is registered once the ping arrives, so this
	// publish cannot be lost
	hub.Publish(events.MakeEvent("run-1", events.TypeRunState, 1, map[string]string{"state": "fetching"}))

	var e events.Event
	require.NoError(t, json.Unmarshal([]byte(readFrame()), &e))
	assert.Equal(t, events.TypeRunState, e.Type)
	assert.Equal(t, "run-1", e.RunID)
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	})
	h := Chain(inner, RequestID)

	t.Run("generates one", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Len(t, seen, 32)
		assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
	})

	t.Run("keeps the caller's", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
	})
}

func TestRecoverMiddleware(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), Recover)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, 500, rec.Code)
	var e APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, "internal_error", e.Error.Code)
}

func TestAccessLogMiddleware(t *testing.T) {
	var sawFlusher bool
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawFlusher = w.(http.Flusher)
		w.WriteHeader(201)
	}), AccessLog)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/run", nil))

	assert.Equal(t, 201, rec.Code)
	assert.True(t, sawFlusher, "status wrapper must keep Flush for the SSE stream")
}

func TestCorsMiddleware(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}), Cors)

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/run", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, 204, rec.Code)
		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("no origin, no headers", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

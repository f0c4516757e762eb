package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"netdash/internal/dashboard"
	"netdash/internal/export"
	"netdash/internal/metrics"
	"netdash/internal/models"
	"netdash/internal/telemetry"
)

// fakeBackend serves canned monitoring API responses
func fakeBackend(t *testing.T, down *atomic.Bool) *httptest.Server {
	t.Helper()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	bodies := map[string]interface{}{
		"/api/status/current": models.CurrentStatus{Timestamp: now, Status: models.StatusOnline, SuccessRate: 100},
		"/api/stats/today":    models.StatsData{TotalChecks: 10, OnlineChecks: 10, UptimePercentage: 100},
		"/api/stats/last24h":  models.StatsData{TotalChecks: 100, OnlineChecks: 99, OfflineChecks: 1, UptimePercentage: 99},
		"/api/history/timeline": []models.StatusSample{
			{Timestamp: now.Add(-time.Hour), Status: models.StatusOnline, SuccessRate: 100},
			{Timestamp: now, Status: models.StatusOnline, SuccessRate: 90},
		},
		"/api/speed/current": []map[string]interface{}{
			{"timestamp": now, "provider": "fast.com", "download_mbps": 90.5, "upload_mbps": nil, "ping_ms": 12},
		},
		"/api/speed/stats":   []map[string]interface{}{{"provider": "fast.com", "total_tests": 3, "avg_download": 91}},
		"/api/speed/history": []map[string]interface{}{},
		"/api/ping/hosts": []map[string]interface{}{
			{"host": "1.1.1.1", "total_tests": 10, "successful_tests": 10, "avg_response_time": 11.2, "success_rate": 100},
		},
		"/api/outages/recent": []models.OutageEvent{{Timestamp: now, SuccessRate: 0}},
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if down != nil && down.Load() {
			http.Error(w, "backend down", http.StatusInternalServerError)
			return
		}
		body, ok := bodies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}))
}

type testEnv struct {
	dash    *dashboard.Orchestrator
	server  *Server
	handler http.Handler
	down    *atomic.Bool
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	down := &atomic.Bool{}
	backend := fakeBackend(t, down)
	t.Cleanup(backend.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := telemetry.New(backend.URL, telemetry.WithTimeout(2*time.Second))
	dash := dashboard.New(client, dashboard.Config{AutoRefresh: false}, dashboard.WithLogger(logger))

	opts = append([]Option{WithLogger(logger), WithMetrics(metrics.New())}, opts...)
	srv := New(Config{AppName: "netdash", ExportDir: t.TempDir()}, dash, opts...)
	return &testEnv{dash: dash, server: srv, handler: srv.Router(), down: down}
}

func (e *testEnv) do(t *testing.T, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestSnapshotBeforeFirstRefresh(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/snapshot", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body errorBody
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Error != "No data available" {
		t.Errorf("error body = %q", body.Error)
	}
}

func TestRefreshAndSnapshot(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/refresh", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d: %s", rec.Code, rec.Body)
	}

	rec = env.do(t, http.MethodGet, "/api/snapshot", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("snapshot status = %d", rec.Code)
	}
	var snap models.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Status.Status != models.StatusOnline || snap.OutageCount != 1 || len(snap.PingHosts) != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.RecentSpeed[0].UploadMbps.Valid {
		t.Error("null upload decoded as a value")
	}
}

func TestFailedRefreshKeepsSnapshot(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/refresh", "")

	env.down.Store(true)
	rec := env.do(t, http.MethodPost, "/api/refresh", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}

	if rec := env.do(t, http.MethodGet, "/api/snapshot", ""); rec.Code != http.StatusOK {
		t.Errorf("snapshot lost after failed refresh: %d", rec.Code)
	}

	var state stateBody
	json.NewDecoder(env.do(t, http.MethodGet, "/api/state", "").Body).Decode(&state)
	if state.LastError == "" || state.LastUpdated == nil {
		t.Errorf("state = %+v", state)
	}
}

func TestSetPeriod(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		body   string
		status int
		period string
	}{
		{`{"period":"last-6-hours"}`, http.StatusOK, "last-6-hours"},
		{`{"period":"custom:2024-01-01@09..2024-01-02@17"}`, http.StatusOK, "custom:2024-01-01@09..2024-01-02@17"},
		{`{"period":"custom:2024-01-02@09..2024-01-01@17"}`, http.StatusBadRequest, ""},
		{`{"period":"fortnight"}`, http.StatusBadRequest, ""},
		{`not json`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/period", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body)
			}
			if tt.period == "" {
				return
			}
			var state stateBody
			json.NewDecoder(rec.Body).Decode(&state)
			if state.Period != tt.period {
				t.Errorf("period = %q, want %q", state.Period, tt.period)
			}
		})
	}

	// Rejected selectors leave the last accepted one in place
	if got := env.dash.Selector().String(); got != "custom:2024-01-01@09..2024-01-02@17" {
		t.Errorf("active selector = %q", got)
	}
}

func TestAutoRefreshEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auto-refresh", `{"enabled":true}`)
	if rec.Code != http.StatusOK || !env.dash.AutoRefresh() {
		t.Fatalf("enable failed: %d", rec.Code)
	}
	env.do(t, http.MethodPost, "/api/auto-refresh", `{"enabled":false}`)
	if env.dash.AutoRefresh() {
		t.Error("auto-refresh still on")
	}
	if rec := env.do(t, http.MethodPost, "/api/auto-refresh", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing field status = %d", rec.Code)
	}
}

func TestCharts(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/refresh", "")

	rec := env.do(t, http.MethodGet, "/api/charts/status.png?width=400&height=200", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("status chart: %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("status chart is not a PNG")
	}

	// Empty speed history
	if rec := env.do(t, http.MethodGet, "/api/charts/speed.png", ""); rec.Code != http.StatusNotFound {
		t.Errorf("speed chart without data: %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/charts/bogus.png", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown chart: %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/series/status", "")
	var c struct {
		Y      struct{ Min, Max float64 }
		Series []struct{ Points []json.RawMessage }
	}
	json.NewDecoder(rec.Body).Decode(&c)
	if c.Y.Max != 100 || len(c.Series) != 1 || len(c.Series[0].Points) != 2 {
		t.Errorf("status series = %+v", c)
	}
}

type memHistory struct {
	exports []models.ExportRecord
}

func (m *memHistory) ListSnapshots(ctx context.Context, limit int) ([]models.SnapshotRecord, error) {
	return []models.SnapshotRecord{{ID: "a"}}, nil
}

func (m *memHistory) ListExports(ctx context.Context, limit int) ([]models.ExportRecord, error) {
	return m.exports, nil
}

func (m *memHistory) RecordExport(ctx context.Context, rec models.ExportRecord) error {
	m.exports = append(m.exports, rec)
	return nil
}

func TestExportEndpoint(t *testing.T) {
	hist := &memHistory{}
	env := newTestEnv(t, WithHistory(hist))
	dir := env.server.cfg.ExportDir
	env.server.exporter = export.New(export.Config{Dir: dir, AppName: "netdash"}, env.dash,
		export.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	if rec := env.do(t, http.MethodPost, "/api/export?format=png", ""); rec.Code != http.StatusConflict {
		t.Fatalf("export before data: %d", rec.Code)
	}

	env.do(t, http.MethodPost, "/api/refresh", "")
	rec := env.do(t, http.MethodPost, "/api/export?format=pdf", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("export status = %d: %s", rec.Code, rec.Body)
	}
	var art export.Artifact
	json.NewDecoder(rec.Body).Decode(&art)
	if !strings.HasSuffix(art.Filename, ".pdf") {
		t.Errorf("filename = %q", art.Filename)
	}
	if len(hist.exports) != 1 {
		t.Errorf("export not recorded")
	}
	if env.dash.State().Suspended {
		t.Error("auto-refresh left suspended after export")
	}

	dl := env.do(t, http.MethodGet, "/api/exports/"+art.Filename, "")
	if dl.Code != http.StatusOK || !bytes.HasPrefix(dl.Body.Bytes(), []byte("%PDF")) {
		t.Errorf("download failed: %d", dl.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/exports/..%2F..%2Fetc%2Fpasswd", ""); rec.Code != http.StatusNotFound {
		t.Errorf("path traversal status = %d", rec.Code)
	}

	if rec := env.do(t, http.MethodPost, "/api/export?format=gif", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad format status = %d", rec.Code)
	}
}

func TestWebsocketReceivesSnapshots(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go env.server.hub.Run(ctx)
	unsubscribe := env.dash.Subscribe(env.server.onEvent)
	defer unsubscribe()

	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for env.server.hub.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if _, err := env.dash.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type    string          `json:"type"`
		Payload models.Snapshot `json:"payload"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if msg.Type != "snapshot" || msg.Payload.ID == "" {
		t.Errorf("message = %+v", msg)
	}
}

func TestHistoryAndMetrics(t *testing.T) {
	env := newTestEnv(t, WithHistory(&memHistory{}))

	rec := env.do(t, http.MethodGet, "/api/history?limit=5", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"id":"a"`) {
		t.Errorf("history: %d %s", rec.Code, rec.Body)
	}

	env.do(t, http.MethodGet, "/api/state", "")
	rec = env.do(t, http.MethodGet, "/metrics", "")
	if !strings.Contains(rec.Body.String(), `netdash_http_requests_total{route="/api/state",status="200"} 1`) {
		t.Errorf("metrics missing request count:\n%s", rec.Body)
	}
}

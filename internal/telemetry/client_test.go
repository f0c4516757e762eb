package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"netdash/internal/models"
	"netdash/internal/period"
)

// recorder captures the last request URL seen by a test server
type recorder struct {
	mu   sync.Mutex
	urls []*url.URL
}

func (r *recorder) add(u *url.URL) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, u)
}

func (r *recorder) last() *url.URL {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.urls[len(r.urls)-1]
}

func newServer(t *testing.T, body string) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.URL)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestWindowQueryHours(t *testing.T) {
	srv, rec := newServer(t, `[]`)
	client := New(srv.URL + "/")

	from := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		query    models.Query
		expected string
	}{
		{"ninety minutes", models.ForWindow(period.Window{From: from, To: from.Add(90 * time.Minute)}), "2"},
		{"six hours", models.ForWindow(period.Window{From: from, To: from.Add(6 * time.Hour)}), "6"},
		{"sub-minute window", models.ForWindow(period.Window{From: from, To: from.Add(30 * time.Second)}), "1"},
		{"raw hours", models.ForHours(48), "48"},
		{"zero query", models.Query{}, "24"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := client.Timeline(context.Background(), tt.query); err != nil {
				t.Fatalf("Timeline returned error: %v", err)
			}
			u := rec.last()
			if u.Path != "/api/history/timeline" {
				t.Errorf("path = %q, want /api/history/timeline", u.Path)
			}
			if got := u.Query().Get("hours"); got != tt.expected {
				t.Errorf("hours = %q, want %q", got, tt.expected)
			}
			if u.Query().Has("from") {
				t.Errorf("absolute bounds sent without opting in")
			}
		})
	}
}

func TestAbsoluteRangeParams(t *testing.T) {
	srv, rec := newServer(t, `[]`)
	client := New(srv.URL, WithAbsoluteRange(true))

	from := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	w := period.Window{From: from, To: from.Add(8 * time.Hour)}
	if _, err := client.PingHosts(context.Background(), models.ForWindow(w)); err != nil {
		t.Fatal(err)
	}

	q := rec.last().Query()
	if q.Get("hours") != "8" {
		t.Errorf("hours = %q, want 8", q.Get("hours"))
	}
	if q.Get("from") != "2024-01-01T09:00:00Z" || q.Get("to") != "2024-01-01T17:00:00Z" {
		t.Errorf("from/to = %q/%q", q.Get("from"), q.Get("to"))
	}

	// raw hour queries have no bounds to send
	if _, err := client.PingHosts(context.Background(), models.ForHours(3)); err != nil {
		t.Fatal(err)
	}
	if rec.last().Query().Has("from") {
		t.Errorf("raw hour query should not carry bounds")
	}
}

func TestEndpoints(t *testing.T) {
	srv, rec := newServer(t, `{}`)
	client := New(srv.URL)
	ctx := context.Background()

	calls := []struct {
		path string
		call func() error
	}{
		{"/api/status/current", func() error { _, err := client.CurrentStatus(ctx); return err }},
		{"/api/stats/today", func() error { _, err := client.StatsToday(ctx); return err }},
		{"/api/stats/last24h", func() error { _, err := client.StatsLast24h(ctx); return err }},
		{"/health", func() error { _, err := client.Health(ctx); return err }},
	}

	for _, c := range calls {
		if err := c.call(); err != nil {
			t.Fatalf("%s: %v", c.path, err)
		}
		if got := rec.last().Path; got != c.path {
			t.Errorf("path = %q, want %q", got, c.path)
		}
	}
}

func TestDecodeSpeedSamples(t *testing.T) {
	body := `[
		{"timestamp":"2024-01-01T10:00:00Z","provider":"speedtest.net","download_mbps":250.5,"upload_mbps":null,"ping_ms":null,"server_name":"X","server_location":null},
		{"timestamp":"2024-01-01T09:00:00Z","provider":"proof.ovh.net","download_mbps":null,"upload_mbps":20,"ping_ms":8.25,"server_name":null,"server_location":null}
	]`
	srv, rec := newServer(t, body)
	client := New(srv.URL)

	samples, err := client.CurrentSpeedTests(context.Background())
	if err != nil {
		t.Fatalf("CurrentSpeedTests returned error: %v", err)
	}
	if rec.last().Path != "/api/speed/current" {
		t.Errorf("path = %q", rec.last().Path)
	}
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}
	if samples[0].DownloadMbps.Float64 != 250.5 || samples[0].UploadMbps.Valid {
		t.Errorf("first sample decoded wrong: %+v", samples[0])
	}
	if samples[1].DownloadMbps.Valid || samples[1].PingMs.Float64 != 8.25 {
		t.Errorf("second sample decoded wrong: %+v", samples[1])
	}
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "No data available"}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.StatsToday(context.Background())
	if err == nil {
		t.Fatal("expected error for 404 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %T is not *APIError", err)
	}
	if apiErr.Endpoint != "/api/stats/today" {
		t.Errorf("endpoint = %q", apiErr.Endpoint)
	}
	if apiErr.StatusCode != http.StatusNotFound || !strings.Contains(apiErr.Status, "Not Found") {
		t.Errorf("status = %d %q", apiErr.StatusCode, apiErr.Status)
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound should be true")
	}
	if !strings.Contains(err.Error(), "No data available") {
		t.Errorf("error message %q should include response body", err.Error())
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := New(srv.URL, WithTimeout(time.Second))
	_, err := client.CurrentStatus(context.Background())
	if err == nil {
		t.Fatal("expected transport error")
	}
	if !strings.Contains(err.Error(), "/api/status/current") {
		t.Errorf("transport error %q should name the endpoint", err)
	}
	if IsNotFound(err) {
		t.Errorf("transport error should not be reported as not found")
	}
}

func TestDecodeError(t *testing.T) {
	srv, _ := newServer(t, `not json`)
	client := New(srv.URL)
	if _, err := client.SpeedStats(context.Background(), models.ForHours(1)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestDefaultBaseURL(t *testing.T) {
	if got := New("").BaseURL(); got != DefaultBaseURL {
		t.Errorf("BaseURL() = %q, want %q", got, DefaultBaseURL)
	}
}

func TestTimeoutOptions(t *testing.T) {
	tests := []struct {
		name string
		opts func(shared *http.Client) []Option
		want time.Duration
	}{
		{"default", func(*http.Client) []Option { return nil }, DefaultTimeout},
		{"timeout only", func(*http.Client) []Option { return []Option{WithTimeout(3 * time.Second)} }, 3 * time.Second},
		{"timeout before client", func(shared *http.Client) []Option {
			return []Option{WithTimeout(time.Second), WithHTTPClient(shared)}
		}, time.Minute},
		{"timeout after client", func(shared *http.Client) []Option {
			return []Option{WithHTTPClient(shared), WithTimeout(time.Second)}
		}, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shared := &http.Client{Timeout: time.Minute}
			c := New("", tt.opts(shared)...)
			if c.httpClient.Timeout != tt.want {
				t.Errorf("client timeout = %v, want %v", c.httpClient.Timeout, tt.want)
			}
			if shared.Timeout != time.Minute {
				t.Errorf("caller's http.Client timeout changed to %v", shared.Timeout)
			}
		})
	}
}

package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"netdash/internal/models"
)

// DefaultBaseURL is used when no backend URL is configured
const DefaultBaseURL = "http://localhost:8080"

// DefaultTimeout is the per-request timeout of the default http.Client
const DefaultTimeout = 10 * time.Second

// maxErrorBody bounds how much of an error response is kept
const maxErrorBody = 512

var _ models.Telemetry = (*Client)(nil)

// Client issues typed queries against the monitoring API. Every call is a
// fresh request; nothing is cached or retried.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	timeout       time.Duration
	absoluteRange bool
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client. The caller's client is
// used as is; WithTimeout does not touch it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithAbsoluteRange sends from/to bounds next to the hour count for window queries
func WithAbsoluteRange(enabled bool) Option {
	return func(c *Client) { c.absoluteRange = enabled }
}

// New creates a client for the API at baseURL
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// BaseURL returns the backend address the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CurrentStatus fetches the latest connectivity check
func (c *Client) CurrentStatus(ctx context.Context) (models.CurrentStatus, error) {
	var status models.CurrentStatus
	err := c.get(ctx, "/api/status/current", nil, &status)
	return status, err
}

// StatsToday fetches today's connectivity statistics
func (c *Client) StatsToday(ctx context.Context) (models.StatsData, error) {
	var stats models.StatsData
	err := c.get(ctx, "/api/stats/today", nil, &stats)
	return stats, err
}

// StatsLast24h fetches connectivity statistics for the trailing 24 hours
func (c *Client) StatsLast24h(ctx context.Context) (models.StatsData, error) {
	var stats models.StatsData
	err := c.get(ctx, "/api/stats/last24h", nil, &stats)
	return stats, err
}

// Timeline fetches status samples ordered by time
func (c *Client) Timeline(ctx context.Context, q models.Query) ([]models.StatusSample, error) {
	var samples []models.StatusSample
	err := c.get(ctx, "/api/history/timeline", c.params(q), &samples)
	return samples, err
}

// CurrentSpeedTests fetches the most recent speed tests, newest first
func (c *Client) CurrentSpeedTests(ctx context.Context) ([]models.SpeedSample, error) {
	var tests []models.SpeedSample
	err := c.get(ctx, "/api/speed/current", nil, &tests)
	return tests, err
}

// SpeedStats fetches per-provider speed aggregates
func (c *Client) SpeedStats(ctx context.Context, q models.Query) ([]models.SpeedAggregate, error) {
	var stats []models.SpeedAggregate
	err := c.get(ctx, "/api/speed/stats", c.params(q), &stats)
	return stats, err
}

// SpeedHistory fetches speed samples ordered by time
func (c *Client) SpeedHistory(ctx context.Context, q models.Query) ([]models.SpeedSample, error) {
	var samples []models.SpeedSample
	err := c.get(ctx, "/api/speed/history", c.params(q), &samples)
	return samples, err
}

// PingHosts fetches per-host ping aggregates
func (c *Client) PingHosts(ctx context.Context, q models.Query) ([]models.PingHostAggregate, error) {
	var hosts []models.PingHostAggregate
	err := c.get(ctx, "/api/ping/hosts", c.params(q), &hosts)
	return hosts, err
}

// RecentOutages fetches offline checks, newest first
func (c *Client) RecentOutages(ctx context.Context, q models.Query) ([]models.OutageEvent, error) {
	var outages []models.OutageEvent
	err := c.get(ctx, "/api/outages/recent", c.params(q), &outages)
	return outages, err
}

// Health checks the backend's health endpoint
func (c *Client) Health(ctx context.Context) (map[string]string, error) {
	health := map[string]string{}
	err := c.get(ctx, "/health", nil, &health)
	return health, err
}

// params builds the query string for a window-scoped endpoint. The backend
// only understands trailing hour counts, so windows travel as their rounded-up
// duration; absolute bounds are added only when enabled.
func (c *Client) params(q models.Query) url.Values {
	v := url.Values{}
	v.Set("hours", strconv.Itoa(q.EffectiveHours()))
	if c.absoluteRange && q.Window != nil {
		v.Set("from", q.Window.From.Format(time.RFC3339))
		v.Set("to", q.Window.To.Format(time.RFC3339))
	}
	return v
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, v any) error {
	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request for %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s response: %w", endpoint, err)
	}
	return nil
}

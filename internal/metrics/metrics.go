package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"netdash/internal/dashboard"
)

// Metrics holds the collectors exposed on /metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	refreshTotal    *prometheus.CounterVec
	refreshDuration *prometheus.HistogramVec
	snapshotTime    prometheus.Gauge
	successRate     prometheus.Gauge
	uptime24h       prometheus.Gauge
	outages         prometheus.Gauge
	exportsTotal    *prometheus.CounterVec
	archivePruned   prometheus.Counter
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		refreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netdash_refresh_total",
			Help: "Refresh cycles by trigger and result.",
		}, []string{"trigger", "result"}),
		refreshDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "netdash_refresh_duration_seconds",
			Help:    "Duration of refresh cycles by trigger.",
			Buckets: prometheus.DefBuckets,
		}, []string{"trigger"}),
		snapshotTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "netdash_snapshot_timestamp_seconds",
			Help: "Unix time the current snapshot was fetched.",
		}),
		successRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "netdash_current_success_rate",
			Help: "Success rate of the latest connectivity check, in percent.",
		}),
		uptime24h: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "netdash_uptime_24h_percent",
			Help: "Uptime over the last 24 hours as reported by the backend.",
		}),
		outages: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "netdash_outages",
			Help: "Outage events in the selected period.",
		}),
		exportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netdash_exports_total",
			Help: "Export captures by format and result.",
		}, []string{"format", "result"}),
		archivePruned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "netdash_archive_pruned_total",
			Help: "Snapshots removed from the local archive.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netdash_http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "netdash_http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.refreshTotal,
		m.refreshDuration,
		m.snapshotTime,
		m.successRate,
		m.uptime24h,
		m.outages,
		m.exportsTotal,
		m.archivePruned,
		m.httpRequests,
		m.httpDuration,
	)

	return m
}

// Observe records a refresh event; pass it to Orchestrator.Subscribe
func (m *Metrics) Observe(evt dashboard.Event) {
	if m == nil {
		return
	}
	trigger := string(evt.Trigger)
	m.refreshDuration.WithLabelValues(trigger).Observe(evt.Duration.Seconds())
	if evt.Err != nil {
		m.refreshTotal.WithLabelValues(trigger, "error").Inc()
		return
	}
	m.refreshTotal.WithLabelValues(trigger, "ok").Inc()

	snap := evt.Snapshot
	m.snapshotTime.Set(float64(snap.FetchedAt.Unix()))
	m.successRate.Set(snap.Status.SuccessRate)
	m.uptime24h.Set(snap.Last24h.UptimePercentage)
	m.outages.Set(float64(snap.OutageCount))
}

// Export records the outcome of one capture
func (m *Metrics) Export(format string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.exportsTotal.WithLabelValues(format, result).Inc()
}

// Pruned records snapshots removed from the archive
func (m *Metrics) Pruned(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.archivePruned.Add(float64(n))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// WrapHandler counts requests and their duration under route
func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		m.httpRequests.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mostly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

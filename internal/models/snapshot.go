package models

import (
	"time"

	"netdash/internal/period"
)

// Snapshot is the result of one complete refresh cycle. It is never modified
// after construction; a new refresh produces a new Snapshot.
type Snapshot struct {
	ID          string              `json:"id"`
	Period      string              `json:"period"`
	Window      period.Window       `json:"window"`
	FetchedAt   time.Time           `json:"fetched_at"`
	Status      CurrentStatus       `json:"status"`
	Today       StatsData           `json:"today"`
	Last24h     StatsData           `json:"last_24h"`
	RecentSpeed []SpeedSample       `json:"recent_speed"`
	SpeedStats  []SpeedAggregate    `json:"speed_stats"`
	PingHosts   []PingHostAggregate `json:"ping_hosts"`
	OutageCount int                 `json:"outage_count"`

	// Raw series for the charts, fetched with the same window
	Timeline     []StatusSample `json:"timeline"`
	SpeedHistory []SpeedSample  `json:"speed_history"`
}

// Age returns how long ago the snapshot was fetched
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}

// Providers returns the providers present in the speed statistics, in backend order
func (s *Snapshot) Providers() []string {
	providers := make([]string, 0, len(s.SpeedStats))
	for _, st := range s.SpeedStats {
		providers = append(providers, st.Provider)
	}
	return providers
}

// SnapshotRecord is an archived snapshot as stored locally
type SnapshotRecord struct {
	ID          string    `json:"id"`
	FetchedAt   time.Time `json:"fetched_at"`
	Period      string    `json:"period"`
	WindowFrom  time.Time `json:"window_from"`
	WindowTo    time.Time `json:"window_to"`
	Status      string    `json:"status"`
	SuccessRate float64   `json:"success_rate"`
	Uptime24h   float64   `json:"uptime_24h"`
	OutageCount int       `json:"outage_count"`
}

// DailySummary aggregates the archived snapshots of one calendar day
type DailySummary struct {
	Date           string  `json:"date"`
	Snapshots      int     `json:"snapshots"`
	AvgSuccessRate float64 `json:"avg_success_rate"`
	MinUptime24h   float64 `json:"min_uptime_24h"`
	MaxOutages     int     `json:"max_outages"`
}

// ExportRecord is an archived export artifact
type ExportRecord struct {
	ID         string    `json:"id"`
	Format     string    `json:"format"`
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	Location   string    `json:"location,omitempty"`
	Size       int64     `json:"size"`
	CapturedAt time.Time `json:"captured_at"`
}

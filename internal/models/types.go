package models

import (
	"context"
	"time"

	"netdash/internal/period"
)

// Query scopes a window-based telemetry request. Either Window or Hours is set.
type Query struct {
	Window *period.Window
	Hours  int
}

// ForWindow scopes a query to an explicit window
func ForWindow(w period.Window) Query {
	return Query{Window: &w}
}

// ForHours scopes a query to a trailing hour count
func ForHours(hours int) Query {
	return Query{Hours: hours}
}

// DefaultHours is used when a query carries neither a window nor an hour count
const DefaultHours = 24

// EffectiveHours is the trailing hour count sent to the backend. A window is
// converted by rounding its duration up to whole hours, minimum one.
func (q Query) EffectiveHours() int {
	switch {
	case q.Window != nil:
		return q.Window.Hours()
	case q.Hours > 0:
		return q.Hours
	default:
		return DefaultHours
	}
}

// Telemetry defines the read operations against the monitoring API
type Telemetry interface {
	CurrentStatus(ctx context.Context) (CurrentStatus, error)
	StatsToday(ctx context.Context) (StatsData, error)
	StatsLast24h(ctx context.Context) (StatsData, error)
	Timeline(ctx context.Context, q Query) ([]StatusSample, error)
	CurrentSpeedTests(ctx context.Context) ([]SpeedSample, error)
	SpeedStats(ctx context.Context, q Query) ([]SpeedAggregate, error)
	SpeedHistory(ctx context.Context, q Query) ([]SpeedSample, error)
	PingHosts(ctx context.Context, q Query) ([]PingHostAggregate, error)
	RecentOutages(ctx context.Context, q Query) ([]OutageEvent, error)
}

// Archive defines operations for the local snapshot record
type Archive interface {
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
	ListSnapshots(ctx context.Context, limit int) ([]SnapshotRecord, error)
	GetSnapshot(ctx context.Context, id string) (*Snapshot, error)
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
	Close() error
}

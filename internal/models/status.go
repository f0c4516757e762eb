package models

import "time"

// Connection status values reported by the backend
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// CurrentStatus is the most recent connectivity check
type CurrentStatus struct {
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
	SuccessRate float64   `json:"success_rate"` // percentage
	Date        string    `json:"date"`
	Time        string    `json:"time"`
}

// Online reports whether the last check succeeded
func (c CurrentStatus) Online() bool {
	return c.Status == StatusOnline
}

// StatsData summarizes connectivity checks over a period
type StatsData struct {
	TotalChecks      int        `json:"total_checks"`
	OnlineChecks     int        `json:"online_checks"`
	OfflineChecks    int        `json:"offline_checks"`
	AvgSuccessRate   float64    `json:"avg_success_rate"`
	UptimePercentage float64    `json:"uptime_percentage"`
	FirstCheck       *time.Time `json:"first_check,omitempty"`
	LastCheck        *time.Time `json:"last_check,omitempty"`
}

// StatusSample is one health check on the timeline
type StatusSample struct {
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
	SuccessRate float64   `json:"success_rate"`
}

// OutageEvent is a check that fell below the offline threshold
type OutageEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	SuccessRate float64   `json:"success_rate"`
}

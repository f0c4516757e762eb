package models

import "github.com/guregu/null/v5"

// Badge thresholds used when grading a host's success rate
const (
	HealthyRate  = 95.0
	DegradedRate = 80.0
)

// PingHostAggregate summarizes ping checks against one host
type PingHostAggregate struct {
	Host            string     `json:"host"`
	TotalTests      int        `json:"total_tests"`
	SuccessfulTests int        `json:"successful_tests"`
	FailedTests     int        `json:"failed_tests"`
	AvgResponseTime null.Float `json:"avg_response_time"`
	MinResponseTime null.Float `json:"min_response_time"`
	MaxResponseTime null.Float `json:"max_response_time"`
	SuccessRate     float64    `json:"success_rate"`
}

// Grade buckets the host's success rate into healthy, degraded or failing
func (p PingHostAggregate) Grade() string {
	switch {
	case p.SuccessRate >= HealthyRate:
		return "healthy"
	case p.SuccessRate >= DegradedRate:
		return "degraded"
	default:
		return "failing"
	}
}

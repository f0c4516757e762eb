package models

import (
	"time"

	"github.com/guregu/null/v5"
)

// SpeedSample is a single speed test. Invalid fields were not measured, which is not the same as zero.
type SpeedSample struct {
	Timestamp      time.Time   `json:"timestamp"`
	Provider       string      `json:"provider"`
	DownloadMbps   null.Float  `json:"download_mbps"`
	UploadMbps     null.Float  `json:"upload_mbps"`
	PingMs         null.Float  `json:"ping_ms"`
	ServerName     null.String `json:"server_name"`
	ServerLocation null.String `json:"server_location"`
}

// SpeedAggregate is the backend's per-provider summary for a window
type SpeedAggregate struct {
	Provider    string     `json:"provider"`
	TotalTests  int        `json:"total_tests"`
	AvgDownload null.Float `json:"avg_download"`
	AvgUpload   null.Float `json:"avg_upload"`
	AvgPing     null.Float `json:"avg_ping"`
	MinDownload null.Float `json:"min_download"`
	MaxDownload null.Float `json:"max_download"`
	MinUpload   null.Float `json:"min_upload"`
	MaxUpload   null.Float `json:"max_upload"`
}

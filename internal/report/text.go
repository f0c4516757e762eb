package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/guregu/null/v5"

	"netdash/internal/models"
)

func (g *Generator) generateTextReport(outputDir string, snap *models.Snapshot, periodLabel string) error {
	filename := filepath.Join(outputDir, "summary.txt")
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	const stamp = "2006-01-02 15:04:05"

	fmt.Fprintf(file, "Network Connectivity Report\n")
	fmt.Fprintf(file, "Generated: %s\n", g.now().Format(stamp))
	fmt.Fprintf(file, "Period: %s (%s)\n", periodLabel, snap.Window)
	fmt.Fprintf(file, "Data fetched: %s\n\n", snap.FetchedAt.Format(stamp))
	fmt.Fprintln(file, strings.Repeat("=", 60))

	fmt.Fprintln(file, "\nCONNECTIVITY")
	fmt.Fprintf(file, "Current status: %s (%.2f%% success)\n", snap.Status.Status, snap.Status.SuccessRate)
	fmt.Fprintf(file, "Today: %.2f%% uptime, %d online / %d offline checks\n",
		snap.Today.UptimePercentage, snap.Today.OnlineChecks, snap.Today.OfflineChecks)
	fmt.Fprintf(file, "Last 24h: %.2f%% uptime over %d checks\n",
		snap.Last24h.UptimePercentage, snap.Last24h.TotalChecks)
	fmt.Fprintln(file)

	fmt.Fprintln(file, strings.Repeat("=", 60))
	fmt.Fprintln(file, "\nPING HOSTS")

	for _, h := range snap.PingHosts {
		fmt.Fprintf(file, "Host: %s\n", h.Host)
		fmt.Fprintf(file, "  Total Tests: %d\n", h.TotalTests)
		fmt.Fprintf(file, "  Successful: %d (%.2f%%, %s)\n", h.SuccessfulTests, h.SuccessRate, h.Grade())
		fmt.Fprintf(file, "  Failed: %d\n", h.FailedTests)

		if h.AvgResponseTime.Valid {
			fmt.Fprintf(file, "  Average RTT: %s\n", ms(h.AvgResponseTime))
			fmt.Fprintf(file, "  Min RTT: %s\n", ms(h.MinResponseTime))
			fmt.Fprintf(file, "  Max RTT: %s\n", ms(h.MaxResponseTime))
		}
		fmt.Fprintln(file)
	}
	if len(snap.PingHosts) == 0 {
		fmt.Fprintln(file, "No ping data for this period.")
	}

	fmt.Fprintln(file, strings.Repeat("=", 60))
	fmt.Fprintln(file, "\nSPEED TESTS")

	for _, s := range snap.SpeedStats {
		fmt.Fprintf(file, "Provider: %s (%d tests)\n", s.Provider, s.TotalTests)
		fmt.Fprintf(file, "  Download: avg %s, min %s, max %s\n", mbps(s.AvgDownload), mbps(s.MinDownload), mbps(s.MaxDownload))
		fmt.Fprintf(file, "  Upload: avg %s, min %s, max %s\n", mbps(s.AvgUpload), mbps(s.MinUpload), mbps(s.MaxUpload))
		fmt.Fprintf(file, "  Ping: avg %s\n", ms(s.AvgPing))
		fmt.Fprintln(file)
	}

	if len(snap.RecentSpeed) > 0 {
		fmt.Fprintln(file, "Most recent:")
		for _, s := range snap.RecentSpeed {
			fmt.Fprintf(file, "  %s  %s  down %s  up %s  ping %s\n",
				s.Timestamp.Format(stamp), s.Provider, mbps(s.DownloadMbps), mbps(s.UploadMbps), ms(s.PingMs))
		}
	}

	fmt.Fprintln(file, strings.Repeat("=", 60))
	fmt.Fprintln(file, "\nOUTAGES")

	if snap.OutageCount == 0 {
		fmt.Fprintln(file, "No outages detected.")
	} else {
		fmt.Fprintf(file, "Total Outages: %d\n", snap.OutageCount)
	}

	fmt.Fprintln(file, strings.Repeat("=", 60))
	fmt.Fprintln(file, "\nThis report documents network connectivity issues.")
	fmt.Fprintln(file, "Charts are available in the accompanying files.")

	return nil
}

func mbps(f null.Float) string {
	if !f.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.2f Mbps", f.Float64)
}

func ms(f null.Float) string {
	if !f.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.2f ms", f.Float64)
}

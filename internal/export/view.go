package export

import (
	"fmt"
	"time"

	"github.com/guregu/null/v5"

	"netdash/internal/charts"
	"netdash/internal/dashboard"
	"netdash/internal/models"
)

// PanelKind says how a panel is drawn
type PanelKind int

const (
	PanelText PanelKind = iota
	PanelChart
	PanelBars
)

// Panel is one region of the dashboard
type Panel struct {
	ID         string
	Title      string
	Kind       PanelKind
	Lines      []string
	Chart      charts.Chart
	Bars       []charts.Bar
	Exportable bool
}

// View is everything currently shown on the dashboard
type View struct {
	Title    string
	Subtitle string
	Theme    Theme
	Panels   []Panel
}

// ExportablePanels returns the panels that belong in an export, in order
func (v View) ExportablePanels() []Panel {
	out := make([]Panel, 0, len(v.Panels))
	for _, p := range v.Panels {
		if p.Exportable {
			out = append(out, p)
		}
	}
	return out
}

// DashboardView lays out a snapshot the way the dashboard shows it. The header
// and the controls are interactive and are never exported.
func DashboardView(appName string, snap *models.Snapshot, periodLabel string, autoRefresh bool) View {
	v := View{
		Title:    appName,
		Subtitle: fmt.Sprintf("%s  |  %s  |  updated %s", periodLabel, snap.Window, snap.FetchedAt.Format("15:04:05")),
		Theme:    DefaultTheme,
	}

	refresh := "OFF"
	if autoRefresh {
		refresh = "ON"
	}
	v.Panels = append(v.Panels,
		Panel{ID: "header", Title: appName, Lines: []string{"Last updated: " + snap.FetchedAt.Format(time.TimeOnly)}},
		Panel{ID: "controls", Title: "Controls", Lines: []string{"Period: " + periodLabel, "Auto-refresh: " + refresh}},
		Panel{ID: "status", Title: "Current Status", Exportable: true, Lines: []string{
			fmt.Sprintf("%s  (%.1f%% success)", snap.Status.Status, snap.Status.SuccessRate),
			"Last check: " + formatTime(snap.Status.Timestamp),
		}},
		Panel{ID: "today", Title: "Today's Uptime", Exportable: true, Lines: []string{
			fmt.Sprintf("%.1f%%", snap.Today.UptimePercentage),
			fmt.Sprintf("%d online / %d offline checks", snap.Today.OnlineChecks, snap.Today.OfflineChecks),
		}},
		Panel{ID: "last24h", Title: "24h Uptime", Exportable: true, Lines: []string{
			fmt.Sprintf("%.1f%%", snap.Last24h.UptimePercentage),
			fmt.Sprintf("%d checks", snap.Last24h.TotalChecks),
		}},
		Panel{ID: "outages", Title: "Outages", Exportable: true, Lines: []string{
			fmt.Sprintf("%d in selected period", snap.OutageCount),
		}},
		Panel{ID: "recent-speed", Title: "Recent Speed Tests", Exportable: true, Lines: recentSpeedLines(snap.RecentSpeed)},
		Panel{ID: "speed-stats", Title: "Speed Statistics", Exportable: true, Lines: speedStatLines(snap.SpeedStats)},
		Panel{ID: "ping-hosts", Title: "Ping Hosts", Exportable: true, Lines: pingHostLines(snap.PingHosts)},
		Panel{ID: "status-chart", Title: "Connection Status", Kind: PanelChart, Exportable: true, Chart: charts.StatusSeries(snap.Timeline)},
		Panel{ID: "speed-chart", Title: "Speed Test History", Kind: PanelChart, Exportable: true, Chart: charts.SpeedSeries(snap.SpeedHistory)},
		Panel{ID: "latency-chart", Title: "Average Latency by Host", Kind: PanelBars, Exportable: true, Bars: charts.LatencyBars(snap.PingHosts)},
	)
	return v
}

// LiveView reads the orchestrator's state each time the view is requested
func LiveView(appName string, d *dashboard.Orchestrator) ViewSource {
	return func() (View, error) {
		st := d.State()
		if st.Snapshot == nil {
			return View{}, dashboard.ErrNoSnapshot
		}
		return DashboardView(appName, st.Snapshot, st.Selector.Label(), st.AutoRefresh), nil
	}
}

func recentSpeedLines(samples []models.SpeedSample) []string {
	if len(samples) == 0 {
		return []string{"No speed tests"}
	}
	lines := make([]string, 0, len(samples))
	for _, s := range samples {
		lines = append(lines, fmt.Sprintf("%s  %-20s  down %s  up %s  ping %s",
			formatTime(s.Timestamp), s.Provider,
			formatFloat(s.DownloadMbps, "Mbps"), formatFloat(s.UploadMbps, "Mbps"), formatFloat(s.PingMs, "ms")))
	}
	return lines
}

func speedStatLines(stats []models.SpeedAggregate) []string {
	if len(stats) == 0 {
		return []string{"No speed statistics"}
	}
	lines := make([]string, 0, len(stats))
	for _, s := range stats {
		lines = append(lines, fmt.Sprintf("%-20s  %d tests  avg down %s  avg up %s  avg ping %s",
			s.Provider, s.TotalTests,
			formatFloat(s.AvgDownload, "Mbps"), formatFloat(s.AvgUpload, "Mbps"), formatFloat(s.AvgPing, "ms")))
	}
	return lines
}

func pingHostLines(hosts []models.PingHostAggregate) []string {
	if len(hosts) == 0 {
		return []string{"No ping data"}
	}
	lines := make([]string, 0, len(hosts))
	for _, h := range hosts {
		lines = append(lines, fmt.Sprintf("%-20s  %5.1f%% %-8s  avg %s  (%d/%d)",
			h.Host, h.SuccessRate, h.Grade(), formatFloat(h.AvgResponseTime, "ms"), h.SuccessfulTests, h.TotalTests))
	}
	return lines
}

// formatFloat shows an unmeasured value as N/A rather than zero
func formatFloat(f null.Float, unit string) string {
	if !f.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.1f %s", f.Float64, unit)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("Jan 02 15:04")
}

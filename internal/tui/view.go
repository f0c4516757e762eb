package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guregu/null/v5"

	"netdash/internal/charts"
	"netdash/internal/dashboard"
	"netdash/internal/models"
)

func (m Model) View() string {
	st := m.dash.State()
	var b strings.Builder

	b.WriteString(m.header(st))
	b.WriteString("\n")

	if st.Snapshot == nil {
		if st.Refreshing {
			b.WriteString(fmt.Sprintf("\n  %s loading...\n", m.spinner.View()))
		} else {
			b.WriteString("\n  " + DimText.Render("No data available") + "\n")
		}
	} else {
		b.WriteString(m.body(st.Snapshot))
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(Notice.Render("⚠ " + m.notice))
	}
	if m.info != "" {
		b.WriteString("\n")
		b.WriteString(Info.Render(m.info))
	}
	b.WriteString("\n")
	b.WriteString(Help.Render("r refresh • a auto-refresh • p period • e export png • E export pdf • q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) header(st dashboard.State) string {
	var b strings.Builder
	b.WriteString(Banner.Render("📡 " + strings.ToUpper(m.appName)))
	if st.Refreshing {
		b.WriteString(" " + m.spinner.View())
	}
	b.WriteString("\n")

	auto := Failing.Render("OFF")
	if st.AutoRefresh {
		auto = Healthy.Render("ON")
		if st.Suspended {
			auto = Degraded.Render("PAUSED")
		}
	}

	updated := "never"
	if st.Snapshot != nil {
		updated = st.Snapshot.FetchedAt.Local().Format(time.TimeOnly)
	}

	b.WriteString(Key.Render("Period") + st.Selector.Label())
	if st.Snapshot != nil {
		b.WriteString(Subtitle.Render("  " + st.Snapshot.Window.String()))
	}
	b.WriteString("\n")
	b.WriteString(Key.Render("Last updated") + updated + "\n")
	b.WriteString(Key.Render("Auto-refresh") + auto)
	return b.String()
}

func (m Model) body(snap *models.Snapshot) string {
	var b strings.Builder

	cards := []string{
		card("Current Status",
			StatusDot(snap.Status.Online())+" "+snap.Status.Status,
			fmt.Sprintf("%.1f%% success", snap.Status.SuccessRate)),
		card("Today's Uptime",
			fmt.Sprintf("%.1f%%", snap.Today.UptimePercentage),
			fmt.Sprintf("%d online / %d offline", snap.Today.OnlineChecks, snap.Today.OfflineChecks)),
		card("24h Uptime",
			fmt.Sprintf("%.1f%%", snap.Last24h.UptimePercentage),
			fmt.Sprintf("%d checks", snap.Last24h.TotalChecks)),
		card("Outages",
			fmt.Sprintf("%d", snap.OutageCount),
			"in selected period"),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	b.WriteString("\n")

	sparkWidth := m.width - 28
	if sparkWidth < 10 {
		sparkWidth = 10
	}

	b.WriteString(Section.Render("Connection Status"))
	b.WriteString("\n")
	status := charts.StatusSeries(snap.Timeline)
	if status.Empty() {
		b.WriteString("  " + DimText.Render("No data available") + "\n")
	} else {
		b.WriteString(fmt.Sprintf("  %-24s %s\n", "Success Rate", charts.Sparkline(status.Series[0], sparkWidth, status.Y)))
	}

	b.WriteString(Section.Render("Speed Tests"))
	b.WriteString("\n")
	speed := charts.SpeedSeries(snap.SpeedHistory)
	if speed.Empty() {
		b.WriteString("  " + DimText.Render("No data available") + "\n")
	}
	for _, s := range speed.Series {
		b.WriteString(fmt.Sprintf("  %-24s %s\n", truncate(s.Name, 24), charts.Sparkline(s, sparkWidth, nil)))
	}
	for _, s := range snap.SpeedStats {
		b.WriteString(fmt.Sprintf("  %-24s %3d tests  down %s  up %s  ping %s\n",
			truncate(s.Provider, 24), s.TotalTests,
			value(s.AvgDownload, "Mbps"), value(s.AvgUpload, "Mbps"), value(s.AvgPing, "ms")))
	}
	if len(snap.RecentSpeed) > 0 {
		b.WriteString(DimText.Render("  recent:") + "\n")
	}
	for _, s := range snap.RecentSpeed {
		b.WriteString(fmt.Sprintf("    %s  %-20s  down %s  up %s\n",
			s.Timestamp.Local().Format("Jan 02 15:04"), truncate(s.Provider, 20),
			value(s.DownloadMbps, "Mbps"), value(s.UploadMbps, "Mbps")))
	}

	b.WriteString(Section.Render("Ping Hosts"))
	b.WriteString("\n")
	if len(snap.PingHosts) == 0 {
		b.WriteString("  " + DimText.Render("No ping data") + "\n")
	}
	for _, h := range snap.PingHosts {
		grade := h.Grade()
		b.WriteString(fmt.Sprintf("  %-24s %s %6.1f%%  avg %s  (%d/%d)\n",
			truncate(h.Host, 24), GradeStyle(grade).Render(fmt.Sprintf("%-8s", grade)),
			h.SuccessRate, value(h.AvgResponseTime, "ms"), h.SuccessfulTests, h.TotalTests))
	}

	return b.String()
}

func card(title, value, detail string) string {
	return Card.Render(CardTitle.Render(title) + "\n" + CardValue.Render(value) + "\n" + DimText.Render(detail))
}

func value(f null.Float, unit string) string {
	if !f.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.1f %s", f.Float64, unit)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"netdash/internal/database"
)

var (
	historyLimit   int
	historyExports bool
	historyDaily   int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show archived snapshots, exports or daily summaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openArchive()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()

		switch {
		case historyExports:
			return printExports(ctx, db)
		case historyDaily > 0:
			return printDaily(ctx, db)
		default:
			return printSnapshots(ctx, db)
		}
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show")
	historyCmd.Flags().BoolVar(&historyExports, "exports", false, "List exports instead of snapshots")
	historyCmd.Flags().IntVar(&historyDaily, "daily", 0, "Show daily summaries for the last N days")
	rootCmd.AddCommand(historyCmd)
}

var rule = strings.Repeat("─", 78)

func printSnapshots(ctx context.Context, db *database.DB) error {
	records, err := db.ListSnapshots(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("listing snapshots: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No snapshots archived yet. Run 'netdash' or 'netdash serve' first.")
		return nil
	}

	fmt.Println("Archived Snapshots")
	fmt.Println(rule)
	fmt.Printf("%-20s %-16s %-8s %9s %9s %8s\n", "Fetched", "Period", "Status", "Success", "24h up", "Outages")
	fmt.Println(rule)
	for _, r := range records {
		fmt.Printf("%-20s %-16s %-8s %8.1f%% %8.1f%% %8d\n",
			r.FetchedAt.Local().Format("2006-01-02 15:04:05"),
			truncate(r.Period, 16), r.Status, r.SuccessRate, r.Uptime24h, r.OutageCount)
	}
	return nil
}

func printExports(ctx context.Context, db *database.DB) error {
	records, err := db.ListExports(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("listing exports: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No exports recorded yet.")
		return nil
	}

	fmt.Println("Exports")
	fmt.Println(rule)
	fmt.Printf("%-20s %-6s %10s  %s\n", "Captured", "Format", "Size", "File")
	fmt.Println(rule)
	for _, e := range records {
		where := e.Path
		if e.Location != "" {
			where += "  " + e.Location
		}
		fmt.Printf("%-20s %-6s %10d  %s\n",
			e.CapturedAt.Local().Format("2006-01-02 15:04:05"), e.Format, e.Size, where)
	}
	return nil
}

func printDaily(ctx context.Context, db *database.DB) error {
	// Summaries are only written when snapshots are pruned or aggregated
	if err := db.AggregateDaily(ctx); err != nil {
		return fmt.Errorf("aggregating: %w", err)
	}
	days, err := db.DailySummaries(ctx, historyDaily)
	if err != nil {
		return fmt.Errorf("listing daily summaries: %w", err)
	}
	if len(days) == 0 {
		fmt.Println("No data available.")
		return nil
	}

	fmt.Printf("Daily Summaries (last %d days)\n", historyDaily)
	fmt.Println(rule)
	fmt.Printf("%-12s %10s %12s %12s %12s\n", "Date", "Snapshots", "Avg success", "Min 24h up", "Max outages")
	fmt.Println(rule)
	for _, d := range days {
		fmt.Printf("%-12s %10d %11.1f%% %11.1f%% %12d\n",
			d.Date, d.Snapshots, d.AvgSuccessRate, d.MinUptime24h, d.MaxOutages)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

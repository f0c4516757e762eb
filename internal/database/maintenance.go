package database

import (
	"context"
	"fmt"
	"time"
)

// AggregateDaily rolls snapshots up into per-day summaries so they survive pruning
func (db *DB) AggregateDaily(ctx context.Context) error {
	query := `
        INSERT OR REPLACE INTO daily_summaries (date, snapshots, avg_success_rate, min_uptime_24h, max_outages)
        SELECT
            strftime('%Y-%m-%d', fetched_at / 1000, 'unixepoch') as date,
            COUNT(*) as snapshots,
            ROUND(AVG(success_rate), 2) as avg_success_rate,
            MIN(uptime_24h) as min_uptime_24h,
            MAX(outage_count) as max_outages
        FROM snapshots
        GROUP BY date
    `
	_, err := db.ExecContext(ctx, query)
	return err
}

// Prune deletes snapshots of the UTC days before olderThan's day after folding
// them into the daily summaries. Whole days go at once, so a day that still
// has snapshots always re-aggregates to its complete summary. It returns the
// number of snapshots removed.
func (db *DB) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	if err := db.AggregateDaily(ctx); err != nil {
		return 0, fmt.Errorf("aggregating before prune: %w", err)
	}

	cutoff := olderThan.UTC().Truncate(24 * time.Hour)
	res, err := db.ExecContext(ctx, `DELETE FROM snapshots WHERE fetched_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	// Summaries are kept for a year
	if _, err := db.ExecContext(ctx, `DELETE FROM daily_summaries WHERE date < ?`,
		cutoff.AddDate(-1, 0, 0).Format("2006-01-02")); err != nil {
		return removed, err
	}

	// Vacuum to reclaim space (run occasionally)
	if time.Now().Day() == 1 { // Run on first day of month
		if _, err := db.ExecContext(ctx, "VACUUM"); err != nil {
			return removed, err
		}
	}

	return removed, nil
}

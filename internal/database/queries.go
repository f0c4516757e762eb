package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"netdash/internal/models"
)

// ErrNotFound is returned when an archived record does not exist
var ErrNotFound = errors.New("not found in archive")

// SaveSnapshot records an applied snapshot. Saving the same id twice is a no-op.
func (db *DB) SaveSnapshot(ctx context.Context, snap *models.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot %s: %w", snap.ID, err)
	}

	query := `
        INSERT OR IGNORE INTO snapshots
            (id, fetched_at, period, window_from, window_to, status, success_rate, uptime_24h, outage_count, payload)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err = db.ExecContext(ctx, query,
		snap.ID,
		snap.FetchedAt.UnixMilli(),
		snap.Period,
		snap.Window.From.UnixMilli(),
		snap.Window.To.UnixMilli(),
		snap.Status.Status,
		snap.Status.SuccessRate,
		snap.Last24h.UptimePercentage,
		snap.OutageCount,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("saving snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// ListSnapshots returns the newest archived snapshots first
func (db *DB) ListSnapshots(ctx context.Context, limit int) ([]models.SnapshotRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
        SELECT id, fetched_at, period, window_from, window_to, status, success_rate, uptime_24h, outage_count
        FROM snapshots
        ORDER BY fetched_at DESC
        LIMIT ?
    `

	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.SnapshotRecord
	for rows.Next() {
		var r models.SnapshotRecord
		var fetchedAt, from, to int64
		if err := rows.Scan(&r.ID, &fetchedAt, &r.Period, &from, &to,
			&r.Status, &r.SuccessRate, &r.Uptime24h, &r.OutageCount); err != nil {
			return nil, err
		}
		r.FetchedAt = time.UnixMilli(fetchedAt)
		r.WindowFrom = time.UnixMilli(from)
		r.WindowTo = time.UnixMilli(to)
		records = append(records, r)
	}

	return records, rows.Err()
}

// GetSnapshot loads the full archived snapshot with the given id
func (db *DB) GetSnapshot(ctx context.Context, id string) (*models.Snapshot, error) {
	var payload string
	err := db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var snap models.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", id, err)
	}
	return &snap, nil
}

// Latest returns the most recently fetched archived snapshot
func (db *DB) Latest(ctx context.Context) (*models.Snapshot, error) {
	var id string
	err := db.QueryRowContext(ctx, `SELECT id FROM snapshots ORDER BY fetched_at DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("latest snapshot: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return db.GetSnapshot(ctx, id)
}

// RecordExport stores metadata about a written export
func (db *DB) RecordExport(ctx context.Context, e models.ExportRecord) error {
	query := `
        INSERT OR REPLACE INTO exports (id, format, filename, path, location, size, captured_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `
	_, err := db.ExecContext(ctx, query,
		e.ID, e.Format, e.Filename, e.Path,
		sql.NullString{String: e.Location, Valid: e.Location != ""},
		e.Size, e.CapturedAt.UnixMilli())
	return err
}

// ListExports returns recorded exports, newest first
func (db *DB) ListExports(ctx context.Context, limit int) ([]models.ExportRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.QueryContext(ctx, `
        SELECT id, format, filename, path, location, size, captured_at
        FROM exports
        ORDER BY captured_at DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exports []models.ExportRecord
	for rows.Next() {
		var e models.ExportRecord
		var location sql.NullString
		var capturedAt int64
		if err := rows.Scan(&e.ID, &e.Format, &e.Filename, &e.Path, &location, &e.Size, &capturedAt); err != nil {
			return nil, err
		}
		e.Location = location.String
		e.CapturedAt = time.UnixMilli(capturedAt)
		exports = append(exports, e)
	}

	return exports, rows.Err()
}

// DailySummaries returns the per-day aggregates for the last days days, newest first
func (db *DB) DailySummaries(ctx context.Context, days int) ([]models.DailySummary, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT date, snapshots, avg_success_rate, min_uptime_24h, max_outages
        FROM daily_summaries
        ORDER BY date DESC
        LIMIT ?
    `, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []models.DailySummary
	for rows.Next() {
		var s models.DailySummary
		if err := rows.Scan(&s.Date, &s.Snapshots, &s.AvgSuccessRate, &s.MinUptime24h, &s.MaxOutages); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

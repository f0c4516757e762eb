package archiver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"netdash/internal/dashboard"
	"netdash/internal/models"
)

type memArchive struct {
	mu       sync.Mutex
	saved    []string
	cutoffs  []time.Time
	pruneErr error
}

func (m *memArchive) SaveSnapshot(ctx context.Context, snap *models.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, snap.ID)
	return nil
}

func (m *memArchive) ListSnapshots(ctx context.Context, limit int) ([]models.SnapshotRecord, error) {
	return nil, nil
}

func (m *memArchive) GetSnapshot(ctx context.Context, id string) (*models.Snapshot, error) {
	return nil, errors.New("not found")
}

func (m *memArchive) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cutoffs = append(m.cutoffs, olderThan)
	return 4, m.pruneErr
}

func (m *memArchive) Close() error { return nil }

func (m *memArchive) savedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.saved...)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecordSavesSnapshots(t *testing.T) {
	archive := &memArchive{}
	a := New(archive, Config{}, WithLogger(quietLogger()))
	if err := a.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	a.Record(dashboard.Event{Snapshot: &models.Snapshot{ID: "one"}})
	a.Record(dashboard.Event{Err: errors.New("refresh failed")})
	a.Record(dashboard.Event{Snapshot: &models.Snapshot{ID: "two"}})

	a.Stop()
	a.Wait()

	got := archive.savedIDs()
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Errorf("saved = %v, want [one two]", got)
	}
}

func TestPruneNow(t *testing.T) {
	archive := &memArchive{}
	var pruned int64
	a := New(archive, Config{Retention: 48 * time.Hour},
		WithLogger(quietLogger()),
		WithPruneHook(func(n int64) { pruned += n }))
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	n, err := a.PruneNow(context.Background())
	if err != nil {
		t.Fatalf("PruneNow failed: %v", err)
	}
	if n != 4 || pruned != 4 {
		t.Errorf("n = %d, hook saw %d, want 4", n, pruned)
	}
	if want := now.Add(-48 * time.Hour); !archive.cutoffs[0].Equal(want) {
		t.Errorf("cutoff = %v, want %v", archive.cutoffs[0], want)
	}
}

func TestPruneDisabledWithoutRetention(t *testing.T) {
	archive := &memArchive{}
	a := New(archive, Config{}, WithLogger(quietLogger()))

	if n, err := a.PruneNow(context.Background()); n != 0 || err != nil {
		t.Errorf("PruneNow = %d, %v; want 0, nil", n, err)
	}
	if len(archive.cutoffs) != 0 {
		t.Error("archive should not be pruned")
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	a := New(&memArchive{}, Config{Schedule: "every tuesday"}, WithLogger(quietLogger()))
	if err := a.Start(); err == nil {
		t.Error("expected an error for an invalid schedule")
	}
}

func TestStartPrunesImmediately(t *testing.T) {
	archive := &memArchive{}
	a := New(archive, Config{Retention: time.Hour}, WithLogger(quietLogger()))
	if err := a.Start(); err != nil {
		t.Fatal(err)
	}
	a.Stop()
	a.Wait()

	if len(archive.cutoffs) != 1 {
		t.Errorf("prunes = %d, want 1", len(archive.cutoffs))
	}
}

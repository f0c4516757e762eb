package archiver

import (
	"context"

	"netdash/internal/dashboard"
	"netdash/internal/models"
)

// Record is a dashboard subscriber. It never blocks the refresh that
// published evt; when the queue is full the snapshot is dropped.
func (a *Archiver) Record(evt dashboard.Event) {
	if evt.Snapshot == nil {
		return
	}
	select {
	case a.snapshots <- evt.Snapshot:
	default:
		a.logger.Warn("archive queue full, dropping snapshot", "id", evt.Snapshot.ID)
	}
}

// processSnapshots saves queued snapshots until stopped, then drains the queue
func (a *Archiver) processSnapshots() {
	defer a.wg.Done()

	for {
		select {
		case <-a.ctx.Done():
			a.drain()
			return
		case snap := <-a.snapshots:
			a.save(a.ctx, snap)
		}
	}
}

func (a *Archiver) drain() {
	for {
		select {
		case snap := <-a.snapshots:
			a.save(context.Background(), snap)
		default:
			return
		}
	}
}

func (a *Archiver) save(ctx context.Context, snap *models.Snapshot) {
	if err := a.archive.SaveSnapshot(ctx, snap); err != nil {
		a.logger.Error("failed to archive snapshot", "id", snap.ID, "err", err)
		return
	}
	a.logger.Debug("snapshot archived", "id", snap.ID, "period", snap.Period)
}

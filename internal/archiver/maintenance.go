package archiver

import "context"

// performMaintenance prunes snapshots older than the retention
func (a *Archiver) performMaintenance() {
	if _, err := a.PruneNow(a.ctx); err != nil {
		a.logger.Error("archive prune failed", "err", err)
	}
}

// PruneNow removes snapshots older than the retention and returns how many
// went. Daily summaries of the removed days are kept.
func (a *Archiver) PruneNow(ctx context.Context) (int64, error) {
	if a.config.Retention <= 0 {
		return 0, nil
	}

	cutoff := a.now().Add(-a.config.Retention)
	n, err := a.archive.Prune(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if a.onPrune != nil {
		a.onPrune(n)
	}
	a.logger.Info("archive pruned", "removed", n, "cutoff", cutoff.Format("2006-01-02"))
	return n, nil
}

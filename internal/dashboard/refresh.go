package dashboard

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"netdash/internal/models"
	"netdash/internal/period"
)

// Refresh fetches a new snapshot for the active selector and applies it
func (o *Orchestrator) Refresh(ctx context.Context) (*models.Snapshot, error) {
	return o.refresh(ctx, TriggerManual)
}

// SetSelector makes sel the active selector and refreshes immediately.
// The auto-refresh timer keeps its phase.
func (o *Orchestrator) SetSelector(ctx context.Context, sel period.Selector) (*models.Snapshot, error) {
	if _, err := period.Resolve(sel, o.now()); err != nil {
		return nil, fmt.Errorf("invalid period %s: %w", sel, err)
	}

	o.mu.Lock()
	o.selector = sel
	o.generation++
	o.mu.Unlock()

	o.logger.Info("period changed", "period", sel.String())
	return o.refresh(ctx, TriggerSelector)
}

// refresh runs one aggregation cycle. A failed cycle leaves the previous
// snapshot in place; a cycle overtaken by a selector change or a newer
// refresh is discarded, as is a timer cycle that a suspension overlapped.
func (o *Orchestrator) refresh(ctx context.Context, trigger Trigger) (*models.Snapshot, error) {
	o.mu.Lock()
	sel := o.selector
	gen := o.generation
	epoch := o.suspendEpoch
	o.seq++
	seq := o.seq
	o.inFlight++
	o.mu.Unlock()

	start := o.now()
	snap, err := o.Fetch(ctx, sel)
	elapsed := o.now().Sub(start)

	o.publishMu.Lock()
	defer o.publishMu.Unlock()

	o.mu.Lock()
	o.inFlight--
	if gen != o.generation || seq < o.appliedSeq {
		o.mu.Unlock()
		o.logger.Debug("discarding superseded refresh", "trigger", trigger, "period", sel.String(), "err", err)
		return nil, ErrStale
	}
	if trigger == TriggerTimer && (o.suspended > 0 || epoch != o.suspendEpoch) {
		o.mu.Unlock()
		o.logger.Debug("discarding timer refresh overlapped by suspension", "period", sel.String(), "err", err)
		return nil, ErrStale
	}
	if err != nil {
		o.lastErr = err
		o.mu.Unlock()
		o.logger.Warn("refresh failed, keeping previous snapshot", "trigger", trigger, "err", err)
		o.publish(Event{Seq: seq, Trigger: trigger, Err: err, Duration: elapsed, At: o.now()})
		return nil, err
	}
	o.appliedSeq = seq
	o.snapshot = snap
	o.lastErr = nil
	o.mu.Unlock()

	o.logger.Debug("snapshot applied", "trigger", trigger, "id", snap.ID, "took", elapsed)
	o.publish(Event{Seq: seq, Trigger: trigger, Snapshot: snap, Duration: elapsed, At: snap.FetchedAt})
	return snap, nil
}

// Fetch resolves sel once and issues every telemetry query concurrently. It
// succeeds only if all of them do. Fetch does not touch orchestrator state.
func (o *Orchestrator) Fetch(ctx context.Context, sel period.Selector) (*models.Snapshot, error) {
	window, err := period.Resolve(sel, o.now())
	if err != nil {
		return nil, fmt.Errorf("resolving period %s: %w", sel, err)
	}
	q := models.ForWindow(window)

	snap := &models.Snapshot{
		ID:     uuid.NewString(),
		Period: sel.String(),
		Window: window,
	}
	var (
		recent  []models.SpeedSample
		outages []models.OutageEvent
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Status, err = o.client.CurrentStatus(gctx)
		return wrap("current status", err)
	})
	g.Go(func() (err error) {
		snap.Today, err = o.client.StatsToday(gctx)
		return wrap("today stats", err)
	})
	g.Go(func() (err error) {
		snap.Last24h, err = o.client.StatsLast24h(gctx)
		return wrap("last 24h stats", err)
	})
	g.Go(func() (err error) {
		recent, err = o.client.CurrentSpeedTests(gctx)
		return wrap("recent speed tests", err)
	})
	g.Go(func() (err error) {
		snap.SpeedStats, err = o.client.SpeedStats(gctx, q)
		return wrap("speed stats", err)
	})
	g.Go(func() (err error) {
		snap.PingHosts, err = o.client.PingHosts(gctx, q)
		return wrap("ping hosts", err)
	})
	g.Go(func() (err error) {
		outages, err = o.client.RecentOutages(gctx, q)
		return wrap("outages", err)
	})
	g.Go(func() (err error) {
		snap.Timeline, err = o.client.Timeline(gctx, q)
		return wrap("timeline", err)
	})
	g.Go(func() (err error) {
		snap.SpeedHistory, err = o.client.SpeedHistory(gctx, q)
		return wrap("speed history", err)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.RecentSpeed = mostRecent(recent, o.cfg.RecentLimit)
	snap.OutageCount = len(outages)
	snap.FetchedAt = o.now()
	return snap, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

// mostRecent keeps the first n samples of a newest-first list
func mostRecent(samples []models.SpeedSample, n int) []models.SpeedSample {
	if len(samples) <= n {
		return samples
	}
	out := make([]models.SpeedSample, n)
	copy(out, samples[:n])
	return out
}

package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"
)

// SetAutoRefresh starts or stops timer-driven refreshes. The current snapshot is kept either way.
func (o *Orchestrator) SetAutoRefresh(enabled bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.autoRefresh == enabled {
		return
	}
	o.autoRefresh = enabled
	o.logger.Info("auto-refresh toggled", "enabled", enabled)
	o.syncTimerLocked()
}

// ToggleAutoRefresh flips the auto-refresh preference and returns the new value
func (o *Orchestrator) ToggleAutoRefresh() bool {
	enabled := !o.AutoRefresh()
	o.SetAutoRefresh(enabled)
	return enabled
}

// SuspendAutoRefresh pauses timer-driven refreshes until the returned release
// func is called. Suspensions nest; the auto-refresh preference itself is not
// changed, so releasing restores exactly the state that held before. Release
// is safe to call more than once. A timer refresh already in flight when
// the suspension starts is discarded rather than applied.
func (o *Orchestrator) SuspendAutoRefresh() (release func()) {
	o.mu.Lock()
	o.suspended++
	o.suspendEpoch++
	o.syncTimerLocked()
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			o.suspended--
			o.syncTimerLocked()
			o.mu.Unlock()
		})
	}
}

// syncTimerLocked starts or stops the timer goroutine to match the state.
// Callers hold o.mu.
func (o *Orchestrator) syncTimerLocked() {
	active := o.running && o.autoRefresh && o.suspended == 0
	switch {
	case active && o.timerCancel == nil:
		ctx, cancel := context.WithCancel(o.ctx)
		o.timerCancel = cancel
		o.wg.Add(1)
		go o.timerWorker(ctx, o.ctx)
	case !active && o.timerCancel != nil:
		o.timerCancel()
		o.timerCancel = nil
	}
}

// timerWorker fires a refresh every interval until ctx is cancelled. Ticks do
// not wait for the previous refresh; a tick that finds one in flight is dropped.
// The refreshes themselves run under runCtx so stopping the timer does not
// abort a fetch already under way.
func (o *Orchestrator) timerWorker(ctx, runCtx context.Context) {
	defer o.wg.Done()

	ticker := time.NewTicker(o.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !o.claimTick(ctx) {
				continue
			}
			o.wg.Add(1)
			go o.runTick(runCtx)
		}
	}
}

// claimTick decides under the lock whether a tick may start a refresh, and
// reserves the in-flight slot if so.
func (o *Orchestrator) claimTick(ctx context.Context) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if ctx.Err() != nil || !o.autoRefresh || o.suspended > 0 {
		return false
	}
	if o.inFlight > 0 {
		o.logger.Debug("refresh tick dropped, previous refresh still in flight")
		return false
	}
	o.inFlight++
	return true
}

func (o *Orchestrator) runTick(ctx context.Context) {
	defer o.wg.Done()
	defer func() {
		o.mu.Lock()
		o.inFlight--
		o.mu.Unlock()
	}()

	if _, err := o.refresh(ctx, TriggerTimer); err != nil && !errors.Is(err, ErrStale) {
		o.logger.Warn("auto-refresh failed", "err", err)
	}
}

package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"netdash/internal/models"
	"netdash/internal/period"
)

var (
	// ErrStale is returned when a refresh finished after a newer selector or refresh superseded it
	ErrStale = errors.New("refresh result superseded")
	// ErrNoSnapshot is returned when no refresh has succeeded yet
	ErrNoSnapshot = errors.New("no snapshot available yet")
)

// Defaults used when the config leaves a value unset
const (
	DefaultRefreshInterval = 5 * time.Second
	DefaultRecentLimit     = 5
)

// Config controls the refresh behaviour
type Config struct {
	RefreshInterval time.Duration
	RecentLimit     int
	AutoRefresh     bool
	Selector        period.Selector
}

// State is a copy of the orchestrator's state at one instant
type State struct {
	Selector    period.Selector
	Snapshot    *models.Snapshot
	AutoRefresh bool
	Suspended   bool
	Refreshing  bool
	LastError   error
}

// TimerActive reports whether timer-driven refreshes are currently firing
func (s State) TimerActive() bool {
	return s.AutoRefresh && !s.Suspended
}

// Orchestrator owns the dashboard state and coordinates refreshes. The
// snapshot is only ever replaced as a whole, never edited field by field.
type Orchestrator struct {
	client models.Telemetry
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	// publishMu orders apply-and-publish so subscribers see snapshots in
	// the order they were applied. Taken before mu.
	publishMu sync.Mutex

	mu           sync.Mutex
	selector     period.Selector
	generation   uint64 // bumped on every selector change
	seq          uint64 // bumped on every refresh start
	appliedSeq   uint64
	snapshot     *models.Snapshot
	lastErr      error
	autoRefresh  bool
	suspended    int
	suspendEpoch uint64 // bumped on every suspension
	inFlight     int
	subscribers  map[int]func(Event)
	nextSubID    int

	running     bool
	ctx         context.Context
	cancel      context.CancelFunc
	timerCancel context.CancelFunc
	wg          sync.WaitGroup
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an Orchestrator reading from client
func New(client models.Telemetry, cfg Config, opts ...Option) *Orchestrator {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = DefaultRecentLimit
	}
	if cfg.Selector.Kind == "" {
		cfg.Selector = period.Preset(period.DefaultKind)
	}

	o := &Orchestrator{
		client:      client,
		cfg:         cfg,
		logger:      slog.Default(),
		now:         time.Now,
		selector:    cfg.Selector,
		autoRefresh: cfg.AutoRefresh,
		subscribers: make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start runs an initial refresh and starts the auto-refresh timer if enabled
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return
	}
	o.ctx, o.cancel = context.WithCancel(ctx)
	runCtx := o.ctx
	o.running = true
	o.syncTimerLocked()
	o.mu.Unlock()

	o.logger.Info("orchestrator started",
		"period", o.Selector().String(),
		"interval", o.cfg.RefreshInterval,
		"auto_refresh", o.AutoRefresh())

	// Immediate first refresh
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		if _, err := o.refresh(runCtx, TriggerStartup); err != nil {
			o.logger.Warn("initial refresh failed", "err", err)
		}
	}()
}

// Stop halts the timer and cancels in-flight refreshes
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.running {
		return
	}
	o.running = false
	o.syncTimerLocked()
	o.cancel()
	o.logger.Info("orchestrator stopping")
}

// Wait blocks until all refresh goroutines finish
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// State returns a copy of the current state
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return State{
		Selector:    o.selector,
		Snapshot:    o.snapshot,
		AutoRefresh: o.autoRefresh,
		Suspended:   o.suspended > 0,
		Refreshing:  o.inFlight > 0,
		LastError:   o.lastErr,
	}
}

// Snapshot returns the latest applied snapshot, or ErrNoSnapshot
func (o *Orchestrator) Snapshot() (*models.Snapshot, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.snapshot == nil {
		return nil, ErrNoSnapshot
	}
	return o.snapshot, nil
}

// Selector returns the active period selector
func (o *Orchestrator) Selector() period.Selector {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.selector
}

// Window resolves the active selector against the current time, for display.
// It has no effect on fetch state.
func (o *Orchestrator) Window() (period.Window, error) {
	return period.Resolve(o.Selector(), o.now())
}

// AutoRefresh reports the auto-refresh preference
func (o *Orchestrator) AutoRefresh() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.autoRefresh
}

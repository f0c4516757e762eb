package archiver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"netdash/internal/models"
)

// DefaultSchedule prunes once a day at midnight
const DefaultSchedule = "@daily"

// Config controls what is kept and when pruning runs
type Config struct {
	Retention time.Duration // zero keeps everything
	Schedule  string        // cron expression or descriptor
}

// Archiver records applied snapshots into the local archive and prunes it on
// a schedule. The archive is a record only; nothing reads through it.
type Archiver struct {
	archive   models.Archive
	config    Config
	logger    *slog.Logger
	onPrune   func(int64)
	now       func() time.Time
	snapshots chan *models.Snapshot
	cron      *cron.Cron
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// Option configures an Archiver
type Option func(*Archiver)

func WithLogger(l *slog.Logger) Option {
	return func(a *Archiver) { a.logger = l }
}

// WithPruneHook is called with the number of removed snapshots after every prune
func WithPruneHook(fn func(int64)) Option {
	return func(a *Archiver) { a.onPrune = fn }
}

// New creates a new Archiver
func New(archive models.Archive, cfg Config, opts ...Option) *Archiver {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	ctx, cancel := context.WithCancel(context.Background())
	a := &Archiver{
		archive:   archive,
		config:    cfg,
		logger:    slog.Default(),
		now:       time.Now,
		snapshots: make(chan *models.Snapshot, 100),
		cron:      cron.New(),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start begins recording and schedules maintenance
func (a *Archiver) Start() error {
	if _, err := a.cron.AddFunc(a.config.Schedule, a.performMaintenance); err != nil {
		return fmt.Errorf("invalid archive schedule %q: %w", a.config.Schedule, err)
	}

	a.wg.Add(1)
	go a.processSnapshots()

	// Run immediately on start
	a.performMaintenance()

	a.cron.Start()
	a.logger.Info("archiver started", "schedule", a.config.Schedule, "retention", a.config.Retention)
	return nil
}

// Stop stops scheduling and lets the recorder drain what it already holds
func (a *Archiver) Stop() {
	a.logger.Info("archiver stopping")
	<-a.cron.Stop().Done()
	a.cancel()
}

// Wait blocks until all goroutines finish
func (a *Archiver) Wait() {
	a.wg.Wait()
	a.logger.Info("archiver stopped")
}

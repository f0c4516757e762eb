package cli

import (
	"github.com/spf13/cobra"

	"netdash/internal/archiver"
	"netdash/internal/tui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the live terminal dashboard (default)",
	RunE:  runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	// The terminal belongs to the dashboard, so logs only go to the file
	logger, err := newLogger(false)
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx := cmd.Context()

	orch, err := newOrchestrator(logger)
	if err != nil {
		return err
	}

	rec := recordingExporter{Exporter: newExporter(ctx, orch, true, logger), logger: logger}

	db, err := openArchive()
	if err != nil {
		logger.Warn("archive disabled", "err", err)
	} else {
		defer db.Close()
		rec.db = db
		arch := archiver.New(db, archiver.Config{
			Retention: cfg.ArchiveRetention,
			Schedule:  cfg.ArchiveSchedule,
		}, archiver.WithLogger(logger.Logger))
		if err := arch.Start(); err != nil {
			return err
		}
		defer func() {
			arch.Stop()
			arch.Wait()
		}()
		unsubscribe := orch.Subscribe(arch.Record)
		defer unsubscribe()
	}

	orch.Start(ctx)
	defer func() {
		orch.Stop()
		orch.Wait()
	}()

	return tui.Run(ctx, cfg.AppName, orch, rec)
}

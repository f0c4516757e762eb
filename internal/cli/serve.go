package cli

import (
	"github.com/spf13/cobra"

	"netdash/internal/archiver"
	"netdash/internal/metrics"
	"netdash/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP and websockets",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("listen", ":8090", "Address to listen on")
	cobra.CheckErr(v.BindPFlag("listen", serveCmd.Flags().Lookup("listen")))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(true)
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx := cmd.Context()

	orch, err := newOrchestrator(logger)
	if err != nil {
		return err
	}

	m := metrics.New()
	unsubscribe := orch.Subscribe(m.Observe)
	defer unsubscribe()

	db, err := openArchive()
	if err != nil {
		return err
	}
	defer db.Close()

	arch := archiver.New(db, archiver.Config{
		Retention: cfg.ArchiveRetention,
		Schedule:  cfg.ArchiveSchedule,
	}, archiver.WithLogger(logger.Logger), archiver.WithPruneHook(m.Pruned))
	if err := arch.Start(); err != nil {
		return err
	}
	defer func() {
		arch.Stop()
		arch.Wait()
	}()
	unsubscribeArchive := orch.Subscribe(arch.Record)
	defer unsubscribeArchive()

	server := web.New(web.Config{
		Addr:           cfg.Listen,
		AllowedOrigins: cfg.AllowedOrigins,
		AppName:        cfg.AppName,
		ExportDir:      cfg.ExportDir,
	}, orch,
		web.WithExporter(newExporter(ctx, orch, true, logger)),
		web.WithHistory(db),
		web.WithMetrics(m),
		web.WithLogger(logger.Logger))

	orch.Start(ctx)
	defer func() {
		orch.Stop()
		orch.Wait()
	}()

	logger.Info("netdash serving", "api", cfg.APIURL, "listen", cfg.Listen)
	return server.Run(ctx)
}

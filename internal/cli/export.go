package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"netdash/internal/export"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Fetch a snapshot and export the dashboard as PNG or PDF",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}

		logger, err := newLogger(true)
		if err != nil {
			return err
		}
		defer logger.Close()

		snap, err := fetchOnce(cmd.Context(), logger)
		if err != nil {
			return err
		}
		sel, err := cfg.Selector()
		if err != nil {
			return err
		}
		view := export.DashboardView(cfg.AppName, snap, sel.Label(), cfg.AutoRefresh)

		rec := recordingExporter{Exporter: newExporter(cmd.Context(), nil, false, logger), logger: logger}
		if db, err := openArchive(); err != nil {
			logger.Warn("export will not be recorded", "err", err)
		} else {
			defer db.Close()
			rec.db = db
		}

		art, err := rec.Capture(cmd.Context(), export.Static(view), format)
		if art != nil {
			fmt.Println(art.Path)
			if art.Location != "" {
				fmt.Println(art.Location)
			}
		}
		return err
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "png", "Export format (png or pdf)")
	rootCmd.AddCommand(exportCmd)
}

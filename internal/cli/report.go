package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"netdash/internal/report"
)

var reportDir string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write charts and a text summary for the configured period",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		dir := reportDir
		if dir == "" {
			dir = cfg.ExportDir
		}
		path, err := report.NewGenerator(logger.Logger).GenerateReport(dir, snap, sel.Label())
		if err != nil {
			return err
		}
		fmt.Printf("Report generated in: %s\n", path)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportDir, "output", "o", "", "Output directory (default is the export directory)")
	rootCmd.AddCommand(reportCmd)
}

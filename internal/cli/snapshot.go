package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"netdash/internal/logging"
	"netdash/internal/models"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch one snapshot for the configured period and print it as JSON",
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

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

// fetchOnce runs a single all-or-nothing fetch without starting the timer
func fetchOnce(ctx context.Context, logger *logging.Logger) (*models.Snapshot, error) {
	orch, err := newOrchestrator(logger)
	if err != nil {
		return nil, err
	}
	snap, err := orch.Fetch(ctx, orch.Selector())
	if err != nil {
		return nil, fmt.Errorf("fetching snapshot from %s: %w", cfg.APIURL, err)
	}
	return snap, nil
}

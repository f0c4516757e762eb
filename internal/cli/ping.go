package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"netdash/internal/storage"
	"netdash/internal/tui"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the monitoring backend is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client := newClient()
		health, err := client.Health(ctx)
		if err != nil {
			fmt.Printf("%s %s %s\n", tui.StatusDot(false), tui.Bold.Render(client.BaseURL()), tui.Failing.Render("unreachable"))
			return err
		}

		fmt.Printf("%s %s %s\n", tui.StatusDot(true), tui.Bold.Render(client.BaseURL()), tui.Healthy.Render("reachable"))
		keys := make([]string, 0, len(health))
		for k := range health {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %s%s\n", tui.Key.Render(k), health[k])
		}

		if !cfg.S3.Enabled() {
			return nil
		}
		s3, err := storage.NewClient(cfg.S3, nil)
		if err == nil {
			err = s3.Healthy(ctx)
		}
		if err != nil {
			fmt.Printf("%s %s %s\n", tui.StatusDot(false), tui.Bold.Render(cfg.S3.Endpoint), tui.Failing.Render("export bucket unreachable"))
			return err
		}
		fmt.Printf("%s %s %s\n", tui.StatusDot(true), tui.Bold.Render(cfg.S3.Endpoint), tui.Healthy.Render("export bucket reachable"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

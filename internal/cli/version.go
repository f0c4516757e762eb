package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"netdash/internal/tui"
)

var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// No config needed to print the version
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(tui.Banner.Render("📡 netdash"))
		fmt.Println()
		fmt.Printf("  %s %s\n", tui.Key.Render("Version"), Version)
		fmt.Printf("  %s %s\n", tui.Key.Render("API"), v.GetString("api_url"))
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"netdash/internal/config"
)

var (
	cfgFile    string
	prepareErr error
	v          = viper.New()
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "netdash",
	Short: "Live dashboard for an internet monitoring backend",
	Long: `netdash polls an internet monitoring backend and shows connectivity,
speed tests and ping statistics for a selectable period.

Without a subcommand it opens the terminal dashboard.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if prepareErr != nil {
			return fmt.Errorf("reading config: %w", prepareErr)
		}
		loaded, err := config.Load(v)
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		cfg = loaded
		return nil
	},
	RunE:         runDashboard,
	SilenceUsage: true,
}

// Execute runs the root command. Interrupts cancel the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./netdash.yaml or $HOME/netdash.yaml)")
	cobra.CheckErr(config.BindFlags(rootCmd.PersistentFlags(), v))
}

func initConfig() {
	prepareErr = config.Prepare(v, cfgFile)
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"unitscope/internal/config"
	"unitscope/internal/systemd"
	"unitscope/internal/tui/controller"
	"unitscope/internal/tui/model"
	"unitscope/pkg/logging"
)

var (
	flagConfig       string
	flagPollInterval time.Duration
	flagLogLines     int
	flagUser         bool
	flagDebug        bool
)

// rootCmd runs the dashboard. There are no required arguments: connecting
// to the service manager and showing what it reports is the whole job.
var rootCmd = &cobra.Command{
	Use:   "unitscope",
	Short: "Live terminal dashboard for systemd services",
	Long: `unitscope shows a live, navigable view of the host's systemd service
units, their journal logs and resource usage, and lets you start, stop and
restart units after an explicit confirmation.

The view polls the service manager over D-Bus and streams journal entries
for the unit you are inspecting. All control actions go through the same
polkit checks systemctl would trigger.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("poll-interval") {
			cfg.PollInterval = config.Duration(flagPollInterval)
			if cfg.MaxPollInterval < cfg.PollInterval {
				cfg.MaxPollInterval = cfg.PollInterval
			}
		}
		if cmd.Flags().Changed("log-lines") {
			cfg.LogBufferSize = flagLogLines
		}
		if cmd.Flags().Changed("user") {
			cfg.UserScope = flagUser
		}
		if cmd.Flags().Changed("debug") {
			cfg.Debug = flagDebug
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		level := logging.LevelInfo
		if cfg.Debug {
			level = logging.LevelDebug
		}
		if err := logging.InitToFile(cfg.LogFile, level); err != nil {
			return err
		}
		defer logging.Close()

		scope := systemd.ScopeSystem
		if cfg.UserScope {
			scope = systemd.ScopeUser
		}

		// The one fatal startup condition: no query capability, no dashboard.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		conn, err := systemd.Connect(ctx, scope)
		cancel()
		if err != nil {
			return fmt.Errorf("cannot reach the %s service manager: %w", scope, err)
		}
		defer conn.Close()

		logging.Info("main", "starting unitscope %s (%s scope, poll every %s)",
			cmd.Version, scope, cfg.PollInterval)

		m := model.New(cfg, conn, systemd.NewController(conn), scope, cmd.Version)
		if _, err := controller.NewProgram(m).Run(); err != nil {
			return fmt.Errorf("running UI: %w", err)
		}
		return nil
	},
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the CLI. Called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "unitscope version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())

	rootCmd.Flags().StringVar(&flagConfig, "config", "", "config file (default ~/.config/unitscope/config.yaml)")
	rootCmd.Flags().DurationVar(&flagPollInterval, "poll-interval", 5*time.Second, "base unit poll interval")
	rootCmd.Flags().IntVar(&flagLogLines, "log-lines", 2000, "log buffer capacity per unit")
	rootCmd.Flags().BoolVar(&flagUser, "user", false, "talk to the session (user) service manager")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
}

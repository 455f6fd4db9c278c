package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/worktime/internal/archive"
	"github.com/fakeyudi/worktime/internal/config"
	"github.com/fakeyudi/worktime/internal/logging"
	"github.com/fakeyudi/worktime/internal/source"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

var (
	logLevel   string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "worktime",
	Short: "Reconstruct daily work time from workstation lock and session logs",
	Long: `worktime reads a log of workstation connect, disconnect, lock and unlock
events, rebuilds the periods you were active and reports them per day.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(logLevel, cmd.ErrOrStderr())

		var global *config.Config
		var err error
		if configPath != "" {
			global, err = config.LoadFile(configPath)
		} else {
			global, err = config.LoadGlobal()
		}
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject()
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		cfg = config.Merge(global, project)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		return nil
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

// logPathFor resolves the event log: explicit argument, then log_path, then
// the default location.
func logPathFor(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if cfg.LogPath != "" {
		return cfg.LogPath, nil
	}
	return source.DefaultLogPath()
}

// archivePath resolves archive_path or the default location.
func archivePath() (string, error) {
	if cfg.ArchivePath != "" {
		return cfg.ArchivePath, nil
	}
	return archive.DefaultPath()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file to use instead of ~/.config/worktime/config.yaml")
}

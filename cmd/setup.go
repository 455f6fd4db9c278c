package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/worktime/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure worktime (re-run anytime to edit settings)",
	Args:  cobra.NoArgs,
	// Skip the merged config load so a broken config file can be repaired.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(os.Stdin.Fd()) {
			return fmt.Errorf("setup needs an interactive terminal; edit the config file directly instead")
		}

		// Load existing config as defaults if present.
		existing := config.Defaults()
		if global, err := config.LoadGlobal(); err == nil && global != nil {
			existing = config.Merge(global, nil)
		}

		updated, err := config.RunSetup(existing)
		if err != nil {
			return fmt.Errorf("setup cancelled: %w", err)
		}
		if err := updated.Validate(); err != nil {
			return fmt.Errorf("invalid settings: %w", err)
		}
		if err := config.SaveGlobal(&updated); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		path, _ := config.GlobalPath()
		cmd.Printf("  ✓ Settings saved to %s\n", path)
		cmd.Println("  Run 'worktime report' to see your work time.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

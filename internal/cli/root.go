// Package cli wires Cobra subcommands to application dependencies; it is a
// thin controller with no business logic.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/castorie/herald/internal/bootstrap"
	"github.com/castorie/herald/internal/config"
	"github.com/castorie/herald/internal/logging"
)

// NewRootCmd creates the root command and registers all subcommands.
func NewRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "herald",
		Short: "Chat command bot for Discord and Telegram",
		// Let main handle fatal error rendering through structured logs.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if verbose {
				logging.SetLevel(slog.LevelDebug)
			} else {
				logging.SetLevel(slog.LevelInfo)
			}

			// The config command only reads and prints merged config and
			// should not trigger first-run onboarding behavior.
			switch cmd.Name() {
			case "config", "version":
				return nil
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			firstRun := false
			if _, err := os.Stat(cfg.ConfigPath()); errors.Is(err, os.ErrNotExist) {
				firstRun = true
			} else if err != nil {
				return fmt.Errorf("stat herald config file %q: %w", cfg.ConfigPath(), err)
			}

			if err := bootstrap.Initialize(cfg); err != nil {
				return err
			}

			if firstRun {
				// First-run bootstrap is an onboarding path, not a fatal
				// error. Print guidance and exit cleanly so logs do not
				// report failures.
				if _, err := fmt.Fprintf(
					cmd.ErrOrStderr(),
					"First run setup complete.\nEdit config file: %s\nRestart herald.\n",
					cfg.ConfigPath(),
				); err != nil {
					return err
				}
				os.Exit(0)
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to `herald serve` when no subcommand is provided.
			serveCmd, _, err := cmd.Find([]string{"serve"})
			if err != nil {
				return err
			}
			serveCmd.SetContext(cmd.Context())
			return serveCmd.RunE(serveCmd, args)
		},
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging (debug level)")

	return root
}

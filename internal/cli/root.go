// Package cli wires the cobra command surface. Commands collect input
// and mutate the session store; the interactive connection itself is
// delegated to internal/relay once all prompting is done.
package cli

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devlg/devlg/internal/config"
	"github.com/devlg/devlg/internal/errors"
	"github.com/devlg/devlg/internal/ui"
)

// cfgPath overrides the default config location when --config is set.
var cfgPath string

// rootCmd is the base command for devlg.
var rootCmd = &cobra.Command{
	Use:   "devlg",
	Short: "SSH session bookmarks with one-command login",
	Long: `devlg keeps a bookmark file of SSH sessions (host, user, port,
credential) and opens an interactive terminal to any of them with a
single command.

Examples:
  devlg add web --host example.com --user deploy --key ~/.ssh/id_ed25519
  devlg login web
  devlg list --detailed`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
// Structured errors already carry their own formatting, so they are
// printed as-is; anything else gets the failure symbol.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

func formatError(err error) string {
	var derr *errors.Error
	if stderrors.As(err, &derr) {
		return err.Error()
	}
	return fmt.Sprintf("%s %v", ui.SymbolFail, err)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/.config/devlg/config.yaml)")
}

// loadConfig reads the session store, honoring --config.
func loadConfig() (*config.Config, error) {
	if cfgPath != "" {
		return config.LoadFrom(cfgPath)
	}
	return config.Load()
}

// saveConfig writes the session store back, honoring --config.
func saveConfig(cfg *config.Config) error {
	if cfgPath != "" {
		return cfg.SaveTo(cfgPath)
	}
	return cfg.Save()
}

package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/devlg/devlg/internal/errors"
	"github.com/devlg/devlg/internal/ui"
)

var (
	deleteTagFlag string
	deleteYesFlag bool
)

// deleteCmd removes stored sessions.
var deleteCmd = &cobra.Command{
	Use:   "delete [names...]",
	Short: "Delete stored sessions",
	Long: `Delete sessions by name, or every session carrying a tag.

Examples:
  devlg delete web
  devlg delete web db staging
  devlg delete --tag decommissioned`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return deleteSessions(args, deleteTagFlag, deleteYesFlag)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().StringVar(&deleteTagFlag, "tag", "", "delete every session with this tag")
	deleteCmd.Flags().BoolVarP(&deleteYesFlag, "yes", "y", false, "skip the confirmation prompt")
}

func deleteSessions(names []string, tag string, skipConfirm bool) error {
	if len(names) == 0 && tag == "" {
		return errors.New(errors.ErrConfig,
			"Nothing to delete",
			"Pass session names or --tag.")
	}
	if len(names) > 0 && tag != "" {
		return errors.New(errors.ErrConfig,
			"Names and --tag cannot be combined",
			"Delete by name or by tag, not both.")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Resolve the victim list up front so the confirmation names it.
	var victims []string
	if tag != "" {
		for _, s := range cfg.FilterByTags([]string{tag}) {
			victims = append(victims, s.Name)
		}
		if len(victims) == 0 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("No sessions carry tag '%s'", tag),
				"Run 'devlg list' to see stored sessions and their tags.")
		}
	} else {
		for _, name := range names {
			if cfg.Get(name) == nil {
				return errors.New(errors.ErrConfig,
					fmt.Sprintf("Session '%s' not found", name),
					"Run 'devlg list' to see stored sessions.")
			}
			victims = append(victims, name)
		}
	}

	if !skipConfirm {
		confirmed := false
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Delete %d session(s): %s?", len(victims), strings.Join(victims, ", "))).
					Value(&confirmed),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Pass --yes to skip the prompt.")
		}
		if !confirmed {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	for _, name := range victims {
		if err := cfg.Remove(name); err != nil {
			return err
		}
	}
	if err := saveConfig(cfg); err != nil {
		return err
	}

	fmt.Printf("%s Deleted %d session(s)\n", ui.SymbolSuccess, len(victims))
	return nil
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devlg/devlg/internal/config"
	"github.com/devlg/devlg/internal/errors"
	"github.com/devlg/devlg/internal/ui"
)

var tagActionFlag string

// tagCmd manages tags on a stored session.
var tagCmd = &cobra.Command{
	Use:   "tag <name> [tags...]",
	Short: "Add, remove, or list tags on a session",
	Long: `Manage the tags of a stored session.

Examples:
  devlg tag web prod frontend
  devlg tag web old --action remove
  devlg tag web --action list`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return tagSession(args[0], args[1:], tagActionFlag)
	},
}

func init() {
	rootCmd.AddCommand(tagCmd)
	tagCmd.Flags().StringVar(&tagActionFlag, "action", "add", "add, remove, or list")
}

func tagSession(name string, tags []string, action string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s := cfg.Get(name)
	if s == nil {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Session '%s' not found", name),
			"Run 'devlg list' to see stored sessions.")
	}

	switch action {
	case "list":
		if len(s.Tags) == 0 {
			fmt.Printf("%s has no tags\n", s.Name)
			return nil
		}
		fmt.Println(strings.Join(s.Tags, "\n"))
		return nil

	case "add":
		if len(tags) == 0 {
			return errors.New(errors.ErrConfig,
				"No tags given",
				"Pass one or more tags to add.")
		}
		updated := *s
		updated.Tags = config.ParseTags(strings.Join(append(append([]string{}, s.Tags...), tags...), ","))
		if err := cfg.Update(updated); err != nil {
			return err
		}

	case "remove":
		if len(tags) == 0 {
			return errors.New(errors.ErrConfig,
				"No tags given",
				"Pass one or more tags to remove.")
		}
		drop := make(map[string]bool, len(tags))
		for _, t := range tags {
			drop[t] = true
		}
		updated := *s
		updated.Tags = nil
		for _, t := range s.Tags {
			if !drop[t] {
				updated.Tags = append(updated.Tags, t)
			}
		}
		if err := cfg.Update(updated); err != nil {
			return err
		}

	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown action '%s'", action),
			"Use --action add, remove, or list.")
	}

	if err := saveConfig(cfg); err != nil {
		return err
	}
	fmt.Printf("%s Updated tags on '%s'\n", ui.SymbolSuccess, name)
	return nil
}

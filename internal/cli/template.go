package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devlg/devlg/internal/errors"
	"github.com/devlg/devlg/internal/ui"
)

// templateCmd groups the template subcommands.
var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage session templates",
	Long: `Templates hold reusable session defaults (user, port, key, tags)
that 'devlg add --template' prefills.

Examples:
  devlg template add base web
  devlg template list
  devlg template delete base`,
}

// templateListCmd prints stored templates.
var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if len(cfg.Templates) == 0 {
			cmd.Println("No templates stored.")
			return nil
		}
		for i := range cfg.Templates {
			tmpl := &cfg.Templates[i]
			cmd.Printf("%-16s %s\n", tmpl.Name, sessionTarget(tmpl))
		}
		return nil
	},
}

// templateAddCmd snapshots an existing session as a template.
var templateAddCmd = &cobra.Command{
	Use:   "add <template> <session>",
	Short: "Create a template from an existing session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s := cfg.Get(args[1])
		if s == nil {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Session '%s' not found", args[1]),
				"Run 'devlg list' to see stored sessions.")
		}
		if err := cfg.AddTemplate(args[0], *s); err != nil {
			return err
		}
		if err := saveConfig(cfg); err != nil {
			return err
		}
		fmt.Printf("%s Stored template '%s'\n", ui.SymbolSuccess, args[0])
		return nil
	},
}

// templateDeleteCmd removes a template.
var templateDeleteCmd = &cobra.Command{
	Use:   "delete <template>",
	Short: "Delete a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.RemoveTemplate(args[0]); err != nil {
			return err
		}
		if err := saveConfig(cfg); err != nil {
			return err
		}
		fmt.Printf("%s Deleted template '%s'\n", ui.SymbolSuccess, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)
	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateAddCmd)
	templateCmd.AddCommand(templateDeleteCmd)
}

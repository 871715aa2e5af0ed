package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devlg/devlg/internal/config"
	"github.com/devlg/devlg/internal/ui"
)

var (
	listDetailedFlag bool
	listTagsFlag     string
)

// listCmd prints the stored sessions.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	Long: `List stored sessions, optionally filtered by tag.

Examples:
  devlg list
  devlg list --detailed
  devlg list --tags prod,frontend`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listSessions(cmd, listDetailedFlag, listTagsFlag)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVarP(&listDetailedFlag, "detailed", "d", false, "show a detailed table")
	listCmd.Flags().StringVar(&listTagsFlag, "tags", "", "filter by comma-separated tags (any match)")
}

func listSessions(cmd *cobra.Command, detailed bool, tagsFlag string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sessions := cfg.Sessions
	if tagsFlag != "" {
		sessions = cfg.FilterByTags(config.ParseTags(tagsFlag))
	}

	if len(sessions) == 0 {
		cmd.Println("No sessions found. Run 'devlg add' to store one.")
		return nil
	}

	if detailed {
		rows := make([]ui.SessionTableRow, len(sessions))
		for i, s := range sessions {
			rows[i] = ui.SessionTableRow{
				Name:   s.Name,
				Target: sessionTarget(&s),
				Auth:   string(s.AuthType),
				Tags:   s.Tags,
			}
		}
		cmd.Println(ui.RenderSessionTable(rows))
		return nil
	}

	for _, s := range sessions {
		line := fmt.Sprintf("%-16s %s", s.Name, sessionTarget(&s))
		if len(s.Tags) > 0 {
			line += "  [" + strings.Join(s.Tags, ", ") + "]"
		}
		cmd.Println(line)
	}
	return nil
}

// sessionTarget renders the bare connection target, without the
// session name that Label() carries.
func sessionTarget(s *config.Session) string {
	return fmt.Sprintf("%s@%s:%d", s.User, s.Host, s.Port)
}

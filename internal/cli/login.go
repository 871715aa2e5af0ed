package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devlg/devlg/internal/config"
	"github.com/devlg/devlg/internal/errors"
	"github.com/devlg/devlg/internal/relay"
	"github.com/devlg/devlg/internal/ui"
)

var (
	loginTagsFlag   string
	loginSystemFlag bool
)

// loginCmd opens an interactive terminal to a stored session.
var loginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Open an interactive terminal to a session",
	Long: `Open an interactive terminal to a stored session.

Without a name (or with a name matching several sessions) an
interactive picker is shown. --tags narrows the candidates. --system
(or setting DEVLG_USE_SYSTEM_SSH) shells out to the system ssh client
instead of the built-in one.

Examples:
  devlg login web
  devlg login --tags prod
  devlg login web --system`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		return loginSession(name, loginTagsFlag, loginSystemFlag)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginTagsFlag, "tags", "", "filter candidates by comma-separated tags")
	loginCmd.Flags().BoolVar(&loginSystemFlag, "system", false, "use the system ssh client")
}

func loginSession(name, tagsFlag string, useSystem bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := resolveSession(cfg, name, config.ParseTags(tagsFlag))
	if err != nil {
		return err
	}
	if s == nil {
		fmt.Println("Cancelled.")
		return nil
	}

	fmt.Printf("Connecting to %s...\n", s.Label())
	return connectorFor(useSystem).Connect(relay.DescriptorFromSession(s))
}

// connectorFor picks the built-in relay or the system ssh client.
// DEVLG_USE_SYSTEM_SSH forces the system client without the flag.
func connectorFor(useSystem bool) relay.Connector {
	if useSystem || os.Getenv("DEVLG_USE_SYSTEM_SSH") != "" {
		return relay.NewSystemConnector()
	}
	return relay.NewCoordinator()
}

// resolveSession turns the optional name and tag filter into exactly
// one session, prompting with the picker when several match. A nil
// session with nil error means the user cancelled the picker.
func resolveSession(cfg *config.Config, name string, tags []string) (*config.Session, error) {
	if name != "" {
		if s := cfg.Get(name); s != nil && (len(tags) == 0 || s.HasAnyTag(tags)) {
			return s, nil
		}
		matches := cfg.Search(name, tags)
		switch len(matches) {
		case 0:
			return nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("No session matches '%s'", name),
				"Run 'devlg list' to see stored sessions.")
		case 1:
			return cfg.Get(matches[0].Name), nil
		default:
			return pickFrom(cfg, matches)
		}
	}

	candidates := cfg.Sessions
	if len(tags) > 0 {
		candidates = cfg.FilterByTags(tags)
	}
	if len(candidates) == 0 {
		return nil, errors.New(errors.ErrConfig,
			"No sessions to connect to",
			"Run 'devlg add' to store one.")
	}
	return pickFrom(cfg, candidates)
}

func pickFrom(cfg *config.Config, sessions []config.Session) (*config.Session, error) {
	infos := make([]ui.SessionInfo, len(sessions))
	for i, s := range sessions {
		infos[i] = ui.SessionInfo{
			Name: s.Name,
			User: s.User,
			Host: s.Host,
			Port: s.Port,
			Tags: s.Tags,
		}
	}

	picked, err := ui.PickSession(infos)
	if err != nil {
		return nil, err
	}
	if picked == nil {
		return nil, nil
	}
	return cfg.Get(picked.Name), nil
}

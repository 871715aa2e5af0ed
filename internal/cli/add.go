package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/devlg/devlg/internal/config"
	"github.com/devlg/devlg/internal/errors"
	"github.com/devlg/devlg/internal/ui"
)

var (
	addHostFlag     string
	addUserFlag     string
	addPortFlag     int
	addAuthFlag     string
	addKeyFlag      string
	addPasswordFlag string
	addTagsFlag     string
	addTemplateFlag string
	addSSHAliasFlag string
	addInsecureFlag bool
)

// addCmd stores a new session bookmark.
var addCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Store a new session bookmark",
	Long: `Store a new session bookmark in the config file.

With --host the session is created directly from flags. Without it an
interactive form collects the missing fields. --template and
--from-ssh-config prefill the form from a stored template or from an
alias in ~/.ssh/config.

Examples:
  devlg add web --host example.com --user deploy --key ~/.ssh/id_ed25519
  devlg add db --host db.internal --user admin --auth password --password s3cret --port 2222
  devlg add gpu --from-ssh-config gpu-box
  devlg add staging --template base --host staging.example.com`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		interactive := !cmd.Flags().Changed("host")
		return addSession(name, interactive)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVar(&addHostFlag, "host", "", "remote host or address")
	addCmd.Flags().StringVar(&addUserFlag, "user", "", "login user")
	addCmd.Flags().IntVar(&addPortFlag, "port", 22, "ssh port")
	addCmd.Flags().StringVar(&addAuthFlag, "auth", "key", "auth method: key or password")
	addCmd.Flags().StringVar(&addKeyFlag, "key", "", "private key path (key auth)")
	addCmd.Flags().StringVar(&addPasswordFlag, "password", "", "password (password auth)")
	addCmd.Flags().StringVar(&addTagsFlag, "tags", "", "comma-separated tags")
	addCmd.Flags().StringVar(&addTemplateFlag, "template", "", "prefill from a stored template")
	addCmd.Flags().StringVar(&addSSHAliasFlag, "from-ssh-config", "", "prefill from an ~/.ssh/config alias")
	addCmd.Flags().BoolVar(&addInsecureFlag, "insecure", false, "skip host key verification for this session")
}

func addSession(name string, interactive bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := prefillSession(cfg, name)
	if err != nil {
		return err
	}

	if interactive {
		cancelled, err := promptSession(&s)
		if err != nil {
			return err
		}
		if cancelled {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := s.Validate(); err != nil {
		return err
	}
	if err := cfg.Add(s); err != nil {
		return err
	}
	if err := saveConfig(cfg); err != nil {
		return err
	}

	fmt.Printf("%s Added session '%s' (%s)\n", ui.SymbolSuccess, s.Name, sessionTarget(&s))
	return nil
}

// prefillSession builds the starting session from template, ssh config
// alias, and flags, in that order of precedence (later wins).
func prefillSession(cfg *config.Config, name string) (config.Session, error) {
	var s config.Session

	if addTemplateFlag != "" {
		tmpl := cfg.GetTemplate(addTemplateFlag)
		if tmpl == nil {
			return s, errors.New(errors.ErrConfig,
				fmt.Sprintf("Template '%s' not found", addTemplateFlag),
				"Run 'devlg template list' to see stored templates.")
		}
		s = *tmpl
		s.Name = ""
	}

	if addSSHAliasFlag != "" {
		resolved, err := config.FromSSHConfig(addSSHAliasFlag)
		if err != nil {
			return s, err
		}
		s = mergeSessions(s, resolved)
	}

	if name != "" {
		s.Name = name
	}
	if addHostFlag != "" {
		s.Host = addHostFlag
	}
	if addUserFlag != "" {
		s.User = addUserFlag
	}
	if s.Port == 0 || addPortFlag != 22 {
		s.Port = addPortFlag
	}
	if addKeyFlag != "" {
		s.KeyPath = addKeyFlag
	}
	if addPasswordFlag != "" {
		s.Password = addPasswordFlag
	}
	if addAuthFlag != "key" || s.AuthType == "" {
		auth, err := config.ParseAuthType(addAuthFlag)
		if err != nil {
			return s, err
		}
		s.AuthType = auth
	}
	// --password alone implies password auth
	if addPasswordFlag != "" && addKeyFlag == "" && addAuthFlag == "key" {
		s.AuthType = config.AuthPassword
	}
	if addTagsFlag != "" {
		s.Tags = config.ParseTags(addTagsFlag)
	}
	if addInsecureFlag {
		strict := false
		s.StrictHostKey = &strict
	}
	return s, nil
}

// mergeSessions overlays non-zero fields of b onto a.
func mergeSessions(a, b config.Session) config.Session {
	if b.Host != "" {
		a.Host = b.Host
	}
	if b.User != "" {
		a.User = b.User
	}
	if b.Port != 0 {
		a.Port = b.Port
	}
	if b.KeyPath != "" {
		a.KeyPath = b.KeyPath
		a.AuthType = config.AuthKey
	}
	return a
}

// promptSession collects missing fields with an interactive form.
func promptSession(s *config.Session) (bool, error) {
	if s.Port == 0 {
		s.Port = 22
	}
	port := strconv.Itoa(s.Port)
	auth := string(s.AuthType)
	if auth == "" {
		auth = string(config.AuthKey)
	}
	tags := strings.Join(s.Tags, ", ")
	confirmed := true

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Session name").
				Description("A short name to log in with, e.g. 'web'").
				Value(&s.Name).
				Validate(func(v string) error {
					if strings.TrimSpace(v) == "" {
						return fmt.Errorf("name is required")
					}
					if strings.ContainsAny(v, " \t\n:") {
						return fmt.Errorf("name cannot contain whitespace or ':'")
					}
					return nil
				}),
			huh.NewInput().
				Title("Host").
				Placeholder("example.com or 192.168.1.10").
				Value(&s.Host).
				Validate(func(v string) error {
					if strings.TrimSpace(v) == "" {
						return fmt.Errorf("host is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("User").
				Value(&s.User).
				Validate(func(v string) error {
					if strings.TrimSpace(v) == "" {
						return fmt.Errorf("user is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Port").
				Value(&port).
				Validate(func(v string) error {
					n, err := strconv.Atoi(strings.TrimSpace(v))
					if err != nil || n < 1 || n > 65535 {
						return fmt.Errorf("port must be 1-65535")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Authentication").
				Options(
					huh.NewOption("Private key", string(config.AuthKey)),
					huh.NewOption("Password", string(config.AuthPassword)),
				).
				Value(&auth),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Private key path").
				Placeholder("~/.ssh/id_ed25519").
				Value(&s.KeyPath),
		).WithHideFunc(func() bool { return auth != string(config.AuthKey) }),
		huh.NewGroup(
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&s.Password),
		).WithHideFunc(func() bool { return auth != string(config.AuthPassword) }),
		huh.NewGroup(
			huh.NewInput().
				Title("Tags (optional)").
				Placeholder("prod, frontend").
				Value(&tags),
			huh.NewConfirm().
				Title("Save this session?").
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		return false, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Pass --host and friends to add non-interactively.")
	}
	if !confirmed {
		return true, nil
	}

	s.Port, _ = strconv.Atoi(strings.TrimSpace(port))
	s.AuthType = config.AuthType(auth)
	s.Tags = config.ParseTags(tags)
	return false, nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devlg/devlg/internal/config"
	"github.com/devlg/devlg/internal/errors"
	"github.com/devlg/devlg/internal/ui"
)

var (
	modifyHostFlag     string
	modifyUserFlag     string
	modifyPortFlag     int
	modifyAuthFlag     string
	modifyKeyFlag      string
	modifyPasswordFlag string
	modifyTagsFlag     string
	modifyRenameFlag   string
	modifyInsecureFlag bool
)

// modifyCmd updates fields of an existing session.
var modifyCmd = &cobra.Command{
	Use:   "modify <name>",
	Short: "Update a stored session",
	Long: `Update fields of a stored session. Only the flags you pass change;
everything else keeps its current value.

Examples:
  devlg modify web --port 2222
  devlg modify web --auth password --password s3cret
  devlg modify web --rename www`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return modifySession(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(modifyCmd)
	modifyCmd.Flags().StringVar(&modifyHostFlag, "host", "", "remote host or address")
	modifyCmd.Flags().StringVar(&modifyUserFlag, "user", "", "login user")
	modifyCmd.Flags().IntVar(&modifyPortFlag, "port", 22, "ssh port")
	modifyCmd.Flags().StringVar(&modifyAuthFlag, "auth", "", "auth method: key or password")
	modifyCmd.Flags().StringVar(&modifyKeyFlag, "key", "", "private key path (key auth)")
	modifyCmd.Flags().StringVar(&modifyPasswordFlag, "password", "", "password (password auth)")
	modifyCmd.Flags().StringVar(&modifyTagsFlag, "tags", "", "replace tags (comma-separated)")
	modifyCmd.Flags().StringVar(&modifyRenameFlag, "rename", "", "new session name")
	modifyCmd.Flags().BoolVar(&modifyInsecureFlag, "insecure", false, "skip host key verification for this session")
}

func modifySession(cmd *cobra.Command, name string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	existing := cfg.Get(name)
	if existing == nil {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Session '%s' not found", name),
			"Run 'devlg list' to see stored sessions.")
	}
	s := *existing

	flags := cmd.Flags()
	if flags.Changed("host") {
		s.Host = modifyHostFlag
	}
	if flags.Changed("user") {
		s.User = modifyUserFlag
	}
	if flags.Changed("port") {
		s.Port = modifyPortFlag
	}
	if flags.Changed("auth") {
		auth, err := config.ParseAuthType(modifyAuthFlag)
		if err != nil {
			return err
		}
		s.AuthType = auth
	}
	if flags.Changed("key") {
		s.KeyPath = modifyKeyFlag
		if !flags.Changed("auth") {
			s.AuthType = config.AuthKey
		}
	}
	if flags.Changed("password") {
		s.Password = modifyPasswordFlag
		if !flags.Changed("auth") && !flags.Changed("key") {
			s.AuthType = config.AuthPassword
		}
	}
	if flags.Changed("tags") {
		s.Tags = config.ParseTags(modifyTagsFlag)
	}
	if flags.Changed("insecure") {
		strict := !modifyInsecureFlag
		s.StrictHostKey = &strict
	}

	if flags.Changed("rename") {
		if other := cfg.Get(modifyRenameFlag); other != nil {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Session '%s' already exists", modifyRenameFlag),
				"Pick a different name.")
		}
		s.Name = modifyRenameFlag
	}

	if err := s.Validate(); err != nil {
		return err
	}

	if s.Name != name {
		if err := cfg.Remove(name); err != nil {
			return err
		}
		if err := cfg.Add(s); err != nil {
			return err
		}
	} else if err := cfg.Update(s); err != nil {
		return err
	}

	if err := saveConfig(cfg); err != nil {
		return err
	}

	fmt.Printf("%s Updated session '%s' (%s)\n", ui.SymbolSuccess, s.Name, sessionTarget(&s))
	return nil
}

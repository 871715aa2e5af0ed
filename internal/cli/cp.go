package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devlg/devlg/internal/scp"
	"github.com/devlg/devlg/internal/ui"
)

var cpRecursiveFlag bool

// cpCmd copies files to or from a stored session.
var cpCmd = &cobra.Command{
	Use:   "cp <src> <dst>",
	Short: "Copy files to or from a session",
	Long: `Copy files between the local machine and a stored session using
the system scp client. A remote endpoint is written name:path where
name is a stored session.

Examples:
  devlg cp web:/var/log/app.log ./app.log
  devlg cp ./dump.sql db:backups/dump.sql
  devlg cp --recursive web:/etc/nginx ./nginx`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return copyFiles(args[0], args[1], cpRecursiveFlag)
	},
}

func init() {
	rootCmd.AddCommand(cpCmd)
	cpCmd.Flags().BoolVarP(&cpRecursiveFlag, "recursive", "r", false, "copy directories recursively")
}

func copyFiles(srcArg, dstArg string, recursive bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	src, err := scp.ParseEndpoint(cfg, srcArg)
	if err != nil {
		return err
	}
	dst, err := scp.ParseEndpoint(cfg, dstArg)
	if err != nil {
		return err
	}

	if err := scp.NewCopier().Copy(src, dst, recursive); err != nil {
		return err
	}

	fmt.Printf("%s Copied %s to %s\n", ui.SymbolSuccess, src.URI(), dst.URI())
	return nil
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"docstage/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a docstage.yaml with the default settings",
	Long: `Write docstage.yaml into dir (default: the current directory) with the
default server, stage and output settings, ready to edit.

Examples:
  docstage init
  docstage init ./project --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing docstage.yaml")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	path := filepath.Join(dir, "docstage.yaml")

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green("wrote"), path)
	return nil
}

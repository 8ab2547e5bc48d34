package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/standardbeagle/uisel/internal/config"
	"github.com/standardbeagle/uisel/internal/notify"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a documented " + config.ConfigFileName + " file",
	Args:  cobra.MaximumNArgs(1),
	Run:   runInit,
}

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	path := filepath.Join(dir, config.ConfigFileName)

	if force, _ := cmd.Flags().GetBool("force"); !force {
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(os.Stderr, "%s already exists (use --force to overwrite)\n", path)
			os.Exit(1)
		}
	}

	if err := config.WriteDefaultConfig(path); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
		os.Exit(1)
	}
	stdout.toast("Wrote "+path, notify.Success)
}

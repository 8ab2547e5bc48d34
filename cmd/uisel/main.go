package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/standardbeagle/uisel/internal/debug"
)

const appName = "uisel"

// Version is set at build time.
var Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Pick UI elements in a running app and turn them into coding prompts",
	Long: `uisel proxies your dev server and injects an element picker into every page.

Turn on selection mode in the floating panel (or through the MCP tools), click
any element, and uisel resolves it to a component with its source file, line
range and snippet. Describe the change and uisel writes the instruction for
your coding assistant.

Examples:
  uisel serve --target http://localhost:3000
  uisel mcp
  uisel resolve dist/index.html "#checkout button"
  uisel prompt dist/index.html "#qty" "it should accept only numbers" --type fix --copy
  uisel init`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := setupLogging(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// setupLogging applies --debug and --log-file. A log file implies debug
// logging.
func setupLogging(cmd *cobra.Command) error {
	if d, _ := cmd.Flags().GetBool("debug"); d {
		debug.Enable()
	}
	name, _ := cmd.Flags().GetString("log-file")
	if name == "" {
		return nil
	}
	if err := debug.SetLogFile(name); err != nil {
		return err
	}
	debug.Enable()
	debug.Info(appName, "writing logs to %s", debug.GetLogFilePath())
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s v%s\n", appName, Version)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a .uisel.kdl file (default: search from the working directory)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-file", "", "Also write logs to this file under the user cache directory (implies --debug)")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	err := rootCmd.Execute()
	debug.Close()
	if err != nil {
		os.Exit(1)
	}
}

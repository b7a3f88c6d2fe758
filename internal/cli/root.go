// Package cli defines the Cobra command tree for the toolshim CLI.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// version, commit, date are set via -ldflags at build time.
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "toolshim",
	Short: "Embeddings, token counting and tool execution behind one interface",
	Long: `Toolshim puts embedding providers (Ollama, Voyage, OpenAI) and token
counters (Ollama, Voyage, Anthropic, tiktoken) behind small interfaces,
and runs tool actions through a before/try/after executor with
per-action output middleware.

Actions can be run directly with 'toolshim exec' or served to MCP clients
with 'toolshim serve'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute(v, c, d string) {
	version, commit, date = v, c, d
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "global config file (default ~/.config/toolshim/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newEmbedCmd(),
		newTokensCmd(),
		newExecCmd(),
		newToolsCmd(),
		newServeCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "toolshim %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

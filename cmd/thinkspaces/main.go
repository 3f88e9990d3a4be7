// Command thinkspaces serves the Think Spaces API and runs one-off agent
// interactions from the terminal.
package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "thinkspaces",
	Short: "Think Spaces: shared spaces of notes and LLM agents",
	Long: `Think Spaces organizes notes (artifacts) and LLM personas (agents) into
spaces. Agents answer with the space's recent artifacts and their own
conversation history as context.

Use 'thinkspaces serve' to start the HTTP API, or 'thinkspaces ask' to talk
to an agent from the terminal.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to thinkspaces.toml (default $THINKSPACES_CONFIG or ./thinkspaces.toml)")

	serveCmd.Flags().String("addr", "", "listen address (overrides [server] addr)")
	rootCmd.AddCommand(serveCmd)

	rootCmd.AddCommand(providersCmd)

	askCmd.Flags().String("agent", "", "agent ID to ask")
	askCmd.Flags().String("system", "", "system prompt override for this interaction (may be empty)")
	askCmd.Flags().Int("limit", 5, "number of recent artifacts to include (0-25)")
	askCmd.Flags().Bool("raw", false, "print the response without terminal rendering")
	_ = askCmd.MarkFlagRequired("agent")
	rootCmd.AddCommand(askCmd)
}

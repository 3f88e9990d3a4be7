package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/thinkspaces/thinkspaces"
)

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Ask an agent a single question",
	Long: `Run one interaction against an agent using the configured store and
providers. The interaction is persisted exactly as the HTTP API would.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer a.close(context.Background()) //nolint:errcheck

		ctx := cmd.Context()
		agentID, _ := cmd.Flags().GetString("agent")
		agent, err := a.store.GetAgent(ctx, agentID)
		if err != nil {
			return fmt.Errorf("agent %s: %w", agentID, err)
		}

		limit, _ := cmd.Flags().GetInt("limit")
		req := thinkspaces.InteractionRequest{
			Prompt:       strings.Join(args, " "),
			ContextLimit: limit,
		}
		if cmd.Flags().Changed("system") {
			system, _ := cmd.Flags().GetString("system")
			req.System = &system
		}

		rec, result, err := a.executor.Interact(ctx, agent, req, a.store)
		if err != nil {
			return err
		}

		out := result.Output
		if raw, _ := cmd.Flags().GetBool("raw"); !raw {
			out = renderTerminal(out)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		fmt.Fprintf(cmd.ErrOrStderr(), "%s/%s · %d artifacts · %d history · %s\n",
			result.Provider, result.Model, len(rec.Context.Artifacts), len(rec.Context.History), rec.ID)
		return nil
	},
}

// renderTerminal formats Markdown for the terminal, falling back to the
// plain text when rendering fails.
func renderTerminal(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thinkspaces/thinkspaces/internal/config"
	"github.com/thinkspaces/thinkspaces/provider/resolve"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List registered providers",
	Long: `Print the provider names agents can use with the current configuration.
Providers disabled in [providers] are left out.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		reg, err := resolve.Registry(cfg.Providers, nil)
		if err != nil {
			return err
		}
		for _, name := range reg.Available() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

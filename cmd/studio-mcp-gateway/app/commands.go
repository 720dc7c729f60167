// Package app provides the studio-mcp-gateway command-line application:
// the serve and validate subcommands over a shared cobra root.
package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:               "studio-mcp-gateway",
	DisableAutoGenTag: true,
	Short:             "Studio MCP Gateway - exposes a workflow-automation platform over MCP",
	Long: `The Studio MCP Gateway is a multi-tenant server that exposes a
workflow-automation platform (workflows, runs, components, artifacts,
schedules, secrets, human-input approvals) as a Model Context Protocol
surface consumable by external AI agents.

Each connecting agent authenticates with a bearer API key, establishes a
session over Streamable HTTP, and invokes a catalog of typed tools gated
by its permission matrix.`,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// NewRootCmd builds the root command with its persistent flags and
// subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the gateway's config directory")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newValidateCmd())

	rootCmd.SilenceUsage = true
	return rootCmd
}

package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/config"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/permission"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/tools"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the gateway's configuration and tool catalog",
		Long: `Load the configured config.yaml, validate it, then build the tool
catalog in isolation (no backing services contacted) and confirm every tool's
permission path parses. Exits non-zero on the first failure.`,
		RunE: runValidate,
	}
	return cmd
}

func runValidate(cmd *cobra.Command, _ []string) error {
	configPath := viper.GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "configuration: OK")

	registry := tools.NewRegistry(tools.Deps{})
	specs := registry.Specs()
	for _, spec := range specs {
		if spec.PermissionPath == "" {
			continue
		}
		if _, err := permission.ParsePath(spec.PermissionPath); err != nil {
			return fmt.Errorf("tool %q: %w", spec.Name, err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "tool catalog: OK (%d tools, MCP path %s)\n", len(specs), cfg.Server.MCPPath)

	return nil
}

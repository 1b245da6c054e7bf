/*
PURPOSE:
  Defines the 'status' subcommand.
  Helps debug connectivity to the AutoML service before a long run.

REQUIREMENTS:
  User-specified:
  - Check the service is reachable and report its version.

  Implementation-discovered:
  - Useful validation step before committing to an hours-long search.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Client.Health()

ERROR HANDLING:
  - Prints error if the service URL is wrong or the service is down.

IMPLEMENTATION RULES:
  - Simple output to stdout.

USAGE:
  tsct-runner status --engine-url http://automl:8742

RELATED FILES:
  - internal/engine/client.go

MAINTENANCE:
  - None.
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daryltucker/tsct-runner/internal/config"
	"github.com/daryltucker/tsct-runner/internal/engine"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check connectivity to the AutoML service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if engineOverride != "" {
			cfg.EngineURL = engineOverride
		}

		c := engine.NewClient(cfg)

		fmt.Printf("Querying %s...\n", cfg.EngineURL)
		status, err := c.Health()
		if err != nil {
			return fmt.Errorf("service unreachable: %w", err)
		}
		fmt.Printf("- %s\n", status)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&engineOverride, "engine-url", "", "AutoML service URL (overrides config)")
}

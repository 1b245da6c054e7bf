/*
PURPOSE:
  Defines the root Cobra command for the TSCT Runner CLI.
  Handles global flags and command initialization.

REQUIREMENTS:
  User-specified:
  - Provide a CLI interface.
  - Support global flags like --config.

  Implementation-discovered:
  - Needs to expose an Execute() function for main.go.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/tsct-runner/main.go
  - Calls: Child commands (run, history, status)

ERROR HANDLING:
  - Returns error to main.go for exit code handling.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for flags available to all subcommands.
  - Keep Run logic in subcommands, Root is usually empty or helps.

USAGE:
  Called by main.go.

RELATED FILES:
  - cmd/tsct-runner/main.go

MAINTENANCE:
  - Update when adding new global configuration options.
*/

package cli

import (
	"github.com/spf13/cobra"
)

var (
	// cfgFile stores the path to the tool config file (if specified via flag)
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "tsct-runner",
		Short: "Train and evaluate TSCT models through the AutoML service",
		Long: `Coordinates TSCT model runs: trains via the external hyperparameter
search, or re-evaluates persisted hyperparameter records and model artifacts.
Use 'run --help' for mode options.`,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "tool config file (default is ./tsct_runner.yaml)")
}

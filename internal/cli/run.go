/*
PURPOSE:
  Defines the 'run' subcommand.
  Executes one train / test_params / test_model run and prints its metric.

REQUIREMENTS:
  User-specified:
  - mode selects which artifacts are produced vs consumed.
  - Mode-specific path requirements fail with a descriptive message and a
    non-zero exit, before any work happens.
  - On success, the metric is the only thing on stdout.

  Implementation-discovered:
  - Load tool config first, apply flag overrides, then dispatch.
  - A broken run ledger must not block a run.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Runner.Execute()
  - Uses: internal/config, internal/history

ERROR HANDLING:
  - Returns error if config load fails or the run fails; main exits 1.

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Override -> Validate -> Execute -> Print.

USAGE:
  tsct-runner run --mode train --train-path data/train.csv \
    --test-path data/test.csv --config-path tsct.yaml --output-folder out/

RELATED FILES:
  - internal/cli/root.go
  - internal/engine/runner.go

MAINTENANCE:
  - Update when a mode grows a new required input.
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daryltucker/tsct-runner/internal/config"
	"github.com/daryltucker/tsct-runner/internal/engine"
	"github.com/daryltucker/tsct-runner/internal/history"
	"github.com/daryltucker/tsct-runner/internal/model"
	"github.com/daryltucker/tsct-runner/internal/output"
)

var (
	modeFlag       string
	outputFolder   string
	modelPath      string
	paramsPath     string
	configPath     string
	trainPath      string
	testPath       string
	engineOverride string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a train, test_params, or test_model run",
	Long: `Executes one run against the AutoML service.

Modes:
  train        Run the hyperparameter search, persist the model artifact and
               the selected parameter record under the output folder, then
               report a fresh evaluation of the persisted parameters.
  test_params  Re-evaluate a persisted parameter record (no stored model).
  test_model   Re-evaluate a stored model together with a persisted record.

Every mode re-reads the parameter record and coerces it through the declared
schema before evaluation, so the reported metric always reflects what a later
reload of the same record would produce.`,
	Example: `  # Train and let the record name derive from the search metric
  tsct-runner run --mode train --train-path data/train.csv \
    --test-path data/test.csv --config-path tsct.yaml --output-folder out/

  # Re-evaluate a hand-edited parameter record
  tsct-runner run --mode test_params --params-path out/0.873.xlsx \
    --test-path data/test.csv --config-path tsct.yaml --output-folder out/

  # Re-evaluate a stored model
  tsct-runner run --mode test_model --model-path out/TSCT_model.pt \
    --params-path out/0.873.xlsx --test-path data/test.csv \
    --config-path tsct.yaml --output-folder out/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// 2. Overrides
		if engineOverride != "" {
			cfg.EngineURL = engineOverride
		}

		// 3. Validate mode before touching anything
		mode, err := model.ParseMode(modeFlag)
		if err != nil {
			return err
		}

		spec := engine.RunSpec{
			Mode:         mode,
			TrainPath:    trainPath,
			TestPath:     testPath,
			OutputFolder: outputFolder,
			ModelPath:    modelPath,
			ParamsPath:   paramsPath,
		}
		if err := spec.Validate(); err != nil {
			return err
		}

		spec.Config, err = config.LoadRunConfig(configPath)
		if err != nil {
			return err
		}

		// 4. Ledger is bookkeeping; a broken one must not block the run.
		var ledger *history.Store
		if st, err := history.NewStore(cfg.HistoryDB); err != nil {
			output.Logger.Error("Run ledger unavailable", "path", cfg.HistoryDB, "error", err)
		} else {
			ledger = st
			defer st.Close()
		}

		// 5. Execution
		client := engine.NewClient(cfg)
		runner := engine.NewRunner(cfg, client, client, ledger)

		metric, err := runner.Execute(spec)
		if err != nil {
			return err
		}

		fmt.Println(metric)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&modeFlag, "mode", "", "Mode: train, test_params, or test_model")
	runCmd.Flags().StringVarP(&outputFolder, "output-folder", "o", "", "Output folder for artifacts and summaries")
	runCmd.Flags().StringVar(&modelPath, "model-path", "", "Path to a stored model (test_model mode)")
	runCmd.Flags().StringVar(&paramsPath, "params-path", "", "Path to the parameter record (auto-derived in train mode)")
	runCmd.Flags().StringVar(&configPath, "config-path", "", "Path to the run configuration forwarded to the AutoML service")
	runCmd.Flags().StringVar(&trainPath, "train-path", "", "Path to the training data (train mode)")
	runCmd.Flags().StringVar(&testPath, "test-path", "", "Path to the testing data")
	runCmd.Flags().StringVar(&engineOverride, "engine-url", "", "AutoML service URL (overrides config)")

	runCmd.MarkFlagRequired("mode")
	runCmd.MarkFlagRequired("output-folder")
	runCmd.MarkFlagRequired("config-path")
	runCmd.MarkFlagRequired("test-path")
}

/*
PURPOSE:
  Mode-dispatch orchestrator. Decides, per mode, what must be (re)computed
  versus loaded, and what must be persisted versus merely read, between the
  external search/evaluation service and the on-disk artifacts.

REQUIREMENTS:
  User-specified:
  - train: search, persist model artifact + parameter record, then report a
    metric; test_params: evaluate a persisted record; test_model: evaluate a
    stored model with a persisted record.
  - Mode-specific required paths fail fast with no file I/O performed.
  - Hyperparameters are always re-read and coerced through the declared
    schema, even immediately after a train-mode write.

  Implementation-discovered:
  - The reported train metric is a fresh evaluation of the coerced set; the
    search's own metric only names the derived record file.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/params, internal/artifact, internal/history, internal/output

ERROR HANDLING:
  - Validation failures are *model.ConfigError, raised before any side effect.
  - Artifact/record I/O failures are fatal, no retry.
  - Search/evaluation failures propagate unchanged.
  - Ledger and summary writes are bookkeeping: logged, never fatal.

IMPLEMENTATION RULES:
  - One transition per invocation; no state across calls.
  - Single-threaded and synchronous.

USAGE:
  r := engine.NewRunner(cfg, client, client, ledger)
  metric, err := r.Execute(spec)

RELATED FILES:
  - internal/engine/client.go
  - internal/params/codec.go

MAINTENANCE:
  - Update Validate() when a mode grows a new required input.
*/

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/daryltucker/tsct-runner/internal/artifact"
	"github.com/daryltucker/tsct-runner/internal/config"
	"github.com/daryltucker/tsct-runner/internal/history"
	"github.com/daryltucker/tsct-runner/internal/model"
	"github.com/daryltucker/tsct-runner/internal/output"
	"github.com/daryltucker/tsct-runner/internal/params"
)

// SearchEngine proposes and evaluates hyperparameter candidates and returns
// the best model, its hyperparameters, and its metric.
type SearchEngine interface {
	Search(trainPath, testPath string, cfg map[string]interface{}) (SearchResult, error)
}

// Evaluator computes an evaluation metric for a hyperparameter set, with or
// without a stored model.
type Evaluator interface {
	ScoreParams(testPath string, cfg map[string]interface{}, set params.Set) (float64, error)
	ScoreModel(modelPath, testPath string, cfg map[string]interface{}, set params.Set) (float64, error)
}

// RunSpec parameterizes a single run. A Runner holds no state across calls;
// everything a run touches is named here.
type RunSpec struct {
	Mode         model.Mode
	TrainPath    string
	TestPath     string
	Config       map[string]interface{}
	OutputFolder string
	ModelPath    string
	ParamsPath   string
}

// Validate enforces the mode-specific preconditions. It performs no I/O, so
// a violation leaves the filesystem untouched.
func (s RunSpec) Validate() error {
	if _, err := model.ParseMode(string(s.Mode)); err != nil {
		return err
	}
	if s.OutputFolder == "" {
		return &model.ConfigError{Field: "output_folder", Reason: "required"}
	}
	if s.TestPath == "" {
		return &model.ConfigError{Field: "test_path", Reason: "required"}
	}

	switch s.Mode {
	case model.ModeTrain:
		if s.TrainPath == "" {
			return &model.ConfigError{Field: "train_path", Reason: "required when mode is train"}
		}
	case model.ModeTestParams:
		if s.ParamsPath == "" {
			return &model.ConfigError{Field: "params_path", Reason: "required when mode is test_params"}
		}
	case model.ModeTestModel:
		if s.ParamsPath == "" {
			return &model.ConfigError{Field: "params_path", Reason: "required when mode is test_model"}
		}
		if s.ModelPath == "" {
			return &model.ConfigError{Field: "model_path", Reason: "required when mode is test_model"}
		}
	}
	return nil
}

// Runner wires the search engine, evaluator, codec, and artifact store into
// the per-mode state machine.
type Runner struct {
	cfg    *config.Config
	search SearchEngine
	eval   Evaluator
	ledger *history.Store // optional; nil disables the run ledger
}

// NewRunner creates a runner. ledger may be nil.
func NewRunner(cfg *config.Config, search SearchEngine, eval Evaluator, ledger *history.Store) *Runner {
	return &Runner{
		cfg:    cfg,
		search: search,
		eval:   eval,
		ledger: ledger,
	}
}

// Execute performs one run and returns its metric.
func (r *Runner) Execute(spec RunSpec) (float64, error) {
	start := time.Now()

	if err := spec.Validate(); err != nil {
		return 0, err
	}

	paramsPath := spec.ParamsPath
	artifactPath := ""

	if spec.Mode == model.ModeTrain {
		output.Logger.Info("Starting hyperparameter search",
			"train", spec.TrainPath, "test", spec.TestPath)

		res, err := r.search.Search(spec.TrainPath, spec.TestPath, spec.Config)
		if err != nil {
			return 0, fmt.Errorf("search: %w", err)
		}
		output.Logger.Info("Search complete", "search_metric", res.Metric)

		artifactPath, err = artifact.SaveModel(spec.OutputFolder, res.Model)
		if err != nil {
			return 0, err
		}
		output.Logger.Info("Model artifact written", "path", artifactPath)

		if paramsPath == "" {
			// Same derivation as the original tooling: the record is named
			// by the search metric's shortest string form.
			name := strconv.FormatFloat(res.Metric, 'g', -1, 64) + ".xlsx"
			paramsPath = filepath.Join(spec.OutputFolder, name)
		}
		if err := params.Save(paramsPath, res.Params); err != nil {
			return 0, err
		}
		output.Logger.Info("Parameter record written", "path", paramsPath)
	}

	// Load-and-coerce, unconditionally. Right after a train-mode write this
	// forces the fresh hyperparameters through the same lossy round trip as
	// a later reload: the evaluator always sees exactly what a future reload
	// of this record would yield.
	loaded, err := params.Load(paramsPath)
	if err != nil {
		return 0, err
	}
	set := params.TSCTSchema.Coerce(loaded)

	var metric float64
	switch spec.Mode {
	case model.ModeTestModel:
		metric, err = r.eval.ScoreModel(spec.ModelPath, spec.TestPath, spec.Config, set)
	default:
		// train falls through to a fresh evaluation of the coerced set; the
		// search metric is not what gets reported.
		metric, err = r.eval.ScoreParams(spec.TestPath, spec.Config, set)
	}
	if err != nil {
		return 0, fmt.Errorf("evaluate: %w", err)
	}

	rec := model.RunRecord{
		RunID:        history.NewRunID(),
		Mode:         spec.Mode,
		OutputFolder: spec.OutputFolder,
		ParamsPath:   paramsPath,
		Metric:       metric,
		Timestamp:    start,
		Duration:     time.Since(start),
	}
	switch spec.Mode {
	case model.ModeTrain:
		rec.ModelPath = artifactPath
	case model.ModeTestModel:
		rec.ModelPath = spec.ModelPath
	}
	r.bookkeep(rec)

	return metric, nil
}

// bookkeep records the finished run in the ledger and the JSONL summary.
// Failures here are logged and swallowed: the run already succeeded and the
// ledger is not one of its artifacts.
func (r *Runner) bookkeep(rec model.RunRecord) {
	if r.ledger != nil {
		if err := r.ledger.Record(rec); err != nil {
			output.Logger.Error("Failed to record run in ledger", "error", err)
		}
	}

	// Test modes never created the output folder; the summary still lives there.
	if err := os.MkdirAll(rec.OutputFolder, 0755); err != nil {
		output.Logger.Error("Failed to create output folder for run summary", "error", err)
		return
	}
	w, err := output.NewJSONWriter(filepath.Join(rec.OutputFolder, r.cfg.SummaryFile))
	if err != nil {
		output.Logger.Error("Failed to open run summary", "error", err)
		return
	}
	defer w.Close()
	if err := w.Write(rec); err != nil {
		output.Logger.Error("Failed to write run summary", "error", err)
	}
}

/*
PURPOSE:
  Defines the core data structures used throughout TSCT Runner.
  These models represent run modes and completed-run records.

REQUIREMENTS:
  User-specified:
  - Three mutually exclusive run modes: train, test_params, test_model.
  - Record which artifacts a run produced/consumed and the metric it reported.

  Implementation-discovered:
  - Need JSON tags for the run summary writer and history export.

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine, internal/history, internal/output, internal/cli
  - Shared across boundaries.

ERROR HANDLING:
  - ParseMode returns *ConfigError on an unknown mode string.

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - Use time.Time and time.Duration for high precision.

USAGE:
  mode, err := model.ParseMode("train")

RELATED FILES:
  - internal/model/errors.go
  - internal/output/json.go

MAINTENANCE:
  - Update RunRecord when the history schema changes.
*/

package model

import (
	"time"
)

// Mode selects which artifacts a run produces versus consumes.
type Mode string

const (
	// ModeTrain runs the hyperparameter search and persists both the model
	// artifact and the selected parameter record.
	ModeTrain Mode = "train"
	// ModeTestParams re-evaluates a persisted parameter record without a
	// stored model.
	ModeTestParams Mode = "test_params"
	// ModeTestModel re-evaluates a stored model together with a persisted
	// parameter record.
	ModeTestModel Mode = "test_model"
)

// ParseMode validates a mode string from the CLI or config.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeTrain, ModeTestParams, ModeTestModel:
		return Mode(s), nil
	}
	return "", &ConfigError{Field: "mode", Reason: "must be one of train, test_params, test_model"}
}

// RunRecord represents one completed run for the ledger and run summaries.
type RunRecord struct {
	RunID        string        `json:"run_id"`
	Mode         Mode          `json:"mode"`
	OutputFolder string        `json:"output_folder"`
	ParamsPath   string        `json:"params_path"`
	ModelPath    string        `json:"model_path,omitempty"`
	Metric       float64       `json:"metric"`
	Timestamp    time.Time     `json:"timestamp"`
	Duration     time.Duration `json:"duration"`
}

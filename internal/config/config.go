/*
PURPOSE:
  Defines the tool configuration structure and loading logic for TSCT Runner,
  plus the loader for the opaque per-run model configuration.

REQUIREMENTS:
  User-specified:
  - Configure the AutoML service URL, timeouts, and retry policy.
  - The run configuration is an opaque mapping forwarded verbatim to the
    service; no key is interpreted here.

  Implementation-discovered:
  - Needs YAML parsing; YAML is a JSON superset, so JSON run configs from the
    original tooling load unchanged.
  - A search call can run for hours; its deadline is configured separately
    from evaluation calls.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine
  - Dependencies: gopkg.in/yaml.v3

ERROR HANDLING:
  - Returns explicit error if the tool config file is invalid.
  - Missing tool config file falls back to defaults.
  - An unreadable or unparseable run config is a *model.ConfigError.

IMPLEMENTATION RULES:
  - Config struct tags should support yaml.
  - Defaults should be sensible (local service, modest retries).

USAGE:
  cfg, err := config.Load("tsct_runner.yaml")
  runCfg, err := config.LoadRunConfig(configPath)

RELATED FILES:
  - internal/cli/root.go
  - internal/engine/client.go

MAINTENANCE:
  - Update when adding new tuning parameters.
*/

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/daryltucker/tsct-runner/internal/model"
)

// Config represents the full tool configuration for TSCT Runner.
type Config struct {
	// EngineURL is the base URL of the AutoML service.
	EngineURL string `yaml:"engine_url"`
	// SearchTimeout bounds a full hyperparameter search call.
	SearchTimeout time.Duration `yaml:"search_timeout"`
	// EvalTimeout bounds a single evaluation call.
	EvalTimeout time.Duration `yaml:"eval_timeout"`
	MaxRetries  int           `yaml:"max_retries"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
	// HistoryDB is the path of the local run ledger.
	HistoryDB string `yaml:"history_db"`
	// SummaryFile is the JSONL run summary filename written under the
	// output folder.
	SummaryFile string `yaml:"summary_file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		EngineURL:     "http://localhost:8742",
		SearchTimeout: 6 * time.Hour,
		EvalTimeout:   30 * time.Minute,
		MaxRetries:    3,
		RetryDelay:    2 * time.Second,
		HistoryDB:     "tsct_runs.db",
		SummaryFile:   "runs.jsonl",
	}
}

// Load reads the tool configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches for default files in order.
// If no file found, returns default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
	} else {
		// Search for defaults
		defaults := []string{"tsct_runner.yaml", "runner.yaml"}
		found := false
		for _, name := range defaults {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name // record which file we loaded
				found = true
				break
			}
		}
		if !found {
			// No config file found, return default
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// LoadRunConfig reads the opaque per-run model configuration. The mapping is
// never interpreted or mutated here; the orchestrator forwards it verbatim
// to the AutoML service.
func LoadRunConfig(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &model.ConfigError{Field: "config_path", Reason: "cannot read run config", Err: err}
	}

	var cfg map[string]interface{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &model.ConfigError{Field: "config_path", Reason: fmt.Sprintf("cannot parse run config %s", path), Err: err}
	}
	return cfg, nil
}

/*
PURPOSE:
  HTTP bridge to the external AutoML service: hyperparameter search and
  model/parameter evaluation. The service owns the search algorithm, the
  training loop, and metric math; this client only moves requests across.

REQUIREMENTS:
  User-specified:
  - Search returns the best model weights, its hyperparameters, and a metric.
  - Evaluate scores a hyperparameter set, with or without a stored model path.

  Implementation-discovered:
  - Needs http.Client with timeouts; a search call legitimately runs for
    hours and replies only when done, so the header timeout must cover it.
  - Service-side errors arrive in the response body and must be surfaced
    verbatim, not interpreted.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go (behind SearchEngine/Evaluator)
  - Uses: internal/config, internal/output, internal/params

ERROR HANDLING:
  - Transport errors are retried up to MaxRetries with RetryDelay.
  - Service failures propagate unchanged to the orchestrator; no recovery
    logic at this layer.

IMPLEMENTATION RULES:
  - Use net/http.
  - Enforce per-call context deadlines (search vs evaluate differ).

USAGE:
  c := engine.NewClient(cfg)
  res, err := c.Search(trainPath, testPath, runCfg)
  metric, err := c.ScoreParams(testPath, runCfg, set)

RELATED FILES:
  - internal/config/config.go
  - internal/engine/runner.go

MAINTENANCE:
  - Update endpoints if the service API changes (/api/search, /api/evaluate).
*/

package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/daryltucker/tsct-runner/internal/config"
	"github.com/daryltucker/tsct-runner/internal/output"
	"github.com/daryltucker/tsct-runner/internal/params"
)

// SearchResult is what a completed hyperparameter search hands back.
type SearchResult struct {
	// Params is the winning hyperparameter set, types as produced by the
	// search (floats and categorical tokens).
	Params params.Set
	// Metric is the search's own score for the winning candidate. Its only
	// durable role is naming the derived parameter record.
	Metric float64
	// Model is the trained model's serialized weight state.
	Model []byte
}

// Client talks to the AutoML service over HTTP/JSON.
type Client struct {
	Config *config.Config
	Client *http.Client
}

// NewClient creates a new service client.
func NewClient(cfg *config.Config) *Client {
	// The service replies to /api/search only when the whole search is done,
	// so the header timeout has to cover the full search duration.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.SearchTimeout

	return &Client{
		Config: cfg,
		Client: &http.Client{Transport: transport},
	}
}

// Health reports the service's status string (e.g. "ok").
func (c *Client) Health() (string, error) {
	resp, err := c.Client.Get(fmt.Sprintf("%s/api/health", c.Config.EngineURL))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	var payload struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.Version != "" {
		return fmt.Sprintf("%s (%s)", payload.Status, payload.Version), nil
	}
	return payload.Status, nil
}

// Search runs the full hyperparameter search on the service and returns the
// best model, its hyperparameters, and its metric.
func (c *Client) Search(trainPath, testPath string, cfg map[string]interface{}) (SearchResult, error) {
	body := map[string]interface{}{
		"train_path": trainPath,
		"test_path":  testPath,
		"config":     cfg, // forwarded verbatim, no key interpreted here
	}

	var payload struct {
		Params map[string]interface{} `json:"params"`
		Metric float64                `json:"metric"`
		Model  []byte                 `json:"model"` // base64 in transit
		Error  string                 `json:"error"`
	}
	if err := c.post("/api/search", c.Config.SearchTimeout, body, &payload); err != nil {
		return SearchResult{}, err
	}
	if payload.Error != "" {
		return SearchResult{}, fmt.Errorf("automl service error: %s", payload.Error)
	}

	return SearchResult{
		Params: params.Set(payload.Params),
		Metric: payload.Metric,
		Model:  payload.Model,
	}, nil
}

// ScoreParams evaluates a coerced hyperparameter set against held-out data.
func (c *Client) ScoreParams(testPath string, cfg map[string]interface{}, set params.Set) (float64, error) {
	return c.evaluate(map[string]interface{}{
		"test_path": testPath,
		"config":    cfg,
		"params":    map[string]interface{}(set),
	})
}

// ScoreModel evaluates a stored model (by path, the service loads it) with a
// coerced hyperparameter set.
func (c *Client) ScoreModel(modelPath, testPath string, cfg map[string]interface{}, set params.Set) (float64, error) {
	return c.evaluate(map[string]interface{}{
		"model_path": modelPath,
		"test_path":  testPath,
		"config":     cfg,
		"params":     map[string]interface{}(set),
	})
}

func (c *Client) evaluate(body map[string]interface{}) (float64, error) {
	var payload struct {
		Metric float64 `json:"metric"`
		Error  string  `json:"error"`
	}
	if err := c.post("/api/evaluate", c.Config.EvalTimeout, body, &payload); err != nil {
		return 0, err
	}
	if payload.Error != "" {
		return 0, fmt.Errorf("automl service error: %s", payload.Error)
	}
	return payload.Metric, nil
}

// post sends a JSON request with a bounded retry loop and decodes the reply.
func (c *Client) post(endpoint string, timeout time.Duration, body, out interface{}) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	var lastErr error
	for i := 0; i < c.Config.MaxRetries; i++ {
		if i > 0 {
			time.Sleep(c.Config.RetryDelay)
			output.Logger.Info("Retrying service call...", "endpoint", endpoint, "attempt", i+1)
		}

		lastErr = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			req, err := http.NewRequestWithContext(ctx, "POST",
				fmt.Sprintf("%s%s", c.Config.EngineURL, endpoint), bytes.NewReader(reqBody))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := c.Client.Do(req)
			if err != nil {
				return fmt.Errorf("network/connection error: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				msg, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("automl service %s (%s): %s", endpoint, resp.Status, string(msg))
			}

			respBody, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("read response body: %w", err)
			}
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("service returned invalid JSON: %w", err)
			}
			return nil
		}()

		if lastErr == nil {
			return nil
		}
	}
	return lastErr
}

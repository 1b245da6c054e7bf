/*
PURPOSE:
  Persists the trained model's weight state under the run's output folder.

REQUIREMENTS:
  User-specified:
  - Fixed artifact filename, overwriting any prior artifact at that path.
  - Write-only: test_model reads are delegated to the evaluator, which
    receives the model path directly rather than a pre-loaded object.

  Implementation-discovered:
  - The output folder may not exist yet on a fresh train run.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (runner, train mode only)

ERROR HANDLING:
  - Unwritable destination -> wrapped error, fatal for the run.

USAGE:
  path, err := artifact.SaveModel(outputFolder, weights)

RELATED FILES:
  - internal/engine/runner.go

MAINTENANCE:
  - ModelFileName is part of the on-disk contract; changing it orphans
    artifacts from earlier runs.
*/

package artifact

import (
	"fmt"
	"os"
	"path/filepath"
)

// ModelFileName is the fixed artifact name written under the output folder.
const ModelFileName = "TSCT_model.pt"

// SaveModel writes the model weight state to the fixed filename under dir,
// creating dir if needed and overwriting any existing artifact. It returns
// the path it wrote.
func SaveModel(dir string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output folder %s: %w", dir, err)
	}
	path := filepath.Join(dir, ModelFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write model artifact %s: %w", path, err)
	}
	return path, nil
}

/*
PURPOSE:
  Appends completed-run summaries to a JSON Lines file (NDJSON) under the
  run's output folder.

REQUIREMENTS:
  User-specified:
  - Machine-parsable record of what each run produced and scored.

  Implementation-discovered:
  - JSON Lines is append-friendly, so summaries accumulate across runs
    against the same output folder instead of clobbering each other.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Consumes: internal/model.RunRecord

ERROR HANDLING:
  - Returns error on file open or write failure. The caller treats summary
    failures as bookkeeping, not run failures.

IMPLEMENTATION RULES:
  - Use encoding/json.NewEncoder.
  - Thread-safe.

USAGE:
  w, err := output.NewJSONWriter("out/runs.jsonl")
  w.Write(rec)
  w.Close()

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update if we switch to plain JSON array (not recommended for appending).
*/

package output

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/daryltucker/tsct-runner/internal/model"
)

// JSONWriter handles appending run records to a JSON Lines file.
type JSONWriter struct {
	file    *os.File
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter opens the summary file for appending, creating it if needed.
func NewJSONWriter(path string) (*JSONWriter, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	return &JSONWriter{
		file:    f,
		encoder: json.NewEncoder(f),
	}, nil
}

// Write appends a single run record as a JSON line.
func (jw *JSONWriter) Write(r model.RunRecord) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	return jw.encoder.Encode(r)
}

// Close closes the underlying file.
func (jw *JSONWriter) Close() error {
	return jw.file.Close()
}

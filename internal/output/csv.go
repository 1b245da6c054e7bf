/*
PURPOSE:
  Exports run-ledger rows to a CSV file for spreadsheet analysis.
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  User-specified:
  - `history --csv` exports the ledger.

  Implementation-discovered:
  - Overwrite semantics: an export is a snapshot, not a log.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli (history command)
  - Consumes: internal/model.RunRecord

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write.

USAGE:
  w, err := output.NewCSVWriter("runs.csv")
  w.Write(rec)
  w.Close()

RELATED FILES:
  - internal/history/store.go

MAINTENANCE:
  - Update Write() mapping when RunRecord changes.
*/

package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"github.com/daryltucker/tsct-runner/internal/model"
)

// CSVWriter handles writing run records to a CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter creates a new CSVWriter.
// It overwrites the file if it exists.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)

	header := []string{
		"run_id", "mode", "output_folder", "params_path", "model_path",
		"metric", "timestamp", "duration_s",
	}
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()

	return &CSVWriter{
		file:   f,
		writer: w,
	}, nil
}

// Write writes a single run record to the CSV file.
// It is thread-safe.
func (cw *CSVWriter) Write(r model.RunRecord) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	record := []string{
		r.RunID,
		string(r.Mode),
		r.OutputFolder,
		r.ParamsPath,
		r.ModelPath,
		fmt.Sprintf("%g", r.Metric),
		r.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		fmt.Sprintf("%.2f", r.Duration.Seconds()),
	}

	if err := cw.writer.Write(record); err != nil {
		return err
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

// Close closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	return cw.file.Close()
}

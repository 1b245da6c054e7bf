/*
PURPOSE:
  Serializes a hyperparameter set to a single-sheet .xlsx record and reads it
  back. The record is the hand-editable source of truth for every mode.

REQUIREMENTS:
  User-specified:
  - One row per parameter: column A = name (unique), column B = value.
  - Faithful name->value round trip; never reorder, invent, or drop keys.
  - No coercion here; the orchestrator applies the declared schema on read.

  Implementation-discovered:
  - xlsx cells carry no type metadata beyond numeric vs text, so Load types a
    value by whether it parses as a number.
  - Rows are written name-sorted so a re-save of the same set diffs cleanly.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (runner)
  - Uses: github.com/xuri/excelize/v2

ERROR HANDLING:
  - Unreadable file, missing values, or duplicate keys -> *model.MalformedRecordError.
  - Write failures are wrapped and fatal for the run.

USAGE:
  err := params.Save(path, set)
  set, err := params.Load(path)

RELATED FILES:
  - internal/params/schema.go
  - internal/engine/runner.go

MAINTENANCE:
  - Keep Save and Load symmetric if the layout ever grows columns.
*/

package params

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/daryltucker/tsct-runner/internal/model"
)

// Save writes the set as a single-sheet record at path, overwriting any
// existing file. Numbers are written as numeric cells, everything else as
// text, with no explicit type tagging.
func Save(path string, set Set) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		nameCell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("parameter record layout: %w", err)
		}
		valueCell, err := excelize.CoordinatesToCellName(2, i+1)
		if err != nil {
			return fmt.Errorf("parameter record layout: %w", err)
		}
		if err := f.SetCellValue(sheet, nameCell, name); err != nil {
			return fmt.Errorf("write parameter %q: %w", name, err)
		}
		if err := f.SetCellValue(sheet, valueCell, set[name]); err != nil {
			return fmt.Errorf("write parameter %q: %w", name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write parameter record %s: %w", path, err)
	}
	return nil
}

// Load reads a record back into a set. Values that parse as numbers become
// float64 (the storage format's native numeric type); everything else stays
// a string. Duplicate keys make the record invalid.
func Load(path string) (Set, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &model.MalformedRecordError{Path: path, Reason: "unreadable", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &model.MalformedRecordError{Path: path, Reason: "no sheets"}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &model.MalformedRecordError{Path: path, Reason: "unreadable sheet", Err: err}
	}

	set := make(Set, len(rows))
	for i, row := range rows {
		if len(row) == 0 || row[0] == "" {
			continue
		}
		name := row[0]
		if _, dup := set[name]; dup {
			return nil, &model.MalformedRecordError{Path: path, Reason: fmt.Sprintf("duplicate key %q", name)}
		}
		if len(row) < 2 {
			return nil, &model.MalformedRecordError{Path: path, Reason: fmt.Sprintf("row %d (%q) has no value", i+1, name)}
		}
		raw := row[1]
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			set[name] = v
		} else {
			set[name] = raw
		}
	}
	return set, nil
}

/*
PURPOSE:
  Error taxonomy for run validation and parameter-record persistence.

REQUIREMENTS:
  User-specified:
  - A missing mode-specific path fails before any side effect, naming the field.
  - A malformed parameter record is fatal for the invocation.

  Implementation-discovered:
  - Callers match with errors.As, so these are typed errors, not sentinels.
  - Plain filesystem failures stay wrapped os errors; nothing branches on them.

ARCHITECTURE INTEGRATION:
  - Raised by: internal/engine (runner), internal/config, internal/params
  - Matched by: internal/cli, tests

ERROR HANDLING:
  - N/A (this is the error handling).

USAGE:
  return &model.ConfigError{Field: "train_path", Reason: "required when mode is train"}

RELATED FILES:
  - internal/engine/runner.go
  - internal/params/codec.go
*/

package model

import "fmt"

// ConfigError reports a missing or invalid run configuration input.
// It is always detected before any file I/O has happened.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid configuration: %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// MalformedRecordError reports an unreadable or structurally invalid
// persisted parameter record (e.g. duplicate keys).
type MalformedRecordError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MalformedRecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed parameter record %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed parameter record %s: %s", e.Path, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

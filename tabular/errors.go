package tabular

import (
	"fmt"
	"strings"
)

// SourceReadError reports a file that could not be parsed as a spreadsheet,
// delimited text or archive. The file name is part of the user-facing message.
type SourceReadError struct {
	File string
	Err  error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("cannot read file %q: %v", e.File, e.Err)
}

func (e *SourceReadError) Unwrap() error {
	return e.Err
}

// SchemaError reports required columns absent after normalization. All missing
// names are enumerated in one message, never just the first one.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return "input file is missing required columns: " + strings.Join(e.Missing, ", ")
}

// ValidationError reports a user-supplied parameter that fails its format
// contract. The reason states the exact expected format.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

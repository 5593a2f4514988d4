package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyDataset is returned by ComputeSummary when there are no records
// to aggregate; mean and median are undefined over an empty dataset.
// Ranking deliberately does not share this error: an empty ranking table
// is a valid result.
var ErrEmptyDataset = errors.New("dataset is empty")

// SchemaError reports that a raw table cannot be normalized: a mandatory
// column is missing or a column-wide type interpretation failed. It is
// fatal to the file it came from but never to sibling files in a batch.
//
// Row-level coercion problems (non-numeric NOx, malformed position) are
// not schema errors; they degrade to missing values instead.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return "schema error: " + e.Reason
}

func newSchemaError(format string, args ...any) *SchemaError {
	return &SchemaError{Reason: fmt.Sprintf(format, args...)}
}

// IsSchemaError reports whether err is (or wraps) a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

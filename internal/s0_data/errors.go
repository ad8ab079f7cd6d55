package s0_data

import (
	"fmt"
)

// ErrorKind classifies a DataError
type ErrorKind string

const (
	KindMissingFile     ErrorKind = "missing_file"
	KindMissingColumn   ErrorKind = "missing_column"
	KindBadDate         ErrorKind = "bad_date"
	KindEmptySeries     ErrorKind = "empty_series"
	KindStrictViolation ErrorKind = "strict_violation"
	KindRead            ErrorKind = "read_error"
)

// DataError is a per-symbol input failure.
// The pipeline turns it into a MISSING_OHLC gate failure; it never aborts a run.
type DataError struct {
	Symbol string
	Path   string
	Kind   ErrorKind
	Line   int // 1-based file line, 0 when not line specific
	Err    error
}

func (e *DataError) Error() string {
	loc := e.Path
	if loc == "" {
		loc = "<no file>"
	}
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s (%s): %v", e.Symbol, e.Kind, loc, e.Err)
	}
	return fmt.Sprintf("%s %s (%s)", e.Symbol, e.Kind, loc)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

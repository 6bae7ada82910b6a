package domain

import (
	"errors"
	"fmt"
)

// Reason classifies why an extraction produced no result.
type Reason string

const (
	// ReasonIO means the file could not be opened or read.
	ReasonIO Reason = "io"
	// ReasonStructure means the file is empty or has no header row.
	ReasonStructure Reason = "structure"
	// ReasonSchema means no header matched any candidate list the extractor needs.
	ReasonSchema Reason = "schema"
	// ReasonNoData means the columns resolved but no usable value survived parsing.
	ReasonNoData Reason = "no_data"
)

var (
	ErrEmptyFile = errors.New("file is empty")
	ErrNoColumns = errors.New("no recognizable columns")
	ErrNoRows    = errors.New("table has no data rows")
	ErrNoData    = errors.New("no usable values")
)

// ExtractError is returned by every extractor in this package. Callers that
// need to keep a display alive convert it into a neutral result.
type ExtractError struct {
	Op     string
	Reason Reason
	Err    error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// ReasonOf reports the failure reason carried by err. Errors that did not
// originate from an extractor are classified as ReasonIO.
func ReasonOf(err error) Reason {
	if err == nil {
		return ""
	}
	var ee *ExtractError
	if errors.As(err, &ee) {
		return ee.Reason
	}
	return ReasonIO
}

func extractErr(op string, reason Reason, err error) error {
	return &ExtractError{Op: op, Reason: reason, Err: err}
}

package engine

import (
	"errors"
	"fmt"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/order"
)

// Stage names the pipeline step a RunError came from.
type Stage string

const (
	StageOrders     Stage = "orders"
	StageDeliveries Stage = "deliveries"
	StageSave       Stage = "save"
)

// RunError is a fatal failure of one run.
type RunError struct {
	Stage Stage
	Err   error
}

// Error implements the error interface.
func (e *RunError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RunError) Unwrap() error {
	return e.Err
}

// ErrCodeDocumentDecode marks a delivery document that could not be decoded.
const ErrCodeDocumentDecode = "DOCUMENT_DECODE"

// DocumentDecodeError records a skipped delivery document. It is reported,
// never returned from Reconcile.
type DocumentDecodeError struct {
	Code     string `json:"code"`
	Document string `json:"document"`
	Message  string `json:"message"`
	Err      error  `json:"-"`
}

// NewDocumentDecodeError wraps err for the named document.
func NewDocumentDecodeError(document string, err error) *DocumentDecodeError {
	return &DocumentDecodeError{
		Code:     ErrCodeDocumentDecode,
		Document: document,
		Message:  err.Error(),
		Err:      err,
	}
}

// Error implements the error interface.
func (e *DocumentDecodeError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Document, e.Message)
}

// Unwrap returns the decoder error.
func (e *DocumentDecodeError) Unwrap() error {
	return e.Err
}

// ErrNoStore is returned by Save when the engine has no snapshot store.
var ErrNoStore = errors.New("no snapshot store configured")

// IsParsingError reports whether err was caused by an order file without
// valid rows. Uses errors.As to handle wrapped errors.
func IsParsingError(err error) bool {
	return order.IsParsingError(err)
}

// IsDocumentDecodeError reports whether err is a DocumentDecodeError.
func IsDocumentDecodeError(err error) bool {
	var de *DocumentDecodeError
	return errors.As(err, &de)
}

// StageOf returns the stage of a RunError, or "" for other errors.
func StageOf(err error) Stage {
	var re *RunError
	if errors.As(err, &re) {
		return re.Stage
	}
	return ""
}

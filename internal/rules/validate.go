package rules

import (
	"fmt"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
)

// Validation error codes (E200-E299)
const (
	ErrTolerance    = "E201" // line tolerance must be positive
	ErrDateMarker   = "E202" // date marker is required
	ErrIgnoreID     = "E203" // ignore id is not an article id
	ErrRenameID     = "E204" // rename key is not an article id
	ErrRenameName   = "E205" // rename target is empty
	ErrEmptyKeyword = "E206" // empty noise marker or exclusion keyword
	ErrUnknownName  = "E207" // unknown-article name is required
)

// ValidationError represents one invalid rule table entry.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks the tables and returns all errors found (does not fail-fast).
func Validate(r *Rules) []ValidationError {
	var errs []ValidationError

	if r.LineTolerance <= 0 {
		errs = append(errs, ValidationError{
			Field:   "line_tolerance",
			Message: fmt.Sprintf("must be positive, got %v", r.LineTolerance),
			Code:    ErrTolerance,
		})
	}
	if r.DateMarker == "" {
		errs = append(errs, ValidationError{Field: "date_marker", Message: "is required", Code: ErrDateMarker})
	}
	if r.UnknownName == "" {
		errs = append(errs, ValidationError{Field: "unknown_name", Message: "is required", Code: ErrUnknownName})
	}

	for i, id := range r.IgnoreIDs {
		if !audit.IsArticleID(id) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("ignore_ids[%d]", i),
				Message: fmt.Sprintf("%q is not numeric", id),
				Code:    ErrIgnoreID,
			})
		}
	}

	for _, id := range r.RenamedIDs() {
		if !audit.IsArticleID(id) {
			errs = append(errs, ValidationError{
				Field:   "renames",
				Message: fmt.Sprintf("key %q is not numeric", id),
				Code:    ErrRenameID,
			})
		}
		if r.Renames[id] == "" {
			errs = append(errs, ValidationError{
				Field:   "renames." + id,
				Message: "name is empty",
				Code:    ErrRenameName,
			})
		}
	}

	for i, m := range r.NoiseMarkers {
		if m == "" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("noise_markers[%d]", i), Message: "is empty", Code: ErrEmptyKeyword})
		}
	}
	for i, k := range r.ExcludeKeywords {
		if k == "" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("exclude_keywords[%d]", i), Message: "is empty", Code: ErrEmptyKeyword})
		}
	}

	return errs
}

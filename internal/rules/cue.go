package rules

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError is a CUE rules error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ParseCUE compiles a CUE rules document and overlays it on Default.
// The document must define a top-level "rules" struct.
func ParseCUE(filename string, data []byte) (*Rules, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	rulesVal := v.LookupPath(cue.ParsePath("rules"))
	if !rulesVal.Exists() {
		return nil, &CompileError{
			Field:   "rules",
			Message: "rules is required",
			Pos:     v.Pos(),
		}
	}
	return CompileRules(rulesVal)
}

// CompileRules converts a CUE "rules" struct value into Rules.
// Every present field must be concrete.
func CompileRules(v cue.Value) (*Rules, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	var o overlay

	if f := v.LookupPath(cue.ParsePath("line_tolerance")); f.Exists() {
		tol, err := f.Float64()
		if err != nil {
			return nil, fieldError("line_tolerance", f, err)
		}
		o.LineTolerance = &tol
	}
	if f := v.LookupPath(cue.ParsePath("date_marker")); f.Exists() {
		s, err := f.String()
		if err != nil {
			return nil, fieldError("date_marker", f, err)
		}
		o.DateMarker = &s
	}
	if f := v.LookupPath(cue.ParsePath("unknown_name")); f.Exists() {
		s, err := f.String()
		if err != nil {
			return nil, fieldError("unknown_name", f, err)
		}
		o.UnknownName = &s
	}

	lists := []struct {
		name string
		dst  **[]string
	}{
		{"noise_markers", &o.NoiseMarkers},
		{"ignore_ids", &o.IgnoreIDs},
		{"exclude_keywords", &o.ExcludeKeywords},
	}
	for _, l := range lists {
		f := v.LookupPath(cue.ParsePath(l.name))
		if !f.Exists() {
			continue
		}
		var out []string
		if err := f.Decode(&out); err != nil {
			return nil, fieldError(l.name, f, err)
		}
		if out == nil {
			out = []string{}
		}
		*l.dst = &out
	}

	if f := v.LookupPath(cue.ParsePath("renames")); f.Exists() {
		renames := map[string]string{}
		iter, err := f.Fields()
		if err != nil {
			return nil, fieldError("renames", f, err)
		}
		for iter.Next() {
			name, err := iter.Value().String()
			if err != nil {
				return nil, fieldError("renames."+iter.Label(), iter.Value(), err)
			}
			renames[iter.Label()] = name
		}
		o.Renames = &renames
	}

	return o.apply(Default()), nil
}

func fieldError(field string, v cue.Value, err error) error {
	if ferr := formatCUEError(err); ferr != nil {
		if ce, ok := ferr.(*CompileError); ok {
			ce.Field = field
			return ce
		}
	}
	return &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}

package decode

import (
	"context"
	"fmt"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
)

// StaticRows serves pre-decoded order rows by document name.
type StaticRows map[string][]audit.Row

// DecodeRows implements RowDecoder.
func (s StaticRows) DecodeRows(_ context.Context, doc Document) ([]audit.Row, error) {
	rows, ok := s[doc.Name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", doc.Name, ErrUnsupported)
	}
	return rows, nil
}

// StaticPages serves pre-decoded delivery tokens by document name.
// Documents listed in Failures fail with the given error.
type StaticPages struct {
	Tokens   map[string][]audit.PositionedToken
	Failures map[string]error
}

// DecodePages implements PageDecoder.
func (s StaticPages) DecodePages(_ context.Context, doc Document) ([]audit.PositionedToken, error) {
	if err, ok := s.Failures[doc.Name]; ok {
		return nil, err
	}
	tokens, ok := s.Tokens[doc.Name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", doc.Name, ErrUnsupported)
	}
	return tokens, nil
}

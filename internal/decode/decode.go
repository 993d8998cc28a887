package decode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
)

var (
	// ErrUnsupported is returned for file extensions no decoder handles.
	ErrUnsupported = errors.New("unsupported document type")

	// ErrMalformed marks documents the underlying parser could not read.
	ErrMalformed = errors.New("malformed document")
)

// Document is one named input file held in memory.
type Document struct {
	Name string
	Data []byte
}

// Ext returns the lower-cased file extension of the document name.
func (d Document) Ext() string {
	return strings.ToLower(filepath.Ext(d.Name))
}

// ReadFile loads a document from disk.
func ReadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Document{Name: filepath.Base(path), Data: data}, nil
}

// RowDecoder decodes a tabular order file.
type RowDecoder interface {
	DecodeRows(ctx context.Context, doc Document) ([]audit.Row, error)
}

// PageDecoder decodes a delivery document into positioned tokens.
type PageDecoder interface {
	DecodePages(ctx context.Context, doc Document) ([]audit.PositionedToken, error)
}

// Tables dispatches to the spreadsheet or CSV decoder by extension.
type Tables struct{}

// DecodeRows implements RowDecoder.
func (Tables) DecodeRows(ctx context.Context, doc Document) ([]audit.Row, error) {
	switch doc.Ext() {
	case ".xlsx", ".xlsm":
		return XLSX{}.DecodeRows(ctx, doc)
	case ".csv":
		return CSV{}.DecodeRows(ctx, doc)
	default:
		return nil, fmt.Errorf("%s: %w", doc.Name, ErrUnsupported)
	}
}

// Pages dispatches delivery documents by extension.
type Pages struct{}

// DecodePages implements PageDecoder.
func (Pages) DecodePages(ctx context.Context, doc Document) ([]audit.PositionedToken, error) {
	switch doc.Ext() {
	case ".pdf":
		return PDF{}.DecodePages(ctx, doc)
	default:
		return nil, fmt.Errorf("%s: %w", doc.Name, ErrUnsupported)
	}
}

func sheetName(doc Document) string {
	return strings.TrimSuffix(filepath.Base(doc.Name), filepath.Ext(doc.Name))
}

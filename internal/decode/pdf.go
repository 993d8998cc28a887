package decode

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
)

const (
	// baselineSlack is how far two glyphs' baselines may differ and still
	// belong to one word.
	baselineSlack = 0.5

	// wordGapRatio is the horizontal gap, as a fraction of the font size,
	// that separates two words.
	wordGapRatio = 0.25
)

// PDF extracts positioned text from every page of a PDF document.
//
// The parser reports text glyph by glyph; glyphs are merged into word tokens
// whose position is that of their first glyph. Page numbers are 1-based.
type PDF struct{}

// DecodePages implements PageDecoder.
func (PDF) DecodePages(ctx context.Context, doc Document) (tokens []audit.PositionedToken, err error) {
	// The parser panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			tokens = nil
			err = fmt.Errorf("parse %s: %w: %v", doc.Name, ErrMalformed, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", doc.Name, ErrMalformed, err)
	}

	tokens = []audit.PositionedToken{}
	for n := 1; n <= r.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(n)
		if p.V.IsNull() {
			continue
		}
		tokens = append(tokens, mergeGlyphs(p.Content().Text, n)...)
	}
	return tokens, nil
}

// mergeGlyphs joins consecutive glyphs on the same baseline into words.
// Whitespace glyphs, a baseline change, a step backwards, or a gap wider than
// wordGapRatio of the font size end the current word.
func mergeGlyphs(glyphs []pdf.Text, page int) []audit.PositionedToken {
	var (
		out  []audit.PositionedToken
		word strings.Builder
		cur  audit.PositionedToken
		end  float64
	)
	flush := func() {
		if word.Len() > 0 {
			cur.Text = word.String()
			out = append(out, cur)
			word.Reset()
		}
	}

	for _, g := range glyphs {
		if strings.TrimFunc(g.S, unicode.IsSpace) == "" {
			flush()
			continue
		}
		if word.Len() > 0 {
			gap := g.X - end
			tol := math.Max(g.FontSize*wordGapRatio, 1)
			if math.Abs(g.Y-cur.Y) > baselineSlack || gap > tol || gap < -tol {
				flush()
			}
		}
		if word.Len() == 0 {
			cur = audit.PositionedToken{X: g.X, Y: g.Y, Page: page}
		}
		word.WriteString(g.S)
		end = g.X + g.W
	}
	flush()
	return out
}

// Package layout rebuilds reading-order text lines from positioned tokens.
//
// Decoders give no ordering guarantee, so lines are found by vertical
// proximity alone: a token joins the first line whose baseline lies within
// the tolerance, otherwise it starts a new line. Lines are then read top to
// bottom (descending Y, page coordinates grow upwards) and tokens left to
// right.
package layout

import (
	"math"
	"sort"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
)

// DefaultTolerance is the vertical grouping distance in layout units.
const DefaultTolerance = 8.0

// Reconstruct groups the tokens of one page into ordered lines.
// Tokens that are blank after normalization are dropped. A tolerance <= 0
// falls back to DefaultTolerance.
func Reconstruct(tokens []audit.PositionedToken, tolerance float64) []audit.DeliveryLine {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	var lines []audit.DeliveryLine
	for _, raw := range tokens {
		tok := audit.NormalizeToken(raw)
		if tok.Text == "" {
			continue
		}

		placed := false
		for i := range lines {
			if math.Abs(lines[i].Y-tok.Y) <= tolerance {
				lines[i].Tokens = append(lines[i].Tokens, audit.LineToken{X: tok.X, Text: tok.Text})
				placed = true
				break
			}
		}
		if !placed {
			lines = append(lines, audit.DeliveryLine{
				Y:      tok.Y,
				Tokens: []audit.LineToken{{X: tok.X, Text: tok.Text}},
			})
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Y > lines[j].Y
	})
	for i := range lines {
		toks := lines[i].Tokens
		sort.SliceStable(toks, func(a, b int) bool {
			return toks[a].X < toks[b].X
		})
	}

	return lines
}

// Page is the reconstructed content of one page.
type Page struct {
	Number int
	Lines  []audit.DeliveryLine
}

// ReconstructPages splits a document's token stream by page and
// reconstructs each page independently. Pages are returned in ascending
// page-number order.
func ReconstructPages(tokens []audit.PositionedToken, tolerance float64) []Page {
	byPage := map[int][]audit.PositionedToken{}
	for _, t := range tokens {
		byPage[t.Page] = append(byPage[t.Page], t)
	}

	numbers := make([]int, 0, len(byPage))
	for n := range byPage {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	pages := make([]Page, 0, len(numbers))
	for _, n := range numbers {
		pages = append(pages, Page{Number: n, Lines: Reconstruct(byPage[n], tolerance)})
	}
	return pages
}

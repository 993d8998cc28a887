// Package extract reads delivery facts (article id, quantity, delivery
// date) from reconstructed delivery-note lines.
//
// Extraction is a fold: every call takes the accumulator built so far and
// returns a new one, so a run threads a single DeliveryFacts value through
// documents, pages and lines without shared mutable state.
package extract

import (
	"regexp"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/layout"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/rules"
)

var datePattern = regexp.MustCompile(`\b(\d{2}-\d{2}-\d{4})\b`)

// Extractor applies the rule tables and the strategy list to lines.
type Extractor struct {
	rules      *rules.Rules
	strategies []Strategy
}

// New creates an extractor. With no strategies, DefaultStrategies is used.
func New(r *rules.Rules, strategies ...Strategy) *Extractor {
	if r == nil {
		r = rules.Default()
	}
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}
	return &Extractor{rules: r, strategies: strategies}
}

// LineResult explains what happened to one line.
type LineResult struct {
	Text     string `json:"text"`
	Date     string `json:"date,omitempty"`
	Noise    bool   `json:"noise,omitempty"`
	Strategy string `json:"strategy,omitempty"`
	Fact     *Fact  `json:"fact,omitempty"`
	Ignored  bool   `json:"ignored,omitempty"`
}

// Accepted reports whether the line contributed a quantity.
func (r LineResult) Accepted() bool {
	return r.Fact != nil && !r.Ignored && r.Fact.Quantity > 0
}

// Inspect classifies one line without touching any accumulator.
func (e *Extractor) Inspect(line audit.DeliveryLine) LineResult {
	text := line.Text()
	res := LineResult{Text: text}

	if e.rules.HasDateMarker(text) {
		if m := datePattern.FindStringSubmatch(text); m != nil {
			res.Date = m[1]
		}
	}

	if e.rules.IsNoise(text) {
		res.Noise = true
		return res
	}

	for _, s := range e.strategies {
		if f, ok := s.Extract(line, text); ok {
			fact := f
			res.Strategy = s.Name()
			res.Fact = &fact
			res.Ignored = e.rules.IsIgnored(f.ArticleID)
			break
		}
	}
	return res
}

// Page folds the lines of one page into acc and returns the result.
// acc itself is not modified.
func (e *Extractor) Page(acc audit.DeliveryFacts, lines []audit.DeliveryLine) audit.DeliveryFacts {
	next := acc.Clone()
	for _, line := range lines {
		res := e.Inspect(line)
		if res.Date != "" {
			next.SetDateOnce(res.Date)
		}
		if res.Accepted() {
			next.Add(res.Fact.ArticleID, res.Fact.Quantity)
		}
	}
	return next
}

// Document folds every page of one document into acc.
func (e *Extractor) Document(acc audit.DeliveryFacts, pages []layout.Page) audit.DeliveryFacts {
	for _, p := range pages {
		acc = e.Page(acc, p.Lines)
	}
	return acc
}

// Tokens reconstructs lines from a raw token stream and folds them into acc.
func (e *Extractor) Tokens(acc audit.DeliveryFacts, tokens []audit.PositionedToken) audit.DeliveryFacts {
	return e.Document(acc, layout.ReconstructPages(tokens, e.rules.LineTolerance))
}

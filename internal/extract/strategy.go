package extract

import (
	"regexp"
	"strconv"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
)

var (
	idPattern       = regexp.MustCompile(`^\d{4,8}$`)
	intPattern      = regexp.MustCompile(`^\d+$`)
	textLinePattern = regexp.MustCompile(`^(\d{4,8})\s+.*?\s+(\d+)$`)
)

// Fact is one (article id, quantity) pair read from a delivery line.
type Fact struct {
	ArticleID string  `json:"article_id"`
	Quantity  float64 `json:"quantity"`
}

// Strategy reads a fact from one reconstructed line.
// text is the line's tokens joined by single spaces.
type Strategy interface {
	Name() string
	Extract(line audit.DeliveryLine, text string) (Fact, bool)
}

// DefaultStrategies is the precedence order: positional first, then the
// textual fallback.
var DefaultStrategies = []Strategy{Positional{}, Textual{}}

// Positional reads the id from the first token and the quantity from the
// last token of a line with at least two tokens.
type Positional struct{}

// Name implements Strategy.
func (Positional) Name() string { return "positional" }

// Extract implements Strategy.
func (Positional) Extract(line audit.DeliveryLine, _ string) (Fact, bool) {
	if len(line.Tokens) < 2 {
		return Fact{}, false
	}
	first := line.Tokens[0].Text
	last := line.Tokens[len(line.Tokens)-1].Text
	if !idPattern.MatchString(first) || !intPattern.MatchString(last) {
		return Fact{}, false
	}
	return newFact(first, last)
}

// Textual matches the whole line text as "<id> <anything> <qty>". It
// catches lines where the decoder merged several words into one token.
type Textual struct{}

// Name implements Strategy.
func (Textual) Name() string { return "textual" }

// Extract implements Strategy.
func (Textual) Extract(_ audit.DeliveryLine, text string) (Fact, bool) {
	m := textLinePattern.FindStringSubmatch(text)
	if m == nil {
		return Fact{}, false
	}
	return newFact(m[1], m[2])
}

func newFact(id, qty string) (Fact, bool) {
	q, err := strconv.ParseFloat(qty, 64)
	if err != nil {
		return Fact{}, false
	}
	return Fact{ArticleID: id, Quantity: q}, true
}

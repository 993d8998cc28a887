package audit

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText prepares decoder output for matching.
//
// NFKC folds compatibility characters, which turns U+00A0 and the narrow
// no-break spaces into plain spaces. Whitespace runs are then collapsed to
// one space and the result is trimmed.
func NormalizeText(s string) string {
	s = norm.NFKC.String(s)
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// NormalizeToken returns t with its text normalized.
func NormalizeToken(t PositionedToken) PositionedToken {
	t.Text = NormalizeText(t.Text)
	return t
}

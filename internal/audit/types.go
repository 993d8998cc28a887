package audit

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// UnknownDeliveryDate is stored when no delivery document carried a date.
const UnknownDeliveryDate = "Unknown"

// AllProducts selects every article in an analytics window.
const AllProducts = "All"

var articleIDPattern = regexp.MustCompile(`^\d+$`)

// IsArticleID reports whether s is a non-empty run of ASCII digits.
func IsArticleID(s string) bool {
	return articleIDPattern.MatchString(s)
}

// Row is one decoded row of a tabular file.
// A cell is a string, a Go numeric type, or nil.
type Row struct {
	Sheet string `json:"sheet"`
	Index int    `json:"index"` // 0-based row number within the sheet
	Cells []any  `json:"cells"`
}

// Cell returns cell i or nil when the row is shorter.
func (r Row) Cell(i int) any {
	if i < 0 || i >= len(r.Cells) {
		return nil
	}
	return r.Cells[i]
}

// OrderLine is one ordered article after aggregation.
type OrderLine struct {
	ArticleID  string  `json:"article_id"`
	Name       string  `json:"name"`
	OrderedQty float64 `json:"ordered_qty"`
}

// OrderMap holds parsed order lines keyed by article id.
type OrderMap map[string]OrderLine

// IDs returns the article ids in lexical order.
func (m OrderMap) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// PositionedToken is one text fragment with its baseline position on a page.
type PositionedToken struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Page int     `json:"page"`
}

// LineToken is a token placed on a reconstructed line.
type LineToken struct {
	X    float64 `json:"x"`
	Text string  `json:"text"`
}

// DeliveryLine is a reconstructed row of text. Tokens are ascending by X.
type DeliveryLine struct {
	Y      float64     `json:"y"`
	Tokens []LineToken `json:"tokens"`
}

// Text joins the token texts with a single space.
func (l DeliveryLine) Text() string {
	parts := make([]string, len(l.Tokens))
	for i, t := range l.Tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}

// Status classifies the difference between delivered and ordered quantity.
type Status string

const (
	StatusShortfall Status = "Shortfall"
	StatusSurplus   Status = "Surplus"
	StatusCorrect   Status = "Correct"
)

// AuditItem is the reconciled result for one article.
type AuditItem struct {
	ArticleID string  `json:"article_id"`
	Name      string  `json:"name"`
	Ordered   float64 `json:"ordered"`
	Delivered float64 `json:"delivered"`
}

// Difference returns Delivered - Ordered.
func (i AuditItem) Difference() float64 {
	return i.Delivered - i.Ordered
}

// Status classifies the item by the sign of its difference.
func (i AuditItem) Status() Status {
	switch d := i.Difference(); {
	case d < 0:
		return StatusShortfall
	case d > 0:
		return StatusSurplus
	default:
		return StatusCorrect
	}
}

// CloneItems returns a copy of items that shares no memory with the input.
// A nil input yields an empty slice.
func CloneItems(items []AuditItem) []AuditItem {
	out := make([]AuditItem, len(items))
	copy(out, items)
	return out
}

// Snapshot is one persisted, immutable reconciliation result.
type Snapshot struct {
	ID             string      `json:"id"`
	CreatedAt      time.Time   `json:"created_at"` // zero when the record carried no usable timestamp
	DeliveryDate   string      `json:"delivery_date"`
	Items          []AuditItem `json:"items"`
	TotalOrdered   float64     `json:"total_ordered"`
	TotalDelivered float64     `json:"total_delivered"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	s.Items = CloneItems(s.Items)
	return s
}

// Item returns the item for articleID, if present.
func (s Snapshot) Item(articleID string) (AuditItem, bool) {
	for _, it := range s.Items {
		if it.ArticleID == articleID {
			return it, true
		}
	}
	return AuditItem{}, false
}

// Window scopes an analytics request. Zero Start or End leaves that side
// unbounded. Product is an article id, or AllProducts / "" for none.
type Window struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Product string    `json:"product"`
}

// HasProduct reports whether the window selects a single article.
func (w Window) HasProduct() bool {
	return w.Product != "" && w.Product != AllProducts
}

// SumItems returns the ordered and delivered totals over items.
func SumItems(items []AuditItem) (ordered, delivered float64) {
	for _, it := range items {
		ordered += it.Ordered
		delivered += it.Delivered
	}
	return ordered, delivered
}

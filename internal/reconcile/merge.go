// Package reconcile merges ordered and delivered quantities into audit items.
package reconcile

import (
	"sort"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/rules"
)

// Merge produces one AuditItem per article id found in orders or facts.
//
// Ordered ids consume their delivered quantity (0 when nothing was
// delivered). Ids delivered but never ordered follow with Ordered = 0 and
// the unknown-article name. Display-name overrides apply to both groups,
// and items whose name hits an exclusion keyword are dropped. The result is
// sorted lexically by article id.
//
// facts is not modified.
func Merge(orders audit.OrderMap, facts audit.DeliveryFacts, r *rules.Rules) []audit.AuditItem {
	if r == nil {
		r = rules.Default()
	}
	remaining := facts.Clone()
	items := make([]audit.AuditItem, 0, len(orders)+remaining.Len())

	for _, id := range orders.IDs() {
		line := orders[id]
		delivered := remaining.Take(id)

		name := r.DisplayName(id, line.Name)
		if r.IsExcluded(name) {
			continue
		}
		items = append(items, audit.AuditItem{
			ArticleID: id,
			Name:      name,
			Ordered:   line.OrderedQty,
			Delivered: delivered,
		})
	}

	for _, id := range remaining.Remaining() {
		name := r.DisplayName(id, r.UnknownName)
		if r.IsExcluded(name) {
			continue
		}
		items = append(items, audit.AuditItem{
			ArticleID: id,
			Name:      name,
			Ordered:   0,
			Delivered: remaining.Get(id),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ArticleID < items[j].ArticleID
	})
	return items
}

// Totals returns the ordered and delivered sums over items.
func Totals(items []audit.AuditItem) (ordered, delivered float64) {
	return audit.SumItems(items)
}

// Summary counts items per status.
type Summary struct {
	Shortfall int `json:"shortfall"`
	Surplus   int `json:"surplus"`
	Correct   int `json:"correct"`
}

// Summarize counts items per status.
func Summarize(items []audit.AuditItem) Summary {
	var s Summary
	for _, it := range items {
		switch it.Status() {
		case audit.StatusShortfall:
			s.Shortfall++
		case audit.StatusSurplus:
			s.Surplus++
		default:
			s.Correct++
		}
	}
	return s
}

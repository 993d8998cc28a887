package analytics

import (
	"sort"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
)

// Product is one article seen anywhere in the history.
type Product struct {
	ArticleID string `json:"article_id"`
	Name      string `json:"name"`
}

// Products lists the distinct articles across snapshots, sorted by id.
// The name is the one from the most recent snapshot carrying the article.
func Products(snapshots []audit.Snapshot) []Product {
	ordered := Filter(audit.Window{}, snapshots)
	names := make(map[string]string)
	for _, s := range ordered {
		for _, it := range s.Items {
			names[it.ArticleID] = it.Name
		}
	}

	out := make([]Product, 0, len(names))
	for id, name := range names {
		out = append(out, Product{ArticleID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ArticleID < out[j].ArticleID })
	return out
}

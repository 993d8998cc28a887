package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
)

// TopDeviationLimit caps Report.TopDeviations.
const TopDeviationLimit = 5

// TrendLabelLayout formats trend labels (dd-mm-yyyy).
const TrendLabelLayout = "02-01-2006"

// Lister supplies the snapshot history.
type Lister interface {
	List(ctx context.Context) ([]audit.Snapshot, error)
}

// TrendPoint is one snapshot's totals on the trend chart.
type TrendPoint struct {
	Label     string    `json:"label"`
	Time      time.Time `json:"time"`
	Ordered   float64   `json:"ordered"`
	Delivered float64   `json:"delivered"`
}

// Deviation is an article's cumulative difference across the window.
type Deviation struct {
	ArticleID string  `json:"article_id"`
	Name      string  `json:"name"`
	Net       float64 `json:"net"`
	Absolute  float64 `json:"absolute"`
	Shortfall float64 `json:"shortfall"`
	Surplus   float64 `json:"surplus"`
}

// Report is the result of one analytics query.
type Report struct {
	Window         audit.Window `json:"window"`
	TotalAudits    int          `json:"total_audits"`
	FulfilmentRate int64        `json:"fulfilment_rate"` // percent, rounded half away from zero
	NetDifference  float64      `json:"net_difference"`
	Trend          []TrendPoint `json:"trend"`
	TopDeviations  []Deviation  `json:"top_deviations"`
	ProductTrend   []TrendPoint `json:"product_trend,omitempty"`
}

// Query lists the history from l and computes the report for w.
func Query(ctx context.Context, l Lister, w audit.Window) (Report, error) {
	snapshots, err := l.List(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list snapshots: %w", err)
	}
	return Compute(w, snapshots), nil
}

// Compute builds the report for w over snapshots. The input is not modified.
func Compute(w audit.Window, snapshots []audit.Snapshot) Report {
	selected := Filter(w, snapshots)

	var ordered, delivered float64
	for _, s := range selected {
		ordered += s.TotalOrdered
		delivered += s.TotalDelivered
	}

	r := Report{
		Window:         w,
		TotalAudits:    len(selected),
		FulfilmentRate: FulfilmentRate(ordered, delivered),
		NetDifference:  delivered - ordered,
		Trend:          make([]TrendPoint, 0, len(selected)),
		TopDeviations:  topDeviations(selected, TopDeviationLimit),
	}
	for _, s := range selected {
		r.Trend = append(r.Trend, point(s, s.TotalOrdered, s.TotalDelivered))
	}
	if w.HasProduct() {
		r.ProductTrend = make([]TrendPoint, 0, len(selected))
		for _, s := range selected {
			it, _ := s.Item(w.Product)
			r.ProductTrend = append(r.ProductTrend, point(s, it.Ordered, it.Delivered))
		}
	}
	return r
}

// Filter returns the snapshots inside w, ascending by CreatedAt. Snapshots
// with a zero CreatedAt are always kept and sort first; equal timestamps
// keep their input order.
func Filter(w audit.Window, snapshots []audit.Snapshot) []audit.Snapshot {
	end := endOfDay(w.End)
	out := make([]audit.Snapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if !s.CreatedAt.IsZero() {
			if !w.Start.IsZero() && s.CreatedAt.Before(w.Start) {
				continue
			}
			if !end.IsZero() && s.CreatedAt.After(end) {
				continue
			}
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// FulfilmentRate returns round(100 * delivered / ordered), or 0 when nothing
// was ordered.
func FulfilmentRate(ordered, delivered float64) int64 {
	if ordered == 0 {
		return 0
	}
	pct := decimal.NewFromFloat(delivered).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromFloat(ordered))
	return pct.Round(0).IntPart()
}

func endOfDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

func point(s audit.Snapshot, ordered, delivered float64) TrendPoint {
	label := s.DeliveryDate
	if !s.CreatedAt.IsZero() {
		label = s.CreatedAt.Format(TrendLabelLayout)
	}
	return TrendPoint{Label: label, Time: s.CreatedAt, Ordered: ordered, Delivered: delivered}
}

func topDeviations(snapshots []audit.Snapshot, limit int) []Deviation {
	byID := make(map[string]*Deviation)
	for _, s := range snapshots {
		for _, it := range s.Items {
			d, ok := byID[it.ArticleID]
			if !ok {
				d = &Deviation{ArticleID: it.ArticleID}
				byID[it.ArticleID] = d
			}
			diff := it.Difference()
			d.Name = it.Name
			d.Net += diff
			d.Absolute += math.Abs(diff)
		}
	}

	out := make([]Deviation, 0, len(byID))
	for _, d := range byID {
		if d.Absolute == 0 {
			continue
		}
		switch {
		case d.Net < 0:
			d.Shortfall = -d.Net
		case d.Net > 0:
			d.Surplus = d.Net
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Absolute != out[j].Absolute {
			return out[i].Absolute > out[j].Absolute
		}
		return out[i].ArticleID < out[j].ArticleID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

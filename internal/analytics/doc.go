// Package analytics aggregates saved audit snapshots over a time window.
//
// Compute is a pure function of a window and a snapshot list: it filters by
// creation time, derives KPIs (audit count, fulfilment rate, net difference),
// a per-snapshot trend, the five articles with the largest cumulative
// deviation and, when a product is selected, that product's trend.
//
// Snapshots without a creation timestamp are never filtered out and sort
// before dated ones.
package analytics

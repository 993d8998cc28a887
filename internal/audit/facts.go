package audit

import "sort"

// DeliveryFacts accumulates delivered quantities per article id across
// lines, pages and documents, plus the first delivery date seen.
//
// The zero value is ready to use.
type DeliveryFacts struct {
	Quantities   map[string]float64 `json:"quantities"`
	DeliveryDate string             `json:"delivery_date,omitempty"`
}

// NewDeliveryFacts returns an empty accumulator.
func NewDeliveryFacts() DeliveryFacts {
	return DeliveryFacts{Quantities: map[string]float64{}}
}

// Add sums qty into the running total for id.
func (f *DeliveryFacts) Add(id string, qty float64) {
	if f.Quantities == nil {
		f.Quantities = map[string]float64{}
	}
	f.Quantities[id] += qty
}

// SetDateOnce records date unless a date was already captured.
// Returns true if the date was recorded.
func (f *DeliveryFacts) SetDateOnce(date string) bool {
	if f.DeliveryDate != "" || date == "" {
		return false
	}
	f.DeliveryDate = date
	return true
}

// Get returns the accumulated quantity for id (0 when absent).
func (f DeliveryFacts) Get(id string) float64 {
	return f.Quantities[id]
}

// Take returns the quantity for id and removes it from the accumulator.
func (f *DeliveryFacts) Take(id string) float64 {
	qty := f.Quantities[id]
	delete(f.Quantities, id)
	return qty
}

// Remaining returns the ids still held, in lexical order.
func (f DeliveryFacts) Remaining() []string {
	ids := make([]string, 0, len(f.Quantities))
	for id := range f.Quantities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of distinct article ids held.
func (f DeliveryFacts) Len() int {
	return len(f.Quantities)
}

// Clone returns an independent copy.
func (f DeliveryFacts) Clone() DeliveryFacts {
	out := DeliveryFacts{
		Quantities:   make(map[string]float64, len(f.Quantities)),
		DeliveryDate: f.DeliveryDate,
	}
	for id, qty := range f.Quantities {
		out.Quantities[id] = qty
	}
	return out
}

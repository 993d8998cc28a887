package rules

import (
	"sort"
	"strings"
)

// DefaultLineTolerance is the vertical distance, in layout units, within
// which two tokens belong to the same line.
const DefaultLineTolerance = 8.0

// Rules is the complete set of extraction and reconciliation tables.
type Rules struct {
	// LineTolerance groups tokens into lines (see layout.Reconstruct).
	LineTolerance float64 `json:"line_tolerance" yaml:"line_tolerance"`

	// DateMarker must appear on the line that carries the delivery date.
	DateMarker string `json:"date_marker" yaml:"date_marker"`

	// NoiseMarkers are sender, header and footer substrings. Lines that
	// contain one are never read as article lines.
	NoiseMarkers []string `json:"noise_markers" yaml:"noise_markers"`

	// IgnoreIDs are codes printed on delivery notes that look like article
	// ids but are not (postal code, debtor number, account number).
	IgnoreIDs []string `json:"ignore_ids" yaml:"ignore_ids"`

	// Renames overrides the display name of specific article ids.
	Renames map[string]string `json:"renames" yaml:"renames"`

	// ExcludeKeywords drop items whose display name contains one of them.
	// Those articles are audited elsewhere.
	ExcludeKeywords []string `json:"exclude_keywords" yaml:"exclude_keywords"`

	// UnknownName labels delivered articles that were never ordered.
	UnknownName string `json:"unknown_name" yaml:"unknown_name"`
}

// Default returns the built-in tables.
func Default() *Rules {
	return &Rules{
		LineTolerance: DefaultLineTolerance,
		DateMarker:    "Leverdatum",
		NoiseMarkers: []string{
			"Industrieweg",   // sender street
			"Apeldoorn",      // sender city
			"Debiteurnummer", // debtor number label
			"Totaal",         // total line
		},
		IgnoreIDs: []string{
			"3812",     // postal code digits
			"104233",   // debtor number
			"55001234", // account number
		},
		Renames: map[string]string{
			"1160": "Keukendoek",
			"2041": "Vloermop",
		},
		ExcludeKeywords: []string{"vloermop"},
		UnknownName:     "Onbekend artikel",
	}
}

// IsNoise reports whether line contains any noise marker (case-insensitive).
func (r *Rules) IsNoise(line string) bool {
	return containsAnyFold(line, r.NoiseMarkers)
}

// HasDateMarker reports whether line contains the date marker (case-insensitive).
func (r *Rules) HasDateMarker(line string) bool {
	if r.DateMarker == "" {
		return false
	}
	return strings.Contains(strings.ToLower(line), strings.ToLower(r.DateMarker))
}

// IsIgnored reports whether id is a known non-article code.
func (r *Rules) IsIgnored(id string) bool {
	for _, ignored := range r.IgnoreIDs {
		if ignored == id {
			return true
		}
	}
	return false
}

// DisplayName applies the rename override for id, falling back to name.
func (r *Rules) DisplayName(id, name string) string {
	if renamed, ok := r.Renames[id]; ok {
		return renamed
	}
	return name
}

// IsExcluded reports whether name contains an exclusion keyword (case-insensitive).
func (r *Rules) IsExcluded(name string) bool {
	return containsAnyFold(name, r.ExcludeKeywords)
}

// Clone returns a deep copy.
func (r *Rules) Clone() *Rules {
	out := *r
	out.NoiseMarkers = copyStrings(r.NoiseMarkers)
	out.IgnoreIDs = copyStrings(r.IgnoreIDs)
	out.ExcludeKeywords = copyStrings(r.ExcludeKeywords)
	out.Renames = make(map[string]string, len(r.Renames))
	for k, v := range r.Renames {
		out.Renames[k] = v
	}
	return &out
}

// RenamedIDs returns the ids with a display-name override, sorted.
func (r *Rules) RenamedIDs() []string {
	ids := make([]string, 0, len(r.Renames))
	for id := range r.Renames {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func containsAnyFold(s string, needles []string) bool {
	lower := strings.ToLower(s)
	for _, n := range needles {
		if n == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// OutcomeItem is an audit item as recorded in golden files.
type OutcomeItem struct {
	ArticleID  string  `json:"article_id"`
	Name       string  `json:"name"`
	Ordered    float64 `json:"ordered"`
	Delivered  float64 `json:"delivered"`
	Difference float64 `json:"difference"`
	Status     string  `json:"status"`
}

// OutcomeSnapshot captures the observable result of a scenario execution.
// Field order is fixed for deterministic comparison.
type OutcomeSnapshot struct {
	ScenarioName   string        `json:"scenario_name"`
	DeliveryDate   string        `json:"delivery_date"`
	TotalOrdered   float64       `json:"total_ordered"`
	TotalDelivered float64       `json:"total_delivered"`
	Items          []OutcomeItem `json:"items"`
	Skipped        []string      `json:"skipped"`
	Coercions      []string      `json:"coercions"`
	SnapshotID     string        `json:"snapshot_id,omitempty"`
}

// NewOutcomeSnapshot builds the golden view of a result.
func NewOutcomeSnapshot(name string, result *Result) (*OutcomeSnapshot, error) {
	if result.Run == nil {
		return nil, fmt.Errorf("scenario %s has no run result", name)
	}
	run := result.Run

	s := &OutcomeSnapshot{
		ScenarioName:   name,
		DeliveryDate:   run.DeliveryDate,
		TotalOrdered:   run.TotalOrdered,
		TotalDelivered: run.TotalDelivered,
		Items:          make([]OutcomeItem, 0, len(run.Items)),
		Skipped:        make([]string, 0, len(run.Warnings)),
		Coercions:      make([]string, 0, len(run.CoercionWarnings)),
	}
	for _, it := range run.Items {
		s.Items = append(s.Items, OutcomeItem{
			ArticleID:  it.ArticleID,
			Name:       it.Name,
			Ordered:    it.Ordered,
			Delivered:  it.Delivered,
			Difference: it.Difference(),
			Status:     string(it.Status()),
		})
	}
	for _, w := range run.Warnings {
		s.Skipped = append(s.Skipped, w.Document)
	}
	for _, c := range run.CoercionWarnings {
		s.Coercions = append(s.Coercions, c.String())
	}
	if result.Snapshot != nil {
		s.SnapshotID = result.Snapshot.ID
	}
	return s, nil
}

// MarshalOutcome renders the snapshot as two-space indented JSON without
// HTML escaping or a trailing newline.
func MarshalOutcome(s *OutcomeSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("marshal outcome: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// RunWithGolden executes a scenario and compares the outcome against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the outcome doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already computed result against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot, err := NewOutcomeSnapshot(scenarioName, result)
	if err != nil {
		return err
	}
	data, err := MarshalOutcome(snapshot)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}

package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines one reconciliation conformance test.
// It describes an order file and delivery documents as fixtures, runs them
// through the engine and asserts on the resulting audit items.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Rules is an optional .cue or .yaml rules file.
	// Relative paths are resolved against the scenario file's directory.
	Rules string `yaml:"rules,omitempty"`

	// Order is the order file fixture.
	Order OrderFixture `yaml:"order"`

	// Deliveries are the delivery documents, processed in this order.
	Deliveries []DeliveryFixture `yaml:"deliveries,omitempty"`

	// Save persists the result as a snapshot before assertions run.
	Save bool `yaml:"save,omitempty"`

	// ExpectError is the error code the run must fail with (e.g. NO_VALID_ROWS).
	// When set, assertions are not evaluated.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Assertions validate the run result and the store.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// OrderFixture describes the rows of an order file.
type OrderFixture struct {
	// Name is the document name. Defaults to "order.xlsx".
	Name string `yaml:"name,omitempty"`

	// Lines become rows with the id, name and quantity in their spreadsheet
	// columns. Quantities may be numbers or strings ("12,5", "n/a").
	Lines []OrderLineFixture `yaml:"lines"`
}

// OrderLineFixture is one order row.
type OrderLineFixture struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Qty  any    `yaml:"qty"`
}

// DeliveryFixture describes one delivery document.
type DeliveryFixture struct {
	// Name is the document name.
	Name string `yaml:"name"`

	// Corrupt makes the document fail to decode with this message.
	Corrupt string `yaml:"corrupt,omitempty"`

	// Lines are laid out as tokens 60 units apart on the given baseline.
	Lines []LineFixture `yaml:"lines,omitempty"`

	// Tokens are placed verbatim, for layout edge cases.
	Tokens []TokenFixture `yaml:"tokens,omitempty"`
}

// LineFixture is a line of whitespace-separated words.
type LineFixture struct {
	Page int     `yaml:"page,omitempty"`
	Y    float64 `yaml:"y"`
	Text string  `yaml:"text"`
}

// TokenFixture is one positioned token.
type TokenFixture struct {
	Page int     `yaml:"page,omitempty"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	Text string  `yaml:"text"`
}

// Assertion validates the run result or the snapshot store.
type Assertion struct {
	// Type specifies the assertion type:
	// - "item": the item for Article exists and matches Expect (subset)
	// - "item_absent": no item for Article
	// - "item_count": exactly Count items
	// - "items_order": Articles appear in this relative order
	// - "skipped": exactly Documents were skipped, in order
	// - "delivery_date": the run reported Value
	// - "final_state": Query Table and verify expected values
	Type string `yaml:"type"`

	// Article is the article id (used by item, item_absent).
	Article string `yaml:"article,omitempty"`

	// Articles is the expected id order (used by items_order).
	Articles []string `yaml:"articles,omitempty"`

	// Documents are the expected skipped document names (used by skipped).
	Documents []string `yaml:"documents,omitempty"`

	// Value is the expected delivery date (used by delivery_date).
	Value string `yaml:"value,omitempty"`

	// Count is the expected number of items (used by item_count).
	Count int `yaml:"count,omitempty"`

	// Table is the store table name (used by final_state).
	Table string `yaml:"table,omitempty"`

	// Where specifies query filters (used by final_state).
	Where map[string]interface{} `yaml:"where,omitempty"`

	// Expect contains expected field values (used by item, final_state).
	// Subset match - only specified fields are validated.
	Expect map[string]interface{} `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertItem         = "item"
	AssertItemAbsent   = "item_absent"
	AssertItemCount    = "item_count"
	AssertItemsOrder   = "items_order"
	AssertSkipped      = "skipped"
	AssertDeliveryDate = "delivery_date"
	AssertFinalState   = "final_state"
)

// DefaultOrderName names the order document when the fixture leaves it empty.
const DefaultOrderName = "order.xlsx"

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative rules path is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Rules != "" && !filepath.IsAbs(scenario.Rules) {
		scenario.Rules = filepath.Join(filepath.Dir(path), scenario.Rules)
	}
	if scenario.Rules != "" {
		if _, err := os.Stat(scenario.Rules); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: rules file not found: %s", scenario.Rules)
		}
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Order.Name == "" {
		scenario.Order.Name = DefaultOrderName
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(s.Name, `/\ `) {
		return fmt.Errorf("name %q must not contain slashes or spaces", s.Name)
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.ExpectError == "" && len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required unless expect_error is set")
	}

	seen := make(map[string]bool)
	for i, d := range s.Deliveries {
		if d.Name == "" {
			return fmt.Errorf("deliveries[%d]: name is required", i)
		}
		if seen[d.Name] {
			return fmt.Errorf("deliveries[%d]: duplicate document name %q", i, d.Name)
		}
		seen[d.Name] = true
		if d.Corrupt != "" && (len(d.Lines) > 0 || len(d.Tokens) > 0) {
			return fmt.Errorf("deliveries[%d]: corrupt documents cannot have lines or tokens", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertItem:
		if a.Article == "" {
			return fmt.Errorf("assertions[%d]: article is required for item", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for item", index)
		}
	case AssertItemAbsent:
		if a.Article == "" {
			return fmt.Errorf("assertions[%d]: article is required for item_absent", index)
		}
	case AssertItemCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for item_count", index)
		}
	case AssertItemsOrder:
		if len(a.Articles) == 0 {
			return fmt.Errorf("assertions[%d]: articles list is required for items_order", index)
		}
	case AssertSkipped, AssertDeliveryDate:
		// Empty documents / value are valid expectations.
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

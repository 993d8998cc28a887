package harness

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/decode"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/engine"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/order"
)

func TestScenarios(t *testing.T) {
	files, err := DiscoverScenarios("testdata/scenarios")
	require.NoError(t, err)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			scenario, err := LoadScenario(file)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "scenario errors: %v", result.Errors)

			if scenario.ExpectError == "" {
				require.NoError(t, AssertGolden(t, scenario.Name, result))
			}
		})
	}
}

func TestRun_BasicScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "basic",
		Description: "one ordered article, partly delivered",
		Order: OrderFixture{
			Name:  DefaultOrderName,
			Lines: []OrderLineFixture{{ID: "1001", Name: "Badlaken", Qty: 10}},
		},
		Deliveries: []DeliveryFixture{{
			Name:  "week1.pdf",
			Lines: []LineFixture{{Y: 700, Text: "1001 Badlaken 8"}},
		}},
		Assertions: []Assertion{{
			Type:    AssertItem,
			Article: "1001",
			Expect:  map[string]interface{}{"delivered": 8, "status": "Shortfall"},
		}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Nil(t, result.Snapshot, "snapshot is only saved on request")
	assert.Equal(t, audit.UnknownDeliveryDate, result.Run.DeliveryDate)
	require.Len(t, result.Items(), 1)
}

func TestRun_FailingAssertionReported(t *testing.T) {
	scenario := &Scenario{
		Name:        "failing",
		Description: "wrong expectation",
		Order: OrderFixture{
			Name:  DefaultOrderName,
			Lines: []OrderLineFixture{{ID: "1001", Name: "Badlaken", Qty: 10}},
		},
		Assertions: []Assertion{{
			Type:    AssertItem,
			Article: "1001",
			Expect:  map[string]interface{}{"ordered": 11},
		}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "item 1001 ordered=11")
	assert.Contains(t, result.Errors[0], "ordered=10 delivered=0 Shortfall")
}

func TestRun_ExpectedError(t *testing.T) {
	scenario := &Scenario{
		Name:        "no_rows",
		Description: "header only",
		Order: OrderFixture{
			Name:  DefaultOrderName,
			Lines: []OrderLineFixture{{ID: "Artikel", Name: "Omschrijving", Qty: "Aantal"}},
		},
		ExpectError: order.ErrCodeNoValidRows,
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Nil(t, result.Run)
	assert.True(t, engine.IsParsingError(result.RunError))
}

func TestRun_ExpectedErrorButSucceeded(t *testing.T) {
	scenario := &Scenario{
		Name:        "succeeds",
		Description: "valid order",
		Order: OrderFixture{
			Name:  DefaultOrderName,
			Lines: []OrderLineFixture{{ID: "1001", Name: "Badlaken", Qty: 1}},
		},
		ExpectError: order.ErrCodeNoValidRows,
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "run succeeded")
}

func TestRun_UnexpectedRunError(t *testing.T) {
	scenario := &Scenario{
		Name:        "unexpected",
		Description: "order without rows",
		Order:       OrderFixture{Name: DefaultOrderName},
		Assertions:  []Assertion{{Type: AssertItemCount}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "unexpected run error")
	assert.Contains(t, result.Errors[0], order.ErrCodeNoValidRows)
}

func TestRun_MissingRulesFile(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_rules",
		Description: "rules file missing",
		Rules:       filepath.Join(t.TempDir(), "missing.yaml"),
		Order: OrderFixture{
			Name:  DefaultOrderName,
			Lines: []OrderLineFixture{{ID: "1001", Name: "Badlaken", Qty: 1}},
		},
		Assertions: []Assertion{{Type: AssertItemCount, Count: 1}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load rules")
}

func TestRun_CancelledContext(t *testing.T) {
	scenario := &Scenario{
		Name:        "cancelled",
		Description: "context cancelled before the first document",
		Order: OrderFixture{
			Name:  DefaultOrderName,
			Lines: []OrderLineFixture{{ID: "1001", Name: "Badlaken", Qty: 1}},
		},
		Deliveries: []DeliveryFixture{{Name: "a.pdf", Lines: []LineFixture{{Y: 1, Text: "1001 x 1"}}}},
		Assertions: []Assertion{{Type: AssertItemCount, Count: 1}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := RunContext(ctx, scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, ErrCodeRun, ErrorCode(result.RunError))
}

// Skipping a corrupt document must give the same items as leaving it out.
func TestRun_CorruptDocumentEquivalentToOmission(t *testing.T) {
	base := func(deliveries []DeliveryFixture) *Scenario {
		return &Scenario{
			Name:        "corrupt",
			Description: "corrupt middle document",
			Order: OrderFixture{
				Name:  DefaultOrderName,
				Lines: []OrderLineFixture{{ID: "1001", Name: "Badlaken", Qty: 10}},
			},
			Deliveries: deliveries,
			Assertions: []Assertion{{Type: AssertItemCount, Count: 1}},
		}
	}
	a := DeliveryFixture{Name: "a.pdf", Lines: []LineFixture{{Y: 700, Text: "1001 Badlaken 4"}}}
	b := DeliveryFixture{Name: "b.pdf", Corrupt: "bad xref"}
	c := DeliveryFixture{Name: "c.pdf", Lines: []LineFixture{{Y: 700, Text: "1001 Badlaken 3"}}}

	with, err := Run(base([]DeliveryFixture{a, b, c}))
	require.NoError(t, err)
	without, err := Run(base([]DeliveryFixture{a, c}))
	require.NoError(t, err)

	assert.Equal(t, without.Items(), with.Items())
	assert.Equal(t, 7.0, with.Items()[0].Delivered)
	require.Len(t, with.Run.Warnings, 1)
	assert.Equal(t, "b.pdf", with.Run.Warnings[0].Document)
	assert.Empty(t, without.Run.Warnings)
}

func TestRun_SaveUsesDeterministicHelpers(t *testing.T) {
	scenario := &Scenario{
		Name:        "save",
		Description: "saved run",
		Order: OrderFixture{
			Name:  DefaultOrderName,
			Lines: []OrderLineFixture{{ID: "1001", Name: "Badlaken", Qty: 2}},
		},
		Save:       true,
		Assertions: []Assertion{{Type: AssertItemCount, Count: 1}},
	}

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	require.NotNil(t, first.Snapshot)
	assert.Equal(t, "snap-0001", first.Snapshot.ID)
	assert.Equal(t, first.Snapshot.ID, second.Snapshot.ID)
	assert.Equal(t, first.Snapshot.CreatedAt, second.Snapshot.CreatedAt)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "", ErrorCode(nil))
	assert.Equal(t, order.ErrCodeNoValidRows,
		ErrorCode(&engine.RunError{Stage: engine.StageOrders, Err: &order.ParsingError{Code: order.ErrCodeNoValidRows}}))
	assert.Equal(t, "UNSUPPORTED_DOCUMENT",
		ErrorCode(fmt.Errorf("decode order file x.doc: %w", decode.ErrUnsupported)))
	assert.Equal(t, ErrCodeRun, ErrorCode(context.Canceled))
}

func TestBuildFixtures(t *testing.T) {
	scenario := &Scenario{
		Order: OrderFixture{
			Name:  "bestelling.xlsx",
			Lines: []OrderLineFixture{{ID: "1001", Name: "Badlaken", Qty: "3"}},
		},
		Deliveries: []DeliveryFixture{
			{Name: "a.pdf", Lines: []LineFixture{{Page: 2, Y: 500, Text: "1001  Badlaken 3"}}},
			{Name: "b.pdf", Corrupt: "truncated"},
		},
	}

	rows, pages, docs := buildFixtures(scenario)

	orderRows := rows["bestelling.xlsx"]
	require.Len(t, orderRows, 1)
	assert.Equal(t, "bestelling", orderRows[0].Sheet)
	assert.Equal(t, "1001", orderRows[0].Cell(order.ColArticleID))
	assert.Equal(t, "Badlaken", orderRows[0].Cell(order.ColName))
	assert.Equal(t, "3", orderRows[0].Cell(order.ColQuantity))

	assert.Equal(t, []decode.Document{{Name: "a.pdf"}, {Name: "b.pdf"}}, docs)

	tokens := pages.Tokens["a.pdf"]
	require.Len(t, tokens, 3)
	assert.Equal(t, audit.PositionedToken{Text: "1001", X: 50, Y: 500, Page: 2}, tokens[0])
	assert.Equal(t, audit.PositionedToken{Text: "3", X: 170, Y: 500, Page: 2}, tokens[2])

	require.ErrorIs(t, pages.Failures["b.pdf"], decode.ErrMalformed)
}

package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/decode"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/engine"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/order"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/rules"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/store"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/testutil"
)

// Fixture layout constants: words on a line start at lineStartX and are
// lineWordGap apart.
const (
	lineStartX  = 50.0
	lineWordGap = 60.0
)

// ErrCodeRun is reported for fatal run errors that carry no code of their own.
const ErrCodeRun = "RUN_ERROR"

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Create fresh in-memory database with sequential ids and a stepping clock
// 2. Load the scenario's rules (built-in rules when none are named)
// 3. Reconcile the order fixture against the delivery fixtures
// 4. Save the snapshot when requested
// 5. Evaluate assertions and return the result
//
// The returned error covers harness failures only. Assertion failures and
// unexpected run errors are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:",
		store.WithIDGenerator(testutil.NewSequentialIDGenerator("snap")),
		store.WithClock(testutil.NewDeterministicClock()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	r := rules.Default()
	if scenario.Rules != "" {
		if r, err = rules.Load(scenario.Rules); err != nil {
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
	}

	rows, pages, deliveries := buildFixtures(scenario)
	eng := engine.New(r,
		engine.WithRowDecoder(rows),
		engine.WithPageDecoder(pages),
		engine.WithStore(st),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in tests
	)

	result := NewResult()
	run, runErr := eng.Reconcile(ctx, decode.Document{Name: scenario.Order.Name}, deliveries)
	result.Run = run
	result.RunError = runErr

	if scenario.ExpectError != "" {
		checkExpectedError(result, scenario.ExpectError, runErr)
		return result, nil
	}
	if runErr != nil {
		result.AddError(fmt.Sprintf("unexpected run error: %v", runErr))
		return result, nil
	}

	if scenario.Save {
		snap, err := eng.Save(ctx, run)
		if err != nil {
			return nil, fmt.Errorf("failed to save snapshot: %w", err)
		}
		result.Snapshot = &snap
	}

	actx := &AssertionContext{
		Store: st,
		Ctx:   ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// ErrorCode returns the code of a fatal run error.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var pe *order.ParsingError
	if errors.As(err, &pe) {
		return pe.Code
	}
	if errors.Is(err, decode.ErrUnsupported) {
		return "UNSUPPORTED_DOCUMENT"
	}
	return ErrCodeRun
}

func checkExpectedError(result *Result, want string, err error) {
	if err == nil {
		result.AddError(fmt.Sprintf("expected run error %s, run succeeded", want))
		return
	}
	if got := ErrorCode(err); got != want {
		result.AddError(fmt.Sprintf("expected run error %s, got %s (%v)", want, got, err))
	}
}

// buildFixtures turns the scenario's fixtures into static decoders and the
// ordered list of delivery documents.
func buildFixtures(s *Scenario) (decode.StaticRows, decode.StaticPages, []decode.Document) {
	sheet := strings.TrimSuffix(s.Order.Name, filepath.Ext(s.Order.Name))
	orderRows := make([]audit.Row, 0, len(s.Order.Lines))
	for i, l := range s.Order.Lines {
		cells := make([]any, order.ColQuantity+1)
		cells[order.ColArticleID] = l.ID
		cells[order.ColName] = l.Name
		cells[order.ColQuantity] = l.Qty
		orderRows = append(orderRows, audit.Row{Sheet: sheet, Index: i, Cells: cells})
	}
	rows := decode.StaticRows{s.Order.Name: orderRows}

	pages := decode.StaticPages{
		Tokens:   make(map[string][]audit.PositionedToken),
		Failures: make(map[string]error),
	}
	docs := make([]decode.Document, 0, len(s.Deliveries))
	for _, d := range s.Deliveries {
		docs = append(docs, decode.Document{Name: d.Name})
		if d.Corrupt != "" {
			pages.Failures[d.Name] = fmt.Errorf("%w: %s", decode.ErrMalformed, d.Corrupt)
			continue
		}
		pages.Tokens[d.Name] = deliveryTokens(d)
	}
	return rows, pages, docs
}

func deliveryTokens(d DeliveryFixture) []audit.PositionedToken {
	tokens := make([]audit.PositionedToken, 0, len(d.Tokens))
	for _, l := range d.Lines {
		for i, word := range strings.Fields(l.Text) {
			tokens = append(tokens, audit.PositionedToken{
				Text: word,
				X:    lineStartX + float64(i)*lineWordGap,
				Y:    l.Y,
				Page: pageOrFirst(l.Page),
			})
		}
	}
	for _, t := range d.Tokens {
		tokens = append(tokens, audit.PositionedToken{Text: t.Text, X: t.X, Y: t.Y, Page: pageOrFirst(t.Page)})
	}
	return tokens
}

func pageOrFirst(p int) int {
	if p <= 0 {
		return 1
	}
	return p
}

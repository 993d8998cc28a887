package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/decode"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/extract"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/layout"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/order"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/reconcile"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/rules"
)

// SnapshotStore persists reconciliation results.
// Implemented by store.Store and gormstore.Store.
type SnapshotStore interface {
	Append(ctx context.Context, snap audit.Snapshot) (audit.Snapshot, error)
}

// Engine reconciles order files against delivery documents.
//
// An Engine holds configuration only. It is safe to reuse across runs, one
// run at a time per goroutine.
type Engine struct {
	rules     *rules.Rules
	extractor *extract.Extractor
	tables    decode.RowDecoder
	pages     decode.PageDecoder
	store     SnapshotStore
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRowDecoder overrides the order file decoder (default decode.Tables).
func WithRowDecoder(d decode.RowDecoder) Option {
	return func(e *Engine) { e.tables = d }
}

// WithPageDecoder overrides the delivery document decoder (default decode.Pages).
func WithPageDecoder(d decode.PageDecoder) Option {
	return func(e *Engine) { e.pages = d }
}

// WithStore sets the snapshot store used by Save.
func WithStore(s SnapshotStore) Option {
	return func(e *Engine) { e.store = s }
}

// WithLogger sets the logger. Default discards.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithStrategies replaces the extraction strategy list.
func WithStrategies(strategies ...extract.Strategy) Option {
	return func(e *Engine) { e.extractor = extract.New(e.rules, strategies...) }
}

// New creates an Engine. A nil r uses rules.Default(). The rules are copied.
func New(r *rules.Rules, opts ...Option) *Engine {
	if r == nil {
		r = rules.Default()
	}
	r = r.Clone()

	e := &Engine{
		rules:     r,
		extractor: extract.New(r),
		tables:    decode.Tables{},
		pages:     decode.Pages{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules returns the engine's rule tables.
func (e *Engine) Rules() *rules.Rules {
	return e.rules
}

// DocumentReport describes how one delivery document was processed.
type DocumentReport struct {
	Name   string `json:"name"`
	Pages  int    `json:"pages"`
	Lines  int    `json:"lines"`
	Failed bool   `json:"failed"`
}

// Result is the outcome of one reconciliation run.
type Result struct {
	Items            []audit.AuditItem       `json:"items"`
	TotalOrdered     float64                 `json:"total_ordered"`
	TotalDelivered   float64                 `json:"total_delivered"`
	DeliveryDate     string                  `json:"delivery_date"`
	Summary          reconcile.Summary       `json:"summary"`
	Warnings         []*DocumentDecodeError  `json:"warnings"`
	CoercionWarnings []order.CoercionWarning `json:"coercion_warnings"`
	Documents        []DocumentReport        `json:"documents"`
}

// Reconcile runs the pipeline for one order file and a batch of delivery
// documents, processed in the order given.
//
// A delivery document that fails to decode is skipped and recorded in
// Result.Warnings. Fatal failures return a *RunError: an order file that
// cannot be decoded or has no valid rows, or a cancelled context.
func (e *Engine) Reconcile(ctx context.Context, orderDoc decode.Document, deliveries []decode.Document) (*Result, error) {
	orders, coercions, err := e.readOrders(ctx, orderDoc)
	if err != nil {
		return nil, &RunError{Stage: StageOrders, Err: err}
	}
	e.logger.Debug("orders parsed",
		"document", orderDoc.Name,
		"articles", len(orders),
		"coercion_warnings", len(coercions))

	res := &Result{
		Warnings:         []*DocumentDecodeError{},
		CoercionWarnings: coercions,
		Documents:        make([]DocumentReport, 0, len(deliveries)),
	}
	if res.CoercionWarnings == nil {
		res.CoercionWarnings = []order.CoercionWarning{}
	}

	facts := audit.NewDeliveryFacts()
	for _, doc := range deliveries {
		if err := ctx.Err(); err != nil {
			return nil, &RunError{Stage: StageDeliveries, Err: err}
		}

		tokens, err := e.decodePages(ctx, doc)
		if err != nil {
			warn := NewDocumentDecodeError(doc.Name, err)
			e.logger.Warn("skipping delivery document", "document", doc.Name, "error", err)
			res.Warnings = append(res.Warnings, warn)
			res.Documents = append(res.Documents, DocumentReport{Name: doc.Name, Failed: true})
			continue
		}

		pages := layout.ReconstructPages(tokens, e.rules.LineTolerance)
		report := DocumentReport{Name: doc.Name, Pages: len(pages)}
		for _, p := range pages {
			report.Lines += len(p.Lines)
		}
		facts = e.extractor.Document(facts, pages)
		res.Documents = append(res.Documents, report)

		e.logger.Debug("delivery document processed",
			"document", doc.Name,
			"pages", report.Pages,
			"lines", report.Lines)
	}

	res.Items = reconcile.Merge(orders, facts, e.rules)
	res.TotalOrdered, res.TotalDelivered = reconcile.Totals(res.Items)
	res.Summary = reconcile.Summarize(res.Items)
	res.DeliveryDate = facts.DeliveryDate
	if res.DeliveryDate == "" {
		res.DeliveryDate = audit.UnknownDeliveryDate
	}

	e.logger.Info("reconciliation complete",
		"items", len(res.Items),
		"documents", len(deliveries),
		"skipped", len(res.Warnings),
		"delivery_date", res.DeliveryDate)
	return res, nil
}

// decodePages runs the page decoder and turns a decoder panic into an
// ErrMalformed error so one bad document cannot abort the batch.
func (e *Engine) decodePages(ctx context.Context, doc decode.Document) (tokens []audit.PositionedToken, err error) {
	defer func() {
		if r := recover(); r != nil {
			tokens = nil
			err = fmt.Errorf("decode %s: %w: %v", doc.Name, decode.ErrMalformed, r)
		}
	}()
	return e.pages.DecodePages(ctx, doc)
}

func (e *Engine) readOrders(ctx context.Context, doc decode.Document) (audit.OrderMap, []order.CoercionWarning, error) {
	rows, err := e.tables.DecodeRows(ctx, doc)
	if err != nil {
		return nil, nil, fmt.Errorf("decode order file %s: %w", doc.Name, err)
	}
	orders, coercions, err := order.Parse(order.FirstSheet(rows))
	if err != nil {
		return nil, coercions, fmt.Errorf("order file %s: %w", doc.Name, err)
	}
	return orders, coercions, nil
}

// Snapshot converts a result into an unsaved snapshot. Items are copied.
func (r *Result) Snapshot() audit.Snapshot {
	return audit.Snapshot{
		DeliveryDate:   r.DeliveryDate,
		Items:          audit.CloneItems(r.Items),
		TotalOrdered:   r.TotalOrdered,
		TotalDelivered: r.TotalDelivered,
	}
}

// Save persists res as a new snapshot and returns the stored record.
func (e *Engine) Save(ctx context.Context, res *Result) (audit.Snapshot, error) {
	if e.store == nil {
		return audit.Snapshot{}, &RunError{Stage: StageSave, Err: ErrNoStore}
	}
	snap, err := e.store.Append(ctx, res.Snapshot())
	if err != nil {
		return audit.Snapshot{}, &RunError{Stage: StageSave, Err: err}
	}
	e.logger.Info("snapshot saved", "id", snap.ID, "delivery_date", snap.DeliveryDate)
	return snap, nil
}

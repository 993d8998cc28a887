package engine

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/decode"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/rules"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/store"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/testutil"
)

func orderRow(i int, id, name string, qty any) audit.Row {
	cells := make([]any, 10)
	cells[0] = id
	cells[1] = name
	cells[9] = qty
	return audit.Row{Sheet: "Bestelling", Index: i, Cells: cells}
}

func line(page int, y float64, words ...string) []audit.PositionedToken {
	out := make([]audit.PositionedToken, len(words))
	for i, w := range words {
		out[i] = audit.PositionedToken{Text: w, X: float64(50 + 60*i), Y: y, Page: page}
	}
	return out
}

func concat(parts ...[]audit.PositionedToken) []audit.PositionedToken {
	var out []audit.PositionedToken
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

var orderDoc = decode.Document{Name: "order.xlsx"}

func fixtureRows() decode.StaticRows {
	return decode.StaticRows{
		"order.xlsx": {
			orderRow(0, "Artikel", "Omschrijving", "Aantal"),
			orderRow(1, "1001", "Badlaken", 10.0),
			orderRow(2, "1002", "Handdoek", "5"),
		},
	}
}

func docs(names ...string) []decode.Document {
	out := make([]decode.Document, len(names))
	for i, n := range names {
		out[i] = decode.Document{Name: n}
	}
	return out
}

func TestReconcile_MergesOrdersAndDeliveries(t *testing.T) {
	pages := decode.StaticPages{Tokens: map[string][]audit.PositionedToken{
		"week12.pdf": concat(
			line(1, 780, "Leverdatum", "12-03-2024"),
			line(1, 700, "1001", "Badlaken", "8"),
			line(1, 680, "1003", "Theedoek", "2"),
		),
	}}
	e := New(nil, WithRowDecoder(fixtureRows()), WithPageDecoder(pages))

	res, err := e.Reconcile(context.Background(), orderDoc, docs("week12.pdf"))
	require.NoError(t, err)

	assert.Equal(t, []audit.AuditItem{
		{ArticleID: "1001", Name: "Badlaken", Ordered: 10, Delivered: 8},
		{ArticleID: "1002", Name: "Handdoek", Ordered: 5, Delivered: 0},
		{ArticleID: "1003", Name: "Onbekend artikel", Ordered: 0, Delivered: 2},
	}, res.Items)
	assert.Equal(t, audit.StatusShortfall, res.Items[0].Status())
	assert.Equal(t, audit.StatusShortfall, res.Items[1].Status())
	assert.Equal(t, audit.StatusSurplus, res.Items[2].Status())

	assert.Equal(t, 15.0, res.TotalOrdered)
	assert.Equal(t, 10.0, res.TotalDelivered)
	assert.Equal(t, "12-03-2024", res.DeliveryDate)
	assert.Equal(t, 2, res.Summary.Shortfall)
	assert.Equal(t, 1, res.Summary.Surplus)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, []DocumentReport{{Name: "week12.pdf", Pages: 1, Lines: 3}}, res.Documents)
}

func TestReconcile_CorruptDocumentDoesNotBlockOthers(t *testing.T) {
	corrupt := errors.New("unexpected end of stream")
	pages := decode.StaticPages{
		Tokens: map[string][]audit.PositionedToken{
			"a.pdf": line(1, 700, "1001", "Badlaken", "4"),
			"c.pdf": line(1, 700, "1001", "Badlaken", "3"),
		},
		Failures: map[string]error{"b.pdf": corrupt},
	}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	e := New(nil, WithRowDecoder(fixtureRows()), WithPageDecoder(pages), WithLogger(logger))

	res, err := e.Reconcile(context.Background(), orderDoc, docs("a.pdf", "b.pdf", "c.pdf"))
	require.NoError(t, err)

	item, ok := audit.Snapshot{Items: res.Items}.Item("1001")
	require.True(t, ok)
	assert.Equal(t, 7.0, item.Delivered)

	require.Len(t, res.Warnings, 1)
	w := res.Warnings[0]
	assert.Equal(t, ErrCodeDocumentDecode, w.Code)
	assert.Equal(t, "b.pdf", w.Document)
	assert.ErrorIs(t, w, corrupt)
	assert.True(t, IsDocumentDecodeError(w))

	require.Len(t, res.Documents, 3)
	assert.False(t, res.Documents[0].Failed)
	assert.True(t, res.Documents[1].Failed)
	assert.False(t, res.Documents[2].Failed)

	assert.Contains(t, logs.String(), "skipping delivery document")
	assert.Contains(t, logs.String(), "document=b.pdf")
}

// panickingPages delegates to StaticPages but panics for one document.
type panickingPages struct {
	decode.StaticPages
	panicOn string
}

func (p panickingPages) DecodePages(ctx context.Context, doc decode.Document) ([]audit.PositionedToken, error) {
	if doc.Name == p.panicOn {
		var m map[string]int
		m["boom"]++
	}
	return p.StaticPages.DecodePages(ctx, doc)
}

func TestReconcile_PanickingDecoderSkipsDocument(t *testing.T) {
	pages := panickingPages{
		StaticPages: decode.StaticPages{Tokens: map[string][]audit.PositionedToken{
			"a.pdf": line(1, 700, "1001", "Badlaken", "4"),
			"c.pdf": line(1, 700, "1002", "Handdoek", "5"),
		}},
		panicOn: "b.pdf",
	}
	e := New(nil, WithRowDecoder(fixtureRows()), WithPageDecoder(pages))

	res, err := e.Reconcile(context.Background(), orderDoc, docs("a.pdf", "b.pdf", "c.pdf"))
	require.NoError(t, err)

	snap := audit.Snapshot{Items: res.Items}
	badlaken, ok := snap.Item("1001")
	require.True(t, ok)
	assert.Equal(t, 4.0, badlaken.Delivered)
	handdoek, ok := snap.Item("1002")
	require.True(t, ok)
	assert.Equal(t, 5.0, handdoek.Delivered)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "b.pdf", res.Warnings[0].Document)
	assert.ErrorIs(t, res.Warnings[0], decode.ErrMalformed)
	require.Len(t, res.Documents, 3)
	assert.True(t, res.Documents[1].Failed)
}

func TestReconcile_FirstDateWins(t *testing.T) {
	pages := decode.StaticPages{Tokens: map[string][]audit.PositionedToken{
		"first.pdf":  line(1, 780, "Leverdatum:", "05-03-2024"),
		"second.pdf": line(1, 780, "Leverdatum:", "12-03-2024"),
	}}
	e := New(nil, WithRowDecoder(fixtureRows()), WithPageDecoder(pages))

	res, err := e.Reconcile(context.Background(), orderDoc, docs("second.pdf", "first.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "12-03-2024", res.DeliveryDate)

	res, err = e.Reconcile(context.Background(), orderDoc, docs("first.pdf", "second.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "05-03-2024", res.DeliveryDate)
}

func TestReconcile_NoDateIsUnknown(t *testing.T) {
	e := New(nil, WithRowDecoder(fixtureRows()), WithPageDecoder(decode.StaticPages{}))

	res, err := e.Reconcile(context.Background(), orderDoc, nil)
	require.NoError(t, err)
	assert.Equal(t, audit.UnknownDeliveryDate, res.DeliveryDate)
	assert.NotNil(t, res.Warnings)
	assert.NotNil(t, res.CoercionWarnings)
	assert.NotNil(t, res.Documents)
	for _, it := range res.Items {
		assert.Equal(t, 0.0, it.Delivered)
	}
}

func TestReconcile_NoValidOrderRowsIsFatal(t *testing.T) {
	rows := decode.StaticRows{"order.xlsx": {orderRow(0, "Artikel", "Omschrijving", "Aantal")}}
	e := New(nil, WithRowDecoder(rows), WithPageDecoder(decode.StaticPages{}))

	_, err := e.Reconcile(context.Background(), orderDoc, nil)
	require.Error(t, err)
	assert.True(t, IsParsingError(err))
	assert.Equal(t, StageOrders, StageOf(err))
}

func TestReconcile_UndecodableOrderFileIsFatal(t *testing.T) {
	e := New(nil, WithRowDecoder(decode.StaticRows{}))

	_, err := e.Reconcile(context.Background(), decode.Document{Name: "missing.xlsx"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, decode.ErrUnsupported)
	assert.Equal(t, StageOrders, StageOf(err))
	assert.False(t, IsParsingError(err))
}

func TestReconcile_CoercionWarningsReported(t *testing.T) {
	rows := decode.StaticRows{"order.xlsx": {
		orderRow(1, "1001", "Badlaken", "twaalf"),
		orderRow(2, "1002", "Handdoek", "12,5"),
	}}
	e := New(nil, WithRowDecoder(rows), WithPageDecoder(decode.StaticPages{}))

	res, err := e.Reconcile(context.Background(), orderDoc, nil)
	require.NoError(t, err)
	require.Len(t, res.CoercionWarnings, 1)
	assert.Equal(t, "1001", res.CoercionWarnings[0].ArticleID)
	assert.Equal(t, 12.5, res.TotalOrdered)
}

func TestReconcile_CancelledBetweenDocuments(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := New(nil, WithRowDecoder(fixtureRows()), WithPageDecoder(decode.StaticPages{}))

	_, err := e.Reconcile(ctx, orderDoc, docs("a.pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StageDeliveries, StageOf(err))
}

func TestReconcile_CustomRules(t *testing.T) {
	r := rules.Default()
	r.IgnoreIDs = append(r.IgnoreIDs, "1003")
	pages := decode.StaticPages{Tokens: map[string][]audit.PositionedToken{
		"a.pdf": line(1, 700, "1003", "Theedoek", "2"),
	}}
	e := New(r, WithRowDecoder(fixtureRows()), WithPageDecoder(pages))

	// Mutating the caller's rules after construction has no effect.
	r.IgnoreIDs = nil

	res, err := e.Reconcile(context.Background(), orderDoc, docs("a.pdf"))
	require.NoError(t, err)
	_, ok := audit.Snapshot{Items: res.Items}.Item("1003")
	assert.False(t, ok)
}

func TestSave_PersistsCopy(t *testing.T) {
	s, err := store.Open(":memory:",
		store.WithIDGenerator(testutil.NewSequentialIDGenerator("run")),
		store.WithClock(testutil.NewDeterministicClock()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	pages := decode.StaticPages{Tokens: map[string][]audit.PositionedToken{
		"a.pdf": line(1, 700, "1001", "Badlaken", "8"),
	}}
	e := New(nil, WithRowDecoder(fixtureRows()), WithPageDecoder(pages), WithStore(s))
	ctx := context.Background()

	res, err := e.Reconcile(ctx, orderDoc, docs("a.pdf"))
	require.NoError(t, err)

	snap, err := e.Save(ctx, res)
	require.NoError(t, err)
	assert.Equal(t, "run-0001", snap.ID)
	assert.Equal(t, audit.UnknownDeliveryDate, snap.DeliveryDate)
	assert.Equal(t, res.TotalOrdered, snap.TotalOrdered)

	res.Items[0].Delivered = 999

	stored, ok, err := s.Get(ctx, snap.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 8.0, stored.Items[0].Delivered)
}

func TestSave_NoStore(t *testing.T) {
	e := New(nil)

	_, err := e.Save(context.Background(), &Result{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoStore)
	assert.Equal(t, StageSave, StageOf(err))
}

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Snapshot) (audit.Snapshot, error) {
	return audit.Snapshot{}, errors.New("disk full")
}

func TestSave_StoreFailure(t *testing.T) {
	e := New(nil, WithStore(failingStore{}))

	_, err := e.Save(context.Background(), &Result{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save: disk full")
}

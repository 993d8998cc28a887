package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/order"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/store"
)

func TestReconcileCommandMissingArgs(t *testing.T) {
	cmd := NewReconcileCommand(&RootOptions{Format: "text"})
	_, err := execute(t, cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestReconcileCommand_OrderOnly(t *testing.T) {
	dir := t.TempDir()
	orderPath := writeFile(t, dir, "bestelling.csv", orderCSV(
		[3]string{"1001", "Badlaken", "10"},
		[3]string{"1002", "Handdoek", "5"},
	))

	cmd := NewReconcileCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, orderPath)
	require.NoError(t, err)

	assert.Contains(t, out, "Delivery date: Unknown")
	assert.Contains(t, out, "Badlaken")
	assert.Contains(t, out, "Shortfall")
	assert.Contains(t, out, "Ordered 15, delivered 0 (2 shortfall, 0 surplus, 0 correct)")
}

func TestReconcileCommand_SkipsUnreadableDelivery(t *testing.T) {
	dir := t.TempDir()
	orderPath := writeFile(t, dir, "bestelling.csv", orderCSV([3]string{"1001", "Badlaken", "10"}))
	broken := writeFile(t, dir, "pakbon.pdf", "this is not a pdf")

	cmd := NewReconcileCommand(&RootOptions{Format: "json"})
	out, err := execute(t, cmd, orderPath, broken)
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Items    []map[string]any `json:"items"`
			Warnings []struct {
				Code     string `json:"code"`
				Document string `json:"document"`
			} `json:"warnings"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Items, 1)
	require.Len(t, resp.Data.Warnings, 1)
	assert.Equal(t, "pakbon.pdf", resp.Data.Warnings[0].Document)
	assert.Equal(t, "DOCUMENT_DECODE", resp.Data.Warnings[0].Code)
}

func TestReconcileCommand_NoValidRows(t *testing.T) {
	dir := t.TempDir()
	orderPath := writeFile(t, dir, "bestelling.csv", orderCSV())

	cmd := NewReconcileCommand(&RootOptions{Format: "json"})
	out, err := execute(t, cmd, orderPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, order.ErrCodeNoValidRows, resp.Error.Code)
}

func TestReconcileCommand_MissingOrderFile(t *testing.T) {
	cmd := NewReconcileCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]: failed to read order file")
}

func TestReconcileCommand_MissingRulesFile(t *testing.T) {
	dir := t.TempDir()
	orderPath := writeFile(t, dir, "bestelling.csv", orderCSV([3]string{"1001", "Badlaken", "1"}))

	cmd := NewReconcileCommand(&RootOptions{Format: "text", Rules: filepath.Join(dir, "missing.yaml")})
	_, err := execute(t, cmd, orderPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load rules")
}

func TestReconcileCommand_CustomRules(t *testing.T) {
	dir := t.TempDir()
	orderPath := writeFile(t, dir, "bestelling.csv", orderCSV([3]string{"1160", "Theedoek groot", "2"}))
	rulesPath := writeFile(t, dir, "site.yaml", "rules:\n  renames:\n    \"1160\": Keukenhanddoek\n")

	cmd := NewReconcileCommand(&RootOptions{Format: "text", Rules: rulesPath})
	out, err := execute(t, cmd, orderPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Keukenhanddoek")
}

func TestReconcileCommand_Save(t *testing.T) {
	dir := t.TempDir()
	orderPath := writeFile(t, dir, "bestelling.csv", orderCSV([3]string{"1001", "Badlaken", "4"}))
	db := filepath.Join(dir, "audit.db")

	cmd := NewReconcileCommand(&RootOptions{Format: "text", DB: db})
	out, err := execute(t, cmd, orderPath, "--save")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved snapshot ")

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	snaps, err := st.List(context.Background())
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, 4.0, snaps[0].TotalOrdered)
	assert.Equal(t, "Unknown", snaps[0].DeliveryDate)
	assert.Contains(t, out, snaps[0].ID)
}

func TestReconcileCommand_WithoutSaveLeavesHistoryUntouched(t *testing.T) {
	dir := t.TempDir()
	orderPath := writeFile(t, dir, "bestelling.csv", orderCSV([3]string{"1001", "Badlaken", "4"}))
	db := seedDB(t)

	cmd := NewReconcileCommand(&RootOptions{Format: "text", DB: db})
	_, err := execute(t, cmd, orderPath)
	require.NoError(t, err)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	n, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

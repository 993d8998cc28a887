package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/store"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/testutil"
)

// orderCSV builds a semicolon order export with the quantity in column 10.
func orderCSV(lines ...[3]string) string {
	var b strings.Builder
	b.WriteString("Artikel;Omschrijving;;;;;;;;Aantal\n")
	for _, l := range lines {
		b.WriteString(l[0] + ";" + l[1] + ";;;;;;;;" + l[2] + "\n")
	}
	return b.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// seedDB writes snapshots into a fresh SQLite file and returns its path.
func seedDB(t *testing.T, snaps ...audit.Snapshot) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.db")
	st, err := store.Open(path,
		store.WithIDGenerator(testutil.NewSequentialIDGenerator("snap")),
		store.WithClock(testutil.NewDeterministicClock()),
	)
	require.NoError(t, err)
	defer st.Close()

	for _, s := range snaps {
		_, err := st.Append(context.Background(), s)
		require.NoError(t, err)
	}
	return path
}

// execute runs cmd with args and returns stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func sampleSnapshot(date string, items ...audit.AuditItem) audit.Snapshot {
	return audit.Snapshot{DeliveryDate: date, Items: items}
}

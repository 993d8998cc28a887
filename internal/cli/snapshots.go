package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/store"
)

// timestampLayout renders snapshot creation times.
const timestampLayout = "2006-01-02 15:04"

// SnapshotSummary is one row of the snapshots list.
type SnapshotSummary struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	DeliveryDate   string    `json:"delivery_date"`
	Items          int       `json:"items"`
	TotalOrdered   float64   `json:"total_ordered"`
	TotalDelivered float64   `json:"total_delivered"`
}

// ImportResult reports a snapshots import.
type ImportResult struct {
	Imported int `json:"imported"`
	Total    int `json:"total"`
}

// NewSnapshotsCommand creates the snapshots command group.
func NewSnapshotsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "Inspect and manage the audit history",
		Long: `Inspect and manage saved audit snapshots.

Snapshots are immutable: they can be listed, shown, deleted and imported,
never edited.`,
	}

	cmd.AddCommand(newSnapshotsListCommand(rootOpts))
	cmd.AddCommand(newSnapshotsShowCommand(rootOpts))
	cmd.AddCommand(newSnapshotsDeleteCommand(rootOpts))
	cmd.AddCommand(newSnapshotsExportCommand(rootOpts))
	cmd.AddCommand(newSnapshotsImportCommand(rootOpts))

	return cmd
}

func newSnapshotsListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List saved snapshots, oldest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(opts, cmd, func(f *OutputFormatter, b store.Backend) error {
				snaps, err := b.List(commandContext(cmd))
				if err != nil {
					return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to list snapshots", err)
				}
				summaries := make([]SnapshotSummary, 0, len(snaps))
				for _, s := range snaps {
					summaries = append(summaries, summarize(s))
				}
				if f.IsJSON() {
					return f.Success(summaries)
				}
				writeSnapshotList(f.Writer, summaries)
				return nil
			})
		},
	}
}

func newSnapshotsShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <id>",
		Short:         "Show one snapshot with its items",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(opts, cmd, func(f *OutputFormatter, b store.Backend) error {
				snap, ok, err := b.Get(commandContext(cmd), args[0])
				if err != nil {
					return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to read snapshot", err)
				}
				if !ok {
					return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("snapshot %s not found", args[0]), nil)
				}
				if f.IsJSON() {
					return f.Success(snap)
				}
				heading(f.Writer, fmt.Sprintf("Snapshot %s", snap.ID))
				fmt.Fprintf(f.Writer, "Created:       %s\n", formatTimestamp(snap.CreatedAt))
				fmt.Fprintf(f.Writer, "Delivery date: %s\n\n", snap.DeliveryDate)
				renderItems(f.Writer, snap.Items)
				fmt.Fprintf(f.Writer, "\nOrdered %s, delivered %s\n", formatQty(snap.TotalOrdered), formatQty(snap.TotalDelivered))
				return nil
			})
		},
	}
}

func newSnapshotsDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a snapshot (no-op when absent)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(opts, cmd, func(f *OutputFormatter, b store.Backend) error {
				if err := b.Delete(commandContext(cmd), args[0]); err != nil {
					return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to delete snapshot", err)
				}
				opts.Logger().Info("snapshot deleted", "id", args[0])
				if f.IsJSON() {
					return f.Success(map[string]string{"deleted": args[0]})
				}
				fmt.Fprintf(f.Writer, "Deleted snapshot %s\n", args[0])
				return nil
			})
		},
	}
}

func newSnapshotsExportCommand(opts *RootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every snapshot as a JSON array",
		Long: `Write the full audit history, items included, as a JSON array to stdout
or to --output. The file can be loaded into another database with
'snapshots import'.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(opts, cmd, func(f *OutputFormatter, b store.Backend) error {
				snaps, err := b.List(commandContext(cmd))
				if err != nil {
					return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to list snapshots", err)
				}
				data, err := json.MarshalIndent(snaps, "", "  ")
				if err != nil {
					return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to encode snapshots", err)
				}
				if output == "" {
					fmt.Fprintln(f.Writer, string(data))
					return nil
				}
				if err := os.WriteFile(output, append(data, '\n'), 0644); err != nil {
					return f.Fail(ExitCommandError, ErrCodeInput, "failed to write export file", err)
				}
				f.VerboseLog("Exported %d snapshot(s) to %s", len(snaps), output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

func newSnapshotsImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import snapshots written by 'snapshots export'",
		Long: `Import snapshots from a JSON file holding one snapshot or an array of
snapshots. Ids and creation times are kept; a snapshot whose id already
exists fails the import.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(opts, cmd, func(f *OutputFormatter, b store.Backend) error {
				snaps, err := readSnapshotsFile(args[0])
				if err != nil {
					return f.Fail(ExitCommandError, ErrCodeInput, "failed to read snapshots file", err)
				}
				res := ImportResult{Total: len(snaps)}
				for _, s := range snaps {
					if err := b.Import(commandContext(cmd), s); err != nil {
						return f.Fail(ExitCommandError, ErrCodeDatabase, fmt.Sprintf("failed to import snapshot %s", s.ID), err)
					}
					res.Imported++
				}
				if f.IsJSON() {
					return f.Success(res)
				}
				fmt.Fprintf(f.Writer, "Imported %d snapshot(s)\n", res.Imported)
				return nil
			})
		},
	}
}

// withBackend opens the configured store around fn.
func withBackend(opts *RootOptions, cmd *cobra.Command, fn func(*OutputFormatter, store.Backend) error) error {
	f := opts.formatter(cmd)
	b, err := openBackend(opts.database())
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer closeBackend(b, opts.Logger())
	return fn(f, b)
}

// readSnapshotsFile accepts a bare snapshot, an array of snapshots, or a
// CLI JSON envelope around either.
func readSnapshotsFile(path string) ([]audit.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Data) > 0 {
		data = envelope.Data
	}

	var many []audit.Snapshot
	if err := json.Unmarshal(data, &many); err == nil {
		return many, nil
	}
	var one audit.Snapshot
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return []audit.Snapshot{one}, nil
}

func summarize(s audit.Snapshot) SnapshotSummary {
	return SnapshotSummary{
		ID:             s.ID,
		CreatedAt:      s.CreatedAt,
		DeliveryDate:   s.DeliveryDate,
		Items:          len(s.Items),
		TotalOrdered:   s.TotalOrdered,
		TotalDelivered: s.TotalDelivered,
	}
}

func writeSnapshotList(w io.Writer, summaries []SnapshotSummary) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No snapshots."))
		return
	}
	t := newTable("ID", "CREATED", "DELIVERY DATE", "ITEMS", "ORDERED", "DELIVERED").rightAlign(3, 4, 5)
	for _, s := range summaries {
		t.add(s.ID, formatTimestamp(s.CreatedAt), s.DeliveryDate,
			strconv.Itoa(s.Items), formatQty(s.TotalOrdered), formatQty(s.TotalDelivered))
	}
	t.render(w)
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format(timestampLayout)
}

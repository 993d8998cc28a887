package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/decode"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/engine"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/order"
)

// ReconcileOptions holds flags for the reconcile command.
type ReconcileOptions struct {
	*RootOptions
	Save bool
}

// ReconcileOutput is the reconcile command's payload.
type ReconcileOutput struct {
	*engine.Result
	SnapshotID string `json:"snapshot_id,omitempty"`
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReconcileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reconcile <order-file> [delivery-file...]",
		Short: "Reconcile an order against delivery notes",
		Long: `Reconcile an order spreadsheet (.xlsx, .csv) against delivery notes (.pdf).

Delivery notes are processed in the order given; the first delivery date
found wins. A delivery note that cannot be read is skipped and reported,
the others are still counted. With --save the result is stored as a new
snapshot in the audit history.

Exit codes:
  0 - Reconciliation completed
  1 - The order file has no valid rows
  2 - Command error (unreadable files, rules, database)

Examples:
  linenaudit reconcile bestelling.xlsx week12-1.pdf week12-2.pdf
  linenaudit reconcile bestelling.csv pakbon.pdf --save --db audit.db
  linenaudit reconcile bestelling.xlsx pakbon.pdf --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Save, "save", false, "store the result as a snapshot")

	return cmd
}

func runReconcile(opts *ReconcileOptions, orderPath string, deliveryPaths []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.Logger()
	ctx := commandContext(cmd)

	r, err := opts.loadRules()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeRules, "failed to load rules", err)
	}

	orderDoc, err := decode.ReadFile(orderPath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInput, "failed to read order file", err)
	}
	deliveries := make([]decode.Document, 0, len(deliveryPaths))
	for _, p := range deliveryPaths {
		doc, err := decode.ReadFile(p)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeInput, "failed to read delivery file", err)
		}
		deliveries = append(deliveries, doc)
	}

	engOpts := []engine.Option{engine.WithLogger(logger)}
	if opts.Save {
		backend, err := openBackend(opts.database())
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
		}
		defer closeBackend(backend, logger)
		engOpts = append(engOpts, engine.WithStore(backend))
	}
	eng := engine.New(r, engOpts...)

	formatter.VerboseLog("Reconciling %s against %d delivery document(s)", orderDoc.Name, len(deliveries))
	res, err := eng.Reconcile(ctx, orderDoc, deliveries)
	if err != nil {
		if engine.IsParsingError(err) {
			return formatter.Fail(ExitFailure, order.ErrCodeNoValidRows, "order file has no valid rows", err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeInput, "reconciliation failed", err)
	}

	out := ReconcileOutput{Result: res}
	if opts.Save {
		snap, err := eng.Save(ctx, res)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to save snapshot", err)
		}
		out.SnapshotID = snap.ID
	}

	if formatter.IsJSON() {
		return formatter.Success(out)
	}
	writeReconcileText(formatter.Writer, out)
	return nil
}

func writeReconcileText(w io.Writer, out ReconcileOutput) {
	heading(w, fmt.Sprintf("Delivery date: %s", out.DeliveryDate))
	renderItems(w, out.Items)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Ordered %s, delivered %s (%d shortfall, %d surplus, %d correct)\n",
		formatQty(out.TotalOrdered), formatQty(out.TotalDelivered),
		out.Summary.Shortfall, out.Summary.Surplus, out.Summary.Correct)

	for _, warn := range out.Warnings {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("Skipped %s: %s", warn.Document, warn.Message)))
	}
	for _, c := range out.CoercionWarnings {
		fmt.Fprintln(w, warnStyle.Render("Warning: "+c.String()))
	}
	if out.SnapshotID != "" {
		fmt.Fprintf(w, "Saved snapshot %s\n", out.SnapshotID)
	}
}

package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/analytics"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/store"
)

// dateFlagLayout is the format of --start and --end.
const dateFlagLayout = "2006-01-02"

// AnalyticsOptions holds flags for the analytics command.
type AnalyticsOptions struct {
	*RootOptions
	Start   string
	End     string
	Product string
}

// NewAnalyticsCommand creates the analytics command.
func NewAnalyticsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyticsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Report fulfilment and deviations over the audit history",
		Long: `Report over the saved snapshots in a date window.

The window is inclusive: --end covers the whole day. Snapshots without a
creation time are always included. --product adds a per-snapshot trend for
one article.

Examples:
  linenaudit analytics
  linenaudit analytics --start 2024-03-01 --end 2024-03-31
  linenaudit analytics --product 1001 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalytics(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Start, "start", "", "window start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.End, "end", "", "window end date (YYYY-MM-DD), inclusive")
	cmd.Flags().StringVar(&opts.Product, "product", audit.AllProducts, "article id, or All")

	return cmd
}

func runAnalytics(opts *AnalyticsOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	w, err := opts.window()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeArgs, "invalid window", err)
	}

	return withBackend(opts.RootOptions, cmd, func(f *OutputFormatter, b store.Backend) error {
		report, err := analytics.Query(commandContext(cmd), b, w)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to query history", err)
		}
		if f.IsJSON() {
			return f.Success(report)
		}
		writeReport(f.Writer, report)
		return nil
	})
}

// window parses the date flags. Zero values leave a side unbounded.
func (o *AnalyticsOptions) window() (audit.Window, error) {
	w := audit.Window{Product: o.Product}
	var err error
	if o.Start != "" {
		if w.Start, err = time.Parse(dateFlagLayout, o.Start); err != nil {
			return audit.Window{}, fmt.Errorf("--start %q: expected YYYY-MM-DD", o.Start)
		}
	}
	if o.End != "" {
		if w.End, err = time.Parse(dateFlagLayout, o.End); err != nil {
			return audit.Window{}, fmt.Errorf("--end %q: expected YYYY-MM-DD", o.End)
		}
	}
	if !w.Start.IsZero() && !w.End.IsZero() && w.End.Before(w.Start) {
		return audit.Window{}, fmt.Errorf("--end %s is before --start %s", o.End, o.Start)
	}
	return w, nil
}

func writeReport(w io.Writer, r analytics.Report) {
	heading(w, "Audit history")
	fmt.Fprintf(w, "Audits:          %d\n", r.TotalAudits)
	fmt.Fprintf(w, "Fulfilment rate: %d%%\n", r.FulfilmentRate)
	fmt.Fprintf(w, "Net difference:  %s\n", formatSigned(r.NetDifference))

	if len(r.Trend) > 0 {
		fmt.Fprintln(w)
		heading(w, "Trend")
		writeTrend(w, r.Trend)
	}

	if len(r.TopDeviations) > 0 {
		fmt.Fprintln(w)
		heading(w, "Top deviations")
		t := newTable("ARTICLE", "NAME", "NET", "SHORTFALL", "SURPLUS").rightAlign(2, 3, 4)
		for _, d := range r.TopDeviations {
			t.add(d.ArticleID, d.Name, formatSigned(d.Net), formatQty(d.Shortfall), formatQty(d.Surplus))
		}
		t.render(w)
	}

	if r.Window.HasProduct() {
		fmt.Fprintln(w)
		heading(w, "Product "+r.Window.Product)
		if len(r.ProductTrend) == 0 {
			fmt.Fprintln(w, mutedStyle.Render("No audits include this article."))
			return
		}
		writeTrend(w, r.ProductTrend)
	}
}

func writeTrend(w io.Writer, points []analytics.TrendPoint) {
	t := newTable("DATE", "ORDERED", "DELIVERED", "RATE").rightAlign(1, 2, 3)
	for _, p := range points {
		t.add(p.Label, formatQty(p.Ordered), formatQty(p.Delivered),
			strconv.FormatInt(analytics.FulfilmentRate(p.Ordered, p.Delivered), 10)+"%")
	}
	t.render(w)
}

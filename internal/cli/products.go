package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/analytics"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/store"
)

// NewProductsCommand creates the products command.
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the articles found in the audit history",
		Long: `List every article id that appears in a saved snapshot, with the name
from the most recent snapshot. Use an id with 'analytics --product'.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(rootOpts, cmd, func(f *OutputFormatter, b store.Backend) error {
				snaps, err := b.List(commandContext(cmd))
				if err != nil {
					return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to list snapshots", err)
				}
				products := analytics.Products(snaps)
				if f.IsJSON() {
					return f.Success(products)
				}
				if len(products) == 0 {
					fmt.Fprintln(f.Writer, mutedStyle.Render("No products."))
					return nil
				}
				t := newTable("ARTICLE", "NAME")
				for _, p := range products {
					t.add(p.ArticleID, p.Name)
				}
				t.render(f.Writer)
				return nil
			})
		},
	}
}

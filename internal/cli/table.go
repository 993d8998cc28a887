package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
)

var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	headerCellStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#AAAAAA"))
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F2C94C"))

	statusStyles = map[audit.Status]lipgloss.Style{
		audit.StatusShortfall: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		audit.StatusSurplus:   lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")),
		audit.StatusCorrect:   lipgloss.NewStyle().Foreground(lipgloss.Color("#5AD17A")),
	}
)

// column alignment for renderTable.
type align int

const (
	alignLeft align = iota
	alignRight
)

// table is a plain text table rendered with lipgloss cell styles.
type table struct {
	headers []string
	aligns  []align
	rows    [][]string
}

func newTable(headers ...string) *table {
	return &table{headers: headers, aligns: make([]align, len(headers))}
}

// rightAlign marks columns holding numbers.
func (t *table) rightAlign(cols ...int) *table {
	for _, c := range cols {
		t.aligns[c] = alignRight
	}
	return t
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

// render writes the table. Widths are measured on the visible text so
// styled cells line up.
func (t *table) render(w io.Writer) {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	writeRow := func(cells []string, style *lipgloss.Style) {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if style != nil {
				cell = style.Render(cell)
			}
			parts[i] = pad(cell, widths[i], t.aligns[i])
		}
		io.WriteString(w, strings.TrimRight(strings.Join(parts, "  "), " ")+"\n")
	}

	writeRow(t.headers, &headerCellStyle)
	for _, row := range t.rows {
		writeRow(row, nil)
	}
}

func pad(s string, width int, a align) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if a == alignRight {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

func heading(w io.Writer, title string) {
	io.WriteString(w, headingStyle.Render(title)+"\n")
}

func renderStatus(s audit.Status) string {
	if style, ok := statusStyles[s]; ok {
		return style.Render(string(s))
	}
	return string(s)
}

// renderItems writes the reconciled items as a table.
func renderItems(w io.Writer, items []audit.AuditItem) {
	if len(items) == 0 {
		io.WriteString(w, mutedStyle.Render("No items.")+"\n")
		return
	}
	t := newTable("ARTICLE", "NAME", "ORDERED", "DELIVERED", "DIFF", "STATUS").rightAlign(2, 3, 4)
	for _, it := range items {
		t.add(it.ArticleID, it.Name,
			formatQty(it.Ordered), formatQty(it.Delivered), formatSigned(it.Difference()),
			renderStatus(it.Status()))
	}
	t.render(w)
}

func formatQty(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

func formatSigned(q float64) string {
	if q > 0 {
		return "+" + formatQty(q)
	}
	return formatQty(q)
}

package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// printer writes report text. Headings are styled for terminals and fall back
// to plain text when w is not one.
type printer struct {
	w       io.Writer
	heading lipgloss.Style
	unit    string
}

func newPrinter(w io.Writer, unit string) *printer {
	r := lipgloss.NewRenderer(w)
	return &printer{
		w:       w,
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		unit:    unit,
	}
}

func (p *printer) title(s string) {
	fmt.Fprintf(p.w, "\n%s\n", p.heading.Render("=== "+strings.ToUpper(s)+" ==="))
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// number renders 58000000 as "58,000,000" and 27.5 as "27.5".
func number(v float64) string {
	return humanize.Commaf(v)
}

func years(ys []int) string {
	parts := make([]string, len(ys))
	for i, y := range ys {
		parts[i] = strconv.Itoa(y)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func names(ns []string) string {
	return "[" + strings.Join(ns, ", ") + "]"
}

package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/erp/posconsole/internal/application/collection"
	"github.com/erp/posconsole/internal/application/stats"
	"github.com/erp/posconsole/internal/infrastructure/i18n"
	"github.com/erp/posconsole/internal/infrastructure/resource"
)

// writeTable prints rows aligned under headers
func writeTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(sanitize(row), "\t"))
	}
	return tw.Flush()
}

// sanitize keeps multi-line cells on one table line
func sanitize(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		cell = strings.ReplaceAll(cell, "\t", " ")
		out[i] = strings.ReplaceAll(cell, "\n", " ")
	}
	return out
}

// stderrNotifier prints notifications with a level prefix
func stderrNotifier(w io.Writer) collection.Notifier {
	return collection.NotifierFunc(func(n collection.Notification) {
		fmt.Fprintf(w, "[%s] %s\n", strings.ToUpper(string(n.Level)), n.Message)
	})
}

// writeSummary prints the status breakdown followed by the totals.
// withAmount is false for collections that carry no money field.
func writeSummary(w io.Writer, loc *i18n.Localizer, summary stats.Summary, withAmount bool) error {
	shares := summary.Breakdown()
	rows := make([][]string, 0, len(shares))
	for _, s := range shares {
		rows = append(rows, []string{s.Status, fmt.Sprint(s.Count), fmt.Sprintf("%.1f%%", s.Percent)})
	}
	headers := []string{
		loc.Message(i18n.KeyColumnStatus),
		loc.Message(i18n.KeyColumnCount),
		loc.Message(i18n.KeyColumnPercent),
	}
	if err := writeTable(w, headers, rows); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%s: %d\n", loc.Message(i18n.KeyStatsTotal), summary.Total)
	if withAmount {
		fmt.Fprintf(w, "%s: %s\n", loc.Message(i18n.KeyStatsAmount), resource.Money(summary.Amount))
	}
	return nil
}

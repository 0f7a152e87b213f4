package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// WriteTable renders a human-readable preview of the flattened records.
func WriteTable(t *Table, w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "\n=== Annotation Records (%d) ===\n\n", len(t.Rows))

	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))

	sep := make([]string, len(t.Columns))
	for i := range sep {
		sep[i] = "---"
	}
	fmt.Fprintln(tw, strings.Join(sep, "\t"))

	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	fmt.Fprintln(tw)
	tw.Flush()
}

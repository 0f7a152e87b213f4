package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV emits the table as UTF-8 delimited text, header row first. Output
// is byte-deterministic for a given table.
func WriteCSV(t *Table, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

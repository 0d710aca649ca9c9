// Package export renders in-memory record lists for download. Each feature
// flattens its own records into rows; the layout (columns, ordering) lives
// with the feature, not here.
package export

import (
	"encoding/csv"
	"io"
)

// CSV writes a header row followed by data rows.
func CSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

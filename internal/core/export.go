package core

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ExportFilename is the download name suggested for filtered exports.
const ExportFilename = "dowry_cases_filtered.csv"

// Export writes the header and every record matching criteria to w as CSV.
// Rows are the same, in the same order, as the concatenated pages of Query.
func Export(w io.Writer, ds *Dataset, criteria FilterCriteria) error {
	if ds == nil {
		return fmt.Errorf("export: nil dataset")
	}
	rows, err := Filter(ds, criteria)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.Cells); err != nil {
			return fmt.Errorf("write line %d: %w", r.Line, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush export: %w", err)
	}
	return nil
}

package manifest

import (
	"encoding/csv"
	"io"
)

// WriteCSV renders the manifest as CSV: a header row naming the digest
// algorithm, then one row per record. Failed records carry an empty
// digest column and the failure message in the error column.
func WriteCSV(w io.Writer, m *Manifest) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"path", m.algo, "error"}); err != nil {
		return err
	}
	for i := range m.records {
		record := &m.records[i]
		row := []string{record.Path(), record.Digest(), record.Failure()}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

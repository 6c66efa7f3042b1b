package io

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/haku-324897/askul-navilion/pkg/reconcile"
)

// bom makes spreadsheet software read the file as UTF-8.
const bom = "\uFEFF"

// WriteCSV writes a header and one record per row, UTF-8 with a BOM.
func WriteCSV(w io.Writer, rows []reconcile.ReconciledRow, currency string) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(reconcile.Header()); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.Values(currency)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the CSV to path, creating or truncating it.
func WriteCSVFile(path string, rows []reconcile.ReconciledRow, currency string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteCSV(f, rows, currency); err != nil {
		return err
	}
	return f.Close()
}

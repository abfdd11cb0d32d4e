// Package csvexport writes CSV that is safe to open in spreadsheet apps.
package csvexport

import (
	"encoding/csv"
	"io"
)

// formulaPrefixes start a formula in common spreadsheet apps.
const formulaPrefixes = "=+-@\t\r"

// Cell returns value with a leading ' when a spreadsheet would evaluate it.
func Cell(value string) string {
	if value == "" {
		return value
	}
	for i := 0; i < len(formulaPrefixes); i++ {
		if value[0] == formulaPrefixes[i] {
			return "'" + value
		}
	}
	return value
}

// Writer is a csv.Writer that passes every cell through Cell.
type Writer struct {
	csv    *csv.Writer
	record []string
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

func (w *Writer) Write(record []string) error {
	w.record = w.record[:0]
	for _, value := range record {
		w.record = append(w.record, Cell(value))
	}
	return w.csv.Write(w.record)
}

// Flush writes buffered rows and reports any write error.
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}

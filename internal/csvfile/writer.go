// Package csvfile reads and writes parameter records as CSV.
package csvfile

import (
	"encoding/csv"
	"io"

	"github.com/nvinuesa/paramcsv/internal/model"
)

// Writer writes records as CSV rows with a fixed column set. Each row is
// flushed as it is written, so an interrupted export leaves only complete
// rows behind.
type Writer struct {
	w       *csv.Writer
	columns []string
	rows    int
}

// NewWriter writes the header row for columns and returns a Writer.
func NewWriter(w io.Writer, columns []string) (*Writer, error) {
	cw := &Writer{
		w:       csv.NewWriter(w),
		columns: columns,
	}
	if err := cw.writeRow(columns); err != nil {
		return nil, err
	}
	return cw, nil
}

// Write writes one record. Fields outside the column set are ignored and
// absent fields become empty cells.
func (w *Writer) Write(r *model.Record) error {
	if err := w.writeRow(r.Row(w.columns)); err != nil {
		return err
	}
	w.rows++
	return nil
}

// Rows returns the number of data rows written.
func (w *Writer) Rows() int {
	return w.rows
}

func (w *Writer) writeRow(row []string) error {
	if err := w.w.Write(row); err != nil {
		return err
	}
	w.w.Flush()
	return w.w.Error()
}

package csvfile

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nvinuesa/paramcsv/internal/model"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader reads records from a CSV file whose first row names the columns.
// Any subset of the export columns is accepted as long as Name is present;
// unknown columns are carried through as fields.
type Reader struct {
	r      *csv.Reader
	header []string
	path   string
	line   int
}

// NewReader reads the header row from r. path is used in error messages only.
func NewReader(r io.Reader, path string) (*Reader, error) {
	csvReader := csv.NewReader(skipBOM(r))
	csvReader.FieldsPerRecord = -1 // Variable field count

	header, err := csvReader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ErrInvalidFormat{Path: path, Details: "file is empty"}
		}
		return nil, &ErrInvalidFormat{Path: path, Line: 1, Details: "failed to read CSV header", Err: err}
	}

	seen := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, &ErrInvalidFormat{Path: path, Line: 1, Details: fmt.Sprintf("column %d has no name", i+1)}
		}
		if seen[h] {
			return nil, &ErrInvalidFormat{Path: path, Line: 1, Details: fmt.Sprintf("duplicate column: %s", h)}
		}
		seen[h] = true
		header[i] = h
	}
	if !seen[model.FieldName] {
		return nil, &ErrInvalidFormat{Path: path, Line: 1, Details: fmt.Sprintf("missing required column: %s", model.FieldName)}
	}

	return &Reader{r: csvReader, header: header, path: path, line: 1}, nil
}

// Header returns the column names in file order.
func (r *Reader) Header() []string {
	return r.header
}

// Next returns the next record in file order, or io.EOF. Blank rows are
// skipped. Columns missing from a short row are present but empty.
func (r *Reader) Next() (*model.Record, error) {
	for {
		row, err := r.r.Read()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				r.line = parseErr.Line
			}
			return nil, &ErrInvalidFormat{Path: r.path, Line: r.line, Details: "parse error", Err: err}
		}
		line, _ := r.r.FieldPos(0)
		r.line = line
		if isEmptyRecord(row) {
			continue
		}
		if len(row) > len(r.header) {
			return nil, &ErrInvalidFormat{
				Path:    r.path,
				Line:    line,
				Details: fmt.Sprintf("row has %d fields, header has %d", len(row), len(r.header)),
			}
		}

		rec := &model.Record{}
		for i, col := range r.header {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			rec.Set(col, v)
		}
		return rec, nil
	}
}

// Line returns the line number of the last row read.
func (r *Reader) Line() int {
	return r.line
}

// ReadAll reads every remaining record.
func (r *Reader) ReadAll() ([]*model.Record, error) {
	var records []*model.Record
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

// isEmptyRecord checks if a CSV record has only empty fields.
func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// skipBOM drops a leading UTF-8 byte order mark.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		br.Discard(len(utf8BOM))
	}
	return br
}

// Package dictionary loads and writes data dictionary tables and locates the
// field that holds column names.
package dictionary

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var ErrNoColumns = errors.New("no columns found")

// Table is an in-memory CSV: a header and string rows of the same width.
type Table struct {
	Header []string
	Rows   [][]string

	index map[string]int
}

// NewTable builds a table from a header and rows. Short rows are padded with empty cells.
func NewTable(header []string, rows [][]string) (*Table, error) {
	t := &Table{Header: header}
	t.reindex()
	for i, r := range rows {
		if len(r) > len(header) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", i+1, len(r), len(header))
		}
		row := make([]string, len(header))
		copy(row, r)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// first occurrence wins for duplicated headers
func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
}

// Has reports whether name is one of the headers.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Value returns the cell at row for column name, or "" when the column does not exist.
func (t *Table) Value(row int, name string) string {
	i, ok := t.index[name]
	if !ok {
		return ""
	}
	return t.Rows[row][i]
}

// Column returns every cell of the named column in row order.
func (t *Table) Column(name string) ([]string, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out, true
}

// Set writes a cell. The column must exist.
func (t *Table) Set(row int, name, value string) {
	t.Rows[row][t.index[name]] = value
}

// EnsureColumn appends name with every cell set to def. An existing column
// of that name is reset to def in place instead.
func (t *Table) EnsureColumn(name, def string) {
	if i, ok := t.index[name]; ok {
		for _, row := range t.Rows {
			row[i] = def
		}
		return
	}
	t.Header = append(t.Header, name)
	t.index[name] = len(t.Header) - 1
	for r := range t.Rows {
		t.Rows[r] = append(t.Rows[r], def)
	}
}

// ReadCSV parses a CSV with a header line. An empty input yields ErrNoColumns.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoColumns
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if len(header) == 0 || (len(header) == 1 && header[0] == "") {
		return nil, ErrNoColumns
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	return NewTable(header, records)
}

// ReadFile opens and parses a CSV file.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteCSV writes the header and rows.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteFile writes the table to path, replacing any existing file.
func (t *Table) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

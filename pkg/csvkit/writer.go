// Package csvkit provides an append-aware CSV writer. Appending to an
// existing file reuses and verifies its header instead of writing a second
// one, so repeated batch runs can accumulate rows in a single file.
package csvkit

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

// ErrFieldMismatch is returned when the requested field names don't match
// the header of the existing file.
var ErrFieldMismatch = errors.New("csvkit: field names do not match existing file header")

// Option configures a Writer.
type Option func(*Writer) error

// WithFields fixes the field names (and column order) up front. Without it,
// the order of the first written row is used, or the existing file's header
// when appending.
func WithFields(fields []string) Option {
	return func(w *Writer) error {
		if w.orderFn != nil {
			return errors.New("csvkit: WithFields and WithFieldOrder are mutually exclusive")
		}
		w.fields = append([]string(nil), fields...)
		return nil
	}
}

// WithFieldOrder supplies an ordering function applied to the first row's
// field names.
func WithFieldOrder(fn func([]string) []string) Option {
	return func(w *Writer) error {
		if w.fields != nil {
			return errors.New("csvkit: WithFields and WithFieldOrder are mutually exclusive")
		}
		w.orderFn = fn
		return nil
	}
}

// Writer writes rows of named values to a CSV file, appending when the file
// already has content.
type Writer struct {
	path      string
	fields    []string
	orderFn   func([]string) []string
	hasHeader bool

	file *os.File
	cw   *csv.Writer
}

// NewWriter prepares a writer for path. If the file exists and is non-empty,
// its header is read and reconciled with the configured field names.
func NewWriter(path string, opts ...Option) (*Writer, error) {
	w := &Writer{path: path}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}

	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		header, err := csv.NewReader(f).Read()
		switch {
		case err == io.EOF:
			// Empty file: treat like a new one.
		case err != nil:
			return nil, fmt.Errorf("csvkit: can't read header of %s: %w", path, err)
		default:
			if w.fields != nil && !equalFields(w.fields, header) {
				return nil, fmt.Errorf("%w: file has %v, requested %v",
					ErrFieldMismatch, header, w.fields)
			}
			w.fields = header
			w.hasHeader = true
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	return w, nil
}

// Fields returns the field names, or nil when they are not yet determined.
func (w *Writer) Fields() []string {
	return append([]string(nil), w.fields...)
}

// WriteRow writes one row. The first row fixes the field names when they
// were not configured. A key absent from the fields is an error; a missing
// value is written as an empty cell. Each row is flushed to disk.
func (w *Writer) WriteRow(row map[string]interface{}) error {
	if err := w.prepare(row); err != nil {
		return err
	}

	for k := range row {
		if !w.hasField(k) {
			return fmt.Errorf("csvkit: row has unknown field %q (fields are %v)", k, w.fields)
		}
	}

	record := make([]string, len(w.fields))
	for i, name := range w.fields {
		if v, ok := row[name]; ok {
			record[i] = fmt.Sprint(v)
		}
	}
	if err := w.cw.Write(record); err != nil {
		return err
	}
	w.cw.Flush()
	return w.cw.Error()
}

// WriteRows writes multiple rows.
func (w *Writer) WriteRows(rows []map[string]interface{}) error {
	for _, row := range rows {
		if err := w.WriteRow(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteColumns writes equal-length columns as rows. Column lengths must
// match.
func (w *Writer) WriteColumns(columns map[string][]interface{}) error {
	n := -1
	for name, col := range columns {
		if n >= 0 && len(col) != n {
			return fmt.Errorf("csvkit: column %q has length %d, want %d", name, len(col), n)
		}
		n = len(col)
	}
	if n <= 0 {
		return nil
	}

	// Fix a deterministic field order from the first row if needed.
	for i := 0; i < n; i++ {
		row := make(map[string]interface{}, len(columns))
		for name, col := range columns {
			row[name] = col[i]
		}
		if err := w.WriteRow(row); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes the underlying file. Safe to call when nothing
// was written.
func (w *Writer) Close() error {
	if w.file == nil {
		return nil
	}
	w.cw.Flush()
	if err := w.cw.Error(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// prepare opens the file lazily and writes the header on first use.
func (w *Writer) prepare(firstRow map[string]interface{}) error {
	if w.file != nil {
		return nil
	}

	if w.fields == nil {
		names := make([]string, 0, len(firstRow))
		for k := range firstRow {
			names = append(names, k)
		}
		if w.orderFn != nil {
			names = w.orderFn(names)
		} else {
			// Map iteration order is random; sort for a stable header.
			sort.Strings(names)
		}
		w.fields = names
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w.file = f
	w.cw = csv.NewWriter(f)

	if !w.hasHeader {
		if err := w.cw.Write(w.fields); err != nil {
			return err
		}
		w.hasHeader = true
	}
	return nil
}

func (w *Writer) hasField(name string) bool {
	for _, f := range w.fields {
		if f == name {
			return true
		}
	}
	return false
}

func equalFields(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

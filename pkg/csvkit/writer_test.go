package csvkit

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

func TestWriteRowsNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := NewWriter(path, WithFields([]string{"name", "value"}))
	if err != nil {
		t.Fatalf("NewWriter() error: %v", err)
	}

	rows := []map[string]interface{}{
		{"name": "a", "value": 1},
		{"name": "b", "value": 2.5},
	}
	if err := w.WriteRows(rows); err != nil {
		t.Fatalf("WriteRows() error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	got := readAll(t, path)
	want := [][]string{{"name", "value"}, {"a", "1"}, {"b", "2.5"}}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Errorf("record %d = %v, want %v", i, got[i], want[i])
			}
		}
	}
}

func TestAppendReusesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	w, err := NewWriter(path, WithFields([]string{"x", "y"}))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteRow(map[string]interface{}{"x": 1, "y": 2}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	// Second writer appends without a second header, even without explicit
	// fields: it adopts the file's header.
	w2, err := NewWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := w2.Fields(); len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Errorf("Fields() = %v, want [x y]", got)
	}
	if err := w2.WriteRow(map[string]interface{}{"x": 3, "y": 4}); err != nil {
		t.Fatal(err)
	}
	if err := w2.Close(); err != nil {
		t.Fatal(err)
	}

	got := readAll(t, path)
	if len(got) != 3 {
		t.Fatalf("got %d records, want header plus two rows: %v", len(got), got)
	}
	if got[2][0] != "3" || got[2][1] != "4" {
		t.Errorf("appended row = %v, want [3 4]", got[2])
	}
}

func TestAppendFieldMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewWriter(path, WithFields([]string{"a", "c"})); !errors.Is(err, ErrFieldMismatch) {
		t.Errorf("NewWriter() error = %v, want ErrFieldMismatch", err)
	}
}

func TestAppendToEmptyFileWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWriter(path, WithFields([]string{"a"}))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteRow(map[string]interface{}{"a": "x"}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	got := readAll(t, path)
	if len(got) != 2 || got[0][0] != "a" {
		t.Errorf("records = %v, want header then row", got)
	}
}

func TestUnknownFieldRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := NewWriter(path, WithFields([]string{"a"}))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.WriteRow(map[string]interface{}{"a": 1, "zz": 2}); err == nil {
		t.Error("WriteRow() accepted an unknown field")
	}
}

func TestFieldOrderFromFirstRowSorted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteRow(map[string]interface{}{"b": 2, "a": 1, "c": 3}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	got := readAll(t, path)
	if got[0][0] != "a" || got[0][1] != "b" || got[0][2] != "c" {
		t.Errorf("header = %v, want sorted [a b c]", got[0])
	}
}

func TestWithFieldOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	reverse := func(names []string) []string {
		sorted := append([]string(nil), names...)
		for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
			sorted[i], sorted[j] = sorted[j], sorted[i]
		}
		return sorted
	}

	w, err := NewWriter(path, WithFieldOrder(reverse))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteRow(map[string]interface{}{"a": 1, "b": 2}); err != nil {
		t.Fatal(err)
	}
	w.Close()

	got := readAll(t, path)
	if got[0][0] != "b" {
		t.Errorf("header = %v, want custom order", got[0])
	}
}

func TestWriteColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := NewWriter(path, WithFields([]string{"x", "y"}))
	if err != nil {
		t.Fatal(err)
	}
	cols := map[string][]interface{}{
		"x": {1, 2, 3},
		"y": {"a", "b", "c"},
	}
	if err := w.WriteColumns(cols); err != nil {
		t.Fatalf("WriteColumns() error: %v", err)
	}
	w.Close()

	got := readAll(t, path)
	if len(got) != 4 {
		t.Fatalf("got %d records, want 4", len(got))
	}
	if got[3][0] != "3" || got[3][1] != "c" {
		t.Errorf("last row = %v, want [3 c]", got[3])
	}
}

func TestWriteColumnsLengthMismatch(t *testing.T) {
	w, err := NewWriter(filepath.Join(t.TempDir(), "out.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	err = w.WriteColumns(map[string][]interface{}{"x": {1, 2}, "y": {1}})
	if err == nil {
		t.Error("WriteColumns() accepted mismatched column lengths")
	}
}

func TestOptionConflict(t *testing.T) {
	_, err := NewWriter("unused.csv",
		WithFields([]string{"a"}),
		WithFieldOrder(func(s []string) []string { return s }))
	if err == nil {
		t.Error("NewWriter() accepted conflicting options")
	}
}

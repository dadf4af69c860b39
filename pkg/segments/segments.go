// Package segments implements the segment extraction and coalescing engine.
//
// A segment is a maximal contiguous run of non-background values in a
// one-dimensional numeric sequence, represented as a half-open index range
// [StartIndex, EndIndex). When the sequence carries timestamps, each segment
// also records its start and end timestamps and its duration in fractional
// days. The end timestamp is the timestamp of the last index inside the run
// (EndIndex-1), so the timestamp convention is inclusive while the index
// convention is exclusive.
//
// All operations are pure functions over immutable inputs: they never mutate
// their arguments and are safe for concurrent invocation on independent
// inputs.
package segments

import (
	"errors"
	"time"

	"github.com/seglab/sriracha/pkg/timeutil"
)

// ErrShapeMismatch is returned when a values slice and its timestamps slice
// have different lengths.
var ErrShapeMismatch = errors.New("segments: values and timestamps have different lengths")

// ErrNoTimestamps is returned when an operation requires a table produced
// with timestamps but the table has none.
var ErrNoTimestamps = errors.New("segments: table carries no timestamps")

// Segment is one maximal run of non-background values. The index range is
// half-open; the timestamps, when present, are both inclusive.
type Segment struct {
	StartIndex  int `json:"start_index"`
	EndIndex    int `json:"end_index"`
	IndexLength int `json:"index_length"`

	// Set only when the table was produced with timestamps.
	StartTime time.Time `json:"start_timestamp,omitempty"`
	EndTime   time.Time `json:"end_timestamp,omitempty"`
	DeltaDays float64   `json:"delta_days,omitempty"`
}

// Table is an ordered collection of segments, sorted by StartIndex ascending
// and non-overlapping by construction.
type Table struct {
	Segments []Segment
	HasTimes bool
}

// Len returns the number of segments in the table.
func (t Table) Len() int {
	return len(t.Segments)
}

// Columns returns the stable column names of the table, in the exact order
// downstream consumers rely on.
func (t Table) Columns() []string {
	cols := []string{"start_index", "end_index", "index_length"}
	if t.HasTimes {
		cols = append(cols, "start_timestamp", "end_timestamp", "delta_days")
	}
	return cols
}

// run is a half-open index range [start, end).
type run struct {
	start, end int
}

// findRuns scans positions 0..n-1 and returns the maximal runs of positions
// for which active reports true, in ascending order. This single primitive
// backs both value-segment finding and gap coalescing.
func findRuns(n int, active func(int) bool) []run {
	var runs []run
	start := -1
	for i := 0; i < n; i++ {
		if active(i) {
			if start < 0 {
				start = i
			}
		} else if start >= 0 {
			runs = append(runs, run{start: start, end: i})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, run{start: start, end: n})
	}
	return runs
}

// Find returns the table of maximal runs of values differing from
// background. Any non-background value counts: adjacent unequal
// non-background values merge into a single run. An empty input, or an input
// of all background values, yields an empty table.
func Find(values []float64, background float64) Table {
	runs := findRuns(len(values), func(i int) bool {
		return values[i] != background
	})

	segs := make([]Segment, len(runs))
	for i, r := range runs {
		segs[i] = Segment{
			StartIndex:  r.start,
			EndIndex:    r.end,
			IndexLength: r.end - r.start,
		}
	}
	return Table{Segments: segs}
}

// FindTimed is Find with a parallel timestamps slice: each segment
// additionally carries its start timestamp, its end timestamp (the timestamp
// at EndIndex-1, inclusive) and its duration in fractional days. Returns
// ErrShapeMismatch when the slices have different lengths.
func FindTimed(values []float64, timestamps []time.Time, background float64) (Table, error) {
	if len(values) != len(timestamps) {
		return Table{}, ErrShapeMismatch
	}

	tbl := Find(values, background)
	for i := range tbl.Segments {
		projectTimes(&tbl.Segments[i], timestamps)
	}
	tbl.HasTimes = true
	return tbl, nil
}

// projectTimes attaches timestamps to a segment from the array aligned with
// the original values. The end timestamp uses the last index inside the run.
func projectTimes(s *Segment, timestamps []time.Time) {
	s.StartTime = timestamps[s.StartIndex]
	s.EndTime = timestamps[s.EndIndex-1]
	s.DeltaDays = timeutil.ToDays(s.EndTime.Sub(s.StartTime))
}

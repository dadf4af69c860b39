// Package timeutil provides timestamp helpers shared by the segment engine
// and its callers: day-unit duration conversions, searchsorted-style index
// lookup over sorted timestamp arrays, and timestamp formatting for file
// names and logs.
package timeutil

import (
	"fmt"
	"sort"
	"time"
)

// Day is the fixed day length used for all day-unit conversions.
// One day is always 86400 seconds; no DST or leap-second adjustment.
const Day = 24 * time.Hour

// ToDays converts a duration to a fractional number of days.
// 36 hours converts to 1.5, no rounding.
func ToDays(d time.Duration) float64 {
	return float64(d) / float64(Day)
}

// Duration converts a fractional number of days to a time.Duration.
func Duration(days float64) time.Duration {
	return time.Duration(days * float64(Day))
}

// DaysSinceEpoch returns the fractional days elapsed since the Unix epoch
// for each timestamp.
func DaysSinceEpoch(timestamps []time.Time) []float64 {
	epoch := time.Unix(0, 0).UTC()
	days := make([]float64, len(timestamps))
	for i, ts := range timestamps {
		days[i] = ToDays(ts.Sub(epoch))
	}
	return days
}

// RangeIndices returns the index bounds [start, end) covering the query time
// range in a sorted timestamp array. The start bound is the first index whose
// timestamp is not before start (left bisection); the end bound is the first
// index whose timestamp is after end (right bisection), so a timestamp equal
// to end is included.
func RangeIndices(timestamps []time.Time, start, end time.Time) (int, int) {
	startIndex := sort.Search(len(timestamps), func(i int) bool {
		return !timestamps[i].Before(start)
	})
	endIndex := sort.Search(len(timestamps), func(i int) bool {
		return timestamps[i].After(end)
	})
	return startIndex, endIndex
}

// Overlapping reports, for each interval [starts[i], ends[i]], whether it
// intersects the closed query range [qstart, qend]. The two input slices
// must have equal length.
func Overlapping(starts, ends []time.Time, qstart, qend time.Time) []bool {
	out := make([]bool, len(starts))
	for i := range starts {
		out[i] = !(ends[i].Before(qstart) || starts[i].After(qend))
	}
	return out
}

// FileStamp formats a timestamp for use in file names. Colons are avoided so
// the result is safe on every filesystem; microseconds are always included.
func FileStamp(t time.Time) string {
	return fmt.Sprintf("%s-%06d", t.Format("2006-01-02T15-04-05"), t.Nanosecond()/1000)
}

// ISO formats a timestamp in RFC 3339 form.
func ISO(t time.Time) string {
	return t.Format(time.RFC3339)
}

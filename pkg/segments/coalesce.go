package segments

import (
	"github.com/seglab/sriracha/internal/log"
	"github.com/seglab/sriracha/pkg/timeutil"
)

// DefaultCoalesceIntervalDays is the default gap threshold for Coalesce.
const DefaultCoalesceIntervalDays = 0.25

// Coalesce merges segments whose gap to their predecessor is smaller than
// intervalDays, returning a new table. The gap between consecutive segments
// is the time from the predecessor's end timestamp to the successor's start
// timestamp. Runs of small gaps are found with the same run primitive used
// by Find; a run covering gap indices [a, b) merges original segments a
// through b inclusive. Segments with no small gap on either side are carried
// through unchanged.
//
// The input must carry timestamps and must be sorted by StartIndex ascending;
// the sort order is a precondition and is not validated. Tables with fewer
// than two segments are returned as is. Merged durations are recomputed from
// the group's endpoints, not summed, so irregular sampling is captured
// correctly. A resulting group of zero index length signals inconsistent
// input (for example duplicate start==end segments); it is logged as a
// warning and kept in the output.
func Coalesce(tbl Table, intervalDays float64) (Table, error) {
	if !tbl.HasTimes {
		return Table{}, ErrNoTimestamps
	}

	n := len(tbl.Segments)
	if n < 2 {
		return tbl, nil
	}

	threshold := timeutil.Duration(intervalDays)
	segs := tbl.Segments
	mergeRuns := findRuns(n-1, func(i int) bool {
		// Gap i sits between segments i and i+1.
		return segs[i+1].StartTime.Sub(segs[i].EndTime) < threshold
	})

	out := make([]Segment, 0, n)
	next := 0
	flushGroup := func(lo, hi int) {
		// Group covers original segments [lo, hi).
		first, last := segs[lo], segs[hi-1]
		out = append(out, Segment{
			StartIndex:  first.StartIndex,
			EndIndex:    last.EndIndex,
			IndexLength: last.EndIndex - first.StartIndex,
			StartTime:   first.StartTime,
			EndTime:     last.EndTime,
			DeltaDays:   timeutil.ToDays(last.EndTime.Sub(first.StartTime)),
		})
	}
	for _, r := range mergeRuns {
		for ; next < r.start; next++ {
			flushGroup(next, next+1)
		}
		// A run over gap indices [start, end) merges segments [start, end+1).
		flushGroup(r.start, r.end+1)
		next = r.end + 1
	}
	for ; next < n; next++ {
		flushGroup(next, next+1)
	}

	for _, s := range out {
		if s.IndexLength == 0 {
			log.Warnf("coalesced segment [%d, %d) has zero index length; "+
				"input likely contains start_index==end_index segments",
				s.StartIndex, s.EndIndex)
		}
	}

	return Table{Segments: out, HasTimes: true}, nil
}

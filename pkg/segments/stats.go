package segments

import (
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a segment table. Day-based fields are only meaningful for
// tables produced with timestamps.
type Stats struct {
	Count int `json:"count"`

	TotalIndexLength int     `json:"total_index_length"`
	MeanIndexLength  float64 `json:"mean_index_length"`
	StdIndexLength   float64 `json:"std_index_length"`

	TotalDays float64 `json:"total_days"`
	MeanDays  float64 `json:"mean_days"`
	StdDays   float64 `json:"std_days"`
}

// Describe computes summary statistics over a table's index lengths and,
// when present, its day durations. An empty table yields zero statistics.
func Describe(tbl Table) Stats {
	s := Stats{Count: len(tbl.Segments)}
	if s.Count == 0 {
		return s
	}

	lengths := make([]float64, len(tbl.Segments))
	for i, seg := range tbl.Segments {
		lengths[i] = float64(seg.IndexLength)
		s.TotalIndexLength += seg.IndexLength
	}
	s.MeanIndexLength, s.StdIndexLength = meanStd(lengths)

	if tbl.HasTimes {
		days := make([]float64, len(tbl.Segments))
		for i, seg := range tbl.Segments {
			days[i] = seg.DeltaDays
			s.TotalDays += seg.DeltaDays
		}
		s.MeanDays, s.StdDays = meanStd(days)
	}
	return s
}

// meanStd returns the mean and the sample standard deviation. A single
// observation has zero deviation rather than gonum's NaN.
func meanStd(xs []float64) (float64, float64) {
	mean, std := stat.MeanStdDev(xs, nil)
	if len(xs) < 2 {
		std = 0
	}
	return mean, std
}

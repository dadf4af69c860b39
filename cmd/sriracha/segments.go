package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/seglab/sriracha/internal/log"
	"github.com/seglab/sriracha/pkg/csvkit"
	"github.com/seglab/sriracha/pkg/segments"
	"github.com/seglab/sriracha/pkg/timeutil"
)

var segmentsCmd = &cobra.Command{
	Use:   "segments FILE",
	Short: "Extract non-background segments from a CSV time series",
	Long: `Reads a CSV file, finds the maximal runs of values differing from the
background value in --column, and writes one row per segment. With
--time-column each segment also gets start/end timestamps and a duration in
days; --coalesce then merges segments separated by less than the given gap.

Timestamps are parsed as RFC 3339 or as numeric epoch seconds.`,
	Args: cobra.ExactArgs(1),
	RunE: runSegments,
}

var (
	segColumn     string
	segTimeColumn string
	segBackground float64
	segCoalesce   float64
	segOut        string
)

func init() {
	segmentsCmd.Flags().StringVarP(&segColumn, "column", "c", "value", "name of the value column")
	segmentsCmd.Flags().StringVarP(&segTimeColumn, "time-column", "t", "", "name of the timestamp column")
	segmentsCmd.Flags().Float64VarP(&segBackground, "background", "b", 0, "background value separating segments")
	segmentsCmd.Flags().Float64Var(&segCoalesce, "coalesce", 0, "merge segments separated by less than this many days (requires --time-column)")
	segmentsCmd.Flags().StringVarP(&segOut, "out", "o", "", "output CSV file (appends; default stdout)")
	rootCmd.AddCommand(segmentsCmd)
}

func runSegments(cmd *cobra.Command, args []string) error {
	values, timestamps, err := readSeries(args[0], segColumn, segTimeColumn)
	if err != nil {
		return err
	}

	var tbl segments.Table
	if segTimeColumn != "" {
		tbl, err = segments.FindTimed(values, timestamps, segBackground)
		if err != nil {
			return err
		}
	} else {
		tbl = segments.Find(values, segBackground)
	}

	if segCoalesce > 0 {
		tbl, err = segments.Coalesce(tbl, segCoalesce)
		if err != nil {
			return err
		}
	}

	stats := segments.Describe(tbl)
	log.Infof("found %d segments covering %d samples in %s", stats.Count, stats.TotalIndexLength, args[0])

	if segOut == "" {
		return writeStdout(tbl)
	}
	return writeFile(tbl, segOut)
}

// readSeries extracts the value column and, when timeColumn is non-empty, the
// parallel timestamp column from a CSV file.
func readSeries(path, column, timeColumn string) ([]float64, []time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("can't read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s is empty", path)
	}

	header := records[0]
	valueIdx, timeIdx := -1, -1
	for i, name := range header {
		switch name {
		case column:
			valueIdx = i
		case timeColumn:
			timeIdx = i
		}
	}
	if valueIdx < 0 {
		return nil, nil, fmt.Errorf("%s has no column %q", path, column)
	}
	if timeColumn != "" && timeIdx < 0 {
		return nil, nil, fmt.Errorf("%s has no column %q", path, timeColumn)
	}

	var values []float64
	var timestamps []time.Time
	for line, rec := range records[1:] {
		v, err := strconv.ParseFloat(rec[valueIdx], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%s line %d: bad value %q", path, line+2, rec[valueIdx])
		}
		values = append(values, v)

		if timeIdx >= 0 {
			ts, err := parseTimestamp(rec[timeIdx])
			if err != nil {
				return nil, nil, fmt.Errorf("%s line %d: bad timestamp %q", path, line+2, rec[timeIdx])
			}
			timestamps = append(timestamps, ts)
		}
	}
	return values, timestamps, nil
}

// parseTimestamp accepts RFC 3339 strings or numeric epoch seconds.
func parseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, int64(secs*float64(time.Second))).UTC(), nil
}

func segmentRow(s segments.Segment, hasTimes bool) map[string]interface{} {
	row := map[string]interface{}{
		"start_index":  s.StartIndex,
		"end_index":    s.EndIndex,
		"index_length": s.IndexLength,
	}
	if hasTimes {
		row["start_timestamp"] = timeutil.ISO(s.StartTime)
		row["end_timestamp"] = timeutil.ISO(s.EndTime)
		row["delta_days"] = strconv.FormatFloat(s.DeltaDays, 'g', -1, 64)
	}
	return row
}

func writeStdout(tbl segments.Table) error {
	w := csv.NewWriter(os.Stdout)
	cols := tbl.Columns()
	if err := w.Write(cols); err != nil {
		return err
	}
	for _, s := range tbl.Segments {
		row := segmentRow(s, tbl.HasTimes)
		rec := make([]string, len(cols))
		for i, c := range cols {
			rec[i] = fmt.Sprint(row[c])
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeFile(tbl segments.Table, path string) error {
	w, err := csvkit.NewWriter(path, csvkit.WithFields(tbl.Columns()))
	if err != nil {
		return err
	}
	for _, s := range tbl.Segments {
		if err := w.WriteRow(segmentRow(s, tbl.HasTimes)); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

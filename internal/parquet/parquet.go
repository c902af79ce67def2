// Package parquet provides data structures and functions for exporting timelapse
// data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/timelapse/schema"
	"github.com/parquet-go/parquet-go"
)

// LineRow is one per-line commit record. It doubles as a loader input format.
type LineRow struct {
	File     string `parquet:"file,snappy"`
	Line     int32  `parquet:"line,snappy"`
	Type     string `parquet:"type,snappy"`
	Commit   string `parquet:"commit,snappy"`
	Author   string `parquet:"author,snappy"`
	Date     string `parquet:"date,snappy"`
	Time     string `parquet:"time,snappy"`
	Timezone string `parquet:"timezone,snappy"`

	// Datetime is kept as RFC3339 text so the recorded offset survives a round trip
	Datetime string `parquet:"datetime,snappy"`

	Depth  int32 `parquet:"depth,snappy"`
	Length int32 `parquet:"length,snappy"`
}

// CommitRow is one aggregated commit.
type CommitRow struct {
	CommitID   string    `parquet:"commit_id,snappy"`
	URL        string    `parquet:"url,snappy"`
	Author     string    `parquet:"author,snappy"`
	Datetime   time.Time `parquet:"datetime,snappy"`
	Timezone   string    `parquet:"timezone,snappy"`
	HourFrac   float64   `parquet:"hour_frac,snappy"`
	TotalLines int32     `parquet:"total_lines,snappy"`

	// Mark geometry is only present when the commit was rendered
	X *float64 `parquet:"x,optional,snappy"`
	Y *float64 `parquet:"y,optional,snappy"`
	R *float64 `parquet:"r,optional,snappy"`
}

// FileRowRecord is one file of a composition snapshot.
type FileRowRecord struct {
	SnapshotTime time.Time `parquet:"snapshot_time,snappy"`
	FilePath     string    `parquet:"file_path,snappy"`
	Language     string    `parquet:"language,snappy"`
	LineCount    int32     `parquet:"line_count,snappy"`
	Color        *string   `parquet:"color,optional,snappy"`
}

// StatsRow is one named metric of a stats summary.
type StatsRow struct {
	Scope  string  `parquet:"scope,snappy"`
	Metric string  `parquet:"metric,snappy"`
	Value  float64 `parquet:"value,snappy"`
	Label  *string `parquet:"label,optional,snappy"`
}

// RunRow maps to the timelapse_runs table.
type RunRow struct {
	RunID         int64      `parquet:"run_id,snappy"`
	StartTime     time.Time  `parquet:"start_time,snappy"`
	EndTime       *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs *int32     `parquet:"run_duration_ms,optional,snappy"`
	InputPath     string     `parquet:"input_path,snappy"`
	CursorTime    time.Time  `parquet:"cursor_time,snappy"`
	Progress      float64    `parquet:"progress,snappy"`
	TotalCommits  int32      `parquet:"total_commits,snappy"`
	ConfigParams  *string    `parquet:"config_params,optional,snappy"`
}

// RunCommitRow maps to the timelapse_run_commits table.
type RunCommitRow struct {
	RunID      int64     `parquet:"run_id,snappy"`
	CommitID   string    `parquet:"commit_id,snappy"`
	Author     string    `parquet:"author,snappy"`
	Datetime   time.Time `parquet:"datetime,snappy"`
	TotalLines int32     `parquet:"total_lines,snappy"`
	HourFrac   float64   `parquet:"hour_frac,snappy"`
}

// writeRows writes data to a new Parquet file at outputPath.
func writeRows[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteLineRowsParquet writes line records to a Parquet file.
func WriteLineRowsParquet(data []LineRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteCommitRowsParquet writes commits to a Parquet file.
func WriteCommitRowsParquet(data []CommitRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteFileRowsParquet writes file composition rows to a Parquet file.
func WriteFileRowsParquet(data []FileRowRecord, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteStatsRowsParquet writes stats metrics to a Parquet file.
func WriteStatsRowsParquet(data []StatsRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteRunsParquet writes run records to a Parquet file.
func WriteRunsParquet(data []RunRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteRunCommitsParquet writes run commit records to a Parquet file.
func WriteRunCommitsParquet(data []RunCommitRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// ReadLineRecords reads a line-record Parquet file written by WriteLineRowsParquet.
// Rows with an unparseable datetime come back with a zero Datetime.
func ReadLineRecords(path string) ([]schema.LineRecord, error) {
	rows, err := parquet.ReadFile[LineRow](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file: %w", err)
	}
	records := make([]schema.LineRecord, len(rows))
	for i, row := range rows {
		records[i] = row.ToLineRecord()
	}
	return records, nil
}

// ToLineRecord converts the row back into a schema.LineRecord.
func (r LineRow) ToLineRecord() schema.LineRecord {
	dt, _ := time.Parse(time.RFC3339Nano, r.Datetime)
	return schema.LineRecord{
		File:     r.File,
		Line:     int(r.Line),
		Depth:    int(r.Depth),
		Length:   int(r.Length),
		Type:     r.Type,
		Commit:   r.Commit,
		Author:   r.Author,
		Date:     r.Date,
		Time:     r.Time,
		Timezone: r.Timezone,
		Datetime: dt,
	}
}

// ConvertLineRecords converts schema.LineRecord to LineRow for Parquet export.
func ConvertLineRecords(records []schema.LineRecord) []LineRow {
	result := make([]LineRow, len(records))
	for i, rec := range records {
		result[i] = LineRow{
			File:     rec.File,
			Line:     int32(rec.Line),
			Type:     rec.Type,
			Commit:   rec.Commit,
			Author:   rec.Author,
			Date:     rec.Date,
			Time:     rec.Time,
			Timezone: rec.Timezone,
			Datetime: rec.Datetime.Format(time.RFC3339Nano),
			Depth:    int32(rec.Depth),
			Length:   int32(rec.Length),
		}
	}
	return result
}

// ConvertCommits converts commits to CommitRow. Marks are matched by commit id
// and may be nil.
func ConvertCommits(commits []schema.Commit, marks []schema.Mark) []CommitRow {
	byID := make(map[string]schema.Mark, len(marks))
	for _, m := range marks {
		byID[m.CommitID] = m
	}
	result := make([]CommitRow, len(commits))
	for i, c := range commits {
		row := CommitRow{
			CommitID:   c.ID,
			URL:        c.URL,
			Author:     c.Author,
			Datetime:   c.Datetime,
			Timezone:   c.Timezone,
			HourFrac:   c.HourFrac,
			TotalLines: int32(c.TotalLines),
		}
		if m, ok := byID[c.ID]; ok {
			x, y, r := m.X, m.Y, m.R
			row.X, row.Y, row.R = &x, &y, &r
		}
		result[i] = row
	}
	return result
}

// ConvertFileRows converts file composition rows taken at snapshotTime.
func ConvertFileRows(rows []schema.FileRow, snapshotTime time.Time) []FileRowRecord {
	result := make([]FileRowRecord, len(rows))
	for i, row := range rows {
		rec := FileRowRecord{
			SnapshotTime: snapshotTime,
			FilePath:     row.Name,
			Language:     row.Language,
			LineCount:    int32(row.LineCount),
		}
		if len(row.Units) > 0 {
			color := row.Units[0].Color
			rec.Color = &color
		}
		result[i] = rec
	}
	return result
}

// ConvertStats flattens a stats summary into one row per metric.
func ConvertStats(scope string, s schema.Stats) []StatsRow {
	label := func(v string) *string {
		if v == "" {
			return nil
		}
		return &v
	}
	return []StatsRow{
		{Scope: scope, Metric: "total_lines", Value: float64(s.TotalLines)},
		{Scope: scope, Metric: "total_commits", Value: float64(s.TotalCommits)},
		{Scope: scope, Metric: "num_files", Value: float64(s.NumFiles)},
		{Scope: scope, Metric: "longest_line", Value: float64(s.LongestLine)},
		{Scope: scope, Metric: "avg_line_length", Value: s.AvgLineLength},
		{Scope: scope, Metric: "max_file_length", Value: float64(s.MaxFileLength)},
		{Scope: scope, Metric: "avg_file_length", Value: s.AvgFileLength},
		{Scope: scope, Metric: "avg_file_depth", Value: s.AvgFileDepth},
		{Scope: scope, Metric: "busiest_period", Label: label(string(s.BusiestPeriod))},
		{Scope: scope, Metric: "busiest_day", Label: label(s.BusiestDay)},
	}
}

// ConvertRunRecords converts schema.RunRecord to RunRow for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []RunRow {
	result := make([]RunRow, len(records))
	for i, record := range records {
		result[i] = RunRow{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			InputPath:     record.InputPath,
			CursorTime:    record.CursorTime,
			Progress:      record.Progress,
			TotalCommits:  record.TotalCommits,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertRunCommitRecords converts schema.RunCommitRecord to RunCommitRow for Parquet export.
func ConvertRunCommitRecords(records []schema.RunCommitRecord) []RunCommitRow {
	result := make([]RunCommitRow, len(records))
	for i, record := range records {
		result[i] = RunCommitRow{
			RunID:      record.RunID,
			CommitID:   record.CommitID,
			Author:     record.Author,
			Datetime:   record.Datetime,
			TotalLines: record.TotalLines,
			HourFrac:   record.HourFrac,
		}
	}
	return result
}

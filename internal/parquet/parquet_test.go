package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/timelapse/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []schema.LineRecord {
	pst := time.FixedZone("-08:00", -8*3600)
	return []schema.LineRecord{
		{File: "src/app.ts", Line: 1, Depth: 0, Length: 12, Type: "ts", Commit: "a1", Author: "Ada",
			Date: "2024-01-01", Time: "09:00:00", Timezone: "-08:00", Datetime: time.Date(2024, 1, 1, 9, 0, 0, 0, pst)},
		{File: "README.md", Line: 1, Depth: 0, Length: 8, Type: "md", Commit: "b2", Author: "Lin",
			Date: "2024-01-02", Time: "14:00:00", Timezone: "+00:00", Datetime: time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC)},
	}
}

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{"LineRow", new(LineRow), []string{"file", "line", "type", "commit", "author", "date", "time", "timezone", "datetime", "depth", "length"}},
		{"CommitRow", new(CommitRow), []string{"commit_id", "url", "author", "datetime", "timezone", "hour_frac", "total_lines", "x", "y", "r"}},
		{"FileRowRecord", new(FileRowRecord), []string{"snapshot_time", "file_path", "language", "line_count", "color"}},
		{"StatsRow", new(StatsRow), []string{"scope", "metric", "value", "label"}},
		{"RunRow", new(RunRow), []string{"run_id", "start_time", "end_time", "run_duration_ms", "input_path", "cursor_time", "progress", "total_commits", "config_params"}},
		{"RunCommitRow", new(RunCommitRow), []string{"run_id", "commit_id", "author", "datetime", "total_lines", "hour_frac"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			require.NotNil(t, s)
			for _, colName := range tt.columns {
				_, ok := s.Lookup(colName)
				assert.True(t, ok, "Column %s should exist in schema", colName)
			}
		})
	}
}

func TestLineRowsRoundTrip(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "lines.parquet")
	records := sampleRecords()

	require.NoError(t, WriteLineRowsParquet(ConvertLineRecords(records), outputPath))

	got, err := ReadLineRecords(outputPath)
	require.NoError(t, err)
	require.Len(t, got, len(records))
	for i := range records {
		assert.Equal(t, records[i].File, got[i].File)
		assert.Equal(t, records[i].Line, got[i].Line)
		assert.Equal(t, records[i].Commit, got[i].Commit)
		assert.True(t, records[i].Datetime.Equal(got[i].Datetime))

		// The recorded offset survives the round trip
		_, want := records[i].Datetime.Zone()
		_, have := got[i].Datetime.Zone()
		assert.Equal(t, want, have)
	}
}

func TestReadLineRecords_Missing(t *testing.T) {
	_, err := ReadLineRecords(filepath.Join(t.TempDir(), "missing.parquet"))
	assert.Error(t, err)
}

func TestWriteCommitRowsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "commits.parquet")
	commits := []schema.Commit{
		{ID: "a1", URL: "u/a1", Author: "Ada", Datetime: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), HourFrac: 9, TotalLines: 5},
		{ID: "b2", URL: "u/b2", Author: "Lin", Datetime: time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC), HourFrac: 14, TotalLines: 15},
	}
	marks := []schema.Mark{{CommitID: "b2", X: 990, Y: 300, R: 30}}
	rows := ConvertCommits(commits, marks)
	assert.Nil(t, rows[0].X)
	require.NotNil(t, rows[1].R)
	assert.Equal(t, 30.0, *rows[1].R)

	require.NoError(t, WriteCommitRowsParquet(rows, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[CommitRow](file)
	defer reader.Close()

	readData := make([]CommitRow, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, 2, n)
	assert.Equal(t, "b2", readData[1].CommitID)
	assert.Equal(t, int32(15), readData[1].TotalLines)
	assert.Nil(t, readData[0].X)
	require.NotNil(t, readData[1].X)
	assert.Equal(t, 990.0, *readData[1].X)
}

func TestConvertFileRows(t *testing.T) {
	at := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	rows := ConvertFileRows([]schema.FileRow{
		{Name: "src/app.ts", Language: "ts", LineCount: 2, Units: []schema.Unit{{Key: "src/app.ts#1", Color: "#1f77b4"}}},
		{Name: "LICENSE", Language: "other", LineCount: 1},
	}, at)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].Color)
	assert.Equal(t, "#1f77b4", *rows[0].Color)
	assert.Nil(t, rows[1].Color)
	assert.Equal(t, at, rows[1].SnapshotTime)

	outputPath := filepath.Join(t.TempDir(), "files.parquet")
	require.NoError(t, WriteFileRowsParquet(rows, outputPath))
}

func TestConvertStats(t *testing.T) {
	rows := ConvertStats("corpus", schema.Stats{TotalLines: 4, BusiestDay: "Monday"})
	require.Len(t, rows, 10)
	assert.Equal(t, 4.0, rows[0].Value)
	assert.Nil(t, rows[8].Label)
	require.NotNil(t, rows[9].Label)
	assert.Equal(t, "Monday", *rows[9].Label)

	outputPath := filepath.Join(t.TempDir(), "stats.parquet")
	require.NoError(t, WriteStatsRowsParquet(rows, outputPath))
}

func TestRunExportConversions(t *testing.T) {
	end := time.Now()
	dur := int32(1500)
	params := `{"at":"50"}`
	runs := ConvertRunRecords([]schema.RunRecord{
		{RunID: 1, StartTime: end.Add(-time.Second), EndTime: &end, RunDurationMs: &dur, InputPath: "/tmp/loc.csv", Progress: 50, TotalCommits: 3, ConfigParams: &params},
		{RunID: 2, StartTime: end, InputPath: "/tmp/loc.csv"},
	})
	require.Len(t, runs, 2)
	assert.Equal(t, int64(1), runs[0].RunID)
	assert.Equal(t, &dur, runs[0].RunDurationMs)
	assert.Nil(t, runs[1].EndTime)

	commits := ConvertRunCommitRecords([]schema.RunCommitRecord{{RunID: 1, CommitID: "a1", TotalLines: 5, HourFrac: 9.5}})
	require.Len(t, commits, 1)
	assert.Equal(t, "a1", commits[0].CommitID)

	dir := t.TempDir()
	require.NoError(t, WriteRunsParquet(runs, filepath.Join(dir, "runs.parquet")))
	require.NoError(t, WriteRunCommitsParquet(commits, filepath.Join(dir, "run_commits.parquet")))
}

func TestWriteRows_BadPath(t *testing.T) {
	err := WriteLineRowsParquet(nil, filepath.Join(t.TempDir(), "missing", "x.parquet"))
	assert.Error(t, err)
}

package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/timelapse/internal/contract"
	"github.com/huangsam/timelapse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAt = time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC)

func testStats() schema.Stats {
	return schema.Stats{
		TotalLines:    4,
		TotalCommits:  2,
		NumFiles:      2,
		LongestLine:   40,
		AvgLineLength: 22.5,
		MaxFileLength: 3,
		AvgFileLength: 2,
		AvgFileDepth:  1.5,
		BusiestPeriod: schema.Afternoon,
		BusiestDay:    "Tuesday",
	}
}

func testConfig(output schema.OutputMode) *contract.Config {
	return &contract.Config{Output: output, Precision: 1, ResultLimit: 10, Width: 120}
}

func TestWriteStatsTable(t *testing.T) {
	cfg := testConfig(schema.TextOut)
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	progress := 50.0
	snap := schema.Stats{TotalLines: 1, TotalCommits: 1, NumFiles: 1}
	report := schema.StatsReport{
		Input:    "loc.csv",
		Corpus:   testStats(),
		At:       testAt,
		Progress: &progress,
		Snapshot: &snap,
	}

	var buf bytes.Buffer
	require.NoError(t, writeStatsTable(report, cfg, fmtFloat, intFmt, time.Second, &buf))

	out := buf.String()
	assert.Contains(t, out, "Busiest period")
	assert.Contains(t, out, "Afternoon")
	assert.Contains(t, out, "Tuesday")
	assert.Contains(t, out, "Loaded 2 commits from loc.csv (0 rows rejected)")
}

func TestWriteStatsCSV(t *testing.T) {
	fmtFloat, intFmt := createFormatters(1)
	snap := schema.Stats{}
	scopes := statsScopes(schema.StatsReport{Corpus: testStats(), Snapshot: &snap})

	var buf bytes.Buffer
	require.NoError(t, writeStatsCSV(&buf, scopes, fmtFloat, intFmt))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1+2*len(statsMetrics))
	assert.Equal(t, []string{"scope", "metric", "value"}, records[0])
	assert.Equal(t, []string{"corpus", "Total lines", "4"}, records[1])
	assert.Equal(t, []string{"corpus", "Avg line length", "22.5"}, records[5])
	assert.Equal(t, []string{"snapshot", "Busiest day", "-"}, records[len(records)-1])
}

func TestWriteStatsReportJSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "stats.json")
	cfg := testConfig(schema.JSONOut)
	cfg.OutputFile = out

	require.NoError(t, WriteStatsReport(schema.StatsReport{Input: "loc.csv", Corpus: testStats()}, cfg, 0))

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, "loc.csv", decoded["input"])
	assert.NotContains(t, decoded, "snapshot")
	assert.NotContains(t, decoded, "at")
}

func testFiles() []schema.FileRow {
	return []schema.FileRow{
		{Name: "src/app.ts", Language: "ts", LineCount: 3, Units: []schema.Unit{
			{Key: "src/app.ts#1", Line: 1, Language: "ts", Color: "#1f77b4"},
			{Key: "src/app.ts#2", Line: 2, Language: "ts", Color: "#1f77b4"},
			{Key: "src/app.ts#3", Line: 3, Language: "ts", Color: "#1f77b4"},
		}},
		{Name: "README.md", Language: "md", LineCount: 1, Units: []schema.Unit{
			{Key: "README.md#1", Line: 1, Language: "md", Color: "#ff7f0e"},
		}},
	}
}

func TestWriteFilesTable(t *testing.T) {
	cfg := testConfig(schema.TextOut)
	cfg.Units = true
	_, intFmt := createFormatters(cfg.Precision)
	files := testFiles()
	report := schema.FilesReport{At: testAt, Progress: 100, TotalFiles: 2, Files: files}

	var buf bytes.Buffer
	require.NoError(t, writeFilesTable(report, files, cfg, intFmt, time.Second, &buf))

	out := buf.String()
	assert.Less(t, strings.Index(out, "src/app.ts"), strings.Index(out, "README.md"))
	assert.Contains(t, out, "ts:3")
	assert.Contains(t, out, "Showing 2 of 2 files")
}

func TestWriteFilesReportLimit(t *testing.T) {
	out := filepath.Join(t.TempDir(), "files.csv")
	cfg := testConfig(schema.CSVOut)
	cfg.OutputFile = out
	cfg.ResultLimit = 1

	require.NoError(t, WriteFilesReport(schema.FilesReport{At: testAt, Files: testFiles(), TotalFiles: 2}, cfg, 0))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"1", "src/app.ts", "ts", "3", "#1f77b4", "2024-01-02T14:00:00Z"}, records[1])
}

func TestRenderUnits(t *testing.T) {
	units := []schema.Unit{
		{Language: "ts"}, {Language: "ts"}, {Language: "md"}, {Language: "ts"},
	}
	assert.Equal(t, "ts:2 md:1 ts:1", renderUnits(units, false))
	assert.Equal(t, "-", renderUnits(nil, false))
}

func TestHexColor(t *testing.T) {
	assert.NotNil(t, hexColor("#1f77b4"))
	assert.NotNil(t, hexColor("not-a-color"))
}

func TestWriteCommitsCSV(t *testing.T) {
	fmtFloat, intFmt := createFormatters(1)
	commits := []schema.CommitView{{
		Commit:   schema.Commit{ID: "a1", URL: "u/a1", Author: "Ada", Datetime: testAt, HourFrac: 14, TotalLines: 3},
		X:        20,
		Y:        326.7,
		R:        30,
		Selected: true,
	}}

	var buf bytes.Buffer
	require.NoError(t, writeCommitsCSV(&buf, commits, fmtFloat, intFmt))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"a1", "u/a1", "Ada", "2024-01-02T14:00:00Z", "14.0", "3", "20.0", "326.7", "30.0", "true"}, records[1])
}

func TestWriteCommitsTable(t *testing.T) {
	cfg := testConfig(schema.TextOut)
	fmtFloat, intFmt := createFormatters(1)
	commits := []schema.CommitView{{Commit: schema.Commit{ID: "0123456789abcdef", Author: "Ada"}}}

	var buf bytes.Buffer
	require.NoError(t, writeCommitsTable(commits, testAt, cfg, fmtFloat, intFmt, 0, &buf))

	out := buf.String()
	assert.Contains(t, out, "0123456")
	assert.NotContains(t, out, "0123456789abcdef")
	assert.Contains(t, out, "Showing 1 visible commits")
}

func TestSplitViews(t *testing.T) {
	views := []schema.CommitView{{Commit: schema.Commit{ID: "a", TotalLines: 2}, X: 1, Y: 2, R: 3}}
	commits, marks := splitViews(views)
	assert.Equal(t, "a", commits[0].ID)
	assert.Equal(t, schema.Mark{CommitID: "a", X: 1, Y: 2, R: 3, TotalLines: 2}, marks[0])
}

func TestWriteSelectionTable(t *testing.T) {
	cfg := testConfig(schema.TextOut)
	fmtFloat, intFmt := createFormatters(1)

	tests := []struct {
		name     string
		report   schema.SelectionReport
		contains []string
		absent   []string
	}{
		{
			name:     "empty selection",
			report:   schema.SelectionReport{Text: schema.SelectionText(0)},
			contains: []string{"No commits selected"},
			absent:   []string{"Language"},
		},
		{
			name: "one commit",
			report: schema.SelectionReport{
				Text:      schema.SelectionText(1),
				IDs:       []string{"b2"},
				Breakdown: []schema.LanguageShare{{Language: "md", Lines: 1, Percent: 100}},
				Stats:     schema.Stats{TotalLines: 1, TotalCommits: 1},
			},
			contains: []string{"1 commits selected", "100.0%", "Total lines"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeSelectionTable(tt.report, cfg, fmtFloat, intFmt, 0, &buf))
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestWriteBreakdownCSV(t *testing.T) {
	fmtFloat, intFmt := createFormatters(1)
	breakdown := []schema.LanguageShare{
		{Language: "ts", Lines: 2, Percent: 66.7},
		{Language: "md", Lines: 1, Percent: 33.3},
	}

	var buf bytes.Buffer
	require.NoError(t, writeBreakdownCSV(&buf, breakdown, fmtFloat, intFmt))
	assert.Equal(t, "language,lines,percent\nts,2,66.7\nmd,1,33.3\n", buf.String())
}

func testNarrative() schema.NarrativeReport {
	stats := testStats()
	return schema.NarrativeReport{
		Steps: []schema.NarrativeStep{
			{Index: 0, CommitID: "a1", Text: "first"},
			{Index: 1, CommitID: "b2", Text: "second"},
		},
		Active:   1,
		At:       testAt,
		Progress: 100,
		Stats:    &stats,
	}
}

func TestWriteNarrativeTable(t *testing.T) {
	cfg := testConfig(schema.TextOut)
	fmtFloat, intFmt := createFormatters(1)

	var buf bytes.Buffer
	require.NoError(t, writeNarrativeTable(testNarrative(), cfg, fmtFloat, intFmt, 0, &buf))

	out := buf.String()
	assert.Contains(t, out, "▶")
	assert.Contains(t, out, "second")
	assert.Contains(t, out, "2 steps, active step 1")
}

func TestWriteNarrativeCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeNarrativeCSV(&buf, testNarrative()))
	assert.Equal(t, "step,commit,active,text\n0,a1,false,first\n1,b2,true,second\n", buf.String())
}

func TestWriteNarrativeReportParquet(t *testing.T) {
	cfg := testConfig(schema.ParquetOut)
	cfg.OutputFile = filepath.Join(t.TempDir(), "steps.parquet")
	err := WriteNarrativeReport(testNarrative(), cfg, 0)
	require.Error(t, err)
	_, statErr := os.Stat(cfg.OutputFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGetMaxTablePathWidth(t *testing.T) {
	tests := []struct {
		name  string
		width int
		units bool
		want  int
	}{
		{"narrow", 40, false, 15},
		{"medium", 100, false, 60},
		{"wide", 300, false, 70},
		{"units column", 100, true, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &contract.Config{Width: tt.width, Units: tt.units}
			assert.Equal(t, tt.want, GetMaxTablePathWidth(cfg))
		})
	}
}

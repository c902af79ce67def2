package agg

import (
	"fmt"
	"testing"
	"time"

	"github.com/huangsam/timelapse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeLines builds n records of one commit in one file.
func makeLines(commit, file, lang string, at time.Time, n int) []schema.LineRecord {
	lines := make([]schema.LineRecord, n)
	for i := range lines {
		lines[i] = schema.LineRecord{
			File:     file,
			Line:     i + 1,
			Depth:    i % 3,
			Length:   10 + i,
			Type:     lang,
			Commit:   commit,
			Author:   "author-" + commit,
			Date:     at.Format("2006-01-02"),
			Time:     at.Format("15:04:05"),
			Timezone: at.Format("-07:00"),
			Datetime: at,
		}
	}
	return lines
}

var (
	tA = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)  // Monday morning
	tB = time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC) // Tuesday afternoon
)

func scenarioRecords() []schema.LineRecord {
	// b is listed first to check the datetime sort
	recs := makeLines("b", "src/app.ts", "ts", tB, 15)
	return append(recs, makeLines("a", "README.md", "md", tA, 5)...)
}

func TestGroupCommits(t *testing.T) {
	commits := GroupCommits(scenarioRecords(), "https://example.com/commit/", nil)
	require.Len(t, commits, 2)

	assert.Equal(t, []string{"a", "b"}, schema.CommitIDs(commits))
	assert.Equal(t, "https://example.com/commit/a", commits[0].URL)
	assert.Equal(t, 5, commits[0].TotalLines)
	assert.Len(t, commits[0].Lines, 5)
	assert.Equal(t, 15, commits[1].TotalLines)
	assert.Equal(t, 9.0, commits[0].HourFrac)
	assert.Equal(t, "author-a", commits[0].Author)

	// Every record lands in exactly one commit
	total := 0
	for _, c := range commits {
		total += c.TotalLines
	}
	assert.Equal(t, 20, total)
}

func TestGroupCommits_StableOnEqualDatetime(t *testing.T) {
	recs := append(makeLines("x", "a.go", "go", tA, 1), makeLines("y", "b.go", "go", tA, 1)...)
	recs = append(recs, makeLines("w", "c.go", "go", tA, 1)...)
	commits := GroupCommits(recs, "", nil)
	assert.Equal(t, []string{"x", "y", "w"}, schema.CommitIDs(commits))
}

func TestGroupCommits_FirstRecordWins(t *testing.T) {
	recs := makeLines("a", "a.go", "go", tA, 2)
	recs[1].Author = "someone else"
	recs[1].Datetime = tB

	var conflicts []Conflict
	commits := GroupCommits(recs, "", func(c Conflict) { conflicts = append(conflicts, c) })

	require.Len(t, commits, 1)
	assert.Equal(t, "author-a", commits[0].Author)
	assert.Equal(t, tA, commits[0].Datetime)
	require.Len(t, conflicts, 2)
	assert.Equal(t, "author", conflicts[0].Field)
	assert.Equal(t, "someone else", conflicts[0].Ignored)
	assert.Equal(t, "datetime", conflicts[1].Field)
}

func TestGroupCommits_Empty(t *testing.T) {
	assert.Empty(t, GroupCommits(nil, "", nil))
}

func TestHourFrac_UsesRecordedOffset(t *testing.T) {
	pst := time.FixedZone("PST", -8*3600)
	at := time.Date(2024, 1, 1, 23, 45, 0, 0, pst)
	assert.Equal(t, 23.75, HourFrac(at))
}

func TestComputeStats(t *testing.T) {
	recs := scenarioRecords()
	commits := GroupCommits(recs, "", nil)
	stats := ComputeStats(recs, commits)

	assert.Equal(t, 20, stats.TotalLines)
	assert.Equal(t, 2, stats.TotalCommits)
	assert.Equal(t, 2, stats.NumFiles)
	assert.Equal(t, 24, stats.LongestLine) // 10 + 14
	// lengths: 10..24 (sum 255) and 10..14 (sum 60)
	assert.InDelta(t, 315.0/20, stats.AvgLineLength, 1e-9)
	assert.Equal(t, 15, stats.MaxFileLength)
	assert.InDelta(t, 10.0, stats.AvgFileLength, 1e-9)
	assert.InDelta(t, 2.0, stats.AvgFileDepth, 1e-9)
	assert.Equal(t, schema.Afternoon, stats.BusiestPeriod)
	assert.Equal(t, "Tuesday", stats.BusiestDay)
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil, nil)
	assert.Equal(t, schema.Stats{}, stats)
	assert.Empty(t, stats.BusiestPeriod)
	assert.Empty(t, stats.BusiestDay)
}

func TestComputeStats_TieBreakCanonicalOrder(t *testing.T) {
	night := time.Date(2024, 1, 6, 23, 0, 0, 0, time.UTC)  // Saturday night
	evening := time.Date(2024, 1, 7, 18, 0, 0, 0, time.UTC) // Sunday evening
	recs := append(makeLines("n", "a.go", "go", night, 3), makeLines("e", "b.go", "go", evening, 3)...)

	stats := ComputeStats(recs, GroupCommits(recs, "", nil))
	assert.Equal(t, schema.Evening, stats.BusiestPeriod)
	assert.Equal(t, "Sunday", stats.BusiestDay)
}

func TestComputeStats_BucketsUseRecordedOffset(t *testing.T) {
	// 04:30 UTC is 20:30 in -08:00, so this is Evening on the previous day
	pst := time.FixedZone("PST", -8*3600)
	at := time.Date(2024, 1, 2, 4, 30, 0, 0, time.UTC).In(pst)
	recs := makeLines("a", "a.go", "go", at, 1)

	stats := ComputeStats(recs, nil)
	assert.Equal(t, schema.Evening, stats.BusiestPeriod)
	assert.Equal(t, "Monday", stats.BusiestDay)
}

func TestLanguageBreakdown(t *testing.T) {
	recs := append(makeLines("a", "a.ts", "ts", tA, 2), makeLines("b", "b.md", "md", tA, 1)...)
	recs = append(recs, makeLines("c", "c.css", "", tA, 1)...)
	recs = append(recs, makeLines("d", "d.go", "go", tA, 2)...)

	shares := LanguageBreakdown(recs)
	require.Len(t, shares, 4)
	assert.Equal(t, schema.LanguageShare{Language: "go", Lines: 2, Percent: 33.3}, shares[0])
	assert.Equal(t, schema.LanguageShare{Language: "ts", Lines: 2, Percent: 33.3}, shares[1])
	assert.Equal(t, "md", shares[2].Language)
	assert.Equal(t, otherLanguage, shares[3].Language)
	assert.Equal(t, 16.7, shares[3].Percent)
}

func TestLanguageBreakdown_Empty(t *testing.T) {
	assert.Nil(t, LanguageBreakdown(nil))
}

func TestLanguageBreakdown_SumsToTotal(t *testing.T) {
	for n := 1; n <= 40; n++ {
		var recs []schema.LineRecord
		for i := 0; i < n; i++ {
			recs = append(recs, makeLines(fmt.Sprint(i), "f", fmt.Sprintf("lang%d", i%7), tA, 1)...)
		}
		shares := LanguageBreakdown(recs)
		sum := 0
		for _, s := range shares {
			sum += s.Lines
			expected := float64(int(float64(s.Lines)/float64(n)*1000+0.5)) / 10
			assert.InDelta(t, expected, s.Percent, 1e-9)
		}
		assert.Equal(t, n, sum)
	}
}

func TestLanguageOf(t *testing.T) {
	tests := []struct {
		file, tag, want string
	}{
		{"src/app.ts", "typescript", "ts"},
		{"README.MD", "", "md"},
		{"Makefile", "make", "make"},
		{"LICENSE", "", "other"},
		{"dir.v2/Dockerfile", "", "other"},
		{".gitignore", "", "gitignore"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.Equal(t, tt.want, LanguageOf(tt.file, tt.tag))
		})
	}
}

func TestComposeFiles_RowOrder(t *testing.T) {
	recs := append(makeLines("a", "README.md", "md", tA, 10), makeLines("b", "src/app.ts", "ts", tB, 40)...)
	rows := ComposeFiles(recs, NewPalette())

	require.Len(t, rows, 2)
	assert.Equal(t, "src/app.ts", rows[0].Name)
	assert.Equal(t, 40, rows[0].LineCount)
	assert.Equal(t, "README.md", rows[1].Name)
	assert.Equal(t, 10, rows[1].LineCount)
}

func TestComposeFiles_UnitsAndColors(t *testing.T) {
	recs := makeLines("a", "a.go", "go", tA, 3)
	recs[0], recs[2] = recs[2], recs[0]
	recs = append(recs, makeLines("b", "b.go", "go", tA, 3)...)
	recs = append(recs, makeLines("c", "c.css", "css", tA, 1)...)

	palette := NewPalette()
	rows := ComposeFiles(recs, palette)
	require.Len(t, rows, 3)

	// Ties keep first-seen order
	assert.Equal(t, "a.go", rows[0].Name)
	assert.Equal(t, "b.go", rows[1].Name)

	assert.Equal(t, []int{1, 2, 3}, []int{rows[0].Units[0].Line, rows[0].Units[1].Line, rows[0].Units[2].Line})
	assert.Equal(t, "a.go#1@a", rows[0].Units[0].Key)
	assert.Equal(t, category10[0], rows[0].Units[0].Color)
	assert.Equal(t, category10[1], rows[2].Units[0].Color)

	// Colors persist across snapshots
	again := ComposeFiles(makeLines("c", "c.css", "css", tA, 1), palette)
	assert.Equal(t, category10[1], again[0].Units[0].Color)
}

func TestComposeFiles_NilPalette(t *testing.T) {
	rows := ComposeFiles(makeLines("a", "a.go", "go", tA, 1), nil)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].Units[0].Color)
}

func TestPalette_Cycle(t *testing.T) {
	p := NewPalette()
	for i := 0; i < len(category10); i++ {
		p.Color(fmt.Sprintf("lang%d", i))
	}
	assert.Equal(t, category10[0], p.Color("overflow"))
	assert.Equal(t, category10[0], p.Color("lang0"))
	assert.Len(t, p.Languages(), 11)

	var nilPalette *Palette
	assert.Empty(t, nilPalette.Color("go"))
	assert.Nil(t, nilPalette.Languages())
}

package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBucketForHour(t *testing.T) {
	tests := []struct {
		hour int
		want TimeBucket
	}{
		{0, Night},
		{4, Night},
		{5, Morning},
		{11, Morning},
		{12, Afternoon},
		{16, Afternoon},
		{17, Evening},
		{20, Evening},
		{21, Night},
		{23, Night},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketForHour(tt.hour), "hour %d", tt.hour)
	}
}

func TestSelectionText(t *testing.T) {
	assert.Equal(t, "No commits selected", SelectionText(0))
	assert.Equal(t, "1 commits selected", SelectionText(1))
	assert.Equal(t, "12 commits selected", SelectionText(12))
}

func TestUnitKey(t *testing.T) {
	assert.Equal(t, "src/app.ts#7@abc", UnitKey("src/app.ts", 7, "abc"))
	r := LineRecord{File: "main.go", Line: 3, Commit: "a1"}
	assert.Equal(t, "main.go#3@a1", r.Key())

	// The same line touched by two commits keeps two identities
	other := r
	other.Commit = "b2"
	assert.NotEqual(t, r.Key(), other.Key())
}

func TestFlattenLines(t *testing.T) {
	ts := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	commits := []Commit{
		{ID: "a", Datetime: ts, Lines: []LineRecord{{File: "x", Line: 1}, {File: "x", Line: 2}}},
		{ID: "b", Datetime: ts, Lines: []LineRecord{{File: "y", Line: 1}}},
	}
	lines := FlattenLines(commits)
	assert.Len(t, lines, 3)
	assert.Equal(t, "y", lines[2].File)
	assert.Equal(t, []string{"a", "b"}, CommitIDs(commits))
	assert.Empty(t, FlattenLines(nil))
}

func TestWeekdayNamesMatchTimeWeekday(t *testing.T) {
	assert.Equal(t, "Sunday", WeekdayNames[time.Sunday])
	assert.Equal(t, "Saturday", WeekdayNames[time.Saturday])
	assert.Len(t, AllTimeBuckets, 4)
}

func TestRectContainsInclusive(t *testing.T) {
	r := Rect{X0: 10, Y0: 20, X1: 30, Y1: 40}
	assert.True(t, r.Contains(10, 20))
	assert.True(t, r.Contains(30, 40))
	assert.True(t, r.Contains(15, 25))
	assert.False(t, r.Contains(9.99, 25))
	assert.False(t, r.Contains(15, 40.01))

	flipped := Rect{X0: 30, Y0: 40, X1: 10, Y1: 20}
	assert.Equal(t, r, flipped.Normalize())
	assert.True(t, flipped.Contains(10, 20))
}

package agg

import (
	"sort"
	"time"

	"github.com/huangsam/timelapse/schema"
)

// Conflict reports a record whose commit metadata disagrees with the first
// record of its commit. The first record always wins.
type Conflict struct {
	CommitID string
	Field    string
	Kept     string
	Ignored  string
	Record   schema.LineRecord
}

// GroupCommits groups records by commit id and returns the commits sorted
// ascending by datetime, ties kept in first-seen order. Commit metadata is
// taken from the first record of each group. When onConflict is non-nil it is
// called for every record that disagrees with that first record.
func GroupCommits(records []schema.LineRecord, urlPrefix string, onConflict func(Conflict)) []schema.Commit {
	index := make(map[string]int)
	var commits []schema.Commit

	for _, rec := range records {
		i, ok := index[rec.Commit]
		if !ok {
			i = len(commits)
			index[rec.Commit] = i
			commits = append(commits, newCommit(rec, urlPrefix))
		} else if onConflict != nil {
			reportConflicts(commits[i].Lines[0], rec, onConflict)
		}
		commits[i].Lines = append(commits[i].Lines, rec)
	}

	for i := range commits {
		commits[i].TotalLines = len(commits[i].Lines)
	}

	sort.SliceStable(commits, func(a, b int) bool {
		return commits[a].Datetime.Before(commits[b].Datetime)
	})
	return commits
}

// newCommit starts a commit from its first record.
func newCommit(first schema.LineRecord, urlPrefix string) schema.Commit {
	return schema.Commit{
		ID:       first.Commit,
		URL:      urlPrefix + first.Commit,
		Author:   first.Author,
		Date:     first.Date,
		Time:     first.Time,
		Timezone: first.Timezone,
		Datetime: first.Datetime,
		HourFrac: HourFrac(first.Datetime),
	}
}

// HourFrac returns hour + minute/60 of t in its own offset.
func HourFrac(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60
}

func reportConflicts(first, rec schema.LineRecord, onConflict func(Conflict)) {
	if rec.Author != first.Author {
		onConflict(Conflict{CommitID: first.Commit, Field: "author", Kept: first.Author, Ignored: rec.Author, Record: rec})
	}
	if !rec.Datetime.Equal(first.Datetime) {
		onConflict(Conflict{
			CommitID: first.Commit,
			Field:    "datetime",
			Kept:     first.Datetime.Format(time.RFC3339),
			Ignored:  rec.Datetime.Format(time.RFC3339),
			Record:   rec,
		})
	}
}

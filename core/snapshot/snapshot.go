// Package snapshot derives the records visible as of a cursor.
package snapshot

import (
	"sort"
	"time"

	"github.com/huangsam/timelapse/schema"
)

// Snapshot is the visible part of a corpus at one instant.
type Snapshot struct {
	At      time.Time
	Commits []schema.Commit
	Lines   []schema.LineRecord
}

// Filter returns the commits with datetime <= at and their lines.
// Commits must be sorted ascending by datetime, and the visible commits form a
// prefix of that order.
func Filter(commits []schema.Commit, at time.Time) Snapshot {
	n := sort.Search(len(commits), func(i int) bool {
		return commits[i].Datetime.After(at)
	})
	visible := commits[:n:n]
	return Snapshot{
		At:      at,
		Commits: visible,
		Lines:   schema.FlattenLines(visible),
	}
}

// Empty reports whether nothing is visible.
func (s Snapshot) Empty() bool {
	return len(s.Commits) == 0
}

// Contains reports whether the commit with id is visible.
func (s Snapshot) Contains(id string) bool {
	for _, c := range s.Commits {
		if c.ID == id {
			return true
		}
	}
	return false
}

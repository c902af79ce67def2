package schema

import (
	"fmt"
	"strconv"
)

// UnitKey builds the reconciliation key of a line inside a file as written
// by one commit. Several commits may touch the same line number.
func UnitKey(file string, line int, commit string) string {
	return file + "#" + strconv.Itoa(line) + "@" + commit
}

// SelectionText renders the human-readable count of selected commits.
func SelectionText(n int) string {
	if n == 0 {
		return "No commits selected"
	}
	return fmt.Sprintf("%d commits selected", n)
}

// CommitIDs returns the ids of the given commits in order.
func CommitIDs(commits []Commit) []string {
	ids := make([]string, len(commits))
	for i, c := range commits {
		ids[i] = c.ID
	}
	return ids
}

// FlattenLines concatenates the lines of the given commits.
func FlattenLines(commits []Commit) []LineRecord {
	n := 0
	for _, c := range commits {
		n += len(c.Lines)
	}
	lines := make([]LineRecord, 0, n)
	for _, c := range commits {
		lines = append(lines, c.Lines...)
	}
	return lines
}

// Package schema has the models shared by all parts of timelapse.
package schema

import "time"

// LineRecord is one line of one file as of one commit.
// Records are immutable once loaded.
type LineRecord struct {
	File     string    `json:"file"`
	Line     int       `json:"line"`
	Depth    int       `json:"depth"`
	Length   int       `json:"length"`
	Type     string    `json:"type"` // language tag reported by the source table
	Commit   string    `json:"commit"`
	Author   string    `json:"author"`
	Date     string    `json:"date"`
	Time     string    `json:"time"`
	Timezone string    `json:"timezone"`
	Datetime time.Time `json:"datetime"`
}

// Key returns the stable identity of the record within its file.
func (r LineRecord) Key() string {
	return UnitKey(r.File, r.Line, r.Commit)
}

// Commit groups the line records that share a commit id.
// Metadata fields are taken from the first record of the group.
type Commit struct {
	ID         string       `json:"id"`
	URL        string       `json:"url"`
	Author     string       `json:"author"`
	Date       string       `json:"date"`
	Time       string       `json:"time"`
	Timezone   string       `json:"timezone"`
	Datetime   time.Time    `json:"datetime"`
	HourFrac   float64      `json:"hour_frac"`
	TotalLines int          `json:"total_lines"`
	Lines      []LineRecord `json:"-"`
}

// Unit is one rendered line inside a file row.
type Unit struct {
	Key      string `json:"key"`
	Line     int    `json:"line"`
	Language string `json:"language"`
	Color    string `json:"color"`
}

// FileRow is the per-snapshot view of one file.
type FileRow struct {
	Name      string `json:"name"`
	Language  string `json:"language"`
	LineCount int    `json:"line_count"`
	Units     []Unit `json:"units,omitempty"`
}

// LanguageShare is one entry of a per-language line breakdown.
type LanguageShare struct {
	Language string  `json:"language"`
	Lines    int     `json:"lines"`
	Percent  float64 `json:"percent"`
}

// Stats holds the summary metrics over a set of lines and commits.
// Busiest fields are empty when the input is empty.
type Stats struct {
	TotalLines    int        `json:"total_lines"`
	TotalCommits  int        `json:"total_commits"`
	NumFiles      int        `json:"num_files"`
	LongestLine   int        `json:"longest_line"`
	AvgLineLength float64    `json:"avg_line_length"`
	MaxFileLength int        `json:"max_file_length"`
	AvgFileLength float64    `json:"avg_file_length"`
	AvgFileDepth  float64    `json:"avg_file_depth"`
	BusiestPeriod TimeBucket `json:"busiest_period"`
	BusiestDay    string     `json:"busiest_day"`
}

// Mark is the rendered position and size of one commit.
type Mark struct {
	CommitID   string  `json:"commit_id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	R          float64 `json:"r"`
	TotalLines int     `json:"total_lines"`
	Selected   bool    `json:"selected"`
}

package schema

import "time"

// StatsReport is the stats output: corpus-wide metrics and, when a cursor
// was given, the metrics of the snapshot at that cursor.
type StatsReport struct {
	Input    string    `json:"input"`
	Rejected int       `json:"rejected_rows"`
	CacheHit bool      `json:"cache_hit"`
	Corpus   Stats     `json:"corpus"`
	At       time.Time `json:"at,omitzero"`
	Progress *float64  `json:"progress,omitempty"`
	Snapshot *Stats    `json:"snapshot,omitempty"`
}

// FilesReport is the file composition at one cursor.
type FilesReport struct {
	At         time.Time `json:"at"`
	Progress   float64   `json:"progress"`
	TotalFiles int       `json:"total_files"`
	Files      []FileRow `json:"files"`
}

// CommitView is a commit together with its rendered mark.
type CommitView struct {
	Commit
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	R        float64 `json:"r"`
	Selected bool    `json:"selected"`
}

// SelectionReport summarizes a brush at one cursor.
type SelectionReport struct {
	At        time.Time       `json:"at"`
	Progress  float64         `json:"progress"`
	Rect      *Rect           `json:"rect,omitempty"`
	Text      string          `json:"text"`
	IDs       []string        `json:"ids"`
	Breakdown []LanguageShare `json:"breakdown"`
	Stats     Stats           `json:"stats"`
}

// NarrativeStep is one commit of the narrative.
type NarrativeStep struct {
	Index    int    `json:"index"`
	CommitID string `json:"commit_id"`
	Text     string `json:"text"`
}

// NarrativeReport lists the narrative steps and the step the cursor is on.
type NarrativeReport struct {
	Steps    []NarrativeStep `json:"steps"`
	Active   int             `json:"active"`
	At       time.Time       `json:"at"`
	Progress float64         `json:"progress"`
	Stats    *Stats          `json:"stats,omitempty"`
}

// JoinMarks pairs commits with their marks by commit id. Commits without a
// mark keep zero geometry.
func JoinMarks(commits []Commit, marks []Mark) []CommitView {
	byID := make(map[string]Mark, len(marks))
	for _, m := range marks {
		byID[m.CommitID] = m
	}
	out := make([]CommitView, len(commits))
	for i, c := range commits {
		v := CommitView{Commit: c}
		if m, ok := byID[c.ID]; ok {
			v.X, v.Y, v.R, v.Selected = m.X, m.Y, m.R, m.Selected
		}
		out[i] = v
	}
	return out
}

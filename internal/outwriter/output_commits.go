package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/timelapse/internal/contract"
	"github.com/huangsam/timelapse/internal/parquet"
	"github.com/huangsam/timelapse/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

const shortIDLen = 7

// WriteCommitViews outputs visible commits, dispatching based on the output format configured.
func WriteCommitViews(commits []schema.CommitView, at time.Time, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	return dispatch(cfg, formatWriters{
		kind: "commits",
		table: func(w io.Writer) error {
			return writeCommitsTable(commits, at, cfg, fmtFloat, intFmt, duration, w)
		},
		json: func(w io.Writer) error { return writeJSON(w, commits) },
		csv: func(w io.Writer) error {
			return writeCommitsCSV(w, commits, fmtFloat, intFmt)
		},
		parquet: func(path string) error {
			return parquet.WriteCommitRowsParquet(parquet.ConvertCommits(splitViews(commits)), path)
		},
	})
}

// splitViews recovers commits and marks from joined views.
func splitViews(views []schema.CommitView) ([]schema.Commit, []schema.Mark) {
	commits := make([]schema.Commit, len(views))
	marks := make([]schema.Mark, len(views))
	for i, v := range views {
		commits[i] = v.Commit
		marks[i] = schema.Mark{CommitID: v.ID, X: v.X, Y: v.Y, R: v.R, TotalLines: v.TotalLines, Selected: v.Selected}
	}
	return commits, marks
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// writeCommitsTable generates and writes the human-readable commit table.
func writeCommitsTable(commits []schema.CommitView, at time.Time, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration, w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Commit", "Author", "Datetime", "Hour", "Lines", "X", "Y", "R", "Sel"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, c := range commits {
		sel := ""
		if c.Selected {
			sel = "*"
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			shortID(c.ID),
			c.Author,
			formatTime(c.Datetime),
			fmtFloat(c.HourFrac),
			fmt.Sprintf(intFmt, c.TotalLines),
			fmtFloat(c.X),
			fmtFloat(c.Y),
			fmtFloat(c.R),
			sel,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d visible commits at %s\n", len(commits), formatTime(at)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Replay completed in %v\n", duration); err != nil {
		return err
	}
	return nil
}

// writeCommitsCSV writes the commits in CSV format.
func writeCommitsCSV(w io.Writer, commits []schema.CommitView, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"commit", "url", "author", "datetime", "hour_frac", "total_lines", "x", "y", "r", "selected"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, c := range commits {
			rec := []string{
				c.ID,
				c.URL,
				c.Author,
				formatTime(c.Datetime),
				fmtFloat(c.HourFrac),
				fmt.Sprintf(intFmt, c.TotalLines),
				fmtFloat(c.X),
				fmtFloat(c.Y),
				fmtFloat(c.R),
				strconv.FormatBool(c.Selected),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

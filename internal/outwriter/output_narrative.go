package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/timelapse/internal/contract"
	"github.com/huangsam/timelapse/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteNarrativeReport outputs the narrative steps, dispatching based on the output format configured.
// Narrative text has no columnar form, so Parquet is rejected.
func WriteNarrativeReport(report schema.NarrativeReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	return dispatch(cfg, formatWriters{
		kind: "narrative",
		table: func(w io.Writer) error {
			return writeNarrativeTable(report, cfg, fmtFloat, intFmt, duration, w)
		},
		json: func(w io.Writer) error { return writeJSON(w, report) },
		csv: func(w io.Writer) error {
			return writeNarrativeCSV(w, report)
		},
	})
}

// writeNarrativeTable lists the steps and marks the active one.
func writeNarrativeTable(report schema.NarrativeReport, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration, w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"", "Step", "Commit", "Story"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, step := range report.Steps {
		marker := ""
		if step.Index == report.Active {
			marker = "▶"
		}
		data = append(data, []string{marker, strconv.Itoa(step.Index), shortID(step.CommitID), step.Text})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if report.Stats != nil {
		header := fmt.Sprintf("At %s (%s%%)", formatTime(report.At), fmtFloat(report.Progress))
		if err := renderStatsTable(w, []string{"Metric", header}, [][]string{statsValues(cfg, *report.Stats, fmtFloat, intFmt)}); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%d steps, active step %d. Replay completed in %v\n", len(report.Steps), report.Active, duration); err != nil {
		return err
	}
	return nil
}

// writeNarrativeCSV writes one row per step.
func writeNarrativeCSV(w io.Writer, report schema.NarrativeReport) error {
	header := []string{"step", "commit", "active", "text"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, step := range report.Steps {
			rec := []string{
				strconv.Itoa(step.Index),
				step.CommitID,
				strconv.FormatBool(step.Index == report.Active),
				step.Text,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/timelapse/internal/contract"
	"github.com/huangsam/timelapse/internal/parquet"
	"github.com/huangsam/timelapse/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteSelectionReport outputs a brush summary, dispatching based on the output format configured.
func WriteSelectionReport(report schema.SelectionReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	return dispatch(cfg, formatWriters{
		kind: "selection",
		table: func(w io.Writer) error {
			return writeSelectionTable(report, cfg, fmtFloat, intFmt, duration, w)
		},
		json: func(w io.Writer) error { return writeJSON(w, report) },
		csv: func(w io.Writer) error {
			return writeBreakdownCSV(w, report.Breakdown, fmtFloat, intFmt)
		},
		parquet: func(path string) error {
			return parquet.WriteStatsRowsParquet(parquet.ConvertStats(scopeSelection, report.Stats), path)
		},
	})
}

// writeSelectionTable writes the selection text, the language breakdown and selection stats.
func writeSelectionTable(report schema.SelectionReport, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration, w io.Writer) error {
	heading := report.Text
	if cfg.UseColors {
		heading = contract.HeadingColor.Sprint(report.Text)
	}
	if _, err := fmt.Fprintf(w, "%s at %s (%s%%)\n", heading, formatTime(report.At), fmtFloat(report.Progress)); err != nil {
		return err
	}
	if len(report.IDs) == 0 {
		_, err := fmt.Fprintf(w, "Replay completed in %v\n", duration)
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Language", "Lines", "Percent"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, share := range report.Breakdown {
		data = append(data, []string{
			share.Language,
			fmt.Sprintf(intFmt, share.Lines),
			fmt.Sprintf("%.1f%%", share.Percent),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if err := renderStatsTable(w, []string{"Metric", "Selection"}, [][]string{statsValues(cfg, report.Stats, fmtFloat, intFmt)}); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Replay completed in %v\n", duration); err != nil {
		return err
	}
	return nil
}

// writeBreakdownCSV writes the language breakdown in CSV format.
func writeBreakdownCSV(w io.Writer, breakdown []schema.LanguageShare, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"language", "lines", "percent"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, share := range breakdown {
			rec := []string{share.Language, fmt.Sprintf(intFmt, share.Lines), fmtFloat(share.Percent)}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

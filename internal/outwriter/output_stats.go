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

// Stats scopes used in CSV and Parquet output.
const (
	scopeCorpus    = "corpus"
	scopeSnapshot  = "snapshot"
	scopeSelection = "selection"
)

// statsMetrics names the rows of a stats table in display order.
var statsMetrics = []string{
	"Total lines",
	"Total commits",
	"Files",
	"Longest line",
	"Avg line length",
	"Max file length",
	"Avg file length",
	"Avg file depth",
	"Busiest period",
	"Busiest day",
}

// WriteStatsReport outputs stats, dispatching based on the output format configured.
func WriteStatsReport(report schema.StatsReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	return dispatch(cfg, formatWriters{
		kind: "stats",
		table: func(w io.Writer) error {
			return writeStatsTable(report, cfg, fmtFloat, intFmt, duration, w)
		},
		json: func(w io.Writer) error { return writeJSON(w, report) },
		csv: func(w io.Writer) error {
			return writeStatsCSV(w, statsScopes(report), fmtFloat, intFmt)
		},
		parquet: func(path string) error {
			var rows []parquet.StatsRow
			for _, sc := range statsScopes(report) {
				rows = append(rows, parquet.ConvertStats(sc.name, sc.stats)...)
			}
			return parquet.WriteStatsRowsParquet(rows, path)
		},
	})
}

type scopedStats struct {
	name  string
	stats schema.Stats
}

func statsScopes(report schema.StatsReport) []scopedStats {
	scopes := []scopedStats{{scopeCorpus, report.Corpus}}
	if report.Snapshot != nil {
		scopes = append(scopes, scopedStats{scopeSnapshot, *report.Snapshot})
	}
	return scopes
}

// statsValues renders one stats summary as a column of table cells.
func statsValues(cfg *contract.Config, s schema.Stats, fmtFloat func(float64) string, intFmt string) []string {
	return []string{
		fmt.Sprintf(intFmt, s.TotalLines),
		fmt.Sprintf(intFmt, s.TotalCommits),
		fmt.Sprintf(intFmt, s.NumFiles),
		fmt.Sprintf(intFmt, s.LongestLine),
		fmtFloat(s.AvgLineLength),
		fmt.Sprintf(intFmt, s.MaxFileLength),
		fmtFloat(s.AvgFileLength),
		fmtFloat(s.AvgFileDepth),
		bucketLabel(cfg, s.BusiestPeriod),
		dashIfEmpty(s.BusiestDay),
	}
}

// renderStatsTable writes a metric-per-row table with one column per stats summary.
func renderStatsTable(w io.Writer, headers []string, columns [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, len(statsMetrics))
	for i, metric := range statsMetrics {
		row := []string{metric}
		for _, col := range columns {
			row = append(row, col[i])
		}
		data[i] = row
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeStatsTable generates and writes the human-readable stats table.
func writeStatsTable(report schema.StatsReport, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration, w io.Writer) error {
	headers := []string{"Metric", "Corpus"}
	columns := [][]string{statsValues(cfg, report.Corpus, fmtFloat, intFmt)}
	if report.Snapshot != nil {
		progress := 0.0
		if report.Progress != nil {
			progress = *report.Progress
		}
		headers = append(headers, fmt.Sprintf("At %s (%s%%)", formatTime(report.At), fmtFloat(progress)))
		columns = append(columns, statsValues(cfg, *report.Snapshot, fmtFloat, intFmt))
	}
	if err := renderStatsTable(w, headers, columns); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Loaded %d commits from %s (%d rows rejected)\n", report.Corpus.TotalCommits, report.Input, report.Rejected); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Replay completed in %v. Cache backend: %s (hit: %t)\n", duration, cfg.CacheBackend, report.CacheHit); err != nil {
		return err
	}
	return nil
}

// writeStatsCSV writes one row per scope and metric.
func writeStatsCSV(w io.Writer, scopes []scopedStats, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"scope", "metric", "value"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, sc := range scopes {
			plain := &contract.Config{}
			values := statsValues(plain, sc.stats, fmtFloat, intFmt)
			for i, metric := range statsMetrics {
				if err := cw.Write([]string{sc.name, metric, values[i]}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

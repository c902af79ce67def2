package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/timelapse/internal/contract"
	"github.com/huangsam/timelapse/internal/parquet"
	"github.com/huangsam/timelapse/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// unitsColumnWidth caps the number of unit blocks drawn per file row.
const unitsColumnWidth = 30

// WriteFilesReport outputs the file composition, dispatching based on the output format configured.
func WriteFilesReport(report schema.FilesReport, cfg *contract.Config, duration time.Duration) error {
	files := limitFiles(report.Files, cfg.ResultLimit)
	_, intFmt := createFormatters(cfg.Precision)
	return dispatch(cfg, formatWriters{
		kind: "files",
		table: func(w io.Writer) error {
			return writeFilesTable(report, files, cfg, intFmt, duration, w)
		},
		json: func(w io.Writer) error {
			out := report
			out.Files = files
			return writeJSON(w, out)
		},
		csv: func(w io.Writer) error {
			return writeFilesCSV(w, files, report.At, intFmt)
		},
		parquet: func(path string) error {
			return parquet.WriteFileRowsParquet(parquet.ConvertFileRows(files, report.At), path)
		},
	})
}

func limitFiles(files []schema.FileRow, limit int) []schema.FileRow {
	if limit > 0 && len(files) > limit {
		return files[:limit]
	}
	return files
}

// writeFilesTable generates and writes the human-readable file table.
func writeFilesTable(report schema.FilesReport, files []schema.FileRow, cfg *contract.Config, intFmt string, duration time.Duration, w io.Writer) error {
	table := tablewriter.NewWriter(w)

	headers := []string{"Rank", "File", "Language", "Lines"}
	if cfg.Units {
		headers = append(headers, "Units")
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	pathWidth := GetMaxTablePathWidth(cfg)
	var data [][]string
	for i, f := range files {
		row := []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(f.Name, pathWidth),
			f.Language,
			fmt.Sprintf(intFmt, f.LineCount),
		}
		if cfg.Units {
			row = append(row, renderUnits(f.Units, cfg.UseColors))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d of %d files at %s (%.1f%%)\n", len(files), report.TotalFiles, formatTime(report.At), report.Progress); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Replay completed in %v\n", duration); err != nil {
		return err
	}
	return nil
}

// renderUnits draws one block per line, colored by language when colors are on.
// Without colors each language run is written as "lang:count".
func renderUnits(units []schema.Unit, useColors bool) string {
	if len(units) == 0 {
		return "-"
	}
	if !useColors {
		var runs []string
		for i := 0; i < len(units); {
			j := i
			for j < len(units) && units[j].Language == units[i].Language {
				j++
			}
			runs = append(runs, fmt.Sprintf("%s:%d", units[i].Language, j-i))
			i = j
		}
		return strings.Join(runs, " ")
	}

	var b strings.Builder
	for i, u := range units {
		if i == unitsColumnWidth {
			fmt.Fprintf(&b, "+%d", len(units)-i)
			break
		}
		b.WriteString(hexColor(u.Color).Sprint("█"))
	}
	return b.String()
}

// hexColor turns "#rrggbb" into a 24-bit color. Anything else falls back to no color.
func hexColor(hex string) *color.Color {
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.New(color.Reset)
	}
	return color.RGB(r, g, b)
}

// writeFilesCSV writes the file rows in CSV format.
func writeFilesCSV(w io.Writer, files []schema.FileRow, at time.Time, intFmt string) error {
	header := []string{"rank", "file", "language", "lines", "color", "snapshot_time"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, f := range files {
			fileColor := ""
			if len(f.Units) > 0 {
				fileColor = f.Units[0].Color
			}
			rec := []string{
				strconv.Itoa(i + 1),
				f.Name,
				f.Language,
				fmt.Sprintf(intFmt, f.LineCount),
				fileColor,
				formatTime(at),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

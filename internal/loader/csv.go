package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/timelapse/schema"
)

// Canonical column names.
const (
	colFile     = "file"
	colLine     = "line"
	colType     = "type"
	colCommit   = "commit"
	colAuthor   = "author"
	colDate     = "date"
	colTime     = "time"
	colTimezone = "timezone"
	colDatetime = "datetime"
	colDepth    = "depth"
	colLength   = "length"
)

// requiredColumns must all be present in the header.
var requiredColumns = []string{
	colFile, colLine, colType, colCommit, colAuthor, colDate,
	colTime, colTimezone, colDatetime, colDepth, colLength,
}

// columnAliases maps alternative header names (lowercased) to canonical ones.
var columnAliases = map[string]string{
	"language":     colType,
	"linenumber":   colLine,
	"nestingdepth": colDepth,
	"lengthchars":  colLength,
}

// localLayouts are tried when datetime carries no offset of its own.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// dateLayout and clockLayouts describe the display columns date and time.
const dateLayout = "2006-01-02"

var clockLayouts = []string{"15:04:05", "15:04"}

var (
	errEmptyField = errors.New("required field is empty")
	errBadNumber  = errors.New("not an integer")
	errBadTime    = errors.New("unrecognized datetime")
	errBadDate    = errors.New("unrecognized date")
	errBadClock   = errors.New("unrecognized time of day")
)

// readCSV parses a CSV table with a header row.
func readCSV(ctx context.Context, r io.Reader) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header row", ErrLoadFailure)
		}
		return nil, fmt.Errorf("%w: reading header: %v", ErrLoadFailure, err)
	}
	index, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for row := 1; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				res.Rejected = append(res.Rejected, malformed(row, "", "", err))
				continue
			}
			return nil, fmt.Errorf("%w: row %d: %v", ErrLoadFailure, row, err)
		}

		rec, rej := parseRow(row, fields, index)
		if rej != nil {
			res.Rejected = append(res.Rejected, *rej)
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

// mapHeader resolves canonical column names to field positions.
func mapHeader(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if canonical, ok := columnAliases[key]; ok {
			key = canonical
		}
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns: %s", ErrLoadFailure, strings.Join(missing, ", "))
	}
	return index, nil
}

// parseRow converts one CSV row into a LineRecord.
func parseRow(row int, fields []string, index map[string]int) (schema.LineRecord, *MalformedRowError) {
	get := func(col string) string {
		i := index[col]
		if i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	rec := schema.LineRecord{
		File:     get(colFile),
		Type:     get(colType),
		Commit:   get(colCommit),
		Author:   get(colAuthor),
		Date:     get(colDate),
		Time:     get(colTime),
		Timezone: get(colTimezone),
	}

	for _, num := range []struct {
		col string
		dst *int
	}{
		{colLine, &rec.Line},
		{colDepth, &rec.Depth},
		{colLength, &rec.Length},
	} {
		raw := get(num.col)
		v, err := strconv.Atoi(raw)
		if err != nil {
			m := malformed(row, num.col, raw, errBadNumber)
			return schema.LineRecord{}, &m
		}
		*num.dst = v
	}

	raw := get(colDatetime)
	dt, err := ParseDatetime(raw, rec.Timezone)
	if err != nil {
		m := malformed(row, colDatetime, raw, err)
		return schema.LineRecord{}, &m
	}
	rec.Datetime = dt

	if rej := validateDisplayColumns(row, rec); rej != nil {
		return schema.LineRecord{}, rej
	}
	if rej := validateRecord(row, rec); rej != nil {
		return schema.LineRecord{}, rej
	}
	return rec, nil
}

// validateDisplayColumns checks the date, time and timezone columns that are
// shown as-is. datetime stays the only source of ordering.
func validateDisplayColumns(row int, rec schema.LineRecord) *MalformedRowError {
	if rec.Date == "" {
		m := malformed(row, colDate, rec.Date, errEmptyField)
		return &m
	}
	if _, err := time.Parse(dateLayout, rec.Date); err != nil {
		m := malformed(row, colDate, rec.Date, errBadDate)
		return &m
	}
	if !parsesClock(rec.Time) {
		m := malformed(row, colTime, rec.Time, errBadClock)
		return &m
	}
	if _, err := parseOffset(rec.Timezone); err != nil {
		m := malformed(row, colTimezone, rec.Timezone, err)
		return &m
	}
	return nil
}

func parsesClock(raw string) bool {
	for _, layout := range clockLayouts {
		if _, err := time.Parse(layout, raw); err == nil {
			return true
		}
	}
	return false
}

// ParseDatetime parses an RFC3339 timestamp, or a local timestamp combined
// with a separate offset such as "-08:00" or "+0530".
func ParseDatetime(raw, timezone string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errEmptyField
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}

	loc, err := parseOffset(timezone)
	if err != nil {
		return time.Time{}, err
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errBadTime
}

// parseOffset turns "+HH:MM", "-HHMM" or "Z" into a fixed zone. Empty means UTC.
func parseOffset(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" || tz == "Z" {
		return time.UTC, nil
	}
	for _, layout := range []string{"-07:00", "-0700"} {
		if t, err := time.Parse(layout, tz); err == nil {
			_, offset := t.Zone()
			return time.FixedZone(tz, offset), nil
		}
	}
	return nil, fmt.Errorf("%w: bad timezone %q", errBadTime, tz)
}

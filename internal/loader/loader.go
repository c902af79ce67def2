// Package loader parses per-line commit records from tabular input.
package loader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/timelapse/internal/contract"
	"github.com/huangsam/timelapse/internal/parquet"
	"github.com/huangsam/timelapse/schema"
	"github.com/sirupsen/logrus"
)

// Version is bumped whenever parsing rules change, so cached loads get invalidated.
const Version = 1

// Result is the outcome of a load. Rejected rows never appear in Records.
type Result struct {
	Records  []schema.LineRecord `json:"records"`
	Rejected []MalformedRowError `json:"rejected,omitempty"`
}

// Options control how a table is loaded.
type Options struct {
	// Strict promotes any rejected row to a load failure.
	Strict bool
}

// Load reads the table at path and applies opts. The format is chosen by file
// extension: ".parquet" files are read as line-record parquet, anything else as CSV.
func Load(ctx context.Context, path string, opts Options) (*Result, error) {
	res, err := Read(ctx, path)
	if err != nil {
		return nil, err
	}
	return Finish(res, opts)
}

// Read parses the table at path without logging or applying options.
func Read(ctx context.Context, path string) (*Result, error) {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		return loadParquet(ctx, path)
	}
	return loadCSVFile(ctx, path)
}

func loadCSVFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, loadFailure(path, err)
	}
	defer func() { _ = f.Close() }()

	res, err := LoadReader(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// LoadReader reads CSV records from r.
func LoadReader(ctx context.Context, r io.Reader) (*Result, error) {
	return readCSV(ctx, r)
}

// Finish logs rejected rows as diagnostics and applies strict mode.
func Finish(res *Result, opts Options) (*Result, error) {
	log := contract.Logger()
	for _, rej := range res.Rejected {
		log.WithFields(logrus.Fields{
			"row":    rej.Row,
			"column": rej.Column,
			"value":  rej.Value,
		}).Warn("rejected malformed row: " + rej.Reason)
	}
	if opts.Strict && len(res.Rejected) > 0 {
		first := res.Rejected[0]
		return nil, fmt.Errorf("%w: %d malformed rows (first: %v)", ErrLoadFailure, len(res.Rejected), &first)
	}
	log.WithFields(logrus.Fields{
		"records":  len(res.Records),
		"rejected": len(res.Rejected),
	}).Debug("loaded records")
	return res, nil
}

func loadParquet(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := parquet.ReadLineRecords(path)
	if err != nil {
		return nil, loadFailure(path, err)
	}
	res := &Result{Records: make([]schema.LineRecord, 0, len(records))}
	for i, rec := range records {
		rej := validateDisplayColumns(i+1, rec)
		if rej == nil {
			rej = validateRecord(i+1, rec)
		}
		if rej != nil {
			res.Rejected = append(res.Rejected, *rej)
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

// validateRecord applies the identity rules shared by every input format.
func validateRecord(row int, rec schema.LineRecord) *MalformedRowError {
	switch {
	case strings.TrimSpace(rec.Commit) == "":
		m := malformed(row, colCommit, rec.Commit, errEmptyField)
		return &m
	case strings.TrimSpace(rec.File) == "":
		m := malformed(row, colFile, rec.File, errEmptyField)
		return &m
	case rec.Datetime.IsZero():
		m := malformed(row, colDatetime, "", errEmptyField)
		return &m
	}
	return nil
}

package outwriter

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/timelapse/internal/contract"
	"github.com/huangsam/timelapse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFormatters(t *testing.T) {
	tests := []struct {
		name      string
		precision int
		value     float64
		expected  string
	}{
		{"precision 1", 1, 3.14159, "3.1"},
		{"precision 2", 2, 3.14159, "3.14"},
		{"negative value", 2, -42.567, "-42.57"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fmtFloat, intFmt := createFormatters(tt.precision)
			assert.Equal(t, tt.expected, fmtFloat(tt.value))
			assert.Equal(t, "%d", intFmt)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]any{"name": "test", "value": 42}))
	assert.Equal(t, "{\n  \"name\": \"test\",\n  \"value\": 42\n}\n", buf.String())
}

func TestWriteJSONError(t *testing.T) {
	var buf bytes.Buffer
	err := writeJSON(&buf, make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode JSON")
}

func TestWriteCSVWithHeader(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		rows     [][]string
		expected string
	}{
		{
			name:     "simple csv",
			header:   []string{"commit", "lines"},
			rows:     [][]string{{"a1", "3"}, {"b2", "1"}},
			expected: "commit,lines\na1,3\nb2,1\n",
		},
		{
			name:     "empty rows",
			header:   []string{"col1", "col2"},
			expected: "col1,col2\n",
		},
		{
			name:     "values with commas",
			header:   []string{"step", "text"},
			rows:     [][]string{{"0", "On Monday, Ada made the first commit."}},
			expected: "step,text\n0,\"On Monday, Ada made the first commit.\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := writeCSVWithHeader(&buf, tt.header, func(w *csv.Writer) error {
				for _, row := range tt.rows {
					if err := w.Write(row); err != nil {
						return err
					}
				}
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestWriteCSVWithHeaderError(t *testing.T) {
	var buf bytes.Buffer
	err := writeCSVWithHeader(&buf, []string{"col"}, func(w *csv.Writer) error {
		return assert.AnError
	})
	assert.Equal(t, assert.AnError, err)
}

func TestWriteWithFileActualFile(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "out.txt")

	err := writeWithFile(tmpFile, func(w io.Writer) error {
		_, err := w.Write([]byte("replay"))
		return err
	}, "Wrote table")
	require.NoError(t, err)

	content, err := os.ReadFile(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, "replay", string(content))
}

func TestWriteWithFileWriterError(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "out.txt")
	err := writeWithFile(tmpFile, func(w io.Writer) error { return assert.AnError }, "Wrote table")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestDispatchParquetUnsupported(t *testing.T) {
	cfg := &contract.Config{Output: schema.ParquetOut, OutputFile: filepath.Join(t.TempDir(), "x.parquet")}
	err := dispatch(cfg, formatWriters{kind: "narrative"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported for narrative")
}

func TestDispatchModes(t *testing.T) {
	tests := []struct {
		mode schema.OutputMode
		want string
	}{
		{schema.TextOut, "table"},
		{schema.JSONOut, "json"},
		{schema.CSVOut, "csv"},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out")
			cfg := &contract.Config{Output: tt.mode, OutputFile: out}
			write := func(s string) func(io.Writer) error {
				return func(w io.Writer) error {
					_, err := io.WriteString(w, s)
					return err
				}
			}
			require.NoError(t, dispatch(cfg, formatWriters{
				table: write("table"),
				json:  write("json"),
				csv:   write("csv"),
			}))
			content, err := os.ReadFile(out)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(content))
		})
	}
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "-", formatTime(time.Time{}))
	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.FixedZone("", -5*3600))
	assert.Equal(t, "2024-01-01T09:00:00-05:00", formatTime(at))
}

func TestBucketLabelPlain(t *testing.T) {
	cfg := &contract.Config{}
	assert.Equal(t, "Morning", bucketLabel(cfg, schema.Morning))
	assert.Equal(t, "-", bucketLabel(cfg, ""))
}

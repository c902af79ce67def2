package core

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/timelapse/internal/contract"
	"github.com/huangsam/timelapse/internal/iocache"
	"github.com/huangsam/timelapse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// testConfig returns a validated config over testdata/loc.csv that writes JSON.
func testConfig(t *testing.T) *contract.Config {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("testdata", "loc.csv"))
	require.NoError(t, err)
	return &contract.Config{
		InputPath:    path,
		URLPrefix:    contract.DefaultURLPrefix,
		Step:         -1,
		ResultLimit:  contract.DefaultResultLimit,
		Precision:    contract.DefaultPrecision,
		Output:       schema.JSONOut,
		OutputFile:   filepath.Join(t.TempDir(), "out.json"),
		CacheBackend: schema.NoneBackend,
		RunBackend:   schema.NoneBackend,
	}
}

// noStores returns a manager with caching and run tracking disabled.
func noStores() *iocache.MockCacheManager {
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetParseStore").Return(nil)
	mgr.On("GetRunStore").Return(nil)
	return mgr
}

func readJSON[T any](t *testing.T, path string) T {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func progressAt(p float64) contract.CursorSpec {
	return contract.CursorSpec{Set: true, Progress: &p}
}

func TestExecuteStats(t *testing.T) {
	t.Run("corpus only", func(t *testing.T) {
		cfg := testConfig(t)
		require.NoError(t, ExecuteStats(context.Background(), cfg, noStores()))

		report := readJSON[schema.StatsReport](t, cfg.OutputFile)
		assert.Equal(t, cfg.InputPath, report.Input)
		assert.Equal(t, 4, report.Corpus.TotalLines)
		assert.Equal(t, 2, report.Corpus.TotalCommits)
		assert.Equal(t, 2, report.Corpus.NumFiles)
		assert.Nil(t, report.Snapshot)
		assert.Nil(t, report.Progress)
	})

	t.Run("with cursor", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Cursor = progressAt(0)
		require.NoError(t, ExecuteStats(context.Background(), cfg, noStores()))

		report := readJSON[schema.StatsReport](t, cfg.OutputFile)
		require.NotNil(t, report.Snapshot)
		require.NotNil(t, report.Progress)
		assert.InDelta(t, 0, *report.Progress, 1e-9)
		assert.Equal(t, 3, report.Snapshot.TotalLines)
		assert.Equal(t, 1, report.Snapshot.TotalCommits)
	})

	t.Run("missing input", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.InputPath = filepath.Join(t.TempDir(), "missing.csv")
		assert.Error(t, ExecuteStats(context.Background(), cfg, noStores()))
	})
}

func TestExecuteFiles(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, ExecuteFiles(context.Background(), cfg, noStores()))

	report := readJSON[schema.FilesReport](t, cfg.OutputFile)
	assert.Equal(t, 2, report.TotalFiles)
	require.Len(t, report.Files, 2)
	// Largest file first
	assert.Equal(t, "src/app.ts", report.Files[0].Name)
	assert.Equal(t, 3, report.Files[0].LineCount)
	assert.InDelta(t, 100, report.Progress, 1e-9)
}

func TestExecuteCommits(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cursor = progressAt(0)
	require.NoError(t, ExecuteCommits(context.Background(), cfg, noStores()))

	views := readJSON[[]schema.CommitView](t, cfg.OutputFile)
	require.Len(t, views, 1)
	assert.Equal(t, "a1", views[0].ID)
	assert.Equal(t, contract.DefaultURLPrefix+"a1", views[0].URL)
	assert.Positive(t, views[0].R)
}

func TestExecuteSelect(t *testing.T) {
	t.Run("brush required", func(t *testing.T) {
		cfg := testConfig(t)
		err := ExecuteSelect(context.Background(), cfg, noStores())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--brush is required")
	})

	t.Run("brush covering the plane", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Brush = &schema.Rect{X0: -1e6, Y0: -1e6, X1: 1e6, Y1: 1e6}
		require.NoError(t, ExecuteSelect(context.Background(), cfg, noStores()))

		report := readJSON[schema.SelectionReport](t, cfg.OutputFile)
		assert.ElementsMatch(t, []string{"a1", "b2"}, report.IDs)
		assert.Equal(t, 2, report.Stats.TotalCommits)
		assert.Equal(t, 4, report.Stats.TotalLines)
		assert.NotEmpty(t, report.Breakdown)
	})

	t.Run("empty brush", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Brush = &schema.Rect{X0: -10, Y0: -10, X1: -5, Y1: -5}
		require.NoError(t, ExecuteSelect(context.Background(), cfg, noStores()))

		report := readJSON[schema.SelectionReport](t, cfg.OutputFile)
		assert.Empty(t, report.IDs)
		assert.Equal(t, "No commits selected", report.Text)
	})
}

func TestExecuteNarrative(t *testing.T) {
	t.Run("list steps", func(t *testing.T) {
		cfg := testConfig(t)
		require.NoError(t, ExecuteNarrative(context.Background(), cfg, noStores()))

		report := readJSON[schema.NarrativeReport](t, cfg.OutputFile)
		require.Len(t, report.Steps, 2)
		assert.Equal(t, "a1", report.Steps[0].CommitID)
		assert.Equal(t, 1, report.Active)
		assert.Nil(t, report.Stats)
	})

	t.Run("enter step", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Step = 0
		require.NoError(t, ExecuteNarrative(context.Background(), cfg, noStores()))

		report := readJSON[schema.NarrativeReport](t, cfg.OutputFile)
		assert.Equal(t, 0, report.Active)
		require.NotNil(t, report.Stats)
		assert.Equal(t, 3, report.Stats.TotalLines)
	})

	t.Run("step out of range", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Step = 5
		err := ExecuteNarrative(context.Background(), cfg, noStores())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "step 5 is out of range (2 steps)")
	})
}

func TestExecuteConvert(t *testing.T) {
	t.Run("output file required", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.OutputFile = ""
		assert.Error(t, ExecuteConvert(context.Background(), cfg, noStores()))
	})

	t.Run("round trip through parquet", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.OutputFile = filepath.Join(t.TempDir(), "loc.parquet")
		require.NoError(t, ExecuteConvert(context.Background(), cfg, noStores()))

		// The converted table loads back as the same corpus
		back := testConfig(t)
		back.InputPath = cfg.OutputFile
		corpus, err := LoadCorpus(context.Background(), back, noStores())
		require.NoError(t, err)
		assert.Len(t, corpus.Records, 4)
		assert.Len(t, corpus.Commits, 2)
	})
}

func TestExecuteStats_RecordsRun(t *testing.T) {
	cfg := testConfig(t)

	store := &iocache.MockRunStore{}
	store.On("BeginRun", mock.Anything, cfg.InputPath, mock.MatchedBy(func(p map[string]any) bool {
		return p["command"] == "stats"
	})).Return(int64(7), nil)
	store.On("RecordCommits", int64(7), mock.MatchedBy(func(rs []schema.RunCommitRecord) bool {
		return len(rs) == 2 && rs[0].CommitID == "a1" && rs[0].RunID == 7
	})).Return(nil)
	store.On("EndRun", int64(7), mock.Anything, mock.Anything, 100.0, 2).Return(nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetParseStore").Return(nil)
	mgr.On("GetRunStore").Return(store)

	require.NoError(t, ExecuteStats(context.Background(), cfg, mgr))
	store.AssertExpectations(t)
}

func TestNewSession_AppliesCursorAndBrush(t *testing.T) {
	cfg := testConfig(t)
	corpus, err := LoadCorpus(context.Background(), cfg, nil)
	require.NoError(t, err)

	cfg.Cursor = contract.CursorSpec{Set: true, Relative: "12 hours ago"}
	cfg.Brush = &schema.Rect{X0: -1e6, Y0: -1e6, X1: 1e6, Y1: 1e6}
	s, err := NewSession(corpus, cfg)
	require.NoError(t, err)

	view := s.View()
	// Half a day before the newest commit only the first commit is visible
	require.Len(t, view.Commits, 1)
	assert.Equal(t, "a1", view.Commits[0].ID)
	assert.Equal(t, []string{"a1"}, view.Selection.IDs)
}

func TestApplyCursor_InvalidRelative(t *testing.T) {
	cfg := testConfig(t)
	corpus, err := LoadCorpus(context.Background(), cfg, nil)
	require.NoError(t, err)

	cfg.Cursor = contract.CursorSpec{Set: true, Relative: "soon"}
	_, err = NewSession(corpus, cfg)
	assert.ErrorIs(t, err, contract.ErrInvalidCursor)
}

func TestLoadCorpus_Strict(t *testing.T) {
	cfg := testConfig(t)
	path, err := filepath.Abs(filepath.Join("..", "internal", "loader", "testdata", "malformed.csv"))
	require.NoError(t, err)
	cfg.InputPath = path

	corpus, err := LoadCorpus(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, corpus.Rejected)

	cfg.Strict = true
	_, err = LoadCorpus(context.Background(), cfg, nil)
	assert.Error(t, err)
}

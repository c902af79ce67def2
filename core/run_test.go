package core

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/timelapse/internal/iocache"
	"github.com/huangsam/timelapse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBeginRun_Disabled(t *testing.T) {
	cfg := testConfig(t)
	assert.Nil(t, beginRun(cfg, nil, "stats"))
	assert.Nil(t, beginRun(cfg, noStores(), "stats"))

	// A nil tracker ends quietly
	var run *runTracker
	assert.NotPanics(t, func() { run.end(nil) })
}

func TestBeginRun_ConfigParams(t *testing.T) {
	cfg := testConfig(t)
	cfg.Brush = &schema.Rect{X0: 1, Y0: 2, X1: 3, Y1: 4}
	cfg.Step = 2

	store := &iocache.MockRunStore{}
	store.On("BeginRun", mock.Anything, cfg.InputPath, mock.MatchedBy(func(p map[string]any) bool {
		return p["command"] == "select" && p["step"] == 2 && p["brush"] == *cfg.Brush && p["output"] == "json"
	})).Return(int64(3), nil)
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetRunStore").Return(store)

	run := beginRun(cfg, mgr, "select")
	require.NotNil(t, run)
	assert.Equal(t, int64(3), run.id)
	store.AssertExpectations(t)
}

func TestBeginRun_StoreError(t *testing.T) {
	cfg := testConfig(t)
	store := &iocache.MockRunStore{}
	store.On("BeginRun", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), assert.AnError)
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetRunStore").Return(store)

	assert.Nil(t, beginRun(cfg, mgr, "stats"))
}

func TestRunTrackerEnd_ReportsFailures(t *testing.T) {
	cfg := testConfig(t)
	corpus, err := LoadCorpus(context.Background(), cfg, nil)
	require.NoError(t, err)
	s, err := NewSession(corpus, cfg)
	require.NoError(t, err)

	// Store failures are logged, never returned
	store := &iocache.MockRunStore{}
	store.On("RecordCommits", int64(9), mock.Anything).Return(assert.AnError)
	store.On("EndRun", int64(9), mock.Anything, mock.Anything, 100.0, 2).Return(assert.AnError)

	run := &runTracker{store: store, id: 9}
	assert.NotPanics(t, func() { run.end(s) })
	store.AssertExpectations(t)
}

func TestExecute_LoadFailureEndsRun(t *testing.T) {
	cfg := testConfig(t)
	cfg.InputPath = filepath.Join(t.TempDir(), "missing.csv")

	store := &iocache.MockRunStore{}
	store.On("BeginRun", mock.Anything, cfg.InputPath, mock.Anything).Return(int64(4), nil)
	store.On("EndRun", int64(4), mock.Anything, time.Time{}, 0.0, 0).Return(nil)
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetParseStore").Return(nil)
	mgr.On("GetRunStore").Return(store)

	require.Error(t, ExecuteStats(context.Background(), cfg, mgr))
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "RecordCommits", mock.Anything, mock.Anything)
}

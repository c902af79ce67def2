// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/timelapse/schema"
)

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetParseStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for recording replay runs and the snapshot they produced.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, inputPath string, configParams map[string]any) (int64, error)

	// RecordCommits stores the visible commits of a run
	RecordCommits(runID int64, commits []schema.RunCommitRecord) error

	// EndRun updates the run with its cursor and completion data
	EndRun(runID int64, endTime time.Time, cursor time.Time, progress float64, totalCommits int) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns returns every recorded run ordered by ID
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllRunCommits returns every recorded run commit ordered by run and datetime
	GetAllRunCommits() ([]schema.RunCommitRecord, error)

	// Close closes the underlying connection
	Close() error
}

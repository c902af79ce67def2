package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/timelapse/internal/contract"
	"github.com/huangsam/timelapse/schema"
)

// Table names for run tracking.
const (
	runsTable       = "timelapse_runs"
	runCommitsTable = "timelapse_run_commits"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend. The schema
// is brought to the latest migration before the store is opened.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	if _, err := migrateRuns(backend, connStr, -1); err != nil {
		return nil, fmt.Errorf("failed to migrate run store: %w", err)
	}

	db, err := openDB(backend, connStr, GetRunDBFilePath())
	if err != nil {
		return nil, err
	}
	return &RunStoreImpl{db: db, backend: backend}, nil
}

func (rs *RunStoreImpl) disabled() bool {
	return rs.backend == schema.NoneBackend || rs.db == nil
}

// placeholders returns n comma-separated placeholders starting at from.
func (rs *RunStoreImpl) placeholders(from, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = placeholder(rs.backend, from+i)
	}
	return strings.Join(ps, ", ")
}

// BeginRun creates a new run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, inputPath string, configParams map[string]any) (int64, error) {
	if rs.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	args := []any{formatTime(startTime, rs.backend), inputPath, string(configJSON)}

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, input_path, config_params) VALUES ($1, $2, $3) RETURNING run_id`, quotedTableName)
		err = rs.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, input_path, config_params) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = rs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// RecordCommits stores the visible commits of a run in one transaction.
func (rs *RunStoreImpl) RecordCommits(runID int64, commits []schema.RunCommitRecord) error {
	if rs.disabled() || len(commits) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, commit_id, author, commit_time, total_lines, hour_frac) VALUES (%s)`,
		quoteTableName(runCommitsTable, rs.backend), rs.placeholders(1, 6))

	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare run commit insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, c := range commits {
		if _, err := stmt.Exec(runID, c.CommitID, c.Author, formatTime(c.Datetime, rs.backend), c.TotalLines, c.HourFrac); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert run commit %s: %w", c.CommitID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run commits: %w", err)
	}
	return nil
}

// EndRun updates the run with its cursor and completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, cursor time.Time, progress float64, totalCommits int) error {
	if rs.disabled() {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)

	// First, get the start_time to calculate duration
	selectQuery := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholder(rs.backend, 1))
	start := timeScanner{backend: rs.backend}
	if err := rs.db.QueryRow(selectQuery, runID).Scan(start.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}
	var durationMs int64
	if startTime != nil {
		durationMs = endTime.Sub(*startTime).Milliseconds()
	}

	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, cursor_time = %s, progress = %s, total_commits = %s WHERE run_id = %s`,
		quotedTableName,
		placeholder(rs.backend, 1), placeholder(rs.backend, 2), placeholder(rs.backend, 3),
		placeholder(rs.backend, 4), placeholder(rs.backend, 5), placeholder(rs.backend, 6))
	args := []any{
		formatTime(endTime, rs.backend),
		durationMs,
		formatTime(cursor, rs.backend),
		progress,
		totalCommits,
		runID,
	}
	if _, err := rs.db.Exec(updateQuery, args...); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.disabled() {
		return status, nil
	}

	runs := quoteTableName(runsTable, rs.backend)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last := timeScanner{backend: rs.backend}
		lastRunQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runs)
		if err := rs.db.QueryRow(lastRunQuery).Scan(&status.LastRunID, last.dest()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		if t, err := last.value(); err != nil {
			return status, err
		} else if t != nil {
			status.LastRunTime = *t
		}

		oldest := timeScanner{backend: rs.backend}
		oldestRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runs)
		if err := rs.db.QueryRow(oldestRunQuery).Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		if t, err := oldest.value(); err != nil {
			return status, err
		} else if t != nil {
			status.OldestRunTime = *t
		}

		commitsQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_commits), 0) FROM %s", runs)
		if err := rs.db.QueryRow(commitsQuery).Scan(&status.TotalCommits); err != nil {
			return status, fmt.Errorf("failed to get total commits: %w", err)
		}
	}

	for _, table := range []string{runsTable, runCommitsTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))
		if err := rs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	return status, nil
}

// GetAllRuns retrieves all runs from the store.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, input_path, cursor_time, progress, total_commits, config_params
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var (
			record       schema.RunRecord
			start        = timeScanner{backend: rs.backend}
			end          = timeScanner{backend: rs.backend}
			cursor       = timeScanner{backend: rs.backend}
			durationMs   sql.NullInt32
			progress     sql.NullFloat64
			totalCommits sql.NullInt32
			configParams sql.NullString
		)
		if err := rows.Scan(&record.RunID, start.dest(), end.dest(), &durationMs, &record.InputPath,
			cursor.dest(), &progress, &totalCommits, &configParams); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		startTime, err := start.value()
		if err != nil {
			return nil, err
		}
		if startTime != nil {
			record.StartTime = *startTime
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, err
		}
		cursorTime, err := cursor.value()
		if err != nil {
			return nil, err
		}
		if cursorTime != nil {
			record.CursorTime = *cursorTime
		}
		if durationMs.Valid {
			record.RunDurationMs = &durationMs.Int32
		}
		if configParams.Valid {
			record.ConfigParams = &configParams.String
		}
		record.Progress = progress.Float64
		record.TotalCommits = totalCommits.Int32

		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllRunCommits retrieves all run commits from the store.
func (rs *RunStoreImpl) GetAllRunCommits() ([]schema.RunCommitRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, commit_id, author, commit_time, total_lines, hour_frac
		FROM %s ORDER BY run_id, commit_time, commit_id`, quoteTableName(runCommitsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query run commits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunCommitRecord
	for rows.Next() {
		var record schema.RunCommitRecord
		commitTime := timeScanner{backend: rs.backend}
		if err := rows.Scan(&record.RunID, &record.CommitID, &record.Author, commitTime.dest(), &record.TotalLines, &record.HourFrac); err != nil {
			return nil, fmt.Errorf("failed to scan run commit: %w", err)
		}
		t, err := commitTime.value()
		if err != nil {
			return nil, err
		}
		if t != nil {
			record.Datetime = *t
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run commits: %w", err)
	}
	return results, nil
}

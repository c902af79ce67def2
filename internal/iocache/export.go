package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/timelapse/internal/contract"
	"github.com/huangsam/timelapse/internal/parquet"
)

// ExecuteRunsExport writes every recorded run and run commit to Parquet files
// named after outputFile.
func ExecuteRunsExport(w io.Writer, store contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is disabled. Set --run-backend to export runs")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	fmt.Fprintf(w, "Total commit records: %d\n", status.TableSizes[runCommitsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	commits, err := store.GetAllRunCommits()
	if err != nil {
		return fmt.Errorf("failed to retrieve run commits: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Fprintf(w, "Exported %d runs to: %s\n", len(runs), runsFile)

	commitsFile := outputFile + ".run_commits.parquet"
	if err := parquet.WriteRunCommitsParquet(parquet.ConvertRunCommitRecords(commits), commitsFile); err != nil {
		return fmt.Errorf("failed to write run commits: %w", err)
	}
	fmt.Fprintf(w, "Exported %d run commits to: %s\n", len(commits), commitsFile)
	return nil
}

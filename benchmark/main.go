// Package main provides a performance benchmarking tool for the timelapse CLI.
// It generates synthetic line tables of increasing size, converts each one to
// Parquet, and measures execution times of the read-only commands against both
// formats. Each command runs several times without a cache and several times with
// the SQLite parse cache, where the first successful cached run is cold and the
// rest are averaged as warm. Results are written as CSV for documentation.
//
// Prerequisites:
// - timelapse binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where the generated tables are written
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Table       string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// TableSpec describes one generated line table.
type TableSpec struct {
	Name    string
	Commits int
	Files   int
	Lines   int // lines written per commit
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Tables      []TableSpec
	Commands    map[string][]string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     5 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Tables: []TableSpec{
			{Name: "small", Commits: 50, Files: 20, Lines: 40},
			{Name: "medium", Commits: 500, Files: 200, Lines: 100},
			{Name: "large", Commits: 2000, Files: 1000, Lines: 250},
		},
		Commands: map[string][]string{
			"stats":     {"--at", "50"},
			"files":     {"--at", "50", "--units"},
			"commits":   nil,
			"select":    {"--brush", "0,0,10000,10000"},
			"narrative": {"--step", "0"},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("timelapse", "cache", "clear", "--cache-backend", "sqlite")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	inputs, err := prepareTables(config)
	if err != nil {
		fmt.Printf("Failed to prepare tables: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config, inputs)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the timelapse binary and the work directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("timelapse"); err != nil {
		return fmt.Errorf("timelapse binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// prepareTables writes every table as CSV and converts it to Parquet with the CLI.
// It returns the input paths keyed by a label such as "medium.csv".
func prepareTables(config BenchmarkConfig) (map[string]string, error) {
	inputs := make(map[string]string)
	for _, spec := range config.Tables {
		csvPath := filepath.Join(config.WorkDir, spec.Name+".csv")
		fmt.Printf("Generating %s (%d commits, %d lines)\n", csvPath, spec.Commits, spec.Commits*spec.Lines)
		if err := writeTable(csvPath, spec); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", csvPath, err)
		}
		inputs[spec.Name+".csv"] = csvPath

		parquetPath := filepath.Join(config.WorkDir, spec.Name+".parquet")
		convert := exec.Command("timelapse", "convert", csvPath, "--output-file", parquetPath)
		if output, err := convert.CombinedOutput(); err != nil {
			return nil, fmt.Errorf("failed to convert %s: %w\nOutput: %s", csvPath, err, string(output))
		}
		inputs[spec.Name+".parquet"] = parquetPath
	}
	return inputs, nil
}

// writeTable generates a deterministic line table with the loc.csv columns.
func writeTable(path string, spec TableSpec) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"file", "line", "type", "commit", "author", "date", "time", "timezone", "datetime", "depth", "length"}); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(uint64(spec.Commits), uint64(spec.Lines)))
	langs := []string{"go", "ts", "md", "css", "html"}
	authors := []string{"ada", "lin", "grace", "ken"}
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for c := range spec.Commits {
		at := start.Add(time.Duration(c)*7*time.Hour + time.Duration(rng.IntN(3600))*time.Second)
		id := fmt.Sprintf("%040x", c+1)
		author := authors[rng.IntN(len(authors))]
		for l := range spec.Lines {
			f := rng.IntN(spec.Files)
			lang := langs[f%len(langs)]
			row := []string{
				fmt.Sprintf("src/pkg%d/file%d.%s", f%10, f, lang),
				strconv.Itoa(l + 1),
				lang,
				id,
				author,
				at.Format("2006-01-02"),
				at.Format("15:04:05"),
				"+00:00",
				at.Format(time.RFC3339),
				strconv.Itoa(rng.IntN(6)),
				strconv.Itoa(rng.IntN(100)),
			}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// runBenchmarks executes every command against every prepared input
func runBenchmarks(config BenchmarkConfig, inputs map[string]string) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d inputs, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(inputs), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, spec := range config.Tables {
		for _, ext := range []string{"csv", "parquet"} {
			label := spec.Name + "." + ext
			for _, command := range []string{"stats", "files", "commits", "select", "narrative"} {
				result := runBenchmarkSuite(config, label, inputs[label], command, config.Commands[command])
				results = append(results, result)
			}
		}
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, label, input, command string, extraArgs []string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, label)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, input, command, extraArgs, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Table:       label,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a timelapse command multiple times with the given cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, input, command string, extraArgs []string, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{command, input, "--cache-backend", cacheBackend}, extraArgs...)

	var times []float64
	for range numRuns {
		start := time.Now()
		cmd := exec.Command("timelapse", args...)

		done := make(chan bool, 1)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	return strings.Contains(string(output), "Replay completed in")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("timelapse_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"table", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Table, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range []string{"stats", "files", "commits", "select", "narrative"} {
		if _, ok := config.Commands[command]; !ok {
			continue
		}
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-16s: No-cache: %s, Cold: %s, Warm: %s\n", result.Table, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}

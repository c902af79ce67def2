package agg

import (
	"github.com/huangsam/timelapse/schema"
)

// fileRollup accumulates per-file metrics.
type fileRollup struct {
	lines    int
	maxDepth int
}

// ComputeStats summarizes lines and the commits they belong to.
// Empty input yields the zero Stats with empty busiest fields.
func ComputeStats(lines []schema.LineRecord, commits []schema.Commit) schema.Stats {
	stats := schema.Stats{
		TotalLines:   len(lines),
		TotalCommits: len(commits),
	}
	if len(lines) == 0 {
		return stats
	}

	files := make(map[string]*fileRollup)
	var order []string
	totalLength := 0
	var byBucket [4]int
	var byDay [7]int

	for _, rec := range lines {
		totalLength += rec.Length
		if rec.Length > stats.LongestLine {
			stats.LongestLine = rec.Length
		}

		f, ok := files[rec.File]
		if !ok {
			f = &fileRollup{maxDepth: rec.Depth}
			files[rec.File] = f
			order = append(order, rec.File)
		}
		f.lines++
		if rec.Depth > f.maxDepth {
			f.maxDepth = rec.Depth
		}

		byBucket[bucketIndex(schema.BucketForHour(rec.Datetime.Hour()))]++
		byDay[int(rec.Datetime.Weekday())]++
	}

	stats.NumFiles = len(files)
	stats.AvgLineLength = float64(totalLength) / float64(len(lines))

	sumLines, sumDepth := 0, 0
	for _, name := range order {
		f := files[name]
		sumLines += f.lines
		sumDepth += f.maxDepth
		if f.lines > stats.MaxFileLength {
			stats.MaxFileLength = f.lines
		}
	}
	stats.AvgFileLength = float64(sumLines) / float64(len(files))
	stats.AvgFileDepth = float64(sumDepth) / float64(len(files))

	stats.BusiestPeriod = schema.AllTimeBuckets[argmax(byBucket[:])]
	stats.BusiestDay = schema.WeekdayNames[argmax(byDay[:])]
	return stats
}

// argmax returns the index of the largest count. Ties go to the lowest index.
func argmax(counts []int) int {
	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return best
}

func bucketIndex(b schema.TimeBucket) int {
	for i, candidate := range schema.AllTimeBuckets {
		if candidate == b {
			return i
		}
	}
	return len(schema.AllTimeBuckets) - 1
}

package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run tracking.
	DatabaseBackend string

	// TimeBucket represents a coarse time-of-day period.
	TimeBucket string

	// OpKind represents a keyed reconciliation operation.
	OpKind string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// Time-of-day buckets, in canonical order.
const (
	Morning   TimeBucket = "Morning"   // [5,12)
	Afternoon TimeBucket = "Afternoon" // [12,17)
	Evening   TimeBucket = "Evening"   // [17,21)
	Night     TimeBucket = "Night"     // everything else
)

// Reconciliation operations.
const (
	OpEnter  OpKind = "enter"
	OpUpdate OpKind = "update"
	OpExit   OpKind = "exit"
)

// AllTimeBuckets lists buckets in canonical order. Ties resolve to the earliest entry.
var AllTimeBuckets = []TimeBucket{Morning, Afternoon, Evening, Night}

// WeekdayNames lists weekday names starting from Sunday, matching time.Weekday.
var WeekdayNames = []string{
	"Sunday",
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// BucketForHour maps an hour of day to its time bucket.
func BucketForHour(hour int) TimeBucket {
	switch {
	case hour >= 5 && hour < 12:
		return Morning
	case hour >= 12 && hour < 17:
		return Afternoon
	case hour >= 17 && hour < 21:
		return Evening
	default:
		return Night
	}
}

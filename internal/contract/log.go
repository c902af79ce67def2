package contract

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logger     *logrus.Logger
	loggerOnce sync.Once
)

// Logger returns the process-wide diagnostics logger. It writes to stderr so
// that stdout stays reserved for command output and the MCP protocol.
func Logger() *logrus.Logger {
	loggerOnce.Do(func() {
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	})
	return logger
}

// SetVerbose toggles debug-level diagnostics.
func SetVerbose(verbose bool) {
	if verbose {
		Logger().SetLevel(logrus.DebugLevel)
		return
	}
	Logger().SetLevel(logrus.InfoLevel)
}

package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	logger  = newLogger()
	logFile *os.File
	mu      sync.Mutex
	isSetup bool
)

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(levelFromEnv())
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return l
}

// levelFromEnv reads LOG_LEVEL, defaulting to warn so console output stays clean
func levelFromEnv() logrus.Level {
	return ParseLevel(os.Getenv("LOG_LEVEL"), logrus.WarnLevel)
}

// ParseLevel maps a level name to a logrus level
func ParseLevel(name string, fallback logrus.Level) logrus.Level {
	switch strings.ToLower(name) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return fallback
	}
}

// SetupLogger redirects logging to the specified file using JSON lines
func SetupLogger(logFilePath string) error {
	mu.Lock()
	defer mu.Unlock()

	if isSetup {
		return nil
	}

	var err error
	logFile, err = os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	logger.SetOutput(logFile)
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	logger.WithField("started", time.Now().Format(time.RFC3339)).Info("imageforensics log opened")

	isSetup = true
	return nil
}

// CloseLogger closes the log file and restores stderr output
func CloseLogger() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logger.Info("imageforensics log closed")
		logFile.Close()
		logFile = nil
		isSetup = false
		logger.SetOutput(os.Stderr)
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
}

// SetLevel overrides the level taken from the environment
func SetLevel(level string) {
	logger.SetLevel(ParseLevel(level, logger.GetLevel()))
}

// EnableDebug turns on debug output
func EnableDebug() {
	logger.SetLevel(logrus.DebugLevel)
}

// SetOutput replaces the log destination; used by tests
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// WithFields creates a new entry with the given fields
func WithFields(fields logrus.Fields) *logrus.Entry {
	return logger.WithFields(fields)
}

// LogInfo logs an information message
func LogInfo(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

// DebugLog logs a message at debug level
func DebugLog(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

// LogWarning logs a warning message
func LogWarning(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

// LogAnalysis records the outcome of one analysis run
func LogAnalysis(path, technique string, elapsed time.Duration, err error) {
	entry := logger.WithFields(logrus.Fields{
		"path":      path,
		"technique": technique,
		"elapsed":   elapsed.String(),
	})
	if err != nil {
		entry.WithError(err).Error("analysis failed")
		return
	}
	entry.Info("analysis completed")
}

// Package logger is the leveled logger shared by the simulator.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel represents the severity of log messages
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

var (
	mu              sync.Mutex
	currentLogLevel = INFO
	logger          = log.New(os.Stdout, "", log.Ldate|log.Ltime)
)

// String returns the level name as printed in the log prefix
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	}
	return fmt.Sprintf("LogLevel(%d)", int(l))
}

// ParseLevel converts a level name (case-insensitive) to a LogLevel
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO", "":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	}
	return INFO, fmt.Errorf("unknown log level %q", s)
}

// SetLogLevel sets the minimum log level to display
func SetLogLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	currentLogLevel = level
}

// Level returns the current minimum log level
func Level() LogLevel {
	mu.Lock()
	defer mu.Unlock()
	return currentLogLevel
}

// SetOutput redirects all log output, mostly useful in tests
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

func logAt(level LogLevel, format string, args ...interface{}) {
	if Level() <= level {
		logger.Printf("["+level.String()+"] "+format, args...)
	}
}

// LogDebug logs a debug message
func LogDebug(format string, args ...interface{}) {
	logAt(DEBUG, format, args...)
}

// LogInfo logs an informational message
func LogInfo(format string, args ...interface{}) {
	logAt(INFO, format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) {
	logAt(WARN, format, args...)
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	logAt(ERROR, format, args...)
}

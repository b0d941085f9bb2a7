package types

import "time"

// LogLevel represents the severity of a log entry
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	case FatalLevel:
		return "fatal"
	default:
		return "unknown"
	}
}

// LogEntry is a single structured log record handed to adapters
type LogEntry struct {
	Level     LogLevel
	Message   string
	Timestamp time.Time
	Fields    map[string]interface{}
}

// LogAdapter is a destination for log entries (stdout, file, ...)
type LogAdapter interface {
	Write(entry *LogEntry) error
	Close() error
	Name() string
}

// Logger is the application-facing structured logging interface
type Logger interface {
	Debug(message string, fields ...map[string]interface{})
	Info(message string, fields ...map[string]interface{})
	Warn(message string, fields ...map[string]interface{})
	Error(message string, fields ...map[string]interface{})
	Fatal(message string, fields ...map[string]interface{})

	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger

	SetLevel(level LogLevel)
}

// AdapterConfig describes one configured adapter
type AdapterConfig struct {
	Name    string
	Type    string
	Enabled bool
	Options map[string]interface{}
}

// Package logger provides structured JSON logging for the widget server.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"
)

// Level represents the severity level of a log message
type Level string

const (
	// DebugLevel is used for development messages
	DebugLevel Level = "DEBUG"
	// InfoLevel is used for general operational information
	InfoLevel Level = "INFO"
	// WarnLevel is used for warnings and potential issues
	WarnLevel Level = "WARN"
	// ErrorLevel is used for errors and unexpected events
	ErrorLevel Level = "ERROR"
	// FatalLevel is used for critical errors that require termination
	FatalLevel Level = "FATAL"
)

var severity = map[Level]int{
	DebugLevel: 0,
	InfoLevel:  1,
	WarnLevel:  2,
	ErrorLevel: 3,
	FatalLevel: 4,
}

// ParseLevel maps a level name to a Level, defaulting to InfoLevel for
// unrecognized input.
func ParseLevel(s string) Level {
	level := Level(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := severity[level]; !ok {
		return InfoLevel
	}
	return level
}

// Logger defines the interface for the application logger
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Fatal(msg string, fields map[string]interface{})
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

// JSONLogger is a logger that outputs structured JSON logs
type JSONLogger struct {
	output io.Writer
	level  Level
	fields map[string]interface{}
}

// NewJSONLogger creates a new JSON logger
func NewJSONLogger(output io.Writer, level Level) *JSONLogger {
	if output == nil {
		output = os.Stdout
	}

	return &JSONLogger{
		output: output,
		level:  level,
		fields: make(map[string]interface{}),
	}
}

// WithField returns a new logger with the field added to the log context
func (l *JSONLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a new logger with the fields added to the log context
func (l *JSONLogger) WithFields(fields map[string]interface{}) Logger {
	if len(fields) == 0 {
		return l
	}

	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	return &JSONLogger{
		output: l.output,
		level:  l.level,
		fields: merged,
	}
}

// Debug logs a message at debug level
func (l *JSONLogger) Debug(msg string, fields map[string]interface{}) {
	if l.shouldLog(DebugLevel) {
		l.log(DebugLevel, msg, fields)
	}
}

// Info logs a message at info level
func (l *JSONLogger) Info(msg string, fields map[string]interface{}) {
	if l.shouldLog(InfoLevel) {
		l.log(InfoLevel, msg, fields)
	}
}

// Warn logs a message at warn level
func (l *JSONLogger) Warn(msg string, fields map[string]interface{}) {
	if l.shouldLog(WarnLevel) {
		l.log(WarnLevel, msg, fields)
	}
}

// Error logs a message at error level
func (l *JSONLogger) Error(msg string, fields map[string]interface{}) {
	if l.shouldLog(ErrorLevel) {
		l.log(ErrorLevel, msg, fields)
	}
}

// Fatal logs a message at fatal level and then terminates the program
func (l *JSONLogger) Fatal(msg string, fields map[string]interface{}) {
	if l.shouldLog(FatalLevel) {
		l.log(FatalLevel, msg, fields)
	}
	os.Exit(1)
}

func (l *JSONLogger) shouldLog(level Level) bool {
	min, ok := severity[l.level]
	if !ok {
		return true
	}
	return severity[level] >= min
}

func (l *JSONLogger) log(level Level, msg string, fields map[string]interface{}) {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "unknown"
		line = 0
	}

	record := make(map[string]interface{}, len(l.fields)+len(fields)+5)
	record["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	record["level"] = level
	record["message"] = msg
	record["file"] = file
	record["line"] = line

	for k, v := range l.fields {
		record[k] = v
	}
	for k, v := range fields {
		record[k] = v
	}

	jsonData, err := json.Marshal(record)
	if err != nil {
		fmt.Fprintf(l.output, "{\"level\":\"ERROR\",\"message\":\"Failed to marshal log entry\",\"error\":\"%s\"}\n", err)
		return
	}

	jsonData = append(jsonData, '\n')
	if _, err := l.output.Write(jsonData); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write log entry: %s\n", err)
	}
}

var defaultLogger Logger = NewJSONLogger(os.Stdout, InfoLevel)

// GetDefaultLogger returns the default logger
func GetDefaultLogger() Logger {
	return defaultLogger
}

// SetDefaultLogger sets the default logger
func SetDefaultLogger(logger Logger) {
	if logger != nil {
		defaultLogger = logger
	}
}

// Debug logs a message at debug level using the default logger
func Debug(msg string, fields map[string]interface{}) {
	defaultLogger.Debug(msg, fields)
}

// Info logs a message at info level using the default logger
func Info(msg string, fields map[string]interface{}) {
	defaultLogger.Info(msg, fields)
}

// Warn logs a message at warn level using the default logger
func Warn(msg string, fields map[string]interface{}) {
	defaultLogger.Warn(msg, fields)
}

// Error logs a message at error level using the default logger
func Error(msg string, fields map[string]interface{}) {
	defaultLogger.Error(msg, fields)
}

// Fatal logs a message at fatal level using the default logger
func Fatal(msg string, fields map[string]interface{}) {
	defaultLogger.Fatal(msg, fields)
}

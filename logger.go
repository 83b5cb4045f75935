package jstransport

import (
	"fmt"
	"log"
)

// Logger defines the interface for logging.
// Verbose is the most detailed level, below Debug.
type Logger interface {
	Verbose(args ...interface{})
	Verbosef(format string, args ...interface{})
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
}

var _ Logger = (*noopLogger)(nil)
var _ Logger = (*StandardLogger)(nil)

type noopLogger struct{}

// Verbose implements the Logger interface.
func (n noopLogger) Verbose(...interface{}) {}

// Verbosef implements the Logger interface.
func (n noopLogger) Verbosef(string, ...interface{}) {}

// Debug implements the Logger interface.
func (n noopLogger) Debug(...interface{}) {}

// Debugf implements the Logger interface.
func (n noopLogger) Debugf(string, ...interface{}) {}

// Info implements the Logger interface
func (n noopLogger) Info(...interface{}) {}

// Infof implements the Logger interface.
func (n noopLogger) Infof(string, ...interface{}) {}

// Warn implements the Logger interface.
func (n noopLogger) Warn(...interface{}) {}

// Warnf implements the Logger interface.
func (n noopLogger) Warnf(string, ...interface{}) {}

// Error implements the Logger interface.
func (n noopLogger) Error(...interface{}) {}

// Errorf implements the Logger interface.
func (n noopLogger) Errorf(string, ...interface{}) {}

// StandardLogger implements the Logger interface using the standard library logger.
// Every line is prefixed with its level.
type StandardLogger struct{}

func (d StandardLogger) print(level string, args ...interface{}) {
	log.Println(append([]interface{}{level}, args...)...)
}

func (d StandardLogger) printf(level, format string, args ...interface{}) {
	log.Printf(level+" "+format, args...)
}

// Verbose implements the Logger interface.
func (d StandardLogger) Verbose(args ...interface{}) {
	d.print("VERBOSE", args...)
}

// Verbosef implements the Logger interface.
func (d StandardLogger) Verbosef(format string, args ...interface{}) {
	d.printf("VERBOSE", format, args...)
}

// Debug implements the Logger interface.
func (d StandardLogger) Debug(args ...interface{}) {
	d.print("DEBUG", args...)
}

// Debugf implements the Logger interface.
func (d StandardLogger) Debugf(format string, args ...interface{}) {
	d.printf("DEBUG", format, args...)
}

// Info implements the Logger interface
func (d StandardLogger) Info(args ...interface{}) {
	d.print("INFO", args...)
}

// Infof implements the Logger interface.
func (d StandardLogger) Infof(format string, args ...interface{}) {
	d.printf("INFO", format, args...)
}

// Warn implements the Logger interface.
func (d StandardLogger) Warn(args ...interface{}) {
	d.print("WARN", args...)
}

// Warnf implements the Logger interface.
func (d StandardLogger) Warnf(format string, args ...interface{}) {
	d.printf("WARN", format, args...)
}

// Error implements the Logger interface.
func (d StandardLogger) Error(args ...interface{}) {
	d.print("ERROR", args...)
}

// Errorf implements the Logger interface.
func (d StandardLogger) Errorf(format string, args ...interface{}) {
	d.printf("ERROR", format, args...)
}

// sprint formats like fmt.Sprint but always separates operands by spaces,
// matching log.Println.
func sprint(args ...interface{}) string {
	s := fmt.Sprintln(args...)
	return s[:len(s)-1]
}

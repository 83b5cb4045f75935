package jstransport

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// VerboseLevel is the zap level used for verbose logs, one below debug.
const VerboseLevel = zapcore.DebugLevel - 1

var _ Logger = (*ZapLogger)(nil)

// ZapLogger implements the Logger interface using zap.
type ZapLogger struct {
	base  *zap.Logger
	sugar *zap.SugaredLogger
}

// NewZapLogger wraps a zap logger. Verbose logs are written at VerboseLevel
// and only show up if the logger is enabled for that level.
func NewZapLogger(log *zap.Logger) *ZapLogger {
	log = log.WithOptions(zap.AddCallerSkip(1))

	return &ZapLogger{
		base:  log,
		sugar: log.Sugar(),
	}
}

// Verbose implements the Logger interface.
func (z *ZapLogger) Verbose(args ...interface{}) {
	if ce := z.base.Check(VerboseLevel, sprint(args...)); ce != nil {
		ce.Write()
	}
}

// Verbosef implements the Logger interface.
func (z *ZapLogger) Verbosef(format string, args ...interface{}) {
	if ce := z.base.Check(VerboseLevel, fmt.Sprintf(format, args...)); ce != nil {
		ce.Write()
	}
}

// Debug implements the Logger interface.
func (z *ZapLogger) Debug(args ...interface{}) {
	z.sugar.Debug(sprint(args...))
}

// Debugf implements the Logger interface.
func (z *ZapLogger) Debugf(format string, args ...interface{}) {
	z.sugar.Debugf(format, args...)
}

// Info implements the Logger interface.
func (z *ZapLogger) Info(args ...interface{}) {
	z.sugar.Info(sprint(args...))
}

// Infof implements the Logger interface.
func (z *ZapLogger) Infof(format string, args ...interface{}) {
	z.sugar.Infof(format, args...)
}

// Warn implements the Logger interface.
func (z *ZapLogger) Warn(args ...interface{}) {
	z.sugar.Warn(sprint(args...))
}

// Warnf implements the Logger interface.
func (z *ZapLogger) Warnf(format string, args ...interface{}) {
	z.sugar.Warnf(format, args...)
}

// Error implements the Logger interface.
func (z *ZapLogger) Error(args ...interface{}) {
	z.sugar.Error(sprint(args...))
}

// Errorf implements the Logger interface.
func (z *ZapLogger) Errorf(format string, args ...interface{}) {
	z.sugar.Errorf(format, args...)
}

// Sync flushes buffered log entries.
func (z *ZapLogger) Sync() error {
	return z.base.Sync()
}

package mlog

import (
	"context"
	"sync"
)

type Level uint32

const (
	FatalLevel Level = iota
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
	TraceLevel
)

func getLevelTag(level Level) string {
	switch level {
	case FatalLevel:
		return "[F] "
	case ErrorLevel:
		return "[E] "
	case WarnLevel:
		return "[W] "
	case InfoLevel:
		return "[I] "
	case DebugLevel:
		return "[D] "
	default:
		return "[T] "
	}
}

type Logger interface {
	IsLevelEnabled(level Level) bool
	Log(level Level, args ...any)
	Logf(level Level, format string, args ...any)
}

var logger Logger

func SetLogger(l Logger) {
	logger = l
}

func UseDefaultLogger(ctx context.Context, wg *sync.WaitGroup, path string, logName string, level Level, stdOut bool) error {
	l, err := newDefaultLogger(path, logName, level, stdOut)
	if err != nil {
		return err
	}
	l.Start(ctx, wg)
	SetLogger(l)
	return nil
}

func UseStdLogger(level Level) error {
	SetLogger(newStdoutLogger(level))
	return nil
}

func logv(level Level, args ...any) {
	if logger == nil {
		return
	}
	logger.Log(level, args...)
}

func logf(level Level, format string, args ...any) {
	if logger == nil {
		return
	}
	logger.Logf(level, format, args...)
}

func Trace(a ...any)                 { logv(TraceLevel, a...) }
func Tracef(format string, a ...any) { logf(TraceLevel, format, a...) }
func Debug(a ...any)                 { logv(DebugLevel, a...) }
func Debugf(format string, a ...any) { logf(DebugLevel, format, a...) }
func Info(a ...any)                  { logv(InfoLevel, a...) }
func Infof(format string, a ...any)  { logf(InfoLevel, format, a...) }
func Warn(a ...any)                  { logv(WarnLevel, a...) }
func Warnf(format string, a ...any)  { logf(WarnLevel, format, a...) }
func Error(a ...any)                 { logv(ErrorLevel, a...) }
func Errorf(format string, a ...any) { logf(ErrorLevel, format, a...) }
func Fatal(a ...any)                 { logv(FatalLevel, a...) }
func Fatalf(format string, a ...any) { logf(FatalLevel, format, a...) }

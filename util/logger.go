package util

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// Logger is the hook host applications implement to route SDK logging
// into their own framework. Errorf additionally builds the error value
// so call sites can log and return in one step.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any) error
}

var (
	loggerMu sync.RWMutex
	logger   Logger = stdLogger{out: log.New(os.Stderr, "", log.LstdFlags)}
)

// SetLogger replaces the SDK-wide logger. Safe to call while other
// goroutines are logging.
func SetLogger(l Logger) {
	if l == nil {
		panic("logger cannot be nil")
	}
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
}

func activeLogger() Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

func Debugf(format string, args ...any) { activeLogger().Debugf(format, args...) }
func Infof(format string, args ...any)  { activeLogger().Infof(format, args...) }
func Warnf(format string, args ...any)  { activeLogger().Warnf(format, args...) }

func Errorf(format string, args ...any) error {
	return activeLogger().Errorf(format, args...)
}

// stdLogger is the default sink, writing leveled lines to stderr via the
// standard log package.
type stdLogger struct {
	out *log.Logger
}

func (l stdLogger) print(level, format string, args ...any) {
	l.out.Printf(level+": "+strings.TrimSuffix(format, "\n"), args...)
}

func (l stdLogger) Debugf(format string, args ...any) { l.print("DEBUG", format, args...) }
func (l stdLogger) Infof(format string, args ...any)  { l.print("INFO", format, args...) }
func (l stdLogger) Warnf(format string, args ...any)  { l.print("WARN", format, args...) }

func (l stdLogger) Errorf(format string, args ...any) error {
	l.print("ERROR", format, args...)
	return fmt.Errorf(format, args...)
}

// DiscardLogger silences the SDK entirely.
type DiscardLogger struct{}

func (DiscardLogger) Debugf(string, ...any) {}
func (DiscardLogger) Infof(string, ...any)  {}
func (DiscardLogger) Warnf(string, ...any)  {}

func (DiscardLogger) Errorf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

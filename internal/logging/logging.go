// Package logging provides the leveled logger used throughout the server
// and client: the worker pool, intake loop, session runtime, and the
// pacman/ghost tasks all go through here instead of the bare log package.
package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

var (
	currentLevel atomic.Int32
	std          = log.New(os.Stderr, "", 0)
)

func init() {
	currentLevel.Store(int32(LevelInfo))
}

// SetLevel sets the process-wide minimum level that gets printed.
func SetLevel(level Level) {
	currentLevel.Store(int32(level))
}

// ParseLevel maps a CLI/env string to a Level, defaulting to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	default:
		return LevelInfo
	}
}

func emit(level Level, msg string) {
	if level < Level(currentLevel.Load()) {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05.000")
	std.Printf("%s [%s] %s", ts, level, msg)
}

func Debugf(format string, args ...interface{}) { emit(LevelDebug, fmt.Sprintf(format, args...)) }
func Infof(format string, args ...interface{})  { emit(LevelInfo, fmt.Sprintf(format, args...)) }
func Warnf(format string, args ...interface{})  { emit(LevelWarn, fmt.Sprintf(format, args...)) }
func Errorf(format string, args ...interface{}) { emit(LevelError, fmt.Sprintf(format, args...)) }

// Fatalf logs at FATAL and exits the process, matching the teacher's
// LogFatalf used for unrecoverable setup errors.
func Fatalf(format string, args ...interface{}) {
	emit(LevelFatal, fmt.Sprintf(format, args...))
	os.Exit(1)
}

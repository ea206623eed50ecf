// Package nclog provides the engine's process-wide verbosity control.
//
// Four ordered levels are offered, each including those before it:
// Error < Warning < Verbose < Debug. Verbosity is purely advisory and
// never affects protocol behavior. Levels map onto zerolog's global
// level, so an application already using zerolog can ignore this
// package entirely.
package nclog

import (
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Level is an engine verbosity level
type Level int32

const (
	// LevelError logs only errors
	LevelError Level = iota
	// LevelWarning adds warnings
	LevelWarning
	// LevelVerbose adds informational messages
	LevelVerbose
	// LevelDebug logs everything, including development detail
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelVerbose:
		return "verbose"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel returns the Level named by s
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LevelError, true
	case "warn", "warning":
		return LevelWarning, true
	case "verbose", "info":
		return LevelVerbose, true
	case "debug":
		return LevelDebug, true
	}
	return LevelError, false
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelError:
		return zerolog.ErrorLevel
	case LevelWarning:
		return zerolog.WarnLevel
	case LevelVerbose:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}

var verbosity int32 // atomic Level, default LevelError

// SetVerbosity sets the process-wide verbosity level
func SetVerbosity(l Level) {
	if l < LevelError || l > LevelDebug {
		l = LevelError
	}
	atomic.StoreInt32((*int32)(&verbosity), int32(l))
	zerolog.SetGlobalLevel(l.zerolog())
}

// Verbosity returns the current process-wide verbosity level
func Verbosity() Level { return Level(atomic.LoadInt32((*int32)(&verbosity))) }

// New returns a logger for the named engine component
func New(component string) zerolog.Logger {
	return zerolog.New(os.Stderr).With().
		Timestamp().
		Str("component", component).
		Logger()
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	SetVerbosity(LevelError)
}

package kernel

import (
	"github.com/joeycumines/logiface"
)

// LogifaceAdapter implements kernel.Logger by forwarding every LogEntry
// into a caller-supplied logiface.Logger[E], proving the Logger interface
// is satisfiable by a real third-party structured logger rather than only
// the built-in DefaultLogger.
type LogifaceAdapter[E logiface.Event] struct {
	logger *logiface.Logger[E]
}

// NewLogifaceAdapter wraps logger, an already-configured logiface logger
// (any Event implementation and any backing Writer), as a kernel.Logger.
func NewLogifaceAdapter[E logiface.Event](logger *logiface.Logger[E]) *LogifaceAdapter[E] {
	return &LogifaceAdapter[E]{logger: logger}
}

// toLogifaceLevel maps this package's LogLevel onto logiface's syslog-style Level
// scale.
func toLogifaceLevel(l LogLevel) logiface.Level {
	switch l {
	case LevelDebug:
		return logiface.LevelDebug
	case LevelInfo:
		return logiface.LevelInformational
	case LevelWarn:
		return logiface.LevelWarning
	case LevelError:
		return logiface.LevelError
	default:
		return logiface.LevelInformational
	}
}

// IsEnabled reports whether level would actually produce output, delegating
// to the wrapped logiface logger's configured level.
func (a *LogifaceAdapter[E]) IsEnabled(level LogLevel) bool {
	return a.logger.Level() >= toLogifaceLevel(level)
}

// Log forwards entry to the wrapped logiface logger, mapping its
// TID/LockID/FrameID and Context fields onto structured fields and its
// Err, if set, onto the builder's Err field.
func (a *LogifaceAdapter[E]) Log(entry LogEntry) {
	b := a.logger.Build(toLogifaceLevel(entry.Level))
	if !b.Enabled() {
		b.Release()
		return
	}
	b = b.Str("category", entry.Category)
	if entry.TID != 0 {
		b = b.Int64("tid", entry.TID)
	}
	if entry.LockID != 0 {
		b = b.Int64("lock_id", entry.LockID)
	}
	if entry.FrameID != 0 {
		b = b.Int64("frame_id", entry.FrameID)
	}
	for k, v := range entry.Context {
		b = b.Any(k, v)
	}
	if entry.Err != nil {
		b = b.Err(entry.Err)
	}
	b.Log(entry.Message)
}

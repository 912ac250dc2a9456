package log

import (
	"fmt"
	"log/slog"
)

// Level is a logging severity threshold.
//
// The set is closed and ordered: [LevelDebug] < [LevelInfo] < [LevelWarning]
// < [LevelError] < [LevelCritical]. Spellings are exact and case-sensitive.
type Level string

const (
	// LevelDebug is for diagnostic detail.
	LevelDebug Level = "DEBUG"
	// LevelInfo is for routine operational messages.
	LevelInfo Level = "INFO"
	// LevelWarning is for unexpected but recoverable conditions.
	LevelWarning Level = "WARNING"
	// LevelError is for failed operations.
	LevelError Level = "ERROR"
	// LevelCritical is for failures that leave the process unusable.
	LevelCritical Level = "CRITICAL"
)

var allLevels = []Level{LevelDebug, LevelInfo, LevelWarning, LevelError, LevelCritical}

// Slog returns the [slog.Level] for l. A value outside the closed set maps to
// [slog.LevelInfo].
func (l Level) Slog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	case LevelCritical:
		return slog.LevelError + 4
	}

	return slog.LevelInfo
}

// Level implements [slog.Leveler].
func (l Level) Level() slog.Level {
	return l.Slog()
}

// String implements [fmt.Stringer].
func (l Level) String() string {
	return string(l)
}

// Valid reports whether l is one of the five known levels.
func (l Level) Valid() bool {
	for _, lvl := range allLevels {
		if l == lvl {
			return true
		}
	}

	return false
}

// LevelFromSlog returns the highest [Level] whose threshold is at or below
// lvl. Values below [LevelDebug] return [LevelDebug].
func LevelFromSlog(lvl slog.Level) Level {
	out := LevelDebug
	for _, l := range allLevels {
		if l.Slog() <= lvl {
			out = l
		}
	}

	return out
}

// ParseLevel parses an exact level spelling such as "WARNING".
func ParseLevel(level string) (Level, error) {
	lvl := Level(level)
	if lvl.Valid() {
		return lvl, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownLogLevel, level)
}

// GetAllLevelStrings returns every level spelling in increasing severity.
func GetAllLevelStrings() []string {
	out := make([]string, 0, len(allLevels))
	for _, l := range allLevels {
		out = append(out, string(l))
	}

	return out
}

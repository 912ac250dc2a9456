//go:build !mcplog_basic

package log

import (
	"io"
	"log/slog"

	"charm.land/lipgloss/v2"
	charmlog "charm.land/log/v2"
)

// EnhancedAvailable reports whether the enhanced renderer is compiled in.
// Build with the mcplog_basic tag to drop it.
const EnhancedAvailable = true

// newEnhancedHandler returns a colorized handler bound to w. Thresholds are
// applied by [ConsoleHandler] and the owning [Logger], so the renderer itself
// accepts everything from DEBUG up.
func newEnhancedHandler(w io.Writer, tracebacks bool) slog.Handler {
	l := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmlog.DebugLevel,
		ReportTimestamp: true,
		ReportCaller:    tracebacks,
	})
	l.SetStyles(enhancedStyles())

	return l
}

// enhancedStyles relabels the level above ERROR, which charm calls FATAL.
func enhancedStyles() *charmlog.Styles {
	styles := charmlog.DefaultStyles()
	styles.Levels[charmlog.Level(LevelCritical.Slog())] = lipgloss.NewStyle().
		SetString("CRIT").
		Bold(true).
		MaxWidth(4).
		Foreground(lipgloss.Color("134"))

	return styles
}

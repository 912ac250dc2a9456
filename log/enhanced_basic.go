//go:build mcplog_basic

package log

import (
	"io"
	"log/slog"
)

// EnhancedAvailable reports whether the enhanced renderer is compiled in.
const EnhancedAvailable = false

func newEnhancedHandler(_ io.Writer, _ bool) slog.Handler {
	return nil
}

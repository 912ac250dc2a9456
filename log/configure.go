package log

import (
	"io"
	"os"
)

// Option configures a [Registry.Configure] call.
type Option func(*settings)

type settings struct {
	w          io.Writer
	formatter  Formatter
	level      Level
	renderer   Renderer
	tracebacks bool
}

// WithLevel sets the threshold of the [Namespace] logger. Default
// [LevelInfo].
func WithLevel(level Level) Option {
	return func(s *settings) {
		s.level = level
	}
}

// WithRenderer requests a renderer. Default [RendererAuto].
func WithRenderer(renderer Renderer) Option {
	return func(s *settings) {
		s.renderer = renderer
	}
}

// WithWriter sets the console stream. Default [os.Stderr], which is also
// used when w is nil.
func WithWriter(w io.Writer) Option {
	return func(s *settings) {
		s.w = w
	}
}

// WithFormatter replaces [MessageFormatter].
func WithFormatter(f Formatter) Option {
	return func(s *settings) {
		s.formatter = f
	}
}

// WithTracebacks toggles caller locations in enhanced output. Default true.
func WithTracebacks(enabled bool) Option {
	return func(s *settings) {
		s.tracebacks = enabled
	}
}

// Configure runs [Registry.Configure] on the default registry.
func Configure(opts ...Option) *Logger {
	return defaultRegistry.Configure(opts...)
}

// Configure sets up console logging for the [Namespace] logger and returns
// it.
//
// It attaches exactly one [ConsoleHandler], enhanced whenever the capability
// is compiled in and basic otherwise, sets the logger threshold, and disables
// propagation so ancestors do not print the same records again. A handler
// attached by an earlier Configure call is replaced, not duplicated; other
// handlers are left alone. Once configured, the logger emits "Logging
// configured" at [LevelInfo].
//
// Configure never fails. The returned logger is meant to be passed to the
// components that log.
func (r *Registry) Configure(opts ...Option) *Logger {
	s := &settings{
		w:          os.Stderr,
		formatter:  MessageFormatter,
		level:      LevelInfo,
		renderer:   RendererAuto,
		tracebacks: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.w == nil {
		s.w = os.Stderr
	}

	h := NewConsoleHandler(s.w, &ConsoleHandlerOptions{
		Formatter:  s.formatter,
		Renderer:   s.renderer,
		Tracebacks: s.tracebacks,
	})

	logger := r.Logger(Namespace)

	logger.mu.Lock()
	lvl := s.level
	logger.level = &lvl
	logger.propagate = false

	if logger.owned != nil {
		logger.removeHandlerLocked(logger.owned)
	}

	logger.handlers = append(logger.handlers, h)
	logger.owned = h
	logger.mu.Unlock()

	logger.Info("Logging configured")

	return logger
}

package log

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"
)

// Namespace is the name of the framework's root logger. Names passed to
// [GetLogger] and [Registry.Named] are placed beneath it.
const Namespace = "mcp"

var defaultRegistry = NewRegistry()

// Default returns the process-wide [Registry] used by [GetLogger] and
// [Configure].
func Default() *Registry {
	return defaultRegistry
}

// GetLogger returns the logger for name in the default [Registry], namespaced
// under [Namespace]. See [Registry.Named].
func GetLogger(name string) *Logger {
	return defaultRegistry.Named(name)
}

// Registry owns a hierarchy of named [Logger]s.
//
// Names are dotted paths. A logger's parent is the nearest ancestor name that
// exists in the registry, or the registry root. Safe for concurrent use.
//
// Create instances with [NewRegistry].
type Registry struct {
	loggers map[string]*Logger
	root    *Logger
	mu      sync.RWMutex
}

// NewRegistry creates an empty [Registry]. Its root logger has threshold
// [LevelWarning] and no handlers.
func NewRegistry() *Registry {
	r := &Registry{
		loggers: make(map[string]*Logger),
	}
	r.root = newLogger(r, "")
	lvl := LevelWarning
	r.root.level = &lvl

	return r
}

// Root returns the registry root logger.
func (r *Registry) Root() *Logger {
	return r.root
}

// Logger returns the logger registered under exactly name, creating it on
// first use. The same name always yields the same *Logger. The empty name
// returns [Registry.Root].
func (r *Registry) Logger(name string) *Logger {
	if name == "" {
		return r.root
	}

	r.mu.RLock()
	l, ok := r.loggers[name]
	r.mu.RUnlock()

	if ok {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok = r.loggers[name]
	if !ok {
		l = newLogger(r, name)
		r.loggers[name] = l
	}

	return l
}

// Named returns the logger for name placed under [Namespace]: "server"
// resolves to "mcp.server". Names that already are [Namespace] or start with
// "mcp." are used unchanged, and the empty name returns the [Namespace]
// logger itself.
func (r *Registry) Named(name string) *Logger {
	return r.Logger(QualifiedName(name))
}

// QualifiedName returns name as [Registry.Named] resolves it.
func QualifiedName(name string) string {
	switch {
	case name == "":
		return Namespace
	case name == Namespace, strings.HasPrefix(name, Namespace+"."):
		return name
	}

	return Namespace + "." + name
}

// parentOf returns the nearest registered ancestor of name, or the root.
func (r *Registry) parentOf(name string) *Logger {
	if name == "" {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := strings.LastIndexByte(name, '.'); i > 0; i = strings.LastIndexByte(name, '.') {
		name = name[:i]
		if l, ok := r.loggers[name]; ok {
			return l
		}
	}

	return r.root
}

// Logger is a named channel for leveled records.
//
// A Logger with no level of its own inherits its parent's threshold. Records
// that pass the threshold go to the Logger's handlers and, while propagation
// is enabled, on to each ancestor's handlers.
//
// Obtain instances from a [Registry], [GetLogger] or [Configure].
type Logger struct {
	registry *Registry
	level    *Level
	slog     *slog.Logger
	name     string
	handlers []slog.Handler
	// owned is the handler attached by the last [Registry.Configure] call.
	owned     slog.Handler
	mu        sync.RWMutex
	propagate bool
}

func newLogger(r *Registry, name string) *Logger {
	l := &Logger{
		registry:  r,
		name:      name,
		propagate: true,
	}
	l.slog = slog.New(&dispatcher{logger: l})

	return l
}

// Name returns the logger's dotted name. The root's name is empty.
func (l *Logger) Name() string {
	return l.name
}

// Parent returns the nearest registered ancestor, or nil for the root.
func (l *Logger) Parent() *Logger {
	return l.registry.parentOf(l.name)
}

// SetLevel sets the logger's own threshold.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.level = &level
}

// ClearLevel removes the logger's own threshold so it inherits again.
func (l *Logger) ClearLevel() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.level = nil
}

// Level returns the logger's own threshold, or "" when it inherits.
func (l *Logger) Level() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.level == nil {
		return ""
	}

	return *l.level
}

// EffectiveLevel returns the first threshold set on the logger or its
// ancestors.
func (l *Logger) EffectiveLevel() Level {
	for cur := l; cur != nil; cur = cur.Parent() {
		if lvl := cur.Level(); lvl != "" {
			return lvl
		}
	}

	return LevelWarning
}

// Enabled reports whether a record at level would pass the threshold.
func (l *Logger) Enabled(level Level) bool {
	return level.Slog() >= l.EffectiveLevel().Slog()
}

// SetPropagate controls whether records continue to ancestor handlers.
func (l *Logger) SetPropagate(propagate bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.propagate = propagate
}

// Propagate reports whether records continue to ancestor handlers.
func (l *Logger) Propagate() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.propagate
}

// AddHandler attaches h to the logger.
func (l *Logger) AddHandler(h slog.Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.handlers = append(l.handlers, h)
}

// RemoveHandler detaches h and reports whether it was attached.
func (l *Logger) RemoveHandler(h slog.Handler) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.removeHandlerLocked(h)
}

func (l *Logger) removeHandlerLocked(h slog.Handler) bool {
	i := slices.Index(l.handlers, h)
	if i < 0 {
		return false
	}

	l.handlers = slices.Delete(l.handlers, i, i+1)
	if l.owned == h {
		l.owned = nil
	}

	return true
}

// Handlers returns a copy of the attached handlers.
func (l *Logger) Handlers() []slog.Handler {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return slices.Clone(l.handlers)
}

// Slog returns a [*slog.Logger] that emits through l.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Debug logs msg at [LevelDebug].
func (l *Logger) Debug(msg string, args ...any) {
	l.log(context.Background(), LevelDebug, msg, args...)
}

// Info logs msg at [LevelInfo].
func (l *Logger) Info(msg string, args ...any) {
	l.log(context.Background(), LevelInfo, msg, args...)
}

// Warning logs msg at [LevelWarning].
func (l *Logger) Warning(msg string, args ...any) {
	l.log(context.Background(), LevelWarning, msg, args...)
}

// Error logs msg at [LevelError].
func (l *Logger) Error(msg string, args ...any) {
	l.log(context.Background(), LevelError, msg, args...)
}

// Critical logs msg at [LevelCritical].
func (l *Logger) Critical(msg string, args ...any) {
	l.log(context.Background(), LevelCritical, msg, args...)
}

// Log logs msg at level. Args are handled as in [slog.Logger.Log].
func (l *Logger) Log(ctx context.Context, level Level, msg string, args ...any) {
	l.log(ctx, level, msg, args...)
}

func (l *Logger) log(ctx context.Context, level Level, msg string, args ...any) {
	if !l.Enabled(level) {
		return
	}

	var pcs [1]uintptr

	// Skip runtime.Callers, log, and the exported wrapper.
	runtime.Callers(3, pcs[:])

	r := slog.NewRecord(time.Now(), level.Slog(), msg, pcs[0])
	r.Add(args...)

	//nolint:errcheck // Leveled helpers have nowhere to report write errors.
	l.slog.Handler().Handle(ctx, r)
}

// dispatcher is the [slog.Handler] behind [Logger.Slog]. It applies the
// logger threshold and walks the propagation chain.
type dispatcher struct {
	logger *Logger
	goas   []groupOrAttrs
}

func (d *dispatcher) Enabled(_ context.Context, level slog.Level) bool {
	return level >= d.logger.EffectiveLevel().Slog()
}

func (d *dispatcher) Handle(ctx context.Context, r slog.Record) error {
	var errs []error

	for cur := d.logger; cur != nil; cur = cur.Parent() {
		for _, h := range cur.Handlers() {
			h = d.apply(h)
			if !h.Enabled(ctx, r.Level) {
				continue
			}

			err := h.Handle(ctx, r.Clone())
			if err != nil {
				errs = append(errs, err)
			}
		}

		if !cur.Propagate() {
			break
		}
	}

	return errors.Join(errs...)
}

func (d *dispatcher) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return d
	}

	return &dispatcher{
		logger: d.logger,
		goas:   append(slices.Clone(d.goas), groupOrAttrs{attrs: attrs}),
	}
}

func (d *dispatcher) WithGroup(name string) slog.Handler {
	if name == "" {
		return d
	}

	return &dispatcher{
		logger: d.logger,
		goas:   append(slices.Clone(d.goas), groupOrAttrs{group: name}),
	}
}

// apply replays the WithAttrs/WithGroup calls made on d onto h.
func (d *dispatcher) apply(h slog.Handler) slog.Handler {
	for _, goa := range d.goas {
		if goa.group != "" {
			h = h.WithGroup(goa.group)
		} else {
			h = h.WithAttrs(goa.attrs)
		}
	}

	return h
}

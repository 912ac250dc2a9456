package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Formatter renders a record to the text a [ConsoleHandler] displays.
type Formatter interface {
	Format(r slog.Record) string
}

// FormatterFunc adapts a function to the [Formatter] interface.
type FormatterFunc func(r slog.Record) string

// Format calls f(r).
func (f FormatterFunc) Format(r slog.Record) string {
	return f(r)
}

// MessageFormatter renders only the record message. Timestamps, levels and
// attributes are left to the renderer.
var MessageFormatter Formatter = FormatterFunc(func(r slog.Record) string {
	return r.Message
})

// ConsoleHandlerOptions configures a [ConsoleHandler].
type ConsoleHandlerOptions struct {
	// Formatter renders the message column. Defaults to [MessageFormatter].
	Formatter Formatter
	// Level is the handler's own threshold. Defaults to [LevelDebug].
	Level slog.Leveler
	// Renderer is resolved with [ResolveRenderer].
	Renderer Renderer
	// Tracebacks adds the caller location to enhanced output.
	Tracebacks bool
}

// ConsoleHandler is a [slog.Handler] that writes to a single console stream
// with either the enhanced or the basic renderer.
//
// Create instances with [NewConsoleHandler].
type ConsoleHandler struct {
	w         io.Writer
	formatter Formatter
	level     slog.Leveler
	enhanced  slog.Handler
	mu        *sync.Mutex
	renderer  Renderer
	goas      []groupOrAttrs
}

// groupOrAttrs holds one WithGroup or WithAttrs call, in call order.
type groupOrAttrs struct {
	group string
	attrs []slog.Attr
}

// NewConsoleHandler creates a [ConsoleHandler] writing to w, or to
// [os.Stderr] when w is nil. The renderer in opts is resolved once, here;
// the result is reported by [ConsoleHandler.Renderer].
func NewConsoleHandler(w io.Writer, opts *ConsoleHandlerOptions) *ConsoleHandler {
	if opts == nil {
		opts = &ConsoleHandlerOptions{}
	}

	if w == nil {
		w = os.Stderr
	}

	h := &ConsoleHandler{
		w:         w,
		formatter: opts.Formatter,
		level:     opts.Level,
		mu:        &sync.Mutex{},
		renderer:  ResolveRenderer(opts.Renderer),
	}
	if h.formatter == nil {
		h.formatter = MessageFormatter
	}

	if h.level == nil {
		h.level = LevelDebug
	}

	if h.renderer == RendererEnhanced {
		h.enhanced = newEnhancedHandler(w, opts.Tracebacks)
		if h.enhanced == nil {
			h.renderer = RendererBasic
		}
	}

	return h
}

// Renderer returns the resolved renderer, never [RendererAuto].
func (h *ConsoleHandler) Renderer() Renderer {
	return h.renderer
}

// Writer returns the stream h writes to.
func (h *ConsoleHandler) Writer() io.Writer {
	return h.w
}

// Formatter returns the formatter applied to every record.
func (h *ConsoleHandler) Formatter() Formatter {
	return h.formatter
}

// Enabled implements [slog.Handler].
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements [slog.Handler].
func (h *ConsoleHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.enhanced != nil {
		out := slog.NewRecord(r.Time, r.Level, h.formatter.Format(r), r.PC)
		r.Attrs(func(a slog.Attr) bool {
			out.AddAttrs(a)
			return true
		})

		return h.enhanced.Handle(ctx, out) //nolint:wrapcheck // Renderer errors are write errors.
	}

	line := h.formatter.Format(h.resolve(r)) + "\n"

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := io.WriteString(h.w, line)

	return err //nolint:wrapcheck // Pass write errors through unchanged.
}

// WithAttrs implements [slog.Handler].
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	h2 := h.clone()
	if h2.enhanced != nil {
		h2.enhanced = h2.enhanced.WithAttrs(attrs)
		return h2
	}

	h2.goas = append(h2.goas, groupOrAttrs{attrs: attrs})

	return h2
}

// WithGroup implements [slog.Handler].
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	h2 := h.clone()
	if h2.enhanced != nil {
		h2.enhanced = h2.enhanced.WithGroup(name)
		return h2
	}

	h2.goas = append(h2.goas, groupOrAttrs{group: name})

	return h2
}

func (h *ConsoleHandler) clone() *ConsoleHandler {
	h2 := *h
	h2.goas = append([]groupOrAttrs(nil), h.goas...)

	return &h2
}

// resolve folds the accumulated WithAttrs/WithGroup calls and the record's
// own attributes into a single record, so custom formatters see them all.
func (h *ConsoleHandler) resolve(r slog.Record) slog.Record {
	if len(h.goas) == 0 {
		return r
	}

	var tail []slog.Attr

	r.Attrs(func(a slog.Attr) bool {
		tail = append(tail, a)
		return true
	})

	// Walk backwards so each group wraps everything recorded after it.
	for i := len(h.goas) - 1; i >= 0; i-- {
		goa := h.goas[i]
		if goa.group != "" {
			if len(tail) > 0 {
				tail = []slog.Attr{{Key: goa.group, Value: slog.GroupValue(tail...)}}
			}

			continue
		}

		tail = append(append([]slog.Attr(nil), goa.attrs...), tail...)
	}

	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	out.AddAttrs(tail...)

	return out
}

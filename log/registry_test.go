package log_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/mcplog/log"
	"go.jacobcolvin.com/mcplog/stringtest"
)

func basicHandler(buf *bytes.Buffer) *log.ConsoleHandler {
	return log.NewConsoleHandler(buf, &log.ConsoleHandlerOptions{Renderer: log.RendererBasic})
}

func TestQualifiedName(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
		want  string
	}{
		"plain name":       {input: "server", want: "mcp.server"},
		"dotted name":      {input: "server.session", want: "mcp.server.session"},
		"namespace itself": {input: "mcp", want: "mcp"},
		"already prefixed": {input: "mcp.client", want: "mcp.client"},
		"lookalike prefix": {input: "mcpx", want: "mcp.mcpx"},
		"empty":            {input: "", want: "mcp"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, log.QualifiedName(tc.input))
			assert.Equal(t, tc.want, log.NewRegistry().Named(tc.input).Name())
		})
	}
}

func TestRegistryLoggerIdentity(t *testing.T) {
	t.Parallel()

	r := log.NewRegistry()

	a := r.Named("server")
	b := r.Named("server")
	c := r.Logger("mcp.server")

	assert.Same(t, a, b)
	assert.Same(t, a, c)
	assert.NotSame(t, a, r.Named("client"))
	assert.Same(t, r.Root(), r.Logger(""))
	assert.Same(t, log.GetLogger("server"), log.GetLogger("server"))
	assert.Same(t, log.Default().Named("server"), log.GetLogger("server"))
}

func TestLoggerParent(t *testing.T) {
	t.Parallel()

	r := log.NewRegistry()

	deep := r.Logger("mcp.server.session")
	assert.Same(t, r.Root(), deep.Parent(), "no ancestors registered yet")

	top := r.Logger("mcp")
	assert.Same(t, top, deep.Parent())

	mid := r.Logger("mcp.server")
	assert.Same(t, mid, deep.Parent())
	assert.Same(t, top, mid.Parent())
	assert.Same(t, r.Root(), top.Parent())
	assert.Nil(t, r.Root().Parent())
}

func TestLoggerEffectiveLevel(t *testing.T) {
	t.Parallel()

	r := log.NewRegistry()
	top := r.Logger("mcp")
	child := r.Logger("mcp.server")

	assert.Equal(t, log.LevelWarning, child.EffectiveLevel(), "root default")
	assert.Empty(t, child.Level())

	top.SetLevel(log.LevelDebug)
	assert.Equal(t, log.LevelDebug, child.EffectiveLevel())
	assert.True(t, child.Enabled(log.LevelDebug))

	child.SetLevel(log.LevelError)
	assert.Equal(t, log.LevelError, child.EffectiveLevel())
	assert.False(t, child.Enabled(log.LevelWarning))
	assert.True(t, child.Enabled(log.LevelCritical))

	child.ClearLevel()
	assert.Equal(t, log.LevelDebug, child.EffectiveLevel())
}

func TestLoggerPropagation(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		setup      func(top, mid *log.Logger)
		wantTop    string
		wantMid    string
		wantLeaf   string
		leafLevel  log.Level
		logMessage string
	}{
		"propagates to every ancestor": {
			setup:      func(_, _ *log.Logger) {},
			logMessage: "hello",
			leafLevel:  log.LevelInfo,
			wantTop:    "hello\n",
			wantMid:    "hello\n",
			wantLeaf:   "hello\n",
		},
		"stops at non-propagating logger": {
			setup: func(_, mid *log.Logger) {
				mid.SetPropagate(false)
			},
			logMessage: "hello",
			leafLevel:  log.LevelInfo,
			wantTop:    "",
			wantMid:    "hello\n",
			wantLeaf:   "hello\n",
		},
		"ancestor thresholds do not filter": {
			setup: func(top, _ *log.Logger) {
				top.SetLevel(log.LevelCritical)
			},
			logMessage: "hello",
			leafLevel:  log.LevelDebug,
			wantTop:    "hello\n",
			wantMid:    "hello\n",
			wantLeaf:   "hello\n",
		},
		"origin threshold filters all": {
			setup:      func(_, _ *log.Logger) {},
			logMessage: "hello",
			leafLevel:  log.LevelError,
			wantTop:    "",
			wantMid:    "",
			wantLeaf:   "",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := log.NewRegistry()
			top := r.Logger("mcp")
			mid := r.Logger("mcp.server")
			leaf := r.Logger("mcp.server.session")

			var topBuf, midBuf, leafBuf bytes.Buffer

			top.AddHandler(basicHandler(&topBuf))
			mid.AddHandler(basicHandler(&midBuf))
			leaf.AddHandler(basicHandler(&leafBuf))

			tc.setup(top, mid)
			leaf.SetLevel(tc.leafLevel)

			leaf.Info(tc.logMessage)

			assert.Equal(t, tc.wantTop, topBuf.String())
			assert.Equal(t, tc.wantMid, midBuf.String())
			assert.Equal(t, tc.wantLeaf, leafBuf.String())
		})
	}
}

func TestLoggerHandlers(t *testing.T) {
	t.Parallel()

	r := log.NewRegistry()
	l := r.Named("server")

	var buf bytes.Buffer

	h := basicHandler(&buf)
	l.AddHandler(h)
	require.Len(t, l.Handlers(), 1)

	handlers := l.Handlers()
	handlers[0] = nil
	assert.NotNil(t, l.Handlers()[0], "Handlers returns a copy")

	assert.True(t, l.RemoveHandler(h))
	assert.False(t, l.RemoveHandler(h))
	assert.Empty(t, l.Handlers())
}

func TestLoggerLeveledMethods(t *testing.T) {
	t.Parallel()

	r := log.NewRegistry()
	l := r.Named("server")
	l.SetLevel(log.LevelDebug)
	l.SetPropagate(false)

	var buf bytes.Buffer

	l.AddHandler(log.NewConsoleHandler(&buf, &log.ConsoleHandlerOptions{
		Renderer: log.RendererBasic,
		Formatter: log.FormatterFunc(func(rec slog.Record) string {
			return log.LevelFromSlog(rec.Level).String() + " " + rec.Message
		}),
	}))

	l.Debug("d")
	l.Info("i")
	l.Warning("w")
	l.Error("e")
	l.Critical("c")
	l.Log(context.Background(), log.LevelInfo, "l")

	assert.Equal(t, stringtest.Lines("DEBUG d", "INFO i", "WARNING w", "ERROR e", "CRITICAL c", "INFO l"), buf.String())
}

func TestLoggerSlog(t *testing.T) {
	t.Parallel()

	r := log.NewRegistry()
	l := r.Named("server")
	l.SetLevel(log.LevelInfo)

	var got []slog.Record

	l.AddHandler(&recordingHandler{records: &got})

	logger := l.Slog().With("conn", 1).WithGroup("req")
	logger.Debug("hidden")
	logger.Info("visible", "id", 2)

	require.Len(t, got, 1)
	assert.Equal(t, "visible", got[0].Message)

	var attrs []string

	got[0].Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a.String())
		return true
	})
	assert.Equal(t, []string{"conn=1", "req=[id=2]"}, attrs)
}

func TestDispatcherJoinsHandlerErrors(t *testing.T) {
	t.Parallel()

	r := log.NewRegistry()
	l := r.Named("server")
	l.SetLevel(log.LevelInfo)

	errA := errors.New("a")
	errB := errors.New("b")

	opts := &log.ConsoleHandlerOptions{Renderer: log.RendererBasic}
	l.AddHandler(log.NewConsoleHandler(failingWriter{err: errA}, opts))
	r.Root().AddHandler(log.NewConsoleHandler(failingWriter{err: errB}, opts))

	err := l.Slog().Handler().Handle(context.Background(),
		slog.NewRecord(testTime, slog.LevelInfo, "msg", 0))
	require.ErrorIs(t, err, errA)
	require.ErrorIs(t, err, errB)
}

// recordingHandler resolves attrs into each record it receives.
type recordingHandler struct {
	records *[]slog.Record
	attrs   []slog.Attr
	group   string
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	var own []slog.Attr

	r.Attrs(func(a slog.Attr) bool {
		own = append(own, a)
		return true
	})

	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	out.AddAttrs(h.attrs...)

	if h.group != "" {
		out.AddAttrs(slog.Attr{Key: h.group, Value: slog.GroupValue(own...)})
	} else {
		out.AddAttrs(own...)
	}

	*h.records = append(*h.records, out)

	return nil
}

func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)

	return &h2
}

func (h *recordingHandler) WithGroup(name string) slog.Handler {
	h2 := *h
	h2.group = name

	return &h2
}

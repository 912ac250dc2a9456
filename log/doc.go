// Package log configures console logging for the mcp framework on top of
// [log/slog].
//
// Loggers live in a [Registry] and are addressed by dotted names. [GetLogger]
// places a name under the framework [Namespace], so GetLogger("server")
// returns the "mcp.server" logger, and repeated calls return the same
// [*Logger]. A logger without a threshold of its own inherits one from its
// ancestors; records it accepts are passed to its handlers and, while
// propagation is on, to those of its ancestors.
//
// [Configure] prepares the "mcp" logger once at startup. It attaches a single
// [ConsoleHandler] writing to standard error, sets the [Level], turns off
// propagation and reports "Logging configured":
//
//	logger := log.Configure(log.WithLevel(log.LevelDebug))
//	srv := server.New(logger.Slog())
//
// The handler uses [RendererEnhanced] (colorized columns from
// charm.land/log) when that capability is compiled in and the stream is a
// terminal, and [RendererBasic] otherwise. Both print the record through a
// [Formatter]; the default [MessageFormatter] prints only the message.
// Building with the mcplog_basic tag removes the enhanced renderer.
//
// For CLIs, [Config] binds the same settings to [github.com/spf13/pflag]
// flags, adds shell completions via [github.com/spf13/cobra], and can read
// a YAML file:
//
//	cfg := log.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	cfg.RegisterCompletions(rootCmd)
//
//	logger, err := cfg.Apply(log.Default(), os.Stderr)
package log

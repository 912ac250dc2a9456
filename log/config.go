package log

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flags holds CLI flag names for log configuration, allowing callers to
// customize flag names while keeping sensible defaults via [NewConfig].
type Flags struct {
	Level      string
	Renderer   string
	File       string
	Tracebacks string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{
		Flags:      f,
		Level:      string(LevelInfo),
		Renderer:   string(RendererAuto),
		Tracebacks: true,
	}
}

// Config holds CLI flag and config file values for log configuration.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.Apply] to configure a [Registry].
type Config struct {
	// Loggers maps logger names to thresholds. Names are qualified with
	// [QualifiedName]; names that resolve to [Namespace] itself are rejected
	// by [Config.Apply], which takes that threshold from Level.
	Loggers    map[string]string
	Level      string
	Renderer   string
	File       string
	Flags      Flags
	Tracebacks bool
}

// FileConfig is the YAML layout read by [Config.LoadFile].
type FileConfig struct {
	Tracebacks *bool             `json:"tracebacks,omitempty" jsonschema:"show caller locations in enhanced output" yaml:"tracebacks,omitempty"`
	Loggers    map[string]string `json:"loggers,omitempty"    jsonschema:"per-logger thresholds keyed by logger name" yaml:"loggers,omitempty"`
	Level      string            `json:"level,omitempty"      jsonschema:"threshold of the mcp logger"                 yaml:"level,omitempty"`
	Renderer   string            `json:"renderer,omitempty"   jsonschema:"console renderer"                            yaml:"renderer,omitempty"`
}

// NewConfig returns a new [Config] with default flag names, level INFO and
// the auto renderer. Use [Config.RegisterFlags] to add CLI flags, or set
// values directly.
func NewConfig() *Config {
	f := Flags{
		Level:      "log-level",
		Renderer:   "log-renderer",
		File:       "log-config",
		Tracebacks: "log-tracebacks",
	}

	return f.NewConfig()
}

// RegisterFlags adds logging flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Level, c.Flags.Level, c.Level,
		fmt.Sprintf("log level, one of: %s", GetAllLevelStrings()))
	flags.StringVar(&c.Renderer, c.Flags.Renderer, c.Renderer,
		fmt.Sprintf("log renderer, one of: %s", GetAllRendererStrings()))
	flags.StringVar(&c.File, c.Flags.File, c.File, "path to a YAML log config file")
	flags.BoolVar(&c.Tracebacks, c.Flags.Tracebacks, c.Tracebacks,
		"show caller locations in enhanced output")
}

// RegisterCompletions registers shell completions for log flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.Level,
		cobra.FixedCompletions(GetAllLevelStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Level, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.Renderer,
		cobra.FixedCompletions(GetAllRendererStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Renderer, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.File,
		cobra.FixedCompletions([]string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.File, err)
	}

	return nil
}

// LoadFile reads a YAML [FileConfig] from path into c. Values from the file
// are skipped for any flag in flags that was set explicitly on the command
// line; a nil flags lets the file set everything. Unknown keys are an error.
func (c *Config) LoadFile(path string, flags *pflag.FlagSet) error {
	data, err := os.ReadFile(path) //nolint:gosec // Config path from CLI flag is expected.
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadConfig, err)
	}

	var fc FileConfig

	err = yaml.UnmarshalWithOptions(data, &fc, yaml.Strict())
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReadConfig, path, err)
	}

	changed := func(name string) bool {
		return flags != nil && flags.Changed(name)
	}

	if fc.Level != "" && !changed(c.Flags.Level) {
		c.Level = fc.Level
	}

	if fc.Renderer != "" && !changed(c.Flags.Renderer) {
		c.Renderer = fc.Renderer
	}

	if fc.Tracebacks != nil && !changed(c.Flags.Tracebacks) {
		c.Tracebacks = *fc.Tracebacks
	}

	if len(fc.Loggers) > 0 {
		if c.Loggers == nil {
			c.Loggers = make(map[string]string, len(fc.Loggers))
		}

		maps.Copy(c.Loggers, fc.Loggers)
	}

	return nil
}

// Apply validates c and configures r, writing to w. If [Config.File] is
// set and has not been loaded yet, call [Config.LoadFile] first.
func (c *Config) Apply(r *Registry, w io.Writer) (*Logger, error) {
	level, err := ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	renderer, err := ParseRenderer(c.Renderer)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	thresholds := make(map[string]Level, len(c.Loggers))
	for _, name := range slices.Sorted(maps.Keys(c.Loggers)) {
		qualified := QualifiedName(name)
		if qualified == Namespace {
			return nil, fmt.Errorf("%w: logger %q: use the level setting for the %s logger",
				ErrInvalidArgument, name, Namespace)
		}

		lvl, err := ParseLevel(c.Loggers[name])
		if err != nil {
			return nil, fmt.Errorf("%w: logger %q: %w", ErrInvalidArgument, name, err)
		}

		thresholds[qualified] = lvl
	}

	logger := r.Configure(
		WithLevel(level),
		WithRenderer(renderer),
		WithWriter(w),
		WithTracebacks(c.Tracebacks),
	)

	for name, lvl := range thresholds {
		r.Logger(name).SetLevel(lvl)
	}

	return logger, nil
}

// FileSchema returns the JSON Schema describing [FileConfig].
func FileSchema() (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[FileConfig](nil)
	if err != nil {
		return nil, fmt.Errorf("inferring log config schema: %w", err)
	}

	levels := toAny(GetAllLevelStrings())

	if p, ok := schema.Properties["level"]; ok {
		p.Enum = levels
	}

	if p, ok := schema.Properties["renderer"]; ok {
		p.Enum = toAny(GetAllRendererStrings())
	}

	if p, ok := schema.Properties["loggers"]; ok && p.AdditionalProperties != nil {
		p.AdditionalProperties.Enum = levels
	}

	return schema, nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}

	return out
}

// Package main provides mcplog, a small CLI that configures mcp logging from
// flags or a YAML file and emits records through it.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"go.jacobcolvin.com/mcplog/log"
	"go.jacobcolvin.com/mcplog/version"
)

func main() {
	rootCmd := newRootCmd(log.Default(), os.Stdout, os.Stderr)

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(reg *log.Registry, stdout, stderr io.Writer) *cobra.Command {
	cfg := log.NewConfig()

	rootCmd := &cobra.Command{
		Use:   "mcplog",
		Short: "Configure mcp logging and emit records",
		Long: `mcplog configures the mcp logger the way an mcp server does at startup and
emits records through it. Use it to check levels, renderers and config files.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	cfg.RegisterFlags(rootCmd.PersistentFlags())

	completionErr := cfg.RegisterCompletions(rootCmd)
	if completionErr != nil {
		fmt.Fprintf(stderr, "register completions: %v\n", completionErr)
	}

	rootCmd.AddCommand(
		newEmitCmd(cfg, reg, stderr),
		newSchemaCmd(stdout),
		newVersionCmd(stdout),
	)

	return rootCmd
}

func newEmitCmd(cfg *log.Config, reg *log.Registry, stderr io.Writer) *cobra.Command {
	var (
		name  string
		attrs map[string]string
	)

	cmd := &cobra.Command{
		Use:   "emit LEVEL [MESSAGE...]",
		Short: "Configure logging and emit records",
		Long: `emit configures logging and emits MESSAGE as one record at LEVEL. Without
MESSAGE, each non-empty line read from a piped stdin becomes a record.`,
		Args: cobra.MinimumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return log.GetAllLevelStrings(), cobra.ShellCompDirectiveNoFileComp
			}

			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(args[0])
			if err != nil {
				return fmt.Errorf("%w: %w", log.ErrInvalidArgument, err)
			}

			messages := []string{strings.Join(args[1:], " ")}
			if len(args) == 1 {
				messages, err = readMessages(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			_, err = configure(cmd, cfg, reg, stderr)
			if err != nil {
				return err
			}

			kv := make([]any, 0, len(attrs)*2)
			for _, k := range slices.Sorted(maps.Keys(attrs)) {
				kv = append(kv, k, attrs[k])
			}

			logger := reg.Named(name)
			for _, msg := range messages {
				logger.Log(cmd.Context(), level, msg, kv...)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&name, "logger", "", "logger name, placed under the mcp namespace")
	cmd.Flags().StringToStringVar(&attrs, "attr", nil, "attribute to attach, as key=value")

	return cmd
}

// readMessages returns the non-empty lines of r. An interactive terminal is
// refused rather than waited on.
func readMessages(r io.Reader) ([]string, error) {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // File descriptors fit in int.
		return nil, fmt.Errorf("%w: MESSAGE is required when stdin is a terminal", log.ErrInvalidArgument)
	}

	var messages []string

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			messages = append(messages, line)
		}
	}

	err := sc.Err()
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}

	return messages, nil
}

// configure loads the config file, if any, and applies the log config.
func configure(cmd *cobra.Command, cfg *log.Config, reg *log.Registry, w io.Writer) (*log.Logger, error) {
	if cfg.File != "" {
		err := cfg.LoadFile(cfg.File, cmd.Flags())
		if err != nil {
			return nil, err //nolint:wrapcheck // Already wrapped with ErrReadConfig.
		}
	}

	logger, err := cfg.Apply(reg, w)
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	return logger, nil
}

func newSchemaCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the log config file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			schema, err := log.FileSchema()
			if err != nil {
				return err //nolint:wrapcheck // Already descriptive.
			}

			out, err := json.MarshalIndent(schema, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal schema: %w", err)
			}

			_, err = fmt.Fprintln(stdout, string(out))
			if err != nil {
				return fmt.Errorf("write schema: %w", err)
			}

			return nil
		},
	}
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(stdout, "mcplog "+version.String())
			if err != nil {
				return fmt.Errorf("write version: %w", err)
			}

			return nil
		},
	}
}

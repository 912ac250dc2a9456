package log

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Renderer selects how a [ConsoleHandler] draws records.
type Renderer string

const (
	// RendererAuto picks [RendererEnhanced] when the enhanced capability is
	// available, else [RendererBasic].
	RendererAuto Renderer = "auto"
	// RendererEnhanced draws colorized, column-aligned records with
	// timestamps, levels, attributes and caller locations.
	RendererEnhanced Renderer = "enhanced"
	// RendererBasic writes one formatted line per record and nothing else.
	RendererBasic Renderer = "basic"
)

var (
	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownLogLevel indicates an unrecognized log level string.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrUnknownRenderer indicates an unrecognized renderer string.
	ErrUnknownRenderer = errors.New("unknown log renderer")
	// ErrReadConfig indicates the logging config file could not be loaded.
	ErrReadConfig = errors.New("read log config")
)

// ParseRenderer parses a renderer string. Matching is case-insensitive.
func ParseRenderer(renderer string) (Renderer, error) {
	r := Renderer(strings.ToLower(renderer))
	if slices.Contains([]Renderer{RendererAuto, RendererEnhanced, RendererBasic}, r) {
		return r, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownRenderer, renderer)
}

// GetAllRendererStrings returns every accepted renderer string.
func GetAllRendererStrings() []string {
	return []string{string(RendererAuto), string(RendererEnhanced), string(RendererBasic)}
}

// DetectRenderer probes for the enhanced rendering capability.
//
// The result is [RendererEnhanced] whenever the capability is compiled in
// (see [EnhancedAvailable]), and [RendererBasic] otherwise. Detection never
// fails. The enhanced renderer drops colors by itself on streams that are not
// terminals.
func DetectRenderer() Renderer {
	if EnhancedAvailable {
		return RendererEnhanced
	}

	return RendererBasic
}

// ResolveRenderer turns a requested [Renderer] into the one that will be
// used. [RendererAuto] and [RendererEnhanced] become the result of
// [DetectRenderer]. Unknown values are treated as [RendererAuto].
func ResolveRenderer(requested Renderer) Renderer {
	if requested == RendererBasic {
		return RendererBasic
	}

	return DetectRenderer()
}

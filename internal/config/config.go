package config

import (
	"fmt"
	"time"

	"github.com/dshills/mathseek/internal/latex"
	"github.com/dshills/mathseek/internal/render"
)

// Settings is the full configuration tree.
type Settings struct {
	Render     RenderSettings     `toml:"render"`
	Validation ValidationSettings `toml:"validation"`
	Lint       LintSettings       `toml:"lint"`
}

// RenderSettings configures the rendering pipeline.
type RenderSettings struct {
	// Engine selects the default backend: "katex" or "mathjax".
	Engine string `toml:"engine"`

	// DebounceMS is the quiet period before an automatic render, in
	// milliseconds.
	DebounceMS int `toml:"debounce_ms"`

	// DisplayMode is the default layout: "inline" or "block".
	DisplayMode string `toml:"display_mode"`

	// DelimiterStyle selects the delimiters used when composing document
	// markup: "dollar" or "tex".
	DelimiterStyle string `toml:"delimiter_style"`

	// ThrowOnError makes renders fail on invalid markup instead of
	// producing best-effort output.
	ThrowOnError bool `toml:"throw_on_error"`

	// LoadTimeoutMS bounds how long a render waits for a backend to
	// finish loading, in milliseconds.
	LoadTimeoutMS int `toml:"load_timeout_ms"`

	// Macros maps command names (without backslash) to replacement
	// source, made available to every render.
	Macros map[string]string `toml:"macros"`
}

// ValidationSettings configures the syntax checker.
type ValidationSettings struct {
	// Strict enables the command allow-list.
	Strict bool `toml:"strict"`
}

// LintSettings configures the optional Lua lint pass.
type LintSettings struct {
	// Scripts lists Lua rule files run against each formula.
	Scripts []string `toml:"scripts"`
}

// Default returns the settings used when no file is present.
func Default() Settings {
	return Settings{
		Render: RenderSettings{
			Engine:         "mathjax",
			DebounceMS:     300,
			DisplayMode:    "block",
			DelimiterStyle: "dollar",
			LoadTimeoutMS:  10000,
		},
	}
}

// Validate checks every field that has a closed value set. It returns the
// first problem found.
func (s Settings) Validate() error {
	if _, err := s.EngineKind(); err != nil {
		return err
	}
	if _, err := s.Mode(); err != nil {
		return err
	}
	if _, err := s.Style(); err != nil {
		return err
	}
	if s.Render.DebounceMS < 0 {
		return fmt.Errorf("render.debounce_ms must be >= 0, got %d", s.Render.DebounceMS)
	}
	if s.Render.LoadTimeoutMS < 0 {
		return fmt.Errorf("render.load_timeout_ms must be >= 0, got %d", s.Render.LoadTimeoutMS)
	}
	for name := range s.Render.Macros {
		if name == "" {
			return fmt.Errorf("render.macros contains an empty command name")
		}
	}
	return nil
}

// EngineKind maps the configured engine name to a backend kind.
func (s Settings) EngineKind() (render.Kind, error) {
	kind, err := render.ParseKind(s.Render.Engine)
	if err != nil {
		return 0, fmt.Errorf("render.engine: %w", err)
	}
	return kind, nil
}

// Debounce returns the configured quiet period.
func (s Settings) Debounce() time.Duration {
	return time.Duration(s.Render.DebounceMS) * time.Millisecond
}

// LoadTimeout returns the configured backend load timeout.
func (s Settings) LoadTimeout() time.Duration {
	return time.Duration(s.Render.LoadTimeoutMS) * time.Millisecond
}

// Mode maps the configured display mode name to its value.
func (s Settings) Mode() (latex.DisplayMode, error) {
	switch s.Render.DisplayMode {
	case "inline":
		return latex.Inline, nil
	case "block", "":
		return latex.Block, nil
	default:
		return 0, fmt.Errorf("render.display_mode: unknown mode %q", s.Render.DisplayMode)
	}
}

// Style maps the configured delimiter style name to its value.
func (s Settings) Style() (latex.DelimiterStyle, error) {
	switch s.Render.DelimiterStyle {
	case "dollar", "":
		return latex.Dollar, nil
	case "tex":
		return latex.TeX, nil
	default:
		return 0, fmt.Errorf("render.delimiter_style: unknown style %q", s.Render.DelimiterStyle)
	}
}

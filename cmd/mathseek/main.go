// Package main is the MathSeek command line renderer: it validates LaTeX
// from a file or stdin and renders it to HTML.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dshills/mathseek/internal/config"
	"github.com/dshills/mathseek/internal/latex"
	"github.com/dshills/mathseek/internal/lint"
	"github.com/dshills/mathseek/internal/render"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

type options struct {
	ConfigPath string
	Engine     string
	Mode       string
	Strict     bool
	CheckOnly  bool
	Quiet      bool
	Files      []string
}

func run() int {
	opts := parseFlags()

	settings, err := loadSettings(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	src, err := readSource(opts.Files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if findings := validate(src, settings); len(findings) > 0 {
		for _, f := range findings {
			fmt.Fprintf(os.Stderr, "invalid: %s\n", f)
		}
		return 1
	}
	if opts.CheckOnly {
		if !opts.Quiet {
			fmt.Println("ok")
		}
		return 0
	}

	kind, err := settings.EngineKind()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	mode, err := settings.Mode()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	style, err := settings.Style()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	adapter := render.NewAdapter(
		[]render.Engine{
			render.NewKaTeX(settings.Render.Macros),
			render.NewMathJax(settings.Render.Macros),
		},
		render.WithLoadTimeout(settings.LoadTimeout()),
		render.WithDelimiterStyle(style),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	adapter.StartLoading(ctx)

	res := adapter.Render(ctx, src, kind, render.Options{
		DisplayMode:  mode,
		ThrowOnError: settings.Render.ThrowOnError,
		Macros:       settings.Render.Macros,
	})
	if !res.Success {
		fmt.Fprintf(os.Stderr, "render failed: %s\n", res.Err)
		return 1
	}

	fmt.Println(res.HTML)
	if !opts.Quiet {
		fmt.Fprintf(os.Stderr, "rendered in %s\n", res.RenderTime)
	}
	return 0
}

// loadSettings reads the config file and applies flag overrides.
func loadSettings(opts options) (config.Settings, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}
	settings, err := config.NewLoader(path).Load()
	if err != nil {
		return config.Settings{}, err
	}

	if opts.Engine != "" {
		settings.Render.Engine = opts.Engine
	}
	if opts.Mode != "" {
		settings.Render.DisplayMode = opts.Mode
	}
	if opts.Strict {
		settings.Validation.Strict = true
	}
	if err := settings.Validate(); err != nil {
		return config.Settings{}, err
	}
	return settings, nil
}

// readSource reads LaTeX from the first file argument, or stdin when none
// is given.
func readSource(files []string) (string, error) {
	if len(files) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	data, err := os.ReadFile(files[0])
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// validate runs the syntax checker and any configured lint rules.
func validate(src string, settings config.Settings) []string {
	var findings []string

	var msg string
	if settings.Validation.Strict {
		msg = latex.CheckStrict(src)
	} else {
		msg = latex.Check(src)
	}
	if msg != "" {
		findings = append(findings, msg)
	}

	if len(settings.Lint.Scripts) > 0 {
		runner := lint.NewRunner()
		defer runner.Close()
		if err := runner.LoadFiles(settings.Lint.Scripts); err != nil {
			findings = append(findings, fmt.Sprintf("lint setup: %v", err))
			return findings
		}
		findings = append(findings, runner.Check(src)...)
	}
	return findings
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.Engine, "engine", "", "Rendering backend (katex, mathjax)")
	flag.StringVar(&opts.Mode, "mode", "", "Display mode (inline, block)")
	flag.BoolVar(&opts.Strict, "strict", false, "Enable the command allow-list")
	flag.BoolVar(&opts.CheckOnly, "check", false, "Validate only, render nothing")
	flag.BoolVar(&opts.Quiet, "quiet", false, "Suppress non-output messages")
	flag.BoolVar(&opts.Quiet, "q", false, "Suppress non-output messages (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "MathSeek - LaTeX validation and rendering\n\n")
		fmt.Fprintf(os.Stderr, "Usage: mathseek [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  mathseek formula.tex         Render a file\n")
		fmt.Fprintf(os.Stderr, "  echo 'E=mc^2' | mathseek     Render stdin\n")
		fmt.Fprintf(os.Stderr, "  mathseek -check formula.tex  Validate only\n")
		fmt.Fprintf(os.Stderr, "  mathseek -engine katex f.tex Pick a backend\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("MathSeek %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	opts.Files = flag.Args()
	return opts
}

package render

import (
	"context"
	"errors"

	"github.com/dshills/mathseek/internal/latex"
)

// Errors returned by engines.
var (
	ErrNotLoaded   = errors.New("engine not loaded")
	ErrLoadFailed  = errors.New("engine load failed")
	ErrBadMarkup   = errors.New("markup rejected")
	ErrUnknownKind = errors.New("unknown engine kind")
)

// Kind identifies a rendering backend. The set is closed: backend selection
// is an exhaustive switch, never a string comparison.
type Kind int

const (
	// KaTeX is the fast, raw-source backend.
	KaTeX Kind = iota

	// MathJax is the delimiter-driven backend.
	MathJax
)

// String returns the backend name.
func (k Kind) String() string {
	switch k {
	case KaTeX:
		return "katex"
	case MathJax:
		return "mathjax"
	default:
		return "unknown"
	}
}

// Other returns the fallback backend for k.
func (k Kind) Other() Kind {
	if k == KaTeX {
		return MathJax
	}
	return KaTeX
}

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "katex":
		return KaTeX, nil
	case "mathjax":
		return MathJax, nil
	default:
		return KaTeX, ErrUnknownKind
	}
}

// LoadState is the per-engine lifecycle: Unloaded -> Loading -> Loaded.
// A load failure leaves the engine stalled in Loading; the failure is
// recorded on the engine, not modeled as a distinct state.
type LoadState int32

const (
	Unloaded LoadState = iota
	Loading
	Loaded
)

// String returns the state name.
func (s LoadState) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Options controls a single render invocation.
type Options struct {
	// DisplayMode selects inline or block layout.
	DisplayMode latex.DisplayMode

	// ThrowOnError makes the backend reject malformed or unknown markup
	// instead of rendering it as error text.
	ThrowOnError bool

	// Macros maps command names (without backslash) to replacement source,
	// expanded before the backend parses the input.
	Macros map[string]string
}

// Engine is the capability contract both rendering backends satisfy.
// Implementations must be safe for concurrent use once loaded.
type Engine interface {
	// Kind identifies the backend.
	Kind() Kind

	// Load prepares the backend for rendering. It is idempotent; concurrent
	// calls share one load attempt.
	Load(ctx context.Context) error

	// IsLoaded reports whether the backend is ready to render.
	IsLoaded() bool

	// Render converts markup to HTML. The input contract is backend
	// specific; the Adapter performs the required normalization.
	Render(ctx context.Context, src string, opts Options) (string, error)
}

package render

import (
	"context"
	"fmt"

	"github.com/dshills/mathseek/internal/latex"
)

// KaTeXEngine renders raw, delimiter-free source. Display layout is chosen
// by the DisplayMode option, never inferred from the input.
type KaTeXEngine struct {
	core backendCore
}

// NewKaTeX creates a KaTeX-style engine with an optional macro table.
func NewKaTeX(macros map[string]string) *KaTeXEngine {
	return &KaTeXEngine{core: newBackendCore(macros)}
}

// Kind returns KaTeX.
func (e *KaTeXEngine) Kind() Kind { return KaTeX }

// IsLoaded reports whether the engine is ready.
func (e *KaTeXEngine) IsLoaded() bool { return e.core.IsLoaded() }

// State returns the engine load state.
func (e *KaTeXEngine) State() LoadState { return e.core.State() }

// Load builds the macro table. Idempotent.
func (e *KaTeXEngine) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.core.load()
}

// Render converts raw source to HTML. Input carrying math delimiters is a
// contract violation left visible in the output rather than repaired here;
// the Adapter strips delimiters before calling.
func (e *KaTeXEngine) Render(ctx context.Context, src string, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !e.IsLoaded() {
		return "", fmt.Errorf("katex: %w", ErrNotLoaded)
	}

	expanded := e.core.expand(src, opts.Macros)
	if opts.ThrowOnError {
		if err := checkMarkup(expanded); err != nil {
			return "", fmt.Errorf("katex: %w", err)
		}
	}

	if opts.DisplayMode == latex.Block {
		return `<span class="katex-display"><span class="katex">` +
			escape(expanded) + `</span></span>`, nil
	}
	return `<span class="katex">` + escape(expanded) + `</span>`, nil
}

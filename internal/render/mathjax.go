package render

import (
	"context"
	"fmt"
	"strings"
)

// MathJaxEngine renders delimiter-wrapped source: inline input arrives as
// $...$ or \(...\), display input as $$...$$ or \[...\]. Layout is read
// from the delimiters; the DisplayMode option is ignored.
type MathJaxEngine struct {
	core backendCore
}

// NewMathJax creates a MathJax-style engine with an optional macro table.
func NewMathJax(macros map[string]string) *MathJaxEngine {
	return &MathJaxEngine{core: newBackendCore(macros)}
}

// Kind returns MathJax.
func (e *MathJaxEngine) Kind() Kind { return MathJax }

// IsLoaded reports whether the engine is ready.
func (e *MathJaxEngine) IsLoaded() bool { return e.core.IsLoaded() }

// State returns the engine load state.
func (e *MathJaxEngine) State() LoadState { return e.core.State() }

// Load builds the macro table. Idempotent.
func (e *MathJaxEngine) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.core.load()
}

// Render converts delimiter-wrapped source to HTML. Input without
// recognizable delimiters is rejected.
func (e *MathJaxEngine) Render(ctx context.Context, src string, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !e.IsLoaded() {
		return "", fmt.Errorf("mathjax: %w", ErrNotLoaded)
	}

	body, display, ok := splitDelimiters(strings.TrimSpace(src))
	if !ok {
		return "", fmt.Errorf("mathjax: %w: input has no math delimiters", ErrBadMarkup)
	}

	expanded := e.core.expand(body, opts.Macros)
	if opts.ThrowOnError {
		if err := checkMarkup(expanded); err != nil {
			return "", fmt.Errorf("mathjax: %w", err)
		}
	}

	return fmt.Sprintf(`<mjx-container class="MathJax" display="%t">%s</mjx-container>`,
		display, escape(expanded)), nil
}

// splitDelimiters removes one delimiter layer and reports the layout it
// implied. Longest delimiters are matched first so $$ is not read as $.
func splitDelimiters(s string) (body string, display, ok bool) {
	type pair struct {
		open, close string
		display     bool
	}
	pairs := []pair{
		{"$$", "$$", true},
		{"\\[", "\\]", true},
		{"\\(", "\\)", false},
		{"$", "$", false},
	}
	for _, p := range pairs {
		if len(s) > len(p.open)+len(p.close) &&
			strings.HasPrefix(s, p.open) && strings.HasSuffix(s, p.close) {
			return strings.TrimSpace(s[len(p.open) : len(s)-len(p.close)]), p.display, true
		}
	}
	return "", false, false
}

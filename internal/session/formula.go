package session

import (
	"fmt"
	"time"

	"github.com/dshills/mathseek/internal/document"
	"github.com/dshills/mathseek/internal/latex"
	"github.com/dshills/mathseek/internal/render"
)

// FormulaState is the observable snapshot of a FormulaSession.
type FormulaState struct {
	ID             string
	Original       string
	Current        string
	Modified       bool
	SyntaxError    string
	Validating     bool
	Saving         bool
	RenderedHTML   string
	RenderError    string
	LastRenderTime time.Duration
}

// FormulaSession edits a single bare LaTeX formula.
type FormulaSession struct {
	core *core

	original string
	current  string
}

// NewFormulaSession creates a formula session rendering through adapter.
func NewFormulaSession(adapter *render.Adapter, opts ...Option) *FormulaSession {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return &FormulaSession{core: newCore(adapter, cfg)}
}

// ID returns the session identifier.
func (s *FormulaSession) ID() string { return s.core.ID() }

// Subscribe registers a state-change observer.
func (s *FormulaSession) Subscribe(obs Observer) *Subscription {
	return s.core.Subscribe(obs)
}

// SetOriginal atomically replaces both original and current, clearing the
// modified flag. Used after loading recognition output or a successful
// save elsewhere.
func (s *FormulaSession) SetOriginal(latexSrc string) {
	s.core.mu.Lock()
	s.original = latexSrc
	s.current = latexSrc
	s.revalidateLocked()
	s.core.mu.Unlock()
	s.core.notifier.notify()
}

// SeedFromResult loads a recognition result as the session's original.
// Document results contribute their combined latex.
func (s *FormulaSession) SeedFromResult(r document.Result) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("seeding session: %w", err)
	}
	src := r.LaTeX
	if r.Type == document.SingleFormula {
		src = r.Formula
	}
	s.SetOriginal(src)
	return nil
}

// Update replaces the current working copy. The modified flag is derived
// by comparison against the original; validation runs immediately and
// rendering is scheduled only for valid content.
func (s *FormulaSession) Update(latexSrc string) {
	s.core.mu.Lock()
	s.current = latexSrc
	s.revalidateLocked()
	s.core.mu.Unlock()
	s.core.notifier.notify()
}

// revalidateLocked refreshes the syntax error and gates rendering on the
// outcome. Caller holds the core lock.
func (s *FormulaSession) revalidateLocked() {
	findings := s.findings(s.current)
	s.core.syntaxError = joinFindings(findings)

	if s.core.syntaxError == "" {
		s.core.ctrl.UpdateText(s.current)
	} else {
		// Never invoke render while a syntax error is set; the last
		// valid output stays visible.
		s.core.ctrl.CancelPending()
	}
}

// findings runs the built-in checker plus the optional lint pass.
func (s *FormulaSession) findings(src string) []string {
	var out []string
	if msg := s.core.checkSyntax(src); msg != "" {
		out = append(out, msg)
	}
	out = append(out, s.core.lintFindings(src)...)
	return out
}

// ResetToOriginal discards the working copy: current becomes original and
// the syntax error and modified flag are cleared.
func (s *FormulaSession) ResetToOriginal() {
	s.core.mu.Lock()
	s.current = s.original
	s.revalidateLocked()
	s.core.mu.Unlock()
	s.core.notifier.notify()
}

// Validate re-runs validation and returns the current syntax error, or "".
// A call arriving while another is outstanding returns the last value
// without re-running.
func (s *FormulaSession) Validate() string {
	s.core.mu.Lock()
	if s.core.validating {
		msg := s.core.syntaxError
		s.core.mu.Unlock()
		return msg
	}
	s.core.validating = true
	s.core.mu.Unlock()
	s.core.notifier.notify()

	s.core.mu.Lock()
	s.revalidateLocked()
	msg := s.core.syntaxError
	s.core.validating = false
	s.core.mu.Unlock()
	s.core.notifier.notify()
	return msg
}

// Save promotes current to original. It proceeds only when the session is
// modified, validation passes, and no save is outstanding; on a validation
// failure the original is left untouched.
func (s *FormulaSession) Save() error {
	s.core.mu.Lock()
	if s.core.saving {
		s.core.mu.Unlock()
		return ErrSaveInFlight
	}
	if s.current == s.original {
		s.core.mu.Unlock()
		return ErrNotModified
	}

	// Re-validate synchronously at commit time.
	findings := s.findings(s.current)
	if len(findings) > 0 {
		s.core.syntaxError = joinFindings(findings)
		s.core.mu.Unlock()
		s.core.notifier.notify()
		return fmt.Errorf("%w: %s", ErrInvalidContent, joinFindings(findings))
	}

	s.core.saving = true
	s.original = s.current
	s.core.saving = false
	s.core.mu.Unlock()
	s.core.notifier.notify()
	return nil
}

// Derived flags, recomputed on every access.

// IsModified reports whether current differs from original.
func (s *FormulaSession) IsModified() bool {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()
	return s.current != s.original
}

// IsValid recomputes validation for the current content.
func (s *FormulaSession) IsValid() bool {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()
	return len(s.findings(s.current)) == 0
}

// CanSave reports whether Save would proceed.
func (s *FormulaSession) CanSave() bool {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()
	return s.current != s.original && !s.core.saving && len(s.findings(s.current)) == 0
}

// Current returns the working copy.
func (s *FormulaSession) Current() string {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()
	return s.current
}

// Original returns the saved value.
func (s *FormulaSession) Original() string {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()
	return s.original
}

// Render commands.

// Render triggers rendering, forced or debounced.
func (s *FormulaSession) Render(force bool) { s.core.Render(force) }

// SetEngine switches the rendering backend.
func (s *FormulaSession) SetEngine(kind render.Kind) { s.core.SetEngine(kind) }

// SetDisplayMode switches inline/block layout.
func (s *FormulaSession) SetDisplayMode(mode latex.DisplayMode) { s.core.SetDisplayMode(mode) }

// SetAutoSync enables or disables automatic rendering.
func (s *FormulaSession) SetAutoSync(enabled bool) { s.core.SetAutoSync(enabled) }

// Snapshot returns the observable state.
func (s *FormulaSession) Snapshot() FormulaState {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()

	return FormulaState{
		ID:             s.core.id,
		Original:       s.original,
		Current:        s.current,
		Modified:       s.current != s.original,
		SyntaxError:    s.core.syntaxError,
		Validating:     s.core.validating,
		Saving:         s.core.saving,
		RenderedHTML:   s.core.RenderedHTML(),
		RenderError:    s.core.RenderError(),
		LastRenderTime: s.core.LastRenderTime(),
	}
}

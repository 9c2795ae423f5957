package session

import (
	"fmt"
	"time"

	"github.com/dshills/mathseek/internal/document"
	"github.com/dshills/mathseek/internal/latex"
	"github.com/dshills/mathseek/internal/render"
)

// DocumentState is the observable snapshot of a DocumentSession. Original
// and Current are deep copies; mutating them does not touch the session.
type DocumentState struct {
	ID             string
	Original       *document.Content
	Current        *document.Content
	ActiveSection  int
	Modified       bool
	SyntaxError    string
	Validating     bool
	Saving         bool
	RenderedHTML   string
	RenderError    string
	LastRenderTime time.Duration
}

// DocumentSession edits structured multi-section content.
type DocumentSession struct {
	core *core

	original *document.Content
	current  *document.Content

	// savedRev is current's revision at the last promote; while unchanged,
	// the session is known unmodified without a deep comparison.
	savedRev document.Revision

	active int
	style  latex.DelimiterStyle
}

// NewDocumentSession creates a document session over a default one-section
// document.
func NewDocumentSession(adapter *render.Adapter, opts ...Option) *DocumentSession {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &DocumentSession{
		core:     newCore(adapter, cfg),
		original: document.New(""),
		style:    cfg.style,
	}
	s.current = s.original.Clone()
	s.savedRev = s.current.Revision()
	return s
}

// ID returns the session identifier.
func (s *DocumentSession) ID() string { return s.core.ID() }

// Subscribe registers a state-change observer.
func (s *DocumentSession) Subscribe(obs Observer) *Subscription {
	return s.core.Subscribe(obs)
}

// SetOriginal atomically replaces both original and current with deep
// copies of doc, clearing the modified flag.
func (s *DocumentSession) SetOriginal(doc *document.Content) {
	s.core.mu.Lock()
	s.original = doc.Clone()
	s.current = doc.Clone()
	s.savedRev = s.current.Revision()
	s.clampActiveLocked()
	s.revalidateLocked()
	s.core.mu.Unlock()
	s.core.notifier.notify()
}

// SeedFromResult loads a recognition result, converting a single-formula
// result into a one-section document.
func (s *DocumentSession) SeedFromResult(r document.Result) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("seeding session: %w", err)
	}
	s.SetOriginal(r.Document())
	return nil
}

// Update replaces the whole working copy with a deep copy of doc.
func (s *DocumentSession) Update(doc *document.Content) {
	s.core.mu.Lock()
	s.current = doc.Clone()
	s.clampActiveLocked()
	s.revalidateLocked()
	s.core.mu.Unlock()
	s.core.notifier.notify()
}

// ResetToOriginal discards the working copy.
func (s *DocumentSession) ResetToOriginal() {
	s.core.mu.Lock()
	s.current = s.original.Clone()
	s.savedRev = s.current.Revision()
	s.clampActiveLocked()
	s.revalidateLocked()
	s.core.mu.Unlock()
	s.core.notifier.notify()
}

// Section and formula operations. Each mirrors the document mutator's
// boundary discipline and, on success, revalidates and reschedules
// rendering.

// AddSection inserts a section and makes it active.
func (s *DocumentSession) AddSection(heading string, position int) int {
	s.core.mu.Lock()
	idx := s.current.AddSection(heading, position)
	if idx >= 0 {
		s.active = idx
		s.revalidateLocked()
	}
	s.core.mu.Unlock()
	s.core.notifier.notify()
	return idx
}

// RemoveSection removes the section at index.
func (s *DocumentSession) RemoveSection(index int) bool {
	s.core.mu.Lock()
	ok := s.current.RemoveSection(index)
	if ok {
		s.clampActiveLocked()
		s.revalidateLocked()
	}
	s.core.mu.Unlock()
	s.core.notifier.notify()
	return ok
}

// MoveSection swaps two sections. The active-section pointer follows the
// section it referred to.
func (s *DocumentSession) MoveSection(from, to int) bool {
	s.core.mu.Lock()
	ok := s.current.MoveSection(from, to)
	if ok {
		switch s.active {
		case from:
			s.active = to
		case to:
			s.active = from
		}
		s.revalidateLocked()
	}
	s.core.mu.Unlock()
	s.core.notifier.notify()
	return ok
}

// DuplicateSection copies the section at index and makes the copy active.
func (s *DocumentSession) DuplicateSection(index int) int {
	s.core.mu.Lock()
	idx := s.current.DuplicateSection(index)
	if idx >= 0 {
		s.active = idx
		s.revalidateLocked()
	}
	s.core.mu.Unlock()
	s.core.notifier.notify()
	return idx
}

// UpdateSection replaces the heading and text of the section at index.
func (s *DocumentSession) UpdateSection(index int, heading, text string) bool {
	s.core.mu.Lock()
	ok := s.current.UpdateSection(index, heading, text)
	if ok {
		s.revalidateLocked()
	}
	s.core.mu.Unlock()
	s.core.notifier.notify()
	return ok
}

// AddFormula appends a formula to the section at sectionIndex.
func (s *DocumentSession) AddFormula(sectionIndex int, latexSrc string, position int, inline bool) int {
	s.core.mu.Lock()
	idx := s.current.AddFormula(sectionIndex, latexSrc, position, inline)
	if idx >= 0 {
		s.revalidateLocked()
	}
	s.core.mu.Unlock()
	s.core.notifier.notify()
	return idx
}

// RemoveFormula removes a formula.
func (s *DocumentSession) RemoveFormula(sectionIndex, formulaIndex int) bool {
	s.core.mu.Lock()
	ok := s.current.RemoveFormula(sectionIndex, formulaIndex)
	if ok {
		s.revalidateLocked()
	}
	s.core.mu.Unlock()
	s.core.notifier.notify()
	return ok
}

// UpdateFormula replaces a formula.
func (s *DocumentSession) UpdateFormula(sectionIndex, formulaIndex int, f document.Formula) bool {
	s.core.mu.Lock()
	ok := s.current.UpdateFormula(sectionIndex, formulaIndex, f)
	if ok {
		s.revalidateLocked()
	}
	s.core.mu.Unlock()
	s.core.notifier.notify()
	return ok
}

// ActiveSection returns the tracked active section index.
func (s *DocumentSession) ActiveSection() int {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()
	return s.active
}

// SetActiveSection moves the active pointer; out-of-range is refused.
func (s *DocumentSession) SetActiveSection(index int) bool {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()

	if index < 0 || index >= s.current.SectionCount() {
		return false
	}
	s.active = index
	return true
}

// Validate re-runs full document validation: structural invariants plus
// the syntax of every formula in every section, aggregating all findings.
// Re-entrant calls return the last value without re-running.
func (s *DocumentSession) Validate() string {
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

// Save promotes current to original with the same gate as the formula
// variant. Validation failure leaves the original untouched.
func (s *DocumentSession) Save() error {
	s.core.mu.Lock()
	if s.core.saving {
		s.core.mu.Unlock()
		return ErrSaveInFlight
	}
	if !s.modifiedLocked() {
		s.core.mu.Unlock()
		return ErrNotModified
	}

	findings := s.findings()
	if len(findings) > 0 {
		s.core.syntaxError = joinFindings(findings)
		s.core.mu.Unlock()
		s.core.notifier.notify()
		return fmt.Errorf("%w: %s", ErrInvalidContent, joinFindings(findings))
	}

	s.core.saving = true
	s.original = s.current.Clone()
	s.savedRev = s.current.Revision()
	s.core.saving = false
	s.core.mu.Unlock()
	s.core.notifier.notify()
	return nil
}

// Derived flags.

// IsModified reports whether current differs structurally from original.
// The revision counter short-circuits the common unmodified case.
func (s *DocumentSession) IsModified() bool {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()
	return s.modifiedLocked()
}

func (s *DocumentSession) modifiedLocked() bool {
	if s.current.Revision() == s.savedRev {
		return false
	}
	return !s.current.Equal(s.original)
}

// IsValid recomputes validation for the current content.
func (s *DocumentSession) IsValid() bool {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()
	return len(s.findings()) == 0
}

// CanSave reports whether Save would proceed.
func (s *DocumentSession) CanSave() bool {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()
	return s.modifiedLocked() && !s.core.saving && len(s.findings()) == 0
}

// Current returns a deep copy of the working document.
func (s *DocumentSession) Current() *document.Content {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()
	return s.current.Clone()
}

// Original returns a deep copy of the saved document.
func (s *DocumentSession) Original() *document.Content {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()
	return s.original.Clone()
}

// Render commands.

// Render triggers rendering, forced or debounced.
func (s *DocumentSession) Render(force bool) { s.core.Render(force) }

// SetEngine switches the rendering backend.
func (s *DocumentSession) SetEngine(kind render.Kind) { s.core.SetEngine(kind) }

// SetDisplayMode switches inline/block layout.
func (s *DocumentSession) SetDisplayMode(mode latex.DisplayMode) { s.core.SetDisplayMode(mode) }

// SetAutoSync enables or disables automatic rendering.
func (s *DocumentSession) SetAutoSync(enabled bool) { s.core.SetAutoSync(enabled) }

// Snapshot returns the observable state.
func (s *DocumentSession) Snapshot() DocumentState {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()

	return DocumentState{
		ID:             s.core.id,
		Original:       s.original.Clone(),
		Current:        s.current.Clone(),
		ActiveSection:  s.active,
		Modified:       s.modifiedLocked(),
		SyntaxError:    s.core.syntaxError,
		Validating:     s.core.validating,
		Saving:         s.core.saving,
		RenderedHTML:   s.core.RenderedHTML(),
		RenderError:    s.core.RenderError(),
		LastRenderTime: s.core.LastRenderTime(),
	}
}

// Internals

// revalidateLocked refreshes the aggregated findings and gates rendering:
// valid content feeds the composed markup to the controller, invalid
// content cancels any pending render.
func (s *DocumentSession) revalidateLocked() {
	findings := s.findings()
	s.core.syntaxError = joinFindings(findings)

	if s.core.syntaxError == "" {
		s.core.ctrl.UpdateText(s.current.Markup(s.style))
	} else {
		s.core.ctrl.CancelPending()
	}
}

// findings aggregates structural findings and per-formula syntax findings
// across every section, in document order.
func (s *DocumentSession) findings() []string {
	findings := s.current.ValidateStructure()

	for i, sec := range s.current.Sections {
		for j, f := range sec.Formulas {
			if msg := s.core.checkSyntax(f.LaTeX); msg != "" {
				findings = append(findings,
					fmt.Sprintf("section %d formula %d: %s", i+1, j+1, msg))
			}
			for _, lint := range s.core.lintFindings(f.LaTeX) {
				findings = append(findings,
					fmt.Sprintf("section %d formula %d: %s", i+1, j+1, lint))
			}
		}
	}
	return findings
}

// clampActiveLocked keeps the active pointer in range after structural
// changes.
func (s *DocumentSession) clampActiveLocked() {
	if s.active >= s.current.SectionCount() {
		s.active = s.current.SectionCount() - 1
	}
	if s.active < 0 {
		s.active = 0
	}
}

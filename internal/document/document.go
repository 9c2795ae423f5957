package document

import (
	"fmt"
	"sync/atomic"
)

// Revision uniquely identifies a content revision.
// Every successful mutation produces a new revision.
type Revision uint64

// revisionCounter is used to generate unique revision IDs.
var revisionCounter uint64

// NewRevision generates a new unique revision ID.
// This is thread-safe using atomic operations.
func NewRevision() Revision {
	return Revision(atomic.AddUint64(&revisionCounter, 1))
}

// Formula is a LaTeX fragment anchored at a byte offset into the owning
// section's text. Position must satisfy 0 <= Position <= len(text); the
// bound is checked by validation, never clamped by mutators.
type Formula struct {
	LaTeX    string
	Position int
	Inline   bool
}

// Equal reports whether two formulas are structurally identical.
func (f Formula) Equal(other Formula) bool {
	return f == other
}

// Section is one document section: optional heading, plain text, and the
// formulas embedded in that text.
type Section struct {
	Heading  string
	Text     string
	Formulas []Formula
}

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	out := s
	if s.Formulas != nil {
		out.Formulas = make([]Formula, len(s.Formulas))
		copy(out.Formulas, s.Formulas)
	}
	return out
}

// Equal reports whether two sections are structurally identical.
func (s Section) Equal(other Section) bool {
	if s.Heading != other.Heading || s.Text != other.Text {
		return false
	}
	if len(s.Formulas) != len(other.Formulas) {
		return false
	}
	for i := range s.Formulas {
		if s.Formulas[i] != other.Formulas[i] {
			return false
		}
	}
	return true
}

// Content is a structured document: an optional title plus ordered sections.
// A valid document has at least one section.
type Content struct {
	Title    string
	Sections []Section

	revision Revision
}

// New creates a document with a single empty, auto-numbered section.
func New(title string) *Content {
	c := &Content{Title: title}
	c.Sections = []Section{{Heading: "Section 1"}}
	c.revision = NewRevision()
	return c
}

// FromSections creates a document from pre-built sections.
// The slice is copied; the caller keeps ownership of its argument.
func FromSections(title string, sections []Section) *Content {
	c := &Content{Title: title}
	c.Sections = make([]Section, len(sections))
	for i, s := range sections {
		c.Sections[i] = s.Clone()
	}
	c.revision = NewRevision()
	return c
}

// Revision returns the current revision ID.
func (c *Content) Revision() Revision {
	return c.revision
}

// bump records a successful mutation.
func (c *Content) bump() {
	c.revision = NewRevision()
}

// Clone returns a deep copy of the content. The copy carries a fresh
// revision; structural equality with the source is preserved.
func (c *Content) Clone() *Content {
	out := &Content{Title: c.Title}
	out.Sections = make([]Section, len(c.Sections))
	for i, s := range c.Sections {
		out.Sections[i] = s.Clone()
	}
	out.revision = NewRevision()
	return out
}

// Equal reports whether two documents are structurally identical.
// Revision IDs are ignored; equality is by value, never by reference.
func (c *Content) Equal(other *Content) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.Title != other.Title || len(c.Sections) != len(other.Sections) {
		return false
	}
	for i := range c.Sections {
		if !c.Sections[i].Equal(other.Sections[i]) {
			return false
		}
	}
	return true
}

// Section Mutators
//
// All mutators follow one discipline: index-returning operations report
// refusal with -1, boolean operations with false. No mutator panics, and a
// refused call leaves the document untouched.

// AddSection inserts a section at position, or appends when position is -1
// or out of range. An empty heading is auto-numbered ("Section N").
// Returns the index of the new section.
func (c *Content) AddSection(heading string, position int) int {
	if heading == "" {
		heading = fmt.Sprintf("Section %d", len(c.Sections)+1)
	}
	sec := Section{Heading: heading}

	if position < 0 || position > len(c.Sections) {
		position = len(c.Sections)
	}

	c.Sections = append(c.Sections, Section{})
	copy(c.Sections[position+1:], c.Sections[position:])
	c.Sections[position] = sec
	c.bump()
	return position
}

// RemoveSection removes the section at index. It refuses when the index is
// out of range or when removal would leave the document with zero sections.
func (c *Content) RemoveSection(index int) bool {
	if index < 0 || index >= len(c.Sections) {
		return false
	}
	if len(c.Sections) == 1 {
		return false
	}
	c.Sections = append(c.Sections[:index], c.Sections[index+1:]...)
	c.bump()
	return true
}

// MoveSection swaps the sections at from and to. Out-of-range or equal
// indices are a no-op returning false.
func (c *Content) MoveSection(from, to int) bool {
	if from < 0 || from >= len(c.Sections) || to < 0 || to >= len(c.Sections) || from == to {
		return false
	}
	c.Sections[from], c.Sections[to] = c.Sections[to], c.Sections[from]
	c.bump()
	return true
}

// DuplicateSection deep-copies the section at index, suffixes its heading,
// and inserts the copy immediately after the source. Returns the index of
// the copy, or -1 when index is out of range.
func (c *Content) DuplicateSection(index int) int {
	if index < 0 || index >= len(c.Sections) {
		return -1
	}
	dup := c.Sections[index].Clone()
	dup.Heading = dup.Heading + " (copy)"

	newIndex := index + 1
	c.Sections = append(c.Sections, Section{})
	copy(c.Sections[newIndex+1:], c.Sections[newIndex:])
	c.Sections[newIndex] = dup
	c.bump()
	return newIndex
}

// UpdateSection replaces the heading and text of the section at index.
func (c *Content) UpdateSection(index int, heading, text string) bool {
	if index < 0 || index >= len(c.Sections) {
		return false
	}
	c.Sections[index].Heading = heading
	c.Sections[index].Text = text
	c.bump()
	return true
}

// Formula Mutators

// AddFormula appends a formula to the section at sectionIndex. A negative
// position defaults to the current text length (append). The position is
// stored as given; bounds violations surface through validation.
// Returns the index of the new formula within the section, or -1 when the
// section index is out of range.
func (c *Content) AddFormula(sectionIndex int, latex string, position int, inline bool) int {
	if sectionIndex < 0 || sectionIndex >= len(c.Sections) {
		return -1
	}
	sec := &c.Sections[sectionIndex]
	if position < 0 {
		position = len(sec.Text)
	}
	sec.Formulas = append(sec.Formulas, Formula{LaTeX: latex, Position: position, Inline: inline})
	c.bump()
	return len(sec.Formulas) - 1
}

// RemoveFormula removes the formula at formulaIndex from the section at
// sectionIndex.
func (c *Content) RemoveFormula(sectionIndex, formulaIndex int) bool {
	if sectionIndex < 0 || sectionIndex >= len(c.Sections) {
		return false
	}
	sec := &c.Sections[sectionIndex]
	if formulaIndex < 0 || formulaIndex >= len(sec.Formulas) {
		return false
	}
	sec.Formulas = append(sec.Formulas[:formulaIndex], sec.Formulas[formulaIndex+1:]...)
	c.bump()
	return true
}

// UpdateFormula replaces the formula at formulaIndex in the section at
// sectionIndex.
func (c *Content) UpdateFormula(sectionIndex, formulaIndex int, f Formula) bool {
	if sectionIndex < 0 || sectionIndex >= len(c.Sections) {
		return false
	}
	sec := &c.Sections[sectionIndex]
	if formulaIndex < 0 || formulaIndex >= len(sec.Formulas) {
		return false
	}
	sec.Formulas[formulaIndex] = f
	c.bump()
	return true
}

// Aggregate Queries

// SectionCount returns the number of sections.
func (c *Content) SectionCount() int {
	return len(c.Sections)
}

// FormulaCount returns the total number of formulas across all sections.
func (c *Content) FormulaCount() int {
	n := 0
	for _, s := range c.Sections {
		n += len(s.Formulas)
	}
	return n
}

// AllLaTeX returns every formula source in document order.
func (c *Content) AllLaTeX() []string {
	out := make([]string, 0, c.FormulaCount())
	for _, s := range c.Sections {
		for _, f := range s.Formulas {
			out = append(out, f.LaTeX)
		}
	}
	return out
}

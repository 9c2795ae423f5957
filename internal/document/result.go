package document

import (
	"errors"
	"fmt"
	"time"
)

// Errors returned by result validation.
var (
	ErrEmptyLaTeX     = errors.New("latex content is empty")
	ErrBadConfidence  = errors.New("confidence outside [0, 1]")
	ErrUnknownInput   = errors.New("unknown input type")
	ErrMissingContent = errors.New("result has no content")
)

// InputType classifies what a recognition result describes.
type InputType int

const (
	// SingleFormula is one standalone formula.
	SingleFormula InputType = iota

	// Document is a multi-section document with embedded formulas.
	Document
)

// String returns the input type name.
func (t InputType) String() string {
	switch t {
	case SingleFormula:
		return "single-formula"
	case Document:
		return "document"
	default:
		return "unknown"
	}
}

// ParseInputType converts a string to an InputType.
func ParseInputType(s string) (InputType, error) {
	switch s {
	case "single-formula":
		return SingleFormula, nil
	case "document":
		return Document, nil
	default:
		return SingleFormula, fmt.Errorf("%w: %q", ErrUnknownInput, s)
	}
}

// Result is the output of the recognition pipeline, used to seed an editing
// session. Content is a closed variant: exactly one of Formula (when Type is
// SingleFormula) or Doc (when Type is Document) is meaningful.
type Result struct {
	LaTeX      string
	Confidence float64
	Timestamp  time.Time
	Type       InputType

	// Closed variant payload.
	Formula string
	Doc     *Content
}

// NewFormulaResult builds a single-formula result.
func NewFormulaResult(latex string, confidence float64) Result {
	return Result{
		LaTeX:      latex,
		Confidence: confidence,
		Timestamp:  time.Now(),
		Type:       SingleFormula,
		Formula:    latex,
	}
}

// NewDocumentResult builds a document result. The combined latex summary is
// kept alongside the structured content.
func NewDocumentResult(latex string, confidence float64, doc *Content) Result {
	return Result{
		LaTeX:      latex,
		Confidence: confidence,
		Timestamp:  time.Now(),
		Type:       Document,
		Doc:        doc,
	}
}

// Validate checks the result invariants: non-empty latex, confidence within
// [0, 1], and a payload matching the input type.
func (r Result) Validate() error {
	if r.LaTeX == "" {
		return ErrEmptyLaTeX
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("%w: %g", ErrBadConfidence, r.Confidence)
	}
	switch r.Type {
	case SingleFormula:
		if r.Formula == "" {
			return ErrMissingContent
		}
	case Document:
		if r.Doc == nil {
			return ErrMissingContent
		}
	default:
		return ErrUnknownInput
	}
	return nil
}

// Document returns the result as structured content. A single-formula result
// is converted into a one-section document holding the formula as a display
// block; a document result returns a deep copy of its content.
func (r Result) Document() *Content {
	if r.Type == Document && r.Doc != nil {
		return r.Doc.Clone()
	}
	c := New("")
	c.AddFormula(0, r.Formula, 0, false)
	return c
}

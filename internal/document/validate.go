package document

import (
	"fmt"
	"strings"
)

// Structural validation checks document shape independent of markup syntax:
// non-empty document, non-empty sections, and in-bounds formula anchors.
// Findings are descriptive strings; validation never mutates the document
// and never clamps an out-of-bounds anchor.

// ValidateStructure returns every structural finding in the document, in
// document order. An empty slice means the document is structurally valid.
func (c *Content) ValidateStructure() []string {
	var findings []string

	if len(c.Sections) == 0 {
		return []string{"document has no sections"}
	}

	for i, sec := range c.Sections {
		findings = append(findings, sec.validate(i)...)
	}
	return findings
}

// IsValid reports whether the document has no structural findings.
func (c *Content) IsValid() bool {
	return len(c.ValidateStructure()) == 0
}

// validate returns the findings for one section. The index is used only for
// reporting.
func (s Section) validate(index int) []string {
	var findings []string

	if strings.TrimSpace(s.Text) == "" && len(s.Formulas) == 0 {
		findings = append(findings,
			fmt.Sprintf("section %d has neither text nor formulas", index+1))
	}

	for j, f := range s.Formulas {
		if f.Position < 0 || f.Position > len(s.Text) {
			findings = append(findings,
				fmt.Sprintf("section %d formula %d anchored at %d, text length %d",
					index+1, j+1, f.Position, len(s.Text)))
		}
	}
	return findings
}

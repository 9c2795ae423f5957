package document

import (
	"sort"
	"strings"

	"github.com/dshills/mathseek/internal/latex"
)

// Markup flattens the document into renderable source: each section's text
// with its formulas spliced in at their anchors, wrapped in the delimiters
// for their display class. Sections are separated by blank lines and led by
// their headings.
//
// Composition expects a structurally valid document; an out-of-bounds
// anchor (a validation finding) splices at the nearest text boundary here
// so that composition stays total, while validation still reports it.
func (c *Content) Markup(style latex.DelimiterStyle) string {
	var b strings.Builder
	if c.Title != "" {
		b.WriteString("# " + c.Title + "\n\n")
	}

	for i, sec := range c.Sections {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if sec.Heading != "" {
			b.WriteString("## " + sec.Heading + "\n\n")
		}
		b.WriteString(sec.markup(style))
	}
	return b.String()
}

// markup splices the section's formulas into its text at their anchors.
func (s Section) markup(style latex.DelimiterStyle) string {
	if len(s.Formulas) == 0 {
		return s.Text
	}

	// Splice back to front so earlier anchors stay valid.
	order := make([]int, len(s.Formulas))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return s.Formulas[order[a]].Position > s.Formulas[order[b]].Position
	})

	text := s.Text
	for _, idx := range order {
		f := s.Formulas[idx]
		pos := f.Position
		if pos < 0 {
			pos = 0
		}
		if pos > len(text) {
			pos = len(text)
		}

		mode := latex.Block
		if f.Inline {
			mode = latex.Inline
		}
		wrapped := latex.Wrap(f.LaTeX, mode, style)
		text = text[:pos] + wrapped + text[pos:]
	}
	return text
}

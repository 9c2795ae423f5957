package latex

import "strings"

// DisplayMode selects how a formula is set: inline with the surrounding
// text, or as a display block on its own line.
type DisplayMode int

const (
	// Inline renders within a line of text.
	Inline DisplayMode = iota

	// Block renders as a standalone display equation.
	Block
)

// String returns the display mode name.
func (m DisplayMode) String() string {
	switch m {
	case Inline:
		return "inline"
	case Block:
		return "block"
	default:
		return "unknown"
	}
}

// DelimiterStyle selects which delimiter pair Wrap produces.
type DelimiterStyle int

const (
	// Dollar produces $...$ inline and $$...$$ block delimiters.
	Dollar DelimiterStyle = iota

	// TeX produces \(...\) inline and \[...\] block delimiters.
	TeX
)

// delimiter pairs, longest first so $$ is tried before $.
var delimiterPairs = []struct {
	open, close string
}{
	{"$$", "$$"},
	{"\\[", "\\]"},
	{"\\(", "\\)"},
	{"$", "$"},
}

// Strip removes every layer of surrounding math delimiters and trims the
// result. It is idempotent: stripping stripped source is a no-op.
func Strip(src string) string {
	s := strings.TrimSpace(src)
	for {
		stripped := stripOnce(s)
		if stripped == s {
			return s
		}
		s = stripped
	}
}

// stripOnce removes at most one delimiter layer.
func stripOnce(s string) string {
	for _, p := range delimiterPairs {
		if len(s) > len(p.open)+len(p.close) &&
			strings.HasPrefix(s, p.open) && strings.HasSuffix(s, p.close) {
			return strings.TrimSpace(s[len(p.open) : len(s)-len(p.close)])
		}
	}
	return s
}

// Wrap strips src and surrounds it with the delimiters for the given mode
// and style. Wrapping already-wrapped source produces a single delimiter
// layer, never a nested one.
func Wrap(src string, mode DisplayMode, style DelimiterStyle) string {
	core := Strip(src)
	if core == "" {
		return ""
	}

	switch {
	case mode == Block && style == TeX:
		return "\\[" + core + "\\]"
	case mode == Block:
		return "$$" + core + "$$"
	case style == TeX:
		return "\\(" + core + "\\)"
	default:
		return "$" + core + "$"
	}
}

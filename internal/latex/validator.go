package latex

import (
	"fmt"
	"strings"
)

// Finding messages. The checker reports descriptive strings, not errors:
// a syntax problem is session state, never a control-flow failure.
const (
	msgUnmatchedClose = "unmatched closing brace"
	msgMissingClose   = "missing closing brace"
	msgExtraClose     = "extra closing brace"
	msgUnclosedMath   = "unclosed math mode"
)

// Check scans src once, left to right, and returns a description of the
// first structural problem or "" when the markup is well-formed.
//
// Rules:
//   - An escape (backslash plus the next byte) is consumed as an atomic
//     two-character unit and has no brace or math-mode effect.
//   - Unescaped { and } adjust a balance counter; a negative counter is
//     reported immediately.
//   - Unescaped $ toggles math mode.
//   - At end of scan a positive counter, negative counter, or open math
//     mode is reported.
//
// Empty and whitespace-only input is valid: emptiness is a permitted state,
// not an error.
func Check(src string) string {
	depth := 0
	math := false

	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\\':
			// Atomic escape pair. A trailing bare backslash consumes
			// nothing extra and has no structural effect.
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return msgUnmatchedClose
			}
		case '$':
			math = !math
		}
	}

	if depth > 0 {
		return msgMissingClose
	}
	if depth < 0 {
		return msgExtraClose
	}
	if math {
		return msgUnclosedMath
	}
	return ""
}

// CheckStrict runs Check and additionally rejects any \<letters> command
// whose name is not on the known-command allow-list, naming the offender.
// Strict checking is an explicit opt-in mode; Check alone is the default.
func CheckStrict(src string) string {
	if msg := Check(src); msg != "" {
		return msg
	}

	for _, cmd := range Commands(src) {
		if !knownCommands[cmd] {
			return fmt.Sprintf("unknown command \\%s", cmd)
		}
	}
	return ""
}

// Commands extracts every \<letters> command name from src, in order.
// Escaped symbols (\{, \$, \\) are not commands and are skipped.
func Commands(src string) []string {
	var out []string
	for i := 0; i < len(src); i++ {
		if src[i] != '\\' {
			continue
		}
		j := i + 1
		for j < len(src) && isLetter(src[j]) {
			j++
		}
		if j > i+1 {
			out = append(out, src[i+1:j])
			i = j - 1
		} else {
			// Symbol escape: skip the escaped byte too.
			i++
		}
	}
	return out
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// IsBlank reports whether src contains no visible markup.
func IsBlank(src string) bool {
	return strings.TrimSpace(src) == ""
}

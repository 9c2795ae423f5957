package render

import (
	"fmt"
	"html"
	"sync"
	"sync/atomic"

	"github.com/dshills/mathseek/internal/latex"
)

// backendCore holds the load lifecycle and macro table shared by both
// concrete backends. Loading validates the macro table; a failure records
// the error and leaves the state in Loading.
type backendCore struct {
	state    atomic.Int32
	loadOnce sync.Once
	loadErr  error
	macros   map[string]string
}

func newBackendCore(macros map[string]string) backendCore {
	c := backendCore{}
	if len(macros) > 0 {
		c.macros = make(map[string]string, len(macros))
		for name, body := range macros {
			c.macros[name] = body
		}
	}
	return c
}

// State returns the current load state.
func (c *backendCore) State() LoadState {
	return LoadState(c.state.Load())
}

// IsLoaded reports whether the backend finished loading.
func (c *backendCore) IsLoaded() bool {
	return c.State() == Loaded
}

// load runs the one-time load protocol. Concurrent callers share a single
// attempt; every caller observes the same outcome.
func (c *backendCore) load() error {
	c.loadOnce.Do(func() {
		c.state.Store(int32(Loading))

		for name, body := range c.macros {
			if !isCommandName(name) {
				c.loadErr = fmt.Errorf("%w: bad macro name %q", ErrLoadFailed, name)
				return
			}
			if msg := latex.Check(body); msg != "" {
				c.loadErr = fmt.Errorf("%w: macro \\%s: %s", ErrLoadFailed, name, msg)
				return
			}
		}

		c.state.Store(int32(Loaded))
	})
	return c.loadErr
}

// isCommandName reports whether s is a valid command name (letters only).
func isCommandName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isASCIILetter(s[i]) {
			return false
		}
	}
	return true
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// expand applies the merged macro tables (engine table first, then the
// per-call table, which wins on conflicts) to src. Expansion is single-pass:
// macro bodies are not re-expanded, so the result is bounded.
func (c *backendCore) expand(src string, callMacros map[string]string) string {
	if len(c.macros) == 0 && len(callMacros) == 0 {
		return src
	}

	lookup := func(name string) (string, bool) {
		if body, ok := callMacros[name]; ok {
			return body, true
		}
		body, ok := c.macros[name]
		return body, ok
	}

	var out []byte
	for i := 0; i < len(src); i++ {
		if src[i] != '\\' {
			out = append(out, src[i])
			continue
		}
		j := i + 1
		for j < len(src) && isASCIILetter(src[j]) {
			j++
		}
		if j == i+1 {
			// Symbol escape: copy the pair untouched.
			out = append(out, src[i])
			if j < len(src) {
				out = append(out, src[j])
				i = j
			}
			continue
		}
		name := src[i+1 : j]
		if body, ok := lookup(name); ok {
			out = append(out, body...)
		} else {
			out = append(out, src[i:j]...)
		}
		i = j - 1
	}
	return string(out)
}

// checkMarkup enforces ThrowOnError semantics: structural problems and
// unknown commands become errors instead of rendered error text.
func checkMarkup(src string) error {
	if msg := latex.Check(src); msg != "" {
		return fmt.Errorf("%w: %s", ErrBadMarkup, msg)
	}
	for _, cmd := range latex.Commands(src) {
		if !latex.IsKnownCommand(cmd) {
			return fmt.Errorf("%w: unknown command \\%s", ErrBadMarkup, cmd)
		}
	}
	return nil
}

// escape HTML-escapes rendered source.
func escape(src string) string {
	return html.EscapeString(src)
}

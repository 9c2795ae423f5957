package lint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultRuleTimeout bounds one check invocation.
const DefaultRuleTimeout = 100 * time.Millisecond

// ErrNoCheckFunction is returned when a script does not define check().
var ErrNoCheckFunction = fmt.Errorf("script does not define a check function")

// rule is one loaded script: its name and its check function.
type rule struct {
	name string
	fn   *lua.LFunction
}

// Runner owns a sandboxed Lua state and the rules loaded into it. The state
// is not goroutine-safe; the runner serializes all access.
type Runner struct {
	mu      sync.Mutex
	state   *lua.LState
	rules   []rule
	timeout time.Duration
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRuleTimeout bounds how long one rule may run.
func WithRuleTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewRunner creates a runner with an empty rule set.
func NewRunner(opts ...RunnerOption) *Runner {
	L := lua.NewState()
	sandbox(L)
	r := &Runner{state: L, timeout: DefaultRuleTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// sandbox removes the escape hatches: script loading, file and process
// access, and on-disk module resolution.
func sandbox(L *lua.LState) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetGlobal("os", lua.LNil)
	L.SetGlobal("io", lua.LNil)

	if pkg, ok := L.GetGlobal("package").(*lua.LTable); ok {
		L.SetField(pkg, "path", lua.LString(""))
		L.SetField(pkg, "cpath", lua.LString(""))
	}
}

// LoadScript compiles source and registers its check function under name.
func (r *Runner) LoadScript(name, source string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// A script communicates through one global; clear it first so a
	// script that defines nothing cannot inherit its predecessor's.
	r.state.SetGlobal("check", lua.LNil)

	if err := r.state.DoString(source); err != nil {
		return fmt.Errorf("loading rule %s: %w", name, err)
	}

	fn, ok := r.state.GetGlobal("check").(*lua.LFunction)
	if !ok {
		return fmt.Errorf("loading rule %s: %w", name, ErrNoCheckFunction)
	}
	r.state.SetGlobal("check", lua.LNil)

	r.rules = append(r.rules, rule{name: name, fn: fn})
	return nil
}

// LoadFile loads a rule script from disk, named after its base filename.
func (r *Runner) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading rule %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return r.LoadScript(name, string(data))
}

// LoadFiles loads every listed script, stopping at the first failure.
func (r *Runner) LoadFiles(paths []string) error {
	for _, p := range paths {
		if err := r.LoadFile(p); err != nil {
			return err
		}
	}
	return nil
}

// RuleCount returns the number of loaded rules.
func (r *Runner) RuleCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rules)
}

// Check runs every rule against src and returns the combined findings,
// each prefixed with its rule name. A rule that fails at runtime
// contributes its error as a finding rather than aborting the pass.
// The signature matches what sessions accept as a lint pass.
func (r *Runner) Check(src string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var findings []string
	for _, rl := range r.rules {
		out, err := r.callRule(rl, src)
		if err != nil {
			findings = append(findings, fmt.Sprintf("%s: rule error: %v", rl.name, err))
			continue
		}
		for _, msg := range out {
			findings = append(findings, fmt.Sprintf("%s: %s", rl.name, msg))
		}
	}
	return findings
}

// callRule invokes one check function under the rule timeout and collects
// its string results.
func (r *Runner) callRule(rl rule, src string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	L := r.state
	L.SetContext(ctx)
	defer L.RemoveContext()

	if err := L.CallByParam(lua.P{Fn: rl.fn, NRet: 1, Protect: true}, lua.LString(src)); err != nil {
		return nil, err
	}
	ret := L.Get(-1)
	L.Pop(1)

	switch v := ret.(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LString:
		return []string{string(v)}, nil
	case *lua.LTable:
		var out []string
		v.ForEach(func(_, val lua.LValue) {
			if s, ok := val.(lua.LString); ok {
				out = append(out, string(s))
			}
		})
		return out, nil
	default:
		return nil, fmt.Errorf("check returned %s, want table or string", ret.Type())
	}
}

// Close releases the Lua state. The runner must not be used afterwards.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Close()
}

package render

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/mathseek/internal/latex"
)

// Result is the structured outcome of one Adapter render. Err is a
// descriptive string rather than an error value: render failures are
// session state, not control flow.
type Result struct {
	Success    bool
	HTML       string
	Err        string
	RenderTime time.Duration
}

// Adapter fronts the engine pair. It owns the load-wait protocol,
// per-backend input normalization, and cross-backend fallback, and it
// measures render time for every invocation regardless of outcome.
//
// An Adapter is intended to be constructed once per process and shared
// read-only by all sessions.
type Adapter struct {
	engines      map[Kind]Engine
	loadTimeout  time.Duration
	pollInterval time.Duration
	style        latex.DelimiterStyle
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithLoadTimeout sets the hard ceiling for waiting on an engine load.
func WithLoadTimeout(d time.Duration) AdapterOption {
	return func(a *Adapter) {
		if d > 0 {
			a.loadTimeout = d
		}
	}
}

// WithPollInterval sets the loaded-flag polling interval.
func WithPollInterval(d time.Duration) AdapterOption {
	return func(a *Adapter) {
		if d > 0 {
			a.pollInterval = d
		}
	}
}

// WithDelimiterStyle sets the delimiter pair used when wrapping input for
// the MathJax backend.
func WithDelimiterStyle(style latex.DelimiterStyle) AdapterOption {
	return func(a *Adapter) {
		a.style = style
	}
}

// NewAdapter creates an adapter over the given engines, keyed by Kind.
// Later engines with a duplicate kind replace earlier ones.
func NewAdapter(engines []Engine, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		engines:      make(map[Kind]Engine, len(engines)),
		loadTimeout:  10 * time.Second,
		pollInterval: 50 * time.Millisecond,
		style:        latex.Dollar,
	}
	for _, e := range engines {
		a.engines[e.Kind()] = e
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Engine returns the registered engine for kind, or nil.
func (a *Adapter) Engine(kind Kind) Engine {
	return a.engines[kind]
}

// StartLoading begins loading every registered engine in the background.
func (a *Adapter) StartLoading(ctx context.Context) {
	for _, e := range a.engines {
		if !e.IsLoaded() {
			go func(e Engine) { _ = e.Load(ctx) }(e)
		}
	}
}

// WaitForEngine polls the engine's loaded flag until it is set or the
// timeout elapses. It returns a boolean and never an error; it does not
// itself trigger loading.
func (a *Adapter) WaitForEngine(ctx context.Context, kind Kind, timeout time.Duration) bool {
	eng, ok := a.engines[kind]
	if !ok {
		return false
	}
	if eng.IsLoaded() {
		return true
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(a.pollInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			return eng.IsLoaded()
		case <-tick.C:
			if eng.IsLoaded() {
				return true
			}
		}
	}
}

// Render renders src on the requested engine, falling back to the other
// engine on failure. Empty input short-circuits to an empty success without
// touching any backend. The result always carries the measured time.
func (a *Adapter) Render(ctx context.Context, src string, kind Kind, opts Options) Result {
	start := time.Now()
	finish := func(r Result) Result {
		r.RenderTime = time.Since(start)
		return r
	}

	if latex.IsBlank(src) {
		return finish(Result{Success: true})
	}

	html, err := a.renderOn(ctx, kind, src, opts)
	if err == nil {
		return finish(Result{Success: true, HTML: html})
	}

	other := kind.Other()
	html, fallbackErr := a.renderOn(ctx, other, src, opts)
	if fallbackErr == nil {
		return finish(Result{Success: true, HTML: html})
	}

	return finish(Result{
		Err: fmt.Sprintf("%s: %v; %s fallback: %v", kind, err, other, fallbackErr),
	})
}

// renderOn ensures the engine is loaded, normalizes the input for its
// contract, and renders.
func (a *Adapter) renderOn(ctx context.Context, kind Kind, src string, opts Options) (string, error) {
	eng, ok := a.engines[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	if err := a.ensureLoaded(ctx, eng); err != nil {
		return "", err
	}

	switch kind {
	case MathJax:
		src = latex.Wrap(src, opts.DisplayMode, a.style)
	default:
		src = latex.Strip(src)
	}
	return eng.Render(ctx, src, opts)
}

// ensureLoaded triggers a background load if needed and waits for the
// loaded flag up to the adapter's timeout. A timeout and an explicit load
// failure are reported identically.
func (a *Adapter) ensureLoaded(ctx context.Context, eng Engine) error {
	if eng.IsLoaded() {
		return nil
	}

	loadErr := make(chan error, 1)
	go func() { loadErr <- eng.Load(ctx) }()

	deadline := time.NewTimer(a.loadTimeout)
	defer deadline.Stop()
	tick := time.NewTicker(a.pollInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-loadErr:
			if err != nil {
				return fmt.Errorf("%s: %w", eng.Kind(), err)
			}
			if eng.IsLoaded() {
				return nil
			}
		case <-deadline.C:
			if eng.IsLoaded() {
				return nil
			}
			return fmt.Errorf("%s: %w after %s", eng.Kind(), ErrNotLoaded, a.loadTimeout)
		case <-tick.C:
			if eng.IsLoaded() {
				return nil
			}
		}
	}
}

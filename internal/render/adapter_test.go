package render

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/mathseek/internal/latex"
)

// fakeEngine is a scriptable engine double: load delay, load failure, and
// per-call render failures are all configurable from tests.
type fakeEngine struct {
	kind      Kind
	loaded    atomic.Bool
	loadDelay time.Duration
	loadErr   error
	renderErr error
	calls     atomic.Int32
	lastSrc   atomic.Value
}

func newFakeEngine(kind Kind) *fakeEngine {
	return &fakeEngine{kind: kind}
}

func (f *fakeEngine) Kind() Kind     { return f.kind }
func (f *fakeEngine) IsLoaded() bool { return f.loaded.Load() }

func (f *fakeEngine) Load(ctx context.Context) error {
	if f.loadDelay > 0 {
		select {
		case <-time.After(f.loadDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loaded.Store(true)
	return nil
}

func (f *fakeEngine) Render(_ context.Context, src string, _ Options) (string, error) {
	f.calls.Add(1)
	f.lastSrc.Store(src)
	if f.renderErr != nil {
		return "", f.renderErr
	}
	return "<" + f.kind.String() + ">" + src, nil
}

func (f *fakeEngine) last() string {
	s, _ := f.lastSrc.Load().(string)
	return s
}

func newTestAdapter(primary, secondary *fakeEngine) *Adapter {
	return NewAdapter(
		[]Engine{primary, secondary},
		WithLoadTimeout(100*time.Millisecond),
		WithPollInterval(5*time.Millisecond),
	)
}

func TestAdapterRender(t *testing.T) {
	ctx := context.Background()

	t.Run("success on primary", func(t *testing.T) {
		ka, mj := newFakeEngine(KaTeX), newFakeEngine(MathJax)
		a := newTestAdapter(ka, mj)

		res := a.Render(ctx, "x^2", KaTeX, Options{})
		if !res.Success {
			t.Fatalf("Render failed: %s", res.Err)
		}
		if mj.calls.Load() != 0 {
			t.Error("secondary engine invoked although primary succeeded")
		}
	})

	t.Run("empty input short-circuits", func(t *testing.T) {
		ka, mj := newFakeEngine(KaTeX), newFakeEngine(MathJax)
		a := newTestAdapter(ka, mj)

		res := a.Render(ctx, "   ", KaTeX, Options{})
		if !res.Success || res.HTML != "" {
			t.Errorf("Result = %+v, want empty success", res)
		}
		if ka.calls.Load() != 0 || mj.calls.Load() != 0 {
			t.Error("no backend may be invoked for empty input")
		}
	})

	t.Run("fallback to secondary", func(t *testing.T) {
		ka, mj := newFakeEngine(KaTeX), newFakeEngine(MathJax)
		ka.renderErr = errors.New("parse exploded")
		a := newTestAdapter(ka, mj)

		res := a.Render(ctx, "x", KaTeX, Options{})
		if !res.Success {
			t.Fatalf("Render failed: %s", res.Err)
		}
		if mj.calls.Load() != 1 {
			t.Errorf("secondary calls = %d, want 1", mj.calls.Load())
		}
	})

	t.Run("double failure names both engines", func(t *testing.T) {
		ka, mj := newFakeEngine(KaTeX), newFakeEngine(MathJax)
		ka.renderErr = errors.New("katex boom")
		mj.renderErr = errors.New("mathjax boom")
		a := newTestAdapter(ka, mj)

		res := a.Render(ctx, "x", KaTeX, Options{})
		if res.Success {
			t.Fatal("Render succeeded, want failure")
		}
		if !strings.Contains(res.Err, "katex boom") || !strings.Contains(res.Err, "mathjax boom") {
			t.Errorf("Err = %q, want both engine messages", res.Err)
		}
		if !strings.Contains(res.Err, "katex") || !strings.Contains(res.Err, "mathjax") {
			t.Errorf("Err = %q, want both engine names", res.Err)
		}
	})

	t.Run("render time always measured", func(t *testing.T) {
		ka, mj := newFakeEngine(KaTeX), newFakeEngine(MathJax)
		ka.renderErr = errors.New("x")
		mj.renderErr = errors.New("y")
		a := newTestAdapter(ka, mj)

		for _, src := range []string{"", "x"} {
			res := a.Render(ctx, src, KaTeX, Options{})
			if res.RenderTime < 0 {
				t.Errorf("RenderTime = %v for %q, want >= 0", res.RenderTime, src)
			}
		}
	})
}

func TestAdapterNormalization(t *testing.T) {
	ctx := context.Background()

	t.Run("katex input stripped", func(t *testing.T) {
		ka, mj := newFakeEngine(KaTeX), newFakeEngine(MathJax)
		a := newTestAdapter(ka, mj)

		a.Render(ctx, "$$x^2$$", KaTeX, Options{})
		if got := ka.last(); got != "x^2" {
			t.Errorf("katex received %q, want stripped x^2", got)
		}
	})

	t.Run("mathjax input wrapped", func(t *testing.T) {
		ka, mj := newFakeEngine(KaTeX), newFakeEngine(MathJax)
		a := newTestAdapter(ka, mj)

		a.Render(ctx, "x^2", MathJax, Options{DisplayMode: latex.Block})
		if got := mj.last(); got != "$$x^2$$" {
			t.Errorf("mathjax received %q, want $$x^2$$", got)
		}
	})

	t.Run("mathjax wrap is idempotent", func(t *testing.T) {
		ka, mj := newFakeEngine(KaTeX), newFakeEngine(MathJax)
		a := newTestAdapter(ka, mj)

		a.Render(ctx, "$x^2$", MathJax, Options{DisplayMode: latex.Inline})
		if got := mj.last(); got != "$x^2$" {
			t.Errorf("mathjax received %q, want single delimiter layer", got)
		}
	})
}

func TestAdapterLoadWait(t *testing.T) {
	ctx := context.Background()

	t.Run("awaits slow load", func(t *testing.T) {
		ka, mj := newFakeEngine(KaTeX), newFakeEngine(MathJax)
		ka.loadDelay = 20 * time.Millisecond
		a := newTestAdapter(ka, mj)

		res := a.Render(ctx, "x", KaTeX, Options{})
		if !res.Success {
			t.Fatalf("Render failed: %s", res.Err)
		}
	})

	t.Run("load timeout falls back then reports", func(t *testing.T) {
		ka, mj := newFakeEngine(KaTeX), newFakeEngine(MathJax)
		ka.loadDelay = time.Second // far past the 100ms adapter timeout
		mj.loadErr = errors.New("cdn unreachable")
		a := newTestAdapter(ka, mj)

		res := a.Render(ctx, "x", KaTeX, Options{})
		if res.Success {
			t.Fatal("Render succeeded, want failure")
		}
		if !strings.Contains(res.Err, "katex") || !strings.Contains(res.Err, "cdn unreachable") {
			t.Errorf("Err = %q, want timeout plus fallback failure", res.Err)
		}
	})
}

func TestWaitForEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("already loaded", func(t *testing.T) {
		ka, mj := newFakeEngine(KaTeX), newFakeEngine(MathJax)
		ka.loaded.Store(true)
		a := newTestAdapter(ka, mj)

		if !a.WaitForEngine(ctx, KaTeX, 10*time.Millisecond) {
			t.Error("WaitForEngine = false for loaded engine")
		}
	})

	t.Run("becomes loaded while polling", func(t *testing.T) {
		ka, mj := newFakeEngine(KaTeX), newFakeEngine(MathJax)
		a := newTestAdapter(ka, mj)

		go func() {
			time.Sleep(15 * time.Millisecond)
			ka.loaded.Store(true)
		}()
		if !a.WaitForEngine(ctx, KaTeX, 200*time.Millisecond) {
			t.Error("WaitForEngine = false, want true after load completes")
		}
	})

	t.Run("times out without loading", func(t *testing.T) {
		ka, mj := newFakeEngine(KaTeX), newFakeEngine(MathJax)
		a := newTestAdapter(ka, mj)

		if a.WaitForEngine(ctx, KaTeX, 20*time.Millisecond) {
			t.Error("WaitForEngine = true for never-loading engine")
		}
	})

	t.Run("unknown engine", func(t *testing.T) {
		a := NewAdapter(nil)
		if a.WaitForEngine(ctx, KaTeX, time.Millisecond) {
			t.Error("WaitForEngine = true for unregistered engine")
		}
	})
}

func TestStartLoading(t *testing.T) {
	ka, mj := newFakeEngine(KaTeX), newFakeEngine(MathJax)
	a := newTestAdapter(ka, mj)

	a.StartLoading(context.Background())
	if !a.WaitForEngine(context.Background(), KaTeX, 100*time.Millisecond) {
		t.Error("katex did not load")
	}
	if !a.WaitForEngine(context.Background(), MathJax, 100*time.Millisecond) {
		t.Error("mathjax did not load")
	}
}

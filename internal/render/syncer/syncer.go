package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/dshills/mathseek/internal/latex"
	"github.com/dshills/mathseek/internal/render"
)

// State is the controller's position in its render lifecycle.
type State int

const (
	// Idle means no render is pending or running.
	Idle State = iota

	// Pending means the debounce timer is armed.
	Pending

	// Rendering means a render is in flight.
	Rendering

	// Errored means the last render failed; the previous output is kept.
	Errored
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Rendering:
		return "rendering"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// DefaultDelay is the debounce quiet period.
const DefaultDelay = 300 * time.Millisecond

// Controller debounces edits into render operations. All methods are safe
// for concurrent use; the result callback is never invoked with the
// controller lock held.
type Controller struct {
	mu sync.Mutex

	adapter *render.Adapter
	clock   Clock
	delay   time.Duration
	ctx     context.Context

	text     string
	engine   render.Kind
	mode     latex.DisplayMode
	throw    bool
	macros   map[string]string
	autoSync bool

	// Single-slot pending timer. seq invalidates stale callbacks.
	timer Timer
	seq   uint64

	state    State
	inFlight bool
	followUp bool
	done     chan struct{}

	html       string
	renderErr  string
	lastResult render.Result

	onResult func(render.Result)
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock substitutes the scheduling clock.
func WithClock(c Clock) Option {
	return func(s *Controller) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithDelay sets the debounce quiet period.
func WithDelay(d time.Duration) Option {
	return func(s *Controller) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithEngine sets the initial rendering backend.
func WithEngine(kind render.Kind) Option {
	return func(s *Controller) { s.engine = kind }
}

// WithDisplayMode sets the initial display mode.
func WithDisplayMode(mode latex.DisplayMode) Option {
	return func(s *Controller) { s.mode = mode }
}

// WithThrowOnError makes renders reject malformed markup.
func WithThrowOnError(throw bool) Option {
	return func(s *Controller) { s.throw = throw }
}

// WithMacros sets the macro table passed to every render.
func WithMacros(m map[string]string) Option {
	return func(s *Controller) { s.macros = m }
}

// WithAutoSync sets the initial auto-sync flag.
func WithAutoSync(enabled bool) Option {
	return func(s *Controller) { s.autoSync = enabled }
}

// WithResultHandler registers a callback invoked after every completed
// render, successful or not.
func WithResultHandler(f func(render.Result)) Option {
	return func(s *Controller) { s.onResult = f }
}

// New creates a controller over the adapter.
func New(adapter *render.Adapter, opts ...Option) *Controller {
	s := &Controller{
		adapter:  adapter,
		clock:    NewClock(),
		delay:    DefaultDelay,
		ctx:      context.Background(),
		autoSync: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpdateText replaces the tracked source. With auto-sync enabled it
// (re)arms the debounce timer; a timer armed by an earlier edit is
// discarded, so a burst of edits yields one render using the last value.
func (s *Controller) UpdateText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.text = text
	if s.autoSync {
		s.armLocked()
	}
}

// ManualSync cancels any pending timer and renders immediately, blocking
// until the result is available. A call arriving while a render is already
// in flight joins that render and returns its outcome instead of starting a
// second one.
func (s *Controller) ManualSync() render.Result {
	s.mu.Lock()
	s.cancelTimerLocked()

	if s.inFlight {
		done := s.done
		s.mu.Unlock()
		<-done
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.lastResult
	}

	done := s.startRenderLocked()
	s.mu.Unlock()
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResult
}

// ForceRender is ManualSync under its UI-facing name.
func (s *Controller) ForceRender() render.Result {
	return s.ManualSync()
}

// CancelPending discards any armed debounce timer without rendering. An
// in-flight render is unaffected; only its successors are superseded.
func (s *Controller) CancelPending() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelTimerLocked()
	if !s.inFlight && s.state == Pending {
		s.state = Idle
	}
}

// SetAutoSync enables or disables automatic rendering. Enabling it with
// non-empty current content triggers an immediate render.
func (s *Controller) SetAutoSync(enabled bool) {
	s.mu.Lock()
	wasEnabled := s.autoSync
	s.autoSync = enabled
	if !enabled {
		s.cancelTimerLocked()
		if !s.inFlight {
			s.state = Idle
		}
		s.mu.Unlock()
		return
	}
	trigger := !wasEnabled && !latex.IsBlank(s.text)
	s.mu.Unlock()

	if trigger {
		s.ManualSync()
	}
}

// SetEngine switches the rendering backend. With auto-sync on, the change
// re-arms a debounced render.
func (s *Controller) SetEngine(kind render.Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == kind {
		return
	}
	s.engine = kind
	if s.autoSync {
		s.armLocked()
	}
}

// SetDisplayMode switches inline/block layout. With auto-sync on, the
// change re-arms a debounced render.
func (s *Controller) SetDisplayMode(mode latex.DisplayMode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == mode {
		return
	}
	s.mode = mode
	if s.autoSync {
		s.armLocked()
	}
}

// Accessors

// Text returns the tracked source.
func (s *Controller) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// State returns the controller state.
func (s *Controller) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HTML returns the last successfully rendered output. A failed render
// never blanks it.
func (s *Controller) HTML() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.html
}

// RenderErr returns the last render failure, or "".
func (s *Controller) RenderErr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderErr
}

// LastRenderTime returns the duration of the most recent render.
func (s *Controller) LastRenderTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResult.RenderTime
}

// Engine returns the selected backend.
func (s *Controller) Engine() render.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine
}

// DisplayMode returns the selected layout.
func (s *Controller) DisplayMode() latex.DisplayMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// AutoSync reports whether automatic rendering is enabled.
func (s *Controller) AutoSync() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoSync
}

// Internals

// armLocked (re)arms the single-slot debounce timer. The sequence number
// invalidates a timer that was already firing when it was superseded.
func (s *Controller) armLocked() {
	s.seq++
	currentSeq := s.seq

	if s.timer != nil {
		s.timer.Stop()
	}
	if s.state != Rendering {
		s.state = Pending
	}

	s.timer = s.clock.AfterFunc(s.delay, func() {
		s.onTimer(currentSeq)
	})
}

// cancelTimerLocked discards any pending timer with no side effects.
func (s *Controller) cancelTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.seq++
}

// onTimer runs when the debounce quiet period elapses.
func (s *Controller) onTimer(seq uint64) {
	s.mu.Lock()
	if seq != s.seq {
		// Superseded while firing; discard.
		s.mu.Unlock()
		return
	}
	s.timer = nil

	if s.inFlight {
		// Never two renders in flight: run again when the current one
		// completes, against the then-latest text.
		s.followUp = true
		s.mu.Unlock()
		return
	}

	s.startRenderLocked()
	s.mu.Unlock()
}

// startRenderLocked begins an asynchronous render of the current text and
// returns the channel closed on completion. Caller holds the lock.
func (s *Controller) startRenderLocked() chan struct{} {
	s.inFlight = true
	s.state = Rendering
	done := make(chan struct{})
	s.done = done

	text := s.text
	engine := s.engine
	opts := render.Options{
		DisplayMode:  s.mode,
		ThrowOnError: s.throw,
		Macros:       s.macros,
	}

	go func() {
		res := s.adapter.Render(s.ctx, text, engine, opts)
		s.applyResult(res)
		close(done)
	}()
	return done
}

// applyResult records a completed render. The result is applied even when
// newer edits arrived meanwhile: the in-flight render was not preemptible,
// and the newer text is never rolled back - it simply renders next.
func (s *Controller) applyResult(res render.Result) {
	s.mu.Lock()
	s.lastResult = res
	if res.Success {
		s.html = res.HTML
		s.renderErr = ""
		s.state = Idle
	} else {
		// Keep the previous output visible.
		s.renderErr = res.Err
		s.state = Errored
	}
	s.inFlight = false

	runFollowUp := s.followUp
	s.followUp = false
	if runFollowUp {
		s.startRenderLocked()
	}

	handler := s.onResult
	s.mu.Unlock()

	if handler != nil {
		handler(res)
	}
}

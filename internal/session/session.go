package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/mathseek/internal/latex"
	"github.com/dshills/mathseek/internal/render"
	"github.com/dshills/mathseek/internal/render/syncer"
)

// Errors returned by save operations.
var (
	ErrNotModified    = errors.New("nothing to save")
	ErrInvalidContent = errors.New("content failed validation")
	ErrSaveInFlight   = errors.New("save already in progress")
)

// LintFunc is an optional extra validation pass. It receives LaTeX source
// and returns findings; an empty slice means clean.
type LintFunc func(src string) []string

// core carries the state shared by both session variants: identity,
// re-entrancy flags, the latest syntax error, validation configuration,
// and the render controller.
type core struct {
	mu sync.Mutex

	id       string
	ctrl     *syncer.Controller
	notifier *notifier

	strict bool
	lint   LintFunc

	syntaxError string
	validating  bool
	saving      bool
}

func newCore(adapter *render.Adapter, cfg config) *core {
	c := &core{
		id:       uuid.New().String(),
		notifier: newNotifier(),
		strict:   cfg.strict,
		lint:     cfg.lint,
	}
	c.ctrl = syncer.New(adapter, append(cfg.syncerOpts,
		syncer.WithResultHandler(func(render.Result) { c.notifier.notify() }),
	)...)
	return c
}

// config collects constructor options shared by both variants.
type config struct {
	strict     bool
	lint       LintFunc
	style      latex.DelimiterStyle
	syncerOpts []syncer.Option
}

// Option configures a session.
type Option func(*config)

// WithStrictValidation makes Validate use the command allow-list.
func WithStrictValidation(strict bool) Option {
	return func(c *config) { c.strict = strict }
}

// WithLint registers an extra validation pass run after the built-in
// checker.
func WithLint(f LintFunc) Option {
	return func(c *config) { c.lint = f }
}

// WithDelimiterStyle sets the delimiter convention used when composing
// document markup for rendering.
func WithDelimiterStyle(style latex.DelimiterStyle) Option {
	return func(c *config) { c.style = style }
}

// WithSyncerOptions forwards options to the render controller.
func WithSyncerOptions(opts ...syncer.Option) Option {
	return func(c *config) { c.syncerOpts = append(c.syncerOpts, opts...) }
}

// ID returns the session's unique identifier.
func (c *core) ID() string {
	return c.id
}

// Subscribe registers an observer for state changes.
func (c *core) Subscribe(obs Observer) *Subscription {
	return c.notifier.subscribe(obs)
}

// checkSyntax runs the configured checker over one source string.
func (c *core) checkSyntax(src string) string {
	if c.strict {
		return latex.CheckStrict(src)
	}
	return latex.Check(src)
}

// lintFindings runs the optional lint pass.
func (c *core) lintFindings(src string) []string {
	if c.lint == nil || latex.IsBlank(src) {
		return nil
	}
	return c.lint(src)
}

// Render commands, delegated to the controller.

// Render triggers rendering: forced renders run immediately, otherwise the
// current text is re-submitted through the debounce path.
func (c *core) Render(force bool) {
	if force {
		c.ctrl.ForceRender()
		return
	}
	c.ctrl.UpdateText(c.ctrl.Text())
}

// SetEngine switches the rendering backend.
func (c *core) SetEngine(kind render.Kind) {
	c.ctrl.SetEngine(kind)
	c.notifier.notify()
}

// SetDisplayMode switches inline/block layout.
func (c *core) SetDisplayMode(mode latex.DisplayMode) {
	c.ctrl.SetDisplayMode(mode)
	c.notifier.notify()
}

// SetAutoSync enables or disables automatic rendering.
func (c *core) SetAutoSync(enabled bool) {
	c.ctrl.SetAutoSync(enabled)
	c.notifier.notify()
}

// RenderedHTML returns the last successful render output.
func (c *core) RenderedHTML() string {
	return c.ctrl.HTML()
}

// RenderError returns the last render failure, or "".
func (c *core) RenderError() string {
	return c.ctrl.RenderErr()
}

// LastRenderTime returns the duration of the most recent render.
func (c *core) LastRenderTime() time.Duration {
	return c.ctrl.LastRenderTime()
}

// joinFindings folds a findings list into the session's single
// syntax-error field.
func joinFindings(findings []string) string {
	return strings.Join(findings, "; ")
}

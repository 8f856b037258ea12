// Package page composes the behaviour managers for one rendered document.
// Every component shares the context's event bus; nothing is global.
package page

import (
	"context"

	"github.com/entrhq/pagekit/pkg/captcha"
	"github.com/entrhq/pagekit/pkg/config"
	"github.com/entrhq/pagekit/pkg/dom"
	"github.com/entrhq/pagekit/pkg/dropdown"
	"github.com/entrhq/pagekit/pkg/logging"
	"github.com/entrhq/pagekit/pkg/pagination"
	"github.com/entrhq/pagekit/pkg/strength"
	"github.com/entrhq/pagekit/pkg/tabs"
	"github.com/entrhq/pagekit/pkg/theme"
	"github.com/entrhq/pagekit/pkg/toast"
	"github.com/entrhq/pagekit/pkg/types"
	"github.com/entrhq/pagekit/pkg/validation"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("page")
	if err != nil {
		debugLog.Warnf("Failed to initialize page logger, using stderr fallback: %v", err)
	}
}

// Options supply the collaborators of a Context. Every field is optional.
type Options struct {
	Config   *config.Manager
	Bindings *Bindings
	Scheme   theme.Scheme
	Clock    toast.Clock
	Strength strength.Source
}

// Context holds the managers bound to one document. A Context is owned by
// one goroutine: timers never touch the document themselves but queue their
// work, and the owner runs it with Flush when Ready fires.
type Context struct {
	Doc  *dom.Document
	Path string
	Bus  *types.Bus

	Dropdowns  *dropdown.Manager
	Toasts     *toast.Manager
	Theme      *theme.Manager
	Tabs       *tabs.Switcher
	Captcha    *captcha.Gate
	Forms      *validation.Gate
	Pagination *pagination.Helper
	Strength   *strength.Checker

	loop   *toast.Loop
	booted map[string]bool
	order  []string
}

// New wires every manager to doc. Call Boot to start the behaviours bound
// to path.
func New(doc *dom.Document, path string, opts Options) *Context {
	bus := types.NewBus()
	emit := bus.Emit

	loop := toast.NewLoop(opts.Clock)
	var clock toast.Clock = loop

	policy := toast.DefaultPolicy()
	var storage theme.Storage = theme.NewMemoryStorage()
	paging := pagination.DefaultOptions()
	if opts.Config != nil {
		if ui, ok := section[*config.UISection](opts.Config, config.SectionIDUI); ok {
			policy = toast.PolicyFromConfig(ui)
		}
		if th, ok := section[*config.ThemeSection](opts.Config, config.SectionIDTheme); ok {
			storage = th
		}
		if pg, ok := section[*config.PaginationSection](opts.Config, config.SectionIDPagination); ok {
			paging = pagination.OptionsFromConfig(pg.Snapshot())
		}
	}

	toasts := toast.NewManager(emit, toast.WithPolicy(policy), toast.WithClock(clock), toast.WithDocument(doc))
	helper := pagination.NewHelper(paging)
	helper.Interactions.SetEmitter(emit)

	return &Context{
		Doc:        doc,
		Path:       path,
		Bus:        bus,
		Dropdowns:  dropdown.NewManager(emit),
		Toasts:     toasts,
		Theme:      theme.NewManager(doc, storage, opts.Scheme, emit),
		Tabs:       tabs.NewSwitcher(doc, emit),
		Captcha:    captcha.NewGate(toasts, clock, emit),
		Forms:      validation.NewGate(toasts, emit),
		Pagination: helper,
		Strength:   strength.NewChecker(opts.Strength, emit),
		loop:       loop,
		booted:     make(map[string]bool),
	}
}

// Boot starts the behaviours bound to the context path and returns their
// names. Without bindings every behaviour is started.
func (c *Context) Boot(b *Bindings) []string {
	names := allBehaviours
	if b != nil {
		names = b.Behaviours(c.Path)
	}

	for _, name := range names {
		if c.booted[name] {
			continue
		}
		c.boot(name)
		c.booted[name] = true
		c.order = append(c.order, name)
	}
	debugLog.Debugf("booted %v for %s", c.order, c.Path)
	return append([]string(nil), c.order...)
}

var allBehaviours = []string{
	config.BehaviourDropdown,
	config.BehaviourToast,
	config.BehaviourTheme,
	config.BehaviourPagination,
	config.BehaviourTabs,
	config.BehaviourCaptcha,
	config.BehaviourValidation,
	config.BehaviourStrength,
}

func (c *Context) boot(name string) {
	switch name {
	case config.BehaviourDropdown:
		c.Dropdowns.Scan(c.Doc)
	case config.BehaviourToast:
		c.Toasts.Scan(c.Doc)
	case config.BehaviourTheme:
		c.Theme.Init()
	case config.BehaviourPagination:
		for _, container := range c.Doc.QueryClass(pagination.ContainerClass) {
			c.Pagination.Interactions.BindDropdowns(c.Doc, container, c.Dropdowns)
		}
	case config.BehaviourTabs:
		c.Tabs.Init()
	case config.BehaviourCaptcha:
		c.Captcha.Scan(c.Doc)
	}
}

// Booted reports whether behaviour was started.
func (c *Context) Booted(behaviour string) bool {
	return c.booted[behaviour]
}

// HandleClick routes a click to the booted behaviours. Toast dismissal,
// theme menu items and tab buttons consume the click; dropdowns always see
// it so outside clicks close open panels.
func (c *Context) HandleClick(target *dom.Element) {
	if c.booted[config.BehaviourToast] && c.Toasts.HandleClick(target) {
		return
	}
	if c.booted[config.BehaviourTheme] {
		if err := c.Theme.HandleClick(target); err != nil {
			debugLog.Warnf("theme click failed: %v", err)
		}
	}
	if c.booted[config.BehaviourTabs] {
		c.Tabs.HandleClick(target)
	}
	if c.booted[config.BehaviourDropdown] {
		c.Dropdowns.HandleClick(target)
	}
}

// HandleKey routes a key press.
func (c *Context) HandleKey(key string) {
	if c.booted[config.BehaviourDropdown] {
		c.Dropdowns.HandleKey(key)
	}
}

// Submit runs the submit gates bound to the page for form. values is the
// parsed form model passed to validation; it may be nil to skip validation.
func (c *Context) Submit(form *dom.Element, values any) bool {
	if c.booted[config.BehaviourValidation] && values != nil {
		ok, errs := c.Forms.Submit(form.ID(), values)
		validation.MarkFields(form, errs)
		if !ok {
			return false
		}
	}
	if c.booted[config.BehaviourCaptcha] && !c.Captcha.Submit(form) {
		return false
	}
	return true
}

// CheckPassword estimates pw and renders the result into meter.
func (c *Context) CheckPassword(ctx context.Context, pw string, meter *dom.Element) (strength.Result, bool) {
	r, applied := c.Strength.Check(ctx, pw)
	if applied {
		strength.UpdateMeter(meter, r)
	}
	return r, applied
}

// Ready signals that timer work is queued for Flush.
func (c *Context) Ready() <-chan struct{} {
	return c.loop.Ready()
}

// Flush runs queued timer work on the calling goroutine and returns how many
// callbacks ran.
func (c *Context) Flush() int {
	return c.loop.Flush()
}

// Run drains timer work until ctx is done. Only use it when nothing else
// touches the context concurrently.
func (c *Context) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.Ready():
			c.Flush()
		}
	}
}

// Close stops pending timers.
func (c *Context) Close() {
	c.Toasts.Close()
	c.Captcha.Close()
}

func section[T config.Section](m *config.Manager, id string) (T, bool) {
	var zero T
	s, ok := m.GetSection(id)
	if !ok {
		return zero, false
	}
	typed, ok := s.(T)
	return typed, ok
}

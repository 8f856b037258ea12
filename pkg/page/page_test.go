package page

import (
	"context"
	"testing"
	"time"

	"github.com/entrhq/pagekit/pkg/config"
	"github.com/entrhq/pagekit/pkg/dom"
	"github.com/entrhq/pagekit/pkg/theme"
	"github.com/entrhq/pagekit/pkg/toast"
	"github.com/entrhq/pagekit/pkg/types"
	"github.com/entrhq/pagekit/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindings_Behaviours(t *testing.T) {
	b := DefaultBindings()

	tests := []struct {
		path string
		want []string
	}{
		{"/", []string{"dropdown", "toast", "theme"}},
		{"/about", []string{"dropdown", "toast", "theme"}},
		{"/admin/logs", []string{"dropdown", "toast", "theme", "pagination", "tabs"}},
		{"/auth/register", []string{"dropdown", "toast", "theme", "validation", "strength", "captcha"}},
		{"/auth/reset-password/abc123", []string{"dropdown", "toast", "theme", "validation", "strength", "captcha"}},
		{"/auth/reset-password/abc/def", []string{"dropdown", "toast", "theme"}},
		{"/contact", []string{"dropdown", "toast", "theme", "validation", "captcha"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Behaviours(tt.path))
		})
	}

	assert.True(t, b.Has("/admin/users/4", config.BehaviourTabs))
	assert.False(t, b.Has("/contact", config.BehaviourTabs))
}

func TestNewBindings_InvalidPattern(t *testing.T) {
	_, err := NewBindings([]config.BindingRule{{Pattern: "/[", Behaviours: []string{"toast"}}})
	assert.Error(t, err)
}

const contactPage = `<html><body>
<button id="menu-btn" data-dropdown-toggle="menu">Menu</button>
<div id="menu" class="hidden"><a id="menu-link">Profile</a></div>
<div id="toast-container"><div data-flash-toast data-category="success"><span>Sent</span><button data-dismiss-toast id="close-toast">x</button></div></div>
<form id="contact">
<input name="name" value="Ada">
<input name="email" value="nope">
<div class="h-captcha"></div>
</form>
<p id="outside">body</p>
</body></html>`

func newContext(t *testing.T, path string) (*Context, *toast.ManualClock, *[]*types.UIEvent) {
	t.Helper()
	cfg, err := config.NewDefaultManager(config.NewMemoryStore())
	require.NoError(t, err)

	clock := toast.NewManualClock(time.Unix(0, 0))
	c := New(dom.MustParse(contactPage), path, Options{Config: cfg, Clock: clock, Scheme: theme.StaticScheme(true)})

	var events []*types.UIEvent
	c.Bus.SubscribeAll(func(e *types.UIEvent) { events = append(events, e) })
	return c, clock, &events
}

func TestContext_BootFollowsBindings(t *testing.T) {
	c, clock, events := newContext(t, "/contact")
	defer c.Close()

	booted := c.Boot(DefaultBindings())
	assert.Equal(t, []string{"dropdown", "toast", "theme", "validation", "captcha"}, booted)
	assert.False(t, c.Booted(config.BehaviourTabs))

	assert.Equal(t, []string{"menu"}, c.Dropdowns.IDs())
	assert.Len(t, c.Toasts.Active(), 1)
	assert.Equal(t, "dark", c.Doc.Root().AttrOr("class", ""), "system preference resolves against the scheme")

	// Booting twice does not rescan.
	assert.Equal(t, booted, c.Boot(DefaultBindings()))
	assert.Len(t, c.Toasts.Active(), 1)

	clock.Advance(5 * time.Second)
	assert.Len(t, c.Toasts.Active(), 1, "expired timers wait for Flush")
	assert.Equal(t, 1, c.Flush())
	assert.Empty(t, c.Toasts.Active())

	var shown int
	for _, e := range *events {
		if e.Type == types.EventTypeToastShown {
			shown++
		}
	}
	assert.Equal(t, 1, shown)
}

func TestContext_HandleClick(t *testing.T) {
	c, _, events := newContext(t, "/contact")
	defer c.Close()
	c.Boot(nil)

	c.HandleClick(c.Doc.ByID("menu-btn"))
	assert.True(t, c.Dropdowns.IsOpen("menu"))

	c.HandleClick(c.Doc.ByID("menu-link"))
	assert.True(t, c.Dropdowns.IsOpen("menu"), "clicks inside the panel keep it open")

	c.HandleClick(c.Doc.ByID("outside"))
	assert.False(t, c.Dropdowns.IsOpen("menu"))

	c.HandleClick(c.Doc.ByID("close-toast"))
	assert.Empty(t, c.Toasts.Active())

	c.HandleClick(c.Doc.ByID("menu-btn"))
	c.HandleKey("Escape")
	assert.False(t, c.Dropdowns.IsOpen("menu"))
	assert.NotEmpty(t, *events)
}

func TestContext_Submit(t *testing.T) {
	c, _, events := newContext(t, "/contact")
	defer c.Close()
	c.Boot(DefaultBindings())
	form := c.Doc.ByID("contact")

	invalid := &validation.ContactForm{Name: "Ada", Email: "nope", Subject: "Hi", Message: "A long enough message"}
	assert.False(t, c.Submit(form, invalid))
	assert.Len(t, form.QueryClass(validation.ErrorMessageClass), 1)

	valid := &validation.ContactForm{Name: "Ada", Email: "ada@example.com", Subject: "Hi", Message: "A long enough message"}
	assert.False(t, c.Submit(form, valid), "captcha still unsolved")
	assert.Empty(t, form.QueryClass(validation.ErrorMessageClass))

	c.Captcha.Solve(form, "token")
	assert.True(t, c.Submit(form, valid))

	var blocked []string
	for _, e := range *events {
		if e.Type == types.EventTypeSubmitBlocked {
			blocked = append(blocked, e.Source)
		}
	}
	assert.Equal(t, []string{"validation", "captcha"}, blocked)
}

func TestContext_CheckPassword(t *testing.T) {
	c, _, _ := newContext(t, "/auth/register")
	defer c.Close()
	c.Boot(DefaultBindings())

	meter := dom.MustParse(`<div id="m"><span class="strength-label"></span></div>`).ByID("m")
	r, applied := c.CheckPassword(context.Background(), "abcdeH1!", meter)
	require.True(t, applied)
	assert.Equal(t, "Very strong", r.Label())
	assert.Equal(t, "Very strong", meter.QueryClass("strength-label")[0].Text())
}

func TestContext_TimersRunOnOwner(t *testing.T) {
	cfg, err := config.NewDefaultManager(config.NewMemoryStore())
	require.NoError(t, err)
	ui, ok := section[*config.UISection](cfg, config.SectionIDUI)
	require.True(t, ok)
	ui.SetToastDelay(20 * time.Millisecond)

	c := New(dom.MustParse(contactPage), "/contact", Options{Config: cfg, Scheme: theme.StaticScheme(false)})
	defer c.Close()
	c.Boot(nil)

	for i := 0; i < 20; i++ {
		c.Toasts.Show("saved", toast.Success)
	}

	deadline := time.After(5 * time.Second)
	for len(c.Toasts.Active()) > 0 || c.Doc.ByID(toast.ContainerID) != nil {
		c.Dropdowns.Toggle("menu")
		_ = c.Doc.String()
		select {
		case <-c.Ready():
			c.Flush()
		case <-deadline:
			t.Fatal("toasts were not removed")
		}
	}
}

package captcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/entrhq/pagekit/pkg/config"
	"github.com/entrhq/pagekit/pkg/dom"
	"github.com/entrhq/pagekit/pkg/toast"
	"github.com/entrhq/pagekit/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockToaster struct {
	shown []string
	cats  []toast.Category
	mu    sync.Mutex
}

func (m *mockToaster) Show(text string, category toast.Category) toast.Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shown = append(m.shown, text)
	m.cats = append(m.cats, category)
	return toast.Toast{Text: text, Category: category}
}

const signUpPage = `<form id="signup">
<input name="username">
<div class="captcha-wrap"><div class="h-captcha" data-sitekey="k" id="signup-captcha"></div></div>
</form>
<form id="login">
<div class="h-captcha"></div>
<textarea name="h-captcha-response"></textarea>
</form>
<form id="contact"><input name="email"></form>
<div class="h-captcha" id="orphan"></div>`

func newTestGate(t *testing.T) (*Gate, *dom.Document, *mockToaster, *toast.ManualClock, *[]*types.UIEvent) {
	t.Helper()
	doc := dom.MustParse(signUpPage)
	toaster := &mockToaster{}
	clock := toast.NewManualClock(time.Unix(0, 0))
	var events []*types.UIEvent
	g := NewGate(toaster, clock, func(e *types.UIEvent) { events = append(events, e) })
	require.Equal(t, 2, g.Scan(doc))
	return g, doc, toaster, clock, &events
}

func TestGate_Scan(t *testing.T) {
	g, doc, _, _, _ := newTestGate(t)

	assert.True(t, g.Required(doc.ByID("signup")))
	assert.False(t, g.Required(doc.ByID("contact")))

	w, ok := g.Widget(doc.ByID("signup"))
	require.True(t, ok)
	assert.Equal(t, "signup-captcha", w.ID)
	assert.Equal(t, "signup", w.FormID)

	generated, ok := g.Widget(doc.ByID("login"))
	require.True(t, ok)
	assert.Regexp(t, `^hcaptcha-[0-9a-f]{9}$`, generated.ID)
}

func TestGate_SubmitBlockedUntilSolved(t *testing.T) {
	g, doc, toaster, clock, events := newTestGate(t)
	form := doc.ByID("signup")

	assert.True(t, g.Submit(doc.ByID("contact")), "forms without a widget pass")

	assert.False(t, g.Submit(form))
	assert.False(t, g.Submit(form))
	assert.Len(t, form.QueryClass(ErrorMsgClass), 1, "inline error is not duplicated")
	assert.Equal(t, []string{MsgRequired, MsgRequired}, toaster.shown)
	assert.Equal(t, toast.Error, toaster.cats[0])
	require.Len(t, *events, 2)
	assert.Equal(t, types.EventTypeSubmitBlocked, (*events)[0].Type)

	clock.Advance(ErrorTimeout)
	assert.Empty(t, form.QueryClass(ErrorMsgClass))

	g.Solve(form, "tok-1")
	assert.True(t, g.Solved(form))
	assert.True(t, g.Submit(form))
	assert.Len(t, form.QueryClass(SuccessMsgClass), 1)
	clock.Advance(SuccessTimeout)
	assert.Empty(t, form.QueryClass(SuccessMsgClass))
}

func TestGate_SolveClearsError(t *testing.T) {
	g, doc, _, _, _ := newTestGate(t)
	form := doc.ByID("signup")

	g.Submit(form)
	g.Solve(form, "tok")
	assert.Empty(t, form.QueryClass(ErrorMsgClass))
}

func TestGate_ResponseFieldFallback(t *testing.T) {
	g, doc, _, _, _ := newTestGate(t)
	form := doc.ByID("login")
	assert.False(t, g.Solved(form))

	field := form.QueryAttr("name")[0]
	field.SetText("  tok-from-widget ")
	assert.True(t, g.Solved(form))

	w, _ := g.Widget(form)
	assert.True(t, w.Solved)
	assert.Equal(t, "  tok-from-widget ", w.Token)
}

func TestGate_FailAndExpire(t *testing.T) {
	g, doc, toaster, _, events := newTestGate(t)
	form := doc.ByID("signup")

	g.Solve(form, "tok")
	g.Expire(form)
	assert.False(t, g.Solved(form))
	g.Solve(form, "tok")
	g.Fail(form)
	assert.False(t, g.Solved(form))

	assert.Equal(t, []string{MsgExpired, MsgFailed}, toaster.shown)
	assert.Equal(t, []toast.Category{toast.Warning, toast.Error}, toaster.cats)

	var reasons []string
	for _, e := range *events {
		if e.Type == types.EventTypeCaptchaReset {
			reasons = append(reasons, e.Metadata["reason"].(string))
		}
	}
	assert.Equal(t, []string{"expired", "error"}, reasons)

	g.Fail(doc.ByID("contact"))
	assert.Len(t, toaster.shown, 2, "forms without a widget are ignored")
}

func TestVerifier(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		got = map[string]string{
			"secret":   r.PostForm.Get("secret"),
			"response": r.PostForm.Get("response"),
			"remoteip": r.PostForm.Get("remoteip"),
		}
		w.Header().Set("Content-Type", "application/json")
		if r.PostForm.Get("response") == "good" {
			_, _ = w.Write([]byte(`{"success":true}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	defer srv.Close()

	v := NewVerifier(config.HCaptchaConfig{Enabled: true, SecretKey: "s3cret", VerifyURL: srv.URL})

	require.NoError(t, v.Verify(context.Background(), "good", "10.0.0.1"))
	assert.Equal(t, map[string]string{"secret": "s3cret", "response": "good", "remoteip": "10.0.0.1"}, got)

	err := v.Verify(context.Background(), "bad", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "invalid-input-response")

	assert.ErrorIs(t, v.Verify(context.Background(), " ", ""), ErrMissingToken)
}

func TestVerifier_Disabled(t *testing.T) {
	v := NewVerifier(config.HCaptchaConfig{})
	assert.False(t, v.Enabled())
	assert.NoError(t, v.Verify(context.Background(), "", ""))
}

func TestGate_ResetClearsResponseField(t *testing.T) {
	for name, reset := range map[string]func(*Gate, *dom.Element){
		"expire": (*Gate).Expire,
		"fail":   (*Gate).Fail,
		"reset":  (*Gate).Reset,
	} {
		t.Run(name, func(t *testing.T) {
			g, doc, _, _, _ := newTestGate(t)
			form := doc.ByID("login")
			field := form.QueryAttr("name")[0]
			field.SetText("tok-1")
			require.True(t, g.Solved(form))

			reset(g, form)
			assert.Empty(t, field.Text())
			assert.False(t, g.Solved(form))
			assert.False(t, g.Submit(form), "the captcha must be solved again")
		})
	}
}

func TestGate_CloseStopsTimers(t *testing.T) {
	g, doc, _, clock, _ := newTestGate(t)
	form := doc.ByID("signup")

	g.Submit(form)
	g.Solve(form, "tok")
	require.Equal(t, 1, clock.Pending(), "solving stops the error timer and starts the note timer")

	g.Close()
	assert.Equal(t, 0, clock.Pending())
}

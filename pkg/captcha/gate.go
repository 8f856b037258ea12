// Package captcha blocks form submission until the hCaptcha widget in the
// form has produced a token, and verifies tokens server side.
package captcha

import (
	"strings"
	"sync"
	"time"

	"github.com/entrhq/pagekit/pkg/dom"
	"github.com/entrhq/pagekit/pkg/logging"
	"github.com/entrhq/pagekit/pkg/toast"
	"github.com/entrhq/pagekit/pkg/types"
	"github.com/google/uuid"
	"golang.org/x/net/html"
)

const (
	WidgetClass       = "h-captcha"
	ResponseField     = "h-captcha-response"
	ErrorMsgClass     = "hcaptcha-error-message"
	SuccessMsgClass   = "hcaptcha-success-message"
	WidgetIDAttr      = "data-widget-id"
	ErrorTimeout      = 10 * time.Second
	SuccessTimeout    = 3 * time.Second
	MsgRequired       = "Please complete the captcha verification."
	MsgFailed         = "Captcha verification failed. Please try again."
	MsgExpired        = "Captcha has expired. Please solve it again."
	inlineErrorText   = "Please complete the captcha verification before submitting."
	inlineSuccessText = "Captcha verified successfully!"
)

const (
	errorClasses   = "p-3 mb-4 text-sm text-red-800 bg-red-50 border border-red-200 rounded-lg dark:text-red-400 dark:bg-red-900/20 dark:border-red-800"
	successClasses = "p-2 mb-2 text-sm text-green-800 bg-green-50 border border-green-200 rounded-lg dark:text-green-400 dark:bg-green-900/20 dark:border-green-800"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("captcha")
	if err != nil {
		debugLog.Warnf("Failed to initialize captcha logger, using stderr fallback: %v", err)
	}
}

// Toaster shows a notification. *toast.Manager implements it.
type Toaster interface {
	Show(text string, category toast.Category) toast.Toast
}

// Widget is the captcha state of one form.
type Widget struct {
	ID     string
	FormID string
	Solved bool
	Token  string

	form      *dom.Element
	container *dom.Element
	errTimer  toast.Timer
	noteTimer toast.Timer
}

// Gate tracks one widget per form. Forms without a widget are never
// blocked.
type Gate struct {
	toasts    Toaster
	clock     toast.Clock
	emitEvent types.EventEmitter

	widgets map[*html.Node]*Widget
	mu      sync.Mutex
}

// NewGate creates a gate. toasts may be nil; a nil clock uses real time.
func NewGate(toasts Toaster, clock toast.Clock, emitEvent types.EventEmitter) *Gate {
	if clock == nil {
		clock = toast.RealClock()
	}
	if emitEvent == nil {
		emitEvent = types.Discard
	}
	return &Gate{
		toasts:    toasts,
		clock:     clock,
		emitEvent: emitEvent,
		widgets:   make(map[*html.Node]*Widget),
	}
}

// Scan registers every .h-captcha container that sits inside a form and
// returns how many widgets are tracked. State from a previous scan is
// dropped.
func (g *Gate) Scan(doc *dom.Document) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, w := range g.widgets {
		stop(w)
	}
	g.widgets = make(map[*html.Node]*Widget)
	for _, container := range doc.QueryClass(WidgetClass) {
		form := closestForm(container)
		if form == nil {
			continue
		}
		id := container.AttrOr(WidgetIDAttr, container.ID())
		if id == "" {
			id = "hcaptcha-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
		}
		g.widgets[form.Node()] = &Widget{ID: id, FormID: form.ID(), form: form, container: container}
	}
	debugLog.Debugf("tracking %d captcha widgets", len(g.widgets))
	return len(g.widgets)
}

// Required reports whether form carries a widget.
func (g *Gate) Required(form *dom.Element) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.widgets[form.Node()]
	return ok
}

// Widget returns a copy of the state tracked for form.
func (g *Gate) Widget(form *dom.Element) (Widget, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	w, ok := g.widgets[form.Node()]
	if !ok {
		return Widget{}, false
	}
	return *w, true
}

// Solved reports whether form may be submitted. A widget without a token
// still counts as solved when the form's h-captcha-response field is filled.
func (g *Gate) Solved(form *dom.Element) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.solvedLocked(form)
}

func (g *Gate) solvedLocked(form *dom.Element) bool {
	w, ok := g.widgets[form.Node()]
	if !ok {
		return true
	}
	if w.Solved && w.Token != "" {
		return true
	}
	for _, field := range responseFields(form) {
		if token := strings.TrimSpace(field.Text()); token != "" {
			w.Solved = true
			w.Token = field.Text()
			return true
		}
	}
	return false
}

func responseFields(form *dom.Element) []*dom.Element {
	var out []*dom.Element
	for _, field := range form.QueryAttr("name") {
		if field.Tag() == "textarea" && field.AttrOr("name", "") == ResponseField {
			out = append(out, field)
		}
	}
	return out
}

// Submit reports whether form may be submitted. When it may not, an inline
// error is placed above the widget for ErrorTimeout and an error toast is
// shown.
func (g *Gate) Submit(form *dom.Element) bool {
	g.mu.Lock()
	if g.solvedLocked(form) {
		g.mu.Unlock()
		return true
	}
	w := g.widgets[form.Node()]
	clearMessage(w, ErrorMsgClass)
	insertMessage(w, ErrorMsgClass, errorClasses, "bi-exclamation-triangle-fill", inlineErrorText)
	if w.errTimer != nil {
		w.errTimer.Stop()
	}
	w.errTimer = g.clock.AfterFunc(ErrorTimeout, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		clearMessage(w, ErrorMsgClass)
	})
	formID := w.FormID
	g.mu.Unlock()

	g.toast(MsgRequired, toast.Error)
	g.emitEvent(types.NewSubmitBlockedEvent("captcha", formID, MsgRequired))
	return false
}

// Solve records a token for form, clears any inline error and shows a
// success note for SuccessTimeout.
func (g *Gate) Solve(form *dom.Element, token string) {
	g.mu.Lock()
	w, ok := g.widgets[form.Node()]
	if !ok {
		g.mu.Unlock()
		return
	}
	w.Solved = token != ""
	w.Token = token
	if w.errTimer != nil {
		w.errTimer.Stop()
		w.errTimer = nil
	}
	clearMessage(w, ErrorMsgClass)
	clearMessage(w, SuccessMsgClass)
	note := insertMessage(w, SuccessMsgClass, successClasses, "bi-check-circle-fill", inlineSuccessText)
	if w.noteTimer != nil {
		w.noteTimer.Stop()
	}
	w.noteTimer = g.clock.AfterFunc(SuccessTimeout, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		note.Remove()
		w.noteTimer = nil
	})
	formID := w.FormID
	g.mu.Unlock()

	g.emitEvent(types.NewCaptchaSolvedEvent(formID))
}

// Fail resets form after the widget reported an error.
func (g *Gate) Fail(form *dom.Element) {
	if g.reset(form, "error") {
		g.toast(MsgFailed, toast.Error)
	}
}

// Expire resets form after its token expired.
func (g *Gate) Expire(form *dom.Element) {
	if g.reset(form, "expired") {
		g.toast(MsgExpired, toast.Warning)
	}
}

// Reset clears the token of form so it must be solved again. The form's
// h-captcha-response field is emptied too, as the widget does on reset.
func (g *Gate) Reset(form *dom.Element) {
	g.reset(form, "reset")
}

func (g *Gate) reset(form *dom.Element, reason string) bool {
	g.mu.Lock()
	w, ok := g.widgets[form.Node()]
	if !ok {
		g.mu.Unlock()
		return false
	}
	w.Solved = false
	w.Token = ""
	for _, field := range responseFields(form) {
		field.SetText("")
	}
	formID := w.FormID
	g.mu.Unlock()

	g.emitEvent(types.NewCaptchaResetEvent(formID, reason))
	return true
}

// Close stops pending message timers.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, w := range g.widgets {
		stop(w)
	}
}

func (g *Gate) toast(text string, category toast.Category) {
	if g.toasts != nil {
		g.toasts.Show(text, category)
	}
}

func stop(w *Widget) {
	if w.errTimer != nil {
		w.errTimer.Stop()
		w.errTimer = nil
	}
	if w.noteTimer != nil {
		w.noteTimer.Stop()
		w.noteTimer = nil
	}
}

func insertMessage(w *Widget, class, classes, icon, text string) *dom.Element {
	msg := dom.NewElement("div")
	msg.SetAttr("class", class+" "+classes)
	row := dom.NewElement("div")
	row.SetAttr("class", "flex items-center")
	i := dom.NewElement("i")
	i.SetAttr("class", "bi "+icon+" mr-2")
	span := dom.NewElement("span")
	span.SetText(text)
	row.AppendChild(i)
	row.AppendChild(span)
	msg.AppendChild(row)
	w.container.InsertBefore(msg)
	return msg
}

func clearMessage(w *Widget, class string) {
	parent := w.container.Parent()
	if parent == nil {
		return
	}
	for _, msg := range parent.QueryClass(class) {
		msg.Remove()
	}
}

func closestForm(el *dom.Element) *dom.Element {
	for p := el.Parent(); p != nil; p = p.Parent() {
		if p.Tag() == "form" {
			return p
		}
	}
	return nil
}

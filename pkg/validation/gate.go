package validation

import (
	"github.com/entrhq/pagekit/pkg/dom"
	"github.com/entrhq/pagekit/pkg/toast"
	"github.com/entrhq/pagekit/pkg/types"
)

// Field state classes and the inline message class.
const (
	ErrorClass        = "error"
	SuccessClass      = "success"
	ErrorMessageClass = "error-message"
)

// Toaster shows a notification. *toast.Manager implements it.
type Toaster interface {
	Show(text string, category toast.Category) toast.Toast
}

// Gate blocks submission of invalid forms.
type Gate struct {
	toasts    Toaster
	emitEvent types.EventEmitter
}

// NewGate creates a gate reporting through toasts. Either argument may be nil.
func NewGate(toasts Toaster, emitEvent types.EventEmitter) *Gate {
	if emitEvent == nil {
		emitEvent = types.Discard
	}
	return &Gate{toasts: toasts, emitEvent: emitEvent}
}

// Submit validates form and reports whether it may be submitted. On failure
// the first message is shown as an error toast and the field errors are
// returned.
func (g *Gate) Submit(formID string, form any) (bool, []FieldError) {
	errs := Validate(form)
	if len(errs) == 0 {
		return true, nil
	}

	msg := errs[0].Message
	if g.toasts != nil {
		g.toasts.Show(msg, toast.Error)
	}
	g.emitEvent(types.NewSubmitBlockedEvent("validation", formID, msg))
	return false, errs
}

// Values reads the named input, textarea and select values of a form
// element.
func Values(form *dom.Element) map[string]string {
	values := make(map[string]string)
	for _, field := range form.QueryAttr("name") {
		switch field.Tag() {
		case "input":
			values[field.AttrOr("name", "")] = field.AttrOr("value", "")
		case "textarea":
			values[field.AttrOr("name", "")] = field.Text()
		case "select":
			for _, opt := range field.QueryAttr("selected") {
				values[field.AttrOr("name", "")] = opt.AttrOr("value", opt.Text())
			}
		}
	}
	return values
}

// MarkFields flags each named field of form as valid or invalid and puts the
// error message right after invalid ones. Stale messages are removed first.
func MarkFields(form *dom.Element, errs []FieldError) {
	for _, old := range form.QueryClass(ErrorMessageClass) {
		old.Remove()
	}

	byField := make(map[string]string, len(errs))
	for _, e := range errs {
		if _, seen := byField[e.Field]; !seen {
			byField[e.Field] = e.Message
		}
	}

	for _, field := range form.QueryAttr("name") {
		switch field.Tag() {
		case "input", "textarea", "select":
		default:
			continue
		}

		msg, failed := byField[field.AttrOr("name", "")]
		field.ToggleClass(ErrorClass, failed)
		field.ToggleClass(SuccessClass, !failed)
		if !failed {
			continue
		}

		note := dom.NewElement("div")
		note.AddClass(ErrorMessageClass, "text-red-500", "text-sm", "mt-1")
		note.SetText(msg)
		field.Parent().AppendChild(note)
	}
}

// MarkRequirements updates a [data-requirement] checklist for pw.
func MarkRequirements(checklist *dom.Element, pw string, opts PasswordOptions) bool {
	r := CheckRequirements(pw, opts)
	for name, ok := range r.ByName() {
		for _, item := range checklist.QueryAttr("data-requirement") {
			if item.AttrOr("data-requirement", "") != name {
				continue
			}
			item.ToggleClass("requirement-met", ok)
			for _, icon := range item.QueryClass("requirement-icon") {
				icon.ToggleClass("bi-check-circle-fill", ok)
				icon.ToggleClass("bi-circle", !ok)
			}
		}
	}
	return r.Met()
}

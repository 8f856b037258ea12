package validation

import (
	"time"

	"github.com/entrhq/pagekit/pkg/dom"
	"github.com/entrhq/pagekit/pkg/toast"
)

const (
	// SubmitTimeout is how long a submit button stays in its loading state.
	SubmitTimeout = 5 * time.Second

	originalContentAttr = "data-original-content"
	loadingMarkup       = `<div class="inline-flex items-center"><div class="animate-spin mr-2"><i class="bi bi-arrow-clockwise"></i></div><span>Processing...</span></div>`
)

var disabledClasses = []string{"opacity-75", "cursor-not-allowed"}

// ShowLoading disables button and swaps its content for a spinner until
// timeout elapses on clock. A button already loading keeps its saved content.
func ShowLoading(button *dom.Element, clock toast.Clock, timeout time.Duration) toast.Timer {
	if button == nil {
		return nil
	}
	if !button.HasAttr(originalContentAttr) {
		button.SetAttr(originalContentAttr, button.InnerHTML())
	}
	_ = button.SetInnerHTML(loadingMarkup)
	button.SetAttr("disabled", "")
	button.AddClass(disabledClasses...)

	if timeout <= 0 {
		timeout = SubmitTimeout
	}
	return clock.AfterFunc(timeout, func() { ResetLoading(button) })
}

// ResetLoading restores a button put into its loading state by ShowLoading.
func ResetLoading(button *dom.Element) {
	if original, ok := button.Attr(originalContentAttr); ok {
		_ = button.SetInnerHTML(original)
		button.RemoveAttr(originalContentAttr)
	}
	button.RemoveAttr("disabled")
	button.RemoveClass(disabledClasses...)
}

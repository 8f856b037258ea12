package toast

import (
	"strings"

	"github.com/entrhq/pagekit/pkg/dom"
)

// LeavingClass is added to a dismissed node while its exit animation runs.
const LeavingClass = "toast-leaving"

var icons = map[Category]string{
	Success: "bi-check-circle-fill",
	Error:   "bi-exclamation-triangle-fill",
	Warning: "bi-exclamation-circle-fill",
	Info:    "bi-info-circle-fill",
}

// container returns #toast-container, creating it at the end of <body>.
func container(doc *dom.Document) *dom.Element {
	if c := doc.ByID(ContainerID); c != nil {
		return c
	}
	body := doc.Body()
	if body == nil {
		return nil
	}

	c := dom.NewElement("div")
	c.SetAttr("id", ContainerID)
	c.SetAttr("class", "toast-container")
	body.AppendChild(c)
	return c
}

// render appends the markup for t to the toast container:
//
//	<div data-flash-toast data-category="info" data-toast-id="..." role="alert">
//	  <div><i class="bi ..."></i><span>text</span></div>
//	  <button type="button" data-dismiss-toast>×</button>
//	</div>
func render(doc *dom.Document, t Toast) *dom.Element {
	parent := container(doc)
	if parent == nil {
		return nil
	}

	node := dom.NewElement("div")
	node.SetAttr(ToastAttr, "")
	node.SetAttr(CategoryAttr, string(t.Category))
	node.SetAttr(IDAttr, t.ID)
	node.SetAttr("role", "alert")
	node.AddClass("toast", "toast-"+string(t.Category))

	body := dom.NewElement("div")
	icon := dom.NewElement("i")
	icon.AddClass("bi", icons[t.Category])
	text := dom.NewElement("span")
	text.SetText(t.Text)
	body.AppendChild(icon)
	body.AppendChild(text)

	dismiss := dom.NewElement("button")
	dismiss.SetAttr("type", "button")
	dismiss.SetAttr(DismissToast, "")
	dismiss.SetAttr("aria-label", "Dismiss")
	dismiss.SetText("×")

	node.AppendChild(body)
	node.AppendChild(dismiss)
	parent.AppendChild(node)
	return node
}

func trim(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package pagination

import (
	"bytes"
	"fmt"
	"html/template"
)

// Positions a control block can be rendered at.
const (
	PositionTop    = "top"
	PositionBottom = "bottom"
	PositionMain   = "main"
)

// Element ids and classes the interactions bind to.
const (
	ContainerClass   = "pagination-container"
	PerPageFilterID  = "perPageFilter"
	JumpInputPrefix  = "jumpToPage-"
	JumpButtonPrefix = "jumpButton-"
	MenuPrefix       = "page-menu-"
	MenuButtonPrefix = "page-dropdown-"
)

const controlsTemplate = `
{{- define "page" -}}
{{- if .Active -}}
<span class="page-current inline-flex items-center px-4 py-2 text-sm font-medium text-blue-600 dark:text-blue-400 bg-blue-50 dark:bg-blue-900/30" aria-current="page">{{.Page}}</span>
{{- else -}}
<a href="{{.URL}}" class="page-link inline-flex items-center px-4 py-2 text-sm font-medium text-gray-500 dark:text-gray-400">{{.Page}}</a>
{{- end -}}
{{- end -}}

{{- define "pagination" -}}
<div class="{{.ContainerClass}} bg-gray-50 dark:bg-gray-700 px-6 {{if eq .Position "top"}}py-4 rounded-t-lg{{else}}py-3 rounded-b-lg{{end}}" data-position="{{.Position}}">
<div class="flex flex-col sm:flex-row items-center justify-between">
<div class="results-info text-sm text-gray-500 dark:text-gray-400">Showing <span class="font-medium">{{.Start}}</span> to <span class="font-medium">{{.End}}</span> of <span class="font-medium">{{.Desc.Total}}</span> entries</div>
{{- if .Single}}
<div class="page-single text-sm text-gray-500 dark:text-gray-400">Page 1 of 1</div>
{{- else}}
<div class="flex flex-col sm:flex-row items-center sm:space-x-4">
<div class="flex items-center">
<label for="{{.PerPageID}}" class="text-sm mr-3">Show:</label>
<select id="{{.PerPageID}}" class="text-sm rounded-lg">
{{- range .PerPageOptions}}
<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Value}}</option>
{{- end}}
</select>
</div>
<div class="flex items-center">
{{- if .PrevURL}}
<a href="{{.PrevURL}}" class="page-prev inline-flex items-center px-3 py-2 text-sm rounded-l-lg"><i class="bi bi-chevron-left mr-1"></i>Previous</a>
{{- else}}
<span class="page-prev inline-flex items-center px-3 py-2 text-sm rounded-l-lg cursor-not-allowed"><i class="bi bi-chevron-left mr-1"></i>Previous</span>
{{- end}}
<div class="hidden sm:flex">
{{- range .Items}}
{{- if .More}}
<div class="relative inline-block">
<button type="button" id="{{$.MenuButtonID}}" class="page-more inline-flex items-center px-4 py-2 text-sm cursor-pointer" data-dropdown-toggle="{{$.MenuID}}"><i class="bi bi-three-dots"></i></button>
<div id="{{$.MenuID}}" class="hidden absolute top-full mt-1 w-32 rounded-lg shadow-lg z-50 max-h-48 overflow-y-auto">
<div class="py-1">
{{- range .Pages}}
<a href="{{.URL}}" class="block px-4 py-2 text-sm">Page {{.Page}}</a>
{{- end}}
</div>
</div>
</div>
{{- else}}
{{template "page" .}}
{{- end}}
{{- end}}
</div>
{{- if .NextURL}}
<a href="{{.NextURL}}" class="page-next inline-flex items-center px-3 py-2 text-sm rounded-r-lg">Next<i class="bi bi-chevron-right ml-1"></i></a>
{{- else}}
<span class="page-next inline-flex items-center px-3 py-2 text-sm rounded-r-lg cursor-not-allowed">Next<i class="bi bi-chevron-right ml-1"></i></span>
{{- end}}
</div>
{{template "mobile" .}}
</div>
{{- end}}
</div>
</div>
{{- if .ShowJump}}
<div class="jump-to-page mt-4 pt-4 border-t">
<div class="flex items-center justify-center space-x-2">
<label for="{{.JumpInputID}}" class="text-sm">Jump to page:</label>
<input type="number" id="{{.JumpInputID}}" min="1" max="{{.Desc.Pages}}" placeholder="{{.Desc.Page}}" class="w-20 text-sm rounded-md text-center">
<button id="{{.JumpButtonID}}" class="px-3 py-1 text-sm font-medium text-white bg-blue-600 rounded-md">Go</button>
</div>
</div>
{{- end}}
{{- end -}}

{{- define "mobile" -}}
<div class="page-mobile sm:hidden flex items-center justify-between w-full">
{{- if .PrevURL}}
<a href="{{.PrevURL}}" class="inline-flex items-center px-3 py-2 text-sm rounded-lg"><i class="bi bi-chevron-left mr-1"></i>Prev</a>
{{- else}}
<div></div>
{{- end}}
<div class="flex flex-col items-center">
<span class="inline-flex items-center px-4 py-2 text-sm rounded-lg">{{.Desc.Page}}</span>
<span class="text-xs mt-1">of {{.Desc.Pages}}</span>
</div>
{{- if .NextURL}}
<a href="{{.NextURL}}" class="inline-flex items-center px-3 py-2 text-sm rounded-lg">Next<i class="bi bi-chevron-right ml-1"></i></a>
{{- else}}
<div></div>
{{- end}}
</div>
{{- end -}}
`

var templates = template.Must(template.New("pagination").Parse(controlsTemplate))

type pageLink struct {
	Page int
	URL  string
}

type itemView struct {
	Page   int
	URL    string
	Active bool
	More   bool
	Pages  []pageLink
}

type perPageOption struct {
	Value    int
	Selected bool
}

type view struct {
	ContainerClass string
	Position       string
	Desc           Descriptor
	Start, End     int
	Single         bool

	PerPageID      string
	PerPageOptions []perPageOption

	PrevURL, NextURL string
	Items            []itemView

	MenuID, MenuButtonID string

	ShowJump                  bool
	JumpInputID, JumpButtonID string
}

// Helper composes the pagination parts behind one set of options.
type Helper struct {
	Core         *Core
	Controls     *Controls
	Interactions *Interactions
}

// NewHelper creates a Helper. Interactions emit nothing until given an
// emitter with Interactions.SetEmitter.
func NewHelper(opts Options) *Helper {
	core := NewCore(opts)
	return &Helper{
		Core:         core,
		Controls:     NewControls(core),
		Interactions: NewInteractions(opts, nil),
	}
}

// ShouldShowJumpToPage reports whether the jump block belongs at position.
func (h *Helper) ShouldShowJumpToPage(d Descriptor, position string) bool {
	opts := h.Core.opts
	return opts.ShowJumpToPage && d.Pages > opts.JumpToPageThreshold && position == PositionBottom
}

// Render returns the control markup for d at position. Links are built from
// base and extra. A descriptor with no entries renders nothing.
func (h *Helper) Render(d Descriptor, base string, extra map[string]string, position string) (template.HTML, error) {
	if d.Total <= 0 {
		return "", nil
	}
	if position == "" {
		position = PositionMain
	}

	link := h.Core.Linker(base, extra)
	start, end := d.Range()

	v := view{
		ContainerClass: ContainerClass,
		Position:       position,
		Desc:           d,
		Start:          start,
		End:            end,
		Single:         d.Pages <= 1,
		PerPageID:      PerPageFilterID,
		MenuID:         MenuPrefix + position,
		MenuButtonID:   MenuButtonPrefix + position,
		ShowJump:       h.ShouldShowJumpToPage(d, position),
		JumpInputID:    JumpInputPrefix + position,
		JumpButtonID:   JumpButtonPrefix + position,
	}

	current := d.PerPage
	if current <= 0 {
		current = h.Core.opts.DefaultPerPage
	}
	for _, n := range h.Core.opts.PerPageOptions {
		v.PerPageOptions = append(v.PerPageOptions, perPageOption{Value: n, Selected: n == current})
	}

	if d.HasPrev {
		v.PrevURL = link(d.PrevNum)
	}
	if d.HasNext {
		v.NextURL = link(d.NextNum)
	}

	for _, it := range h.Controls.PageItems(d) {
		if it.Kind == KindMore {
			more := itemView{More: true}
			for _, n := range it.Pages {
				more.Pages = append(more.Pages, pageLink{Page: n, URL: link(n)})
			}
			v.Items = append(v.Items, more)
			continue
		}
		v.Items = append(v.Items, itemView{Page: it.Page, URL: link(it.Page), Active: it.Active})
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "pagination", v); err != nil {
		return "", fmt.Errorf("failed to render pagination: %w", err)
	}
	return template.HTML(buf.String()), nil
}

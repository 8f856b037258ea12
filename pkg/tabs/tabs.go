// Package tabs switches between tab panels on detail pages. Buttons carry
// the class tab-button and id tab-<name>; panels carry tab-content and id
// content-<name>.
package tabs

import (
	"strings"
	"sync"

	"github.com/entrhq/pagekit/pkg/dom"
	"github.com/entrhq/pagekit/pkg/types"
)

const (
	ButtonClass   = "tab-button"
	ContentClass  = "tab-content"
	ButtonPrefix  = "tab-"
	ContentPrefix = "content-"
	HiddenClass   = "hidden"
)

var (
	activeClasses   = []string{"border-blue-500", "text-blue-600", "dark:text-blue-400"}
	inactiveClasses = []string{"border-transparent", "text-gray-500", "hover:text-gray-700", "hover:border-gray-300", "dark:text-gray-400", "dark:hover:text-gray-300"}
)

// Switcher tracks the active tab of one document.
type Switcher struct {
	doc       *dom.Document
	emitEvent types.EventEmitter
	active    string
	mu        sync.Mutex
}

// NewSwitcher creates a switcher for doc.
func NewSwitcher(doc *dom.Document, emit types.EventEmitter) *Switcher {
	if emit == nil {
		emit = types.Discard
	}
	return &Switcher{doc: doc, emitEvent: emit}
}

// Init activates the first tab button, if any, and returns its name.
func (s *Switcher) Init() string {
	buttons := s.doc.QueryClass(ButtonClass)
	if len(buttons) == 0 {
		return ""
	}
	name := NameOf(buttons[0])
	s.Switch(name)
	return name
}

// Switch hides every panel, shows content-<name> and styles tab-<name> as
// active. Unknown names leave every panel hidden.
func (s *Switcher) Switch(name string) {
	s.mu.Lock()
	apply(s.doc, name)
	changed := s.active != name
	s.active = name
	s.mu.Unlock()

	if changed {
		s.emitEvent(types.NewTabSwitchEvent(name))
	}
}

// Active returns the name of the current tab.
func (s *Switcher) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// HandleClick switches to the tab whose button contains target. It reports
// whether target was a tab button.
func (s *Switcher) HandleClick(target *dom.Element) bool {
	for el := target; el != nil; el = el.Parent() {
		if el.HasClass(ButtonClass) {
			s.Switch(NameOf(el))
			return true
		}
	}
	return false
}

// NameOf returns the tab name encoded in a button id.
func NameOf(button *dom.Element) string {
	return strings.TrimPrefix(button.ID(), ButtonPrefix)
}

// Switch activates name in doc without tracking state.
func Switch(doc *dom.Document, name string) {
	apply(doc, name)
}

// Init activates the first tab of doc and returns its name.
func Init(doc *dom.Document) string {
	return NewSwitcher(doc, nil).Init()
}

func apply(doc *dom.Document, name string) {
	for _, content := range doc.QueryClass(ContentClass) {
		content.AddClass(HiddenClass)
	}
	for _, button := range doc.QueryClass(ButtonClass) {
		button.RemoveClass(activeClasses...)
		button.AddClass(inactiveClasses...)
	}

	if content := doc.ByID(ContentPrefix + name); content != nil {
		content.RemoveClass(HiddenClass)
	}
	if button := doc.ByID(ButtonPrefix + name); button != nil {
		button.AddClass(activeClasses...)
		button.RemoveClass(inactiveClasses...)
	}
}

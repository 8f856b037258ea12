// Package dropdown keeps a registry of toggle-button/panel pairs and
// guarantees that at most one panel is open at a time.
package dropdown

import (
	"sync"

	"github.com/entrhq/pagekit/pkg/dom"
	"github.com/entrhq/pagekit/pkg/types"
)

const (
	// ToggleAttr marks a trigger; its value is the id of the panel it controls.
	ToggleAttr = "data-dropdown-toggle"

	// HiddenClass is present on closed panels.
	HiddenClass = "hidden"

	// EscapeKey closes every panel.
	EscapeKey = "Escape"
)

// Manager is the dropdown registry. The zero value is not usable; call NewManager.
type Manager struct {
	entries   map[string]*entry
	order     []string
	mu        sync.Mutex
	emitEvent types.EventEmitter
}

type entry struct {
	id      string
	trigger *dom.Element
	panel   *dom.Element
	open    bool
}

// NewManager creates an empty registry. emitEvent receives dropdown_open and
// dropdown_close events; nil discards them.
func NewManager(emitEvent types.EventEmitter) *Manager {
	if emitEvent == nil {
		emitEvent = types.Discard
	}
	return &Manager{
		entries:   make(map[string]*entry),
		emitEvent: emitEvent,
	}
}

// Register adds or replaces the pair for id. The initial state is read from
// the panel's hidden class.
func (m *Manager) Register(id string, trigger, panel *dom.Element) {
	if id == "" || trigger == nil || panel == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[id]; !exists {
		m.order = append(m.order, id)
	}
	e := &entry{
		id:      id,
		trigger: trigger,
		panel:   panel,
		open:    !panel.HasClass(HiddenClass),
	}
	m.entries[id] = e

	// Markup with two visible panels keeps the first one open.
	if e.open {
		for _, other := range m.order {
			if other != id && m.entries[other].open {
				e.open = false
				panel.AddClass(HiddenClass)
				break
			}
		}
	}
}

// Unregister removes id. Unknown ids are ignored.
func (m *Manager) Unregister(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unregisterLocked(id)
}

func (m *Manager) unregisterLocked(id string) {
	if _, ok := m.entries[id]; !ok {
		return
	}
	delete(m.entries, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Toggle closes every panel, then opens id unless it was the one open.
func (m *Manager) Toggle(id string) {
	m.mu.Lock()
	e, ok := m.entries[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	wasOpen := e.open
	events := m.closeAllLocked()
	if !wasOpen {
		events = append(events, m.openLocked(e))
	}
	m.mu.Unlock()

	m.emit(events)
}

// Open opens id and closes any other open panel.
func (m *Manager) Open(id string) {
	m.mu.Lock()
	e, ok := m.entries[id]
	if !ok || e.open {
		m.mu.Unlock()
		return
	}
	events := m.closeAllLocked()
	events = append(events, m.openLocked(e))
	m.mu.Unlock()

	m.emit(events)
}

// Close closes id if it is open.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	e, ok := m.entries[id]
	if !ok || !e.open {
		m.mu.Unlock()
		return
	}
	ev := m.closeLocked(e)
	m.mu.Unlock()

	m.emit([]*types.UIEvent{ev})
}

// CloseAll closes every open panel.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	events := m.closeAllLocked()
	m.mu.Unlock()

	m.emit(events)
}

// IsOpen reports whether id is open. Unknown ids are closed.
func (m *Manager) IsOpen(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	return ok && e.open
}

// IDs returns the registered ids in registration order.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

// Scan registers every trigger in doc whose panel exists and returns how many
// were registered. Triggers pointing at missing panels are skipped.
func (m *Manager) Scan(doc *dom.Document) int {
	n := 0
	for _, trigger := range doc.QueryAttr(ToggleAttr) {
		id := trigger.AttrOr(ToggleAttr, "")
		panel := doc.ByID(id)
		if panel == nil {
			continue
		}
		m.Register(id, trigger, panel)
		n++
	}
	return n
}

// Refresh drops entries whose nodes left doc, then scans again.
func (m *Manager) Refresh(doc *dom.Document) int {
	root := doc.Root()

	m.mu.Lock()
	for _, id := range append([]string(nil), m.order...) {
		e := m.entries[id]
		if !root.Contains(e.trigger) || !root.Contains(e.panel) {
			m.unregisterLocked(id)
		}
	}
	m.mu.Unlock()

	return m.Scan(doc)
}

// HandleClick dispatches a document click. A click on a trigger toggles its
// panel, a click inside a panel is ignored, anything else closes all panels.
func (m *Manager) HandleClick(target *dom.Element) {
	m.mu.Lock()
	var toggled string
	inside := false
	for _, id := range m.order {
		e := m.entries[id]
		if e.trigger.Contains(target) {
			toggled = id
			break
		}
		if e.panel.Contains(target) {
			inside = true
		}
	}
	m.mu.Unlock()

	switch {
	case toggled != "":
		m.Toggle(toggled)
	case inside:
	default:
		m.CloseAll()
	}
}

// HandleKey closes every panel on Escape.
func (m *Manager) HandleKey(key string) {
	if key == EscapeKey {
		m.CloseAll()
	}
}

func (m *Manager) openLocked(e *entry) *types.UIEvent {
	e.open = true
	e.panel.RemoveClass(HiddenClass)
	e.trigger.SetAttr("aria-expanded", "true")
	return types.NewDropdownOpenEvent(e.id)
}

func (m *Manager) closeLocked(e *entry) *types.UIEvent {
	e.open = false
	e.panel.AddClass(HiddenClass)
	e.trigger.SetAttr("aria-expanded", "false")
	return types.NewDropdownCloseEvent(e.id)
}

func (m *Manager) closeAllLocked() []*types.UIEvent {
	var events []*types.UIEvent
	for _, id := range m.order {
		if e := m.entries[id]; e.open {
			events = append(events, m.closeLocked(e))
		}
	}
	return events
}

// emit runs outside the lock so listeners may call back into the manager.
func (m *Manager) emit(events []*types.UIEvent) {
	for _, ev := range events {
		m.emitEvent(ev)
	}
}

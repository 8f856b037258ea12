package theme

import (
	"fmt"
	"sync"

	"github.com/entrhq/pagekit/pkg/dom"
	"github.com/entrhq/pagekit/pkg/types"
)

// Marker contract with the layout templates.
const (
	ThemeAttr   = "data-theme"
	DarkClass   = "dark"
	HiddenClass = "hidden"
)

var (
	toggleIDs = []string{"theme-toggle", "theme-toggle-mobile"}
	menuIDs   = []string{"theme-menu", "theme-menu-mobile"}

	selectedClasses = []string{"bg-blue-50", "dark:bg-blue-900/30", "text-blue-600", "dark:text-blue-400"}
)

// Manager applies the preference to a document and keeps it in sync with
// the operating system scheme while the preference is System.
type Manager struct {
	doc       *dom.Document
	storage   Storage
	scheme    Scheme
	emitEvent types.EventEmitter

	pref Preference
	mu   sync.Mutex
}

// NewManager creates a manager reading its initial preference from storage.
// doc may be nil, in which case only state is tracked.
func NewManager(doc *dom.Document, storage Storage, scheme Scheme, emitEvent types.EventEmitter) *Manager {
	if emitEvent == nil {
		emitEvent = types.Discard
	}
	if scheme == nil {
		scheme = StaticScheme(false)
	}
	return &Manager{
		doc:       doc,
		storage:   storage,
		scheme:    scheme,
		emitEvent: emitEvent,
		pref:      Stored(storage),
	}
}

// Init applies the stored preference and marks the matching controls.
func (m *Manager) Init() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.applyLocked()
	m.updateButtonsLocked()
}

// Preference returns the current tri-state preference.
func (m *Manager) Preference() Preference {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pref
}

// Effective resolves the preference against the scheme at call time.
func (m *Manager) Effective() Preference {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Resolve(m.pref, m.scheme.Dark())
}

// SetTheme applies and persists value. Unknown values leave the state
// untouched and return ErrUnknownPreference.
func (m *Manager) SetTheme(value string) error {
	p, err := ParsePreference(value)
	if err != nil || value == "" {
		return fmt.Errorf("set theme %q: %w", value, ErrUnknownPreference)
	}

	m.mu.Lock()
	m.pref = p
	m.applyLocked()
	m.updateButtonsLocked()
	m.closeMenusLocked()
	effective := Resolve(p, m.scheme.Dark())
	m.mu.Unlock()

	// Storage may persist to disk; keep it outside the lock.
	var saveErr error
	if m.storage != nil {
		if p == System {
			saveErr = m.storage.Remove(StorageKey)
		} else {
			saveErr = m.storage.Set(StorageKey, string(p))
		}
	}

	m.emitEvent(types.NewThemeChangeEvent(string(p), string(effective)))

	if saveErr != nil {
		return fmt.Errorf("failed to persist theme: %w", saveErr)
	}
	return nil
}

// SchemeChanged is called when the operating system scheme flips. It only
// re-applies while the preference is System and reports whether it did.
func (m *Manager) SchemeChanged() bool {
	m.mu.Lock()
	if m.pref != System {
		m.mu.Unlock()
		return false
	}
	m.applyLocked()
	m.updateButtonsLocked()
	effective := Resolve(System, m.scheme.Dark())
	m.mu.Unlock()

	m.emitEvent(types.NewSchemeChangeEvent(string(effective)))
	return true
}

// Toggle switches to the explicit opposite of the effective theme.
func (m *Manager) Toggle() error {
	if m.Effective() == Dark {
		return m.SetTheme(string(Light))
	}
	return m.SetTheme(string(Dark))
}

// Cycle steps light → dark → system → light.
func (m *Manager) Cycle() error {
	current := m.Preference()
	next := Order[0]
	for i, p := range Order {
		if p == current {
			next = Order[(i+1)%len(Order)]
			break
		}
	}
	return m.SetTheme(string(next))
}

// HandleClick selects the theme of a clicked [data-theme] item. Any other
// click outside the theme menus closes them.
func (m *Manager) HandleClick(target *dom.Element) error {
	if item := target.Closest(ThemeAttr); item != nil {
		return m.SetTheme(item.AttrOr(ThemeAttr, ""))
	}
	if m.doc == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range menuIDs {
		if m.doc.ByID(id).Contains(target) {
			return nil
		}
	}
	m.closeMenusLocked()
	return nil
}

func (m *Manager) applyLocked() {
	if m.doc == nil {
		return
	}
	m.doc.Root().ToggleClass(DarkClass, Resolve(m.pref, m.scheme.Dark()) == Dark)
}

// updateButtonsLocked shows the icon for the preference in each toggle button
// and highlights the selected menu item.
func (m *Manager) updateButtonsLocked() {
	if m.doc == nil {
		return
	}

	for _, id := range toggleIDs {
		button := m.doc.ByID(id)
		if button == nil {
			continue
		}
		for _, p := range Order {
			for _, icon := range button.QueryClass("theme-" + string(p)) {
				icon.ToggleClass(HiddenClass, p != m.pref)
			}
		}
	}

	for _, item := range m.doc.QueryAttr(ThemeAttr) {
		selected := item.AttrOr(ThemeAttr, "") == string(m.pref)
		for _, c := range selectedClasses {
			item.ToggleClass(c, selected)
		}
	}
}

func (m *Manager) closeMenusLocked() {
	if m.doc == nil {
		return
	}
	for _, id := range menuIDs {
		m.doc.ByID(id).AddClass(HiddenClass)
	}
}

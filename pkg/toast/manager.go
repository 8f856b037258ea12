// Package toast manages transient notifications: toasts created at runtime
// and flash messages rendered by the server. Both share one expiry policy.
package toast

import (
	"sync"
	"time"

	"github.com/entrhq/pagekit/pkg/dom"
	"github.com/entrhq/pagekit/pkg/logging"
	"github.com/entrhq/pagekit/pkg/types"
	"github.com/google/uuid"
)

// Marker attributes shared with the server templates.
const (
	ContainerID  = "toast-container"
	ToastAttr    = "data-flash-toast"
	DismissToast = "data-dismiss-toast"
	FlashAttr    = "data-flash-message"
	DismissFlash = "data-dismiss-flash"
	CategoryAttr = "data-category"
	IDAttr       = "data-toast-id"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("toast")
	if err != nil {
		debugLog.Warnf("Failed to initialize toast logger, using stderr fallback: %v", err)
	}
}

// Kind tells a runtime toast from an adopted flash message.
type Kind string

const (
	KindToast Kind = "toast"
	KindFlash Kind = "flash"
)

// Toast is a snapshot of a visible notification.
type Toast struct {
	ID        string
	Text      string
	Category  Category
	Kind      Kind
	CreatedAt time.Time

	// AutoDismiss is false for persistent categories.
	AutoDismiss bool
}

type item struct {
	Toast
	node  *dom.Element
	timer Timer
}

// Manager tracks visible notifications and their timers.
type Manager struct {
	doc       *dom.Document
	policy    Policy
	clock     Clock
	emitEvent types.EventEmitter

	items   map[string]*item
	order   []string
	leaving map[*dom.Element]Timer
	closed  bool
	mu     sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithPolicy overrides DefaultPolicy.
func WithPolicy(p Policy) Option {
	return func(m *Manager) { m.policy = p }
}

// WithClock overrides RealClock.
func WithClock(c Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithDocument renders new toasts into doc's #toast-container.
func WithDocument(doc *dom.Document) Option {
	return func(m *Manager) { m.doc = doc }
}

// NewManager creates a manager. Without WithDocument it tracks state only.
func NewManager(emitEvent types.EventEmitter, opts ...Option) *Manager {
	if emitEvent == nil {
		emitEvent = types.Discard
	}
	m := &Manager{
		policy:    DefaultPolicy(),
		clock:     RealClock(),
		emitEvent: emitEvent,
		items:     make(map[string]*item),
		leaving:   make(map[*dom.Element]Timer),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Policy returns the active policy.
func (m *Manager) Policy() Policy {
	return m.policy
}

// Show displays a new toast and schedules its removal unless the category is
// persistent.
func (m *Manager) Show(text string, category Category) Toast {
	category = ParseCategory(string(category))

	m.mu.Lock()
	it := m.addLocked(uuid.New().String(), text, category, KindToast, nil)
	m.mu.Unlock()

	m.emitEvent(types.NewToastShownEvent(it.ID, it.Text, string(it.Category)))
	return it.Toast
}

// Scan adopts server-rendered toasts and flash messages found in doc and
// returns how many were adopted. Nodes already adopted are skipped.
func (m *Manager) Scan(doc *dom.Document) int {
	var found []*dom.Element
	found = append(found, doc.QueryAttr(ToastAttr)...)
	found = append(found, doc.QueryAttr(FlashAttr)...)

	var adopted []Toast
	m.mu.Lock()
	if m.doc == nil {
		m.doc = doc
	}
	for _, node := range found {
		if node.HasClass(LeavingClass) {
			continue
		}
		if id := node.AttrOr(IDAttr, ""); id != "" {
			if _, known := m.items[id]; known {
				continue
			}
		}

		kind := KindToast
		if node.HasAttr(FlashAttr) && !node.HasAttr(ToastAttr) {
			kind = KindFlash
		}

		id := node.ID()
		if id == "" || m.items[id] != nil {
			id = uuid.New().String()
		}
		node.SetAttr(IDAttr, id)

		it := m.addLocked(id, textOf(node), ParseCategory(node.AttrOr(CategoryAttr, "")), kind, node)
		adopted = append(adopted, it.Toast)
	}
	m.mu.Unlock()

	for _, t := range adopted {
		m.emitEvent(types.NewToastShownEvent(t.ID, t.Text, string(t.Category)))
	}
	return len(adopted)
}

// Dismiss removes a notification. Dismissing an unknown or already removed
// id is a no-op and returns false.
func (m *Manager) Dismiss(id string) bool {
	return m.dismiss(id, true)
}

// HandleClick dismisses the notification owning a clicked dismiss control.
func (m *Manager) HandleClick(target *dom.Element) bool {
	for _, pair := range [][2]string{{DismissToast, ToastAttr}, {DismissFlash, FlashAttr}} {
		if target.Closest(pair[0]) == nil {
			continue
		}
		if node := target.Closest(pair[1]); node != nil {
			return m.Dismiss(node.AttrOr(IDAttr, ""))
		}
	}
	return false
}

// Get returns the notification with id if it is still visible.
func (m *Manager) Get(id string) (Toast, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.items[id]
	if !ok {
		return Toast{}, false
	}
	return it.Toast, true
}

// Active returns visible notifications, oldest first.
func (m *Manager) Active() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Toast, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.items[id].Toast)
	}
	return out
}

// Close stops every pending timer. Visible notifications stay as they are;
// nodes still animating out are removed at once.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	for _, it := range m.items {
		if it.timer != nil {
			it.timer.Stop()
			it.timer = nil
		}
	}
	for node, timer := range m.leaving {
		timer.Stop()
		removeNode(node)
	}
	m.leaving = make(map[*dom.Element]Timer)
}

func (m *Manager) addLocked(id, text string, category Category, kind Kind, node *dom.Element) *item {
	it := &item{
		Toast: Toast{
			ID:          id,
			Text:        text,
			Category:    category,
			Kind:        kind,
			CreatedAt:   m.clock.Now(),
			AutoDismiss: m.policy.AutoDismiss(category),
		},
		node: node,
	}
	if it.node == nil && m.doc != nil {
		it.node = render(m.doc, it.Toast)
	}

	m.items[id] = it
	m.order = append(m.order, id)

	if it.AutoDismiss && !m.closed {
		it.timer = m.clock.AfterFunc(m.policy.Delay, func() {
			m.dismiss(id, false)
		})
	}
	return it
}

func (m *Manager) dismiss(id string, manual bool) bool {
	m.mu.Lock()
	it, ok := m.items[id]
	if !ok {
		m.mu.Unlock()
		return false
	}

	delete(m.items, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	if it.timer != nil {
		it.timer.Stop()
	}
	m.scheduleRemovalLocked(it.node)
	m.mu.Unlock()

	debugLog.Debugf("dismissed %s %s (manual=%v)", it.Kind, id, manual)
	m.emitEvent(types.NewToastDismissedEvent(id, it.Text, string(it.Category), manual))
	return true
}

// scheduleRemovalLocked detaches node after the dismiss animation and drops
// the container once it has no children left.
func (m *Manager) scheduleRemovalLocked(node *dom.Element) {
	if node == nil {
		return
	}
	node.AddClass(LeavingClass)

	if m.policy.Animation <= 0 || m.closed {
		removeNode(node)
		return
	}
	if prev, ok := m.leaving[node]; ok {
		prev.Stop()
	}
	m.leaving[node] = m.clock.AfterFunc(m.policy.Animation, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.leaving, node)
		removeNode(node)
	})
}

func removeNode(node *dom.Element) {
	container := node.Parent()
	node.Remove()
	if container.ID() == ContainerID && len(container.Children()) == 0 {
		container.Remove()
	}
}

func textOf(node *dom.Element) string {
	// Prefer the message span over the whole node so the close glyph is excluded.
	for _, child := range node.Children() {
		if child.Tag() == "span" {
			return trim(child.Text())
		}
		for _, grand := range child.Children() {
			if grand.Tag() == "span" {
				return trim(grand.Text())
			}
		}
	}
	return trim(node.Text())
}

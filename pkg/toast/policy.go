package toast

import (
	"time"

	"github.com/entrhq/pagekit/pkg/config"
)

// Category classifies a notification.
type Category string

const (
	Success Category = "success"
	Error   Category = "error"
	Warning Category = "warning"
	Info    Category = "info"
)

// ParseCategory maps a data-category value to a Category. Unknown or empty
// values become Info, matching how the markup falls back to info styling.
func ParseCategory(s string) Category {
	switch c := Category(s); c {
	case Success, Error, Warning, Info:
		return c
	}
	return Info
}

// Policy decides how long notifications stay on screen.
type Policy struct {
	// Delay is how long an auto-dismissed notification stays visible.
	Delay time.Duration

	// Persistent categories are only removed manually.
	Persistent []Category

	// Animation is the time between dismissal and node removal.
	Animation time.Duration
}

// DefaultPolicy returns a 5 second delay with errors kept until dismissed.
func DefaultPolicy() Policy {
	return Policy{
		Delay:      5 * time.Second,
		Persistent: []Category{Error},
		Animation:  300 * time.Millisecond,
	}
}

// PolicyFromConfig builds a policy from the ui config section.
// A nil section yields DefaultPolicy.
func PolicyFromConfig(ui *config.UISection) Policy {
	if ui == nil {
		return DefaultPolicy()
	}

	delay, categories, animation := ui.GetToastSettings()
	p := Policy{Delay: delay, Animation: animation}
	for _, c := range categories {
		p.Persistent = append(p.Persistent, Category(c))
	}
	return p
}

// AutoDismiss reports whether notifications of category expire on their own.
func (p Policy) AutoDismiss(category Category) bool {
	for _, c := range p.Persistent {
		if c == category {
			return false
		}
	}
	return true
}

package config

import (
	"fmt"
	"sync"
	"time"
)

const (
	// SectionIDUI is the identifier for the UI settings section
	SectionIDUI = "ui"

	// Default values for UI settings
	defaultToastDelay        = 5 * time.Second
	defaultDismissAnimation  = 300 * time.Millisecond
	minToastDelay            = 100 * time.Millisecond
	maxToastDelay            = 60 * time.Second
	maxDismissAnimation      = 5 * time.Second
	defaultPersistCategories = "error"
)

// UISection manages notification behaviour: how long toasts stay visible,
// which categories wait for manual dismissal, and the removal animation.
type UISection struct {
	ToastDelay           time.Duration `json:"toast_delay"`
	PersistentCategories []string      `json:"persistent_categories"`
	DismissAnimation     time.Duration `json:"dismiss_animation"`
	mu                   sync.RWMutex
}

// NewUISection creates a new UI section with default settings.
func NewUISection() *UISection {
	return &UISection{
		ToastDelay:           defaultToastDelay,
		PersistentCategories: []string{defaultPersistCategories},
		DismissAnimation:     defaultDismissAnimation,
	}
}

// ID returns the section identifier.
func (s *UISection) ID() string {
	return SectionIDUI
}

// Title returns the section title.
func (s *UISection) Title() string {
	return "UI Settings"
}

// Description returns the section description.
func (s *UISection) Description() string {
	return "Configure toast and flash message timing and which categories require manual dismissal."
}

// Data returns the current configuration data.
func (s *UISection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]any, len(s.PersistentCategories))
	for i, c := range s.PersistentCategories {
		categories[i] = c
	}

	return map[string]any{
		"toast_delay":           s.ToastDelay.String(),
		"persistent_categories": categories,
		"dismiss_animation":     s.DismissAnimation.String(),
	}
}

// SetData updates the configuration from the provided data.
func (s *UISection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "toast_delay":
			d, err := parseDuration(key, value)
			if err != nil {
				return err
			}
			s.ToastDelay = d

		case "dismiss_animation":
			d, err := parseDuration(key, value)
			if err != nil {
				return err
			}
			s.DismissAnimation = d

		case "persistent_categories":
			list, err := parseStringList(key, value)
			if err != nil {
				return err
			}
			s.PersistentCategories = list

		default:
			// Ignore unknown keys for forward compatibility
			continue
		}
	}

	return nil
}

// Validate validates the current configuration.
func (s *UISection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ToastDelay < minToastDelay || s.ToastDelay > maxToastDelay {
		return fmt.Errorf("toast_delay must be between %v and %v, got %v", minToastDelay, maxToastDelay, s.ToastDelay)
	}
	if s.DismissAnimation < 0 || s.DismissAnimation > maxDismissAnimation {
		return fmt.Errorf("dismiss_animation must be between 0 and %v, got %v", maxDismissAnimation, s.DismissAnimation)
	}
	for _, c := range s.PersistentCategories {
		if !IsCategory(c) {
			return fmt.Errorf("unknown toast category %q", c)
		}
	}

	return nil
}

// Reset resets the section to default configuration.
func (s *UISection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ToastDelay = defaultToastDelay
	s.PersistentCategories = []string{defaultPersistCategories}
	s.DismissAnimation = defaultDismissAnimation
}

// GetToastSettings returns (delay, persistent categories, dismiss animation).
func (s *UISection) GetToastSettings() (time.Duration, []string, time.Duration) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := append([]string(nil), s.PersistentCategories...)
	return s.ToastDelay, categories, s.DismissAnimation
}

// SetToastDelay sets the auto-dismiss delay.
func (s *UISection) SetToastDelay(delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ToastDelay = delay
}

// IsPersistent reports whether toasts of category wait for manual dismissal.
func (s *UISection) IsPersistent(category string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.PersistentCategories {
		if c == category {
			return true
		}
	}
	return false
}

// IsCategory reports whether c is one of success, error, warning, info.
func IsCategory(c string) bool {
	switch c {
	case "success", "error", "warning", "info":
		return true
	}
	return false
}

func parseDuration(key string, value any) (time.Duration, error) {
	switch v := value.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid duration string for %s: %w", key, err)
		}
		return d, nil
	case float64:
		// JSON numbers come as float64
		return time.Duration(v), nil
	case int64:
		return time.Duration(v), nil
	case int:
		return time.Duration(v), nil
	case time.Duration:
		return v, nil
	default:
		return 0, fmt.Errorf("invalid value type for %s: expected string or number, got %T", key, value)
	}
}

func parseStringList(key string, value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("invalid %s entry at index %d: expected string, got %T", key, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("invalid value type for %s: expected list, got %T", key, value)
	}
}

func parseInt(key string, value any) (int, error) {
	switch v := value.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("invalid value for %s: %v is not an integer", key, v)
		}
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("invalid value type for %s: expected number, got %T", key, value)
	}
}

func parseIntList(key string, value any) ([]int, error) {
	switch v := value.(type) {
	case []int:
		return append([]int(nil), v...), nil
	case []any:
		out := make([]int, 0, len(v))
		for i, item := range v {
			n, err := parseInt(fmt.Sprintf("%s[%d]", key, i), item)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("invalid value type for %s: expected list, got %T", key, value)
	}
}

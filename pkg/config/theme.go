package config

import (
	"fmt"
	"sync"
)

const (
	// SectionIDTheme is the identifier for the theme section
	SectionIDTheme = "theme"

	// ThemeKey is the only key the theme section stores.
	ThemeKey = "theme"
)

// ThemeSection persists the explicit theme preference. It is the key/value
// storage the theme manager writes to; an empty preference means "system".
type ThemeSection struct {
	Preference string `json:"preference"`
	mu         sync.RWMutex

	// persist is invoked after every change, outside the lock.
	persist func() error
}

// NewThemeSection creates a theme section with no stored preference.
func NewThemeSection() *ThemeSection {
	return &ThemeSection{}
}

func (s *ThemeSection) ID() string          { return SectionIDTheme }
func (s *ThemeSection) Title() string       { return "Theme" }
func (s *ThemeSection) Description() string { return "Stored light or dark preference. Absent means follow the system." }

// Data returns the current configuration data.
func (s *ThemeSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.Preference == "" {
		return map[string]any{}
	}
	return map[string]any{"preference": s.Preference}
}

// SetData updates the configuration from the provided data.
func (s *ThemeSection) SetData(data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := data["preference"]
	if !ok {
		s.Preference = ""
		return nil
	}
	pref, ok := v.(string)
	if !ok {
		return fmt.Errorf("invalid value type for preference: expected string, got %T", v)
	}
	s.Preference = pref
	return nil
}

// Validate only accepts explicit values; "system" is stored as absence.
func (s *ThemeSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch s.Preference {
	case "", "light", "dark":
		return nil
	}
	return fmt.Errorf("invalid stored theme %q", s.Preference)
}

// Reset clears the stored preference.
func (s *ThemeSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Preference = ""
}

// OnChange registers fn to run after Set or Remove.
func (s *ThemeSection) OnChange(fn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persist = fn
}

// Get returns the stored value for key.
func (s *ThemeSection) Get(key string) (string, bool) {
	if key != ThemeKey {
		return "", false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Preference, s.Preference != ""
}

// Set stores value under key and persists.
func (s *ThemeSection) Set(key, value string) error {
	if key != ThemeKey {
		return fmt.Errorf("theme section does not store key %q", key)
	}

	s.mu.Lock()
	s.Preference = value
	persist := s.persist
	s.mu.Unlock()

	if persist != nil {
		return persist()
	}
	return nil
}

// Remove deletes key and persists.
func (s *ThemeSection) Remove(key string) error {
	if key != ThemeKey {
		return nil
	}
	return s.Set(key, "")
}

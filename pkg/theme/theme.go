// Package theme resolves the light/dark/system preference and applies it to a
// document.
package theme

import (
	"errors"
	"sync"
)

// Preference is the stored tri-state theme choice.
type Preference string

const (
	Light  Preference = "light"
	Dark   Preference = "dark"
	System Preference = "system"
)

// StorageKey is the key the explicit preference is stored under.
const StorageKey = "theme"

// ErrUnknownPreference is returned for values outside light, dark and system.
var ErrUnknownPreference = errors.New("unknown theme preference")

// Order is the sequence Cycle steps through.
var Order = []Preference{Light, Dark, System}

// ParsePreference validates s. The empty string is System.
func ParsePreference(s string) (Preference, error) {
	switch p := Preference(s); p {
	case Light, Dark, System:
		return p, nil
	case "":
		return System, nil
	}
	return "", ErrUnknownPreference
}

// Resolve returns the theme actually applied for pref given whether the
// operating system currently prefers a dark scheme.
func Resolve(pref Preference, osDark bool) Preference {
	switch pref {
	case Dark:
		return Dark
	case Light:
		return Light
	}
	if osDark {
		return Dark
	}
	return Light
}

// Scheme reports the operating system colour scheme.
type Scheme interface {
	Dark() bool
}

// StaticScheme is a Scheme with a fixed answer.
type StaticScheme bool

func (s StaticScheme) Dark() bool { return bool(s) }

// SwitchableScheme is a Scheme whose answer can change, standing in for a
// prefers-color-scheme media query.
type SwitchableScheme struct {
	mu   sync.RWMutex
	dark bool
}

// Dark reports the current scheme.
func (s *SwitchableScheme) Dark() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dark
}

// Set changes the scheme.
func (s *SwitchableScheme) Set(dark bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dark = dark
}

// Storage persists the explicit preference. config.ThemeSection implements it.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

// MemoryStorage is an in-memory Storage.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage creates an empty storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (s *MemoryStorage) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStorage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Stored reads the preference from storage. Missing or invalid values are
// System.
func Stored(storage Storage) Preference {
	if storage == nil {
		return System
	}
	v, ok := storage.Get(StorageKey)
	if !ok {
		return System
	}
	p, err := ParsePreference(v)
	if err != nil {
		return System
	}
	return p
}

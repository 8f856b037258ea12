package config

import (
	"sync"
)

var (
	// globalManager is the singleton configuration manager instance
	globalManager *Manager
	globalMu      sync.Mutex
)

// NewDefaultManager creates a manager over store with every pagekit section
// registered and loaded. The theme section persists itself on change.
func NewDefaultManager(store Store) (*Manager, error) {
	manager := NewManager(store)

	themeSection := NewThemeSection()
	sections := []Section{
		NewUISection(),
		themeSection,
		NewPaginationSection(),
		NewBindingsSection(),
	}
	for _, section := range sections {
		if err := manager.RegisterSection(section); err != nil {
			return nil, err
		}
	}

	if err := manager.LoadAll(); err != nil {
		return nil, err
	}

	themeSection.OnChange(manager.SaveAll)
	return manager, nil
}

// Initialize creates and initializes the global configuration manager.
// This should be called once at application startup.
func Initialize(configPath string) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	store, err := NewFileStore(configPath)
	if err != nil {
		return err
	}

	manager, err := NewDefaultManager(store)
	if err != nil {
		return err
	}

	globalManager = manager
	return nil
}

// Global returns the global configuration manager.
// Panics if Initialize has not been called.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		panic("config not initialized: call config.Initialize first")
	}

	return globalManager
}

// IsInitialized returns true if the global configuration has been initialized.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalManager != nil
}

func globalSection[T Section](id string) T {
	var zero T
	if !IsInitialized() {
		return zero
	}

	section, ok := Global().GetSection(id)
	if !ok {
		return zero
	}

	typed, ok := section.(T)
	if !ok {
		return zero
	}
	return typed
}

// GetUI returns the UI section from global config.
// Returns nil if config is not initialized.
func GetUI() *UISection {
	return globalSection[*UISection](SectionIDUI)
}

// GetTheme returns the theme section from global config.
// Returns nil if config is not initialized.
func GetTheme() *ThemeSection {
	return globalSection[*ThemeSection](SectionIDTheme)
}

// GetPagination returns the pagination section from global config.
// Returns nil if config is not initialized.
func GetPagination() *PaginationSection {
	return globalSection[*PaginationSection](SectionIDPagination)
}

// GetBindings returns the bindings section from global config.
// Returns nil if config is not initialized.
func GetBindings() *BindingsSection {
	return globalSection[*BindingsSection](SectionIDBindings)
}

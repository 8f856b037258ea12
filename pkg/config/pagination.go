package config

import (
	"fmt"
	"sync"
)

const (
	// SectionIDPagination is the identifier for the pagination section
	SectionIDPagination = "pagination"

	defaultPerPage             = 25
	defaultMaxPagesVisible     = 5
	defaultJumpToPageThreshold = 10
	defaultShowJumpToPage      = true
)

var defaultPerPageOptions = []int{25, 50, 100}

// PaginationSection holds the pagination defaults shared by every listing.
type PaginationSection struct {
	DefaultPerPage      int   `json:"default_per_page"`
	PerPageOptions      []int `json:"per_page_options"`
	MaxPagesVisible     int   `json:"max_pages_visible"`
	ShowJumpToPage      bool  `json:"show_jump_to_page"`
	JumpToPageThreshold int   `json:"jump_to_page_threshold"`
	mu                  sync.RWMutex
}

// NewPaginationSection creates a pagination section with default settings.
func NewPaginationSection() *PaginationSection {
	s := &PaginationSection{}
	s.Reset()
	return s
}

func (s *PaginationSection) ID() string    { return SectionIDPagination }
func (s *PaginationSection) Title() string { return "Pagination" }

func (s *PaginationSection) Description() string {
	return "Default page size, selectable page sizes, visible page window and jump-to-page threshold."
}

// Data returns the current configuration data.
func (s *PaginationSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	options := make([]any, len(s.PerPageOptions))
	for i, n := range s.PerPageOptions {
		options[i] = n
	}

	return map[string]any{
		"default_per_page":       s.DefaultPerPage,
		"per_page_options":       options,
		"max_pages_visible":      s.MaxPagesVisible,
		"show_jump_to_page":      s.ShowJumpToPage,
		"jump_to_page_threshold": s.JumpToPageThreshold,
	}
}

// SetData updates the configuration from the provided data.
func (s *PaginationSection) SetData(data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		var err error
		switch key {
		case "default_per_page":
			s.DefaultPerPage, err = parseInt(key, value)
		case "per_page_options":
			s.PerPageOptions, err = parseIntList(key, value)
		case "max_pages_visible":
			s.MaxPagesVisible, err = parseInt(key, value)
		case "jump_to_page_threshold":
			s.JumpToPageThreshold, err = parseInt(key, value)
		case "show_jump_to_page":
			b, ok := value.(bool)
			if !ok {
				return fmt.Errorf("invalid value type for %s: expected bool, got %T", key, value)
			}
			s.ShowJumpToPage = b
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate checks that the default page size is one of the options.
func (s *PaginationSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.DefaultPerPage < 1 {
		return fmt.Errorf("default_per_page must be positive, got %d", s.DefaultPerPage)
	}
	if len(s.PerPageOptions) == 0 {
		return fmt.Errorf("per_page_options cannot be empty")
	}

	found := false
	for _, n := range s.PerPageOptions {
		if n < 1 {
			return fmt.Errorf("per_page_options must be positive, got %d", n)
		}
		if n == s.DefaultPerPage {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("default_per_page %d is not in per_page_options %v", s.DefaultPerPage, s.PerPageOptions)
	}

	// Two leading and two trailing pages plus the current one.
	if s.MaxPagesVisible < 5 {
		return fmt.Errorf("max_pages_visible must be at least 5, got %d", s.MaxPagesVisible)
	}
	if s.JumpToPageThreshold < 1 {
		return fmt.Errorf("jump_to_page_threshold must be positive, got %d", s.JumpToPageThreshold)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *PaginationSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.DefaultPerPage = defaultPerPage
	s.PerPageOptions = append([]int(nil), defaultPerPageOptions...)
	s.MaxPagesVisible = defaultMaxPagesVisible
	s.ShowJumpToPage = defaultShowJumpToPage
	s.JumpToPageThreshold = defaultJumpToPageThreshold
}

// Snapshot returns a copy of the settings safe to use without locking.
func (s *PaginationSection) Snapshot() PaginationSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return PaginationSettings{
		DefaultPerPage:      s.DefaultPerPage,
		PerPageOptions:      append([]int(nil), s.PerPageOptions...),
		MaxPagesVisible:     s.MaxPagesVisible,
		ShowJumpToPage:      s.ShowJumpToPage,
		JumpToPageThreshold: s.JumpToPageThreshold,
	}
}

// PaginationSettings is an unlocked copy of PaginationSection.
type PaginationSettings struct {
	DefaultPerPage      int
	PerPageOptions      []int
	MaxPagesVisible     int
	ShowJumpToPage      bool
	JumpToPageThreshold int
}

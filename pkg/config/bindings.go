package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gobwas/glob"
)

const (
	// SectionIDBindings is the identifier for the page bindings section
	SectionIDBindings = "bindings"
)

// Behaviour names a page component that can be booted for a path.
const (
	BehaviourDropdown   = "dropdown"
	BehaviourToast      = "toast"
	BehaviourTheme      = "theme"
	BehaviourPagination = "pagination"
	BehaviourTabs       = "tabs"
	BehaviourCaptcha    = "captcha"
	BehaviourValidation = "validation"
	BehaviourStrength   = "strength"
)

var knownBehaviours = map[string]bool{
	BehaviourDropdown:   true,
	BehaviourToast:      true,
	BehaviourTheme:      true,
	BehaviourPagination: true,
	BehaviourTabs:       true,
	BehaviourCaptcha:    true,
	BehaviourValidation: true,
	BehaviourStrength:   true,
}

// BindingRule attaches behaviours to request paths matching a glob pattern.
// Patterns use '/' as separator: "*" stays within a segment, "**" crosses them.
type BindingRule struct {
	Pattern     string   `json:"pattern"`
	Description string   `json:"description"`
	Behaviours  []string `json:"behaviours"`
}

// BindingsSection decides which behaviours boot on which pages.
type BindingsSection struct {
	rules []BindingRule
	mu    sync.RWMutex
}

// NewBindingsSection creates a bindings section with the default layout.
func NewBindingsSection() *BindingsSection {
	s := &BindingsSection{}
	s.Reset()
	return s
}

// DefaultBindings returns the rules used when nothing is configured.
func DefaultBindings() []BindingRule {
	return []BindingRule{
		{
			Pattern:     "/**",
			Description: "Navigation menus, notifications and theme on every page",
			Behaviours:  []string{BehaviourDropdown, BehaviourToast, BehaviourTheme},
		},
		{
			Pattern:     "/admin/**",
			Description: "Admin listings and user detail tabs",
			Behaviours:  []string{BehaviourPagination, BehaviourTabs},
		},
		{
			Pattern:     "/auth/{register,reset-password/*}",
			Description: "Password forms",
			Behaviours:  []string{BehaviourValidation, BehaviourStrength, BehaviourCaptcha},
		},
		{
			Pattern:     "/{auth/login,contact}",
			Description: "Forms guarded by captcha",
			Behaviours:  []string{BehaviourValidation, BehaviourCaptcha},
		},
	}
}

// ID returns the section identifier.
func (s *BindingsSection) ID() string {
	return SectionIDBindings
}

// Title returns the section title.
func (s *BindingsSection) Title() string {
	return "Page Bindings"
}

// Description returns the section description.
func (s *BindingsSection) Description() string {
	return "Path patterns selecting which page behaviours are started"
}

// Data returns the current configuration data.
func (s *BindingsSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules := make([]interface{}, len(s.rules))
	for i, r := range s.rules {
		behaviours := make([]interface{}, len(r.Behaviours))
		for j, b := range r.Behaviours {
			behaviours[j] = b
		}
		rules[i] = map[string]interface{}{
			"pattern":     r.Pattern,
			"description": r.Description,
			"behaviours":  behaviours,
		}
	}

	return map[string]interface{}{
		"rules": rules,
	}
}

// SetData updates the configuration from the provided data.
func (s *BindingsSection) SetData(data map[string]interface{}) error {
	rulesData, ok := data["rules"]
	if !ok {
		return nil // No rules key, keep defaults
	}

	rulesSlice, ok := rulesData.([]interface{})
	if !ok {
		return fmt.Errorf("invalid rules type: expected []interface{}, got %T", rulesData)
	}

	rules := make([]BindingRule, 0, len(rulesSlice))
	for i, item := range rulesSlice {
		ruleMap, ok := item.(map[string]interface{})
		if !ok {
			return fmt.Errorf("invalid rule at index %d: expected map, got %T", i, item)
		}

		pattern, ok := ruleMap["pattern"].(string)
		if !ok {
			return fmt.Errorf("invalid rule at index %d: missing or invalid pattern field", i)
		}

		description := ""
		if v, has := ruleMap["description"]; has {
			if description, ok = v.(string); !ok {
				return fmt.Errorf("invalid rule at index %d: description field is not a string (got %T)", i, v)
			}
		}

		var behaviours []string
		if v, has := ruleMap["behaviours"]; has {
			list, err := parseStringList(fmt.Sprintf("rules[%d].behaviours", i), v)
			if err != nil {
				return err
			}
			behaviours = list
		}

		rules = append(rules, BindingRule{
			Pattern:     pattern,
			Description: description,
			Behaviours:  behaviours,
		})
	}

	s.mu.Lock()
	s.rules = rules
	s.mu.Unlock()
	return nil
}

// Validate checks every pattern compiles and every behaviour is known.
func (s *BindingsSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, r := range s.rules {
		if strings.TrimSpace(r.Pattern) == "" {
			return fmt.Errorf("pattern at index %d is empty", i)
		}
		if _, err := glob.Compile(r.Pattern, '/'); err != nil {
			return fmt.Errorf("pattern at index %d (%q) does not compile: %w", i, r.Pattern, err)
		}
		for _, b := range r.Behaviours {
			if !knownBehaviours[b] {
				return fmt.Errorf("rule %q names unknown behaviour %q", r.Pattern, b)
			}
		}
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *BindingsSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = DefaultBindings()
}

// GetRules returns a copy of all rules.
func (s *BindingsSection) GetRules() []BindingRule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]BindingRule, len(s.rules))
	for i, r := range s.rules {
		out[i] = BindingRule{
			Pattern:     r.Pattern,
			Description: r.Description,
			Behaviours:  append([]string(nil), r.Behaviours...),
		}
	}
	return out
}

// AddRule appends a rule. Patterns must be unique.
func (s *BindingsSection) AddRule(rule BindingRule) error {
	rule.Pattern = strings.TrimSpace(rule.Pattern)
	if rule.Pattern == "" {
		return fmt.Errorf("pattern cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.rules {
		if r.Pattern == rule.Pattern {
			return fmt.Errorf("pattern '%s' already exists", rule.Pattern)
		}
	}
	s.rules = append(s.rules, rule)
	return nil
}

// RemoveRule removes a rule by index.
func (s *BindingsSection) RemoveRule(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.rules) {
		return fmt.Errorf("invalid rule index: %d", index)
	}
	s.rules = append(s.rules[:index], s.rules[index+1:]...)
	return nil
}

package page

import (
	"fmt"

	"github.com/entrhq/pagekit/pkg/config"
	"github.com/gobwas/glob"
)

type compiledRule struct {
	pattern    string
	matcher    glob.Glob
	behaviours []string
}

// Bindings maps request paths to the behaviours booted on them.
type Bindings struct {
	rules []compiledRule
}

// NewBindings compiles rules. Patterns use '/' as separator.
func NewBindings(rules []config.BindingRule) (*Bindings, error) {
	b := &Bindings{}
	for _, r := range rules {
		g, err := glob.Compile(r.Pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("failed to compile binding %q: %w", r.Pattern, err)
		}
		b.rules = append(b.rules, compiledRule{
			pattern:    r.Pattern,
			matcher:    g,
			behaviours: append([]string(nil), r.Behaviours...),
		})
	}
	return b, nil
}

// DefaultBindings compiles config.DefaultBindings.
func DefaultBindings() *Bindings {
	b, err := NewBindings(config.DefaultBindings())
	if err != nil {
		panic(err)
	}
	return b
}

// Behaviours returns the behaviours of every rule matching path, in rule
// order without duplicates.
func (b *Bindings) Behaviours(path string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range b.rules {
		if !r.matcher.Match(path) {
			continue
		}
		for _, name := range r.behaviours {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// Has reports whether behaviour boots on path.
func (b *Bindings) Has(path, behaviour string) bool {
	for _, name := range b.Behaviours(path) {
		if name == behaviour {
			return true
		}
	}
	return false
}

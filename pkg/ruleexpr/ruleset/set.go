package ruleset

import (
	"fmt"
	"sort"
	"sync"

	"github.com/randalmurphal/ruleexpr/pkg/ruleexpr/expr"
)

// Compiled is a rule together with its parsed tree.
type Compiled struct {
	Rule Rule
	Expr expr.Expr
}

// Set is a thread-safe collection of compiled rules indexed by name.
// Trees are immutable once parsed, so a Compiled taken from a Set may be
// evaluated concurrently with further changes to the Set.
type Set struct {
	mu    sync.RWMutex
	rules map[string]Compiled
}

// NewSet creates a new empty set.
func NewSet() *Set {
	return &Set{
		rules: make(map[string]Compiled),
	}
}

// Add compiles r and adds or replaces it in the set.
// The set is unchanged if compilation fails.
func (s *Set) Add(r Rule, opts ...expr.Option) (Compiled, error) {
	x, err := Compile(r, opts...)
	if err != nil {
		return Compiled{}, err
	}

	c := Compiled{Rule: r, Expr: x}
	s.Put(c)
	return c, nil
}

// Put adds or replaces an already compiled rule.
func (s *Set) Put(c Compiled) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[c.Rule.Name] = c
}

// Get returns the compiled rule for name and whether it exists.
func (s *Set) Get(name string) (Compiled, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.rules[name]
	return c, ok
}

// Remove deletes a rule from the set.
func (s *Set) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rules, name)
}

// Names returns the rule names in sorted order.
func (s *Set) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.rules))
	for name := range s.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of rules in the set.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

// Snapshot returns the compiled rules ordered by name.
// Later changes to the set do not affect the returned slice.
func (s *Set) Snapshot() []Compiled {
	s.mu.RLock()
	out := make([]Compiled, 0, len(s.rules))
	for _, c := range s.rules {
		out = append(out, c)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Rule.Name < out[j].Rule.Name
	})
	return out
}

// LoadStore compiles every rule in store and adds it to the set.
// All rules are compiled before any is added, so a rule that fails to
// compile leaves the set unchanged. Returns the number of rules loaded.
func (s *Set) LoadStore(store Store, opts ...expr.Option) (int, error) {
	rules, err := store.List()
	if err != nil {
		return 0, fmt.Errorf("list rules: %w", err)
	}

	compiled := make([]Compiled, 0, len(rules))
	for _, r := range rules {
		x, err := Compile(r, opts...)
		if err != nil {
			return 0, err
		}
		compiled = append(compiled, Compiled{Rule: r, Expr: x})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range compiled {
		s.rules[c.Rule.Name] = c
	}
	return len(compiled), nil
}

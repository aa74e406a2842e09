package ruleset

import (
	"sort"
	"sync"
)

// MemoryStore is an in-memory rule store.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	rules  map[string]Rule
	closed bool
}

// NewMemoryStore creates a new in-memory rule store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rules: make(map[string]Rule),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(r Rule) (Rule, error) {
	if err := r.Validate(); err != nil {
		return Rule{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return Rule{}, ErrStoreClosed
	}

	stored := prepare(r, m.rules[r.Name].ID)
	m.rules[r.Name] = stored
	return stored, nil
}

// Get implements Store.
func (m *MemoryStore) Get(name string) (Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Rule{}, ErrStoreClosed
	}

	r, ok := m.rules[name]
	if !ok {
		return Rule{}, ErrNotFound
	}
	return r, nil
}

// List implements Store.
func (m *MemoryStore) List() ([]Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	rules := make([]Rule, 0, len(m.rules))
	for _, r := range m.rules {
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].Name < rules[j].Name
	})
	return rules, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.rules, name)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.rules = nil
	return nil
}

// Len returns the number of stored rules.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rules)
}

package records

import (
	"fmt"
	"sort"
	"sync"
)

// Facts is a concurrent safe map of facts keyed by ID. Reads hand out deep
// copies, so a caller can never mutate a stored record in place; all changes
// go back through Set.
type Facts struct {
	mu    sync.RWMutex
	facts map[string]*Fact
}

// FactsOption defines a function that configures a Facts instance.
type FactsOption func(*Facts)

// WithFactsCapacity sets the initial capacity of the facts map.
func WithFactsCapacity(capacity int) FactsOption {
	return func(f *Facts) {
		f.facts = make(map[string]*Fact, capacity)
	}
}

// NewFacts creates a new Facts map with optional configuration.
func NewFacts(opts ...FactsOption) *Facts {
	f := &Facts{
		facts: make(map[string]*Fact),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Get returns a copy of a fact by id and whether it exists.
func (f *Facts) Get(id string) (*Fact, bool) {
	f.mu.RLock()
	fact, ok := f.facts[id]
	f.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return fact.Copy(), true
}

// Add adds a fact, returning an error if it already exists.
func (f *Facts) Add(fact *Fact) error {
	if fact == nil {
		return fmt.Errorf("fact cannot be nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.facts[fact.ID]; exists {
		return fmt.Errorf("fact with ID %s already exists", fact.ID)
	}

	f.facts[fact.ID] = fact.Copy()
	return nil
}

// Set sets a fact by id. Returns an error if fact is nil.
func (f *Facts) Set(id string, fact *Fact) error {
	if fact == nil {
		return fmt.Errorf("fact cannot be nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.facts[id] = fact.Copy()
	return nil
}

// List returns copies of all facts sorted by ID for deterministic iteration.
func (f *Facts) List() []*Fact {
	f.mu.RLock()
	defer f.mu.RUnlock()

	list := make([]*Fact, 0, len(f.facts))
	for _, fact := range f.facts {
		list = append(list, fact.Copy())
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list
}

// ListDomain returns copies of all facts for a domain, sorted by ID.
func (f *Facts) ListDomain(domain string) []*Fact {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var list []*Fact
	for _, fact := range f.facts {
		if fact.Domain == domain {
			list = append(list, fact.Copy())
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list
}

// Len returns the number of facts.
func (f *Facts) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.facts)
}

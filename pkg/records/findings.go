package records

import (
	"fmt"
	"sort"
	"sync"
)

// Findings is a concurrent safe map of findings keyed by ID.
type Findings struct {
	mu       sync.RWMutex
	findings map[string]*Finding
}

// NewFindings creates a new Findings map.
func NewFindings() *Findings {
	return &Findings{
		findings: make(map[string]*Finding),
	}
}

// Get returns a finding by id and whether it exists.
func (f *Findings) Get(id string) (*Finding, bool) {
	f.mu.RLock()
	finding, ok := f.findings[id]
	f.mu.RUnlock()
	return finding, ok
}

// Add adds a finding, returning an error if it already exists.
func (f *Findings) Add(finding *Finding) error {
	if finding == nil {
		return fmt.Errorf("finding cannot be nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.findings[finding.ID]; exists {
		return fmt.Errorf("finding with ID %s already exists", finding.ID)
	}

	f.findings[finding.ID] = finding
	return nil
}

// List returns all findings sorted by ID for deterministic iteration.
func (f *Findings) List() []*Finding {
	f.mu.RLock()
	defer f.mu.RUnlock()

	list := make([]*Finding, 0, len(f.findings))
	for _, finding := range f.findings {
		list = append(list, finding)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list
}

// Len returns the number of findings.
func (f *Findings) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.findings)
}

package records

import (
	"github.com/agentstation/utc"
)

// Severity classifies how serious a finding is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// String returns the string representation of a Severity.
func (s Severity) String() string {
	return string(s)
}

// Valid reports whether the severity is recognized.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Rank returns an ordering value for severity comparison; higher is worse.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// DraftStatus is derived from the confirmation status of every cited fact.
// It is never hand-set.
type DraftStatus string

const (
	// DraftStatusDraft means at least one cited fact is still provisional
	// or corrected.
	DraftStatusDraft DraftStatus = "draft"
	// DraftStatusFinal means every cited fact is confirmed.
	DraftStatusFinal DraftStatus = "final"
	// DraftStatusNeedsReview means at least one cited fact was rejected.
	DraftStatusNeedsReview DraftStatus = "needs_review"
)

// String returns the string representation of a DraftStatus.
func (s DraftStatus) String() string {
	return string(s)
}

// Finding is a derived conclusion (risk, work item, recommendation) that
// must cite one or more stored facts.
type Finding struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Phase       string   `json:"phase,omitempty" yaml:"phase,omitempty"` // Integration phase the work lands in (day_one, short_term, long_term)

	BasedOnFacts []string    `json:"based_on_facts" yaml:"based_on_facts"` // Cited fact IDs; non-empty, all must exist
	DraftStatus  DraftStatus `json:"draft_status" yaml:"draft_status"`     // Derived from cited fact statuses

	CreatedAt utc.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt utc.Time `json:"updated_at" yaml:"updated_at"`
}

// Cites reports whether the finding cites the given fact ID.
func (f *Finding) Cites(factID string) bool {
	for _, id := range f.BasedOnFacts {
		if id == factID {
			return true
		}
	}
	return false
}

// Copy returns a deep copy of the finding.
func (f *Finding) Copy() *Finding {
	c := *f
	if f.BasedOnFacts != nil {
		c.BasedOnFacts = make([]string, len(f.BasedOnFacts))
		copy(c.BasedOnFacts, f.BasedOnFacts)
	}
	return &c
}

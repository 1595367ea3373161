// Package records defines the domain types shared by every evidentry
// component: facts, findings, documents, and their concurrent collections.
package records

import (
	"strings"
	"unicode"

	"github.com/agentstation/utc"
)

// ConfirmationStatus tracks a fact through its review lifecycle.
type ConfirmationStatus string

const (
	// StatusProvisional is the initial status of every stored fact.
	StatusProvisional ConfirmationStatus = "provisional"
	// StatusConfirmed means a reviewer vouched for the fact as extracted.
	StatusConfirmed ConfirmationStatus = "confirmed"
	// StatusCorrected means a reviewer changed a value; the old value is
	// retained in the correction history forever.
	StatusCorrected ConfirmationStatus = "corrected"
	// StatusRejected removes the fact from all downstream aggregation.
	// The record itself is never deleted.
	StatusRejected ConfirmationStatus = "rejected"
)

// String returns the string representation of a ConfirmationStatus.
func (s ConfirmationStatus) String() string {
	return string(s)
}

// Valid reports whether the status is a recognized lifecycle state.
func (s ConfirmationStatus) Valid() bool {
	switch s {
	case StatusProvisional, StatusConfirmed, StatusCorrected, StatusRejected:
		return true
	}
	return false
}

// Unspecified is the sentinel detail value meaning "the source document did
// not say". Unspecified values are excluded from merged attributes and
// checked against the domain's critical-field checklist instead.
const Unspecified = "unspecified"

// Evidence anchors a fact to its source document.
type Evidence struct {
	DocID        string `json:"doc_id" yaml:"doc_id"`                           // Source document reference
	Quote        string `json:"quote" yaml:"quote"`                             // Quote supporting the fact
	Location     string `json:"location,omitempty" yaml:"location,omitempty"`   // Page/section/cell anchor within the document
	IsExactQuote bool   `json:"is_exact_quote" yaml:"is_exact_quote"`           // Verbatim quote rather than a paraphrase
	Authority    int    `json:"authority,omitempty" yaml:"authority,omitempty"` // Authority level inherited from the document
}

// QualityScore scores a citation 0-3: one point each for having a location
// anchor, being an exact quote, and quoting a number.
func (e Evidence) QualityScore() int {
	score := 0
	if strings.TrimSpace(e.Location) != "" {
		score++
	}
	if e.IsExactQuote {
		score++
	}
	if strings.ContainsFunc(e.Quote, unicode.IsDigit) {
		score++
	}
	return score
}

// Correction records one reviewer edit to a fact. The pre-correction value
// is retained forever.
type Correction struct {
	Field  string   `json:"field" yaml:"field"`                       // Which field was changed
	Old    string   `json:"old" yaml:"old"`                           // Value before the correction
	New    string   `json:"new" yaml:"new"`                           // Value after the correction
	Actor  string   `json:"actor" yaml:"actor"`                       // Who made the change
	Reason string   `json:"reason,omitempty" yaml:"reason,omitempty"` // Why the change was made
	Time   utc.Time `json:"time" yaml:"time"`                         // When the change was made
}

// Fact is an atomic, evidence-backed claim extracted from one document and
// tagged with the entity it describes.
type Fact struct {
	ID       string `json:"id" yaml:"id"`             // Per-domain sequential identifier (e.g. "network-003")
	Entity   Entity `json:"entity" yaml:"entity"`     // Which party the fact describes; mandatory
	Domain   string `json:"domain" yaml:"domain"`     // Analysis domain (normalized, e.g. "identity_access")
	Category string `json:"category" yaml:"category"` // Category within the domain (e.g. "application", "contract")
	Item     string `json:"item" yaml:"item"`         // Subject name (e.g. "ADP Workforce Now")

	Details    map[string]string `json:"details,omitempty" yaml:"details,omitempty"` // Attribute map; Unspecified marks known-missing values
	Evidence   Evidence          `json:"evidence" yaml:"evidence"`
	Confidence float64           `json:"confidence" yaml:"confidence"` // Extractor confidence, 0-1

	Status      ConfirmationStatus `json:"status" yaml:"status"`
	Corrections []Correction       `json:"corrections,omitempty" yaml:"corrections,omitempty"`

	CreatedAt utc.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt utc.Time `json:"updated_at" yaml:"updated_at"`
}

// Active reports whether the fact participates in downstream aggregation.
func (f *Fact) Active() bool {
	return f.Status != StatusRejected
}

// Detail returns the named detail value and whether it was set to something
// other than the Unspecified sentinel.
func (f *Fact) Detail(field string) (string, bool) {
	v, ok := f.Details[field]
	if !ok || v == Unspecified || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// Copy returns a deep copy of the fact.
func (f *Fact) Copy() *Fact {
	c := *f
	if f.Details != nil {
		c.Details = make(map[string]string, len(f.Details))
		for k, v := range f.Details {
			c.Details[k] = v
		}
	}
	if f.Corrections != nil {
		c.Corrections = make([]Correction, len(f.Corrections))
		copy(c.Corrections, f.Corrections)
	}
	return &c
}

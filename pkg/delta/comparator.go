// Package delta matches and diffs two independently-built dossier sets —
// target vs. buyer — into actionable integration deltas.
package delta

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/evidentry/evidentry/pkg/dossier"
	"github.com/evidentry/evidentry/pkg/logging"
)

// MatchType classifies how a delta result was paired.
type MatchType string

const (
	// MatchTypeMatched pairs a target dossier with a buyer dossier.
	MatchTypeMatched MatchType = "matched"
	// MatchTypeTargetOnly is a target item with no buyer counterpart.
	MatchTypeTargetOnly MatchType = "target_only"
	// MatchTypeBuyerOnly is a buyer item with no target counterpart.
	MatchTypeBuyerOnly MatchType = "buyer_only"
)

// FieldDiff is one attribute-level difference between paired dossiers.
type FieldDiff struct {
	Field       string `json:"field" yaml:"field"`
	TargetValue string `json:"target_value" yaml:"target_value"`
	BuyerValue  string `json:"buyer_value" yaml:"buyer_value"`
	Note        string `json:"note,omitempty" yaml:"note,omitempty"` // Human-readable note for meaningful fields
}

// Result pairs a target dossier with a buyer dossier (or either alone).
type Result struct {
	MatchType MatchType        `json:"match_type" yaml:"match_type"`
	Target    *dossier.Dossier `json:"target,omitempty" yaml:"target,omitempty"`
	Buyer     *dossier.Dossier `json:"buyer,omitempty" yaml:"buyer,omitempty"`

	AttributeDiffs    []FieldDiff `json:"attribute_diffs,omitempty" yaml:"attribute_diffs,omitempty"`
	IsVendorMismatch  bool        `json:"is_vendor_mismatch" yaml:"is_vendor_mismatch"`
	IsVersionMismatch bool        `json:"is_version_mismatch" yaml:"is_version_mismatch"`
	Notes             []string    `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Item returns the display name of whichever side is present.
func (r *Result) Item() string {
	if r.Target != nil {
		return r.Target.Item
	}
	if r.Buyer != nil {
		return r.Buyer.Item
	}
	return ""
}

// meaningfulFields get a human-readable note on every difference; the rest
// are recorded silently for completeness.
var meaningfulFields = map[string]bool{
	"vendor":   true,
	"version":  true,
	"platform": true,
	"hosting":  true,
	"region":   true,
}

// VendorMismatchNote is prepended to matched results whose vendors differ.
const VendorMismatchNote = "VENDOR MISMATCH — integration complexity high"

// VersionMismatchNote is prepended to matched results whose versions differ.
const VersionMismatchNote = "VERSION MISMATCH — upgrade alignment required"

// Comparator matches and diffs dossier sets.
type Comparator struct {
	logger *zerolog.Logger
}

// Option configures a Comparator.
type Option func(*Comparator)

// WithLogger sets the comparator logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Comparator) {
		c.logger = logger
	}
}

// NewComparator creates a Comparator.
func NewComparator(opts ...Option) *Comparator {
	c := &Comparator{logger: logging.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Match pairs target dossiers against buyer dossiers by entity-agnostic
// canonical key, falling back to case-insensitive name match. Each buyer
// dossier is consumed at most once; leftovers on either side become
// target_only / buyer_only results.
func (c *Comparator) Match(target, buyer []*dossier.Dossier) []*Result {
	// Index the buyer side for lookup by key and by name.
	buyerByKey := make(map[string]*dossier.Dossier, len(buyer))
	buyerOrder := make([]string, 0, len(buyer))
	for _, d := range buyer {
		key := comparisonKey(d)
		if _, dup := buyerByKey[key]; !dup {
			buyerByKey[key] = d
			buyerOrder = append(buyerOrder, key)
		}
	}

	consumed := make(map[string]bool)
	var results []*Result

	for _, t := range target {
		counterpart := buyerByKey[comparisonKey(t)]
		matchedKey := comparisonKey(t)
		if counterpart == nil || consumed[matchedKey] {
			counterpart, matchedKey = c.matchByName(t, buyerByKey, buyerOrder, consumed)
		}

		if counterpart == nil {
			results = append(results, &Result{MatchType: MatchTypeTargetOnly, Target: t})
			continue
		}

		consumed[matchedKey] = true
		result := &Result{MatchType: MatchTypeMatched, Target: t, Buyer: counterpart}
		c.Diff(result)
		results = append(results, result)
	}

	for _, key := range buyerOrder {
		if !consumed[key] {
			results = append(results, &Result{MatchType: MatchTypeBuyerOnly, Buyer: buyerByKey[key]})
		}
	}

	c.logger.Debug().
		Int("target", len(target)).
		Int("buyer", len(buyer)).
		Int("results", len(results)).
		Msg("Dossier sets matched")
	return results
}

// matchByName finds an unconsumed buyer dossier with the same item name.
func (c *Comparator) matchByName(t *dossier.Dossier, byKey map[string]*dossier.Dossier, order []string, consumed map[string]bool) (*dossier.Dossier, string) {
	name := strings.ToLower(strings.TrimSpace(t.Item))
	for _, key := range order {
		if consumed[key] {
			continue
		}
		candidate := byKey[key]
		if strings.ToLower(strings.TrimSpace(candidate.Item)) == name {
			return candidate, key
		}
	}
	return nil, ""
}

// Diff fills a matched result with attribute-level differences over the
// union of both attribute maps. Differences in vendor or version raise the
// mismatch flags and prepend a high-visibility note, but only when both
// sides carry a value: a one-sided absence is a data gap, recorded as a
// plain diff rather than a mismatch.
func (c *Comparator) Diff(r *Result) {
	if r.Target == nil || r.Buyer == nil {
		return
	}

	fields := make(map[string]bool)
	for f := range r.Target.Attributes {
		fields[f] = true
	}
	for f := range r.Buyer.Attributes {
		fields[f] = true
	}

	ordered := make([]string, 0, len(fields))
	for f := range fields {
		ordered = append(ordered, f)
	}
	sort.Strings(ordered)

	for _, field := range ordered {
		tv := r.Target.Attributes[field]
		bv := r.Buyer.Attributes[field]
		if equalFold(tv, bv) {
			continue
		}

		diff := FieldDiff{Field: field, TargetValue: tv, BuyerValue: bv}
		if meaningfulFields[field] {
			diff.Note = fmt.Sprintf("%s: %s (target) vs %s (buyer)", field, orNone(tv), orNone(bv))
			r.Notes = append(r.Notes, diff.Note)
		}
		r.AttributeDiffs = append(r.AttributeDiffs, diff)

		switch field {
		case "vendor":
			if tv != "" && bv != "" {
				r.IsVendorMismatch = true
			}
		case "version":
			if tv != "" && bv != "" {
				r.IsVersionMismatch = true
			}
		}
	}

	if r.IsVersionMismatch {
		r.Notes = append([]string{VersionMismatchNote}, r.Notes...)
	}
	if r.IsVendorMismatch {
		r.Notes = append([]string{VendorMismatchNote}, r.Notes...)
	}
}

// comparisonKey strips the entity component off a canonical key so target
// and buyer items describing the same thing can pair up.
func comparisonKey(d *dossier.Dossier) string {
	return strings.TrimPrefix(d.CanonicalKey, d.Entity.String()+"|")
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func orNone(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

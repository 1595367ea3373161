package dossier

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/evidentry/evidentry/pkg/logging"
	"github.com/evidentry/evidentry/pkg/records"
)

// Dossier is the merged, per-entity, per-item aggregate view built from all
// non-rejected facts sharing a canonical key. Dossiers are derived,
// disposable views: they are rebuilt from source on every pass and hold no
// independent truth.
type Dossier struct {
	Entity       records.Entity `json:"entity" yaml:"entity"`
	Domain       string         `json:"domain" yaml:"domain"`
	CanonicalKey string         `json:"canonical_key" yaml:"canonical_key"`
	Item         string         `json:"item" yaml:"item"` // Display name, from the first contributing fact

	Attributes         map[string]string   `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	AttributeConflicts map[string][]string `json:"attribute_conflicts,omitempty" yaml:"attribute_conflicts,omitempty"`
	HasConflicts       bool                `json:"has_conflicts" yaml:"has_conflicts"`

	FactIDs  []string           `json:"fact_ids" yaml:"fact_ids"`
	Evidence []records.Evidence `json:"evidence,omitempty" yaml:"evidence,omitempty"`

	DataGaps         []string `json:"data_gaps,omitempty" yaml:"data_gaps,omitempty"`
	DataCompleteness float64  `json:"data_completeness" yaml:"data_completeness"`
	EvidenceQuality  float64  `json:"evidence_quality" yaml:"evidence_quality"`

	RelatedFindings []string `json:"related_findings,omitempty" yaml:"related_findings,omitempty"`
	OverallStatus   Status   `json:"overall_status" yaml:"overall_status"`
}

// Attribute returns a merged attribute value.
func (d *Dossier) Attribute(field string) string {
	return d.Attributes[field]
}

// ConflictCount returns the number of fields with conflicting observations.
func (d *Dossier) ConflictCount() int {
	return len(d.AttributeConflicts)
}

// Builder builds dossiers from facts and their related findings.
type Builder struct {
	logger *zerolog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the builder logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a dossier builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{logger: logging.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build assembles the dossier for one canonical key from the given fact
// set. Rejected facts and facts with other keys are ignored. Returns nil
// when no fact matches.
func (b *Builder) Build(key string, facts []*records.Fact, findings []*records.Finding) *Dossier {
	var matched []*records.Fact
	for _, f := range facts {
		if f.Active() && CanonicalKey(f) == key {
			matched = append(matched, f)
		}
	}
	if len(matched) == 0 {
		return nil
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	first := matched[0]
	d := &Dossier{
		Entity:             first.Entity,
		Domain:             NormalizeDomain(first.Domain),
		CanonicalKey:       key,
		Item:               first.Item,
		Attributes:         make(map[string]string),
		AttributeConflicts: make(map[string][]string),
	}

	for _, f := range matched {
		d.FactIDs = append(d.FactIDs, f.ID)
		d.Evidence = append(d.Evidence, f.Evidence)
		b.mergeDetails(d, f)
	}
	d.HasConflicts = len(d.AttributeConflicts) > 0

	b.computeGaps(d)
	d.EvidenceQuality = evidenceQuality(d.Evidence)
	d.RelatedFindings = relatedFindingIDs(d.FactIDs, findings)
	d.OverallStatus = ComputeStatus(d, related(d.RelatedFindings, findings))

	if d.HasConflicts {
		b.logger.Warn().
			Str("key", key).
			Int("conflicts", d.ConflictCount()).
			Msg("Dossier carries unresolved attribute conflicts")
	}
	return d
}

// BuildDomain builds one dossier per unique canonical key in a domain,
// optionally filtered to a single entity. Same-name items belonging to
// different entities never collapse: the entity is part of the key.
func (b *Builder) BuildDomain(domain string, facts []*records.Fact, findings []*records.Finding, entity ...records.Entity) []*Dossier {
	normalized := NormalizeDomain(domain)

	var filter *records.Entity
	if len(entity) > 0 {
		filter = &entity[0]
	}

	keys := make(map[string]bool)
	var order []string
	for _, f := range facts {
		if !f.Active() || NormalizeDomain(f.Domain) != normalized {
			continue
		}
		if filter != nil && f.Entity != *filter {
			continue
		}
		key := CanonicalKey(f)
		if !keys[key] {
			keys[key] = true
			order = append(order, key)
		}
	}
	sort.Strings(order)

	dossiers := make([]*Dossier, 0, len(order))
	for _, key := range order {
		if d := b.Build(key, facts, findings); d != nil {
			dossiers = append(dossiers, d)
		}
	}

	b.logger.Debug().
		Str("domain", normalized).
		Int("dossiers", len(dossiers)).
		Msg("Domain dossiers built")
	return dossiers
}

// mergeDetails folds one fact's details into the dossier: the first value
// sets a field, every later differing value goes to the conflict map, and
// the Unspecified sentinel never becomes an attribute.
func (b *Builder) mergeDetails(d *Dossier, f *records.Fact) {
	fields := make([]string, 0, len(f.Details))
	for field := range f.Details {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		value, ok := f.Detail(field)
		if !ok {
			continue
		}

		current, set := d.Attributes[field]
		if !set {
			d.Attributes[field] = value
			continue
		}
		if current == value {
			continue
		}

		// A genuine conflict: record every distinct observed value,
		// the first one included, and leave resolution to a reviewer.
		if len(d.AttributeConflicts[field]) == 0 {
			d.AttributeConflicts[field] = append(d.AttributeConflicts[field], current)
		}
		if !contains(d.AttributeConflicts[field], value) {
			d.AttributeConflicts[field] = append(d.AttributeConflicts[field], value)
		}
	}
}

// computeGaps fills DataGaps with the critical fields that have no usable
// value — absent entirely or explicitly Unspecified — and derives
// completeness from the checklist.
func (b *Builder) computeGaps(d *Dossier) {
	critical := CriticalFields(d.Domain)
	for _, field := range critical {
		if _, ok := d.Attributes[field]; !ok {
			d.DataGaps = append(d.DataGaps, field)
		}
	}
	if len(critical) == 0 {
		d.DataCompleteness = 1
		return
	}
	d.DataCompleteness = 1 - float64(len(d.DataGaps))/float64(len(critical))
}

// evidenceQuality averages citation quality scores across the dossier.
func evidenceQuality(evidence []records.Evidence) float64 {
	if len(evidence) == 0 {
		return 0
	}
	total := 0
	for _, e := range evidence {
		total += e.QualityScore()
	}
	return float64(total) / float64(len(evidence))
}

// relatedFindingIDs returns IDs of findings citing any dossier fact.
func relatedFindingIDs(factIDs []string, findings []*records.Finding) []string {
	cited := make(map[string]bool, len(factIDs))
	for _, id := range factIDs {
		cited[id] = true
	}

	var ids []string
	for _, finding := range findings {
		for _, id := range finding.BasedOnFacts {
			if cited[id] {
				ids = append(ids, finding.ID)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids
}

// related resolves finding IDs back to findings.
func related(ids []string, findings []*records.Finding) []*records.Finding {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []*records.Finding
	for _, f := range findings {
		if want[f.ID] {
			out = append(out, f)
		}
	}
	return out
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

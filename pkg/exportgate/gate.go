// Package exportgate decides whether a dossier set is clean enough to hand
// to downstream report generation. The gate never fixes anything; it only
// blocks or warns.
package exportgate

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/evidentry/evidentry/pkg/constants"
	"github.com/evidentry/evidentry/pkg/dossier"
	"github.com/evidentry/evidentry/pkg/errors"
	"github.com/evidentry/evidentry/pkg/logging"
)

// Readiness is the outcome of an export check.
type Readiness struct {
	IsReady         bool     `json:"is_ready" yaml:"is_ready"`
	BlockingReasons []string `json:"blocking_reasons,omitempty" yaml:"blocking_reasons,omitempty"`
	Warnings        []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	ConflictCount      int                `json:"conflict_count" yaml:"conflict_count"`
	UnknownEntityCount int                `json:"unknown_entity_count" yaml:"unknown_entity_count"`
	DomainCompleteness map[string]float64 `json:"domain_completeness,omitempty" yaml:"domain_completeness,omitempty"`
}

// Gate runs readiness checks over built dossiers.
type Gate struct {
	conflictThreshold int
	completenessWarn  float64
	logger            *zerolog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the gate logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

// WithConflictThreshold overrides the conflict count above which the gate
// blocks instead of warning.
func WithConflictThreshold(n int) Option {
	return func(g *Gate) {
		g.conflictThreshold = n
	}
}

// NewGate creates a Gate with default thresholds.
func NewGate(opts ...Option) *Gate {
	g := &Gate{
		conflictThreshold: constants.ConflictBlockThreshold,
		completenessWarn:  constants.DomainCompletenessWarn,
		logger:            logging.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check evaluates the dossier set plus the count of ingestion attempts that
// were dropped for missing or unknown entity attribution. Dropped proposals
// never become dossiers, so the caller must carry that count in explicitly.
func (g *Gate) Check(dossiers []*dossier.Dossier, unknownEntityCount int) *Readiness {
	r := &Readiness{
		UnknownEntityCount: unknownEntityCount,
		DomainCompleteness: make(map[string]float64),
	}

	domainTotals := make(map[string]float64)
	domainCounts := make(map[string]int)
	for _, d := range dossiers {
		r.ConflictCount += d.ConflictCount()
		if !d.Entity.Valid() {
			r.UnknownEntityCount++
		}
		domainTotals[d.Domain] += d.DataCompleteness
		domainCounts[d.Domain]++
	}

	if r.UnknownEntityCount > 0 {
		r.BlockingReasons = append(r.BlockingReasons,
			fmt.Sprintf("%d item(s) lack entity attribution", r.UnknownEntityCount))
	}

	switch {
	case r.ConflictCount > g.conflictThreshold:
		r.BlockingReasons = append(r.BlockingReasons,
			fmt.Sprintf("%d unresolved attribute conflicts exceed the limit of %d", r.ConflictCount, g.conflictThreshold))
	case r.ConflictCount > 0:
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("%d unresolved attribute conflict(s)", r.ConflictCount))
	}

	domains := make([]string, 0, len(domainCounts))
	for domain := range domainCounts {
		domains = append(domains, domain)
	}
	sort.Strings(domains)
	for _, domain := range domains {
		avg := domainTotals[domain] / float64(domainCounts[domain])
		r.DomainCompleteness[domain] = avg
		if avg < g.completenessWarn {
			r.Warnings = append(r.Warnings,
				fmt.Sprintf("domain %s average completeness %.0f%% is below %.0f%%",
					domain, avg*100, g.completenessWarn*100))
		}
	}

	r.IsReady = len(r.BlockingReasons) == 0

	event := g.logger.Info()
	if !r.IsReady {
		event = g.logger.Warn()
	}
	event.
		Bool("ready", r.IsReady).
		Int("dossiers", len(dossiers)).
		Int("conflicts", r.ConflictCount).
		Int("unknown_entity", r.UnknownEntityCount).
		Msg("Export readiness checked")
	return r
}

// Err converts a non-ready result into an ExportBlockedError, or nil.
func (r *Readiness) Err() error {
	if r.IsReady {
		return nil
	}
	return &errors.ExportBlockedError{Reasons: r.BlockingReasons}
}

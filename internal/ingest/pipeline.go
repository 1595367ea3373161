// Package ingest runs domain producers concurrently and merges their output
// into the evidence store. Producers only ever write to a local buffer; the
// merge into the shared store happens after every producer has finished.
package ingest

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/evidentry/evidentry/internal/evidence"
	"github.com/evidentry/evidentry/pkg/constants"
	"github.com/evidentry/evidentry/pkg/errors"
	"github.com/evidentry/evidentry/pkg/logging"
)

// Producer emits fact proposals for one analysis domain. Emit returns an
// error once the iteration cap is hit or the run is canceled; producers must
// stop emitting when that happens.
type Producer interface {
	Domain() string
	Produce(ctx context.Context, emit func(evidence.FactProposal) error) error
}

// ProducerFunc adapts a function to the Producer interface.
type ProducerFunc struct {
	Name string
	Fn   func(ctx context.Context, emit func(evidence.FactProposal) error) error
}

// Domain returns the producer's domain name.
func (p ProducerFunc) Domain() string { return p.Name }

// Produce invokes the wrapped function.
func (p ProducerFunc) Produce(ctx context.Context, emit func(evidence.FactProposal) error) error {
	return p.Fn(ctx, emit)
}

// DomainReport summarizes one producer's run.
type DomainReport struct {
	Domain    string   `json:"domain" yaml:"domain"`
	Proposed  int      `json:"proposed" yaml:"proposed"`
	Stored    int      `json:"stored" yaml:"stored"`
	Folded    int      `json:"folded" yaml:"folded"` // near-duplicates folded into existing facts
	Rejected  int      `json:"rejected" yaml:"rejected"`
	Errors    []string `json:"errors,omitempty" yaml:"errors,omitempty"`
	CapHit    bool     `json:"cap_hit" yaml:"cap_hit"`
	StoredIDs []string `json:"stored_ids,omitempty" yaml:"stored_ids,omitempty"`
}

// Report summarizes a full pipeline run.
type Report struct {
	Domains  []DomainReport `json:"domains" yaml:"domains"`
	Proposed int            `json:"proposed" yaml:"proposed"`
	Stored   int            `json:"stored" yaml:"stored"`
	Folded   int            `json:"folded" yaml:"folded"`
	Rejected int            `json:"rejected" yaml:"rejected"`
}

// Pipeline coordinates producers against a shared evidence store.
type Pipeline struct {
	store   *evidence.Store
	workers int
	cap     int
	logger  *zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithWorkers overrides the number of concurrently running producers.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithIterationCap overrides the per-producer proposal cap.
func WithIterationCap(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.cap = n
		}
	}
}

// NewPipeline creates a Pipeline writing into the given store.
func NewPipeline(store *evidence.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:   store,
		workers: constants.IngestWorkers,
		cap:     constants.ProducerIterationCap,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// buffer is the per-producer staging area. Only its own producer goroutine
// touches it until the merge phase.
type buffer struct {
	domain    string
	proposals []evidence.FactProposal
	capHit    bool
}

// Run executes every producer, waits for all of them, then merges the
// buffered proposals into the store in producer order. Producer failures and
// context cancellation abort the run before anything is merged; per-proposal
// validation errors are recorded in the report and never retried.
func (p *Pipeline) Run(ctx context.Context, producers []Producer) (*Report, error) {
	buffers := make([]*buffer, len(producers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, producer := range producers {
		buf := &buffer{domain: producer.Domain()}
		buffers[i] = buf
		producer := producer
		g.Go(func() error {
			emit := func(proposal evidence.FactProposal) error {
				if err := gctx.Err(); err != nil {
					return errors.ErrCanceled
				}
				if len(buf.proposals) >= p.cap {
					buf.capHit = true
					return errors.NewValidationError("proposals", p.cap, "producer iteration cap reached")
				}
				buf.proposals = append(buf.proposals, proposal)
				return nil
			}
			if err := producer.Produce(gctx, emit); err != nil {
				return fmt.Errorf("producer %s: %w", buf.domain, err)
			}
			return nil
		})
	}

	// Hard barrier: no merging until every producer is done.
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{}
	seen := make(map[string]bool)
	for _, fact := range p.store.Facts() {
		seen[fact.ID] = true
	}
	for _, buf := range buffers {
		dr := p.merge(buf, seen)
		report.Domains = append(report.Domains, dr)
		report.Proposed += dr.Proposed
		report.Stored += dr.Stored
		report.Folded += dr.Folded
		report.Rejected += dr.Rejected
	}
	sort.Slice(report.Domains, func(i, j int) bool {
		return report.Domains[i].Domain < report.Domains[j].Domain
	})

	p.logger.Info().
		Int("producers", len(producers)).
		Int("proposed", report.Proposed).
		Int("stored", report.Stored).
		Int("folded", report.Folded).
		Int("rejected", report.Rejected).
		Msg("Ingestion run complete")
	return report, nil
}

// merge pushes one buffer into the store. The store serializes mutation
// internally, so this is the only phase that touches shared state. seen
// carries fact IDs already present, so a proposal folded into a fact from an
// earlier buffer or an earlier run counts as folded, not stored.
func (p *Pipeline) merge(buf *buffer, seen map[string]bool) DomainReport {
	dr := DomainReport{
		Domain:   buf.domain,
		Proposed: len(buf.proposals),
		CapHit:   buf.capHit,
	}
	for _, proposal := range buf.proposals {
		id, err := p.store.AddFact(proposal)
		if err != nil {
			dr.Rejected++
			dr.Errors = append(dr.Errors, err.Error())
			continue
		}
		if seen[id] {
			dr.Folded++
			continue
		}
		seen[id] = true
		dr.Stored++
		dr.StoredIDs = append(dr.StoredIDs, id)
	}
	return dr
}

// Package evidentry assembles the evidentiary record system for an IT due
// diligence engagement: an append-only fact store, a citation ledger for
// findings, dossier aggregation, target-vs-buyer comparison, and an export
// readiness gate.
package evidentry

import (
	"context"
	"fmt"

	"github.com/evidentry/evidentry/internal/citations"
	"github.com/evidentry/evidentry/internal/evidence"
	"github.com/evidentry/evidentry/internal/ingest"
	"github.com/evidentry/evidentry/internal/registry"
	"github.com/evidentry/evidentry/internal/server"
	"github.com/evidentry/evidentry/internal/snapshot"
	"github.com/evidentry/evidentry/pkg/delta"
	"github.com/evidentry/evidentry/pkg/dossier"
	"github.com/evidentry/evidentry/pkg/errors"
	"github.com/evidentry/evidentry/pkg/exportgate"
	"github.com/evidentry/evidentry/pkg/records"
)

// Evidentry is the top-level handle on one engagement's record store.
type Evidentry interface {
	// Store returns the evidence store.
	Store() *evidence.Store

	// Ledger returns the citation ledger.
	Ledger() *citations.Ledger

	// Registry returns the document registry.
	Registry() *registry.Registry

	// Ingest runs domain producers through the bounded pipeline and merges
	// their proposals into the store.
	Ingest(ctx context.Context, producers ...ingest.Producer) (*ingest.Report, error)

	// Dossiers builds one dossier per canonical key in a domain, optionally
	// restricted to one entity.
	Dossiers(domain string, entity ...records.Entity) []*dossier.Dossier

	// Dossier builds the dossier for one canonical key.
	Dossier(key string) (*dossier.Dossier, error)

	// Delta matches and diffs target dossiers against buyer dossiers for
	// one domain.
	Delta(domain string) []*delta.Result

	// ExportCheck runs the readiness gate over every dossier.
	ExportCheck() *exportgate.Readiness

	// Save persists the full state as a YAML snapshot.
	Save(path string) error

	// Serve runs the HTTP API until the context is canceled.
	Serve(ctx context.Context) error
}

type evidentry struct {
	store    *evidence.Store
	ledger   *citations.Ledger
	registry *registry.Registry

	builder    *dossier.Builder
	comparator *delta.Comparator
	gate       *exportgate.Gate
	pipeline   *ingest.Pipeline

	config *config
}

// New creates an Evidentry instance with the given options.
func New(opts ...Option) (Evidentry, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	logger := cfg.logger

	e := &evidentry{
		registry: registry.New(registry.WithLogger(logger)),
		config:   cfg,
	}

	storeOpts := []evidence.Option{
		evidence.WithLogger(logger),
		evidence.WithDocumentResolver(e.registry),
	}
	if cfg.duplicateThreshold > 0 {
		storeOpts = append(storeOpts, evidence.WithDuplicateThreshold(cfg.duplicateThreshold))
	}
	e.store = evidence.NewStore(storeOpts...)
	e.ledger = citations.NewLedger(e.store,
		citations.WithLogger(logger),
		citations.WithDocumentResolver(e.registry))

	e.builder = dossier.NewBuilder(dossier.WithLogger(logger))
	e.comparator = delta.NewComparator(delta.WithLogger(logger))

	gateOpts := []exportgate.Option{exportgate.WithLogger(logger)}
	if cfg.conflictThreshold > 0 {
		gateOpts = append(gateOpts, exportgate.WithConflictThreshold(cfg.conflictThreshold))
	}
	e.gate = exportgate.NewGate(gateOpts...)

	pipelineOpts := []ingest.Option{ingest.WithLogger(logger)}
	if cfg.ingestWorkers > 0 {
		pipelineOpts = append(pipelineOpts, ingest.WithWorkers(cfg.ingestWorkers))
	}
	e.pipeline = ingest.NewPipeline(e.store, pipelineOpts...)

	if cfg.snapshotPath != "" {
		err := snapshot.LoadAndRestore(cfg.snapshotPath, e.store, e.ledger, e.registry, logger)
		if err != nil && !errors.Is(err, errors.ErrNotFound) {
			return nil, fmt.Errorf("restoring snapshot: %w", err)
		}
	}

	return e, nil
}

func (e *evidentry) Store() *evidence.Store       { return e.store }
func (e *evidentry) Ledger() *citations.Ledger    { return e.ledger }
func (e *evidentry) Registry() *registry.Registry { return e.registry }

func (e *evidentry) Ingest(ctx context.Context, producers ...ingest.Producer) (*ingest.Report, error) {
	return e.pipeline.Run(ctx, producers)
}

func (e *evidentry) Dossiers(domain string, entity ...records.Entity) []*dossier.Dossier {
	return e.builder.BuildDomain(domain, e.store.Facts(), e.ledger.Findings(), entity...)
}

func (e *evidentry) Dossier(key string) (*dossier.Dossier, error) {
	d := e.builder.Build(key, e.store.Facts(), e.ledger.Findings())
	if d == nil {
		return nil, &errors.NotFoundError{Resource: "dossier", ID: key}
	}
	return d, nil
}

func (e *evidentry) Delta(domain string) []*delta.Result {
	facts := e.store.Facts()
	findings := e.ledger.Findings()
	target := e.builder.BuildDomain(domain, facts, findings, records.EntityTarget)
	buyer := e.builder.BuildDomain(domain, facts, findings, records.EntityBuyer)
	return e.comparator.Match(target, buyer)
}

func (e *evidentry) ExportCheck() *exportgate.Readiness {
	facts := e.store.Facts()
	findings := e.ledger.Findings()

	built := make(map[string]bool)
	var dossiers []*dossier.Dossier
	for _, domain := range e.store.Domains() {
		normalized := dossier.NormalizeDomain(domain)
		if built[normalized] {
			continue
		}
		built[normalized] = true
		dossiers = append(dossiers, e.builder.BuildDomain(normalized, facts, findings)...)
	}
	return e.gate.Check(dossiers, e.store.EntityDefects())
}

func (e *evidentry) Save(path string) error {
	return snapshot.Save(path, e.store, e.ledger, e.registry, e.config.logger)
}

func (e *evidentry) Serve(ctx context.Context) error {
	srv := server.New(e.store, e.ledger, e.registry, e.config.server,
		server.WithLogger(e.config.logger))
	return srv.ListenAndServe(ctx)
}

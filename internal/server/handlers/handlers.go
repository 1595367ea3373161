// Package handlers implements the HTTP handlers for the evidentry API.
package handlers

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/evidentry/evidentry/internal/citations"
	"github.com/evidentry/evidentry/internal/evidence"
	"github.com/evidentry/evidentry/internal/registry"
	"github.com/evidentry/evidentry/pkg/delta"
	"github.com/evidentry/evidentry/pkg/dossier"
	"github.com/evidentry/evidentry/pkg/exportgate"
)

// Handlers holds the shared state for all endpoint handlers.
type Handlers struct {
	store      *evidence.Store
	ledger     *citations.Ledger
	registry   *registry.Registry
	builder    *dossier.Builder
	comparator *delta.Comparator
	gate       *exportgate.Gate
	logger     *zerolog.Logger
	startTime  time.Time
}

// New creates a Handlers instance.
func New(store *evidence.Store, ledger *citations.Ledger, reg *registry.Registry, logger *zerolog.Logger) *Handlers {
	return &Handlers{
		store:      store,
		ledger:     ledger,
		registry:   reg,
		builder:    dossier.NewBuilder(dossier.WithLogger(logger)),
		comparator: delta.NewComparator(delta.WithLogger(logger)),
		gate:       exportgate.NewGate(exportgate.WithLogger(logger)),
		logger:     logger,
		startTime:  time.Now(),
	}
}

// Package constants defines shared constants used throughout the evidentry system.
// Centralizing these values ensures consistency and makes tuning easier.
package constants

import "time"

// Ingestion thresholds
const (
	// MinQuoteLength is the minimum evidence quote length accepted by the store.
	// Anything shorter cannot anchor a reviewable claim.
	MinQuoteLength = 20

	// DuplicateSimilarityThreshold is the token-set similarity at or above
	// which a fact proposal is treated as a near-duplicate of an existing fact.
	DuplicateSimilarityThreshold = 0.85

	// IngestWorkers is the size of the bounded pool executing domain producers.
	IngestWorkers = 3

	// ProducerIterationCap bounds the number of proposals a single producer
	// may emit in one run. A safety limit, not a business rule.
	ProducerIterationCap = 500
)

// Dossier quality thresholds
const (
	// CompletenessRed is the completeness below which a dossier is red.
	CompletenessRed = 0.25

	// CompletenessYellow is the completeness below which a dossier is
	// at best yellow.
	CompletenessYellow = 0.50

	// CompletenessGreen is the minimum completeness for a green dossier.
	CompletenessGreen = 0.75

	// EvidenceQualityFloor is the minimum aggregate evidence-quality score
	// for a green dossier. One point each per citation for a location
	// anchor, an exact quote, and a number in the quote.
	EvidenceQualityFloor = 3.0
)

// Export gate thresholds
const (
	// ConflictBlockThreshold is the number of unresolved attribute conflicts
	// above which the export gate blocks rather than warns.
	ConflictBlockThreshold = 10

	// DomainCompletenessWarn is the per-domain average completeness below
	// which the gate records a warning.
	DomainCompletenessWarn = 0.50
)

// Timeouts
const (
	// DefaultTimeout for general operations.
	DefaultTimeout = 10 * time.Second

	// ServerReadTimeout for the HTTP API.
	ServerReadTimeout = 15 * time.Second

	// ServerWriteTimeout for the HTTP API.
	ServerWriteTimeout = 30 * time.Second

	// ServerShutdownTimeout for graceful shutdown.
	ServerShutdownTimeout = 5 * time.Second

	// IngestTimeout bounds a full ingestion run.
	IngestTimeout = 5 * time.Minute
)

// File system permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x).
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--).
	FilePermissions = 0644
)

// Server defaults
const (
	// DefaultPort is the default HTTP API port.
	DefaultPort = 8480

	// DefaultPageSize for list endpoints.
	DefaultPageSize = 100

	// MaxPageSize prevents unbounded responses.
	MaxPageSize = 1000
)

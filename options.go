package evidentry

import (
	"github.com/rs/zerolog"

	"github.com/evidentry/evidentry/internal/server"
	"github.com/evidentry/evidentry/pkg/logging"
)

// Option is a function that configures an Evidentry instance.
type Option func(*config) error

type config struct {
	logger             *zerolog.Logger
	snapshotPath       string
	duplicateThreshold float64
	conflictThreshold  int
	ingestWorkers      int
	server             server.Config
}

func defaultConfig() *config {
	return &config{
		logger: logging.Default(),
		server: server.DefaultConfig(),
	}
}

// WithLogger sets the logger used by every component.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// WithSnapshot restores state from the given snapshot path at startup, if
// the file exists, and is the default target for Save.
func WithSnapshot(path string) Option {
	return func(c *config) error {
		c.snapshotPath = path
		return nil
	}
}

// WithDuplicateThreshold overrides the near-duplicate similarity threshold
// of the evidence store.
func WithDuplicateThreshold(threshold float64) Option {
	return func(c *config) error {
		c.duplicateThreshold = threshold
		return nil
	}
}

// WithConflictThreshold overrides the export gate's conflict block limit.
func WithConflictThreshold(n int) Option {
	return func(c *config) error {
		c.conflictThreshold = n
		return nil
	}
}

// WithIngestWorkers overrides the number of concurrent ingestion producers.
func WithIngestWorkers(n int) Option {
	return func(c *config) error {
		c.ingestWorkers = n
		return nil
	}
}

// WithServerConfig overrides the HTTP server configuration.
func WithServerConfig(cfg server.Config) Option {
	return func(c *config) error {
		c.server = cfg
		return nil
	}
}

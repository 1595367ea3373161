// Package snapshot persists the full evidentiary state — facts with their
// correction history, findings, and the document registry — as a single YAML
// file, and restores it without losing IDs or history.
package snapshot

import (
	"os"
	"path/filepath"

	"github.com/agentstation/utc"
	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"

	"github.com/evidentry/evidentry/internal/citations"
	"github.com/evidentry/evidentry/internal/evidence"
	"github.com/evidentry/evidentry/internal/registry"
	"github.com/evidentry/evidentry/pkg/constants"
	"github.com/evidentry/evidentry/pkg/errors"
	"github.com/evidentry/evidentry/pkg/logging"
	"github.com/evidentry/evidentry/pkg/records"
)

// Snapshot is the on-disk representation of the record store.
type Snapshot struct {
	SavedAt   utc.Time            `json:"saved_at" yaml:"saved_at"`
	Facts     []*records.Fact     `json:"facts" yaml:"facts"`
	Findings  []*records.Finding  `json:"findings" yaml:"findings"`
	Documents []*records.Document `json:"documents,omitempty" yaml:"documents,omitempty"`
}

// Save writes the current state of the store, ledger, and registry to path.
// The registry may be nil.
func Save(path string, store *evidence.Store, ledger *citations.Ledger, reg *registry.Registry, logger *zerolog.Logger) error {
	if logger == nil {
		logger = logging.Default()
	}

	snap := &Snapshot{
		SavedAt:  utc.Now(),
		Facts:    store.Facts(),
		Findings: ledger.Findings(),
	}
	if reg != nil {
		snap.Documents = reg.List()
	}

	data, err := yaml.Marshal(snap)
	if err != nil {
		return errors.WrapParse(err, "yaml", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return errors.WrapIO(err, "create", dir)
		}
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO(err, "write", path)
	}

	logger.Info().
		Str("path", path).
		Int("facts", len(snap.Facts)).
		Int("findings", len(snap.Findings)).
		Int("documents", len(snap.Documents)).
		Msg("Snapshot saved")
	return nil
}

// Load reads a snapshot from path.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &errors.NotFoundError{Resource: "snapshot", ID: path}
		}
		return nil, errors.WrapIO(err, "read", path)
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, errors.WrapParse(err, "yaml", path)
	}
	return &snap, nil
}

// Restore replays a snapshot into a store, ledger, and registry. Documents
// go first so restored facts can be traced back to their sources; facts go
// before findings so citations resolve. The targets should be empty.
func Restore(snap *Snapshot, store *evidence.Store, ledger *citations.Ledger, reg *registry.Registry, logger *zerolog.Logger) error {
	if logger == nil {
		logger = logging.Default()
	}

	if reg != nil {
		for _, doc := range snap.Documents {
			if err := reg.Register(doc); err != nil {
				return errors.WrapParse(err, "document "+doc.DocID, "")
			}
		}
	}
	for _, fact := range snap.Facts {
		if err := store.Restore(fact); err != nil {
			return errors.WrapParse(err, "fact "+fact.ID, "")
		}
	}
	for _, finding := range snap.Findings {
		if err := ledger.Restore(finding); err != nil {
			return errors.WrapParse(err, "finding "+finding.ID, "")
		}
	}

	logger.Info().
		Int("facts", len(snap.Facts)).
		Int("findings", len(snap.Findings)).
		Int("documents", len(snap.Documents)).
		Msg("Snapshot restored")
	return nil
}

// LoadAndRestore reads path and replays it in one step.
func LoadAndRestore(path string, store *evidence.Store, ledger *citations.Ledger, reg *registry.Registry, logger *zerolog.Logger) error {
	snap, err := Load(path)
	if err != nil {
		return err
	}
	return Restore(snap, store, ledger, reg, logger)
}

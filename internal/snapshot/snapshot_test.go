package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evidentry/evidentry/internal/citations"
	"github.com/evidentry/evidentry/internal/evidence"
	"github.com/evidentry/evidentry/internal/registry"
	"github.com/evidentry/evidentry/pkg/errors"
	"github.com/evidentry/evidentry/pkg/logging"
	"github.com/evidentry/evidentry/pkg/records"
)

func seedState(t *testing.T) (*evidence.Store, *citations.Ledger, *registry.Registry) {
	t.Helper()
	logger := logging.NewTestLogger(t).Logger

	reg := registry.New(registry.WithLogger(logger))
	require.NoError(t, reg.Register(&records.Document{
		DocID:          "doc-1",
		Title:          "Network inventory export",
		Entity:         records.EntityTarget,
		AuthorityLevel: 1,
	}))

	store := evidence.NewStore(evidence.WithLogger(logger))
	factID, err := store.AddFact(evidence.FactProposal{
		Entity: "target",
		Domain: "network",
		Item:   "core firewall",
		Details: map[string]string{
			"vendor": "Juniper",
		},
		Evidence: records.Evidence{
			DocID:        "doc-1",
			Quote:        "Juniper SRX340 terminates all branch VPN tunnels.",
			Location:     "p.4",
			IsExactQuote: true,
		},
		Confidence: 0.9,
	})
	require.NoError(t, err)
	require.NoError(t, store.Confirm(factID, "reviewer"))
	require.NoError(t, store.Correct(factID, "vendor", "Juniper Networks", "reviewer", "full legal name"))

	ledger := citations.NewLedger(store, citations.WithLogger(logger))
	_, err = ledger.AddFinding(citations.FindingProposal{
		Title:        "Firewall support contract expires pre-close",
		Severity:     "high",
		BasedOnFacts: []string{factID},
	})
	require.NoError(t, err)

	return store, ledger, reg
}

func TestSaveLoadRoundTrip(t *testing.T) {
	logger := logging.NewTestLogger(t).Logger
	store, ledger, reg := seedState(t)
	path := filepath.Join(t.TempDir(), "state", "evidentry.yaml")

	require.NoError(t, Save(path, store, ledger, reg, logger))

	snap, err := Load(path)
	require.NoError(t, err)
	require.Len(t, snap.Facts, 1)
	require.Len(t, snap.Findings, 1)
	require.Len(t, snap.Documents, 1)

	// Correction history survives the round trip.
	fact := snap.Facts[0]
	assert.Equal(t, records.StatusCorrected, fact.Status)
	assert.NotEmpty(t, fact.Corrections)
	assert.Equal(t, "Juniper Networks", fact.Details["vendor"])
}

func TestRestoreRebuildsState(t *testing.T) {
	logger := logging.NewTestLogger(t).Logger
	store, ledger, reg := seedState(t)
	path := filepath.Join(t.TempDir(), "evidentry.yaml")
	require.NoError(t, Save(path, store, ledger, reg, logger))

	originalFact := store.Facts()[0]
	originalFinding := ledger.Findings()[0]

	store2 := evidence.NewStore(evidence.WithLogger(logger))
	ledger2 := citations.NewLedger(store2, citations.WithLogger(logger))
	reg2 := registry.New(registry.WithLogger(logger))
	require.NoError(t, LoadAndRestore(path, store2, ledger2, reg2, logger))

	fact, ok := store2.Get(originalFact.ID)
	require.True(t, ok)
	assert.Equal(t, originalFact.Status, fact.Status)
	assert.Equal(t, len(originalFact.Corrections), len(fact.Corrections))

	finding, ok := ledger2.Get(originalFinding.ID)
	require.True(t, ok)
	assert.Equal(t, originalFinding.DraftStatus, finding.DraftStatus)
	assert.Equal(t, originalFinding.BasedOnFacts, finding.BasedOnFacts)

	// Reverse citation index is rebuilt too.
	assert.Contains(t, store2.Dependents(originalFact.ID), originalFinding.ID)

	_, ok = reg2.Document("doc-1")
	assert.True(t, ok)
}

func TestRestoredStoreKeepsAllocatingFreshIDs(t *testing.T) {
	logger := logging.NewTestLogger(t).Logger
	store, ledger, reg := seedState(t)
	path := filepath.Join(t.TempDir(), "evidentry.yaml")
	require.NoError(t, Save(path, store, ledger, reg, logger))

	store2 := evidence.NewStore(evidence.WithLogger(logger))
	ledger2 := citations.NewLedger(store2, citations.WithLogger(logger))
	require.NoError(t, LoadAndRestore(path, store2, ledger2, nil, logger))

	id, err := store2.AddFact(evidence.FactProposal{
		Entity: "target",
		Domain: "network",
		Item:   "branch router",
		Evidence: records.Evidence{
			DocID: "doc-1",
			Quote: "Cisco ISR 1100 routers deployed at every branch site.",
		},
		Confidence: 0.8,
	})
	require.NoError(t, err)
	assert.Equal(t, "network-002", id)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

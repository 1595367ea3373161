package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evidentry/evidentry/internal/evidence"
	"github.com/evidentry/evidentry/pkg/errors"
	"github.com/evidentry/evidentry/pkg/logging"
	"github.com/evidentry/evidentry/pkg/records"
)

const proposalFileYAML = `documents:
  - doc_id: doc-1
    title: Target network inventory
    entity: target
    authority_level: 1
facts:
  - entity: target
    domain: network
    item: core firewall
    details:
      vendor: Juniper
      model: SRX340
    evidence:
      doc_id: doc-1
      quote: Juniper SRX340 terminates all branch VPN tunnels.
      location: p.4
      is_exact_quote: true
    confidence: 0.9
  - entity: target
    domain: hr
    item: payroll
    evidence:
      doc_id: doc-1
      quote: Payroll for 500 employees is processed through ADP.
    confidence: 0.8
  - entity: target
    domain: network
    item: wifi
    evidence:
      doc_id: doc-1
      quote: Aruba access points cover both office floors today.
    confidence: 0.7
`

func writeProposalFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "proposals.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadProposalFile(t *testing.T) {
	file, err := LoadProposalFile(writeProposalFile(t, proposalFileYAML))
	require.NoError(t, err)

	require.Len(t, file.Documents, 1)
	assert.Equal(t, "doc-1", file.Documents[0].DocID)
	assert.Equal(t, records.EntityTarget, file.Documents[0].Entity)
	require.Len(t, file.Facts, 3)
	assert.Equal(t, "Juniper", file.Facts[0].Details["vendor"])
	assert.True(t, file.Facts[0].Evidence.IsExactQuote)
}

func TestLoadProposalFileErrors(t *testing.T) {
	_, err := LoadProposalFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)

	_, err = LoadProposalFile(writeProposalFile(t, "facts: {not: a list}"))
	require.Error(t, err)

	_, err = LoadProposalFile(writeProposalFile(t, "documents: []\nfacts: []\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestProposalFileProducers(t *testing.T) {
	file, err := LoadProposalFile(writeProposalFile(t, proposalFileYAML))
	require.NoError(t, err)

	producers := file.Producers()
	require.Len(t, producers, 2)
	assert.Equal(t, "hr", producers[0].Domain())
	assert.Equal(t, "network", producers[1].Domain())

	store := evidence.NewStore(evidence.WithLogger(logging.NewTestLogger(t).Logger))
	pipeline := NewPipeline(store, WithLogger(logging.NewTestLogger(t).Logger))
	report, err := pipeline.Run(context.Background(), producers)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Stored)
	assert.Len(t, store.DomainFacts("network"), 2)
	assert.Len(t, store.DomainFacts("hr"), 1)
}

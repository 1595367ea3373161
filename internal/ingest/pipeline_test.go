package ingest

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evidentry/evidentry/internal/evidence"
	"github.com/evidentry/evidentry/pkg/logging"
	"github.com/evidentry/evidentry/pkg/records"
)

func proposal(domain, item, quote string) evidence.FactProposal {
	return evidence.FactProposal{
		Entity: "target",
		Domain: domain,
		Item:   item,
		Evidence: records.Evidence{
			DocID: "doc-1",
			Quote: quote,
		},
		Confidence: 0.9,
	}
}

func staticProducer(domain string, proposals ...evidence.FactProposal) Producer {
	return ProducerFunc{
		Name: domain,
		Fn: func(ctx context.Context, emit func(evidence.FactProposal) error) error {
			for _, p := range proposals {
				if err := emit(p); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func TestRunMergesAllDomains(t *testing.T) {
	store := evidence.NewStore(evidence.WithLogger(logging.NewTestLogger(t).Logger))
	pipeline := NewPipeline(store, WithLogger(logging.NewTestLogger(t).Logger))

	report, err := pipeline.Run(context.Background(), []Producer{
		staticProducer("network",
			proposal("network", "core firewall", "Juniper SRX340 terminates all branch VPN tunnels."),
			proposal("network", "wifi", "Aruba access points cover both office floors today."),
		),
		staticProducer("erp",
			proposal("erp", "erp system", "SAP ECC 6.0 hosted on premise, 500 named users.")),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Proposed)
	assert.Equal(t, 3, report.Stored)
	assert.Equal(t, 0, report.Rejected)
	assert.Len(t, store.Facts(), 3)

	// Domains sorted in the report.
	require.Len(t, report.Domains, 2)
	assert.Equal(t, "erp", report.Domains[0].Domain)
	assert.Equal(t, "network", report.Domains[1].Domain)
}

func TestRunRecordsValidationErrorsWithoutRetry(t *testing.T) {
	store := evidence.NewStore(evidence.WithLogger(logging.NewTestLogger(t).Logger))
	pipeline := NewPipeline(store, WithLogger(logging.NewTestLogger(t).Logger))

	bad := proposal("network", "router", "too short")
	report, err := pipeline.Run(context.Background(), []Producer{
		staticProducer("network",
			bad,
			proposal("network", "core firewall", "Juniper SRX340 terminates all branch VPN tunnels."),
		),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Stored)
	assert.Equal(t, 1, report.Rejected)
	require.Len(t, report.Domains[0].Errors, 1)
	assert.Contains(t, report.Domains[0].Errors[0], "quote")
}

func TestRunCountsFoldedDuplicates(t *testing.T) {
	store := evidence.NewStore(evidence.WithLogger(logging.NewTestLogger(t).Logger))
	pipeline := NewPipeline(store, WithLogger(logging.NewTestLogger(t).Logger))

	same := proposal("network", "core firewall", "Juniper SRX340 terminates all branch VPN tunnels.")
	report, err := pipeline.Run(context.Background(), []Producer{
		staticProducer("network", same, same),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Stored)
	assert.Equal(t, 1, report.Folded)
	assert.Len(t, store.Facts(), 1)
}

func TestRunFoldsDuplicateFromEarlierRun(t *testing.T) {
	store := evidence.NewStore(evidence.WithLogger(logging.NewTestLogger(t).Logger))
	pipeline := NewPipeline(store, WithLogger(logging.NewTestLogger(t).Logger))

	same := proposal("network", "core firewall", "Juniper SRX340 terminates all branch VPN tunnels.")
	_, err := pipeline.Run(context.Background(), []Producer{staticProducer("network", same)})
	require.NoError(t, err)

	report, err := pipeline.Run(context.Background(), []Producer{staticProducer("network", same)})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Stored)
	assert.Equal(t, 1, report.Folded)
	assert.Len(t, store.Facts(), 1)
}

func TestRunEnforcesIterationCap(t *testing.T) {
	store := evidence.NewStore(evidence.WithLogger(logging.NewTestLogger(t).Logger))
	pipeline := NewPipeline(store, WithLogger(logging.NewTestLogger(t).Logger), WithIterationCap(2))

	runaway := ProducerFunc{
		Name: "network",
		Fn: func(ctx context.Context, emit func(evidence.FactProposal) error) error {
			for i := 0; ; i++ {
				item := fmt.Sprintf("switch %d", i)
				if err := emit(proposal("network", item, "Catalyst stack uplinks at 10G in every closet.")); err != nil {
					return nil // stop emitting, keep the buffered work
				}
			}
		},
	}

	report, err := pipeline.Run(context.Background(), []Producer{runaway})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Proposed)
	assert.True(t, report.Domains[0].CapHit)
}

func TestRunProducerErrorAbortsBeforeMerge(t *testing.T) {
	store := evidence.NewStore(evidence.WithLogger(logging.NewTestLogger(t).Logger))
	pipeline := NewPipeline(store, WithLogger(logging.NewTestLogger(t).Logger))

	failing := ProducerFunc{
		Name: "erp",
		Fn: func(ctx context.Context, emit func(evidence.FactProposal) error) error {
			return fmt.Errorf("source unavailable")
		},
	}

	_, err := pipeline.Run(context.Background(), []Producer{
		staticProducer("network", proposal("network", "core firewall", "Juniper SRX340 terminates all branch VPN tunnels.")),
		failing,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "producer erp")

	// Hard barrier: nothing merged on failure.
	assert.Empty(t, store.Facts())
}

func TestRunHonorsContextCancellation(t *testing.T) {
	store := evidence.NewStore(evidence.WithLogger(logging.NewTestLogger(t).Logger))
	pipeline := NewPipeline(store, WithLogger(logging.NewTestLogger(t).Logger))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	blocking := ProducerFunc{
		Name: "network",
		Fn: func(ctx context.Context, emit func(evidence.FactProposal) error) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}

	_, err := pipeline.Run(ctx, []Producer{blocking})
	require.Error(t, err)
	assert.Empty(t, store.Facts())
}

func TestRunBoundsConcurrency(t *testing.T) {
	store := evidence.NewStore(evidence.WithLogger(logging.NewTestLogger(t).Logger))
	pipeline := NewPipeline(store, WithLogger(logging.NewTestLogger(t).Logger), WithWorkers(2))

	var running, peak atomic.Int32
	producers := make([]Producer, 6)
	for i := range producers {
		domain := fmt.Sprintf("domain%d", i)
		producers[i] = ProducerFunc{
			Name: domain,
			Fn: func(ctx context.Context, emit func(evidence.FactProposal) error) error {
				n := running.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				running.Add(-1)
				return nil
			},
		}
	}

	_, err := pipeline.Run(context.Background(), producers)
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

package exportgate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evidentry/evidentry/pkg/dossier"
	"github.com/evidentry/evidentry/pkg/errors"
	"github.com/evidentry/evidentry/pkg/records"
)

func cleanDossier(domain, item string, completeness float64) *dossier.Dossier {
	return &dossier.Dossier{
		Entity:           records.EntityTarget,
		Domain:           domain,
		CanonicalKey:     "target|" + domain + "|" + item,
		Item:             item,
		DataCompleteness: completeness,
	}
}

func TestCheckReady(t *testing.T) {
	g := NewGate()

	r := g.Check([]*dossier.Dossier{
		cleanDossier("network", "core_firewall", 0.9),
		cleanDossier("erp", "erp_system", 0.8),
	}, 0)

	assert.True(t, r.IsReady)
	assert.Empty(t, r.BlockingReasons)
	assert.Empty(t, r.Warnings)
	assert.NoError(t, r.Err())
}

func TestCheckBlocksOnUnknownEntity(t *testing.T) {
	g := NewGate()

	r := g.Check([]*dossier.Dossier{cleanDossier("network", "core_firewall", 0.9)}, 2)

	assert.False(t, r.IsReady)
	require.Len(t, r.BlockingReasons, 1)
	assert.Contains(t, r.BlockingReasons[0], "entity attribution")
	assert.Equal(t, 2, r.UnknownEntityCount)

	var blocked *errors.ExportBlockedError
	require.ErrorAs(t, r.Err(), &blocked)
	assert.ErrorIs(t, r.Err(), errors.ErrExportBlocked)
}

func TestCheckBlocksOnInvalidEntityDossier(t *testing.T) {
	g := NewGate()

	d := cleanDossier("network", "core_firewall", 0.9)
	d.Entity = records.Entity("unknown")

	r := g.Check([]*dossier.Dossier{d}, 0)

	assert.False(t, r.IsReady)
	assert.Equal(t, 1, r.UnknownEntityCount)
}

func TestCheckConflictsWarnThenBlock(t *testing.T) {
	g := NewGate()

	d := cleanDossier("hr", "hris", 0.8)
	d.AttributeConflicts = map[string][]string{"user_count": {"500", "800"}}
	d.HasConflicts = true

	r := g.Check([]*dossier.Dossier{d}, 0)
	assert.True(t, r.IsReady)
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0], "conflict")

	// Push past the block threshold.
	many := make([]*dossier.Dossier, 0, 11)
	for i := 0; i < 11; i++ {
		c := cleanDossier("hr", "hris", 0.8)
		c.AttributeConflicts = map[string][]string{"vendor": {"Workday", "ADP"}}
		c.HasConflicts = true
		many = append(many, c)
	}
	r = g.Check(many, 0)
	assert.False(t, r.IsReady)
	require.Len(t, r.BlockingReasons, 1)
	assert.Contains(t, r.BlockingReasons[0], "conflicts exceed the limit")
	assert.Equal(t, 11, r.ConflictCount)
}

func TestCheckWarnsOnLowDomainCompleteness(t *testing.T) {
	g := NewGate()

	r := g.Check([]*dossier.Dossier{
		cleanDossier("network", "core_firewall", 0.2),
		cleanDossier("network", "wifi", 0.4),
		cleanDossier("erp", "erp_system", 0.9),
	}, 0)

	assert.True(t, r.IsReady)
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0], "domain network")
	assert.InDelta(t, 0.3, r.DomainCompleteness["network"], 0.001)
	assert.InDelta(t, 0.9, r.DomainCompleteness["erp"], 0.001)
}

func TestCheckCustomConflictThreshold(t *testing.T) {
	g := NewGate(WithConflictThreshold(0))

	d := cleanDossier("hr", "hris", 0.8)
	d.AttributeConflicts = map[string][]string{"vendor": {"Workday", "ADP"}}
	d.HasConflicts = true

	r := g.Check([]*dossier.Dossier{d}, 0)
	assert.False(t, r.IsReady)
}

func TestCheckEmptySet(t *testing.T) {
	g := NewGate()

	r := g.Check(nil, 0)
	assert.True(t, r.IsReady)
	assert.Empty(t, r.DomainCompleteness)
}

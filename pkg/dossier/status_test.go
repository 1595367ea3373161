package dossier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evidentry/evidentry/pkg/records"
)

func baseDossier() *Dossier {
	return &Dossier{
		Entity:           records.EntityTarget,
		Domain:           "erp",
		DataCompleteness: 0.8,
		EvidenceQuality:  3,
	}
}

func TestComputeStatusRules(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Dossier)
		findings []*records.Finding
		want     Status
	}{
		{
			name:   "healthy dossier is green",
			mutate: func(*Dossier) {},
			want:   StatusGreen,
		},
		{
			name:   "invalid entity is red",
			mutate: func(d *Dossier) { d.Entity = "vendor" },
			want:   StatusRed,
		},
		{
			name:     "critical finding is red",
			mutate:   func(*Dossier) {},
			findings: []*records.Finding{{Severity: records.SeverityCritical}},
			want:     StatusRed,
		},
		{
			name:     "high finding is red",
			mutate:   func(*Dossier) {},
			findings: []*records.Finding{{Severity: records.SeverityHigh}},
			want:     StatusRed,
		},
		{
			name:   "very low completeness is red",
			mutate: func(d *Dossier) { d.DataCompleteness = 0.2 },
			want:   StatusRed,
		},
		{
			name:     "medium finding is yellow",
			mutate:   func(*Dossier) {},
			findings: []*records.Finding{{Severity: records.SeverityMedium}},
			want:     StatusYellow,
		},
		{
			name:   "moderate completeness is yellow",
			mutate: func(d *Dossier) { d.DataCompleteness = 0.4 },
			want:   StatusYellow,
		},
		{
			name:   "weak evidence is yellow",
			mutate: func(d *Dossier) { d.EvidenceQuality = 2 },
			want:   StatusYellow,
		},
		{
			name:   "conflicts cap status at yellow",
			mutate: func(d *Dossier) { d.HasConflicts = true },
			want:   StatusYellow,
		},
		{
			name:   "middling completeness never reaches green",
			mutate: func(d *Dossier) { d.DataCompleteness = 0.6 },
			want:   StatusYellow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := baseDossier()
			tt.mutate(d)
			assert.Equal(t, tt.want, ComputeStatus(d, tt.findings))
		})
	}
}

// A dossier with zero risks, 30% completeness, and an unanchored citation
// must come out yellow — absence of risk is not evidence of quality.
func TestConservativeDefaultIsYellowNeverGreen(t *testing.T) {
	d := &Dossier{
		Entity:           records.EntityTarget,
		Domain:           "network",
		DataCompleteness: 0.30,
		EvidenceQuality:  2, // one citation without a location anchor
	}

	assert.Equal(t, StatusYellow, ComputeStatus(d, nil))
}

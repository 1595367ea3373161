package evidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{"identical", "the firewall is a Juniper SRX340", "the firewall is a Juniper SRX340", 1, 1},
		{"case and punctuation", "Firewall: Juniper SRX340.", "firewall juniper srx340", 1, 1},
		{"reordered", "500 users on ADP Workforce Now", "ADP Workforce Now 500 users", 0.99, 1},
		{"unrelated", "the firewall is a Juniper SRX340", "payroll runs on ADP monthly", 0, 0.15},
		{"partial overlap", "hosted in AWS eu-central-1 Frankfurt", "hosted in Azure westeurope", 0.2, 0.5},
		{"both empty", "", "", 1, 1},
		{"one empty", "something", "", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			assert.GreaterOrEqual(t, got, tt.min)
			assert.LessOrEqual(t, got, tt.max)
		})
	}
}

func TestSimilarityIsSymmetric(t *testing.T) {
	a := "ERP migration planned for Q3 2026"
	b := "planned ERP migration in 2026"
	assert.Equal(t, Similarity(a, b), Similarity(b, a))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "adp workforce now", normalize("  ADP   Workforce Now "))
}

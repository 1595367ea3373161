package dossier

import (
	"github.com/evidentry/evidentry/pkg/constants"
	"github.com/evidentry/evidentry/pkg/records"
)

// Status is the traffic-light quality status of a dossier.
type Status string

const (
	StatusRed    Status = "red"
	StatusYellow Status = "yellow"
	StatusGreen  Status = "green"
)

// String returns the string representation of a Status.
func (s Status) String() string {
	return string(s)
}

// ComputeStatus evaluates the priority-ordered status rules for a dossier
// against its related findings. The default is yellow, never green: absence
// of risk is not evidence of quality, so green requires positive evidence —
// high completeness and well-anchored citations.
func ComputeStatus(d *Dossier, findings []*records.Finding) Status {
	if !d.Entity.Valid() {
		return StatusRed
	}

	worst := records.Severity("")
	for _, f := range findings {
		if f.Severity.Rank() > worst.Rank() {
			worst = f.Severity
		}
	}

	if worst.Rank() >= records.SeverityHigh.Rank() {
		return StatusRed
	}
	if d.DataCompleteness < constants.CompletenessRed {
		return StatusRed
	}

	if worst == records.SeverityMedium ||
		d.DataCompleteness < constants.CompletenessYellow ||
		d.EvidenceQuality < constants.EvidenceQualityFloor ||
		d.HasConflicts {
		return StatusYellow
	}

	if d.DataCompleteness >= constants.CompletenessGreen &&
		d.EvidenceQuality >= constants.EvidenceQualityFloor {
		return StatusGreen
	}

	return StatusYellow
}

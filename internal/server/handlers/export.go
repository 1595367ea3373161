package handlers

import (
	"net/http"

	"github.com/evidentry/evidentry/internal/server/response"
	"github.com/evidentry/evidentry/pkg/dossier"
)

// HandleExportCheck handles POST /api/v1/export-check. It rebuilds every
// dossier from the current store and runs the readiness gate; a blocked
// result still returns 200 with is_ready false so clients can render the
// reasons.
func (h *Handlers) HandleExportCheck(w http.ResponseWriter, _ *http.Request) {
	facts := h.store.Facts()
	findings := h.ledger.Findings()

	// Dedupe on normalized domain so aliases never double-count a dossier.
	built := make(map[string]bool)
	var dossiers []*dossier.Dossier
	for _, domain := range h.store.Domains() {
		normalized := dossier.NormalizeDomain(domain)
		if built[normalized] {
			continue
		}
		built[normalized] = true
		dossiers = append(dossiers, h.builder.BuildDomain(normalized, facts, findings)...)
	}

	readiness := h.gate.Check(dossiers, h.store.EntityDefects())
	response.OK(w, readiness)
}

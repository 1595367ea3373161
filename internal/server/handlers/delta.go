package handlers

import (
	"net/http"

	"github.com/evidentry/evidentry/internal/server/response"
	"github.com/evidentry/evidentry/pkg/records"
)

// HandleDelta handles GET /api/v1/delta/{domain}: target vs buyer dossiers
// for one domain, matched and diffed.
func (h *Handlers) HandleDelta(w http.ResponseWriter, _ *http.Request, domain string) {
	facts := h.store.Facts()
	findings := h.ledger.Findings()

	target := h.builder.BuildDomain(domain, facts, findings, records.EntityTarget)
	buyer := h.builder.BuildDomain(domain, facts, findings, records.EntityBuyer)
	results := h.comparator.Match(target, buyer)

	response.OK(w, map[string]any{
		"domain":  domain,
		"target":  len(target),
		"buyer":   len(buyer),
		"results": results,
	})
}

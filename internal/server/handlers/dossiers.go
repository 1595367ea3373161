package handlers

import (
	"net/http"

	"github.com/evidentry/evidentry/internal/server/response"
	"github.com/evidentry/evidentry/pkg/dossier"
	"github.com/evidentry/evidentry/pkg/errors"
	"github.com/evidentry/evidentry/pkg/records"
)

// HandleDomainDossiers handles GET /api/v1/dossiers/{domain}. An optional
// entity query parameter restricts the result to one side of the deal.
func (h *Handlers) HandleDomainDossiers(w http.ResponseWriter, r *http.Request, domain string) {
	facts := h.store.Facts()
	findings := h.ledger.Findings()

	if raw := r.URL.Query().Get("entity"); raw != "" {
		entity, err := records.ParseEntity(raw, "entity query parameter")
		if err != nil {
			response.ErrorFromType(w, err)
			return
		}
		response.OK(w, h.builder.BuildDomain(domain, facts, findings, entity))
		return
	}

	response.OK(w, h.builder.BuildDomain(domain, facts, findings))
}

// HandleDossier handles GET /api/v1/dossiers/{domain}/{key}, where key is a
// full canonical key (URL-encoded by the client).
func (h *Handlers) HandleDossier(w http.ResponseWriter, _ *http.Request, domain, key string) {
	d := h.builder.Build(key, h.store.Facts(), h.ledger.Findings())
	if d == nil || d.Domain != dossier.NormalizeDomain(domain) {
		response.ErrorFromType(w, &errors.NotFoundError{Resource: "dossier", ID: key})
		return
	}
	response.OK(w, d)
}

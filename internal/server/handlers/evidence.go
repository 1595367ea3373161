package handlers

import (
	"net/http"

	"github.com/evidentry/evidentry/internal/server/response"
	"github.com/evidentry/evidentry/pkg/errors"
)

// HandleEvidenceChain handles GET /api/v1/findings/{id}/evidence-chain.
// The chain walks from the finding through its cited facts to the source
// documents and quotes so an auditor can verify every link.
func (h *Handlers) HandleEvidenceChain(w http.ResponseWriter, _ *http.Request, findingID string) {
	chain, err := h.ledger.EvidenceChain(findingID)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, chain)
}

// HandleDependents handles GET /api/v1/facts/{id}/dependents: the findings
// that cite the fact and would be touched by a status change.
func (h *Handlers) HandleDependents(w http.ResponseWriter, _ *http.Request, factID string) {
	fact, ok := h.store.Get(factID)
	if !ok {
		response.ErrorFromType(w, &errors.NotFoundError{Resource: "fact", ID: factID})
		return
	}

	dependents := h.store.Dependents(factID)
	findings := h.ledger.RelatedFindings([]string{factID})

	response.OK(w, map[string]any{
		"fact_id":    fact.ID,
		"status":     fact.Status,
		"dependents": dependents,
		"findings":   findings,
	})
}

package server

import (
	"net/http"
	"strings"

	"github.com/evidentry/evidentry/internal/server/handlers"
	"github.com/evidentry/evidentry/internal/server/middleware"
	"github.com/evidentry/evidentry/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(s.store, s.ledger, s.registry, s.logger)
	s.registerRoutes(mux, h)

	return middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Logger(s.logger),
	)(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	// Public health endpoints
	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/health", h.HandleHealth)

	// Findings: evidence chain
	mux.HandleFunc(prefix+"/findings/", func(w http.ResponseWriter, r *http.Request) {
		parts := splitPath(r.URL.Path[len(prefix+"/findings/"):])
		if len(parts) == 2 && parts[1] == "evidence-chain" && r.Method == http.MethodGet {
			h.HandleEvidenceChain(w, r, parts[0])
			return
		}
		response.NotFound(w, "Not found", "")
	})

	// Facts: dependents
	mux.HandleFunc(prefix+"/facts/", func(w http.ResponseWriter, r *http.Request) {
		parts := splitPath(r.URL.Path[len(prefix+"/facts/"):])
		if len(parts) == 2 && parts[1] == "dependents" && r.Method == http.MethodGet {
			h.HandleDependents(w, r, parts[0])
			return
		}
		response.NotFound(w, "Not found", "")
	})

	// Dossiers: per domain, or a single canonical key
	mux.HandleFunc(prefix+"/dossiers/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		parts := splitPath(r.URL.Path[len(prefix+"/dossiers/"):])
		switch len(parts) {
		case 1:
			h.HandleDomainDossiers(w, r, parts[0])
		case 2:
			h.HandleDossier(w, r, parts[0], parts[1])
		default:
			response.NotFound(w, "Not found", "")
		}
	})

	// Delta: target vs buyer per domain
	mux.HandleFunc(prefix+"/delta/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		parts := splitPath(r.URL.Path[len(prefix+"/delta/"):])
		if len(parts) != 1 {
			response.NotFound(w, "Not found", "")
			return
		}
		h.HandleDelta(w, r, parts[0])
	})

	// Export readiness
	mux.HandleFunc(prefix+"/export-check", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		h.HandleExportCheck(w, r)
	})
}

// splitPath splits a path into non-empty segments.
func splitPath(path string) []string {
	var parts []string
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// Package registry tracks the source documents evidence may cite. A fact's
// entity attribution comes from its document, never from inference.
package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/evidentry/evidentry/pkg/errors"
	"github.com/evidentry/evidentry/pkg/logging"
	"github.com/evidentry/evidentry/pkg/records"
)

// Registry is a concurrency-safe document registry.
type Registry struct {
	mu     sync.RWMutex
	docs   map[string]*records.Document
	logger *zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		docs:   make(map[string]*records.Document),
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a document. DocID and a valid entity are required; a second
// registration under the same DocID is rejected.
func (r *Registry) Register(doc *records.Document) error {
	if doc == nil {
		return &errors.ValidationError{Field: "document", Message: "document is required"}
	}
	docID := strings.TrimSpace(doc.DocID)
	if docID == "" {
		return &errors.ValidationError{Field: "doc_id", Message: "doc_id is required"}
	}
	if !doc.Entity.Valid() {
		return &errors.EntityError{Value: string(doc.Entity), Source: docID}
	}
	if doc.AuthorityLevel < 1 || doc.AuthorityLevel > 3 {
		return &errors.ValidationError{Field: "authority_level", Value: doc.AuthorityLevel, Message: "must be 1, 2, or 3"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.docs[docID]; exists {
		return errors.ErrAlreadyExists
	}
	stored := *doc
	stored.DocID = docID
	r.docs[docID] = &stored

	r.logger.Debug().
		Str("doc_id", docID).
		Str("entity", doc.Entity.String()).
		Int("authority", doc.AuthorityLevel).
		Msg("Document registered")
	return nil
}

// Document looks up a document by ID. Satisfies the citation resolver used
// to render evidence chains.
func (r *Registry) Document(docID string) (*records.Document, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[docID]
	if !ok {
		return nil, false
	}
	copied := *doc
	return &copied, true
}

// Entity reports the entity attribution of a registered document.
func (r *Registry) Entity(docID string) (records.Entity, bool) {
	doc, ok := r.Document(docID)
	if !ok {
		return "", false
	}
	return doc.Entity, true
}

// List returns all documents sorted by DocID.
func (r *Registry) List() []*records.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*records.Document, 0, len(r.docs))
	for _, doc := range r.docs {
		copied := *doc
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DocID < out[j].DocID
	})
	return out
}

// Len returns the number of registered documents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}

// Package evidence implements the append-biased fact store with its
// confirmation state machine, correction history, near-duplicate detection,
// and the dependents reverse index used for citation propagation.
package evidence

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/evidentry/evidentry/pkg/constants"
	"github.com/evidentry/evidentry/pkg/errors"
	"github.com/evidentry/evidentry/pkg/logging"
	"github.com/evidentry/evidentry/pkg/records"
)

// FactProposal is an inbound fact from an upstream producer. The entity tag
// is inherited from the originating document and must arrive set.
type FactProposal struct {
	Entity     string            `json:"entity" yaml:"entity"`
	Domain     string            `json:"domain" yaml:"domain"`
	Category   string            `json:"category" yaml:"category"`
	Item       string            `json:"item" yaml:"item"`
	Details    map[string]string `json:"details,omitempty" yaml:"details,omitempty"`
	Evidence   records.Evidence  `json:"evidence" yaml:"evidence"`
	Confidence float64           `json:"confidence" yaml:"confidence"`
}

// StatusListener is notified after a fact's confirmation status changes.
// The CitationLedger subscribes to keep finding statuses honest.
type StatusListener func(factID string, status records.ConfirmationStatus)

// DocumentResolver reports registered source documents. The document
// registry satisfies it. When a resolver is attached, every proposal must
// cite a registered document and carry the entity that document was
// registered under.
type DocumentResolver interface {
	Document(docID string) (*records.Document, bool)
}

// Store is the evidentiary record store. Facts are appended, confirmed,
// corrected, or rejected; they are never deleted. All mutation runs under a
// single mutex so ID allocation and duplicate detection never race.
type Store struct {
	mu        sync.Mutex
	facts     *records.Facts
	counters  map[string]int      // per-domain sequence counters
	deps      map[string][]string // fact ID -> finding IDs citing it
	listeners []StatusListener

	entityDefects int // proposals refused for a missing/invalid entity

	docs         DocumentResolver
	dupThreshold float64
	logger       *zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithDuplicateThreshold overrides the near-duplicate similarity threshold.
func WithDuplicateThreshold(threshold float64) Option {
	return func(s *Store) {
		s.dupThreshold = threshold
	}
}

// WithDocumentResolver attaches a document resolver. Proposals citing an
// unregistered DocID, or tagged with an entity that contradicts the cited
// document's registration, are then refused.
func WithDocumentResolver(resolver DocumentResolver) Option {
	return func(s *Store) {
		s.docs = resolver
	}
}

// NewStore creates an empty evidence store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		facts:        records.NewFacts(),
		counters:     make(map[string]int),
		deps:         make(map[string][]string),
		dupThreshold: constants.DuplicateSimilarityThreshold,
		logger:       logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddFact validates a proposal and stores it as a provisional fact. When the
// proposal is a near-duplicate of an existing active fact for the same
// entity, domain, and item, the existing ID is returned instead of creating
// a new record. A missing or invalid entity is counted as a data-quality
// defect and returned as an EntityError; it is never defaulted. When a
// document resolver is attached, the cited DocID must be registered and the
// proposal's entity must match the document's registration.
func (s *Store) AddFact(proposal FactProposal) (string, error) {
	entity, err := records.ParseEntity(proposal.Entity, proposal.Evidence.DocID)
	if err != nil {
		s.mu.Lock()
		s.entityDefects++
		defects := s.entityDefects
		s.mu.Unlock()
		s.logger.Warn().
			Str("item", proposal.Item).
			Str("doc_id", proposal.Evidence.DocID).
			Int("entity_defects", defects).
			Msg("Fact proposal refused: missing or invalid entity tag")
		return "", err
	}

	if s.docs != nil {
		doc, ok := s.docs.Document(proposal.Evidence.DocID)
		if !ok {
			return "", errors.NewValidationError("evidence.doc_id", proposal.Evidence.DocID,
				"cited document is not registered")
		}
		if doc.Entity != entity {
			s.mu.Lock()
			s.entityDefects++
			defects := s.entityDefects
			s.mu.Unlock()
			s.logger.Warn().
				Str("item", proposal.Item).
				Str("doc_id", doc.DocID).
				Str("entity", entity.String()).
				Str("document_entity", doc.Entity.String()).
				Int("entity_defects", defects).
				Msg("Fact proposal refused: entity contradicts the cited document")
			return "", errors.NewEntityError(entity.String(), doc.DocID)
		}
	}

	if strings.TrimSpace(proposal.Domain) == "" {
		return "", errors.NewValidationError("domain", proposal.Domain, "domain is required")
	}
	if strings.TrimSpace(proposal.Item) == "" {
		return "", errors.NewValidationError("item", proposal.Item, "item is required")
	}
	if len(strings.TrimSpace(proposal.Evidence.Quote)) < constants.MinQuoteLength {
		return "", errors.NewValidationError("evidence.quote", proposal.Evidence.Quote,
			fmt.Sprintf("quote must be at least %d characters", constants.MinQuoteLength))
	}
	if proposal.Confidence < 0 || proposal.Confidence > 1 {
		return "", errors.NewValidationError("confidence", proposal.Confidence, "confidence must be within [0, 1]")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.findDuplicateLocked(entity, proposal); existing != "" {
		s.logger.Debug().
			Str("fact_id", existing).
			Str("item", proposal.Item).
			Msg("Near-duplicate proposal folded into existing fact")
		return existing, nil
	}

	id := s.nextIDLocked(proposal.Domain)
	now := utc.Now()
	fact := &records.Fact{
		ID:         id,
		Entity:     entity,
		Domain:     proposal.Domain,
		Category:   proposal.Category,
		Item:       proposal.Item,
		Details:    proposal.Details,
		Evidence:   proposal.Evidence,
		Confidence: proposal.Confidence,
		Status:     records.StatusProvisional,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.facts.Add(fact); err != nil {
		return "", fmt.Errorf("storing fact %s: %w", id, err)
	}

	s.logger.Debug().
		Str("fact_id", id).
		Str("entity", entity.String()).
		Str("domain", proposal.Domain).
		Msg("Fact stored")
	return id, nil
}

// Confirm marks a fact as reviewed and vouched for. No value changes.
func (s *Store) Confirm(factID, actor string) error {
	return s.transition(factID, actor, records.StatusConfirmed, nil)
}

// Reject removes a fact from active consideration. The record is retained
// for audit and every dependent finding is flagged for review.
func (s *Store) Reject(factID, actor, reason string) error {
	return s.transition(factID, actor, records.StatusRejected, func(f *records.Fact) {
		f.Corrections = append(f.Corrections, records.Correction{
			Field:  "status",
			Old:    f.Status.String(),
			New:    records.StatusRejected.String(),
			Actor:  actor,
			Reason: reason,
			Time:   utc.Now(),
		})
	})
}

// Correct applies a reviewer edit to a fact field, retaining the old value
// in the correction history forever. Entity and domain are immutable.
func (s *Store) Correct(factID, field, newValue, actor, reason string) error {
	switch field {
	case "entity", "domain":
		return errors.NewValidationError(field, newValue, "field is immutable once a fact is stored")
	}

	s.mu.Lock()
	fact, ok := s.facts.Get(factID)
	if !ok {
		s.mu.Unlock()
		return errors.NewNotFoundError("fact", factID)
	}

	old, err := s.applyCorrectionLocked(fact, field, newValue)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	fact.Corrections = append(fact.Corrections, records.Correction{
		Field:  field,
		Old:    old,
		New:    newValue,
		Actor:  actor,
		Reason: reason,
		Time:   utc.Now(),
	})
	fact.Status = records.StatusCorrected
	fact.UpdatedAt = utc.Now()
	if err := s.facts.Set(factID, fact); err != nil {
		s.mu.Unlock()
		return err
	}
	listeners := append([]StatusListener(nil), s.listeners...)
	s.mu.Unlock()

	s.logger.Info().
		Str("fact_id", factID).
		Str("field", field).
		Str("actor", actor).
		Msg("Fact corrected")

	for _, fn := range listeners {
		fn(factID, records.StatusCorrected)
	}
	return nil
}

// applyCorrectionLocked updates the live value, returning the old one.
func (s *Store) applyCorrectionLocked(fact *records.Fact, field, newValue string) (string, error) {
	switch field {
	case "item":
		old := fact.Item
		fact.Item = newValue
		return old, nil
	case "category":
		old := fact.Category
		fact.Category = newValue
		return old, nil
	default:
		// Everything else is a detail attribute.
		if fact.Details == nil {
			fact.Details = make(map[string]string)
		}
		old := fact.Details[field]
		fact.Details[field] = newValue
		return old, nil
	}
}

// transition moves a fact to a new confirmation status and notifies listeners.
func (s *Store) transition(factID, actor string, status records.ConfirmationStatus, mutate func(*records.Fact)) error {
	s.mu.Lock()
	fact, ok := s.facts.Get(factID)
	if !ok {
		s.mu.Unlock()
		return errors.NewNotFoundError("fact", factID)
	}
	if mutate != nil {
		mutate(fact)
	}
	fact.Status = status
	fact.UpdatedAt = utc.Now()
	if err := s.facts.Set(factID, fact); err != nil {
		s.mu.Unlock()
		return err
	}
	listeners := append([]StatusListener(nil), s.listeners...)
	s.mu.Unlock()

	s.logger.Info().
		Str("fact_id", factID).
		Str("status", status.String()).
		Str("actor", actor).
		Msg("Fact status changed")

	for _, fn := range listeners {
		fn(factID, status)
	}
	return nil
}

// Get returns a copy of a fact by ID. Mutations go through Confirm, Correct,
// and Reject, never through the returned record.
func (s *Store) Get(factID string) (*records.Fact, bool) {
	return s.facts.Get(factID)
}

// Facts returns copies of all stored facts, rejected ones included, sorted
// by ID.
func (s *Store) Facts() []*records.Fact {
	return s.facts.List()
}

// DomainFacts returns all facts for a domain, sorted by ID.
func (s *Store) DomainFacts(domain string) []*records.Fact {
	return s.facts.ListDomain(domain)
}

// ActiveFacts returns all non-rejected facts, sorted by ID.
func (s *Store) ActiveFacts() []*records.Fact {
	var active []*records.Fact
	for _, f := range s.facts.List() {
		if f.Active() {
			active = append(active, f)
		}
	}
	return active
}

// Domains returns the sorted set of domains with at least one fact.
func (s *Store) Domains() []string {
	seen := make(map[string]bool)
	for _, f := range s.facts.List() {
		seen[f.Domain] = true
	}
	domains := make([]string, 0, len(seen))
	for d := range seen {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains
}

// RegisterCitation records that a finding depends on a fact.
func (s *Store) RegisterCitation(factID, findingID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.deps[factID] {
		if id == findingID {
			return
		}
	}
	s.deps[factID] = append(s.deps[factID], findingID)
}

// Dependents returns the finding IDs citing a fact. This is the "what
// breaks if this is rejected" reverse lookup.
func (s *Store) Dependents(factID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deps[factID]...)
}

// Subscribe registers a listener for fact status changes.
func (s *Store) Subscribe(fn StatusListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// EntityDefects returns how many proposals were refused for a missing or
// invalid entity tag. Surfaced as a blocking condition at export time.
func (s *Store) EntityDefects() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entityDefects
}

// Restore loads a previously persisted fact, preserving its ID, status, and
// correction history, and advances the domain counter past it.
func (s *Store) Restore(fact *records.Fact) error {
	if fact == nil {
		return errors.NewValidationError("fact", nil, "fact is required")
	}
	if !fact.Entity.Valid() {
		return errors.NewEntityError(fact.Entity.String(), fact.ID)
	}
	if !fact.Status.Valid() {
		return errors.NewValidationError("status", fact.Status, "unknown confirmation status")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.facts.Add(fact); err != nil {
		return err
	}
	if seq := sequenceOf(fact.ID); seq > s.counters[fact.Domain] {
		s.counters[fact.Domain] = seq
	}
	return nil
}

// nextIDLocked allocates the next per-domain sequential identifier.
// Callers must hold s.mu.
func (s *Store) nextIDLocked(domain string) string {
	prefix := idPrefix(domain)
	s.counters[domain]++
	return fmt.Sprintf("%s-%03d", prefix, s.counters[domain])
}

// idPrefix derives a compact ID prefix from a domain name.
func idPrefix(domain string) string {
	p := strings.ToLower(strings.TrimSpace(domain))
	p = strings.ReplaceAll(p, " ", "_")
	return p
}

// sequenceOf extracts the numeric suffix of a fact ID, or 0.
func sequenceOf(id string) int {
	i := strings.LastIndex(id, "-")
	if i < 0 {
		return 0
	}
	var n int
	if _, err := fmt.Sscanf(id[i+1:], "%d", &n); err != nil {
		return 0
	}
	return n
}

// findDuplicateLocked returns the ID of an existing fact the proposal
// duplicates, or "". Candidates are active facts sharing entity, domain, and
// normalized item; the quote decides. Rejected facts never absorb a new
// proposal, so a resubmission after a rejection gets a fresh record.
// Callers must hold s.mu.
func (s *Store) findDuplicateLocked(entity records.Entity, proposal FactProposal) string {
	item := normalize(proposal.Item)
	for _, f := range s.facts.ListDomain(proposal.Domain) {
		if !f.Active() || f.Entity != entity || normalize(f.Item) != item {
			continue
		}
		if Similarity(f.Evidence.Quote, proposal.Evidence.Quote) >= s.dupThreshold {
			return f.ID
		}
	}
	return ""
}

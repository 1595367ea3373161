// Package citations implements the ledger that keeps findings honest: every
// finding must cite real, stored facts, and its draft status is re-derived
// whenever the status of a cited fact changes.
package citations

import (
	"sort"
	"strings"
	"sync"

	"github.com/agentstation/utc"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/evidentry/evidentry/internal/evidence"
	"github.com/evidentry/evidentry/pkg/errors"
	"github.com/evidentry/evidentry/pkg/logging"
	"github.com/evidentry/evidentry/pkg/records"
)

// FindingProposal is an inbound conclusion from the reasoning loop.
type FindingProposal struct {
	Title        string   `json:"title" yaml:"title"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Severity     string   `json:"severity" yaml:"severity"`
	Phase        string   `json:"phase,omitempty" yaml:"phase,omitempty"`
	BasedOnFacts []string `json:"based_on_facts" yaml:"based_on_facts"`
}

// DocumentResolver resolves document IDs for evidence chains. The document
// registry satisfies this.
type DocumentResolver interface {
	Document(docID string) (*records.Document, bool)
}

// ChainLink is one fact step in an evidence chain, with its source document
// resolved when a registry is attached.
type ChainLink struct {
	FactID   string            `json:"fact_id" yaml:"fact_id"`
	Item     string            `json:"item" yaml:"item"`
	Status   string            `json:"status" yaml:"status"`
	Quote    string            `json:"quote" yaml:"quote"`
	Location string            `json:"location,omitempty" yaml:"location,omitempty"`
	DocID    string            `json:"doc_id" yaml:"doc_id"`
	Document *records.Document `json:"document,omitempty" yaml:"document,omitempty"`
}

// Chain is the forward trace from a finding down to quotes.
type Chain struct {
	FindingID   string      `json:"finding_id" yaml:"finding_id"`
	Title       string      `json:"title" yaml:"title"`
	DraftStatus string      `json:"draft_status" yaml:"draft_status"`
	Links       []ChainLink `json:"links" yaml:"links"`
}

// StatusChange records one finding whose derived status moved as a result
// of a fact status change.
type StatusChange struct {
	FindingID string              `json:"finding_id" yaml:"finding_id"`
	From      records.DraftStatus `json:"from" yaml:"from"`
	To        records.DraftStatus `json:"to" yaml:"to"`
}

// Ledger validates and stores findings, and propagates fact status changes
// to the findings that cite them.
type Ledger struct {
	mu       sync.Mutex
	store    *evidence.Store
	findings *records.Findings
	docs     DocumentResolver
	logger   *zerolog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the ledger logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// WithDocumentResolver attaches a document registry for evidence chains.
func WithDocumentResolver(docs DocumentResolver) Option {
	return func(l *Ledger) {
		l.docs = docs
	}
}

// NewLedger creates a ledger bound to an evidence store. The ledger
// subscribes to the store so corrections and rejections made during human
// review propagate to dependent findings automatically.
func NewLedger(store *evidence.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:    store,
		findings: records.NewFindings(),
		logger:   logging.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	store.Subscribe(func(factID string, status records.ConfirmationStatus) {
		l.OnFactStatusChanged(factID, status)
	})
	return l
}

// AddFinding validates a proposal and stores it. Creation fails outright —
// no partial finding — if any cited fact is unknown. Citing a rejected fact
// is not an error, but the finding starts life as needs_review.
func (l *Ledger) AddFinding(proposal FindingProposal) (*records.Finding, error) {
	if strings.TrimSpace(proposal.Title) == "" {
		return nil, errors.NewValidationError("title", proposal.Title, "title is required")
	}
	severity := records.Severity(strings.ToLower(strings.TrimSpace(proposal.Severity)))
	if !severity.Valid() {
		return nil, errors.NewValidationError("severity", proposal.Severity, "must be one of low, medium, high, critical")
	}
	if len(proposal.BasedOnFacts) == 0 {
		return nil, errors.NewValidationError("based_on_facts", nil, "a finding must cite at least one fact")
	}

	var missing []string
	var cited []*records.Fact
	for _, id := range proposal.BasedOnFacts {
		fact, ok := l.store.Get(id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		cited = append(cited, fact)
	}
	if len(missing) > 0 {
		return nil, errors.NewCitationError(proposal.Title, missing)
	}

	now := utc.Now()
	finding := &records.Finding{
		ID:           uuid.NewString(),
		Title:        proposal.Title,
		Description:  proposal.Description,
		Severity:     severity,
		Phase:        proposal.Phase,
		BasedOnFacts: append([]string(nil), proposal.BasedOnFacts...),
		DraftStatus:  deriveStatus(cited),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	l.mu.Lock()
	if err := l.findings.Add(finding); err != nil {
		l.mu.Unlock()
		return nil, err
	}
	l.mu.Unlock()

	for _, id := range finding.BasedOnFacts {
		l.store.RegisterCitation(id, finding.ID)
	}

	l.logger.Debug().
		Str("finding_id", finding.ID).
		Str("status", finding.DraftStatus.String()).
		Int("citations", len(finding.BasedOnFacts)).
		Msg("Finding stored")
	return finding.Copy(), nil
}

// Get returns a finding by ID.
func (l *Ledger) Get(findingID string) (*records.Finding, bool) {
	return l.findings.Get(findingID)
}

// Findings returns all findings sorted by ID.
func (l *Ledger) Findings() []*records.Finding {
	return l.findings.List()
}

// RecomputeStatus re-derives a finding's draft status from the current
// status of every cited fact, returning the new status.
func (l *Ledger) RecomputeStatus(findingID string) (records.DraftStatus, error) {
	finding, ok := l.findings.Get(findingID)
	if !ok {
		return "", errors.NewNotFoundError("finding", findingID)
	}

	var cited []*records.Fact
	for _, id := range finding.BasedOnFacts {
		fact, ok := l.store.Get(id)
		if !ok {
			// A citation can never dangle: facts are not deletable.
			return "", errors.NewCitationError(finding.Title, []string{id})
		}
		cited = append(cited, fact)
	}

	l.mu.Lock()
	finding.DraftStatus = deriveStatus(cited)
	finding.UpdatedAt = utc.Now()
	status := finding.DraftStatus
	l.mu.Unlock()
	return status, nil
}

// OnFactStatusChanged recomputes every finding that depends on the fact and
// returns the ones whose status moved. This propagation is the mechanism
// that keeps conclusions honest as evidence is corrected during review.
func (l *Ledger) OnFactStatusChanged(factID string, status records.ConfirmationStatus) []StatusChange {
	dependents := l.store.Dependents(factID)
	sort.Strings(dependents)

	var changes []StatusChange
	for _, findingID := range dependents {
		finding, ok := l.findings.Get(findingID)
		if !ok {
			continue
		}
		before := finding.DraftStatus
		after, err := l.RecomputeStatus(findingID)
		if err != nil {
			l.logger.Error().Err(err).Str("finding_id", findingID).Msg("Recomputing finding status")
			continue
		}
		if before != after {
			changes = append(changes, StatusChange{FindingID: findingID, From: before, To: after})
		}
	}

	if len(changes) > 0 {
		l.logger.Info().
			Str("fact_id", factID).
			Str("fact_status", status.String()).
			Int("findings_changed", len(changes)).
			Msg("Fact status change propagated to dependent findings")
	}
	return changes
}

// RelatedFindings returns findings citing any of the given fact IDs, used
// by the dossier builder to pull risk severity into status computation.
func (l *Ledger) RelatedFindings(factIDs []string) []*records.Finding {
	cited := make(map[string]bool, len(factIDs))
	for _, id := range factIDs {
		cited[id] = true
	}

	var related []*records.Finding
	for _, finding := range l.findings.List() {
		for _, id := range finding.BasedOnFacts {
			if cited[id] {
				related = append(related, finding)
				break
			}
		}
	}
	return related
}

// EvidenceChain returns the ordered trace finding → facts → documents →
// quotes. Links follow the citation order of the finding.
func (l *Ledger) EvidenceChain(findingID string) (*Chain, error) {
	finding, ok := l.findings.Get(findingID)
	if !ok {
		return nil, errors.NewNotFoundError("finding", findingID)
	}

	chain := &Chain{
		FindingID:   finding.ID,
		Title:       finding.Title,
		DraftStatus: finding.DraftStatus.String(),
	}
	for _, id := range finding.BasedOnFacts {
		fact, ok := l.store.Get(id)
		if !ok {
			return nil, errors.NewCitationError(finding.Title, []string{id})
		}
		link := ChainLink{
			FactID:   fact.ID,
			Item:     fact.Item,
			Status:   fact.Status.String(),
			Quote:    fact.Evidence.Quote,
			Location: fact.Evidence.Location,
			DocID:    fact.Evidence.DocID,
		}
		if l.docs != nil {
			if doc, ok := l.docs.Document(fact.Evidence.DocID); ok {
				link.Document = doc
			}
		}
		chain.Links = append(chain.Links, link)
	}
	return chain, nil
}

// Restore loads a previously persisted finding and re-registers its
// citations in the store's reverse index.
func (l *Ledger) Restore(finding *records.Finding) error {
	if finding == nil {
		return errors.NewValidationError("finding", nil, "finding is required")
	}
	if len(finding.BasedOnFacts) == 0 {
		return errors.NewValidationError("based_on_facts", nil, "a finding must cite at least one fact")
	}
	var missing []string
	for _, id := range finding.BasedOnFacts {
		if _, ok := l.store.Get(id); !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return errors.NewCitationError(finding.Title, missing)
	}

	l.mu.Lock()
	err := l.findings.Add(finding)
	l.mu.Unlock()
	if err != nil {
		return err
	}
	for _, id := range finding.BasedOnFacts {
		l.store.RegisterCitation(id, finding.ID)
	}
	return nil
}

// deriveStatus computes a draft status from cited fact statuses: any
// rejected fact forces needs_review, full confirmation yields final, and
// anything still moving (provisional or corrected) stays draft.
func deriveStatus(cited []*records.Fact) records.DraftStatus {
	allConfirmed := true
	for _, fact := range cited {
		switch fact.Status {
		case records.StatusRejected:
			return records.DraftStatusNeedsReview
		case records.StatusConfirmed:
		default:
			allConfirmed = false
		}
	}
	if allConfirmed {
		return records.DraftStatusFinal
	}
	return records.DraftStatusDraft
}

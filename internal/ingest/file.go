package ingest

import (
	"context"
	"os"
	"sort"

	"github.com/goccy/go-yaml"

	"github.com/evidentry/evidentry/internal/evidence"
	"github.com/evidentry/evidentry/pkg/errors"
	"github.com/evidentry/evidentry/pkg/records"
)

// ProposalFile is the on-disk ingestion input: source documents to register
// and the fact proposals extracted from them.
type ProposalFile struct {
	Documents []*records.Document     `json:"documents,omitempty" yaml:"documents,omitempty"`
	Facts     []evidence.FactProposal `json:"facts,omitempty" yaml:"facts,omitempty"`
}

// LoadProposalFile reads and parses one YAML proposal file.
func LoadProposalFile(path string) (*ProposalFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO(err, "read", path)
	}
	var file ProposalFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.WrapParse(err, "proposal file", path)
	}
	if len(file.Documents) == 0 && len(file.Facts) == 0 {
		return nil, errors.NewValidationError("file", path, "no documents or facts to ingest")
	}
	return &file, nil
}

// Producers groups the file's facts into one producer per domain, in sorted
// domain order. Proposals keep their in-file order within a domain.
func (f *ProposalFile) Producers() []Producer {
	byDomain := make(map[string][]evidence.FactProposal)
	for _, proposal := range f.Facts {
		byDomain[proposal.Domain] = append(byDomain[proposal.Domain], proposal)
	}
	domains := make([]string, 0, len(byDomain))
	for domain := range byDomain {
		domains = append(domains, domain)
	}
	sort.Strings(domains)

	producers := make([]Producer, 0, len(domains))
	for _, domain := range domains {
		proposals := byDomain[domain]
		producers = append(producers, ProducerFunc{
			Name: domain,
			Fn: func(ctx context.Context, emit func(evidence.FactProposal) error) error {
				for _, proposal := range proposals {
					if err := emit(proposal); err != nil {
						if errors.Is(err, errors.ErrCanceled) {
							return err
						}
						// Iteration cap: stop, the report carries the flag.
						return nil
					}
				}
				return nil
			},
		})
	}
	return producers
}

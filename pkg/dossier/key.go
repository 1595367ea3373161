// Package dossier builds the per-entity, per-item aggregate views: it
// derives canonical identity keys, merges fact attributes with explicit
// conflict bookkeeping, detects data gaps, and computes an overall quality
// status for each real-world item.
package dossier

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/evidentry/evidentry/pkg/records"
)

// lower folds case the Unicode-correct way; vendor and product names in
// source documents are not reliably ASCII.
var lower = cases.Lower(language.Und)

// domainAliases maps the domain spellings extractors produce to canonical
// domain names, so facts about the same discipline converge.
var domainAliases = map[string]string{
	"iam":             "identity_access",
	"identity":        "identity_access",
	"identity_access": "identity_access",
	"hr":              "hr",
	"hris":            "hr",
	"payroll":         "hr",
	"network":         "network",
	"networking":      "network",
	"lan_wan":         "network",
	"erp":             "erp",
	"finance_systems": "erp",
	"infra":           "infrastructure",
	"infrastructure":  "infrastructure",
	"datacenter":      "infrastructure",
	"security":        "security",
	"infosec":         "security",
	"cyber":           "security",
	"applications":    "applications",
	"apps":            "applications",
	"saas":            "applications",
}

// NormalizeDomain resolves a domain name through the alias table. Unknown
// domains pass through lower-cased with spaces collapsed to underscores, so
// a new discipline never silently disappears.
func NormalizeDomain(domain string) string {
	d := strings.Join(strings.Fields(lower.String(strings.TrimSpace(domain))), "_")
	if canonical, ok := domainAliases[d]; ok {
		return canonical
	}
	return d
}

// CanonicalKey derives the deterministic identity key for a fact:
// entity, normalized domain, normalized item, then vendor and
// instance/environment qualifiers — each appended only when present and not
// already substring-contained in the item. Two facts describing the same
// real-world item must collide on this key; two facts about different
// entities never collide, regardless of name similarity.
func CanonicalKey(f *records.Fact) string {
	item := normalizeTerm(f.Item)

	parts := []string{
		lower.String(strings.TrimSpace(f.Entity.String())),
		NormalizeDomain(f.Domain),
		item,
	}

	for _, field := range []string{"vendor", "instance", "environment"} {
		if v, ok := f.Detail(field); ok {
			qualifier := normalizeTerm(v)
			if qualifier != "" && !strings.Contains(item, qualifier) {
				parts = append(parts, qualifier)
			}
		}
	}

	return strings.Join(parts, "|")
}

// normalizeTerm lower-cases, trims, and collapses internal whitespace.
func normalizeTerm(s string) string {
	return strings.Join(strings.Fields(lower.String(strings.TrimSpace(s))), " ")
}

package dossier

// criticalFields lists, per canonical domain, the attributes a dossier must
// carry before anyone can price or plan against it. Gap detection and
// completeness both run off this checklist, never off free-form string
// matching.
var criticalFields = map[string][]string{
	"erp":             {"vendor", "version", "hosting", "user_count", "annual_cost"},
	"hr":              {"vendor", "hosting", "user_count", "contract_end"},
	"network":         {"vendor", "model", "support_status"},
	"infrastructure":  {"vendor", "platform", "region", "hosting"},
	"identity_access": {"vendor", "user_count", "mfa_enabled"},
	"security":        {"vendor", "version", "coverage"},
	"applications":    {"vendor", "version", "hosting", "user_count"},
}

// defaultCriticalFields applies to domains without a dedicated checklist.
var defaultCriticalFields = []string{"vendor", "version", "hosting"}

// CriticalFields returns the checklist for a domain (normalized or not).
func CriticalFields(domain string) []string {
	if fields, ok := criticalFields[NormalizeDomain(domain)]; ok {
		return fields
	}
	return defaultCriticalFields
}

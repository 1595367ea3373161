package records

// Document is a registry entry for a source document. Every fact extracted
// from a document inherits its entity tag verbatim.
type Document struct {
	DocID          string `json:"doc_id" yaml:"doc_id"`                   // Unique document identifier
	Title          string `json:"title,omitempty" yaml:"title,omitempty"` // Display title
	Entity         Entity `json:"entity" yaml:"entity"`                   // Which party supplied the document
	AuthorityLevel int    `json:"authority_level" yaml:"authority_level"` // 1 = contract/system export, 2 = internal doc, 3 = interview note
	SHA256         string `json:"sha256,omitempty" yaml:"sha256,omitempty"`
}

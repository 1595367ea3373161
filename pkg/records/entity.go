package records

import (
	"strings"

	"github.com/evidentry/evidentry/pkg/errors"
)

// Entity identifies which of the two deal parties a record describes.
// It is assigned at ingestion from the originating document and never
// inferred from content. There is no default: a record without a valid
// entity is a data-quality defect, not a target record.
type Entity string

// The two valid entity tags.
const (
	EntityTarget Entity = "target" // The company being acquired
	EntityBuyer  Entity = "buyer"  // The acquiring company
)

// String returns the string representation of an Entity.
func (e Entity) String() string {
	return string(e)
}

// Valid reports whether the entity is one of the two recognized tags.
func (e Entity) Valid() bool {
	return e == EntityTarget || e == EntityBuyer
}

// ParseEntity parses an entity tag. It returns an EntityError for empty or
// unrecognized values; it never falls back to a default.
func ParseEntity(s, source string) (Entity, error) {
	e := Entity(strings.ToLower(strings.TrimSpace(s)))
	if !e.Valid() {
		return "", errors.NewEntityError(s, source)
	}
	return e, nil
}

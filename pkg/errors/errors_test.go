package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("fact", "hr-001")

	assert.Equal(t, "fact with ID hr-001 not found", err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalidInput))
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name    string
		err     *ValidationError
		message string
	}{
		{
			name:    "with field",
			err:     NewValidationError("quote", "x", "quote too short"),
			message: "validation failed for field quote: quote too short",
		},
		{
			name:    "without field",
			err:     NewValidationError("", nil, "empty proposal"),
			message: "validation failed: empty proposal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error())
			assert.True(t, errors.Is(tt.err, ErrInvalidInput))
		})
	}
}

func TestEntityError(t *testing.T) {
	missing := NewEntityError("", "doc-7")
	assert.Equal(t, "entity tag missing (source doc-7)", missing.Error())
	assert.True(t, errors.Is(missing, ErrEntityRequired))
	assert.True(t, errors.Is(missing, ErrInvalidInput))

	invalid := NewEntityError("vendor", "doc-7")
	assert.Contains(t, invalid.Error(), `invalid entity tag "vendor"`)
}

func TestCitationError(t *testing.T) {
	err := NewCitationError("ERP replacement risk", []string{"erp-003", "erp-009"})

	assert.Contains(t, err.Error(), "ERP replacement risk")
	assert.Contains(t, err.Error(), "erp-003, erp-009")
	assert.True(t, errors.Is(err, ErrCitation))
}

func TestExportBlockedError(t *testing.T) {
	err := NewExportBlockedError([]string{"2 items with unknown entity", "14 unresolved conflicts"})

	assert.True(t, errors.Is(err, ErrExportBlocked))
	assert.Equal(t, "export blocked: 2 items with unknown entity; 14 unresolved conflicts", err.Error())
}

func TestIOErrorUnwrap(t *testing.T) {
	inner := errors.New("permission denied")
	err := WrapIO(inner, "write", "/tmp/snapshot.yaml")

	require.Error(t, err)
	assert.True(t, errors.Is(err, inner))
	assert.Contains(t, err.Error(), "write /tmp/snapshot.yaml")

	assert.NoError(t, WrapIO(nil, "write", "x"))
}

func TestParseErrorUnwrap(t *testing.T) {
	inner := errors.New("unexpected node")
	err := WrapParse(inner, "yaml", "facts.yaml")

	require.Error(t, err)
	assert.True(t, errors.Is(err, inner))

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "yaml", parseErr.Format)

	assert.NoError(t, WrapParse(nil, "yaml", ""))
}

func TestErrorWrappingWithFmt(t *testing.T) {
	base := NewNotFoundError("finding", "f-1")
	wrapped := fmt.Errorf("resolving citation: %w", base)

	assert.True(t, errors.Is(wrapped, ErrNotFound))

	var nf *NotFoundError
	require.True(t, errors.As(wrapped, &nf))
	assert.Equal(t, "f-1", nf.ID)
}

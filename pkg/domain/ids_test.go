package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "campus/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the shared parsing invariant:
// ids must be valid, non-empty, non-nil UUIDs.
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseUserID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseUserID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseUserID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, UserID(validUUID), id)
	})
}

// TestParseID_TrustBoundary validates parsing rules against hostile input.
// Parsing happens once at API entry; everything past it sees typed ids.
func TestParseID_TrustBoundary(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE students;--", true},
		{"path traversal", "../../../etc/passwd", true},
		{"null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"oversized input", strings.Repeat("a", 1000), true},
		{"empty string", "", true},
		{"nil UUID", uuid.Nil.String(), true},
		{"whitespace only", "   ", true},
		{"uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSchoolID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// TestAllIDTypes_ConsistentBehavior ensures every id type shares the same
// validation, so no aggregate becomes a weaker trust boundary than another.
func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()
	invalidInputs := []string{"", "invalid", uuid.Nil.String()}

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errUser := ParseUserID(validUUID)
		_, errSchool := ParseSchoolID(validUUID)
		_, errStudent := ParseStudentID(validUUID)
		_, errClass := ParseClassID(validUUID)
		_, errLeave := ParseLeaveID(validUUID)
		_, errCert := ParseCertificateID(validUUID)
		for _, err := range []error{errUser, errSchool, errStudent, errClass, errLeave, errCert} {
			assert.NoError(t, err)
		}
	})

	t.Run("all reject invalid input", func(t *testing.T) {
		for _, input := range invalidInputs {
			_, errUser := ParseUserID(input)
			_, errSchool := ParseSchoolID(input)
			_, errStudent := ParseStudentID(input)
			_, errClass := ParseClassID(input)
			_, errLeave := ParseLeaveID(input)
			_, errCert := ParseCertificateID(input)
			for _, err := range []error{errUser, errSchool, errStudent, errClass, errLeave, errCert} {
				assert.Error(t, err, "input %q", input)
			}
		}
	})
}

// TestZeroValueIsNil documents that the zero value of every id type reports
// IsNil, which optional fields (class, teacher, declared school) rely on.
func TestZeroValueIsNil(t *testing.T) {
	assert.True(t, UserID{}.IsNil())
	assert.True(t, SchoolID{}.IsNil())
	assert.True(t, StudentID{}.IsNil())
	assert.True(t, ClassID{}.IsNil())
	assert.True(t, LeaveID{}.IsNil())
	assert.True(t, CertificateID{}.IsNil())

	assert.False(t, UserID(uuid.New()).IsNil())
}

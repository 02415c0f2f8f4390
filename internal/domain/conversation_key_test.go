package domain

import (
	"fmt"
	"testing"

	apperrors "jobboard_chat/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinThenParseRoundTrip(t *testing.T) {
	pairs := [][2]string{
		{"10", "42"},
		{"7", "applicant-uuid"},
		{"abc", "0"},
		{"employer.1", "a b"},
	}

	for _, p := range pairs {
		t.Run(fmt.Sprintf("%s/%s", p[0], p[1]), func(t *testing.T) {
			key := ParseKey(JoinKey(p[0], p[1]))
			assert.Equal(t, p[0], key.EmployerID)
			assert.Equal(t, p[1], key.ApplicantID)
		})
	}
}

func TestParseKeyBreaksWhenEmployerContainsDelimiter(t *testing.T) {
	joined := JoinKey("acme_hr", "42")

	key := ParseKey(joined)

	assert.Equal(t, "acme", key.EmployerID)
	assert.Equal(t, "hr_42", key.ApplicantID)
	assert.NotEqual(t, ConversationKey{EmployerID: "acme_hr", ApplicantID: "42"}, key)
}

func TestParseKeyWithoutDelimiter(t *testing.T) {
	key := ParseKey("lonely")
	assert.Equal(t, "lonely", key.EmployerID)
	assert.Empty(t, key.ApplicantID)
}

func TestNewConversationKeyRejectsAmbiguousIdentifiers(t *testing.T) {
	tests := []struct {
		name      string
		employer  string
		applicant string
	}{
		{"empty employer", "", "42"},
		{"empty applicant", "10", "  "},
		{"delimiter in employer", "acme_hr", "42"},
		{"delimiter in applicant", "10", "4_2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConversationKey(tt.employer, tt.applicant)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidIdentifier)
		})
	}
}

func TestParseConversationKey(t *testing.T) {
	key, err := ParseConversationKey("10_42")
	require.NoError(t, err)
	assert.Equal(t, ConversationKey{EmployerID: "10", ApplicantID: "42"}, key)
	assert.Equal(t, "10_42", key.String())

	_, err = ParseConversationKey("10_4_2")
	assert.ErrorIs(t, err, apperrors.ErrInvalidIdentifier)
}

func TestRoleOf(t *testing.T) {
	key := ConversationKey{EmployerID: "10", ApplicantID: "42"}

	role, err := key.RoleOf("10")
	require.NoError(t, err)
	assert.Equal(t, RoleEmployer, role)

	role, err = key.RoleOf("42")
	require.NoError(t, err)
	assert.Equal(t, RoleApplicant, role)

	_, err = key.RoleOf("99")
	assert.ErrorIs(t, err, apperrors.ErrNotParticipant)
}

func TestEmployerIDVariants(t *testing.T) {
	assert.Equal(t, []string{"10"}, EmployerIDVariants("10"))
	assert.Equal(t, []string{"010", "10"}, EmployerIDVariants("010"))
	assert.Equal(t, []string{"acme"}, EmployerIDVariants("acme"))
	assert.Equal(t, []string{"+7", "7"}, EmployerIDVariants("+7"))
}

func TestCanonicalEmployerID(t *testing.T) {
	assert.Equal(t, "10", CanonicalEmployerID("010"))
	assert.Equal(t, "10", CanonicalEmployerID("10"))
	assert.Equal(t, "acme", CanonicalEmployerID(" acme "))
}

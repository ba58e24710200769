package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMember(t *testing.T) {
	m, err := NewMember(NewMemberParams{Name: " Kim ", Email: "Kim@Example.com", Phone: "010-1234-5678"})
	require.NoError(t, err)
	assert.Equal(t, "Kim", m.Name)
	assert.Equal(t, "kim@example.com", m.Email)
	assert.False(t, m.CreatedAt.IsZero())

	for _, email := range []string{"", "not-an-email", "Kim <kim@example.com>"} {
		_, err := NewMember(NewMemberParams{Name: "Kim", Email: email})
		assert.ErrorIs(t, err, ErrInvalidMember, email)
	}
}

func TestMemberUpdateKeepsEmail(t *testing.T) {
	m, err := NewMember(NewMemberParams{Name: "Kim", Email: "kim@example.com"})
	require.NoError(t, err)

	require.NoError(t, m.Update("Lee", "010-0000-0000", "Seoul"))
	assert.Equal(t, "Lee", m.Name)
	assert.Equal(t, "Seoul", m.Address)
	assert.Equal(t, "kim@example.com", m.Email)

	assert.ErrorIs(t, m.Update("", "", ""), ErrInvalidMember)
}

package schema

import (
	"testing"

	"github.com/nasdf/campus/document"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCollections(t *testing.T) {
	s := Default()
	assert.Equal(t, []string{"associations", "events", "users"}, s.Collections())
	assert.True(t, s.HasCollection("users"))
	assert.False(t, s.HasCollection("User"))
}

func TestRelation(t *testing.T) {
	s := Default()

	target, ok := s.Relation("associations", "members")
	require.True(t, ok)
	assert.Equal(t, "users", target)

	target, ok = s.Relation("events", "host")
	require.True(t, ok)
	assert.Equal(t, "users", target)

	_, ok = s.Relation("associations", "name")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	s := Default()

	err := s.Validate("users", document.Document{
		"name":                 "Alice",
		"interests":            []string{"chess"},
		"followedAssociations": []any{"a1", "a2"},
	})
	require.NoError(t, err)

	err = s.Validate("events", document.Document{
		"title": "Party",
		"start": "2024-09-01T18:00:00Z",
		"host":  "u1",
	})
	require.NoError(t, err)

	err = s.Validate("users", document.Document{"nickname": "al"})
	require.ErrorIs(t, err, ErrUnknownField)

	err = s.Validate("users", document.Document{"name": 12})
	require.ErrorIs(t, err, ErrInvalidValue)

	err = s.Validate("associations", document.Document{"members": []any{"u1", 2}})
	require.ErrorIs(t, err, ErrInvalidValue)

	err = s.Validate("rooms", document.Document{})
	require.ErrorIs(t, err, ErrUnknownCollection)
}

func TestLoadWithoutCollections(t *testing.T) {
	s, err := Load("type Note { text: String }")
	require.NoError(t, err)
	assert.Empty(t, s.Collections())
}

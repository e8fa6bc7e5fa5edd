package node

import (
	"testing"

	"github.com/nasdf/campus/document"

	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDocumentRoundTrip(t *testing.T) {
	doc := document.Document{
		"name":    "Alice",
		"age":     21,
		"score":   4.5,
		"active":  true,
		"members": []string{"u1", "u2"},
		"meta":    map[string]any{"level": int64(2)},
		"empty":   nil,
	}

	n, err := BuildDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, datamodel.Kind_Map, n.Kind())

	out, err := DocumentValue(n)
	require.NoError(t, err)

	assert.Equal(t, document.Document{
		"name":    "Alice",
		"age":     int64(21),
		"score":   4.5,
		"active":  true,
		"members": []any{"u1", "u2"},
		"meta":    map[string]any{"level": int64(2)},
		"empty":   nil,
	}, out)
}

func TestBuildUnsupportedValue(t *testing.T) {
	_, err := Build(struct{}{})
	require.Error(t, err)
}

func TestDocumentValueRequiresMap(t *testing.T) {
	n, err := Build("not a map")
	require.NoError(t, err)

	_, err = DocumentValue(n)
	require.Error(t, err)
}

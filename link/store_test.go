package link

import (
	"bytes"
	"context"
	"testing"

	"github.com/nasdf/campus/storage"

	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAndLoad(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemory())

	node, err := qp.BuildMap(basicnode.Prototype.Map, 1, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "name", qp.String("Alice"))
	})
	require.NoError(t, err)

	lnk, err := store.Store(ctx, node)
	require.NoError(t, err)

	parsed, err := Parse(lnk.String())
	require.NoError(t, err)
	assert.Equal(t, lnk, parsed)

	out, err := store.LoadMap(ctx, parsed)
	require.NoError(t, err)

	name, err := out.LookupByString("name")
	require.NoError(t, err)

	value, err := name.AsString()
	require.NoError(t, err)
	assert.Equal(t, "Alice", value)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemory())

	leaf, err := store.Store(ctx, basicnode.NewString("leaf"))
	require.NoError(t, err)

	root, err := qp.BuildMap(basicnode.Prototype.Map, 1, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "leaf", qp.Link(leaf))
	})
	require.NoError(t, err)

	rootLink, err := store.Store(ctx, root)
	require.NoError(t, err)

	var out bytes.Buffer
	err = store.Export(ctx, rootLink, &out)
	require.NoError(t, err)
	assert.NotZero(t, out.Len())
}

package core

import (
	"context"

	"github.com/nasdf/campus/link"
	"github.com/nasdf/campus/schema"

	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	"github.com/ipld/go-ipld-prime/node/basicnode"
)

// BuildRootNode returns a new root node with the collections defined in the given schema.
func BuildRootNode(ctx context.Context, store *link.Store, s *schema.Schema) (datamodel.Node, error) {
	schemaLink, err := store.Store(ctx, basicnode.NewString(s.Source()))
	if err != nil {
		return nil, err
	}
	collectionsNode, err := BuildRootCollectionsNode(ctx, store, s)
	if err != nil {
		return nil, err
	}
	collectionsLink, err := store.Store(ctx, collectionsNode)
	if err != nil {
		return nil, err
	}
	return qp.BuildMap(basicnode.Prototype.Map, 2, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, RootSchemaFieldName, qp.Link(schemaLink))
		qp.MapEntry(ma, RootCollectionsFieldName, qp.Link(collectionsLink))
	})
}

// BuildRootCollectionsNode returns a new collections field node containing the collections defined in the given schema.
func BuildRootCollectionsNode(ctx context.Context, store *link.Store, s *schema.Schema) (datamodel.Node, error) {
	documentsNode, err := qp.BuildMap(basicnode.Prototype.Map, 0, func(ma datamodel.MapAssembler) {})
	if err != nil {
		return nil, err
	}
	collectionNode, err := BuildCollectionNode(documentsNode)
	if err != nil {
		return nil, err
	}
	// every collection starts out as the same empty node
	collectionLink, err := store.Store(ctx, collectionNode)
	if err != nil {
		return nil, err
	}
	names := s.Collections()
	return qp.BuildMap(basicnode.Prototype.Map, int64(len(names)), func(ma datamodel.MapAssembler) {
		for _, n := range names {
			qp.MapEntry(ma, n, qp.Link(collectionLink))
		}
	})
}

// BuildCollectionNode returns a new collection node containing the given documents map.
func BuildCollectionNode(documents datamodel.Node) (datamodel.Node, error) {
	return qp.BuildMap(basicnode.Prototype.Map, 1, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, CollectionDocumentsFieldName, qp.Node(documents))
	})
}

// ReplaceEntry returns a copy of the given map node with the entry for key
// replaced by value. A nil value removes the entry.
func ReplaceEntry(n datamodel.Node, key string, value datamodel.Node) (datamodel.Node, error) {
	keys := make([]string, 0, n.Length()+1)
	values := make([]datamodel.Node, 0, n.Length()+1)
	for iter := n.MapIterator(); !iter.Done(); {
		k, v, err := iter.Next()
		if err != nil {
			return nil, err
		}
		ks, err := k.AsString()
		if err != nil {
			return nil, err
		}
		if ks == key {
			continue
		}
		keys = append(keys, ks)
		values = append(values, v)
	}
	if value != nil {
		keys = append(keys, key)
		values = append(values, value)
	}
	return qp.BuildMap(basicnode.Prototype.Map, int64(len(keys)), func(ma datamodel.MapAssembler) {
		for i, k := range keys {
			qp.MapEntry(ma, k, qp.Node(values[i]))
		}
	})
}

package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/nasdf/campus/document"
	"github.com/nasdf/campus/link"
	"github.com/nasdf/campus/node"
	"github.com/nasdf/campus/schema"
	"github.com/nasdf/campus/storage"

	"github.com/google/uuid"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/node/basicnode"
)

// ErrUnknownCollection is returned for a collection the store schema does not define.
var ErrUnknownCollection = schema.ErrUnknownCollection

// Store is a document store that keeps collections of documents in a content
// addressable DAG. Documents are addressed by collection name and id.
//
// Reads are safe to run concurrently with each other and with writes. Writes
// are serialized.
type Store struct {
	mu       sync.RWMutex
	storage  storage.Storage
	links    *link.Store
	schema   *schema.Schema
	rootLink datamodel.Link
}

// Open creates a new empty store using the given storage and GraphQL schema source.
func Open(ctx context.Context, store storage.Storage, source string) (*Store, error) {
	s, err := schema.Load(source)
	if err != nil {
		return nil, err
	}
	links := link.NewStore(store)
	rootNode, err := BuildRootNode(ctx, links, s)
	if err != nil {
		return nil, err
	}
	rootLink, err := links.Store(ctx, rootNode)
	if err != nil {
		return nil, err
	}
	err = store.Put(ctx, RootLinkKey, []byte(rootLink.String()))
	if err != nil {
		return nil, err
	}
	return &Store{
		storage:  store,
		links:    links,
		schema:   s,
		rootLink: rootLink,
	}, nil
}

// Load returns an existing store from the given storage.
func Load(ctx context.Context, store storage.Storage) (*Store, error) {
	data, err := store.Get(ctx, RootLinkKey)
	if err != nil {
		return nil, err
	}
	rootLink, err := link.Parse(string(data))
	if err != nil {
		return nil, err
	}
	links := link.NewStore(store)
	rootNode, err := links.LoadMap(ctx, rootLink)
	if err != nil {
		return nil, err
	}
	schemaLinkNode, err := rootNode.LookupByString(RootSchemaFieldName)
	if err != nil {
		return nil, err
	}
	schemaLink, err := schemaLinkNode.AsLink()
	if err != nil {
		return nil, err
	}
	schemaNode, err := links.Load(ctx, schemaLink, basicnode.Prototype.String)
	if err != nil {
		return nil, err
	}
	source, err := schemaNode.AsString()
	if err != nil {
		return nil, err
	}
	s, err := schema.Load(source)
	if err != nil {
		return nil, err
	}
	return &Store{
		storage:  store,
		links:    links,
		schema:   s,
		rootLink: rootLink,
	}, nil
}

// Schema returns the schema describing the collections in the store.
func (s *Store) Schema() *schema.Schema {
	return s.schema
}

// RootLink returns the link of the current root node.
func (s *Store) RootLink() datamodel.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.rootLink
}

// Get returns the document in the given collection with the given id.
//
// A missing document is reported with found set to false and a nil error.
func (s *Store) Get(ctx context.Context, collection, id string) (document.Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if !s.schema.HasCollection(collection) {
		return nil, false, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	documents, err := s.documentsNode(ctx, s.RootLink(), collection)
	if err != nil {
		return nil, false, err
	}
	docLinkNode, err := documents.LookupByString(id)
	if _, ok := err.(datamodel.ErrNotExists); ok {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	docLink, err := docLinkNode.AsLink()
	if err != nil {
		return nil, false, err
	}
	docNode, err := s.links.LoadMap(ctx, docLink)
	if err != nil {
		return nil, false, err
	}
	doc, err := node.DocumentValue(docNode)
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

// Set creates or overwrites the document in the given collection with the given id.
func (s *Store) Set(ctx context.Context, collection, id string, doc document.Document) error {
	if id == "" {
		return fmt.Errorf("document id is required")
	}
	if err := s.schema.Validate(collection, doc); err != nil {
		return err
	}
	docNode, err := node.BuildDocument(doc)
	if err != nil {
		return err
	}
	docLink, err := s.links.Store(ctx, docNode)
	if err != nil {
		return err
	}
	return s.update(ctx, collection, id, basicnode.NewLink(docLink))
}

// Create creates a document in the given collection and returns its new unique id.
func (s *Store) Create(ctx context.Context, collection string, doc document.Document) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	if err := s.Set(ctx, collection, id.String(), doc); err != nil {
		return "", err
	}
	return id.String(), nil
}

// Delete removes the document in the given collection with the given id.
//
// Deleting a missing document is not an error.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if !s.schema.HasCollection(collection) {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	return s.update(ctx, collection, id, nil)
}

// IDs returns the sorted ids of all documents in the given collection.
func (s *Store) IDs(ctx context.Context, collection string) ([]string, error) {
	if !s.schema.HasCollection(collection) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	documents, err := s.documentsNode(ctx, s.RootLink(), collection)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, documents.Length())
	for iter := documents.MapIterator(); !iter.Done(); {
		k, _, err := iter.Next()
		if err != nil {
			return nil, err
		}
		id, err := k.AsString()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Dump returns a mapping of all collections to their sorted document ids.
//
// This function is primarily used for testing.
func (s *Store) Dump(ctx context.Context) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, c := range s.schema.Collections() {
		ids, err := s.IDs(ctx, c)
		if err != nil {
			return nil, err
		}
		out[c] = ids
	}
	return out, nil
}

// update replaces the document link for the given id and commits a new root.
func (s *Store) update(ctx context.Context, collection, id string, docLink datamodel.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rootNode, err := s.links.LoadMap(ctx, s.rootLink)
	if err != nil {
		return err
	}
	collections, err := s.collectionsNode(ctx, rootNode)
	if err != nil {
		return err
	}
	collectionNode, err := s.collectionNode(ctx, collections, collection)
	if err != nil {
		return err
	}
	documents, err := collectionNode.LookupByString(CollectionDocumentsFieldName)
	if err != nil {
		return err
	}
	documents, err = ReplaceEntry(documents, id, docLink)
	if err != nil {
		return err
	}
	collectionNode, err = BuildCollectionNode(documents)
	if err != nil {
		return err
	}
	collectionLink, err := s.links.Store(ctx, collectionNode)
	if err != nil {
		return err
	}
	collections, err = ReplaceEntry(collections, collection, basicnode.NewLink(collectionLink))
	if err != nil {
		return err
	}
	collectionsLink, err := s.links.Store(ctx, collections)
	if err != nil {
		return err
	}
	rootNode, err = ReplaceEntry(rootNode, RootCollectionsFieldName, basicnode.NewLink(collectionsLink))
	if err != nil {
		return err
	}
	rootLink, err := s.links.Store(ctx, rootNode)
	if err != nil {
		return err
	}
	err = s.storage.Put(ctx, RootLinkKey, []byte(rootLink.String()))
	if err != nil {
		return err
	}
	s.rootLink = rootLink
	return nil
}

func (s *Store) collectionsNode(ctx context.Context, rootNode datamodel.Node) (datamodel.Node, error) {
	collectionsLinkNode, err := rootNode.LookupByString(RootCollectionsFieldName)
	if err != nil {
		return nil, err
	}
	collectionsLink, err := collectionsLinkNode.AsLink()
	if err != nil {
		return nil, err
	}
	return s.links.LoadMap(ctx, collectionsLink)
}

func (s *Store) collectionNode(ctx context.Context, collections datamodel.Node, collection string) (datamodel.Node, error) {
	collectionLinkNode, err := collections.LookupByString(collection)
	if _, ok := err.(datamodel.ErrNotExists); ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	if err != nil {
		return nil, err
	}
	collectionLink, err := collectionLinkNode.AsLink()
	if err != nil {
		return nil, err
	}
	return s.links.LoadMap(ctx, collectionLink)
}

func (s *Store) documentsNode(ctx context.Context, rootLink datamodel.Link, collection string) (datamodel.Node, error) {
	rootNode, err := s.links.LoadMap(ctx, rootLink)
	if err != nil {
		return nil, err
	}
	collections, err := s.collectionsNode(ctx, rootNode)
	if err != nil {
		return nil, err
	}
	collectionNode, err := s.collectionNode(ctx, collections, collection)
	if err != nil {
		return nil, err
	}
	documents, err := collectionNode.LookupByString(CollectionDocumentsFieldName)
	if err != nil {
		return nil, err
	}
	if documents.Kind() != datamodel.Kind_Map {
		return nil, errors.New("invalid documents node")
	}
	return documents, nil
}

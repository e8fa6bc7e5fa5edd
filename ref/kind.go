// Package ref resolves stored document ids into typed entities.
//
// Entities reference each other only by id. A Reference holds one id and a
// Collection holds an ordered list of ids; both turn their ids into hydrated
// entities on demand and publish the results through an observable value.
//
// Hydration is shallow: relationship fields become new unresolved References
// and Collections. Resolving one side of a cycle never resolves the other.
package ref

import (
	"context"
	"fmt"

	"github.com/nasdf/campus/document"
)

// Entity is a hydrated domain object with a stable id in its collection.
type Entity interface {
	UID() string
}

// HydrateFunc builds an entity from a raw document.
//
// It must be total and shallow: missing or malformed fields get defaults and
// relationship fields only copy ids. It must not modify doc.
type HydrateFunc[T Entity] func(id string, doc document.Document) T

// SerializeFunc converts an entity into its raw document form.
type SerializeFunc[T Entity] func(v T) document.Document

// Kind describes how entities of one type are stored.
type Kind[T Entity] struct {
	// Collection is the name of the collection holding the entities.
	Collection string
	// Hydrate builds an entity from a raw document.
	Hydrate HydrateFunc[T]
	// Serialize converts an entity into a raw document. It is optional.
	Serialize SerializeFunc[T]
}

// Save writes the serialized entity to its collection using the entity id.
func Save[T Entity](ctx context.Context, w Writer, kind *Kind[T], v T) error {
	if kind.Serialize == nil {
		return fmt.Errorf("%s: kind has no serializer", kind.Collection)
	}
	if v.UID() == "" {
		return fmt.Errorf("%s: entity id is required", kind.Collection)
	}
	return w.Set(ctx, kind.Collection, v.UID(), kind.Serialize(v))
}

// Load fetches and hydrates a single entity.
func Load[T Entity](ctx context.Context, f *Fetcher, kind *Kind[T], id string) (T, error) {
	var zero T
	if kind == nil || kind.Collection == "" {
		return zero, ErrNoCollection
	}
	doc, err := f.Fetch(ctx, kind.Collection, id)
	if err != nil {
		return zero, err
	}
	return kind.Hydrate(id, doc), nil
}

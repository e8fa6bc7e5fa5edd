package ref

import (
	"context"
	"errors"

	"github.com/nasdf/campus/document"
)

var (
	// ErrNotFound is returned when a referenced document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrNoCollection is returned when resolving a reference without a target collection.
	ErrNoCollection = errors.New("reference has no collection")
	// ErrSuperseded is returned by a resolve whose result was discarded because
	// the reference target changed or a newer resolve started.
	ErrSuperseded = errors.New("resolve superseded")
)

// Store reads single documents by collection and id.
//
// A missing document is reported with found set to false and a nil error.
type Store interface {
	Get(ctx context.Context, collection, id string) (doc document.Document, found bool, err error)
}

// Writer writes single documents by collection and id.
type Writer interface {
	Set(ctx context.Context, collection, id string, doc document.Document) error
}

// StoreFunc adapts a function to the Store interface.
type StoreFunc func(ctx context.Context, collection, id string) (document.Document, bool, error)

// Get implements Store.
func (fn StoreFunc) Get(ctx context.Context, collection, id string) (document.Document, bool, error) {
	return fn(ctx, collection, id)
}

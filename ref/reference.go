package ref

import (
	"context"
	"sync"

	"github.com/nasdf/campus/observe"

	"go.uber.org/zap"
)

// Reference resolves a single id into an entity.
//
// The zero value of T denotes the absence of an entity, so entity types are
// expected to be pointers.
type Reference[T Entity] struct {
	kind   *Kind[T]
	mu     sync.Mutex
	id     string
	gen    uint64
	cached T
	has    bool
	value  *observe.Value[T]
}

// NewReference returns an unresolved reference to the given id. An empty id means no target.
func NewReference[T Entity](kind *Kind[T], id string) *Reference[T] {
	var zero T
	return &Reference[T]{
		kind:  kind,
		id:    id,
		value: observe.NewValue(zero),
	}
}

// Collection returns the name of the referenced collection.
func (r *Reference[T]) Collection() string {
	if r.kind == nil {
		return ""
	}
	return r.kind.Collection
}

// ID returns the target id.
func (r *Reference[T]) ID() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.id
}

// Set replaces the target id without fetching.
//
// The cached entity is dropped when the id changes and results of resolves
// started before the change are discarded.
func (r *Reference[T]) Set(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == r.id {
		return
	}
	r.id = id
	r.gen++
	r.clear()
}

// Get returns the cached entity and a bool indicating if it is present.
func (r *Reference[T]) Get() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.cached, r.has
}

// Value returns the observable cached entity.
func (r *Reference[T]) Value() *observe.Value[T] {
	return r.value
}

// Watch returns a channel receiving the cached entity and all later changes.
func (r *Reference[T]) Watch(ctx context.Context) <-chan T {
	return r.value.Subscribe(ctx)
}

// Resolve fetches and hydrates the target entity.
//
// An empty id clears the cache and returns nil without reading the store.
// When lazy is set and the cached entity already has the target id the store
// is not read either. On failure the cache is cleared and the error, wrapping
// ErrNotFound for missing documents, is returned.
func (r *Reference[T]) Resolve(ctx context.Context, f *Fetcher, lazy bool) error {
	r.mu.Lock()
	id := r.id
	if id == "" {
		r.gen++
		r.clear()
		r.mu.Unlock()
		return nil
	}
	if lazy && r.has && r.cached.UID() == id {
		r.mu.Unlock()
		return nil
	}
	if r.kind == nil || r.kind.Collection == "" {
		r.mu.Unlock()
		return ErrNoCollection
	}
	r.gen++
	gen := r.gen
	r.mu.Unlock()

	doc, err := f.Fetch(ctx, r.kind.Collection, id)

	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.gen {
		f.log.Debug("discarding superseded reference result",
			zap.String("collection", r.kind.Collection),
			zap.String("id", id))
		return ErrSuperseded
	}
	if err != nil {
		r.clear()
		f.log.Warn("failed to resolve reference",
			zap.String("collection", r.kind.Collection),
			zap.String("id", id),
			zap.Error(err))
		return err
	}
	v := r.kind.Hydrate(id, doc)
	r.cached = v
	r.has = true
	r.value.Store(v)
	return nil
}

// ResolveAsync runs Resolve in a new goroutine and returns a channel receiving its outcome.
func (r *Reference[T]) ResolveAsync(ctx context.Context, f *Fetcher, lazy bool) <-chan error {
	out := make(chan error, 1)
	go func() {
		out <- r.Resolve(ctx, f, lazy)
	}()
	return out
}

func (r *Reference[T]) clear() {
	if !r.has {
		return
	}
	var zero T
	r.cached = zero
	r.has = false
	r.value.Store(zero)
}

package ref

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/nasdf/campus/observe"

	"go.uber.org/zap"
)

// Collection resolves an ordered list of ids into a set of entities.
//
// Ids may repeat and their order is kept for the caller. The cached set is
// keyed by id and published as an immutable snapshot.
type Collection[T Entity] struct {
	kind   *Kind[T]
	mu     sync.Mutex
	ids    []string
	gen    uint64
	cached map[string]T
	status map[string]Status
	value  *observe.Value[map[string]T]
}

// NewCollection returns an unresolved collection of the given ids.
func NewCollection[T Entity](kind *Kind[T], ids ...string) *Collection[T] {
	cached := make(map[string]T)
	return &Collection[T]{
		kind:   kind,
		ids:    append([]string{}, ids...),
		cached: cached,
		status: make(map[string]Status),
		value:  observe.NewValue(cached),
	}
}

// Collection returns the name of the referenced collection.
func (c *Collection[T]) Collection() string {
	if c.kind == nil {
		return ""
	}
	return c.kind.Collection
}

// Add appends an id without fetching.
func (c *Collection[T]) Add(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ids = append(c.ids, id)
}

// AddAll appends all ids without fetching.
func (c *Collection[T]) AddAll(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ids = append(c.ids, ids...)
}

// Remove removes every occurrence of the id and returns the number removed.
func (c *Collection[T]) Remove(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.ids)
	c.ids = slices.DeleteFunc(c.ids, func(v string) bool { return v == id })
	return n - len(c.ids)
}

// Replace replaces all ids without fetching.
func (c *Collection[T]) Replace(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ids = append([]string{}, ids...)
}

// IDs returns a copy of the ids.
func (c *Collection[T]) IDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.ids)
}

// Len returns the number of ids.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.ids)
}

// Contains returns true if the id is part of the collection.
func (c *Collection[T]) Contains(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Contains(c.ids, id)
}

// Cached returns the current set of resolved entities keyed by id.
//
// The returned map is shared and must not be modified.
func (c *Collection[T]) Cached() map[string]T {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cached
}

// Get returns the cached entity for the id.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.cached[id]
	return v, ok
}

// Ordered returns the cached entities in id order. Unresolved ids are skipped
// and repeated ids yield repeated entities.
func (c *Collection[T]) Ordered() []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]T, 0, len(c.cached))
	for _, id := range c.ids {
		if v, ok := c.cached[id]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Status returns the resolution status of the id in the latest ResolveAll.
func (c *Collection[T]) Status(id string) Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.status[id]
}

// Value returns the observable set of cached entities.
func (c *Collection[T]) Value() *observe.Value[map[string]T] {
	return c.value
}

// Watch returns a channel receiving the cached set and every later change.
func (c *Collection[T]) Watch(ctx context.Context) <-chan map[string]T {
	return c.value.Subscribe(ctx)
}

// ResolveAll fetches every id concurrently and returns without waiting.
//
// The cached set is emptied first and refilled as fetches complete. onEach,
// if not nil, is called once for every successfully hydrated id. A failed id
// is logged and left out of the set without affecting the others. Results of
// an earlier ResolveAll that arrive after this call are discarded.
func (c *Collection[T]) ResolveAll(ctx context.Context, f *Fetcher, onEach func(T)) *Batch {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	ids := slices.Clone(c.ids)
	c.cached = make(map[string]T)
	c.status = make(map[string]Status, len(ids))
	for _, id := range ids {
		c.status[id] = Status{State: Pending}
	}
	c.value.Store(c.cached)
	c.mu.Unlock()

	b := newBatch(len(ids))
	for _, id := range ids {
		go c.resolve(ctx, f, b, gen, id, onEach)
	}
	return b
}

func (c *Collection[T]) resolve(ctx context.Context, f *Fetcher, b *Batch, gen uint64, id string, onEach func(T)) {
	collection := c.Collection()
	doc, err := f.Fetch(ctx, collection, id)

	var v T
	if err == nil {
		v = c.kind.Hydrate(id, doc)
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		f.log.Debug("discarding stale collection result",
			zap.String("collection", collection),
			zap.String("id", id))
		b.finish(Pending, true)
		return
	}
	if err != nil {
		c.status[id] = Status{State: Failed, Err: err}
		c.mu.Unlock()
		f.log.Warn("failed to resolve collection element",
			zap.String("collection", collection),
			zap.String("id", id),
			zap.Error(err))
		b.finish(Failed, false)
		return
	}
	next := maps.Clone(c.cached)
	next[id] = v
	c.cached = next
	c.status[id] = Status{State: Resolved}
	c.value.Store(next)
	c.mu.Unlock()

	if onEach != nil {
		onEach(v)
	}
	b.finish(Resolved, false)
}

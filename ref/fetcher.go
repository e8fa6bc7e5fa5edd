package ref

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nasdf/campus/document"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Fetcher reads documents on behalf of references and collections.
//
// Concurrent reads of the same document share a single store read. The
// number of reads in flight is bounded and every store read has a deadline.
// Waiting for a free slot or a rate limit token is bounded only by the
// caller's context.
type Fetcher struct {
	store       Store
	log         *zap.Logger
	timeout     time.Duration
	concurrency int
	limiter     *rate.Limiter
	sem         *semaphore.Weighted
	group       singleflight.Group
}

// NewFetcher returns a Fetcher reading from the given store.
func NewFetcher(store Store, opts ...Option) *Fetcher {
	f := &Fetcher{
		store:       store,
		log:         zap.NewNop(),
		timeout:     DefaultTimeout,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.sem = semaphore.NewWeighted(int64(f.concurrency))
	return f
}

// Get implements Store.
func (f *Fetcher) Get(ctx context.Context, collection, id string) (document.Document, bool, error) {
	doc, err := f.Fetch(ctx, collection, id)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

// Fetch returns the document in the given collection with the given id.
//
// Missing documents are reported as ErrNotFound. The returned document may be
// shared with other callers and must not be modified.
func (f *Fetcher) Fetch(ctx context.Context, collection, id string) (document.Document, error) {
	if collection == "" {
		return nil, ErrNoCollection
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// the shared read must outlive any single caller
	shared := context.WithoutCancel(ctx)
	ch := f.group.DoChan(collection+"/"+id, func() (any, error) {
		return f.read(shared, collection, id)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(document.Document), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type readResult struct {
	doc   document.Document
	found bool
	err   error
}

// read waits for a concurrency slot and a rate limit token before starting
// the store read. Only the store read itself is bounded by the timeout, and
// the slot is held until the store returns even when the deadline fires first.
func (f *Fetcher) read(ctx context.Context, collection, id string) (document.Document, error) {
	if err := f.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			f.sem.Release(1)
			return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
		}
	}
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	// stores that ignore ctx are still bounded by the deadline
	ch := make(chan readResult, 1)
	go func() {
		defer f.sem.Release(1)
		doc, found, err := f.store.Get(ctx, collection, id)
		ch <- readResult{doc: doc, found: found, err: err}
	}()

	var res readResult
	select {
	case res = <-ch:
	case <-ctx.Done():
		res.err = ctx.Err()
	}
	if res.err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, res.err)
	}
	if !res.found {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, ErrNotFound)
	}
	if res.doc == nil {
		res.doc = document.Document{}
	}
	return res.doc, nil
}

package ref

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nasdf/campus/document"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionResolveAll(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.put("users", "u1", document.Document{"name": "Ana"})
	store.put("users", "u2", document.Document{"name": "Ben"})
	fetcher := NewFetcher(store)

	members := NewCollection(testUsers, "u1", "u2")
	assert.Equal(t, "users", members.Collection())
	assert.Equal(t, Unresolved, members.Status("u1").State)

	var mu sync.Mutex
	var seen []string
	batch := members.ResolveAll(ctx, fetcher, func(u *testUser) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, u.UID())
	})

	result := waitBatch(t, batch)
	assert.Equal(t, BatchResult{Total: 2, Resolved: 2}, result)
	assert.ElementsMatch(t, []string{"u1", "u2"}, seen)

	cached := members.Cached()
	require.Len(t, cached, 2)
	assert.Equal(t, "Ana", cached["u1"].name)
	assert.Equal(t, "Ben", cached["u2"].name)
	assert.Equal(t, Resolved, members.Status("u1").State)

	ordered := members.Ordered()
	require.Len(t, ordered, 2)
	assert.Equal(t, "u1", ordered[0].UID())
	assert.Equal(t, "u2", ordered[1].UID())
}

func TestCollectionPartialFailure(t *testing.T) {
	ctx := context.Background()
	errUnavailable := errors.New("unavailable")
	store := newMemoryStore()
	store.put("users", "a", document.Document{"name": "A"})
	store.fail("users", "b", errUnavailable)
	store.put("users", "c", document.Document{"name": "C"})
	fetcher := NewFetcher(store)

	members := NewCollection(testUsers, "a", "b", "c")
	calls := 0
	var mu sync.Mutex
	result := waitBatch(t, members.ResolveAll(ctx, fetcher, func(*testUser) {
		mu.Lock()
		defer mu.Unlock()
		calls++
	}))

	assert.Equal(t, BatchResult{Total: 3, Resolved: 2, Failed: 1}, result)
	assert.Equal(t, 2, calls)

	_, ok := members.Get("b")
	assert.False(t, ok)
	assert.Len(t, members.Cached(), 2)

	status := members.Status("b")
	assert.Equal(t, Failed, status.State)
	assert.ErrorIs(t, status.Err, errUnavailable)
}

func TestCollectionMissingDocument(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.put("users", "a", document.Document{"name": "A"})
	fetcher := NewFetcher(store)

	members := NewCollection(testUsers, "a", "ghost")
	result := waitBatch(t, members.ResolveAll(ctx, fetcher, nil))

	assert.Equal(t, BatchResult{Total: 2, Resolved: 1, Failed: 1}, result)
	assert.ErrorIs(t, members.Status("ghost").Err, ErrNotFound)
}

func TestCollectionAddDoesNotFetch(t *testing.T) {
	store := newMemoryStore()
	members := NewCollection(testUsers)

	members.Add("u1")
	members.AddAll("u2", "u3")

	assert.Equal(t, []string{"u1", "u2", "u3"}, members.IDs())
	assert.Equal(t, 3, members.Len())
	assert.True(t, members.Contains("u2"))
	assert.Empty(t, members.Cached())
	assert.Equal(t, 0, store.totalReads())
}

func TestCollectionRemoveAndReplace(t *testing.T) {
	members := NewCollection(testUsers, "u1", "u2", "u1")

	assert.Equal(t, 2, members.Remove("u1"))
	assert.Equal(t, 0, members.Remove("u1"))
	assert.Equal(t, []string{"u2"}, members.IDs())

	ids := []string{"u3", "u4"}
	members.Replace(ids)
	ids[0] = "changed"
	assert.Equal(t, []string{"u3", "u4"}, members.IDs())
}

func TestCollectionDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.put("users", "u1", document.Document{"name": "Ana"})
	fetcher := NewFetcher(store)

	members := NewCollection(testUsers, "u1", "u1")
	result := waitBatch(t, members.ResolveAll(ctx, fetcher, nil))

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Resolved)
	assert.Len(t, members.Cached(), 1)
	assert.Len(t, members.Ordered(), 2)
}

func TestCollectionEmptyBatch(t *testing.T) {
	fetcher := NewFetcher(newMemoryStore())
	members := NewCollection(testUsers)

	batch := members.ResolveAll(context.Background(), fetcher, nil)
	select {
	case <-batch.Done():
	default:
		require.FailNow(t, "empty batch should be done")
	}
	assert.Equal(t, BatchResult{}, batch.Wait())
}

func TestCollectionRebuildsCacheOnResolve(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.put("users", "u1", document.Document{"name": "Ana"})
	store.put("users", "u2", document.Document{"name": "Ben"})
	fetcher := NewFetcher(store)

	members := NewCollection(testUsers, "u1", "u2")
	waitBatch(t, members.ResolveAll(ctx, fetcher, nil))
	require.Len(t, members.Cached(), 2)

	members.Remove("u2")
	waitBatch(t, members.ResolveAll(ctx, fetcher, nil))

	cached := members.Cached()
	require.Len(t, cached, 1)
	_, ok := cached["u2"]
	assert.False(t, ok)
}

func TestCollectionDiscardsStaleResults(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.put("users", "slow", document.Document{"name": "Slow"})
	store.put("users", "fast", document.Document{"name": "Fast"})
	store.hold("users", "slow")
	fetcher := NewFetcher(store)

	members := NewCollection(testUsers, "slow")
	first := members.ResolveAll(ctx, fetcher, nil)
	store.waitStarted(t, "users/slow")

	members.Replace([]string{"fast"})
	second := members.ResolveAll(ctx, fetcher, nil)
	assert.Equal(t, BatchResult{Total: 1, Resolved: 1}, waitBatch(t, second))

	store.release()
	assert.Equal(t, BatchResult{Total: 1, Stale: 1}, waitBatch(t, first))

	cached := members.Cached()
	require.Len(t, cached, 1)
	assert.Equal(t, "Fast", cached["fast"].name)
	assert.Equal(t, Unresolved, members.Status("slow").State)
}

func TestCollectionWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := newMemoryStore()
	store.put("users", "u1", document.Document{"name": "Ana"})
	fetcher := NewFetcher(store)

	members := NewCollection(testUsers, "u1")
	updates := members.Watch(ctx)
	assert.Empty(t, <-updates)

	waitBatch(t, members.ResolveAll(ctx, fetcher, nil))

	var last map[string]*testUser
	timeout := time.After(time.Second)
	for len(last) == 0 {
		select {
		case last = <-updates:
		case <-timeout:
			require.FailNow(t, "no update delivered")
		}
	}
	assert.Equal(t, "Ana", last["u1"].name)
}

func TestCollectionReadTimeout(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.put("users", "u1", document.Document{"name": "Ana"})
	store.hold("users", "u1")
	store.ignore = true
	defer store.release()

	fetcher := NewFetcher(store, WithTimeout(50*time.Millisecond))
	members := NewCollection(testUsers, "u1")

	result := waitBatch(t, members.ResolveAll(ctx, fetcher, nil))
	assert.Equal(t, BatchResult{Total: 1, Failed: 1}, result)
	assert.ErrorIs(t, members.Status("u1").Err, context.DeadlineExceeded)
}

func TestCollectionWithoutKind(t *testing.T) {
	fetcher := NewFetcher(newMemoryStore())
	members := NewCollection[*testUser](nil, "u1")

	result := waitBatch(t, members.ResolveAll(context.Background(), fetcher, nil))
	assert.Equal(t, BatchResult{Total: 1, Failed: 1}, result)
	assert.ErrorIs(t, members.Status("u1").Err, ErrNoCollection)
}

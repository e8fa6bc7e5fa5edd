package ref

import "sync"

// BatchResult counts the outcomes of a single ResolveAll call.
type BatchResult struct {
	// Total is the number of ids in the snapshot.
	Total int
	// Resolved is the number of ids hydrated and cached.
	Resolved int
	// Failed is the number of ids that could not be fetched.
	Failed int
	// Stale is the number of results discarded because a newer ResolveAll started.
	Stale int
}

// Batch tracks the fetches started by a single ResolveAll call.
type Batch struct {
	mu      sync.Mutex
	result  BatchResult
	pending int
	done    chan struct{}
}

func newBatch(total int) *Batch {
	b := &Batch{
		result:  BatchResult{Total: total},
		pending: total,
		done:    make(chan struct{}),
	}
	if total == 0 {
		close(b.done)
	}
	return b
}

// Done returns a channel that is closed once every fetch of the batch has completed.
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// Wait blocks until every fetch of the batch has completed and returns the result.
func (b *Batch) Wait() BatchResult {
	<-b.done
	return b.Result()
}

// Result returns the outcomes recorded so far.
func (b *Batch) Result() BatchResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.result
}

func (b *Batch) finish(state State, stale bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case stale:
		b.result.Stale++
	case state == Resolved:
		b.result.Resolved++
	default:
		b.result.Failed++
	}
	b.pending--
	if b.pending == 0 {
		close(b.done)
	}
}

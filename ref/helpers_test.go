package ref

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nasdf/campus/document"

	"github.com/stretchr/testify/require"
)

type testUser struct {
	id   string
	name string
}

func (u *testUser) UID() string {
	return u.id
}

var testUsers = &Kind[*testUser]{
	Collection: "users",
	Hydrate: func(id string, doc document.Document) *testUser {
		return &testUser{id: id, name: doc.String("name")}
	},
	Serialize: func(u *testUser) document.Document {
		return document.Document{"name": u.name}
	},
}

// memoryStore is a Store that counts reads and can hold reads of selected ids.
type memoryStore struct {
	mu       sync.Mutex
	docs     map[string]document.Document
	errs     map[string]error
	reads    map[string]int
	inFlight int
	maxIn    int
	gated    map[string]bool
	gate     chan struct{}
	started  chan string
	ignore   bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		docs:    make(map[string]document.Document),
		errs:    make(map[string]error),
		reads:   make(map[string]int),
		gated:   make(map[string]bool),
		gate:    make(chan struct{}),
		started: make(chan string, 256),
	}
}

func (s *memoryStore) put(collection, id string, doc document.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[collection+"/"+id] = doc
}

func (s *memoryStore) fail(collection, id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.errs[collection+"/"+id] = err
}

// hold blocks reads of the given id until release is called.
func (s *memoryStore) hold(collection, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gated[collection+"/"+id] = true
}

func (s *memoryStore) release() {
	close(s.gate)
}

func (s *memoryStore) Get(ctx context.Context, collection, id string) (document.Document, bool, error) {
	key := collection + "/" + id

	s.mu.Lock()
	s.reads[key]++
	s.inFlight++
	if s.inFlight > s.maxIn {
		s.maxIn = s.inFlight
	}
	gated := s.gated[key]
	ignore := s.ignore
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	select {
	case s.started <- key:
	default:
	}
	if gated {
		if ignore {
			<-s.gate
		} else {
			select {
			case <-s.gate:
			case <-ctx.Done():
				return nil, false, ctx.Err()
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.errs[key]; ok {
		return nil, false, err
	}
	doc, ok := s.docs[key]
	return doc, ok, nil
}

func (s *memoryStore) Set(ctx context.Context, collection, id string, doc document.Document) error {
	s.put(collection, id, doc)
	return nil
}

func (s *memoryStore) readCount(collection, id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.reads[collection+"/"+id]
}

func (s *memoryStore) totalReads() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, n := range s.reads {
		total += n
	}
	return total
}

func (s *memoryStore) maxInFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.maxIn
}

// waitStarted blocks until a read of the given key has started.
func (s *memoryStore) waitStarted(t *testing.T, key string) {
	t.Helper()
	timeout := time.After(time.Second)
	for {
		select {
		case started := <-s.started:
			if started == key {
				return
			}
		case <-timeout:
			require.FailNow(t, "read did not start", key)
		}
	}
}

func waitBatch(t *testing.T, b *Batch) BatchResult {
	t.Helper()
	select {
	case <-b.Done():
		return b.Wait()
	case <-time.After(2 * time.Second):
		require.FailNow(t, "batch did not complete")
	}
	return BatchResult{}
}

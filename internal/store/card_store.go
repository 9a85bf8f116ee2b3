package store

import (
	"sort"
	"sync"

	"github.com/amterp/qrcard/internal/model"
)

// MemoryCardStore implements CardStore in process memory.
// State resets to whatever it was constructed with on every launch.
type MemoryCardStore struct {
	commitMu sync.Mutex   // Serializes commits so notifications arrive in commit order
	mu       sync.RWMutex // Protects current
	current  model.Collection

	subMu   sync.Mutex
	subs    map[int]Subscriber
	nextSub int
}

// NewCardStore creates a store holding the given initial snapshot.
func NewCardStore(initial model.Collection) *MemoryCardStore {
	return &MemoryCardStore{
		current: initial.Clone(),
		subs:    make(map[int]Subscriber),
	}
}

// Snapshot returns a copy of the current collection.
func (s *MemoryCardStore) Snapshot() model.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Commit applies fn to the current snapshot and replaces it with the result.
// If fn fails the current snapshot is left untouched and nobody is notified.
func (s *MemoryCardStore) Commit(op string, fn Transition) (model.Collection, error) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	next, err := fn(s.Snapshot())
	if err != nil {
		return model.Collection{}, err
	}

	s.mu.Lock()
	s.current = next.Clone()
	s.mu.Unlock()

	s.notify(Change{Op: op, Collection: next.Clone()})
	return next, nil
}

// Reset replaces the snapshot wholesale, e.g. after loading a seed.
func (s *MemoryCardStore) Reset(collection model.Collection) {
	_, _ = s.Commit("reset", func(model.Collection) (model.Collection, error) {
		return collection.Clone(), nil
	})
}

// Subscribe registers sub for change notifications.
// The returned function removes the subscription and is safe to call twice.
func (s *MemoryCardStore) Subscribe(sub Subscriber) func() {
	s.subMu.Lock()
	key := s.nextSub
	s.nextSub++
	s.subs[key] = sub
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, key)
		s.subMu.Unlock()
	}
}

// SubscriberCount returns the number of active subscriptions.
func (s *MemoryCardStore) SubscriberCount() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subs)
}

func (s *MemoryCardStore) notify(change Change) {
	s.subMu.Lock()
	keys := make([]int, 0, len(s.subs))
	for k := range s.subs {
		keys = append(keys, k)
	}
	sort.Ints(keys) // Deliver in subscription order
	subs := make([]Subscriber, len(keys))
	for i, k := range keys {
		subs[i] = s.subs[k]
	}
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.OnChange(change)
	}
}

var _ CardStore = (*MemoryCardStore)(nil)

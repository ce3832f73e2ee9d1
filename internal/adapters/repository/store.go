// Package repository keeps per-browser sessions in memory.
package repository

import (
	"container/list"
	"context"
	"sync"

	"github.com/okian/neighborhoods/pkg/metrics"
)

const defaultMaxSize = 1_000

// Store provides keyed access to session values.
type Store[V any] interface {
	// Get returns the value for id and marks it recently used.
	Get(ctx context.Context, id string) (V, bool)

	// GetOrCreate returns the value for id, creating it with create when
	// absent. created reports whether create ran.
	GetOrCreate(ctx context.Context, id string, create func() V) (v V, created bool)

	// Delete drops id. Unknown ids are ignored.
	Delete(ctx context.Context, id string)

	// Len returns the number of stored values.
	Len(ctx context.Context) int
}

type entry[V any] struct {
	id    string
	value V
}

// MemoryStore is a bounded Store evicting the least recently used value.
type MemoryStore[V any] struct {
	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List // front = most recently used
	maxSize int
	onEvict func(id string, v V)
}

// NewMemoryStore creates an empty store.
func NewMemoryStore[V any](opts ...Option[V]) *MemoryStore[V] {
	s := &MemoryStore[V]{
		items:   make(map[string]*list.Element),
		order:   list.New(),
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get implements Store.
func (s *MemoryStore[V]) Get(_ context.Context, id string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[id]
	if !ok {
		var zero V
		return zero, false
	}
	s.order.MoveToFront(el)
	return el.Value.(*entry[V]).value, true
}

// GetOrCreate implements Store.
func (s *MemoryStore[V]) GetOrCreate(_ context.Context, id string, create func() V) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[id]; ok {
		s.order.MoveToFront(el)
		return el.Value.(*entry[V]).value, false
	}

	for s.maxSize > 0 && s.order.Len() >= s.maxSize {
		s.evictOldest()
	}

	v := create()
	s.items[id] = s.order.PushFront(&entry[V]{id: id, value: v})
	metrics.UpdateActiveSessions(s.order.Len())
	return v, true
}

// Delete implements Store.
func (s *MemoryStore[V]) Delete(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[id]; ok {
		s.order.Remove(el)
		delete(s.items, id)
		metrics.UpdateActiveSessions(s.order.Len())
	}
}

// Len implements Store.
func (s *MemoryStore[V]) Len(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// evictOldest drops the tail. Caller holds s.mu.
func (s *MemoryStore[V]) evictOldest() {
	el := s.order.Back()
	if el == nil {
		return
	}
	e := el.Value.(*entry[V])
	s.order.Remove(el)
	delete(s.items, e.id)
	if s.onEvict != nil {
		s.onEvict(e.id, e.value)
	}
}

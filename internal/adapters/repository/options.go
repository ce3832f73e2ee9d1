package repository

// Option applies a configuration option to the MemoryStore.
type Option[V any] func(*MemoryStore[V])

// WithMaxSize caps the number of stored values. Zero or less means unbounded.
func WithMaxSize[V any](n int) Option[V] {
	return func(s *MemoryStore[V]) {
		s.maxSize = n
	}
}

// WithOnEvict registers a callback run, under the store lock, for each
// evicted value.
func WithOnEvict[V any](fn func(id string, v V)) Option[V] {
	return func(s *MemoryStore[V]) {
		s.onEvict = fn
	}
}

// Package dataloader provides a request-scoped, batching cache for
// resolver lookups. Loads issued while a batch window is open are
// coalesced into one bulk fetch; repeated loads of a key within one
// request resolve from the cache without refetching.
package dataloader

import (
	"sync"
	"time"
)

// Config captures the creation parameters of a Loader.
type Config[K comparable, V any] struct {
	// Fetch resolves the ordered, de-duplicated key set of one batch.
	// It must return one value per key in key order. Legitimately
	// absent rows are zero values; a short error slice fails every
	// key in the batch uniformly.
	Fetch func(keys []K) ([]V, []error)

	// Wait is how long to keep a batch open for more keys.
	Wait time.Duration

	// MaxBatch closes a batch early once this many keys queued.
	// Zero means unbounded.
	MaxBatch int

	// Hooks observe batching behavior, typically for metrics.
	Hooks Hooks
}

// Hooks receive loader lifecycle notifications.
type Hooks struct {
	OnBatch    func(keys int)
	OnCacheHit func()
}

// New creates a Loader given a fetch, wait and max batch size.
func New[K comparable, V any](cfg Config[K, V]) *Loader[K, V] {
	return &Loader[K, V]{
		fetch:    cfg.Fetch,
		wait:     cfg.Wait,
		maxBatch: cfg.MaxBatch,
		hooks:    cfg.Hooks,
	}
}

// Loader batches and caches lookups per request. Instances must not
// be shared across requests; build them from the request context.
type Loader[K comparable, V any] struct {
	fetch    func(keys []K) ([]V, []error)
	wait     time.Duration
	maxBatch int
	hooks    Hooks

	cache map[K]V
	batch *loaderBatch[K, V]
	mu    sync.Mutex
}

type loaderBatch[K comparable, V any] struct {
	keys    []K
	data    []V
	errors  []error
	closing bool
	done    chan struct{}
}

// Load fetches the value for a key, batching and caching applied.
func (l *Loader[K, V]) Load(key K) (V, error) {
	return l.LoadThunk(key)()
}

// LoadThunk queues the key and returns a function that blocks until
// the batch resolves. Use it to queue many keys before yielding.
func (l *Loader[K, V]) LoadThunk(key K) func() (V, error) {
	l.mu.Lock()
	if value, ok := l.cache[key]; ok {
		l.mu.Unlock()
		if l.hooks.OnCacheHit != nil {
			l.hooks.OnCacheHit()
		}
		return func() (V, error) { return value, nil }
	}
	if l.batch == nil {
		l.batch = &loaderBatch[K, V]{done: make(chan struct{})}
	}
	batch := l.batch
	pos := batch.keyIndex(l, key)
	l.mu.Unlock()

	return func() (V, error) {
		<-batch.done

		var value V
		if pos < len(batch.data) {
			value = batch.data[pos]
		}

		var err error
		// A single error means the whole batch failed the same way.
		if len(batch.errors) == 1 {
			err = batch.errors[0]
		} else if batch.errors != nil {
			err = batch.errors[pos]
		}

		if err == nil {
			l.mu.Lock()
			l.unsafeSet(key, value)
			l.mu.Unlock()
		}

		return value, err
	}
}

// LoadAll fetches many keys at once, preserving input order.
func (l *Loader[K, V]) LoadAll(keys []K) ([]V, []error) {
	return l.LoadAllThunk(keys)()
}

// LoadAllThunk queues all keys and returns a blocking resolver.
func (l *Loader[K, V]) LoadAllThunk(keys []K) func() ([]V, []error) {
	thunks := make([]func() (V, error), len(keys))
	for i, key := range keys {
		thunks[i] = l.LoadThunk(key)
	}
	return func() ([]V, []error) {
		values := make([]V, len(keys))
		errors := make([]error, len(keys))
		for i, thunk := range thunks {
			values[i], errors[i] = thunk()
		}
		return values, errors
	}
}

// Prime the cache with the provided key and value. If the key already
// exists, no change is made. (To forcefully prime, Clear the key first.)
func (l *Loader[K, V]) Prime(key K, value V) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.cache[key]; ok {
		return false
	}
	l.unsafeSet(key, value)
	return true
}

// Clear removes the value at key from the cache, if it exists.
func (l *Loader[K, V]) Clear(key K) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, key)
}

func (l *Loader[K, V]) unsafeSet(key K, value V) {
	if l.cache == nil {
		l.cache = map[K]V{}
	}
	l.cache[key] = value
}

// keyIndex returns the location of the key in the batch, adding it if
// not already present. Caller must hold the loader mutex.
func (b *loaderBatch[K, V]) keyIndex(l *Loader[K, V], key K) int {
	for i, existing := range b.keys {
		if existing == key {
			return i
		}
	}

	pos := len(b.keys)
	b.keys = append(b.keys, key)
	if pos == 0 {
		go b.startTimer(l)
	}

	if l.maxBatch != 0 && pos >= l.maxBatch-1 {
		if !b.closing {
			b.closing = true
			l.batch = nil
			go b.end(l)
		}
	}

	return pos
}

func (b *loaderBatch[K, V]) startTimer(l *Loader[K, V]) {
	time.Sleep(l.wait)
	l.mu.Lock()

	// Batch already closed by max batch size.
	if b.closing {
		l.mu.Unlock()
		return
	}

	l.batch = nil
	l.mu.Unlock()

	b.end(l)
}

func (b *loaderBatch[K, V]) end(l *Loader[K, V]) {
	if l.hooks.OnBatch != nil {
		l.hooks.OnBatch(len(b.keys))
	}
	b.data, b.errors = l.fetch(b.keys)
	close(b.done)
}

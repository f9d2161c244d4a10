// Package dedupe remembers client idempotency keys so retried requests resolve
// to the result of the first attempt.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 10_000

// Deduper maps idempotency keys to the value produced for them.
type Deduper interface {
	// SeenAndRecord atomically checks key and records value for it if absent.
	// When key was already recorded it returns the stored value and true;
	// otherwise it stores value and returns value and false.
	SeenAndRecord(ctx context.Context, key, value string) (string, bool)

	// Unrecord forgets key, e.g. when the operation it guarded failed.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

type entry struct {
	key   string
	value string
}

// inMemoryDeduper keeps keys in insertion order and evicts the oldest one
// when maxSize is reached. maxSize <= 0 keeps every key.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List // front = oldest
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
		seen:    make(map[string]*list.Element),
		order:   list.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key, value string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		return el.Value.(*entry).value, true
	}

	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}

	d.seen[key] = d.order.PushBack(&entry{key: key, value: value})
	d.size.Add(1)
	return value, false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		d.order.Remove(el)
		delete(d.seen, key)
		d.size.Add(-1)
	}
}

// evictOldest drops the front of the list. Caller holds d.mu.
func (d *inMemoryDeduper) evictOldest() {
	front := d.order.Front()
	if front == nil {
		return
	}
	d.order.Remove(front)
	delete(d.seen, front.Value.(*entry).key)
	d.size.Add(-1)
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

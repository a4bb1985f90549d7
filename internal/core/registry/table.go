package registry

import (
	"errors"
	"fmt"
	"iter"
)

// DefaultCapacity is the bucket count used when a caller passes a non-positive capacity.
const DefaultCapacity = 26

// ErrDuplicateKey is returned by Insert when the key is already stored.
var ErrDuplicateKey = errors.New("duplicate key")

// Hasher maps a key to a bucket seed. The table reduces it modulo capacity.
type Hasher[K comparable] func(K) uint64

// StringSum hashes a string as the sum of its byte values.
// Weak on purpose: anagrams collide. Any consistent hash may replace it.
func StringSum(s string) uint64 {
	var sum uint64
	for i := 0; i < len(s); i++ {
		sum += uint64(s[i])
	}
	return sum
}

type node[K comparable, V any] struct {
	key   K
	value V
	next  *node[K, V]
}

// Table is a separate-chaining hash map with a fixed bucket count.
// New entries are prepended to their chain, so a bucket iterates newest first.
// Not safe for concurrent mutation; owners serialize access.
type Table[K comparable, V any] struct {
	buckets []*node[K, V]
	hash    Hasher[K]
	size    int
}

// New creates an empty table with capacity buckets.
func New[K comparable, V any](capacity int, hash Hasher[K]) *Table[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if hash == nil {
		panic("registry: New: nil hasher")
	}
	return &Table[K, V]{
		buckets: make([]*node[K, V], capacity),
		hash:    hash,
	}
}

// NewStrings creates a string-keyed table using StringSum.
func NewStrings[V any](capacity int) *Table[string, V] {
	return New[string, V](capacity, StringSum)
}

func (t *Table[K, V]) index(key K) int {
	return int(t.hash(key) % uint64(len(t.buckets)))
}

// Insert stores value under key. Fails with ErrDuplicateKey if key is present.
func (t *Table[K, V]) Insert(key K, value V) error {
	idx := t.index(key)
	for n := t.buckets[idx]; n != nil; n = n.next {
		if n.key == key {
			return fmt.Errorf("insert %v: %w", key, ErrDuplicateKey)
		}
	}
	t.buckets[idx] = &node[K, V]{key: key, value: value, next: t.buckets[idx]}
	t.size++
	return nil
}

// Find returns the value stored under key.
func (t *Table[K, V]) Find(key K) (V, bool) {
	for n := t.buckets[t.index(key)]; n != nil; n = n.next {
		if n.key == key {
			return n.value, true
		}
	}
	var zero V
	return zero, false
}

// Contains reports whether key is stored.
func (t *Table[K, V]) Contains(key K) bool {
	_, ok := t.Find(key)
	return ok
}

// Erase removes key. Returns false (and leaves the table untouched) if absent.
func (t *Table[K, V]) Erase(key K) bool {
	idx := t.index(key)
	var prev *node[K, V]
	for n := t.buckets[idx]; n != nil; n = n.next {
		if n.key == key {
			if prev == nil {
				t.buckets[idx] = n.next
			} else {
				prev.next = n.next
			}
			n.next = nil
			t.size--
			return true
		}
		prev = n
	}
	return false
}

// Len returns the number of live entries.
func (t *Table[K, V]) Len() int {
	return t.size
}

// Capacity returns the fixed bucket count.
func (t *Table[K, V]) Capacity() int {
	return len(t.buckets)
}

// Clear drops every entry.
func (t *Table[K, V]) Clear() {
	for i := range t.buckets {
		t.buckets[i] = nil
	}
	t.size = 0
}

// All yields entries in bucket order, then chain order.
func (t *Table[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, head := range t.buckets {
			for n := head; n != nil; n = n.next {
				if !yield(n.key, n.value) {
					return
				}
			}
		}
	}
}

// Keys returns every key in iteration order.
func (t *Table[K, V]) Keys() []K {
	keys := make([]K, 0, t.size)
	for k := range t.All() {
		keys = append(keys, k)
	}
	return keys
}

// Values returns every value in iteration order.
func (t *Table[K, V]) Values() []V {
	values := make([]V, 0, t.size)
	for _, v := range t.All() {
		values = append(values, v)
	}
	return values
}

// Iterator returns a cursor positioned before the first entry.
func (t *Table[K, V]) Iterator() *Iterator[K, V] {
	return &Iterator[K, V]{table: t, bucket: -1}
}

// Iterator walks a Table once. After Next returns false it stays exhausted
// until Reset is called. Mutating the table mid-walk is not supported.
type Iterator[K comparable, V any] struct {
	table  *Table[K, V]
	bucket int
	cur    *node[K, V]
	done   bool
}

// Next advances to the next entry and reports whether one exists.
func (it *Iterator[K, V]) Next() bool {
	if it.done {
		return false
	}
	if it.cur != nil {
		it.cur = it.cur.next
	}
	for it.cur == nil {
		it.bucket++
		if it.bucket >= len(it.table.buckets) {
			it.done = true
			return false
		}
		it.cur = it.table.buckets[it.bucket]
	}
	return true
}

// Key returns the current entry's key. Only valid after Next returned true.
func (it *Iterator[K, V]) Key() K { return it.cur.key }

// Value returns the current entry's value. Only valid after Next returned true.
func (it *Iterator[K, V]) Value() V { return it.cur.value }

// Reset rewinds the iterator to the start.
func (it *Iterator[K, V]) Reset() {
	it.bucket = -1
	it.cur = nil
	it.done = false
}

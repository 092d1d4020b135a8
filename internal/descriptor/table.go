// Package descriptor implements the smallest-free-id allocation table
// backing every kind of numbered handle this host exposes to the guest
// (today, just file descriptors, but the type is generic the way the
// teacher's internal/descriptor package is).
//
// Grounded on the teacher's internal/descriptor.Table contract, recovered
// from its behavioral test (table_test.go): Insert/InsertAt/Lookup/Delete/
// Range/Len/Reset, smallest-free-id allocation, InsertAt rejecting negative
// ids. The teacher tracked occupancy with a hand-rolled []uint64 bitmask
// slice; this reimplementation uses github.com/willf/bitset (ground:
// pgavlin-warp's go.mod) instead of hand-rolling the same thing again.
package descriptor

import (
	"sync"

	"github.com/willf/bitset"
)

// id is the constraint satisfied by descriptor key types: small signed or
// unsigned integers used as dense array-like indices.
type id interface {
	~int32 | ~int | ~uint32
}

// Table maps non-negative integer ids to values, allocating the smallest
// id not currently in use. A zero-value Table is ready to use.
//
// Table is safe for concurrent use: Lookup/Range never block each other,
// and every mutation (Insert/InsertAt/Delete/Reset) is serialized under a
// single RWMutex. The lock covers the whole table, not individual keys, so
// a mutation waits for in-flight readers even when they touch other ids.
type Table[K id, V any] struct {
	mu    sync.RWMutex
	used  *bitset.BitSet
	items map[K]V
}

// Len returns the number of entries currently in the table.
func (t *Table[K, V]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}

// Insert allocates the smallest id not currently in use and stores value
// there, returning the id allocated. ok is always true for Insert; the
// signature matches InsertAt for symmetry with the teacher's API.
func (t *Table[K, V]) Insert(value V) (K, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensure()
	next, ok := t.used.NextClear(0)
	if !ok {
		next = t.used.Len()
	}
	t.used.Set(next)
	k := K(next)
	if t.items == nil {
		t.items = make(map[K]V)
	}
	t.items[k] = value
	return k, true
}

// InsertAt stores value at exactly id, overwriting any existing entry
// there. It fails (ok=false) only if id is negative.
func (t *Table[K, V]) InsertAt(value V, id K) bool {
	if id < 0 {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensure()
	t.used.Set(uint(id))
	if t.items == nil {
		t.items = make(map[K]V)
	}
	t.items[id] = value
	return true
}

// Lookup returns the value stored at id, if any.
func (t *Table[K, V]) Lookup(id K) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.items[id]
	return v, ok
}

// Delete removes the entry at id, if any. It is a no-op if id is absent.
func (t *Table[K, V]) Delete(id K) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.used != nil {
		t.used.Clear(uint(id))
	}
	delete(t.items, id)
}

// Range calls fn for every entry in the table, in unspecified order,
// stopping early if fn returns false. Range observes a consistent snapshot
// of the key set taken under lock, but concurrent mutations may still race
// with it per spec.md §4.1.
func (t *Table[K, V]) Range(fn func(K, V) bool) {
	t.mu.RLock()
	snapshot := make(map[K]V, len(t.items))
	for k, v := range t.items {
		snapshot[k] = v
	}
	t.mu.RUnlock()

	for k, v := range snapshot {
		if !fn(k, v) {
			return
		}
	}
}

// Reset clears the table, releasing all entries.
func (t *Table[K, V]) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.used = nil
	t.items = nil
}

func (t *Table[K, V]) ensure() {
	if t.used == nil {
		t.used = bitset.New(64)
	}
}

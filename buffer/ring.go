/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package buffer provides the fixed-capacity circular FIFO backing each
// chart series. Logical index 0 is always the oldest element, Len()-1 the
// newest. Removal happens only at the logical front; a full buffer evicts
// its oldest element to make room for a new one.
//
// Anticipated conditions (empty buffer, clamped ranges) are reported through
// ok-flag returns. Out-of-range indexed access and non-positive capacities
// are programmer errors and panic.
package buffer

import "fmt"

// RingBuffer is a fixed-capacity circular FIFO. The zero value is not
// usable; create instances with New. Not safe for concurrent use.
type RingBuffer[T any] struct {
	data         []T
	head         int
	length       int
	totalAdded   uint64
	totalEvicted uint64
}

// New creates a ring buffer with the given capacity.
// Panics if capacity is not positive.
func New[T any](capacity int) *RingBuffer[T] {
	if capacity <= 0 {
		panic(fmt.Sprintf("buffer: capacity must be positive, got %d", capacity))
	}
	return &RingBuffer[T]{data: make([]T, capacity)}
}

// physical maps a logical index to a slot in the backing array.
func (b *RingBuffer[T]) physical(i int) int {
	return (b.head + i) % len(b.data)
}

func (b *RingBuffer[T]) checkIndex(i int) {
	if i < 0 || i >= b.length {
		panic(fmt.Sprintf("buffer: index %d out of range [0,%d)", i, b.length))
	}
}

// Len returns the number of buffered elements.
func (b *RingBuffer[T]) Len() int { return b.length }

// Cap returns the fixed capacity.
func (b *RingBuffer[T]) Cap() int { return len(b.data) }

// IsEmpty reports whether the buffer holds no elements.
func (b *RingBuffer[T]) IsEmpty() bool { return b.length == 0 }

// IsFull reports whether the buffer is at capacity.
func (b *RingBuffer[T]) IsFull() bool { return b.length == len(b.data) }

// Available returns the remaining free slots.
func (b *RingBuffer[T]) Available() int { return len(b.data) - b.length }

// TotalAdded returns the lifetime count of inserted elements.
func (b *RingBuffer[T]) TotalAdded() uint64 { return b.totalAdded }

// TotalEvicted returns the lifetime count of elements removed from the front,
// whether by capacity pressure or explicit front removal.
func (b *RingBuffer[T]) TotalEvicted() uint64 { return b.totalEvicted }

// Add inserts item at the newest end. If the buffer is full the oldest
// element is evicted first and returned with ok=true.
func (b *RingBuffer[T]) Add(item T) (evicted T, ok bool) {
	if b.IsFull() {
		evicted, ok = b.RemoveFirst()
	}
	b.data[b.physical(b.length)] = item
	b.length++
	b.totalAdded++
	return evicted, ok
}

// AddAll inserts items in order and returns the evicted elements in aging
// order (oldest first).
func (b *RingBuffer[T]) AddAll(items []T) []T {
	var evicted []T
	for _, item := range items {
		if e, ok := b.Add(item); ok {
			evicted = append(evicted, e)
		}
	}
	return evicted
}

// At returns the element at logical index i. Panics if out of range.
func (b *RingBuffer[T]) At(i int) T {
	b.checkIndex(i)
	return b.data[b.physical(i)]
}

// First returns the oldest element. Panics if empty.
func (b *RingBuffer[T]) First() T {
	if b.IsEmpty() {
		panic("buffer: First on empty buffer")
	}
	return b.data[b.head]
}

// Last returns the newest element. Panics if empty.
func (b *RingBuffer[T]) Last() T {
	if b.IsEmpty() {
		panic("buffer: Last on empty buffer")
	}
	return b.data[b.physical(b.length-1)]
}

// FirstOK returns the oldest element, or ok=false if empty.
func (b *RingBuffer[T]) FirstOK() (item T, ok bool) {
	if b.IsEmpty() {
		return item, false
	}
	return b.data[b.head], true
}

// LastOK returns the newest element, or ok=false if empty.
func (b *RingBuffer[T]) LastOK() (item T, ok bool) {
	if b.IsEmpty() {
		return item, false
	}
	return b.data[b.physical(b.length-1)], true
}

// FromEnd returns the element n positions before the newest one, so
// FromEnd(0) is the newest element. Panics if out of range.
func (b *RingBuffer[T]) FromEnd(n int) T {
	return b.At(b.length - 1 - n)
}

// Range returns a copy of the elements in [start, end). Both bounds are
// clamped to the valid range, so a degenerate request yields an empty slice.
func (b *RingBuffer[T]) Range(start, end int) []T {
	if start < 0 {
		start = 0
	}
	if end > b.length {
		end = b.length
	}
	if start >= end {
		return nil
	}
	out := make([]T, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, b.data[b.physical(i)])
	}
	return out
}

// FirstN returns a copy of the oldest n elements, clamped to Len().
func (b *RingBuffer[T]) FirstN(n int) []T {
	return b.Range(0, n)
}

// LastN returns a copy of the newest n elements, clamped to Len().
func (b *RingBuffer[T]) LastN(n int) []T {
	return b.Range(b.length-n, b.length)
}

// IndexWhere returns the logical index of the first element matching pred,
// or -1 if none does. Linear scan.
func (b *RingBuffer[T]) IndexWhere(pred func(T) bool) int {
	for i := 0; i < b.length; i++ {
		if pred(b.data[b.physical(i)]) {
			return i
		}
	}
	return -1
}

// LastIndexWhere returns the logical index of the last element matching
// pred, or -1 if none does. Linear scan from the newest end.
func (b *RingBuffer[T]) LastIndexWhere(pred func(T) bool) int {
	for i := b.length - 1; i >= 0; i-- {
		if pred(b.data[b.physical(i)]) {
			return i
		}
	}
	return -1
}

// BinarySearch looks for target in a buffer the caller keeps sorted
// ascending under cmp. If found, a non-negative index is returned. If not,
// the result is a negative value v such that -(v+1) is the index at which
// target would have to be inserted to keep the buffer sorted.
func (b *RingBuffer[T]) BinarySearch(target T, cmp func(a, c T) int) int {
	lo, hi := 0, b.length
	for lo < hi {
		mid := (lo + hi) / 2
		switch c := cmp(b.data[b.physical(mid)], target); {
		case c == 0:
			return mid
		case c < 0:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return -(lo + 1)
}

// LowerBound returns the smallest logical index whose element is not less
// than target under cmp, i.e. the sorted insertion point. Returns Len() when
// every element is smaller.
func (b *RingBuffer[T]) LowerBound(target T, cmp func(a, c T) int) int {
	lo, hi := 0, b.length
	for lo < hi {
		mid := (lo + hi) / 2
		if cmp(b.data[b.physical(mid)], target) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// RemoveFirst removes and returns the oldest element, or ok=false if empty.
// Counts as an eviction.
func (b *RingBuffer[T]) RemoveFirst() (item T, ok bool) {
	if b.IsEmpty() {
		return item, false
	}
	item = b.data[b.head]
	var zero T
	b.data[b.head] = zero
	b.head = (b.head + 1) % len(b.data)
	b.length--
	b.totalEvicted++
	return item, true
}

// RemoveFirstN removes up to n oldest elements and returns how many were
// actually removed.
func (b *RingBuffer[T]) RemoveFirstN(n int) int {
	removed := 0
	for removed < n {
		if _, ok := b.RemoveFirst(); !ok {
			break
		}
		removed++
	}
	return removed
}

// RemoveWhile removes oldest elements while pred holds, stopping at the
// first non-match. Returns the removed count.
func (b *RingBuffer[T]) RemoveWhile(pred func(T) bool) int {
	removed := 0
	for !b.IsEmpty() && pred(b.data[b.head]) {
		b.RemoveFirst()
		removed++
	}
	return removed
}

// ReplaceAt overwrites the element at logical index i in place. Eviction
// counters are unchanged. Panics if out of range.
func (b *RingBuffer[T]) ReplaceAt(i int, item T) {
	b.checkIndex(i)
	b.data[b.physical(i)] = item
}

// ReplaceLast overwrites the newest element in place. Panics if empty.
func (b *RingBuffer[T]) ReplaceLast(item T) {
	if b.IsEmpty() {
		panic("buffer: ReplaceLast on empty buffer")
	}
	b.data[b.physical(b.length-1)] = item
}

// InsertAt inserts item so it ends up at logical index i, shifting newer
// elements back by one. O(n). If the buffer is full the oldest element is
// evicted first (and i is interpreted against the post-eviction indices).
// Panics if i is outside [0, Len()].
func (b *RingBuffer[T]) InsertAt(i int, item T) (evicted T, ok bool) {
	if i < 0 || i > b.length {
		panic(fmt.Sprintf("buffer: insert index %d out of range [0,%d]", i, b.length))
	}
	if b.IsFull() {
		evicted, ok = b.RemoveFirst()
		if i > 0 {
			i--
		}
	}
	for j := b.length; j > i; j-- {
		b.data[b.physical(j)] = b.data[b.physical(j-1)]
	}
	b.data[b.physical(i)] = item
	b.length++
	b.totalAdded++
	return evicted, ok
}

// CompactPrefix replaces the oldest n elements with a shorter replacement
// run, preserving everything newer. The net shrinkage counts as evictions;
// TotalAdded is unchanged since replacement elements stand in for stored
// ones. Panics if n is out of range or the replacement is longer than n.
func (b *RingBuffer[T]) CompactPrefix(n int, replacement []T) int {
	if n < 0 || n > b.length {
		panic(fmt.Sprintf("buffer: compact prefix %d out of range [0,%d]", n, b.length))
	}
	if len(replacement) > n {
		panic(fmt.Sprintf("buffer: replacement length %d exceeds compacted prefix %d", len(replacement), n))
	}
	rest := b.Range(n, b.length)
	removed := n - len(replacement)

	var zero T
	for i := range b.data {
		b.data[i] = zero
	}
	b.head = 0
	copy(b.data, replacement)
	copy(b.data[len(replacement):], rest)
	b.length = len(replacement) + len(rest)
	b.totalEvicted += uint64(removed)
	return removed
}

// Resized returns a new buffer with the given capacity holding the newest
// min(Len(), newCapacity) elements. Lifetime counters carry forward; any
// elements dropped by shrinking count as evictions. Panics if newCapacity
// is not positive.
func (b *RingBuffer[T]) Resized(newCapacity int) *RingBuffer[T] {
	if newCapacity <= 0 {
		panic(fmt.Sprintf("buffer: capacity must be positive, got %d", newCapacity))
	}
	out := New[T](newCapacity)
	keep := b.length
	if keep > newCapacity {
		keep = newCapacity
	}
	for i, item := range b.LastN(keep) {
		out.data[i] = item
	}
	out.length = keep
	out.totalAdded = b.totalAdded
	out.totalEvicted = b.totalEvicted + uint64(b.length-keep)
	return out
}

// ToSlice returns a snapshot copy of the contents, oldest first.
func (b *RingBuffer[T]) ToSlice() []T {
	return b.Range(0, b.length)
}

// Clear removes every element from the front. Returns the removed count.
func (b *RingBuffer[T]) Clear() int {
	return b.RemoveFirstN(b.length)
}

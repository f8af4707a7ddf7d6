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

package buffer

// View is a zero-copy read-only projection of a ring buffer. It is live:
// mutations made through the underlying buffer are visible through the view.
// A View exposes no mutating methods, so consumers cannot alter the buffer.
type View[T any] struct {
	b *RingBuffer[T]
}

// View returns a live read-only projection of the buffer.
func (b *RingBuffer[T]) View() View[T] {
	return View[T]{b: b}
}

// Len returns the current number of buffered elements.
func (v View[T]) Len() int { return v.b.Len() }

// Cap returns the buffer capacity.
func (v View[T]) Cap() int { return v.b.Cap() }

// IsEmpty reports whether the buffer is currently empty.
func (v View[T]) IsEmpty() bool { return v.b.IsEmpty() }

// At returns the element at logical index i. Panics if out of range.
func (v View[T]) At(i int) T { return v.b.At(i) }

// FirstOK returns the oldest element, or ok=false if empty.
func (v View[T]) FirstOK() (T, bool) { return v.b.FirstOK() }

// LastOK returns the newest element, or ok=false if empty.
func (v View[T]) LastOK() (T, bool) { return v.b.LastOK() }

// ToSlice returns a snapshot copy of the current contents, oldest first.
func (v View[T]) ToSlice() []T { return v.b.ToSlice() }

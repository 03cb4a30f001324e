// Package window provides a fixed-capacity FIFO buffer used for all rolling
// state in the engine: history series, rolling averages, and category labels.
package window

// Window is a ring buffer holding the most recent Cap() items in push order.
// When full, a push evicts the oldest item. Not safe for concurrent use.
type Window[T any] struct {
	buf   []T
	pos   int
	count int
}

// New returns a window with the given capacity (minimum 1).
func New[T any](capacity int) *Window[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Window[T]{buf: make([]T, capacity)}
}

// Push inserts v, evicting the oldest item when the window is full.
func (w *Window[T]) Push(v T) {
	w.buf[w.pos] = v
	w.pos = (w.pos + 1) % len(w.buf)
	if w.count < len(w.buf) {
		w.count++
	}
}

// Len returns the number of items currently held.
func (w *Window[T]) Len() int { return w.count }

// Cap returns the fixed capacity.
func (w *Window[T]) Cap() int { return len(w.buf) }

// Items returns a copy of the current contents, oldest first.
func (w *Window[T]) Items() []T {
	if w.count == 0 {
		return nil
	}
	out := make([]T, w.count)
	if w.count < len(w.buf) {
		copy(out, w.buf[:w.count])
	} else {
		n := copy(out, w.buf[w.pos:])
		copy(out[n:], w.buf[:w.pos])
	}
	return out
}

// Last returns the newest item, or the zero value when empty.
func (w *Window[T]) Last() (T, bool) {
	var zero T
	if w.count == 0 {
		return zero, false
	}
	last := w.pos - 1
	if last < 0 {
		last = len(w.buf) - 1
	}
	return w.buf[last], true
}

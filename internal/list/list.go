// Package list provides the ordered FIFO container used for ready queues and
// the blocked set. It keeps a cursor so callers can walk, search and remove
// in place without random access.
package list

// List is a FIFO list with a cursor. The zero value is an empty list.
type List[T any] struct {
	items  []T
	cursor int
}

// New creates an empty list
func New[T any]() *List[T] {
	return &List[T]{items: make([]T, 0)}
}

// Append adds an item at the tail
func (l *List[T]) Append(item T) {
	l.items = append(l.items, item)
}

// Count returns the number of items
func (l *List[T]) Count() int {
	return len(l.items)
}

// First moves the cursor to the head and returns it.
func (l *List[T]) First() (T, bool) {
	l.cursor = 0
	return l.Curr()
}

// Next advances the cursor and returns the item under it.
func (l *List[T]) Next() (T, bool) {
	if l.cursor < len(l.items) {
		l.cursor++
	}
	return l.Curr()
}

// Curr returns the item under the cursor; ok is false past the tail.
func (l *List[T]) Curr() (T, bool) {
	if l.cursor < 0 || l.cursor >= len(l.items) {
		var zero T
		return zero, false
	}
	return l.items[l.cursor], true
}

// Remove deletes and returns the item under the cursor. The cursor then
// points at the item that followed it.
func (l *List[T]) Remove() (T, bool) {
	item, ok := l.Curr()
	if !ok {
		return item, false
	}
	l.items = append(l.items[:l.cursor], l.items[l.cursor+1:]...)
	return item, true
}

// Search scans from the cursor towards the tail and stops at the first item
// matching predicate, leaving the cursor on it.
func (l *List[T]) Search(predicate func(T) bool) (T, bool) {
	for item, ok := l.Curr(); ok; item, ok = l.Next() {
		if predicate(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Dequeue removes and returns the head item.
func (l *List[T]) Dequeue() (T, bool) {
	if _, ok := l.First(); !ok {
		var zero T
		return zero, false
	}
	return l.Remove()
}

// Items returns a copy of the items in FIFO order; the cursor is untouched.
func (l *List[T]) Items() []T {
	ret := make([]T, len(l.items))
	copy(ret, l.items)
	return ret
}

// Package exercise implements the stack practice exercises: bracket
// balancing, string reversal, decimal-to-binary conversion and expression
// evaluation, plus the board that tracks which of them a visitor finished.
package exercise

// Stack is a LIFO container.
type Stack[T any] struct {
	items []T
}

// Push puts item on top.
func (s *Stack[T]) Push(item T) {
	s.items = append(s.items, item)
}

// Pop removes and returns the top item. ok is false on an empty stack.
func (s *Stack[T]) Pop() (item T, ok bool) {
	if len(s.items) == 0 {
		return item, false
	}
	idx := len(s.items) - 1
	item = s.items[idx]
	s.items = s.items[:idx]
	return item, true
}

// Peek returns the top item without removing it.
func (s *Stack[T]) Peek() (item T, ok bool) {
	if len(s.items) == 0 {
		return item, false
	}
	return s.items[len(s.items)-1], true
}

// Len returns the number of items.
func (s *Stack[T]) Len() int {
	return len(s.items)
}

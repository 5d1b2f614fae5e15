// Package console implements the interactive operations engine shared by
// every structure page: an ordered sequence of string elements, a closed set
// of named operations dispatched through a per-structure descriptor table,
// and a tracker of scripted challenges evaluated after each operation.
package console

import "slices"

// Sequence is the ordered contents of a structure. Index 0 is the head;
// the last element is the tail (the top, for a stack).
type Sequence []string

// Len returns the number of elements.
func (s Sequence) Len() int { return len(s) }

// Clone returns an independent copy that is never nil.
func (s Sequence) Clone() Sequence {
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// Contains reports whether v is present.
func (s Sequence) Contains(v string) bool {
	return slices.Contains(s, v)
}

// IndexOf returns the position of the first exact match or -1.
func (s Sequence) IndexOf(v string) int {
	return slices.Index(s, v)
}

// Head returns the first element.
func (s Sequence) Head() (string, bool) {
	if len(s) == 0 {
		return "", false
	}
	return s[0], true
}

// Tail returns the last element.
func (s Sequence) Tail() (string, bool) {
	if len(s) == 0 {
		return "", false
	}
	return s[len(s)-1], true
}

func (s Sequence) appended(v string) Sequence {
	out := make(Sequence, 0, len(s)+1)
	out = append(out, s...)
	return append(out, v)
}

func (s Sequence) inserted(i int, v string) Sequence {
	out := make(Sequence, 0, len(s)+1)
	out = append(out, s[:i]...)
	out = append(out, v)
	return append(out, s[i:]...)
}

func (s Sequence) removed(i int) Sequence {
	out := make(Sequence, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

// Package dlist provides an index-linked doubly-linked list with O(1)
// append, remove and pop-head.
//
// Nodes are small integers in [0, capacity). Link storage lives in two side
// arrays owned by the list, so the elements themselves (pool blocks) carry no
// link words and may be as small as 4 bytes.
//
// A List is not safe for concurrent use; callers serialise access.
package dlist

const (
	none     int32 = -1 // end of list
	unlinked int32 = -2 // node is not on the list
)

// List is a doubly-linked list of node indices.
type List struct {
	head, tail int32
	n          int
	next, prev []int32
}

// New returns an empty list able to hold nodes [0, capacity).
func New(capacity int) *List {
	l := &List{
		head: none,
		tail: none,
		next: make([]int32, capacity),
		prev: make([]int32, capacity),
	}
	for i := range l.next {
		l.next[i] = unlinked
		l.prev[i] = unlinked
	}
	return l
}

// Len returns the number of linked nodes.
func (l *List) Len() int { return l.n }

// Empty reports whether the list has no nodes.
func (l *List) Empty() bool { return l.head == none }

// Contains reports whether node i is linked.
func (l *List) Contains(i int32) bool {
	if i < 0 || int(i) >= len(l.next) {
		return false
	}
	return l.next[i] != unlinked
}

// Append links node i at the tail. Appending a node that is already linked,
// or out of range, is a no-op and returns false.
func (l *List) Append(i int32) bool {
	if i < 0 || int(i) >= len(l.next) || l.next[i] != unlinked {
		return false
	}
	l.next[i] = none
	l.prev[i] = l.tail
	if l.tail == none {
		l.head = i
	} else {
		l.next[l.tail] = i
	}
	l.tail = i
	l.n++
	return true
}

// Remove unlinks node i. Returns false when i was not linked.
func (l *List) Remove(i int32) bool {
	if !l.Contains(i) {
		return false
	}
	p, n := l.prev[i], l.next[i]
	if p == none {
		l.head = n
	} else {
		l.next[p] = n
	}
	if n == none {
		l.tail = p
	} else {
		l.prev[n] = p
	}
	l.next[i] = unlinked
	l.prev[i] = unlinked
	l.n--
	return true
}

// PopHead unlinks and returns the first node.
func (l *List) PopHead() (int32, bool) {
	i := l.head
	if i == none {
		return 0, false
	}
	l.Remove(i)
	return i, true
}

// Each calls fn for every linked node from head to tail until fn returns false.
func (l *List) Each(fn func(i int32) bool) {
	for i := l.head; i != none; i = l.next[i] {
		if !fn(i) {
			return
		}
	}
}

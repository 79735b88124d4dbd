// Package undolog keeps snapshots of deleted and modified students in a
// bounded LIFO chain.
//
// Unlike a textbook stack, pushing onto a full log never fails: the oldest
// entry (the bottom of the chain) is evicted to make room.
package undolog

import (
	"fmt"
	"strings"

	"github.com/alem-hub/reportcard/internal/domain/student"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 100

// Kind tags why a snapshot was taken.
type Kind string

const (
	// KindDelete marks a snapshot of a removed student. Only these are undoable.
	KindDelete Kind = "delete"
	// KindModify marks a pre-update snapshot of a student.
	KindModify Kind = "modify"
)

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	return k == KindDelete || k == KindModify
}

// Entry is one snapshot in the log.
type Entry struct {
	Snapshot *student.Student
	Kind     Kind
}

type node struct {
	entry Entry
	next  *node
}

// Log is the bounded undo stack. Invariant: size <= capacity.
type Log struct {
	top      *node
	size     int
	capacity int
}

// New creates a log that holds at most capacity entries.
func New(capacity int) *Log {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity}
}

// IsEmpty reports whether the log has no entries.
func (l *Log) IsEmpty() bool {
	return l.top == nil
}

// IsFull reports whether the next Push will evict the oldest entry.
func (l *Log) IsFull() bool {
	return l.size >= l.capacity
}

// Size returns the number of entries.
func (l *Log) Size() int {
	return l.size
}

// Capacity returns the maximum number of entries.
func (l *Log) Capacity() int {
	return l.capacity
}

// Push stores a deep copy of snapshot on top of the log. At capacity the
// bottom entry is dropped first.
func (l *Log) Push(snapshot *student.Student, kind Kind) {
	if l.IsFull() {
		l.removeBottom()
	}

	l.top = &node{
		entry: Entry{Snapshot: snapshot.Clone(), Kind: kind},
		next:  l.top,
	}
	l.size++
}

// removeBottom walks from the top to the second-to-last node and cuts the tail.
func (l *Log) removeBottom() {
	if l.size <= 1 {
		l.top = nil
		l.size = 0
		return
	}

	cur := l.top
	for cur.next.next != nil {
		cur = cur.next
	}
	cur.next = nil
	l.size--
}

// Pop removes and returns the top entry.
func (l *Log) Pop() (Entry, bool) {
	if l.top == nil {
		return Entry{}, false
	}

	e := l.top.entry
	l.top = l.top.next
	l.size--
	return e, true
}

// Peek returns the top entry without removing it.
func (l *Log) Peek() (Entry, bool) {
	if l.top == nil {
		return Entry{}, false
	}
	return l.top.entry, true
}

// Entries returns all entries from top (newest) to bottom (oldest).
func (l *Log) Entries() []Entry {
	entries := make([]Entry, 0, l.size)
	for cur := l.top; cur != nil; cur = cur.next {
		entries = append(entries, cur.entry)
	}
	return entries
}

// Clear drops every entry.
func (l *Log) Clear() {
	l.top = nil
	l.size = 0
}

// Dump renders the log for diagnostics, newest first.
func (l *Log) Dump() string {
	if l.IsEmpty() {
		return "Stack is empty."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\nUndo Stack (Size: %d):\n", l.size)
	b.WriteString(strings.Repeat("-", 40) + "\n")
	i := 1
	for cur := l.top; cur != nil; cur = cur.next {
		s := cur.entry.Snapshot
		fmt.Fprintf(&b, "[%d] %s: %s (ID: %s)\n", i, strings.ToUpper(string(cur.entry.Kind)), s.Name, s.ID)
		i++
	}
	return b.String()
}

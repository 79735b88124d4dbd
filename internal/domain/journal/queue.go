// Package journal records facade operations in a bounded FIFO chain that can
// be inspected and drained in one batch.
//
// A full journal rejects new entries; nothing is ever evicted.
package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alem-hub/reportcard/internal/domain/student"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 100

// Kind names the operation that produced an entry.
type Kind string

const (
	KindAdd         Kind = "add"
	KindDelete      Kind = "delete"
	KindAddGrade    Kind = "add_grade"
	KindUpdateGrade Kind = "update_grade"
)

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindAdd, KindDelete, KindAddGrade, KindUpdateGrade:
		return true
	default:
		return false
	}
}

// Entry references the student an operation touched. Student is shared with
// the directory, so later edits to the student are visible through the entry.
type Entry struct {
	ID         string
	Student    *student.Student
	Kind       Kind
	RecordedAt time.Time
}

// Record is the serialisable form of an Entry.
type Record struct {
	ID            string    `json:"id"`
	OperationType Kind      `json:"operation_type"`
	StudentID     string    `json:"student_id"`
	StudentName   string    `json:"student_name"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// Record flattens the entry, reading the student's current name.
func (e Entry) Record() Record {
	r := Record{
		ID:            e.ID,
		OperationType: e.Kind,
		RecordedAt:    e.RecordedAt,
	}
	if e.Student != nil {
		r.StudentID = e.Student.ID
		r.StudentName = e.Student.Name
	}
	return r
}

// Records converts entries in order.
func Records(entries []Entry) []Record {
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, e.Record())
	}
	return records
}

type node struct {
	entry Entry
	next  *node
}

// Journal is the bounded operation queue. Invariant: size <= capacity.
type Journal struct {
	front    *node
	rear     *node
	size     int
	capacity int
	now      func() time.Time
}

// New creates a journal that holds at most capacity entries.
func New(capacity int) *Journal {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Journal{
		capacity: capacity,
		now:      time.Now,
	}
}

// IsEmpty reports whether the journal has no entries.
func (j *Journal) IsEmpty() bool {
	return j.front == nil
}

// IsFull reports whether Enqueue would be rejected.
func (j *Journal) IsFull() bool {
	return j.size >= j.capacity
}

// Size returns the number of entries.
func (j *Journal) Size() int {
	return j.size
}

// Capacity returns the maximum number of entries.
func (j *Journal) Capacity() int {
	return j.capacity
}

// Enqueue appends an entry at the rear. It returns false when the journal is full.
func (j *Journal) Enqueue(s *student.Student, kind Kind) bool {
	if j.IsFull() {
		return false
	}

	n := &node{entry: Entry{
		ID:         uuid.New().String(),
		Student:    s,
		Kind:       kind,
		RecordedAt: j.now().UTC(),
	}}

	if j.rear == nil {
		j.front = n
		j.rear = n
	} else {
		j.rear.next = n
		j.rear = n
	}

	j.size++
	return true
}

// Dequeue removes and returns the front entry.
func (j *Journal) Dequeue() (Entry, bool) {
	if j.front == nil {
		return Entry{}, false
	}

	n := j.front
	if j.front == j.rear {
		j.front = nil
		j.rear = nil
	} else {
		j.front = n.next
	}

	j.size--
	return n.entry, true
}

// Peek returns the front entry without removing it.
func (j *Journal) Peek() (Entry, bool) {
	if j.front == nil {
		return Entry{}, false
	}
	return j.front.entry, true
}

// DrainAll removes every entry and returns them in FIFO order.
func (j *Journal) DrainAll() []Entry {
	entries := make([]Entry, 0, j.size)
	for {
		e, ok := j.Dequeue()
		if !ok {
			break
		}
		entries = append(entries, e)
	}
	return entries
}

// Entries returns all entries front to rear without removing them.
func (j *Journal) Entries() []Entry {
	entries := make([]Entry, 0, j.size)
	for cur := j.front; cur != nil; cur = cur.next {
		entries = append(entries, cur.entry)
	}
	return entries
}

// Clear drops every entry.
func (j *Journal) Clear() {
	j.front = nil
	j.rear = nil
	j.size = 0
}

// Dump renders the journal for diagnostics, oldest first.
func (j *Journal) Dump() string {
	if j.IsEmpty() {
		return "Queue is empty."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\nOperation Queue (Size: %d):\n", j.size)
	b.WriteString(strings.Repeat("-", 40) + "\n")
	i := 1
	for cur := j.front; cur != nil; cur = cur.next {
		b.WriteString(FormatLine(i, cur.entry.Record()))
		i++
	}
	return b.String()
}

// FormatLine renders one numbered journal line.
func FormatLine(i int, r Record) string {
	kind := strings.ToUpper(string(r.OperationType))
	if r.StudentID == "" {
		return fmt.Sprintf("[%d] %s\n", i, kind)
	}
	return fmt.Sprintf("[%d] %s: %s (ID: %s)\n", i, kind, r.StudentName, r.StudentID)
}

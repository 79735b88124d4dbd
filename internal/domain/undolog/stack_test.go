package undolog

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/reportcard/internal/domain/student"
)

func newStudent(t *testing.T, id string) *student.Student {
	t.Helper()
	s, err := student.New(id, "Name "+id)
	require.NoError(t, err)
	return s
}

func TestLog_PushPopPeek(t *testing.T) {
	l := New(10)
	assert.True(t, l.IsEmpty())

	_, ok := l.Pop()
	assert.False(t, ok)
	_, ok = l.Peek()
	assert.False(t, ok)

	l.Push(newStudent(t, "A"), KindDelete)
	l.Push(newStudent(t, "B"), KindModify)

	top, ok := l.Peek()
	require.True(t, ok)
	assert.Equal(t, KindModify, top.Kind)
	assert.Equal(t, "B", top.Snapshot.ID)
	assert.Equal(t, 2, l.Size(), "peek must not remove")

	e, ok := l.Pop()
	require.True(t, ok)
	assert.Equal(t, "B", e.Snapshot.ID)

	e, ok = l.Pop()
	require.True(t, ok)
	assert.Equal(t, "A", e.Snapshot.ID)
	assert.Equal(t, KindDelete, e.Kind)
	assert.True(t, l.IsEmpty())
}

func TestLog_PushStoresSnapshot(t *testing.T) {
	l := New(5)
	s := newStudent(t, "A")
	s.AddSubjectGrade("Math", 90)

	l.Push(s, KindModify)
	s.UpdateSubjectGrade("Math", 100)

	top, _ := l.Peek()
	want := &student.Student{ID: "A", Name: "Name A", Subjects: []string{"Math"}, Grades: []float64{90}}
	if diff := cmp.Diff(want, top.Snapshot); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestLog_OverflowEvictsOldest(t *testing.T) {
	l := New(100)
	for i := 0; i < 101; i++ {
		l.Push(newStudent(t, fmt.Sprintf("S%d", i)), KindDelete)
	}

	assert.Equal(t, 100, l.Size())
	assert.True(t, l.IsFull())

	entries := l.Entries()
	require.Len(t, entries, 100)
	assert.Equal(t, "S100", entries[0].Snapshot.ID, "newest stays on top")
	assert.Equal(t, "S1", entries[99].Snapshot.ID, "S0 was evicted")
}

func TestLog_CapacityOne(t *testing.T) {
	l := New(1)
	l.Push(newStudent(t, "A"), KindDelete)
	l.Push(newStudent(t, "B"), KindDelete)

	assert.Equal(t, 1, l.Size())
	top, _ := l.Peek()
	assert.Equal(t, "B", top.Snapshot.ID)
}

func TestNew_DefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, New(0).Capacity())
	assert.Equal(t, DefaultCapacity, New(-3).Capacity())
	assert.Equal(t, 7, New(7).Capacity())
}

func TestLog_Dump(t *testing.T) {
	l := New(5)
	assert.Equal(t, "Stack is empty.", l.Dump())

	l.Push(newStudent(t, "A"), KindDelete)
	l.Push(newStudent(t, "B"), KindModify)

	out := l.Dump()
	assert.Contains(t, out, "Undo Stack (Size: 2):")
	assert.Contains(t, out, "[1] MODIFY: Name B (ID: B)\n")
	assert.Contains(t, out, "[2] DELETE: Name A (ID: A)\n")

	l.Clear()
	assert.True(t, l.IsEmpty())
	assert.Equal(t, 0, l.Size())
}

func TestKind_IsValid(t *testing.T) {
	assert.True(t, KindDelete.IsValid())
	assert.True(t, KindModify.IsValid())
	assert.False(t, Kind("add").IsValid())
}

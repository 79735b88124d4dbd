package management

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/reportcard/internal/domain/journal"
	"github.com/alem-hub/reportcard/internal/domain/shared"
	"github.com/alem-hub/reportcard/internal/domain/student"
	"github.com/alem-hub/reportcard/internal/domain/undolog"
	"github.com/alem-hub/reportcard/pkg/logger"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	return New(DefaultOptions())
}

func TestManager_AddStudent(t *testing.T) {
	m := newManager(t)

	msg, err := m.AddStudent("S1", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Student Alice (ID: S1) added successfully!", msg)

	_, err = m.AddStudent("S1", "Another")
	require.Error(t, err)
	assert.True(t, shared.IsAlreadyExists(err))
	assert.Equal(t, "Student with ID S1 already exists!", shared.Message(err))

	assert.Equal(t, 1, m.StudentCount())
	s, err := m.FindStudent("S1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", s.Name, "duplicate add leaves the directory unchanged")
	assert.Equal(t, 1, m.JournalSize())

	_, err = m.AddStudent("", "Nobody")
	assert.ErrorIs(t, err, shared.ErrEmptyValue)
}

func TestManager_GradeExample(t *testing.T) {
	m := newManager(t)
	_, err := m.AddStudent("S1", "Alice")
	require.NoError(t, err)

	_, err = m.AddGrade("S1", "Math", 90)
	require.NoError(t, err)
	msg, err := m.AddGrade("S1", "Sci", 70)
	require.NoError(t, err)
	assert.Equal(t, "Grade 70.0 added for Sci!", msg)

	s, _ := m.FindStudent("S1")
	assert.Equal(t, 80.00, student.Round2(s.Average()))

	msg, err = m.UpdateGrade("S1", "Math", 100)
	require.NoError(t, err)
	assert.Equal(t, "Grade for Math updated from 90.0 to 100.0!", msg)
	assert.Equal(t, 85.00, student.Round2(s.Average()))

	entries := m.UndoEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, undolog.KindModify, entries[0].Kind)
	want := &student.Student{ID: "S1", Name: "Alice", Subjects: []string{"Math", "Sci"}, Grades: []float64{90, 70}}
	if diff := cmp.Diff(want, entries[0].Snapshot); diff != "" {
		t.Errorf("modify snapshot mismatch (-want +got):\n%s", diff)
	}

	kinds := make([]journal.Kind, 0)
	for _, e := range m.JournalEntries() {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []journal.Kind{
		journal.KindAdd, journal.KindAddGrade, journal.KindAddGrade, journal.KindUpdateGrade,
	}, kinds)
}

func TestManager_AddGradeErrors(t *testing.T) {
	m := newManager(t)
	_, _ = m.AddStudent("S1", "Alice")
	_, _ = m.AddGrade("S1", "Math", 90)

	tests := []struct {
		name    string
		id      string
		subject string
		grade   float64
		kind    error
		message string
	}{
		{"unknown student", "S9", "Math", 50, shared.ErrNotFound, "Student with ID S9 not found!"},
		{"out of range", "S1", "Art", 150, shared.ErrValueOutOfRange, "Grade must be between 0 and 100!"},
		{"negative", "S1", "Art", -1, shared.ErrValueOutOfRange, "Grade must be between 0 and 100!"},
		{"duplicate subject", "S1", "Math", 80, shared.ErrAlreadyExists, "Subject Math already exists! Use update instead."},
		{"empty subject", "S1", "", 50, shared.ErrEmptyValue, "Subject cannot be empty!"},
		{"blank subject", "S1", "   ", 50, shared.ErrEmptyValue, "Subject cannot be empty!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.AddGrade(tt.id, tt.subject, tt.grade)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.message, shared.Message(err))
		})
	}

	s, _ := m.FindStudent("S1")
	assert.Equal(t, []string{"Math"}, s.Subjects)
	assert.Equal(t, []float64{90}, s.Grades)
}

func TestManager_UpdateGradeErrors(t *testing.T) {
	m := newManager(t)
	_, _ = m.AddStudent("S1", "Alice")
	_, _ = m.AddGrade("S1", "Math", 90)

	_, err := m.UpdateGrade("S9", "Math", 50)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = m.UpdateGrade("S1", "Art", 50)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, "Subject Art not found for this student!", shared.Message(err))

	_, err = m.UpdateGrade("S1", "Math", 101)
	assert.ErrorIs(t, err, shared.ErrValueOutOfRange)

	_, err = m.UpdateGrade("S1", " ", 50)
	assert.ErrorIs(t, err, shared.ErrEmptySubject)

	assert.Equal(t, 0, m.UndoSize(), "failed updates take no snapshot")
}

func TestManager_RemoveAndUndo(t *testing.T) {
	m := newManager(t)
	_, _ = m.AddStudent("S1", "Alice")
	_, _ = m.AddStudent("S2", "Bob")
	_, _ = m.AddGrade("S1", "Math", 90)

	before, _ := m.FindStudent("S1")
	want := before.Clone()

	msg, err := m.RemoveStudent("S1")
	require.NoError(t, err)
	assert.Equal(t, "Student Alice (ID: S1) removed successfully!", msg)
	assert.Equal(t, 1, m.StudentCount())

	_, err = m.RemoveStudent("S1")
	assert.True(t, shared.IsNotFound(err))

	msg, err = m.UndoLastDelete()
	require.NoError(t, err)
	assert.Equal(t, "Undone: Student Alice (ID: S1) restored!", msg)
	assert.Equal(t, 2, m.StudentCount())
	assert.Equal(t, 0, m.UndoSize())

	restored, err := m.FindStudent("S1")
	require.NoError(t, err)
	if diff := cmp.Diff(want, restored); diff != "" {
		t.Errorf("restored student mismatch (-want +got):\n%s", diff)
	}

	order := make([]string, 0)
	for _, s := range m.Students() {
		order = append(order, s.ID)
	}
	assert.Equal(t, []string{"S2", "S1"}, order, "undo re-inserts at the tail")
}

func TestManager_UndoEmpty(t *testing.T) {
	m := newManager(t)
	_, err := m.UndoLastDelete()
	assert.ErrorIs(t, err, shared.ErrNothingToUndo)
	assert.Equal(t, "No operations to undo!", shared.Message(err))
}

func TestManager_UndoBlockedByModify(t *testing.T) {
	m := newManager(t)
	_, _ = m.AddStudent("S1", "Alice")
	_, _ = m.AddStudent("S2", "Bob")
	_, _ = m.AddGrade("S2", "Math", 50)
	_, _ = m.RemoveStudent("S1")
	_, _ = m.UpdateGrade("S2", "Math", 60)

	_, err := m.UndoLastDelete()
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Equal(t, "Last operation was not a delete. Cannot undo!", shared.Message(err))

	assert.Equal(t, 2, m.UndoSize(), "undo log unchanged")
	assert.Equal(t, 1, m.StudentCount(), "directory unchanged")
}

func TestManager_UndoRefusesDuplicateID(t *testing.T) {
	m := newManager(t)
	_, _ = m.AddStudent("S1", "Alice")
	_, _ = m.RemoveStudent("S1")
	_, _ = m.AddStudent("S1", "Alice Again")

	_, err := m.UndoLastDelete()
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	assert.Equal(t, 1, m.UndoSize())
	assert.Equal(t, 1, m.StudentCount())
}

func TestManager_JournalFullDoesNotFail(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: logger.LevelDebug, Format: logger.FormatJSON, Output: &buf})

	m := New(Options{UndoCapacity: 10, JournalCapacity: 2, Logger: log})
	for i := 0; i < 3; i++ {
		_, err := m.AddStudent(fmt.Sprintf("S%d", i), "Student")
		require.NoError(t, err)
	}

	assert.Equal(t, 3, m.StudentCount())
	assert.Equal(t, 2, m.JournalSize())
	assert.Contains(t, buf.String(), "operation journal is full")
	assert.Contains(t, buf.String(), "Operation queue is full!")

	records := journal.Records(m.DrainJournal())
	require.Len(t, records, 2)
	assert.Equal(t, "S0", records[0].StudentID)
	assert.Equal(t, "S1", records[1].StudentID)
	assert.Equal(t, 0, m.JournalSize())
}

func TestManager_SearchByName(t *testing.T) {
	m := newManager(t)
	_, _ = m.AddStudent("1", "Alice")
	_, _ = m.AddStudent("2", "Malika")
	_, _ = m.AddStudent("3", "Bob")

	found, err := m.SearchByName("ALI")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "1", found[0].ID)
	assert.Equal(t, "2", found[1].ID)

	found, err = m.SearchByName("zed")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, "No students found with name containing 'zed'", shared.Message(err))
	assert.Empty(t, found)
}

func TestManager_Statistics(t *testing.T) {
	m := newManager(t)
	assert.Equal(t, Statistics{}, m.Statistics())

	_, _ = m.AddStudent("A", "Ann")
	_, _ = m.AddStudent("B", "Bob")
	_, _ = m.AddStudent("C", "Cid")
	_, _ = m.AddGrade("A", "Math", 90)
	_, _ = m.AddGrade("B", "Math", 60)
	_, _ = m.AddGrade("B", "Sci", 61)
	_, _ = m.RemoveStudent("C")

	stats := m.Statistics()
	want := Statistics{
		TotalStudents:  2,
		UndoStackSize:  1,
		QueueSize:      7,
		GradedStudents: 2,
		HighestAverage: 90,
		LowestAverage:  60.5,
		OverallAverage: 75.25,
	}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("Statistics() mismatch (-want +got):\n%s", diff)
	}

	dump := m.StatisticsDump()
	assert.Contains(t, dump, "Total Students: 2\n")
	assert.Contains(t, dump, "Highest Average: 90.00\n")
	assert.Contains(t, dump, "Lowest Average: 60.50\n")
	assert.Contains(t, dump, "Overall Average: 75.25\n")
}

func TestManager_StatisticsSkipsUngraded(t *testing.T) {
	m := newManager(t)
	_, _ = m.AddStudent("A", "Ann")
	_, _ = m.AddStudent("B", "Bob")
	_, _ = m.AddGrade("A", "Math", 40)

	stats := m.Statistics()
	assert.Equal(t, 1, stats.GradedStudents)
	assert.Equal(t, 40.0, stats.LowestAverage)
	assert.NotContains(t, newManager(t).StatisticsDump(), "Average Grade Statistics")
}

func TestManager_Dumps(t *testing.T) {
	m := newManager(t)
	assert.Equal(t, "No students found.", m.DirectoryDump())
	assert.Equal(t, "Stack is empty.", m.UndoDump())
	assert.Equal(t, "Queue is empty.", m.JournalDump())

	_, _ = m.AddStudent("S1", "Alice")
	_, _ = m.RemoveStudent("S1")

	assert.Contains(t, m.UndoDump(), "DELETE: Alice (ID: S1)")
	assert.Contains(t, m.JournalDump(), "[2] DELETE: Alice (ID: S1)")
}

func TestProcessedDump(t *testing.T) {
	assert.Equal(t, "No operations in queue to process.", ProcessedDump(nil))

	out := ProcessedDump([]journal.Record{
		{OperationType: journal.KindAdd, StudentID: "S1", StudentName: "Alice"},
		{OperationType: journal.KindDelete, StudentID: "S1", StudentName: "Alice"},
	})
	assert.Contains(t, out, "Processed 2 operations from queue:")
	assert.Contains(t, out, "[1] ADD: Alice (ID: S1)\n[2] DELETE: Alice (ID: S1)\n")
}

func TestLocked_ConcurrentAccess(t *testing.T) {
	l := NewLocked(New(Options{UndoCapacity: 10, JournalCapacity: 1000}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Do(func(m *Manager) {
				_, _ = m.AddStudent(fmt.Sprintf("S%d", i), "Student")
			})
		}(i)
	}
	wg.Wait()

	var count int
	l.Do(func(m *Manager) { count = m.StudentCount() })
	assert.Equal(t, 50, count)

	records := l.DrainJournal()
	assert.Len(t, records, 50)
	assert.Empty(t, l.DrainJournal())
}

package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/reportcard/internal/application/management"
)

func runShell(t *testing.T, input ...string) (string, *management.Locked) {
	t.Helper()
	locked := management.NewLocked(management.New(management.DefaultOptions()))
	var out bytes.Buffer
	sh := NewShell(Config{
		Manager: locked,
		In:      strings.NewReader(strings.Join(input, "\n") + "\n"),
		Out:     &out,
	})
	require.NoError(t, sh.Run(context.Background()))
	return out.String(), locked
}

func TestShell_AddGradeAndReportCard(t *testing.T) {
	out, locked := runShell(t,
		"1", "S001", "Alice",
		"5", "S001", "Math", "85",
		"5", "S001", "Physics", "75",
		"8", "S001",
		"14",
	)

	assert.Contains(t, out, "Welcome to Student Report Card Management System!")
	assert.Contains(t, out, "Student Alice (ID: S001) added successfully!")
	assert.Contains(t, out, "Grade 85.0 added for Math!")
	assert.Contains(t, out, "Student ID: S001")
	assert.Contains(t, out, "Average: 80.00")
	assert.Contains(t, out, "Goodbye!")

	locked.Do(func(m *management.Manager) {
		assert.Equal(t, 1, m.StudentCount())
		assert.Equal(t, 3, m.JournalSize())
	})
}

func TestShell_InputErrors(t *testing.T) {
	out, _ := runShell(t,
		"1", "", "Bob",
		"5", "S1", "Math", "ninety",
		"2", "",
		"99",
		"14",
	)

	assert.Contains(t, out, "Error: Student ID and Name cannot be empty!")
	assert.Contains(t, out, "Error: Grade must be a number!")
	assert.Contains(t, out, "Error: Student ID cannot be empty!")
	assert.Contains(t, out, "Invalid choice! Please enter a number between 1-14.")
}

func TestShell_DeleteUndoAndQueue(t *testing.T) {
	out, locked := runShell(t,
		"1", "S1", "Bob",
		"2", "S1",
		"11",
		"9",
		"9",
		"12",
		"13",
		"13",
		"14",
	)

	assert.Contains(t, out, "Student Bob (ID: S1) removed successfully!")
	assert.Contains(t, out, "Undo Stack (Size: 1):")
	assert.Contains(t, out, "[1] DELETE: Bob (ID: S1)")
	assert.Contains(t, out, "Undone: Student Bob (ID: S1) restored!")
	assert.Contains(t, out, "No operations to undo!")
	assert.Contains(t, out, "Operation Queue (Size: 2):")
	assert.Contains(t, out, "Processed 2 operations from queue:")
	assert.Contains(t, out, "No operations in queue to process.")

	locked.Do(func(m *management.Manager) {
		assert.Equal(t, 1, m.StudentCount())
		assert.Zero(t, m.JournalSize())
	})
}

func TestShell_SearchByName(t *testing.T) {
	out, _ := runShell(t,
		"1", "S1", "Alice Smith",
		"1", "S2", "Alicia Keys",
		"4", "ali",
		"4", "zed",
		"3", "S9",
		"14",
	)

	assert.Contains(t, out, "Found 2 student(s):")
	assert.Contains(t, out, "No students found with name containing 'zed'")
	assert.Contains(t, out, "Student with ID S9 not found!")
}

func TestShell_StatisticsAndListing(t *testing.T) {
	out, _ := runShell(t,
		"7",
		"1", "S1", "Alice",
		"5", "S1", "Math", "90",
		"6", "S1", "Math", "70",
		"10",
		"7",
		"14",
	)

	assert.Contains(t, out, "No students found.")
	assert.Contains(t, out, "Grade for Math updated from 90.0 to 70.0!")
	assert.Contains(t, out, "SYSTEM STATISTICS")
	assert.Contains(t, out, "Highest Average: 70.00")
	assert.Contains(t, out, "Total Students: 1")
}

func TestShell_EOFEndsLoop(t *testing.T) {
	locked := management.NewLocked(management.New(management.DefaultOptions()))
	var out bytes.Buffer
	sh := NewShell(Config{Manager: locked, In: strings.NewReader("1\nS1\n"), Out: &out, Pause: true})

	require.NoError(t, sh.Run(context.Background()))
	assert.NotContains(t, out.String(), "Goodbye!")
}

func TestShell_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sh := NewShell(Config{In: strings.NewReader("14\n"), Out: &bytes.Buffer{}})
	assert.ErrorIs(t, sh.Run(ctx), context.Canceled)
}

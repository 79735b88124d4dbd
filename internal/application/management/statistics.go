package management

import (
	"fmt"
	"strings"

	"github.com/alem-hub/reportcard/internal/domain/journal"
	"github.com/alem-hub/reportcard/internal/domain/student"
)

// Statistics aggregates container sizes and per-student averages.
// Students without subjects are left out of the average figures.
type Statistics struct {
	TotalStudents  int     `json:"total_students"`
	UndoStackSize  int     `json:"undo_stack_size"`
	QueueSize      int     `json:"queue_size"`
	GradedStudents int     `json:"graded_students"`
	HighestAverage float64 `json:"highest_average"`
	LowestAverage  float64 `json:"lowest_average"`
	OverallAverage float64 `json:"overall_average"`
}

// Statistics computes the current figures.
func (m *Manager) Statistics() Statistics {
	stats := Statistics{
		TotalStudents: m.students.Size(),
		UndoStackSize: m.undo.Size(),
		QueueSize:     m.journal.Size(),
	}

	var sum float64
	first := true
	for _, s := range m.students.All() {
		if !s.HasSubjects() {
			continue
		}
		avg := s.Average()
		if first || avg > stats.HighestAverage {
			stats.HighestAverage = avg
		}
		if first || avg < stats.LowestAverage {
			stats.LowestAverage = avg
		}
		first = false
		sum += avg
		stats.GradedStudents++
	}

	if stats.GradedStudents > 0 {
		stats.OverallAverage = student.Round2(sum / float64(stats.GradedStudents))
		stats.HighestAverage = student.Round2(stats.HighestAverage)
		stats.LowestAverage = student.Round2(stats.LowestAverage)
	}

	return stats
}

// ══════════════════════════════════════════════════════════════════════════════
// DIAGNOSTIC DUMPS
// ══════════════════════════════════════════════════════════════════════════════

// DirectoryDump renders every student with its report card.
func (m *Manager) DirectoryDump() string {
	return m.students.Dump()
}

// UndoDump renders the undo log, newest first.
func (m *Manager) UndoDump() string {
	return m.undo.Dump()
}

// JournalDump renders the journal, oldest first.
func (m *Manager) JournalDump() string {
	return m.journal.Dump()
}

// StatisticsDump renders Statistics as a text block.
func (m *Manager) StatisticsDump() string {
	stats := m.Statistics()
	line := strings.Repeat("=", 60)

	var b strings.Builder
	b.WriteString("\n" + line + "\n")
	b.WriteString("SYSTEM STATISTICS\n")
	b.WriteString(line + "\n")
	fmt.Fprintf(&b, "Total Students: %d\n", stats.TotalStudents)
	fmt.Fprintf(&b, "Undo Stack Size: %d\n", stats.UndoStackSize)
	fmt.Fprintf(&b, "Operation Queue Size: %d\n", stats.QueueSize)
	if stats.GradedStudents > 0 {
		b.WriteString("\nAverage Grade Statistics:\n")
		fmt.Fprintf(&b, "  Highest Average: %.2f\n", stats.HighestAverage)
		fmt.Fprintf(&b, "  Lowest Average: %.2f\n", stats.LowestAverage)
		fmt.Fprintf(&b, "  Overall Average: %.2f\n", stats.OverallAverage)
	}
	b.WriteString(line + "\n")
	return b.String()
}

// ProcessedDump renders the records of one journal drain.
func ProcessedDump(records []journal.Record) string {
	if len(records) == 0 {
		return "No operations in queue to process."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\nProcessed %d operations from queue:\n", len(records))
	b.WriteString(strings.Repeat("-", 40) + "\n")
	for i, r := range records {
		b.WriteString(journal.FormatLine(i+1, r))
	}
	return b.String()
}

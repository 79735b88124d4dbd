// Package management orchestrates the student directory, the undo log and
// the operation journal behind one facade.
package management

import (
	"fmt"

	"github.com/alem-hub/reportcard/internal/domain/directory"
	"github.com/alem-hub/reportcard/internal/domain/journal"
	"github.com/alem-hub/reportcard/internal/domain/shared"
	"github.com/alem-hub/reportcard/internal/domain/student"
	"github.com/alem-hub/reportcard/internal/domain/undolog"
	"github.com/alem-hub/reportcard/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MANAGER
// Single-threaded facade. Callers that share a Manager between goroutines
// must serialise access with one external mutex.
// ══════════════════════════════════════════════════════════════════════════════

// Options configures a Manager.
type Options struct {
	// UndoCapacity bounds the undo log (default 100).
	UndoCapacity int

	// JournalCapacity bounds the operation journal (default 100).
	JournalCapacity int

	// Logger receives warnings such as journal overflow. Optional.
	Logger *logger.Logger
}

// DefaultOptions returns the default capacities of both bounded containers.
func DefaultOptions() Options {
	return Options{
		UndoCapacity:    undolog.DefaultCapacity,
		JournalCapacity: journal.DefaultCapacity,
	}
}

// Manager implements the report card use cases.
type Manager struct {
	students *directory.Directory
	undo     *undolog.Log
	journal  *journal.Journal
	logger   *logger.Logger
}

// New creates a Manager with empty containers.
func New(opts Options) *Manager {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{
		students: directory.New(),
		undo:     undolog.New(opts.UndoCapacity),
		journal:  journal.New(opts.JournalCapacity),
		logger:   log.With(logger.Component("management")),
	}
}

// record journals an operation. A full journal does not fail the operation.
func (m *Manager) record(s *student.Student, kind journal.Kind) {
	if !m.journal.Enqueue(s, kind) {
		m.logger.Warn("operation journal is full, entry dropped",
			logger.Err(shared.ErrJournalFull),
			logger.StudentID(s.ID),
			logger.OperationKind(string(kind)),
			logger.Int("capacity", m.journal.Capacity()),
		)
	}
}

func notFound(op, id string) error {
	return shared.NewDomainError("directory", op, shared.ErrNotFound,
		fmt.Sprintf("Student with ID %s not found!", id))
}

// ══════════════════════════════════════════════════════════════════════════════
// COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

// AddStudent creates a student and appends it to the directory.
func (m *Manager) AddStudent(id, name string) (string, error) {
	if _, exists := m.students.FindByID(id); exists {
		return "", shared.NewDomainError("directory", "AddStudent", shared.ErrAlreadyExists,
			fmt.Sprintf("Student with ID %s already exists!", id))
	}

	s, err := student.New(id, name)
	if err != nil {
		return "", err
	}

	m.students.Insert(s)
	m.record(s, journal.KindAdd)

	m.logger.Debug("student added", logger.StudentID(id))
	return fmt.Sprintf("Student %s (ID: %s) added successfully!", name, id), nil
}

// RemoveStudent removes a student and keeps a snapshot for undo.
func (m *Manager) RemoveStudent(id string) (string, error) {
	s, ok := m.students.Remove(id)
	if !ok {
		return "", notFound("RemoveStudent", id)
	}

	m.undo.Push(s, undolog.KindDelete)
	m.record(s, journal.KindDelete)

	m.logger.Debug("student removed", logger.StudentID(id))
	return fmt.Sprintf("Student %s (ID: %s) removed successfully!", s.Name, id), nil
}

// AddGrade adds a new subject with its grade to a student's report card.
func (m *Manager) AddGrade(id, subject string, grade float64) (string, error) {
	s, ok := m.students.FindByID(id)
	if !ok {
		return "", notFound("AddGrade", id)
	}

	if err := student.ValidateSubject(subject); err != nil {
		return "", err
	}

	if err := student.ValidateGrade(grade); err != nil {
		return "", err
	}

	if !s.AddSubjectGrade(subject, grade) {
		return "", shared.NewDomainError("student", "AddGrade", shared.ErrAlreadyExists,
			fmt.Sprintf("Subject %s already exists! Use update instead.", subject))
	}

	m.record(s, journal.KindAddGrade)
	return fmt.Sprintf("Grade %s added for %s!", student.FormatGrade(grade), subject), nil
}

// UpdateGrade changes an existing grade, keeping the previous state for undo.
func (m *Manager) UpdateGrade(id, subject string, grade float64) (string, error) {
	s, ok := m.students.FindByID(id)
	if !ok {
		return "", notFound("UpdateGrade", id)
	}

	if err := student.ValidateSubject(subject); err != nil {
		return "", err
	}

	if err := student.ValidateGrade(grade); err != nil {
		return "", err
	}

	old, ok := s.Grade(subject)
	if !ok {
		return "", shared.NewDomainError("student", "UpdateGrade", shared.ErrNotFound,
			fmt.Sprintf("Subject %s not found for this student!", subject))
	}

	m.undo.Push(s, undolog.KindModify)
	s.UpdateSubjectGrade(subject, grade)
	m.record(s, journal.KindUpdateGrade)

	return fmt.Sprintf("Grade for %s updated from %s to %s!",
		subject, student.FormatGrade(old), student.FormatGrade(grade)), nil
}

// UndoLastDelete restores the most recently deleted student. Only the top of
// the undo log is inspected: a "modify" entry there blocks the undo.
func (m *Manager) UndoLastDelete() (string, error) {
	top, ok := m.undo.Peek()
	if !ok {
		return "", shared.ErrUndoLogEmpty
	}

	if top.Kind != undolog.KindDelete {
		return "", shared.ErrUndoTopNotDelete
	}

	if _, exists := m.students.FindByID(top.Snapshot.ID); exists {
		return "", shared.NewDomainError("directory", "Undo", shared.ErrAlreadyExists,
			fmt.Sprintf("Student with ID %s already exists! Cannot undo.", top.Snapshot.ID))
	}

	entry, _ := m.undo.Pop()
	s := entry.Snapshot
	m.students.Insert(s)

	m.logger.Debug("delete undone", logger.StudentID(s.ID))
	return fmt.Sprintf("Undone: Student %s (ID: %s) restored!", s.Name, s.ID), nil
}

// DrainJournal removes and returns every journal entry in FIFO order.
func (m *Manager) DrainJournal() []journal.Entry {
	return m.journal.DrainAll()
}

// ══════════════════════════════════════════════════════════════════════════════
// QUERIES
// ══════════════════════════════════════════════════════════════════════════════

// FindStudent returns the student with the given ID.
func (m *Manager) FindStudent(id string) (*student.Student, error) {
	s, ok := m.students.FindByID(id)
	if !ok {
		return nil, notFound("FindStudent", id)
	}
	return s, nil
}

// SearchByName returns every student whose name contains q, ignoring case.
func (m *Manager) SearchByName(q string) ([]*student.Student, error) {
	results := m.students.FindByNameSubstring(q)
	if len(results) == 0 {
		return results, shared.NewDomainError("directory", "SearchByName", shared.ErrNotFound,
			fmt.Sprintf("No students found with name containing '%s'", q))
	}
	return results, nil
}

// Students returns all students in directory order.
func (m *Manager) Students() []*student.Student {
	return m.students.All()
}

// StudentCount returns the directory size.
func (m *Manager) StudentCount() int {
	return m.students.Size()
}

// UndoEntries returns the undo log from newest to oldest.
func (m *Manager) UndoEntries() []undolog.Entry {
	return m.undo.Entries()
}

// UndoSize returns the number of undo entries.
func (m *Manager) UndoSize() int {
	return m.undo.Size()
}

// JournalEntries returns the journal from oldest to newest without draining it.
func (m *Manager) JournalEntries() []journal.Entry {
	return m.journal.Entries()
}

// JournalSize returns the number of journal entries.
func (m *Manager) JournalSize() int {
	return m.journal.Size()
}

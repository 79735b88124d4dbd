// Package cli runs the interactive report card menu over any reader/writer
// pair, so the same loop serves a terminal session and tests.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alem-hub/reportcard/internal/application/command"
	"github.com/alem-hub/reportcard/internal/application/management"
	"github.com/alem-hub/reportcard/internal/domain/shared"
	"github.com/alem-hub/reportcard/pkg/logger"
)

// errInputClosed reports that the reader ran dry mid-prompt.
var errInputClosed = errors.New("cli: input closed")

// ══════════════════════════════════════════════════════════════════════════════
// SHELL
// ══════════════════════════════════════════════════════════════════════════════

// MenuHandler executes one menu item. Returning false ends the loop.
type MenuHandler func(ctx context.Context) (keepGoing bool, err error)

// Config wires a Shell.
type Config struct {
	// Manager is the facade behind its single mutex.
	Manager *management.Locked

	// ProcessJournal drains the journal into the configured sinks.
	ProcessJournal *command.ProcessJournalHandler

	// In and Out are the terminal streams.
	In  io.Reader
	Out io.Writer

	// Pause waits for Enter after every action.
	Pause bool

	Logger *logger.Logger
}

// Shell is the interactive menu loop.
type Shell struct {
	manager  *management.Locked
	process  *command.ProcessJournalHandler
	in       *bufio.Scanner
	out      io.Writer
	pause    bool
	logger   *logger.Logger
	handlers map[string]MenuHandler
}

// NewShell creates a Shell and registers the menu items.
func NewShell(cfg Config) *Shell {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	s := &Shell{
		manager: cfg.Manager,
		process: cfg.ProcessJournal,
		in:      bufio.NewScanner(cfg.In),
		out:     cfg.Out,
		pause:   cfg.Pause,
		logger:  log.With(logger.Component("cli")),
	}

	if s.manager == nil {
		s.manager = management.NewLocked(management.New(management.DefaultOptions()))
	}
	if s.process == nil {
		s.process = command.NewProcessJournalHandler(s.manager, nil, command.DefaultProcessJournalConfig(), s.logger)
	}

	s.handlers = map[string]MenuHandler{
		"1":  s.addStudent,
		"2":  s.removeStudent,
		"3":  s.showStudent("Enter Student ID to search: "),
		"4":  s.searchByName,
		"5":  s.addGrade,
		"6":  s.updateGrade,
		"7":  s.listStudents,
		"8":  s.showStudent("Enter Student ID: "),
		"9":  s.undo,
		"10": s.statistics,
		"11": s.undoStack,
		"12": s.queue,
		"13": s.processQueue,
		"14": s.exit,
	}

	return s
}

// Run prints the welcome banner and loops until "14", EOF on input or
// context cancellation.
func (s *Shell) Run(ctx context.Context) error {
	s.print(welcomeText)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.print(menuText)
		choice, err := s.prompt("\nEnter your choice (1-14): ")
		if err != nil {
			return s.closed(err)
		}

		h, ok := s.handlers[choice]
		if !ok {
			s.println("\nInvalid choice! Please enter a number between 1-14.")
			continue
		}

		keepGoing, err := h(ctx)
		if err != nil {
			return s.closed(err)
		}
		if !keepGoing {
			return nil
		}

		if s.pause {
			if _, err := s.prompt("\nPress Enter to continue..."); err != nil {
				return s.closed(err)
			}
		}
	}
}

// closed turns end of input into a clean exit.
func (s *Shell) closed(err error) error {
	if errors.Is(err, errInputClosed) {
		s.logger.Debug("input closed, leaving shell")
		return nil
	}
	return err
}

// ══════════════════════════════════════════════════════════════════════════════
// MENU ITEMS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Shell) addStudent(context.Context) (bool, error) {
	id, err := s.prompt("Enter Student ID: ")
	if err != nil {
		return false, err
	}
	name, err := s.prompt("Enter Student Name: ")
	if err != nil {
		return false, err
	}
	if id == "" || name == "" {
		s.println("\nError: Student ID and Name cannot be empty!")
		return true, nil
	}

	s.facade(func(m *management.Manager) (string, error) { return m.AddStudent(id, name) })
	return true, nil
}

func (s *Shell) removeStudent(context.Context) (bool, error) {
	id, err := s.prompt("Enter Student ID to remove: ")
	if err != nil {
		return false, err
	}
	if id == "" {
		s.println("\nError: Student ID cannot be empty!")
		return true, nil
	}

	s.facade(func(m *management.Manager) (string, error) { return m.RemoveStudent(id) })
	return true, nil
}

// showStudent serves both "search by ID" and "display report card".
func (s *Shell) showStudent(label string) MenuHandler {
	return func(context.Context) (bool, error) {
		id, err := s.prompt(label)
		if err != nil {
			return false, err
		}
		if id == "" {
			s.println("\nError: Student ID cannot be empty!")
			return true, nil
		}

		var text string
		s.manager.Do(func(m *management.Manager) {
			st, err := m.FindStudent(id)
			if err != nil {
				text = "\n" + shared.Message(err)
				return
			}
			text = st.Display()
		})
		s.println(text)
		return true, nil
	}
}

func (s *Shell) searchByName(context.Context) (bool, error) {
	name, err := s.prompt("Enter Student Name to search: ")
	if err != nil {
		return false, err
	}
	if name == "" {
		s.println("\nError: Name cannot be empty!")
		return true, nil
	}

	var b strings.Builder
	s.manager.Do(func(m *management.Manager) {
		found, err := m.SearchByName(name)
		if err != nil {
			b.WriteString("\n" + shared.Message(err))
			return
		}
		fmt.Fprintf(&b, "\nFound %d student(s):", len(found))
		for _, st := range found {
			b.WriteString("\n" + st.Display())
		}
	})
	s.println(b.String())
	return true, nil
}

func (s *Shell) addGrade(context.Context) (bool, error) {
	return s.gradeAction("Enter Grade (0-100): ", func(m *management.Manager, id, subject string, g float64) (string, error) {
		return m.AddGrade(id, subject, g)
	})
}

func (s *Shell) updateGrade(context.Context) (bool, error) {
	return s.gradeAction("Enter New Grade (0-100): ", func(m *management.Manager, id, subject string, g float64) (string, error) {
		return m.UpdateGrade(id, subject, g)
	})
}

func (s *Shell) gradeAction(
	gradePrompt string,
	apply func(m *management.Manager, id, subject string, g float64) (string, error),
) (bool, error) {
	id, err := s.prompt("Enter Student ID: ")
	if err != nil {
		return false, err
	}
	subject, err := s.prompt("Enter Subject Name: ")
	if err != nil {
		return false, err
	}
	raw, err := s.prompt(gradePrompt)
	if err != nil {
		return false, err
	}

	grade, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		s.println("\nError: Grade must be a number!")
		return true, nil
	}
	if id == "" || subject == "" {
		s.println("\nError: Student ID and Subject cannot be empty!")
		return true, nil
	}

	s.facade(func(m *management.Manager) (string, error) { return apply(m, id, subject, grade) })
	return true, nil
}

func (s *Shell) listStudents(context.Context) (bool, error) {
	s.dump((*management.Manager).DirectoryDump)
	return true, nil
}

func (s *Shell) undo(context.Context) (bool, error) {
	s.facade((*management.Manager).UndoLastDelete)
	return true, nil
}

func (s *Shell) statistics(context.Context) (bool, error) {
	s.dump((*management.Manager).StatisticsDump)
	return true, nil
}

func (s *Shell) undoStack(context.Context) (bool, error) {
	s.dump((*management.Manager).UndoDump)
	return true, nil
}

func (s *Shell) queue(context.Context) (bool, error) {
	s.dump((*management.Manager).JournalDump)
	return true, nil
}

func (s *Shell) processQueue(ctx context.Context) (bool, error) {
	result, err := s.process.Handle(ctx, command.ProcessJournalCommand{})
	if err != nil {
		return false, err
	}

	s.println(management.ProcessedDump(result.Records))
	for _, d := range result.Deliveries {
		if !d.Delivered {
			s.println(fmt.Sprintf("Warning: delivery to %s failed: %s", d.Sink, d.Error))
		}
	}
	return true, nil
}

func (s *Shell) exit(context.Context) (bool, error) {
	s.println("\nThank you for using Student Report Card Management System!")
	s.println("Goodbye!")
	return false, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// facade runs a (message, error) operation under the lock and prints the outcome.
func (s *Shell) facade(op func(m *management.Manager) (string, error)) {
	var msg string
	var err error
	s.manager.Do(func(m *management.Manager) {
		msg, err = op(m)
	})
	if err != nil {
		msg = shared.Message(err)
	}
	s.println("\n" + msg)
}

func (s *Shell) dump(render func(m *management.Manager) string) {
	var text string
	s.manager.Do(func(m *management.Manager) {
		text = render(m)
	})
	s.println(text)
}

// prompt writes label and reads one trimmed line.
func (s *Shell) prompt(label string) (string, error) {
	s.print(label)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("cli: read input: %w", err)
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *Shell) print(text string) {
	_, _ = io.WriteString(s.out, text)
}

func (s *Shell) println(text string) {
	_, _ = io.WriteString(s.out, text+"\n")
}

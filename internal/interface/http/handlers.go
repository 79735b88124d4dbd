package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/alem-hub/reportcard/internal/application/command"
	"github.com/alem-hub/reportcard/internal/application/management"
	"github.com/alem-hub/reportcard/internal/domain/journal"
	"github.com/alem-hub/reportcard/internal/domain/shared"
	"github.com/alem-hub/reportcard/internal/domain/student"
	"github.com/alem-hub/reportcard/internal/domain/undolog"
	"github.com/alem-hub/reportcard/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, "", map[string]any{
		"name":    "Student Report Card API",
		"version": s.config.Version,
		"endpoints": map[string]string{
			"health":     "/health",
			"students":   "/api/students",
			"undo":       "/api/undo",
			"statistics": "/api/statistics",
			"queue":      "/api/queue",
			"stack":      "/api/stack",
		},
	})
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, r, code, status.Message, status)
		return
	}

	writeJSON(w, r, http.StatusOK, "", map[string]any{
		"status": "healthy",
		"uptime": s.Uptime().String(),
	})
}

// handleReady handles the readiness check endpoint.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		if status := s.deps.HealthChecker.Check(r.Context()); !status.Ready {
			writeError(w, r, http.StatusServiceUnavailable, "not_ready", status.Message)
			return
		}
	}
	writeJSON(w, r, http.StatusOK, "", map[string]string{"status": "ready"})
}

// handleLive handles the liveness check endpoint.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, "", map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type addStudentRequest struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
}

type gradeRequest struct {
	Subject string          `json:"subject"`
	Grade   json.RawMessage `json:"grade"`
}

// handleListStudents handles GET /api/students
func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	var views []student.View
	s.deps.Manager.Do(func(m *management.Manager) {
		views = student.NewViews(m.Students())
	})
	writeJSON(w, r, http.StatusOK, "", map[string]any{"students": views})
}

// handleAddStudent handles POST /api/students
func (s *Server) handleAddStudent(w http.ResponseWriter, r *http.Request) {
	var req addStudentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	id := strings.TrimSpace(req.StudentID)
	name := strings.TrimSpace(req.Name)
	if id == "" || name == "" {
		writeError(w, r, http.StatusBadRequest, "validation_error", "Student ID and Name are required!")
		return
	}

	var msg string
	var err error
	s.deps.Manager.Do(func(m *management.Manager) {
		msg, err = m.AddStudent(id, name)
	})
	s.respond(w, r, http.StatusCreated, http.StatusBadRequest, msg, err)
}

// handleSearchStudents handles GET /api/students/search?name=
func (s *Server) handleSearchStudents(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, r, http.StatusBadRequest, "validation_error", "Name parameter is required!")
		return
	}

	var views []student.View
	var err error
	s.deps.Manager.Do(func(m *management.Manager) {
		var found []*student.Student
		found, err = m.SearchByName(name)
		views = student.NewViews(found)
	})
	if err != nil {
		writeError(w, r, http.StatusNotFound, errorCode(err), shared.Message(err))
		return
	}
	writeJSON(w, r, http.StatusOK, "", map[string]any{"students": views})
}

// handleGetStudent handles GET /api/students/{id}
func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var view student.View
	var err error
	s.deps.Manager.Do(func(m *management.Manager) {
		var st *student.Student
		if st, err = m.FindStudent(id); err == nil {
			view = student.NewView(st)
		}
	})
	if err != nil {
		writeError(w, r, http.StatusNotFound, errorCode(err), shared.Message(err))
		return
	}
	writeJSON(w, r, http.StatusOK, "", map[string]any{"student": view})
}

// handleDeleteStudent handles DELETE /api/students/{id}
func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var msg string
	var err error
	s.deps.Manager.Do(func(m *management.Manager) {
		msg, err = m.RemoveStudent(id)
	})
	s.respond(w, r, http.StatusOK, http.StatusNotFound, msg, err)
}

// handleAddGrade handles POST /api/students/{id}/grades
func (s *Server) handleAddGrade(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	subject, grade, ok := s.parseGradeRequest(w, r)
	if !ok {
		return
	}

	var msg string
	var err error
	s.deps.Manager.Do(func(m *management.Manager) {
		msg, err = m.AddGrade(id, subject, grade)
	})
	s.respond(w, r, http.StatusCreated, http.StatusBadRequest, msg, err)
}

// handleUpdateGrade handles PUT /api/students/{id}/grades
func (s *Server) handleUpdateGrade(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	subject, grade, ok := s.parseGradeRequest(w, r)
	if !ok {
		return
	}

	var msg string
	var err error
	s.deps.Manager.Do(func(m *management.Manager) {
		msg, err = m.UpdateGrade(id, subject, grade)
	})
	s.respond(w, r, http.StatusOK, http.StatusBadRequest, msg, err)
}

// parseGradeRequest validates {subject, grade}. The grade may be a JSON
// number or a numeric string.
func (s *Server) parseGradeRequest(w http.ResponseWriter, r *http.Request) (string, float64, bool) {
	var req gradeRequest
	if !decodeBody(w, r, &req) {
		return "", 0, false
	}

	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		writeError(w, r, http.StatusBadRequest, "validation_error", "Subject is required!")
		return "", 0, false
	}

	grade, err := parseGrade(req.Grade)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "validation_error", "Grade must be a number!")
		return "", 0, false
	}

	return subject, grade, true
}

// ══════════════════════════════════════════════════════════════════════════════
// UNDO, JOURNAL & STATISTICS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type operationView struct {
	OperationType string `json:"operation_type"`
	StudentID     string `json:"student_id"`
	StudentName   string `json:"student_name"`
}

// handleUndo handles POST /api/undo
func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	var msg string
	var err error
	s.deps.Manager.Do(func(m *management.Manager) {
		msg, err = m.UndoLastDelete()
	})
	s.respond(w, r, http.StatusOK, http.StatusBadRequest, msg, err)
}

// handleStatistics handles GET /api/statistics
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	var stats management.Statistics
	s.deps.Manager.Do(func(m *management.Manager) {
		stats = m.Statistics()
	})
	writeJSON(w, r, http.StatusOK, "", map[string]any{"statistics": stats})
}

// handleGetQueue handles GET /api/queue
func (s *Server) handleGetQueue(w http.ResponseWriter, r *http.Request) {
	var records []journal.Record
	s.deps.Manager.Do(func(m *management.Manager) {
		records = journal.Records(m.JournalEntries())
	})
	writeJSON(w, r, http.StatusOK, "", map[string]any{
		"queue": records,
		"size":  len(records),
	})
}

// handleGetStack handles GET /api/stack
func (s *Server) handleGetStack(w http.ResponseWriter, r *http.Request) {
	var ops []operationView
	s.deps.Manager.Do(func(m *management.Manager) {
		ops = stackViews(m.UndoEntries())
	})
	writeJSON(w, r, http.StatusOK, "", map[string]any{
		"stack": ops,
		"size":  len(ops),
	})
}

// handleProcessQueue handles POST /api/queue/process
func (s *Server) handleProcessQueue(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.ProcessJournal.Handle(r.Context(), command.ProcessJournalCommand{
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		logger.FromContext(r.Context()).Warn("journal processing aborted", logger.Err(err))
		writeError(w, r, http.StatusServiceUnavailable, "unavailable", "Request cancelled before the queue was processed")
		return
	}

	writeJSON(w, r, http.StatusOK, result.Message(), map[string]any{
		"operations":   result.Records,
		"deliveries":   result.Deliveries,
		"failed_sinks": result.FailedSinks,
	})
}

// handleDump handles GET /api/dump/{target}
func (s *Server) handleDump(w http.ResponseWriter, r *http.Request) {
	var dump func(m *management.Manager) string
	switch r.PathValue("target") {
	case "directory":
		dump = (*management.Manager).DirectoryDump
	case "stack":
		dump = (*management.Manager).UndoDump
	case "queue":
		dump = (*management.Manager).JournalDump
	case "statistics":
		dump = (*management.Manager).StatisticsDump
	default:
		writeError(w, r, http.StatusNotFound, "not_found", "Unknown dump target")
		return
	}

	var text string
	s.deps.Manager.Do(func(m *management.Manager) {
		text = dump(m)
	})
	writeText(w, http.StatusOK, text)
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// respond writes a facade (message, error) pair.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, okStatus, failStatus int, msg string, err error) {
	if err != nil {
		writeError(w, r, failStatus, errorCode(err), shared.Message(err))
		return
	}
	writeJSON(w, r, okStatus, msg, nil)
}

// errorCode maps a domain error kind to a stable code.
func errorCode(err error) string {
	switch {
	case shared.IsNotFound(err):
		return "not_found"
	case shared.IsAlreadyExists(err):
		return "already_exists"
	case shared.IsValidation(err):
		return "validation_error"
	case errors.Is(err, shared.ErrNothingToUndo):
		return "nothing_to_undo"
	case shared.IsInvalidState(err):
		return "invalid_state"
	default:
		return "internal_error"
	}
}

// decodeBody decodes a JSON object body, writing 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body too large")
			return false
		}
		writeError(w, r, http.StatusBadRequest, "invalid_json", "Request body must be a JSON object")
		return false
	}
	return true
}

// parseGrade accepts a JSON number or a string holding one.
func parseGrade(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, errors.New("grade is missing")
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(str), 64)
}

func stackViews(entries []undolog.Entry) []operationView {
	ops := make([]operationView, 0, len(entries))
	for _, e := range entries {
		ops = append(ops, operationView{
			OperationType: string(e.Kind),
			StudentID:     e.Snapshot.ID,
			StudentName:   e.Snapshot.Name,
		})
	}
	return ops
}

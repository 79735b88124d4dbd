// Package student содержит доменную модель студента и его табеля успеваемости.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package student

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alem-hub/reportcard/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GRADES
// ══════════════════════════════════════════════════════════════════════════════

const (
	// MinGrade - минимально допустимая оценка.
	MinGrade = 0.0
	// MaxGrade - максимально допустимая оценка.
	MaxGrade = 100.0
)

// ValidateGrade проверяет, что оценка лежит в диапазоне [0, 100].
func ValidateGrade(grade float64) error {
	if math.IsNaN(grade) || grade < MinGrade || grade > MaxGrade {
		return shared.ErrGradeOutOfRange
	}
	return nil
}

// ValidateSubject отклоняет пустое или состоящее из пробелов название предмета.
func ValidateSubject(subject string) error {
	if strings.TrimSpace(subject) == "" {
		return shared.ErrEmptySubject
	}
	return nil
}

// Round2 округляет значение до двух знаков после запятой.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student - студент с табелем успеваемости.
//
// Subjects и Grades - параллельные последовательности одинаковой длины:
// Grades[i] - оценка по предмету Subjects[i]. Названия предметов уникальны.
type Student struct {
	// ID - уникальный идентификатор, неизменяем после создания.
	ID string

	// Name - отображаемое имя.
	Name string

	// Subjects - предметы в порядке добавления.
	Subjects []string

	// Grades - оценки, параллельно Subjects.
	Grades []float64
}

// New создаёт студента с пустым табелем.
func New(id, name string) (*Student, error) {
	if strings.TrimSpace(id) == "" {
		return nil, shared.ErrEmptyStudentID
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.ErrEmptyStudentName
	}
	return &Student{
		ID:       id,
		Name:     name,
		Subjects: make([]string, 0),
		Grades:   make([]float64, 0),
	}, nil
}

// Equal сравнивает студентов по ID.
func (s *Student) Equal(other *Student) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.ID == other.ID
}

func (s *Student) indexOf(subject string) int {
	for i, name := range s.Subjects {
		if name == subject {
			return i
		}
	}
	return -1
}

// AddSubjectGrade добавляет предмет с оценкой в конец табеля.
// Возвращает false, если предмет уже есть.
func (s *Student) AddSubjectGrade(subject string, grade float64) bool {
	if s.indexOf(subject) >= 0 {
		return false
	}
	s.Subjects = append(s.Subjects, subject)
	s.Grades = append(s.Grades, grade)
	return true
}

// UpdateSubjectGrade меняет оценку по существующему предмету.
// Возвращает false, если предмета нет.
func (s *Student) UpdateSubjectGrade(subject string, grade float64) bool {
	i := s.indexOf(subject)
	if i < 0 {
		return false
	}
	s.Grades[i] = grade
	return true
}

// Grade возвращает оценку по предмету.
func (s *Student) Grade(subject string) (float64, bool) {
	i := s.indexOf(subject)
	if i < 0 {
		return 0, false
	}
	return s.Grades[i], true
}

// HasSubjects возвращает true, если в табеле есть хотя бы один предмет.
func (s *Student) HasSubjects() bool {
	return len(s.Subjects) > 0
}

// Average - средняя оценка; 0 для пустого табеля.
func (s *Student) Average() float64 {
	if len(s.Grades) == 0 {
		return 0.0
	}
	var sum float64
	for _, g := range s.Grades {
		sum += g
	}
	return sum / float64(len(s.Grades))
}

// Clone возвращает независимую глубокую копию (снимок) студента.
func (s *Student) Clone() *Student {
	if s == nil {
		return nil
	}
	c := &Student{
		ID:       s.ID,
		Name:     s.Name,
		Subjects: make([]string, len(s.Subjects)),
		Grades:   make([]float64, len(s.Grades)),
	}
	copy(c.Subjects, s.Subjects)
	copy(c.Grades, s.Grades)
	return c
}

// ══════════════════════════════════════════════════════════════════════════════
// PRESENTATION
// ══════════════════════════════════════════════════════════════════════════════

// FormatGrade печатает оценку как число с плавающей точкой: 90 -> "90.0",
// 87.5 -> "87.5".
func FormatGrade(g float64) string {
	out := strconv.FormatFloat(g, 'f', -1, 64)
	if !strings.Contains(out, ".") {
		out += ".0"
	}
	return out
}

// ReportCard возвращает текстовый табель.
func (s *Student) ReportCard() string {
	if len(s.Subjects) == 0 {
		return "No subjects added yet."
	}

	var b strings.Builder
	line := strings.Repeat("-", 40)
	b.WriteString("\nReport Card:\n")
	b.WriteString(line + "\n")
	for i := range s.Subjects {
		fmt.Fprintf(&b, "%s: %s\n", s.Subjects[i], FormatGrade(s.Grades[i]))
	}
	b.WriteString(line + "\n")
	fmt.Fprintf(&b, "Average: %.2f\n", s.Average())
	return b.String()
}

// Display возвращает карточку студента вместе с табелем.
func (s *Student) Display() string {
	var b strings.Builder
	line := strings.Repeat("=", 50)
	b.WriteString("\n" + line + "\n")
	fmt.Fprintf(&b, "Student ID: %s\n", s.ID)
	fmt.Fprintf(&b, "Student Name: %s\n", s.Name)
	b.WriteString(s.ReportCard())
	b.WriteString(line + "\n")
	return b.String()
}

// String implements fmt.Stringer.
func (s *Student) String() string {
	return fmt.Sprintf("%s (ID: %s)", s.Name, s.ID)
}

// View - сериализуемый снимок студента для API.
type View struct {
	StudentID string    `json:"student_id"`
	Name      string    `json:"name"`
	Subjects  []string  `json:"subjects"`
	Grades    []float64 `json:"grades"`
	Average   float64   `json:"average"`
}

// NewView строит View; слайсы копируются.
func NewView(s *Student) View {
	c := s.Clone()
	return View{
		StudentID: c.ID,
		Name:      c.Name,
		Subjects:  c.Subjects,
		Grades:    c.Grades,
		Average:   Round2(c.Average()),
	}
}

// NewViews строит View для каждого студента, сохраняя порядок.
func NewViews(students []*Student) []View {
	views := make([]View, 0, len(students))
	for _, s := range students {
		views = append(views, NewView(s))
	}
	return views
}

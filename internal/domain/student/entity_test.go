package student

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/reportcard/internal/domain/shared"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		sname   string
		wantErr error
	}{
		{name: "valid", id: "S1", sname: "Alice"},
		{name: "empty id", id: "", sname: "Alice", wantErr: shared.ErrEmptyStudentID},
		{name: "blank id", id: "   ", sname: "Alice", wantErr: shared.ErrEmptyStudentID},
		{name: "empty name", id: "S1", sname: "", wantErr: shared.ErrEmptyStudentName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.id, tt.sname)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, s.ID)
			assert.Empty(t, s.Subjects)
			assert.Empty(t, s.Grades)
		})
	}
}

func TestValidateGrade(t *testing.T) {
	tests := []struct {
		grade float64
		ok    bool
	}{
		{0, true},
		{100, true},
		{87.5, true},
		{-0.1, false},
		{100.01, false},
		{150, false},
		{math.NaN(), false},
	}

	for _, tt := range tests {
		err := ValidateGrade(tt.grade)
		if tt.ok {
			assert.NoError(t, err, "grade %v", tt.grade)
			continue
		}
		assert.ErrorIs(t, err, shared.ErrValueOutOfRange, "grade %v", tt.grade)
		assert.Equal(t, "Grade must be between 0 and 100!", shared.Message(err))
	}
}

func TestValidateSubject(t *testing.T) {
	assert.NoError(t, ValidateSubject("Math"))
	for _, subject := range []string{"", " ", "\t\n"} {
		err := ValidateSubject(subject)
		assert.ErrorIs(t, err, shared.ErrEmptyValue, "subject %q", subject)
		assert.Equal(t, "Subject cannot be empty!", shared.Message(err))
	}
}

func TestStudent_Grades(t *testing.T) {
	s, err := New("S1", "Alice")
	require.NoError(t, err)

	assert.Equal(t, 0.0, s.Average())
	assert.False(t, s.HasSubjects())

	assert.True(t, s.AddSubjectGrade("Math", 90))
	assert.True(t, s.AddSubjectGrade("Sci", 70))
	assert.False(t, s.AddSubjectGrade("Math", 10), "duplicate subject")

	assert.Equal(t, []string{"Math", "Sci"}, s.Subjects)
	assert.Equal(t, []float64{90, 70}, s.Grades)
	assert.InDelta(t, 80.0, s.Average(), 1e-9)

	assert.True(t, s.UpdateSubjectGrade("Math", 100))
	assert.False(t, s.UpdateSubjectGrade("Art", 50))
	assert.InDelta(t, 85.0, s.Average(), 1e-9)

	g, ok := s.Grade("Math")
	assert.True(t, ok)
	assert.Equal(t, 100.0, g)

	_, ok = s.Grade("Art")
	assert.False(t, ok)
}

func TestStudent_CloneIsIndependent(t *testing.T) {
	s, _ := New("S1", "Alice")
	s.AddSubjectGrade("Math", 90)

	snapshot := s.Clone()
	if diff := cmp.Diff(s, snapshot); diff != "" {
		t.Fatalf("clone differs (-orig +clone):\n%s", diff)
	}

	s.UpdateSubjectGrade("Math", 100)
	s.AddSubjectGrade("Sci", 70)
	s.Name = "Alicia"

	want := &Student{ID: "S1", Name: "Alice", Subjects: []string{"Math"}, Grades: []float64{90}}
	if diff := cmp.Diff(want, snapshot); diff != "" {
		t.Errorf("snapshot changed after edits (-want +got):\n%s", diff)
	}

	var nilStudent *Student
	assert.Nil(t, nilStudent.Clone())
}

func TestStudent_Equal(t *testing.T) {
	a, _ := New("S1", "Alice")
	b, _ := New("S1", "Someone else")
	c, _ := New("S2", "Alice")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}

func TestStudent_ReportCard(t *testing.T) {
	s, _ := New("S1", "Alice")
	assert.Equal(t, "No subjects added yet.", s.ReportCard())

	s.AddSubjectGrade("Math", 90)
	s.AddSubjectGrade("Sci", 87.5)

	card := s.ReportCard()
	assert.Contains(t, card, "Math: 90.0\n")
	assert.Contains(t, card, "Sci: 87.5\n")
	assert.Contains(t, card, "Average: 88.75\n")

	display := s.Display()
	assert.Contains(t, display, "Student ID: S1\n")
	assert.Contains(t, display, "Student Name: Alice\n")
	assert.Contains(t, display, card)
	assert.Equal(t, "Alice (ID: S1)", s.String())
}

func TestNewView(t *testing.T) {
	s, _ := New("S1", "Alice")
	s.AddSubjectGrade("Math", 90)
	s.AddSubjectGrade("Sci", 75)
	s.AddSubjectGrade("Art", 70)

	v := NewView(s)
	want := View{
		StudentID: "S1",
		Name:      "Alice",
		Subjects:  []string{"Math", "Sci", "Art"},
		Grades:    []float64{90, 75, 70},
		Average:   78.33,
	}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Errorf("NewView() mismatch (-want +got):\n%s", diff)
	}

	v.Grades[0] = 0
	assert.Equal(t, 90.0, s.Grades[0], "view must not alias the student")

	views := NewViews([]*Student{s, s})
	assert.Len(t, views, 2)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 78.33, Round2(235.0/3))
	assert.Equal(t, 85.0, Round2(85))
	assert.Equal(t, "90.0", FormatGrade(90))
	assert.Equal(t, "0.0", FormatGrade(0))
	assert.Equal(t, "87.5", FormatGrade(87.5))
	assert.Equal(t, "85.25", FormatGrade(85.25))
}

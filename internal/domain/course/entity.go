// Package course содержит доменную модель курса, дисциплины и записи
// студента на курс. В ядре геймификации курсы нужны рейтинговому движку
// (рейтинг по курсу), а дисциплины - каталогу призов (приз принадлежит
// дисциплине).
package course

import (
	"errors"
	"strings"
	"time"
)

// Course - курс, объединяющий дисциплины и записанных студентов.
type Course struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// Name - название курса.
	Name string

	// CreatedAt - время создания записи.
	CreatedAt time.Time
}

// Subject - дисциплина курса. Владеет призами и проектами.
type Subject struct {
	// ID - внутренний уникальный идентификатор.
	ID string

	// CourseID - курс, которому принадлежит дисциплина.
	CourseID string

	// Name - название дисциплины.
	Name string

	// CreatedAt - время создания записи.
	CreatedAt time.Time
}

// Enrollment - запись студента на курс.
type Enrollment struct {
	// ID - внутренний уникальный идентификатор.
	ID string

	// CourseID - курс.
	CourseID string

	// StudentID - студент.
	StudentID string

	// EnrolledAt - время записи.
	EnrolledAt time.Time
}

// ErrInvalidName - невалидное название курса или дисциплины.
var ErrInvalidName = errors.New("invalid name: must be 1-150 chars")

// NewCourse создаёт новый курс с валидацией.
func NewCourse(id, name string) (*Course, error) {
	if id == "" {
		return nil, errors.New("course id is required")
	}

	name = strings.TrimSpace(name)
	if len(name) == 0 || len(name) > 150 {
		return nil, ErrInvalidName
	}

	return &Course{ID: id, Name: name, CreatedAt: time.Now().UTC()}, nil
}

// NewSubject создаёт новую дисциплину с валидацией.
func NewSubject(id, courseID, name string) (*Subject, error) {
	if id == "" {
		return nil, errors.New("subject id is required")
	}
	if courseID == "" {
		return nil, errors.New("course id is required")
	}

	name = strings.TrimSpace(name)
	if len(name) == 0 || len(name) > 150 {
		return nil, ErrInvalidName
	}

	return &Subject{ID: id, CourseID: courseID, Name: name, CreatedAt: time.Now().UTC()}, nil
}

// NewEnrollment создаёт новую запись студента на курс.
func NewEnrollment(id, courseID, studentID string) (*Enrollment, error) {
	if id == "" {
		return nil, errors.New("enrollment id is required")
	}
	if courseID == "" {
		return nil, errors.New("course id is required")
	}
	if studentID == "" {
		return nil, errors.New("student id is required")
	}

	return &Enrollment{ID: id, CourseID: courseID, StudentID: studentID, EnrolledAt: time.Now().UTC()}, nil
}

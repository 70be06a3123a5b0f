package models

import (
	"strings"
	"time"

	id "campus/pkg/domain"
	dErrors "campus/pkg/domain-errors"
)

// Student is a pupil record. It belongs to exactly one school and optionally
// to a class within it.
type Student struct {
	ID          id.StudentID `json:"id"`
	SchoolID    id.SchoolID  `json:"school_id"`
	ClassID     id.ClassID   `json:"class_id,omitempty"`
	UserID      id.UserID    `json:"user_id,omitempty"`
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	AdmissionNo string       `json:"admission_no"`
	CreatedAt   time.Time    `json:"created_at"`
}

// NewStudent validates and constructs a student record.
func NewStudent(studentID id.StudentID, schoolID id.SchoolID, classID id.ClassID, firstName, lastName, admissionNo string, now time.Time) (*Student, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "student first name is required")
	}
	if schoolID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "student school is required")
	}
	return &Student{
		ID:          studentID,
		SchoolID:    schoolID,
		ClassID:     classID,
		FirstName:   firstName,
		LastName:    lastName,
		AdmissionNo: strings.TrimSpace(admissionNo),
		CreatedAt:   now,
	}, nil
}

// Class is a section within a school, taught by one teacher.
type Class struct {
	ID        id.ClassID  `json:"id"`
	SchoolID  id.SchoolID `json:"school_id"`
	Name      string      `json:"name"`
	TeacherID id.UserID   `json:"teacher_id,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewClass validates and constructs a class.
func NewClass(classID id.ClassID, schoolID id.SchoolID, name string, teacherID id.UserID, now time.Time) (*Class, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "class name is required")
	}
	if schoolID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "class school is required")
	}
	return &Class{
		ID:        classID,
		SchoolID:  schoolID,
		Name:      name,
		TeacherID: teacherID,
		CreatedAt: now,
	}, nil
}

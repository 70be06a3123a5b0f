package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"campus/internal/student/models"
	id "campus/pkg/domain"
	"campus/pkg/platform/sentinel"
)

// Error contract (all student stores):
// - Return sentinel.ErrNotFound (wrapped) when a record is absent OR lives in
//   a different school; callers must not be able to tell the two apart
// - Wrap infrastructure failures with context

// InMemoryStudentStore stores students and classes in memory for tests and
// development.
type InMemoryStudentStore struct {
	mu       sync.RWMutex
	students map[id.StudentID]*models.Student
	classes  map[id.ClassID]*models.Class
}

// NewInMemoryStudentStore constructs an empty in-memory student store.
func NewInMemoryStudentStore() *InMemoryStudentStore {
	return &InMemoryStudentStore{
		students: make(map[id.StudentID]*models.Student),
		classes:  make(map[id.ClassID]*models.Class),
	}
}

func (s *InMemoryStudentStore) CreateStudent(_ context.Context, student *models.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.students[student.ID]; ok {
		return fmt.Errorf("student %s: %w", student.ID, sentinel.ErrConflict)
	}
	copied := *student
	s.students[student.ID] = &copied
	return nil
}

func (s *InMemoryStudentStore) FindStudent(_ context.Context, schoolID id.SchoolID, studentID id.StudentID) (*models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	student, ok := s.students[studentID]
	if !ok || student.SchoolID != schoolID {
		return nil, fmt.Errorf("student %s: %w", studentID, sentinel.ErrNotFound)
	}
	copied := *student
	return &copied, nil
}

func (s *InMemoryStudentStore) ListStudents(_ context.Context, schoolID id.SchoolID, classID id.ClassID) ([]*models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Student, 0)
	for _, student := range s.students {
		if student.SchoolID != schoolID {
			continue
		}
		if !classID.IsNil() && student.ClassID != classID {
			continue
		}
		copied := *student
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AdmissionNo < out[j].AdmissionNo })
	return out, nil
}

// SchoolOfStudent supports tenant resolution for student principals.
func (s *InMemoryStudentStore) SchoolOfStudent(_ context.Context, studentID id.StudentID) (id.SchoolID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	student, ok := s.students[studentID]
	if !ok {
		return id.SchoolID{}, fmt.Errorf("student %s: %w", studentID, sentinel.ErrNotFound)
	}
	return student.SchoolID, nil
}

func (s *InMemoryStudentStore) CreateClass(_ context.Context, class *models.Class) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.classes[class.ID]; ok {
		return fmt.Errorf("class %s: %w", class.ID, sentinel.ErrConflict)
	}
	copied := *class
	s.classes[class.ID] = &copied
	return nil
}

func (s *InMemoryStudentStore) ListClasses(_ context.Context, schoolID id.SchoolID) ([]*models.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Class, 0)
	for _, class := range s.classes {
		if class.SchoolID != schoolID {
			continue
		}
		copied := *class
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemoryStudentStore) FindClass(_ context.Context, schoolID id.SchoolID, classID id.ClassID) (*models.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	class, ok := s.classes[classID]
	if !ok || class.SchoolID != schoolID {
		return nil, fmt.Errorf("class %s: %w", classID, sentinel.ErrNotFound)
	}
	copied := *class
	return &copied, nil
}

// SchoolOfClassTeacher supports tenant resolution for teachers reachable
// only through a class they teach.
func (s *InMemoryStudentStore) SchoolOfClassTeacher(_ context.Context, userID id.UserID) (id.SchoolID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, class := range s.classes {
		if class.TeacherID == userID {
			return class.SchoolID, nil
		}
	}
	return id.SchoolID{}, fmt.Errorf("taught class for %s: %w", userID, sentinel.ErrNotFound)
}

package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"campus/internal/authz"
	"campus/internal/identity"
	"campus/internal/student/store"
	"campus/internal/tenancy"
	id "campus/pkg/domain"
	dErrors "campus/pkg/domain-errors"
)

type StudentServiceSuite struct {
	suite.Suite
	ctx      context.Context
	schoolID id.SchoolID
	svc      *Service
}

func (s *StudentServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.schoolID = id.SchoolID(uuid.New())
	// Nil cache: the service must behave identically without Redis.
	s.svc = New(
		store.NewInMemoryStudentStore(),
		tenancy.New(nil, nil, nil, nil, nil),
		authz.New(),
		nil,
	)
}

func TestStudentServiceSuite(t *testing.T) {
	suite.Run(t, new(StudentServiceSuite))
}

func (s *StudentServiceSuite) principal(role identity.Role) *identity.Principal {
	return &identity.Principal{
		UserID:   id.UserID(uuid.New()),
		Role:     role,
		SchoolID: s.schoolID,
	}
}

func (s *StudentServiceSuite) TestCreateStudent() {
	admin := s.principal(identity.RoleSchoolAdmin)

	s.Run("creates a student in the resolved school", func() {
		student, err := s.svc.CreateStudent(s.ctx, admin, CreateStudentInput{
			FirstName: "Ravi", LastName: "Menon", AdmissionNo: "B-101",
		})
		s.Require().NoError(err)
		s.Equal(s.schoolID, student.SchoolID)
	})

	s.Run("rejects an unknown class id", func() {
		_, err := s.svc.CreateStudent(s.ctx, admin, CreateStudentInput{
			ClassID:   id.ClassID(uuid.New()),
			FirstName: "Ravi", LastName: "Menon", AdmissionNo: "B-102",
		})
		s.Require().True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("teachers may not create students", func() {
		_, err := s.svc.CreateStudent(s.ctx, s.principal(identity.RoleTeacher), CreateStudentInput{
			FirstName: "Ravi", LastName: "Menon", AdmissionNo: "B-103",
		})
		s.Require().True(dErrors.HasCode(err, dErrors.CodeRoleNotPermitted))
	})

	s.Run("rejects missing names", func() {
		_, err := s.svc.CreateStudent(s.ctx, admin, CreateStudentInput{AdmissionNo: "B-104"})
		s.Require().True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *StudentServiceSuite) TestReads() {
	admin := s.principal(identity.RoleSchoolAdmin)
	class, err := s.svc.CreateClass(s.ctx, admin, CreateClassInput{Name: "8C", TeacherID: id.UserID(uuid.New())})
	s.Require().NoError(err)

	inClass, err := s.svc.CreateStudent(s.ctx, admin, CreateStudentInput{
		ClassID: class.ID, FirstName: "Meera", LastName: "Pillai", AdmissionNo: "C-001",
	})
	s.Require().NoError(err)
	_, err = s.svc.CreateStudent(s.ctx, admin, CreateStudentInput{
		FirstName: "Arjun", LastName: "Nair", AdmissionNo: "C-002",
	})
	s.Require().NoError(err)

	s.Run("teachers read the directory", func() {
		teacher := s.principal(identity.RoleTeacher)
		students, err := s.svc.ListStudents(s.ctx, teacher, id.ClassID{})
		s.Require().NoError(err)
		s.Len(students, 2)

		filtered, err := s.svc.ListStudents(s.ctx, teacher, class.ID)
		s.Require().NoError(err)
		s.Require().Len(filtered, 1)
		s.Equal(inClass.ID, filtered[0].ID)
	})

	s.Run("students may not read the directory", func() {
		_, err := s.svc.ListStudents(s.ctx, s.principal(identity.RoleStudent), id.ClassID{})
		s.Require().True(dErrors.HasCode(err, dErrors.CodeRoleNotPermitted))
	})

	s.Run("another school sees nothing", func() {
		foreign := s.principal(identity.RoleSchoolAdmin)
		foreign.SchoolID = id.SchoolID(uuid.New())

		students, err := s.svc.ListStudents(s.ctx, foreign, id.ClassID{})
		s.Require().NoError(err)
		s.Empty(students)

		_, err = s.svc.GetStudent(s.ctx, foreign, inClass.ID)
		s.Require().True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("classes list", func() {
		classes, err := s.svc.ListClasses(s.ctx, s.principal(identity.RoleTeacher))
		s.Require().NoError(err)
		s.Require().Len(classes, 1)
		s.Equal("8C", classes[0].Name)
	})
}

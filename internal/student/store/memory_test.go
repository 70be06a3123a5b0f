package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus/internal/student/models"
	id "campus/pkg/domain"
	"campus/pkg/platform/sentinel"
)

func seedStudent(t *testing.T, s *InMemoryStudentStore, schoolID id.SchoolID, classID id.ClassID, admissionNo string) *models.Student {
	t.Helper()
	student, err := models.NewStudent(
		id.StudentID(uuid.New()), schoolID, classID,
		"Asha", "Iyer", admissionNo, time.Now(),
	)
	require.NoError(t, err)
	require.NoError(t, s.CreateStudent(context.Background(), student))
	return student
}

func seedClass(t *testing.T, s *InMemoryStudentStore, schoolID id.SchoolID, name string, teacherID id.UserID) *models.Class {
	t.Helper()
	class, err := models.NewClass(id.ClassID(uuid.New()), schoolID, name, teacherID, time.Now())
	require.NoError(t, err)
	require.NoError(t, s.CreateClass(context.Background(), class))
	return class
}

func TestStudentStore_Scoping(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStudentStore()
	schoolID := id.SchoolID(uuid.New())
	student := seedStudent(t, store, schoolID, id.ClassID{}, "A-001")

	t.Run("finds within the school", func(t *testing.T) {
		found, err := store.FindStudent(ctx, schoolID, student.ID)
		require.NoError(t, err)
		assert.Equal(t, "A-001", found.AdmissionNo)
	})

	t.Run("cross-school read is not found", func(t *testing.T) {
		_, err := store.FindStudent(ctx, id.SchoolID(uuid.New()), student.ID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("class filter narrows the list", func(t *testing.T) {
		class := seedClass(t, store, schoolID, "6A", id.UserID(uuid.New()))
		inClass := seedStudent(t, store, schoolID, class.ID, "A-002")

		all, err := store.ListStudents(ctx, schoolID, id.ClassID{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		filtered, err := store.ListStudents(ctx, schoolID, class.ID)
		require.NoError(t, err)
		require.Len(t, filtered, 1)
		assert.Equal(t, inClass.ID, filtered[0].ID)
	})
}

// The two resolution lookups are deliberately unscoped: they are how a school
// is discovered in the first place.
func TestStudentStore_ResolutionLookups(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStudentStore()
	schoolID := id.SchoolID(uuid.New())
	teacherID := id.UserID(uuid.New())
	student := seedStudent(t, store, schoolID, id.ClassID{}, "A-001")
	seedClass(t, store, schoolID, "7B", teacherID)

	got, err := store.SchoolOfStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, schoolID, got)

	got, err = store.SchoolOfClassTeacher(ctx, teacherID)
	require.NoError(t, err)
	assert.Equal(t, schoolID, got)

	_, err = store.SchoolOfStudent(ctx, id.StudentID(uuid.New()))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	_, err = store.SchoolOfClassTeacher(ctx, id.UserID(uuid.New()))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

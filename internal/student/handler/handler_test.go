package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus/internal/identity"
	"campus/internal/student/models"
	"campus/internal/student/service"
	id "campus/pkg/domain"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/testutil"
)

// fakeService records calls and returns canned results, isolating the
// decode/encode layer from the service stack.
type fakeService struct {
	students []*models.Student
	student  *models.Student
	class    *models.Class
	err      error

	lastClassID id.ClassID
	lastInput   service.CreateStudentInput
}

func (f *fakeService) ListStudents(_ context.Context, _ *identity.Principal, classID id.ClassID) ([]*models.Student, error) {
	f.lastClassID = classID
	return f.students, f.err
}

func (f *fakeService) GetStudent(_ context.Context, _ *identity.Principal, _ id.StudentID) (*models.Student, error) {
	return f.student, f.err
}

func (f *fakeService) CreateStudent(_ context.Context, _ *identity.Principal, input service.CreateStudentInput) (*models.Student, error) {
	f.lastInput = input
	return f.student, f.err
}

func (f *fakeService) ListClasses(_ context.Context, _ *identity.Principal) ([]*models.Class, error) {
	return nil, f.err
}

func (f *fakeService) CreateClass(_ context.Context, _ *identity.Principal, _ service.CreateClassInput) (*models.Class, error) {
	return f.class, f.err
}

func newRouter(svc Service) http.Handler {
	r := chi.NewRouter()
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return r
}

func anyPrincipal() *identity.Principal {
	return &identity.Principal{UserID: id.UserID(uuid.New()), Role: identity.RoleSchoolAdmin}
}

func TestHandleListStudents(t *testing.T) {
	t.Run("passes the class filter through", func(t *testing.T) {
		classID := id.ClassID(uuid.New())
		svc := &fakeService{students: []*models.Student{}}
		router := newRouter(svc)

		req := testutil.WithPrincipal(
			testutil.NewRequest(t, http.MethodGet, "/students?class_id="+classID.String()),
			anyPrincipal(),
		)
		rec := testutil.DoRequest(router, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, classID, svc.lastClassID)
	})

	t.Run("rejects a malformed class filter before the service", func(t *testing.T) {
		svc := &fakeService{}
		router := newRouter(svc)

		req := testutil.WithPrincipal(
			testutil.NewRequest(t, http.MethodGet, "/students?class_id=not-a-uuid"),
			anyPrincipal(),
		)
		rec := testutil.DoRequest(router, req)

		testutil.AssertStatusAndError(t, rec, http.StatusBadRequest, "invalid_input")
		assert.True(t, svc.lastClassID.IsNil())
	})
}

func TestHandleCreateStudent(t *testing.T) {
	now := time.Now()
	created, err := models.NewStudent(
		id.StudentID(uuid.New()), id.SchoolID(uuid.New()), id.ClassID{},
		"Asha", "Iyer", "A-001", now,
	)
	require.NoError(t, err)

	t.Run("decodes, delegates and returns 201", func(t *testing.T) {
		svc := &fakeService{student: created}
		router := newRouter(svc)

		req := testutil.WithPrincipal(testutil.NewJSONRequest(t, http.MethodPost, "/students", map[string]string{
			"first_name": "Asha", "last_name": "Iyer", "admission_no": "A-001",
		}), anyPrincipal())
		req = testutil.WithRequestID(req, "req-1")
		req = testutil.WithRequestTime(req, now)
		rec := testutil.DoRequest(router, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		got := testutil.UnmarshalResponse[models.Student](t, rec)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "Asha", svc.lastInput.FirstName)
	})

	t.Run("missing required field never reaches the service", func(t *testing.T) {
		svc := &fakeService{}
		router := newRouter(svc)

		req := testutil.WithPrincipal(testutil.NewJSONRequest(t, http.MethodPost, "/students", map[string]string{
			"last_name": "Iyer",
		}), anyPrincipal())
		rec := testutil.DoRequest(router, req)

		testutil.AssertStatusAndError(t, rec, http.StatusBadRequest, "validation_failed")
		assert.Empty(t, svc.lastInput.FirstName)
	})

	t.Run("malformed JSON is invalid input", func(t *testing.T) {
		router := newRouter(&fakeService{})

		req := testutil.NewRequest(t, http.MethodPost, "/students")
		req.Body = io.NopCloser(strings.NewReader("{not json"))
		req = testutil.WithPrincipal(req, anyPrincipal())
		rec := testutil.DoRequest(router, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("service errors map through the envelope", func(t *testing.T) {
		svc := &fakeService{err: dErrors.New(dErrors.CodeRoleNotPermitted, "role student may not perform this operation")}
		router := newRouter(svc)

		req := testutil.WithPrincipal(testutil.NewJSONRequest(t, http.MethodPost, "/students", map[string]string{
			"first_name": "Asha", "admission_no": "A-001",
		}), anyPrincipal())
		rec := testutil.DoRequest(router, req)

		testutil.AssertStatusAndError(t, rec, http.StatusForbidden, "role_not_permitted")
	})
}

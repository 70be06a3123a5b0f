package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"campus/internal/authz"
	certificatehandler "campus/internal/certificate/handler"
	certificateservice "campus/internal/certificate/service"
	certificatestore "campus/internal/certificate/store"
	"campus/internal/identity"
	identitystore "campus/internal/identity/store"
	leavehandler "campus/internal/leave/handler"
	leaveservice "campus/internal/leave/service"
	leavestore "campus/internal/leave/store"
	"campus/internal/notify"
	schoolhandler "campus/internal/school/handler"
	schoolservice "campus/internal/school/service"
	schoolstore "campus/internal/school/store"
	"campus/internal/session"
	studenthandler "campus/internal/student/handler"
	studentservice "campus/internal/student/service"
	studentstore "campus/internal/student/store"
	"campus/internal/tenancy"
	id "campus/pkg/domain"
)

const (
	adminToken = "itest-admin-token"
	baseDomain = "campus.test"
)

// RouterSuite exercises the assembled service end to end: admin provisioning,
// session auth, tenant resolution and the approval workflows, all over HTTP
// against in-memory stores.
type RouterSuite struct {
	suite.Suite
	handler  http.Handler
	sessions *session.Service
	schools  *schoolstore.InMemorySchoolStore
	students *studentstore.InMemoryStudentStore
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.schools = schoolstore.NewInMemorySchoolStore()
	s.students = studentstore.NewInMemoryStudentStore()
	accounts := identitystore.NewInMemoryAccountStore()

	resolver := tenancy.New(s.schools, accounts, s.students, s.schools, s.students, tenancy.WithLogger(logger))
	guard := authz.New(authz.WithLogger(logger))
	s.sessions = session.NewService("itest-signing-key", "campus", "campus-api")
	notifier := notify.NewBestEffort(notify.NewInMemoryNotifier(), logger)

	studentSvc := studentservice.New(s.students, resolver, guard, nil, studentservice.WithLogger(logger))
	leaveSvc := leaveservice.New(leavestore.NewInMemoryLeaveStore(), resolver, guard, notifier, leaveservice.WithLogger(logger))
	certificateSvc := certificateservice.New(
		certificatestore.NewInMemoryCertificateStore(), s.students, resolver, guard, nil, notifier,
		certificateservice.WithLogger(logger),
	)
	schoolSvc := schoolservice.New(s.schools, schoolservice.WithLogger(logger))

	s.handler = New(Options{
		Logger:       logger,
		Sessions:     s.sessions,
		BaseDomain:   baseDomain,
		AdminToken:   adminToken,
		Students:     studenthandler.New(studentSvc, logger),
		Leave:        leavehandler.New(leaveSvc, logger),
		Certificates: certificatehandler.New(certificateSvc, logger),
		Schools:      schoolhandler.New(schoolSvc, logger),
	})
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

// do sends a request and decodes the JSON response into out when non-nil.
func (s *RouterSuite) do(method, path string, body any, out any, mutate func(*http.Request)) *httptest.ResponseRecorder {
	s.T().Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func (s *RouterSuite) asAdmin(req *http.Request) {
	req.Header.Set("X-Admin-Token", adminToken)
}

func (s *RouterSuite) asPrincipal(principal *identity.Principal) func(*http.Request) {
	token, err := s.sessions.Issue(principal, time.Hour)
	s.Require().NoError(err)
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// createSchool provisions a school through the admin API.
func (s *RouterSuite) createSchool(name, slug string) id.SchoolID {
	s.T().Helper()
	var school struct {
		ID string `json:"id"`
	}
	rec := s.do(http.MethodPost, "/admin/schools", map[string]string{"name": name, "slug": slug}, &school, s.asAdmin)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	schoolID, err := id.ParseSchoolID(school.ID)
	s.Require().NoError(err)
	return schoolID
}

func (s *RouterSuite) errorCode(rec *httptest.ResponseRecorder) string {
	s.T().Helper()
	var envelope struct {
		Error string `json:"error"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Error
}

func (s *RouterSuite) TestAdminProvisioning() {
	s.Run("creates and fetches a school", func() {
		schoolID := s.createSchool("Green Valley High", "green-valley")

		var school struct {
			Slug   string `json:"slug"`
			Status string `json:"status"`
		}
		rec := s.do(http.MethodGet, "/admin/schools/"+schoolID.String(), nil, &school, s.asAdmin)
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Equal("green-valley", school.Slug)
		s.Equal("active", school.Status)
	})

	s.Run("rejects a missing admin token", func() {
		rec := s.do(http.MethodPost, "/admin/schools", map[string]string{"name": "X", "slug": "x"}, nil, nil)
		s.Require().Equal(http.StatusUnauthorized, rec.Code)
		s.Equal("unauthenticated", s.errorCode(rec))
	})

	s.Run("duplicate slug surfaces as conflict", func() {
		s.createSchool("First", "dup-slug")
		rec := s.do(http.MethodPost, "/admin/schools", map[string]string{"name": "Second", "slug": "dup-slug"}, nil, s.asAdmin)
		s.Require().Equal(http.StatusConflict, rec.Code)
		s.Equal("conflict", s.errorCode(rec))
	})
}

func (s *RouterSuite) TestSessionBoundary() {
	s.Run("no token", func() {
		rec := s.do(http.MethodGet, "/students", nil, nil, nil)
		s.Require().Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("expired token", func() {
		principal := &identity.Principal{UserID: id.UserID(uuid.New()), Role: identity.RoleTeacher}
		token, err := s.sessions.Issue(principal, -time.Minute)
		s.Require().NoError(err)

		rec := s.do(http.MethodGet, "/students", nil, nil, func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+token)
		})
		s.Require().Equal(http.StatusUnauthorized, rec.Code)
		s.Equal("unauthenticated", s.errorCode(rec))
	})
}

func (s *RouterSuite) TestStudentDirectory() {
	schoolID := s.createSchool("Hillside", "hillside")
	admin := &identity.Principal{UserID: id.UserID(uuid.New()), Role: identity.RoleSchoolAdmin, SchoolID: schoolID}

	var class struct {
		ID string `json:"id"`
	}
	rec := s.do(http.MethodPost, "/classes", map[string]string{"name": "6A"}, &class, s.asPrincipal(admin))
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/students", map[string]string{
		"class_id": class.ID, "first_name": "Asha", "last_name": "Iyer", "admission_no": "A-001",
	}, nil, s.asPrincipal(admin))
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	s.Run("lists by class", func() {
		var students []struct {
			AdmissionNo string `json:"admission_no"`
		}
		rec := s.do(http.MethodGet, "/students?class_id="+class.ID, nil, &students, s.asPrincipal(admin))
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Require().Len(students, 1)
		s.Equal("A-001", students[0].AdmissionNo)
	})

	s.Run("students may not read the directory", func() {
		student := &identity.Principal{UserID: id.UserID(uuid.New()), Role: identity.RoleStudent, SchoolID: schoolID}
		rec := s.do(http.MethodGet, "/students", nil, nil, s.asPrincipal(student))
		s.Require().Equal(http.StatusForbidden, rec.Code)
		s.Equal("role_not_permitted", s.errorCode(rec))
	})

	s.Run("another school's admin sees an empty directory", func() {
		otherID := s.createSchool("Lakeside", "lakeside")
		other := &identity.Principal{UserID: id.UserID(uuid.New()), Role: identity.RoleSchoolAdmin, SchoolID: otherID}

		var students []json.RawMessage
		rec := s.do(http.MethodGet, "/students", nil, &students, s.asPrincipal(other))
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Empty(students)
	})
}

// TestTenantResolutionOverHTTP covers principals whose tokens predate school
// claims: the slug hint and the relation fallbacks kick in per request.
func (s *RouterSuite) TestTenantResolutionOverHTTP() {
	schoolID := s.createSchool("Riverside", "riverside")

	s.Run("staff relation resolves a claimless teacher", func() {
		teacher := &identity.Principal{UserID: id.UserID(uuid.New()), Role: identity.RoleTeacher}
		rec := s.do(http.MethodPost, "/admin/schools/"+schoolID.String()+"/staff",
			map[string]string{"user_id": teacher.UserID.String()}, nil, s.asAdmin)
		s.Require().Equal(http.StatusNoContent, rec.Code, rec.Body.String())

		rec = s.do(http.MethodGet, "/students", nil, nil, s.asPrincipal(teacher))
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	})

	s.Run("slug hint resolves via subdomain", func() {
		admin := &identity.Principal{UserID: id.UserID(uuid.New()), Role: identity.RoleSchoolAdmin}
		withSession := s.asPrincipal(admin)
		rec := s.do(http.MethodGet, "/students", nil, nil, func(req *http.Request) {
			withSession(req)
			req.Host = "riverside." + baseDomain
		})
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	})

	s.Run("no claim and no relation is tenant not found", func() {
		orphan := &identity.Principal{UserID: id.UserID(uuid.New()), Role: identity.RoleTeacher}
		rec := s.do(http.MethodGet, "/students", nil, nil, s.asPrincipal(orphan))
		s.Require().Equal(http.StatusNotFound, rec.Code)
		s.Equal("tenant_not_found", s.errorCode(rec))
	})

	s.Run("deactivated school stops resolving by slug", func() {
		rec := s.do(http.MethodPost, "/admin/schools/"+schoolID.String()+"/deactivate", nil, nil, s.asAdmin)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		admin := &identity.Principal{UserID: id.UserID(uuid.New()), Role: identity.RoleSchoolAdmin}
		withSession := s.asPrincipal(admin)
		rec = s.do(http.MethodGet, "/students", nil, nil, func(req *http.Request) {
			withSession(req)
			req.Host = "riverside." + baseDomain
		})
		s.Require().Equal(http.StatusNotFound, rec.Code)
		s.Equal("tenant_not_found", s.errorCode(rec))
	})
}

func (s *RouterSuite) TestLeaveWorkflowOverHTTP() {
	schoolID := s.createSchool("Seaview", "seaview")
	student := &identity.Principal{UserID: id.UserID(uuid.New()), Role: identity.RoleStudent, SchoolID: schoolID}
	approver := &identity.Principal{UserID: id.UserID(uuid.New()), Role: identity.RolePrincipal, SchoolID: schoolID}

	var leave struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	rec := s.do(http.MethodPost, "/leave", map[string]any{
		"reason":    "family function",
		"from_date": time.Now().Format(time.RFC3339),
		"to_date":   time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	}, &leave, s.asPrincipal(student))
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	s.Equal("pending", leave.Status)

	s.Run("conditional approval without remarks fails", func() {
		rec := s.do(http.MethodPost, "/leave/"+leave.ID+"/decision",
			map[string]string{"status": "conditionally_approved"}, nil, s.asPrincipal(approver))
		s.Require().Equal(http.StatusBadRequest, rec.Code)
		s.Equal("validation_failed", s.errorCode(rec))
	})

	s.Run("approver decides, second decision conflicts", func() {
		var decided struct {
			Status  string `json:"status"`
			Remarks string `json:"remarks"`
		}
		rec := s.do(http.MethodPost, "/leave/"+leave.ID+"/decision",
			map[string]string{"status": "conditionally_approved", "remarks": "half day only"},
			&decided, s.asPrincipal(approver))
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		s.Equal("conditionally_approved", decided.Status)
		s.Equal("half day only", decided.Remarks)

		rec = s.do(http.MethodPost, "/leave/"+leave.ID+"/decision",
			map[string]string{"status": "rejected"}, nil, s.asPrincipal(approver))
		s.Require().Equal(http.StatusConflict, rec.Code)
		s.Equal("conflict", s.errorCode(rec))
	})

	s.Run("owner sees the decision, a stranger sees not found", func() {
		var got struct {
			Status string `json:"status"`
		}
		rec := s.do(http.MethodGet, "/leave/"+leave.ID, nil, &got, s.asPrincipal(student))
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Equal("conditionally_approved", got.Status)

		stranger := &identity.Principal{UserID: id.UserID(uuid.New()), Role: identity.RoleStudent, SchoolID: schoolID}
		rec = s.do(http.MethodGet, "/leave/"+leave.ID, nil, nil, s.asPrincipal(stranger))
		s.Require().Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *RouterSuite) TestCertificateWorkflowOverHTTP() {
	schoolID := s.createSchool("Brookfield", "brookfield")
	admin := &identity.Principal{UserID: id.UserID(uuid.New()), Role: identity.RoleSchoolAdmin, SchoolID: schoolID}

	var student struct {
		ID string `json:"id"`
	}
	rec := s.do(http.MethodPost, "/students", map[string]string{
		"first_name": "Ravi", "last_name": "Menon", "admission_no": "B-101",
	}, &student, s.asPrincipal(admin))
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var certificate struct {
		ID string `json:"id"`
	}
	rec = s.do(http.MethodPost, "/certificates", map[string]string{
		"student_id": student.ID, "kind": "bonafide",
	}, &certificate, s.asPrincipal(admin))
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	s.Run("unknown kind is invalid input", func() {
		rec := s.do(http.MethodPost, "/certificates", map[string]string{
			"student_id": student.ID, "kind": "diploma",
		}, nil, s.asPrincipal(admin))
		s.Require().Equal(http.StatusBadRequest, rec.Code)
		s.Equal("invalid_input", s.errorCode(rec))
	})

	s.Run("decision lands and shows in the filtered list", func() {
		rec := s.do(http.MethodPost, "/certificates/"+certificate.ID+"/decision",
			map[string]string{"status": "approved"}, nil, s.asPrincipal(admin))
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		var approved []struct {
			ID string `json:"id"`
		}
		rec = s.do(http.MethodGet, "/certificates?status=approved", nil, &approved, s.asPrincipal(admin))
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Require().Len(approved, 1)
		s.Equal(certificate.ID, approved[0].ID)
	})
}

func (s *RouterSuite) TestHealthz() {
	rec := s.do(http.MethodGet, "/healthz", nil, nil, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
}

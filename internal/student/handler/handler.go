// Package handler exposes the student directory over HTTP. It stays thin:
// decode, delegate to the service, encode. Tenant resolution and
// authorization happen inside the service.
package handler

import (
	"context"
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"campus/internal/identity"
	"campus/internal/student/models"
	"campus/internal/student/service"
	id "campus/pkg/domain"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/httputil"
	"campus/pkg/requestcontext"
)

// Service defines the student operations the handler delegates to.
type Service interface {
	ListStudents(ctx context.Context, principal *identity.Principal, classID id.ClassID) ([]*models.Student, error)
	GetStudent(ctx context.Context, principal *identity.Principal, studentID id.StudentID) (*models.Student, error)
	CreateStudent(ctx context.Context, principal *identity.Principal, input service.CreateStudentInput) (*models.Student, error)
	ListClasses(ctx context.Context, principal *identity.Principal) ([]*models.Class, error)
	CreateClass(ctx context.Context, principal *identity.Principal, input service.CreateClassInput) (*models.Class, error)
}

// Handler wires student and class endpoints to the student service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a student handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts student and class endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/students", h.HandleListStudents)
	r.Post("/students", h.HandleCreateStudent)
	r.Get("/students/{studentID}", h.HandleGetStudent)
	r.Get("/classes", h.HandleListClasses)
	r.Post("/classes", h.HandleCreateClass)
}

// HandleListStudents handles GET /students, optionally filtered by class_id.
func (h *Handler) HandleListStudents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := identity.FromContext(ctx)

	var classID id.ClassID
	if raw := r.URL.Query().Get("class_id"); raw != "" {
		parsed, err := id.ParseClassID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		classID = parsed
	}

	students, err := h.service.ListStudents(ctx, principal, classID)
	if err != nil {
		h.logError(ctx, "list students failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, students)
}

// HandleGetStudent handles GET /students/{studentID}.
func (h *Handler) HandleGetStudent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := identity.FromContext(ctx)

	studentID, err := id.ParseStudentID(chi.URLParam(r, "studentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	student, err := h.service.GetStudent(ctx, principal, studentID)
	if err != nil {
		h.logError(ctx, "get student failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, student)
}

// HandleCreateStudent handles POST /students.
func (h *Handler) HandleCreateStudent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := identity.FromContext(ctx)
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateStudentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	classID, err := req.ParsedClassID()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	student, err := h.service.CreateStudent(ctx, principal, service.CreateStudentInput{
		ClassID:     classID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		AdmissionNo: req.AdmissionNo,
	})
	if err != nil {
		h.logError(ctx, "create student failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "student created",
		"request_id", requestID,
		"student_id", student.ID,
		"school_id", student.SchoolID,
	)
	httputil.WriteJSON(w, http.StatusCreated, student)
}

// HandleListClasses handles GET /classes.
func (h *Handler) HandleListClasses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := identity.FromContext(ctx)

	classes, err := h.service.ListClasses(ctx, principal)
	if err != nil {
		h.logError(ctx, "list classes failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, classes)
}

// HandleCreateClass handles POST /classes.
func (h *Handler) HandleCreateClass(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := identity.FromContext(ctx)
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateClassRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	teacherID, err := req.ParsedTeacherID()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	class, err := h.service.CreateClass(ctx, principal, service.CreateClassInput{
		Name:      req.Name,
		TeacherID: teacherID,
	})
	if err != nil {
		h.logError(ctx, "create class failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, class)
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	// Denials and not-founds are routine; only unexpected failures get
	// error-level logs.
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal || code == dErrors.CodeUnavailable {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return
	}
	h.logger.DebugContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"code", code,
	)
}

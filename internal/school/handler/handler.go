// Package handler exposes platform administration of schools. These routes
// sit behind the admin token middleware, not the session guard; they
// provision tenants rather than operate inside one.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campus/internal/school/models"
	id "campus/pkg/domain"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/httputil"
	"campus/pkg/requestcontext"
)

// Service defines the school administration operations.
type Service interface {
	Create(ctx context.Context, name, slug string) (*models.School, error)
	Get(ctx context.Context, schoolID id.SchoolID) (*models.School, error)
	AssignAdmin(ctx context.Context, schoolID id.SchoolID, userID id.UserID) error
	AssignStaff(ctx context.Context, schoolID id.SchoolID, userID id.UserID) error
	Deactivate(ctx context.Context, schoolID id.SchoolID) (*models.School, error)
	Reactivate(ctx context.Context, schoolID id.SchoolID) (*models.School, error)
}

// Handler wires school administration endpoints to the school service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a school handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts school administration endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/schools", h.HandleCreate)
	r.Get("/schools/{schoolID}", h.HandleGet)
	r.Post("/schools/{schoolID}/admins", h.HandleAssignAdmin)
	r.Post("/schools/{schoolID}/staff", h.HandleAssignStaff)
	r.Post("/schools/{schoolID}/deactivate", h.HandleDeactivate)
	r.Post("/schools/{schoolID}/reactivate", h.HandleReactivate)
}

// HandleCreate handles POST /schools.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateSchoolRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	school, err := h.service.Create(ctx, req.Name, req.Slug)
	if err != nil {
		h.logError(ctx, "create school failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, school)
}

// HandleGet handles GET /schools/{schoolID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	schoolID, err := id.ParseSchoolID(chi.URLParam(r, "schoolID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	school, err := h.service.Get(ctx, schoolID)
	if err != nil {
		h.logError(ctx, "get school failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, school)
}

// HandleAssignAdmin handles POST /schools/{schoolID}/admins.
func (h *Handler) HandleAssignAdmin(w http.ResponseWriter, r *http.Request) {
	h.assign(w, r, h.service.AssignAdmin)
}

// HandleAssignStaff handles POST /schools/{schoolID}/staff.
func (h *Handler) HandleAssignStaff(w http.ResponseWriter, r *http.Request) {
	h.assign(w, r, h.service.AssignStaff)
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request, set func(context.Context, id.SchoolID, id.UserID) error) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	schoolID, err := id.ParseSchoolID(chi.URLParam(r, "schoolID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[AssignRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	userID, err := req.ParsedUserID()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := set(ctx, schoolID, userID); err != nil {
		h.logError(ctx, "assign school membership failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeactivate handles POST /schools/{schoolID}/deactivate.
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.service.Deactivate)
}

// HandleReactivate handles POST /schools/{schoolID}/reactivate.
func (h *Handler) HandleReactivate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.service.Reactivate)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, transition func(context.Context, id.SchoolID) (*models.School, error)) {
	ctx := r.Context()

	schoolID, err := id.ParseSchoolID(chi.URLParam(r, "schoolID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	school, err := transition(ctx, schoolID)
	if err != nil {
		h.logError(ctx, "school status change failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, school)
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
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

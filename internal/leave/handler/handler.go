// Package handler exposes the leave request workflow over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campus/internal/identity"
	"campus/internal/leave/models"
	"campus/internal/leave/service"
	"campus/internal/workflow"
	id "campus/pkg/domain"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/httputil"
	"campus/pkg/requestcontext"
)

// Service defines the leave operations the handler delegates to.
type Service interface {
	Submit(ctx context.Context, principal *identity.Principal, input service.SubmitInput) (*models.LeaveRequest, error)
	Get(ctx context.Context, principal *identity.Principal, leaveID id.LeaveID) (*models.LeaveRequest, error)
	List(ctx context.Context, principal *identity.Principal, status workflow.Status) ([]*models.LeaveRequest, error)
	Approve(ctx context.Context, principal *identity.Principal, leaveID id.LeaveID) (*models.LeaveRequest, error)
	ApproveWithConditions(ctx context.Context, principal *identity.Principal, leaveID id.LeaveID, remarks string) (*models.LeaveRequest, error)
	Reject(ctx context.Context, principal *identity.Principal, leaveID id.LeaveID, remarks string) (*models.LeaveRequest, error)
}

// Handler wires leave endpoints to the leave service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a leave handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts leave endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/leave", h.HandleSubmit)
	r.Get("/leave", h.HandleList)
	r.Get("/leave/{leaveID}", h.HandleGet)
	r.Post("/leave/{leaveID}/decision", h.HandleDecide)
}

// HandleSubmit handles POST /leave.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := identity.FromContext(ctx)
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	request, err := h.service.Submit(ctx, principal, service.SubmitInput{
		Reason:   req.Reason,
		FromDate: req.FromDate,
		ToDate:   req.ToDate,
	})
	if err != nil {
		h.logError(ctx, "submit leave failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "leave request submitted",
		"request_id", requestID,
		"leave_id", request.ID,
		"school_id", request.SchoolID,
	)
	httputil.WriteJSON(w, http.StatusCreated, request)
}

// HandleList handles GET /leave, optionally filtered by status.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := identity.FromContext(ctx)

	var status workflow.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := workflow.ParseStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		status = parsed
	}

	requests, err := h.service.List(ctx, principal, status)
	if err != nil {
		h.logError(ctx, "list leave failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, requests)
}

// HandleGet handles GET /leave/{leaveID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := identity.FromContext(ctx)

	leaveID, err := id.ParseLeaveID(chi.URLParam(r, "leaveID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	request, err := h.service.Get(ctx, principal, leaveID)
	if err != nil {
		h.logError(ctx, "get leave failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, request)
}

// HandleDecide handles POST /leave/{leaveID}/decision.
func (h *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := identity.FromContext(ctx)
	requestID := requestcontext.RequestID(ctx)

	leaveID, err := id.ParseLeaveID(chi.URLParam(r, "leaveID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[DecisionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	target, err := req.ParsedStatus()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var request *models.LeaveRequest
	switch target {
	case workflow.StatusApproved:
		request, err = h.service.Approve(ctx, principal, leaveID)
	case workflow.StatusConditionallyApproved:
		request, err = h.service.ApproveWithConditions(ctx, principal, leaveID, req.Remarks)
	case workflow.StatusRejected:
		request, err = h.service.Reject(ctx, principal, leaveID, req.Remarks)
	default:
		err = dErrors.Newf(dErrors.CodeValidation, "%q is not a decision", target)
	}
	if err != nil {
		h.logError(ctx, "decide leave failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "leave request decided",
		"request_id", requestID,
		"leave_id", request.ID,
		"status", request.Status,
	)
	httputil.WriteJSON(w, http.StatusOK, request)
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

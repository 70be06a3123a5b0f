// Package handler exposes certificate requests over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campus/internal/certificate/models"
	"campus/internal/identity"
	"campus/internal/workflow"
	id "campus/pkg/domain"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/httputil"
	"campus/pkg/requestcontext"
)

// Service defines the certificate operations the handler delegates to.
type Service interface {
	Submit(ctx context.Context, principal *identity.Principal, studentID id.StudentID, kind models.Kind) (*models.CertificateRequest, error)
	List(ctx context.Context, principal *identity.Principal, status workflow.Status) ([]*models.CertificateRequest, error)
	Decide(ctx context.Context, principal *identity.Principal, certID id.CertificateID, target workflow.Status, remarks string) (*models.CertificateRequest, error)
}

// Handler wires certificate endpoints to the certificate service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a certificate handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts certificate endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/certificates", h.HandleSubmit)
	r.Get("/certificates", h.HandleList)
	r.Post("/certificates/{certificateID}/decision", h.HandleDecide)
}

// HandleSubmit handles POST /certificates.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := identity.FromContext(ctx)
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	studentID, err := req.ParsedStudentID()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	kind, err := req.ParsedKind()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	cert, err := h.service.Submit(ctx, principal, studentID, kind)
	if err != nil {
		h.logError(ctx, "submit certificate request failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "certificate request submitted",
		"request_id", requestID,
		"certificate_id", cert.ID,
		"kind", cert.Kind,
	)
	httputil.WriteJSON(w, http.StatusCreated, cert)
}

// HandleList handles GET /certificates, optionally filtered by status.
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

	certs, err := h.service.List(ctx, principal, status)
	if err != nil {
		h.logError(ctx, "list certificate requests failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, certs)
}

// HandleDecide handles POST /certificates/{certificateID}/decision.
func (h *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := identity.FromContext(ctx)
	requestID := requestcontext.RequestID(ctx)

	certID, err := id.ParseCertificateID(chi.URLParam(r, "certificateID"))
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

	cert, err := h.service.Decide(ctx, principal, certID, target, req.Remarks)
	if err != nil {
		h.logError(ctx, "decide certificate request failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "certificate request decided",
		"request_id", requestID,
		"certificate_id", cert.ID,
		"status", cert.Status,
	)
	httputil.WriteJSON(w, http.StatusOK, cert)
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

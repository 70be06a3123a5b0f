package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"campus/internal/authz"
	"campus/internal/identity"
	"campus/internal/leave/models"
	"campus/internal/notify"
	"campus/internal/tenancy"
	"campus/internal/workflow"
	id "campus/pkg/domain"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/sentinel"
	"campus/pkg/requestcontext"
)

// Store is the persistence port for leave requests.
type Store interface {
	Create(ctx context.Context, request *models.LeaveRequest) error
	FindByID(ctx context.Context, schoolID id.SchoolID, leaveID id.LeaveID) (*models.LeaveRequest, error)
	List(ctx context.Context, schoolID id.SchoolID, status workflow.Status) ([]*models.LeaveRequest, error)
	Transition(ctx context.Context, schoolID id.SchoolID, leaveID id.LeaveID, target workflow.Status, remarks string, decidedBy id.UserID) (*models.LeaveRequest, error)
}

// Metrics receives decision outcomes. Satisfied by platform/metrics.
type Metrics interface {
	ObserveTransition(kind string, start time.Time)
}

// Any signed-in member of the school may raise a leave request.
var submitRoles = authz.RoleSet{
	identity.RoleStudent,
	identity.RoleTeacher,
	identity.RoleHOD,
	identity.RolePrincipal,
	identity.RoleSchoolAdmin,
	identity.RoleSuperAdmin,
}

// Approver roles for the school; decisions are additionally scoped to the
// leave feature grant.
var decideRoles = authz.RoleSet{
	identity.RoleHOD,
	identity.RolePrincipal,
	identity.RoleSchoolAdmin,
	identity.RoleSuperAdmin,
}

// Service orchestrates the leave request workflow.
type Service struct {
	store    Store
	resolver *tenancy.Resolver
	guard    *authz.Guard
	notifier *notify.BestEffort
	logger   *slog.Logger
	metrics  Metrics
	tracer   trace.Tracer
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the decision outcome collector.
func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(store Store, resolver *tenancy.Resolver, guard *authz.Guard, notifier *notify.BestEffort, opts ...Option) *Service {
	s := &Service{
		store:    store,
		resolver: resolver,
		guard:    guard,
		notifier: notifier,
		logger:   slog.Default(),
		tracer:   otel.Tracer("campus/leave"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitInput carries the fields a caller may set on a new request.
type SubmitInput struct {
	Reason   string
	FromDate time.Time
	ToDate   time.Time
}

// Submit raises a pending leave request owned by the principal.
func (s *Service) Submit(ctx context.Context, principal *identity.Principal, input SubmitInput) (*models.LeaveRequest, error) {
	schoolID, err := s.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(principal, submitRoles, identity.FeatureLeave); err != nil {
		return nil, err
	}

	request, err := models.NewLeaveRequest(
		id.LeaveID(uuid.New()), schoolID, principal.UserID,
		input.Reason, input.FromDate, input.ToDate,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, request); err != nil {
		return nil, translate(err)
	}
	return request, nil
}

// Get returns one request. Owners see their own; approver roles see any
// request in the school. Everything else is the same not-found the caller
// would get for an absent id.
func (s *Service) Get(ctx context.Context, principal *identity.Principal, leaveID id.LeaveID) (*models.LeaveRequest, error) {
	schoolID, err := s.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(principal, submitRoles, identity.FeatureLeave); err != nil {
		return nil, err
	}
	request, err := s.store.FindByID(ctx, schoolID, leaveID)
	if err != nil {
		return nil, translate(err)
	}
	if request.OwnerUserID != principal.UserID && !decideRoles.Contains(principal.Role) {
		return nil, dErrors.New(dErrors.CodeNotFound, "not found")
	}
	return request, nil
}

// List returns the school's requests, optionally filtered by status. Only
// approver roles may list.
func (s *Service) List(ctx context.Context, principal *identity.Principal, status workflow.Status) ([]*models.LeaveRequest, error) {
	schoolID, err := s.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(principal, decideRoles, identity.FeatureLeave); err != nil {
		return nil, err
	}
	requests, err := s.store.List(ctx, schoolID, status)
	if err != nil {
		return nil, translate(err)
	}
	return requests, nil
}

// Approve moves a pending request to APPROVED.
func (s *Service) Approve(ctx context.Context, principal *identity.Principal, leaveID id.LeaveID) (*models.LeaveRequest, error) {
	return s.decide(ctx, principal, leaveID, workflow.StatusApproved, "")
}

// ApproveWithConditions moves a pending request to CONDITIONALLY_APPROVED.
// Remarks are mandatory: they carry the conditions.
func (s *Service) ApproveWithConditions(ctx context.Context, principal *identity.Principal, leaveID id.LeaveID, remarks string) (*models.LeaveRequest, error) {
	return s.decide(ctx, principal, leaveID, workflow.StatusConditionallyApproved, remarks)
}

// Reject moves a pending request to REJECTED, optionally with remarks.
func (s *Service) Reject(ctx context.Context, principal *identity.Principal, leaveID id.LeaveID, remarks string) (*models.LeaveRequest, error) {
	return s.decide(ctx, principal, leaveID, workflow.StatusRejected, remarks)
}

func (s *Service) decide(ctx context.Context, principal *identity.Principal, leaveID id.LeaveID, target workflow.Status, remarks string) (*models.LeaveRequest, error) {
	ctx, span := s.tracer.Start(ctx, "leave.decide",
		trace.WithAttributes(attribute.String("leave.target_status", string(target))))
	defer span.End()
	start := time.Now()

	schoolID, err := s.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(principal, decideRoles, identity.FeatureLeave); err != nil {
		return nil, err
	}
	if err := workflow.ValidateDecision(target, remarks); err != nil {
		return nil, err
	}

	request, err := s.store.Transition(ctx, schoolID, leaveID, target, remarks, principal.UserID)
	if err != nil {
		return nil, translate(err)
	}

	if s.metrics != nil {
		s.metrics.ObserveTransition(string(target), start)
	}

	// Best-effort: delivery failure never rolls back the decision.
	s.notifier.Send(ctx, notify.Message{
		UserID:   request.OwnerUserID,
		Category: "leave",
		Title:    "Leave request " + statusLabel(target),
		Body:     notificationBody(request),
	})
	return request, nil
}

func statusLabel(status workflow.Status) string {
	switch status {
	case workflow.StatusApproved:
		return "approved"
	case workflow.StatusConditionallyApproved:
		return "conditionally approved"
	case workflow.StatusRejected:
		return "rejected"
	default:
		return string(status)
	}
}

func notificationBody(request *models.LeaveRequest) string {
	body := fmt.Sprintf("Your leave from %s to %s is %s.",
		request.FromDate.Format("2006-01-02"), request.ToDate.Format("2006-01-02"),
		statusLabel(request.Status))
	if request.Remarks != "" {
		body += " Remarks: " + request.Remarks
	}
	return body
}

func translate(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeConflict, "request already decided")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "already exists")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "store temporarily unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "leave store failure")
	}
}

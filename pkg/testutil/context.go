package testutil

import (
	"net/http"
	"time"

	"campus/internal/identity"
	"campus/pkg/requestcontext"
)

// WithPrincipal attaches an authenticated principal to the request context.
// This simulates what the session middleware does for authenticated requests.
func WithPrincipal(req *http.Request, principal *identity.Principal) *http.Request {
	return req.WithContext(identity.WithPrincipal(req.Context(), principal))
}

// WithTenantHint attaches a school slug hint to the request context, as the
// tenant hint middleware would for a subdomain request.
func WithTenantHint(req *http.Request, slug string) *http.Request {
	return req.WithContext(requestcontext.WithTenantHint(req.Context(), slug))
}

// WithRequestID attaches a request id to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithRequestTime pins the request-scoped clock, keeping model timestamps
// deterministic in handler tests.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}

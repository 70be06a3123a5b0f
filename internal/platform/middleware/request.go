package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"campus/pkg/requestcontext"
)

// RequestID assigns each request an id, honoring one supplied by an upstream
// proxy, and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestTime captures the current time at the start of the request so every
// timestamp written during the request is consistent.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TenantHint extracts the school slug a request arrived under, either from
// the X-School-Slug header (API clients) or the subdomain of the Host
// header when baseDomain is configured. The hint is advisory; the resolver
// only consults it when the session lacks a school claim.
func TenantHint(baseDomain string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slug := r.Header.Get("X-School-Slug")
			if slug == "" && baseDomain != "" {
				slug = subdomain(r.Host, baseDomain)
			}
			if slug == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := requestcontext.WithTenantHint(r.Context(), strings.ToLower(slug))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func subdomain(host, baseDomain string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	prefix, ok := strings.CutSuffix(host, "."+baseDomain)
	if !ok || prefix == "" || strings.Contains(prefix, ".") {
		return ""
	}
	return prefix
}

package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus/internal/identity"
	id "campus/pkg/domain"
	"campus/pkg/requestcontext"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequestID(t *testing.T) {
	t.Run("honors an upstream id and echoes it", func(t *testing.T) {
		var seen string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestcontext.RequestID(r.Context())
		}))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "upstream-42")
		h.ServeHTTP(rec, req)

		assert.Equal(t, "upstream-42", seen)
		assert.Equal(t, "upstream-42", rec.Header().Get("X-Request-ID"))
	})

	t.Run("generates an id when none supplied", func(t *testing.T) {
		var seen string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestcontext.RequestID(r.Context())
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
	})
}

func TestTenantHint(t *testing.T) {
	hintSeen := func(t *testing.T, mw func(http.Handler) http.Handler, mutate func(*http.Request)) string {
		t.Helper()
		var hint string
		h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hint = requestcontext.TenantHint(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		mutate(req)
		h.ServeHTTP(httptest.NewRecorder(), req)
		return hint
	}

	mw := TenantHint("campus.example.com")

	t.Run("header wins over host", func(t *testing.T) {
		hint := hintSeen(t, mw, func(r *http.Request) {
			r.Header.Set("X-School-Slug", "Green-Valley")
			r.Host = "other.campus.example.com"
		})
		assert.Equal(t, "green-valley", hint, "hint is lowercased")
	})

	t.Run("subdomain of the base domain", func(t *testing.T) {
		hint := hintSeen(t, mw, func(r *http.Request) { r.Host = "hillside.campus.example.com" })
		assert.Equal(t, "hillside", hint)
	})

	t.Run("port is stripped before matching", func(t *testing.T) {
		hint := hintSeen(t, mw, func(r *http.Request) { r.Host = "hillside.campus.example.com:8443" })
		assert.Equal(t, "hillside", hint)
	})

	t.Run("bare base domain yields no hint", func(t *testing.T) {
		hint := hintSeen(t, mw, func(r *http.Request) { r.Host = "campus.example.com" })
		assert.Empty(t, hint)
	})

	t.Run("nested subdomains yield no hint", func(t *testing.T) {
		hint := hintSeen(t, mw, func(r *http.Request) { r.Host = "a.b.campus.example.com" })
		assert.Empty(t, hint)
	})

	t.Run("unrelated host yields no hint", func(t *testing.T) {
		hint := hintSeen(t, mw, func(r *http.Request) { r.Host = "evil.example.net" })
		assert.Empty(t, hint)
	})
}

type staticValidator struct {
	principal *identity.Principal
	err       error
}

func (v staticValidator) Validate(string) (*identity.Principal, error) {
	return v.principal, v.err
}

func TestRequireSession(t *testing.T) {
	principal := &identity.Principal{UserID: id.UserID(uuid.New()), Role: identity.RoleTeacher}

	t.Run("valid bearer token reaches the handler", func(t *testing.T) {
		var got *identity.Principal
		h := RequireSession(staticValidator{principal: principal}, discardLogger())(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = identity.FromContext(r.Context())
			}))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer sometoken")
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
		assert.Equal(t, principal.UserID, got.UserID)
	})

	rejected := func(t *testing.T, v SessionValidator, authorization string) {
		t.Helper()
		h := RequireSession(v, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	t.Run("missing header", func(t *testing.T) {
		rejected(t, staticValidator{principal: principal}, "")
	})
	t.Run("not a bearer scheme", func(t *testing.T) {
		rejected(t, staticValidator{principal: principal}, "Basic dXNlcjpwYXNz")
	})
	t.Run("validator rejects", func(t *testing.T) {
		rejected(t, staticValidator{err: errors.New("expired")}, "Bearer sometoken")
	})
}

func TestRequireAdminToken(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("matching token passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/admin/schools", nil)
		req.Header.Set("X-Admin-Token", "s3cret")
		RequireAdminToken("s3cret", discardLogger())(handler).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("wrong token is unauthorized", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/admin/schools", nil)
		req.Header.Set("X-Admin-Token", "wrong")
		RequireAdminToken("s3cret", discardLogger())(handler).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("empty expected token disables the routes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/admin/schools", nil)
		req.Header.Set("X-Admin-Token", "")
		RequireAdminToken("", discardLogger())(handler).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

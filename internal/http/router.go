// Package httpapi assembles the service router: middleware chain, session
// guard, module handlers and operational endpoints.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	certificatehandler "campus/internal/certificate/handler"
	leavehandler "campus/internal/leave/handler"
	"campus/internal/platform/middleware"
	schoolhandler "campus/internal/school/handler"
	studenthandler "campus/internal/student/handler"
)

// Registrar is any module handler that mounts its routes on a chi router.
type Registrar interface {
	Register(r chi.Router)
}

// Options carries the dependencies the router wires together.
type Options struct {
	Logger     *slog.Logger
	Sessions   middleware.SessionValidator
	BaseDomain string
	AdminToken string

	Students     *studenthandler.Handler
	Leave        *leavehandler.Handler
	Certificates *certificatehandler.Handler
	Schools      *schoolhandler.Handler

	Healthchecks []Healthcheck
}

// Healthcheck is a named readiness probe consulted by /healthz.
type Healthcheck struct {
	Name  string
	Check func() error
}

// New builds the service router.
func New(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(opts.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(opts.Logger))
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Get("/healthz", healthz(opts.Healthchecks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Session-scoped API. The tenant hint rides alongside the session so the
	// resolver can consult the slug when the token lacks a school claim.
	r.Group(func(r chi.Router) {
		r.Use(middleware.TenantHint(opts.BaseDomain))
		r.Use(middleware.RequireSession(opts.Sessions, opts.Logger))

		for _, h := range []Registrar{opts.Students, opts.Leave, opts.Certificates} {
			h.Register(r)
		}
	})

	// Platform administration, guarded by the shared admin token.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(opts.AdminToken, opts.Logger))
		opts.Schools.Register(r)
	})

	return r
}

func healthz(checks []Healthcheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, c := range checks {
			if err := c.Check(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(c.Name + ": unhealthy"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

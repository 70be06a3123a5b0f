package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"campus/internal/authz"
	"campus/internal/cache"
	certificateservice "campus/internal/certificate/service"
	certificatestore "campus/internal/certificate/store"
	httpapi "campus/internal/http"
	identitystore "campus/internal/identity/store"
	leaveservice "campus/internal/leave/service"
	leavestore "campus/internal/leave/store"
	"campus/internal/notify"
	"campus/internal/platform/config"
	"campus/internal/platform/httpserver"
	"campus/internal/platform/logger"
	"campus/internal/platform/metrics"
	"campus/internal/platform/pg"
	platformredis "campus/internal/platform/redis"
	schoolservice "campus/internal/school/service"
	schoolstore "campus/internal/school/store"
	"campus/internal/session"
	studentservice "campus/internal/student/service"
	studentstore "campus/internal/student/store"
	"campus/internal/tenancy"

	certificatehandler "campus/internal/certificate/handler"
	leavehandler "campus/internal/leave/handler"
	schoolhandler "campus/internal/school/handler"
	studenthandler "campus/internal/student/handler"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	var healthchecks []httpapi.Healthcheck

	// Stores: postgres when a DSN is configured, in-memory otherwise. The
	// in-memory variants back local development and tests.
	var (
		accounts tenancy.AccountWriter
		schools  interface {
			schoolservice.Store
			tenancy.SchoolStore
			tenancy.StaffLookup
		}
		students   studentservice.Store
		studentRel interface {
			tenancy.StudentLookup
			tenancy.ClassLookup
			certificateservice.StudentLookup
		}
		leaves       leaveservice.Store
		certificates certificateservice.Store
	)
	if cfg.PostgresDSN != "" {
		db, err := pg.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		healthchecks = append(healthchecks, httpapi.Healthcheck{Name: "postgres", Check: db.Ping})

		accounts = identitystore.NewPostgresAccountStore(db)
		schools = schoolstore.NewPostgresSchoolStore(db)
		studentStore := studentstore.NewPostgresStudentStore(db)
		students = studentStore
		studentRel = studentStore
		leaves = leavestore.NewPostgresLeaveStore(db)
		certificates = certificatestore.NewPostgresCertificateStore(db)
	} else {
		log.Warn("POSTGRES_DSN not set, using in-memory stores")
		accounts = identitystore.NewInMemoryAccountStore()
		schools = schoolstore.NewInMemorySchoolStore()
		studentStore := studentstore.NewInMemoryStudentStore()
		students = studentStore
		studentRel = studentStore
		leaves = leavestore.NewInMemoryLeaveStore()
		certificates = certificatestore.NewInMemoryCertificateStore()
	}

	// Cache is optional; a nil client degrades every read to the loader.
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	var listCache *cache.Cache
	if redisClient != nil {
		defer redisClient.Close()
		healthchecks = append(healthchecks, httpapi.Healthcheck{
			Name:  "redis",
			Check: func() error { return redisClient.Health(context.Background()) },
		})
		listCache = cache.New(redisClient.Client, cache.WithLogger(log), cache.WithMetrics(m))
	}

	// Notifications are best-effort; without brokers they are logged and
	// dropped.
	var notifier notify.Notifier
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaNotifier, err := notify.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = kafkaNotifier.Close(closeCtx)
		}()
		notifier = kafkaNotifier
	}
	bestEffort := notify.NewBestEffort(notifier, log)

	resolver := tenancy.New(schools, accounts, studentRel, schools, studentRel,
		tenancy.WithLogger(log),
		tenancy.WithMetrics(m),
	)
	guard := authz.New(authz.WithLogger(log), authz.WithMetrics(m))
	sessions := session.NewService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	studentSvc := studentservice.New(students, resolver, guard, listCache,
		studentservice.WithLogger(log),
		studentservice.WithCacheTTL(cfg.CacheTTL),
	)
	leaveSvc := leaveservice.New(leaves, resolver, guard, bestEffort,
		leaveservice.WithLogger(log),
		leaveservice.WithMetrics(m),
	)
	certificateSvc := certificateservice.New(certificates, studentRel, resolver, guard, listCache, bestEffort,
		certificateservice.WithLogger(log),
		certificateservice.WithCacheTTL(cfg.CacheTTL),
	)
	schoolSvc := schoolservice.New(schools, schoolservice.WithLogger(log))

	router := httpapi.New(httpapi.Options{
		Logger:       log,
		Sessions:     sessions,
		BaseDomain:   cfg.BaseDomain,
		AdminToken:   cfg.AdminToken,
		Students:     studenthandler.New(studentSvc, log),
		Leave:        leavehandler.New(leaveSvc, log),
		Certificates: certificatehandler.New(certificateSvc, log),
		Schools:      schoolhandler.New(schoolSvc, log),
		Healthchecks: healthchecks,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting campus server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

package api

import (
	"net/http"
	"time"

	"tangle_backend/internal/api/handler"
	"tangle_backend/internal/app/service"
	"tangle_backend/internal/common/security"
	"tangle_backend/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

type Services struct {
	Auth     *service.AuthService
	Attempts *service.AttemptService
	Reports  *service.ReportService
	Uploads  *service.UploadService
	Admin    *service.AdminService
}

type Options struct {
	MaxUploadBytes int64
	Metrics        *metrics.Metrics
	// MetricsHandler serves /metrics; nil uses the default Prometheus registry.
	MetricsHandler http.Handler
}

func NewRouter(svc Services, opts Options) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.RequestLogger(&chiMiddleware.DefaultLogFormatter{
		Logger:  log.StandardLogger(),
		NoColor: true,
	}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	// Looks for "Authorization: Bearer T" and puts the verified token in
	// context; handlers that need it add middleware.Authenticator.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	metricsHandler := opts.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler)

	authHandler := handler.NewAuthHandler(svc.Auth)
	r.Group(authHandler.RegisterRoutes)

	attemptHandler := handler.NewAttemptHandler(svc.Attempts)
	r.Group(attemptHandler.RegisterRoutes)

	reportHandler := handler.NewReportHandler(svc.Reports)
	r.Route("/report", reportHandler.RegisterRoutes)

	levelHandler := handler.NewLevelHandler(svc.Uploads)
	r.Route("/levels", levelHandler.RegisterRoutes)

	uploadHandler := handler.NewUploadHandler(svc.Uploads, opts.MaxUploadBytes)
	adminHandler := handler.NewAdminHandler(svc.Auth, svc.Admin)
	r.Route("/admin", func(admin chi.Router) {
		admin.Group(uploadHandler.RegisterRoutes)
		admin.Group(adminHandler.RegisterRoutes)
	})

	return r
}

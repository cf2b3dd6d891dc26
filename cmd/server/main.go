package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tangle_backend/internal/api"
	"tangle_backend/internal/app/service"
	"tangle_backend/internal/app/worker"
	"tangle_backend/internal/common"
	"tangle_backend/internal/common/security"
	"tangle_backend/internal/domain/repository"
	"tangle_backend/internal/platform/config"
	"tangle_backend/internal/platform/database"
	"tangle_backend/internal/platform/logger"
	"tangle_backend/internal/platform/mailer"
	"tangle_backend/internal/platform/metrics"
	"tangle_backend/internal/platform/pdf"
	"tangle_backend/internal/platform/queue"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

func main() {
	// 1. Load Configuration
	config.Load()
	cfg := config.AppConfig
	logEntry := logger.Init("tangle-backend", cfg.LogLevel)
	common.SetAcceptedEmailDomains(cfg.AcceptedEmailDomains)
	logEntry.Info("Configuration loaded")

	// 2. Initialize JWT
	security.InitJWT()

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	if err := database.EnsureSchema(context.Background(), database.DB); err != nil {
		log.Fatalf("Could not prepare schema: %v", err)
	}

	// 4. Initialize Redis (optional)
	if cfg.RedisEnabled() {
		queue.ConnectRedis()
		defer queue.CloseRedis()
	} else {
		log.Warn("REDIS_ADDR is empty: weekly reports are disabled and levels are allocated in-process")
	}

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	attemptRepo := repository.NewPgAttemptRepository(database.DB)
	uploadRepo := repository.NewPgUploadRepository(database.DB)

	// 6. Initialize Services
	m := metrics.New(prometheus.DefaultRegisterer)

	var allocator service.LevelRangeAllocator
	if cfg.RedisEnabled() {
		allocator = service.NewRedisLevelAllocator(queue.RDB, cfg.LevelCounterKey, cfg.TanglePDFDir)
	} else {
		allocator = service.NewLocalLevelAllocator(cfg.TanglePDFDir)
	}

	smtp := mailer.NewSMTPMailer(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})

	authService := service.NewAuthService(userRepo)
	attemptService := service.NewAttemptService(attemptRepo)
	reportService := service.NewReportService(attemptRepo, userRepo, pdf.NewLineWriter(), smtp, m, cfg.ReportDir)
	uploadService := service.NewUploadService(uploadRepo, allocator, pdf.NewPageCounter(), pdf.NewRasterizer(), m,
		service.UploadServiceConfig{TanglePDFDir: cfg.TanglePDFDir, OutlineDir: cfg.OutlineDir})
	adminService := service.NewAdminService(userRepo, uploadRepo, attemptRepo)

	if err := authService.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword, cfg.AdminEmail); err != nil {
		log.Fatalf("Could not create admin account: %v", err)
	}

	// 7. Background jobs
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	go recordPoolStats(workerCtx, m)

	if cfg.RedisEnabled() {
		if cfg.EmbeddedWorker {
			reportWorker := worker.NewReportWorker(queue.RDB, reportService, cfg.ReportQueueName,
				time.Duration(cfg.ReportLockTTLHours)*time.Hour)
			go reportWorker.Start(workerCtx)
		}

		queueService := service.NewReportQueueService(userRepo, queue.RDB, cfg.ReportQueueName)
		scheduler, err := worker.NewScheduler(cfg.WeeklyReportCron, queueService)
		if err != nil {
			log.Fatalf("Could not schedule weekly reports: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		log.WithFields(log.Fields{
			"schedule": cfg.WeeklyReportCron,
			"embedded": cfg.EmbeddedWorker,
		}).Info("Weekly report schedule started")
	}

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(api.Services{
		Auth:     authService,
		Attempts: attemptService,
		Reports:  reportService,
		Uploads:  uploadService,
		Admin:    adminService,
	}, api.Options{
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Metrics:        m,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Infof("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", cfg.APIPort, err)
		}
	}()

	<-stop // Wait for interrupt signal

	log.Info("Shutting down server...")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown failed: %v", err)
		return
	}

	log.Info("Server and worker stopped gracefully")
}

func recordPoolStats(ctx context.Context, m *metrics.Metrics) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.RecordDBPoolStats(database.DB.Stats())
		}
	}
}

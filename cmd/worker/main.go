// Command worker runs weekly report workers without the HTTP API. Start it
// next to a server configured with EMBEDDED_WORKER=false to scale mail
// delivery separately; the per-user lock keeps several workers from mailing
// the same user twice in a day.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"tangle_backend/internal/app/service"
	"tangle_backend/internal/app/worker"
	"tangle_backend/internal/domain/repository"
	"tangle_backend/internal/platform/config"
	"tangle_backend/internal/platform/database"
	"tangle_backend/internal/platform/logger"
	"tangle_backend/internal/platform/mailer"
	"tangle_backend/internal/platform/pdf"
	"tangle_backend/internal/platform/queue"

	log "github.com/sirupsen/logrus"
)

func main() {
	concurrency := flag.Int("concurrency", 1, "number of queue consumers")
	flag.Parse()

	config.Load()
	cfg := config.AppConfig
	logger.Init("tangle-report-worker", cfg.LogLevel)

	if !cfg.RedisEnabled() {
		log.Fatal("REDIS_ADDR is required to run the report worker")
	}

	database.Connect()
	defer database.Close()
	queue.ConnectRedis()
	defer queue.CloseRedis()

	userRepo := repository.NewPgUserRepository(database.DB)
	attemptRepo := repository.NewPgAttemptRepository(database.DB)
	smtp := mailer.NewSMTPMailer(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	reportService := service.NewReportService(attemptRepo, userRepo, pdf.NewLineWriter(), smtp, nil, cfg.ReportDir)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	lockTTL := time.Duration(cfg.ReportLockTTLHours) * time.Hour
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.NewReportWorker(queue.RDB, reportService, cfg.ReportQueueName, lockTTL).Start(ctx)
		}()
	}
	log.WithField("consumers", *concurrency).Info("Report worker service started")

	<-sigs
	log.Info("Shutdown signal received")
	cancel()

	wg.Wait()
	log.Info("Report workers exited cleanly")
}

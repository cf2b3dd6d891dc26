package service

import (
	"context"

	"tangle_backend/internal/common"
	"tangle_backend/internal/domain/repository"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// ReportQueueService pushes weekly report jobs onto a Redis list. A job is just
// the username; the report worker pops and processes them.
type ReportQueueService struct {
	userRepo  repository.UserRepository
	rdb       redis.Cmdable
	queueName string
}

func NewReportQueueService(userRepo repository.UserRepository, rdb redis.Cmdable, queueName string) *ReportQueueService {
	return &ReportQueueService{userRepo: userRepo, rdb: rdb, queueName: queueName}
}

// EnqueueWeeklyReports queues one job per registered user and returns how many
// were queued.
func (s *ReportQueueService) EnqueueWeeklyReports(ctx context.Context) (int, error) {
	usernames, err := s.userRepo.ListUsernames(ctx)
	if err != nil {
		return 0, common.Errorf("failed to list users for weekly reports: %w", err)
	}
	if len(usernames) == 0 {
		return 0, nil
	}

	values := make([]interface{}, len(usernames))
	for i, name := range usernames {
		values[i] = name
	}
	if err := s.rdb.LPush(ctx, s.queueName, values...).Err(); err != nil {
		return 0, common.Errorf("failed to push weekly report jobs to Redis queue: %w", err)
	}

	log.WithFields(log.Fields{"queue": s.queueName, "jobs": len(usernames)}).Info("weekly report jobs enqueued")
	return len(usernames), nil
}

// Run adapts EnqueueWeeklyReports to cron.Job.
func (s *ReportQueueService) Run() {
	if _, err := s.EnqueueWeeklyReports(context.Background()); err != nil {
		log.WithError(err).Error("weekly report schedule failed")
	}
}

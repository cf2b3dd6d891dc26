package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const popTimeout = 5 * time.Second

// WeeklyReporter generates and mails one user's weekly report.
type WeeklyReporter interface {
	SendWeekly(ctx context.Context, username string) error
}

type queueClient interface {
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	redis.Scripter
}

// ReportWorker drains the weekly report queue. A per-user, per-day lock makes
// sure a user receives at most one weekly email a day even if the schedule
// fires twice or several workers share the queue.
type ReportWorker struct {
	rdb       queueClient
	reporter  WeeklyReporter
	queueName string
	lockTTL   time.Duration
	now       func() time.Time
}

func NewReportWorker(rdb queueClient, reporter WeeklyReporter, queueName string, lockTTL time.Duration) *ReportWorker {
	return &ReportWorker{
		rdb:       rdb,
		reporter:  reporter,
		queueName: queueName,
		lockTTL:   lockTTL,
		now:       time.Now,
	}
}

// releaseScript deletes the lock only while it still holds our value.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

func (w *ReportWorker) Start(ctx context.Context) {
	log.WithField("queue", w.queueName).Info("Report worker started")
	for {
		select {
		case <-ctx.Done():
			log.Info("Report worker stopping")
			return
		default:
		}

		res, err := w.rdb.BRPop(ctx, popTimeout, w.queueName).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // timeout, queue empty
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			log.WithError(err).Errorf("Failed to BRPop from Redis queue '%s'", w.queueName)
			sleep(ctx, 5*time.Second)
			continue
		}

		// res is [queueName, value]
		if len(res) < 2 || res[1] == "" {
			log.Warn("BRPop returned an empty username")
			continue
		}
		w.processJobWithLock(ctx, res[1])
	}
}

func lockKey(username string, day time.Time) string {
	return fmt.Sprintf("weekly_report_lock:%s:%s", username, day.Format("20060102"))
}

// processJobWithLock reports whether the report was sent.
func (w *ReportWorker) processJobWithLock(ctx context.Context, username string) bool {
	key := lockKey(username, w.now())
	lockValue := uuid.NewString()

	ok, err := w.rdb.SetNX(ctx, key, lockValue, w.lockTTL).Result()
	if err != nil {
		log.WithError(err).WithField("username", username).Error("Failed to acquire weekly report lock")
		return false
	}
	if !ok {
		log.WithField("username", username).Info("Weekly report already sent or in progress, skipping")
		return false
	}

	if err := w.reporter.SendWeekly(ctx, username); err != nil {
		log.WithError(err).WithField("username", username).Error("Weekly report failed")
		// Free the day's lock so a manual run can still send it.
		if _, rerr := releaseScript.Run(ctx, w.rdb, []string{key}, lockValue).Result(); rerr != nil {
			log.WithError(rerr).WithField("key", key).Error("Failed to release weekly report lock")
		}
		return false
	}

	log.WithField("username", username).Info("Weekly report sent")
	return true
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

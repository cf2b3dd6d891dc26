package queue

import (
	"context"

	"tangle_backend/internal/platform/config"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

var RDB *redis.Client

func ConnectRedis() {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	ctx := context.Background()
	_, err := RDB.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
	log.WithField("addr", config.AppConfig.RedisAddr).Info("Successfully connected to Redis")
}

func CloseRedis() {
	if RDB != nil {
		RDB.Close()
		log.Info("Redis connection closed")
	}
}

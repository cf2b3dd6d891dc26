package service

import (
	"context"
	"time"

	"tangle_backend/internal/common"
	"tangle_backend/internal/domain/model"
	"tangle_backend/internal/domain/repository"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

type AttemptService struct {
	attemptRepo repository.AttemptRepository
	now         func() time.Time
}

func NewAttemptService(attemptRepo repository.AttemptRepository) *AttemptService {
	return &AttemptService{attemptRepo: attemptRepo, now: time.Now}
}

// RecordAttemptRequest is not checked against users or earlier attempts:
// duplicates and out-of-order attempt numbers are stored as sent.
type RecordAttemptRequest struct {
	Username string `json:"username" validate:"required"`
	Category string `json:"category" validate:"required"`
	Level    int    `json:"level"`
	Attempt  int    `json:"attempt"`
	Points   int    `json:"points"`
}

func (s *AttemptService) Record(ctx context.Context, req RecordAttemptRequest) (*common.MessageResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	attempt := &model.Attempt{
		Username:  req.Username,
		Category:  req.Category,
		Level:     req.Level,
		Attempt:   req.Attempt,
		Points:    req.Points,
		Timestamp: s.now(),
	}
	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		return nil, common.Errorf("failed to save attempt: %w", err)
	}
	return &common.MessageResponse{Msg: "Attempt saved"}, nil
}

func (s *AttemptService) Stats(ctx context.Context, username string) (*model.UserStats, error) {
	attempts, err := s.attemptRepo.ListByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	stats := &model.UserStats{
		Username:      username,
		CategoryStats: map[string]model.CategoryStats{},
	}
	type levelKey struct {
		category string
		level    int
	}
	seen := map[levelKey]bool{}
	for _, a := range attempts {
		stats.TotalAttempts++
		stats.TotalPoints += a.Points

		cs := stats.CategoryStats[a.Category]
		cs.Attempts++
		cs.Points += a.Points
		if k := (levelKey{a.Category, a.Level}); !seen[k] {
			seen[k] = true
			cs.LevelsPlayed++
			stats.LevelsPlayed++
		}
		stats.CategoryStats[a.Category] = cs
	}
	return stats, nil
}

func (s *AttemptService) Leaderboard(ctx context.Context, category string, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}
	return s.attemptRepo.Leaderboard(ctx, category, limit)
}

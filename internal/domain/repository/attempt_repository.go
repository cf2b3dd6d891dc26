package repository

import (
	"context"
	"database/sql"
	"time"

	"tangle_backend/internal/common"
	"tangle_backend/internal/domain/model"
)

type AttemptRepository interface {
	Create(ctx context.Context, attempt *model.Attempt) error
	// ListInRange returns the user's attempts with from <= timestamp < to in
	// insertion order.
	ListInRange(ctx context.Context, username string, from, to time.Time) ([]model.Attempt, error)
	ListByUsername(ctx context.Context, username string) ([]model.Attempt, error)
	Leaderboard(ctx context.Context, category string, limit int) ([]model.LeaderboardEntry, error)
	Count(ctx context.Context) (int, error)
}

type pgAttemptRepository struct {
	db *sql.DB
}

func NewPgAttemptRepository(db *sql.DB) AttemptRepository {
	return &pgAttemptRepository{db: db}
}

func (r *pgAttemptRepository) Create(ctx context.Context, a *model.Attempt) error {
	query := `INSERT INTO attempts (username, category, level, attempt, points, timestamp)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, a.Username, a.Category, a.Level, a.Attempt, a.Points, a.Timestamp).Scan(&a.ID)
	if err != nil {
		return common.StorageErrorf("pgAttemptRepository.Create", err)
	}
	return nil
}

func (r *pgAttemptRepository) ListInRange(ctx context.Context, username string, from, to time.Time) ([]model.Attempt, error) {
	query := `SELECT id, username, category, level, attempt, points, timestamp
	          FROM attempts
	          WHERE username = $1 AND timestamp >= $2 AND timestamp < $3
	          ORDER BY id`
	return r.query(ctx, "pgAttemptRepository.ListInRange", query, username, from, to)
}

func (r *pgAttemptRepository) ListByUsername(ctx context.Context, username string) ([]model.Attempt, error) {
	query := `SELECT id, username, category, level, attempt, points, timestamp
	          FROM attempts WHERE username = $1 ORDER BY id`
	return r.query(ctx, "pgAttemptRepository.ListByUsername", query, username)
}

func (r *pgAttemptRepository) query(ctx context.Context, op, query string, args ...any) ([]model.Attempt, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.StorageErrorf(op, err)
	}
	defer rows.Close()

	attempts := []model.Attempt{}
	for rows.Next() {
		var a model.Attempt
		if err := rows.Scan(&a.ID, &a.Username, &a.Category, &a.Level, &a.Attempt, &a.Points, &a.Timestamp); err != nil {
			return nil, common.StorageErrorf(op+" scan", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, common.StorageErrorf(op+" rows", err)
	}
	return attempts, nil
}

// Leaderboard sums points per user, optionally within one category. An empty
// category means all categories.
func (r *pgAttemptRepository) Leaderboard(ctx context.Context, category string, limit int) ([]model.LeaderboardEntry, error) {
	query := `SELECT username, COALESCE(SUM(points), 0) AS total_points, COUNT(*) AS attempts
	          FROM attempts
	          WHERE ($1 = '' OR category = $1)
	          GROUP BY username
	          ORDER BY total_points DESC, username
	          LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, category, limit)
	if err != nil {
		return nil, common.StorageErrorf("pgAttemptRepository.Leaderboard", err)
	}
	defer rows.Close()

	entries := []model.LeaderboardEntry{}
	for rows.Next() {
		e := model.LeaderboardEntry{Rank: len(entries) + 1}
		if err := rows.Scan(&e.Username, &e.TotalPoints, &e.Attempts); err != nil {
			return nil, common.StorageErrorf("pgAttemptRepository.Leaderboard scan", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, common.StorageErrorf("pgAttemptRepository.Leaderboard rows", err)
	}
	return entries, nil
}

func (r *pgAttemptRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attempts`).Scan(&n); err != nil {
		return 0, common.StorageErrorf("pgAttemptRepository.Count", err)
	}
	return n, nil
}

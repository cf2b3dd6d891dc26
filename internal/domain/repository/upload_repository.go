package repository

import (
	"context"
	"database/sql"

	"tangle_backend/internal/common"
	"tangle_backend/internal/domain/model"
)

type UploadRepository interface {
	Create(ctx context.Context, upload *model.Upload) error
	Count(ctx context.Context) (int, error)
	// PagesByCategory sums the pages of all uploads per category.
	PagesByCategory(ctx context.Context) (map[string]int, error)
}

type pgUploadRepository struct {
	db *sql.DB
}

func NewPgUploadRepository(db *sql.DB) UploadRepository {
	return &pgUploadRepository{db: db}
}

func (r *pgUploadRepository) Create(ctx context.Context, u *model.Upload) error {
	query := `INSERT INTO uploads (id, uploader, category, pages, created_at)
	          VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, u.ID, u.Uploader, u.Category, u.Pages, u.CreatedAt); err != nil {
		return common.StorageErrorf("pgUploadRepository.Create", err)
	}
	return nil
}

func (r *pgUploadRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM uploads`).Scan(&n); err != nil {
		return 0, common.StorageErrorf("pgUploadRepository.Count", err)
	}
	return n, nil
}

func (r *pgUploadRepository) PagesByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT category, COALESCE(SUM(pages), 0) FROM uploads GROUP BY category`)
	if err != nil {
		return nil, common.StorageErrorf("pgUploadRepository.PagesByCategory", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var category string
		var pages int
		if err := rows.Scan(&category, &pages); err != nil {
			return nil, common.StorageErrorf("pgUploadRepository.PagesByCategory scan", err)
		}
		out[category] = pages
	}
	if err := rows.Err(); err != nil {
		return nil, common.StorageErrorf("pgUploadRepository.PagesByCategory rows", err)
	}
	return out, nil
}

package repository

import (
	"context"
	"testing"
	"time"

	"tangle_backend/internal/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadRepository_CreateAndCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPgUploadRepository(db)

	u := &model.Upload{
		ID:        "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		Uploader:  "admin",
		Category:  "shapes",
		Pages:     4,
		CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	mock.ExpectExec(`INSERT INTO uploads`).
		WithArgs(u.ID, "admin", "shapes", 4, u.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM uploads`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	require.NoError(t, repo.Create(context.Background(), u))
	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadRepository_PagesByCategory(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPgUploadRepository(db)

	mock.ExpectQuery(`SELECT category, COALESCE\(SUM\(pages\), 0\) FROM uploads GROUP BY category`).
		WillReturnRows(sqlmock.NewRows([]string{"category", "sum"}).
			AddRow("shapes", 12).
			AddRow("animals", 4))

	got, err := repo.PagesByCategory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"shapes": 12, "animals": 4}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

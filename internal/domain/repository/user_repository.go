package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tangle_backend/internal/common"
	"tangle_backend/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	ListUsernames(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, username, password_hash, realname, email, language, school, standard,
	board, country, state, city, usertype, coins, created_at, updated_at`

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (` + userColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.HashedPassword, user.RealName, user.Email, user.Language,
		user.School, user.Standard, user.Board, user.Country, user.State, user.City,
		user.UserType, user.Coins, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("user %q: %w", user.Username, common.ErrDuplicateUser)
		}
		return common.StorageErrorf("pgUserRepository.Create", err)
	}
	return nil
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, common.StorageErrorf("pgUserRepository.FindByUsername", err)
	}
	return user, nil
}

func (r *pgUserRepository) ListUsers(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, username`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, common.StorageErrorf("pgUserRepository.ListUsers", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, common.StorageErrorf("pgUserRepository.ListUsers scan", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, common.StorageErrorf("pgUserRepository.ListUsers rows", err)
	}
	return users, nil
}

func (r *pgUserRepository) ListUsernames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT username FROM users ORDER BY username`)
	if err != nil {
		return nil, common.StorageErrorf("pgUserRepository.ListUsernames", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, common.StorageErrorf("pgUserRepository.ListUsernames scan", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, common.StorageErrorf("pgUserRepository.ListUsernames rows", err)
	}
	return names, nil
}

func (r *pgUserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, common.StorageErrorf("pgUserRepository.Count", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(
		&u.ID, &u.Username, &u.HashedPassword, &u.RealName, &u.Email, &u.Language, &u.School,
		&u.Standard, &u.Board, &u.Country, &u.State, &u.City, &u.UserType, &u.Coins,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"taskBurst/internal/logger"
	"taskBurst/internal/models/user"
	repo "taskBurst/internal/repository"
	pg "taskBurst/internal/repository/postgres"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

type Storage struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) Create(ctx context.Context, email, passwordHash string) (*user.User, error) {
	start := time.Now()

	query := `INSERT INTO users (email, password_hash)
				VALUES ($1, $2)
				RETURNING id, email, password_hash, created_at, updated_at`

	u, err := scanUser(s.pool.QueryRow(ctx, query, normalizeEmail(email), passwordHash))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, repo.ErrAlreadyExists
		}
		logger.Error("Repository: Не удалось создать пользователя", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("создание пользователя: %w", err)
	}

	pg.SlowQuery(start, 50*time.Millisecond, "create_user")
	return u, nil
}

func (s *Storage) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT id, email, password_hash, created_at, updated_at FROM users WHERE email = $1`
	return s.findOne(ctx, query, normalizeEmail(email))
}

func (s *Storage) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `SELECT id, email, password_hash, created_at, updated_at FROM users WHERE id = $1`
	return s.findOne(ctx, query, id)
}

func (s *Storage) findOne(ctx context.Context, query string, arg any) (*user.User, error) {
	start := time.Now()

	u, err := scanUser(s.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить пользователя", err)
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}

	pg.SlowQuery(start, 50*time.Millisecond, "find_user")
	return u, nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

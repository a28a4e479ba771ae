package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"taskBurst/internal/logger"
	"taskBurst/internal/models/task"
	repo "taskBurst/internal/repository"
	pg "taskBurst/internal/repository/postgres"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const taskColumns = `id, user_id, title, description, priority, due_date, is_completed, created_at, updated_at`

type Storage struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, in task.NewTask) (*task.Task, error) {
	start := time.Now()

	query := `INSERT INTO tasks
				(user_id, title, description, priority, due_date)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING ` + taskColumns

	created, err := scanTask(s.pool.QueryRow(ctx, query,
		in.UserID,
		in.Title,
		in.Description,
		string(in.Priority),
		in.DueDate,
	))
	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("добавление задачи: %w", err)
	}

	pg.SlowQuery(start, 50*time.Millisecond, "create_task")
	return created, nil
}

// Update пишет только переданные поля; updated_at обновляется всегда.
func (s *Storage) Update(ctx context.Context, ownerID, id uuid.UUID, patch task.Patch) (*task.Task, error) {
	start := time.Now()

	sets, args := patchClauses(patch)
	args = append(args, id, ownerID)
	query := fmt.Sprintf(`UPDATE tasks
			SET %s
			WHERE id = $%d AND user_id = $%d
			RETURNING %s`, strings.Join(sets, ", "), len(args)-1, len(args), taskColumns)

	updated, err := scanTask(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Info("Repository: Задача для обновления не найдена", zap.String("task_id", id.String()))
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось обновить задачу", err)
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	pg.SlowQuery(start, 100*time.Millisecond, "update_task")
	return updated, nil
}

func patchClauses(p task.Patch) ([]string, []any) {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description != nil {
		add("description", *p.Description)
	} else if p.ClearDescription {
		sets = append(sets, "description = NULL")
	}
	if p.Priority != nil {
		add("priority", string(*p.Priority))
	}
	if p.DueDate != nil {
		add("due_date", *p.DueDate)
	} else if p.ClearDueDate {
		sets = append(sets, "due_date = NULL")
	}
	if p.IsCompleted != nil {
		add("is_completed", *p.IsCompleted)
	}
	// clock_timestamp, а не NOW(): два обновления в одной транзакции всё равно различаются
	sets = append(sets, "updated_at = GREATEST(clock_timestamp(), updated_at + interval '1 microsecond')")
	return sets, args
}

func (s *Storage) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*task.Task, error) {
	start := time.Now()

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`

	t, err := scanTask(s.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	pg.SlowQuery(start, 100*time.Millisecond, "get_task")
	return t, nil
}

// полное удаление из БД
func (s *Storage) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	start := time.Now()

	query := `DELETE FROM tasks
				WHERE id = $1 AND user_id = $2`

	tag, err := s.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		logger.Error("Repository: Удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	pg.SlowQuery(start, 100*time.Millisecond, "delete_task")
	return nil
}

func (s *Storage) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*task.Task, error) {
	start := time.Now()

	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE user_id = $1
				ORDER BY created_at DESC`

	tasks, err := s.queryTasks(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}

	pg.SlowQuery(start, 100*time.Millisecond, "list_tasks")
	return tasks, nil
}

// ListDueBefore невыполненные задачи со сроком раньше deadline
// в порядке (due_date, id), начиная строго после курсора.
func (s *Storage) ListDueBefore(ctx context.Context, deadline time.Time, after *task.DueCursor, limit int) ([]*task.Task, error) {
	start := time.Now()

	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE NOT is_completed
					AND due_date IS NOT NULL
					AND due_date < $1
				ORDER BY due_date, id
				LIMIT $2`
	args := []any{deadline, limit}

	if after != nil {
		query = `SELECT ` + taskColumns + `
				FROM tasks
				WHERE NOT is_completed
					AND due_date IS NOT NULL
					AND due_date < $1
					AND (due_date, id) > ($3, $4)
				ORDER BY due_date, id
				LIMIT $2`
		args = append(args, after.DueDate, after.ID)
	}

	tasks, err := s.queryTasks(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	pg.SlowQuery(start, 50*time.Millisecond+10*time.Millisecond*time.Duration(limit), "list_due_before")
	return tasks, nil
}

func (s *Storage) queryTasks(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err)
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Error("Repository: Ошибка сканирования задачи", err)
			return nil, fmt.Errorf("сканирование задачи: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	return tasks, nil
}

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	var priority string
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&priority,
		&t.DueDate,
		&t.IsCompleted,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Priority = task.Priority(priority)
	return t, nil
}

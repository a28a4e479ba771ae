package service

import (
	"context"
	"taskBurst/internal/auth"
	"taskBurst/internal/models/task"
	"taskBurst/internal/models/user"
	"time"

	"github.com/google/uuid"
)

type TaskRepository interface {
	HealthCheck(ctx context.Context) error
	Create(ctx context.Context, in task.NewTask) (*task.Task, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, patch task.Patch) (*task.Task, error)
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*task.Task, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*task.Task, error)
	ListDueBefore(ctx context.Context, deadline time.Time, after *task.DueCursor, limit int) ([]*task.Task, error)
}

// TaskListCache кэш полного списка задач владельца
type TaskListCache interface {
	Get(ctx context.Context, ownerID uuid.UUID) ([]*task.Task, bool, error)
	Set(ctx context.Context, ownerID uuid.UUID, tasks []*task.Task) error
	Invalidate(ctx context.Context, ownerID uuid.UUID) error
}

type UserResolver interface {
	CurrentUser(ctx context.Context) (*user.User, auth.State)
}

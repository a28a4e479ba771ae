package handlers

import (
	"context"
	"taskBurst/internal/models/task"
	"taskBurst/internal/models/user"
	"taskBurst/internal/service"
	"taskBurst/internal/tasklist"

	"github.com/google/uuid"
)

type TaskService interface {
	HealthCheck(ctx context.Context) error
	CreateTask(ctx context.Context, in task.CreateInput) (service.Outcome, error)
	UpdateTask(ctx context.Context, id uuid.UUID, options ...task.PatchOption) (service.Outcome, error)
	ToggleComplete(ctx context.Context, id uuid.UUID, completed bool) (service.Outcome, error)
	DeleteTask(ctx context.Context, id uuid.UUID) (service.Outcome, error)
	GetTask(ctx context.Context, id uuid.UUID) (*task.Task, error)
	ListTasks(ctx context.Context, filter tasklist.FilterKey, sort tasklist.SortKey) (tasklist.View, error)
}

type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*user.Session, error)
	SignIn(ctx context.Context, email, password string) (*user.Session, error)
	SignOut(ctx context.Context, token string) error
	Refresh(ctx context.Context, refreshToken string) (*user.Session, error)
}

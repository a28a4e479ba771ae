package cache

import (
	"context"
	"taskBurst/internal/models/task"

	"github.com/google/uuid"
)

// TaskLists кэширует полный список задач владельца по ключу tasks:<owner>.
type TaskLists struct {
	cache *Cache
}

func NewTaskLists(c *Cache) *TaskLists {
	return &TaskLists{cache: c}
}

func taskListKey(ownerID uuid.UUID) string {
	return "tasks:" + ownerID.String()
}

func (l *TaskLists) Get(ctx context.Context, ownerID uuid.UUID) ([]*task.Task, bool, error) {
	var tasks []*task.Task
	found, err := l.cache.Get(ctx, taskListKey(ownerID), &tasks)
	if err != nil || !found {
		return nil, false, err
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}
	return tasks, true, nil
}

func (l *TaskLists) Set(ctx context.Context, ownerID uuid.UUID, tasks []*task.Task) error {
	if tasks == nil {
		tasks = []*task.Task{}
	}
	return l.cache.Set(ctx, taskListKey(ownerID), tasks)
}

func (l *TaskLists) Invalidate(ctx context.Context, ownerID uuid.UUID) error {
	return l.cache.Delete(ctx, taskListKey(ownerID))
}

// Nop используется, когда Redis не настроен: всегда промах.
type Nop struct{}

func (Nop) Get(ctx context.Context, ownerID uuid.UUID) ([]*task.Task, bool, error) {
	return nil, false, nil
}

func (Nop) Set(ctx context.Context, ownerID uuid.UUID, tasks []*task.Task) error {
	return nil
}

func (Nop) Invalidate(ctx context.Context, ownerID uuid.UUID) error {
	return nil
}

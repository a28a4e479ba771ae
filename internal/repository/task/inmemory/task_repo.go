package inmemory

import (
	"context"
	"slices"
	"sync"
	"taskBurst/internal/logger"
	"taskBurst/internal/models/task"
	repo "taskBurst/internal/repository"
	"time"

	"github.com/google/uuid"
)

type TaskStorage struct {
	storage map[uuid.UUID]*task.Task
	mtx     *sync.RWMutex
	ids     []uuid.UUID
	now     func() time.Time
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uuid.UUID]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
		now:     time.Now,
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: Соединение стабильно")
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, in task.NewTask) (*task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := s.now()
	created := &task.Task{
		ID:          uuid.New(),
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.storage[created.ID] = created.Clone()
	s.ids = append(s.ids, created.ID)
	return created, nil
}

func (s *TaskStorage) Update(ctx context.Context, ownerID, id uuid.UUID, patch task.Patch) (*task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[id]
	if !ok || existing.UserID != ownerID {
		return nil, repo.ErrNotFound
	}

	updated := patch.Apply(existing)
	updated.UpdatedAt = s.now()
	// монотонность updated_at даже при одинаковом времени
	if !updated.UpdatedAt.After(existing.UpdatedAt) {
		updated.UpdatedAt = existing.UpdatedAt.Add(time.Microsecond)
	}
	s.storage[id] = updated

	return updated.Clone(), nil
}

func (s *TaskStorage) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok || taskToGet.UserID != ownerID {
		return nil, repo.ErrNotFound
	}
	return taskToGet.Clone(), nil
}

// удаление окончательное, мягкого удаления нет
func (s *TaskStorage) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[id]
	if !ok || existing.UserID != ownerID {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	s.ids = slices.DeleteFunc(s.ids, func(v uuid.UUID) bool { return v == id })
	return nil
}

// задачи владельца, новые первыми
func (s *TaskStorage) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for i := len(s.ids) - 1; i >= 0; i-- {
		t := s.storage[s.ids[i]]
		if t.UserID != ownerID {
			continue
		}
		res = append(res, t.Clone())
	}

	slices.SortStableFunc(res, func(a, b *task.Task) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return res, nil
}

// невыполненные задачи с дедлайном раньше deadline, для фонового воркера
// ListDueBefore невыполненные задачи со сроком раньше deadline
// в порядке (due_date, id), начиная строго после курсора.
func (s *TaskStorage) ListDueBefore(ctx context.Context, deadline time.Time, after *task.DueCursor, limit int) ([]*task.Task, error) {
	if limit <= 0 {
		return []*task.Task{}, nil
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	due := []*task.Task{}
	for _, t := range s.storage {
		if t.IsCompleted || t.DueDate == nil || !t.DueDate.Before(deadline) {
			continue
		}
		if after != nil && task.CompareDue(*task.CursorAt(t), *after) <= 0 {
			continue
		}
		due = append(due, t)
	}

	slices.SortFunc(due, func(a, b *task.Task) int {
		return task.CompareDue(*task.CursorAt(a), *task.CursorAt(b))
	})
	if len(due) > limit {
		due = due[:limit]
	}

	tasks := make([]*task.Task, len(due))
	for i, t := range due {
		tasks[i] = t.Clone()
	}
	return tasks, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"taskBurst/internal/auth"
	"taskBurst/internal/cache"
	"taskBurst/internal/logger"
	"taskBurst/internal/models/task"
	"taskBurst/internal/notify"
	rep "taskBurst/internal/repository"
	"taskBurst/internal/tasklist"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// здесь происходит проверка ошибок бизнес-логики

// Outcome результат успешной мутации. Invalidate говорит клиенту,
// что его копия списка задач устарела и её нужно перечитать.
type Outcome struct {
	Task         *task.Task
	Notification notify.Notification
	Invalidate   bool
}

type TaskService struct {
	repo    TaskRepository
	users   UserResolver
	cache   TaskListCache
	sfGroup singleflight.Group

	// поколение списка владельца растёт при каждой инвалидации;
	// загрузка, заставшая смену поколения, в кэш не пишет
	genMtx      sync.Mutex
	generations map[uuid.UUID]uint64
}

type Option func(*TaskService)

func WithListCache(c TaskListCache) Option {
	return func(s *TaskService) {
		if c != nil {
			s.cache = c
		}
	}
}

func NewTaskService(repo TaskRepository, users UserResolver, options ...Option) *TaskService {
	s := &TaskService{
		repo:        repo,
		users:       users,
		cache:       cache.Nop{},
		generations: make(map[uuid.UUID]uint64),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *TaskService) owner(ctx context.Context) (uuid.UUID, error) {
	u, state := s.users.CurrentUser(ctx)
	if state != auth.StateSignedIn || u == nil {
		return uuid.Nil, NewNotAuthenticated()
	}
	return u.ID, nil
}

func (s *TaskService) CreateTask(ctx context.Context, in task.CreateInput) (Outcome, error) {
	ownerID, err := s.owner(ctx)
	if err != nil {
		return fail(notify.OpCreate, err)
	}

	valid, errs := task.ValidateCreate(in)
	if !errs.Empty() {
		logger.Debug("Service: задача не прошла проверку", zap.Any("errors", errs))
		return fail(notify.OpCreate, NewValidationError(errs))
	}

	created, err := s.repo.Create(ctx, task.NewTask{
		UserID:      ownerID,
		Title:       valid.Title,
		Description: valid.Description,
		Priority:    valid.Priority,
		DueDate:     valid.DueDate,
	})
	if err != nil {
		logger.Error("Service: не удалось создать задачу", err, zap.String("user_id", ownerID.String()))
		return fail(notify.OpCreate, NewBackendError(err))
	}

	s.invalidate(ctx, ownerID)
	logger.Info("Service: задача создана", zap.String("task_id", created.ID.String()))
	return Outcome{Task: created, Notification: notify.Created(), Invalidate: true}, nil
}

// UpdateTask отправляет в хранилище только переданные поля
func (s *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, options ...task.PatchOption) (Outcome, error) {
	ownerID, err := s.owner(ctx)
	if err != nil {
		return fail(notify.OpUpdate, err)
	}

	patch, errs := task.ValidatePatch(task.NewPatch(options...))
	if !errs.Empty() {
		return fail(notify.OpUpdate, NewValidationError(errs))
	}

	updated, err := s.update(ctx, ownerID, id, patch)
	if err != nil {
		return fail(notify.OpUpdate, err)
	}
	return Outcome{Task: updated, Notification: notify.Updated(), Invalidate: true}, nil
}

// ToggleComplete меняет только is_completed. Завершение задачи
// сопровождается отдельным уведомлением.
func (s *TaskService) ToggleComplete(ctx context.Context, id uuid.UUID, completed bool) (Outcome, error) {
	ownerID, err := s.owner(ctx)
	if err != nil {
		return fail(notify.OpUpdate, err)
	}

	updated, err := s.update(ctx, ownerID, id, task.NewPatch(task.WithCompleted(completed)))
	if err != nil {
		return fail(notify.OpUpdate, err)
	}

	n := notify.Updated()
	if completed {
		n = notify.Completed()
	}
	return Outcome{Task: updated, Notification: n, Invalidate: true}, nil
}

func (s *TaskService) update(ctx context.Context, ownerID, id uuid.UUID, patch task.Patch) (*task.Task, error) {
	updated, err := s.repo.Update(ctx, ownerID, id, patch)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return nil, NewNotFound(id)
		}
		logger.Error("Service: не удалось обновить задачу", err, zap.String("target_id", id.String()))
		return nil, NewBackendError(err)
	}

	s.invalidate(ctx, ownerID)
	return updated, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) (Outcome, error) {
	ownerID, err := s.owner(ctx)
	if err != nil {
		return fail(notify.OpDelete, err)
	}

	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return fail(notify.OpDelete, NewNotFound(id))
		}
		logger.Error("Service: не удалось удалить задачу", err, zap.String("target_id", id.String()))
		return fail(notify.OpDelete, NewBackendError(err))
	}

	s.invalidate(ctx, ownerID)
	logger.Info("Service: задача удалена", zap.String("task_id", id.String()))
	return Outcome{Notification: notify.Deleted(), Invalidate: true}, nil
}

func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	ownerID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	t, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound(id)
		}
		return nil, NewBackendError(err)
	}
	return t, nil
}

// ListTasks читает список владельца через кэш (cache-aside),
// одновременные промахи по одному владельцу схлопываются в один запрос.
func (s *TaskService) ListTasks(ctx context.Context, filter tasklist.FilterKey, sort tasklist.SortKey) (tasklist.View, error) {
	ownerID, err := s.owner(ctx)
	if err != nil {
		return tasklist.View{}, err
	}

	all, err := s.loadTasks(ctx, ownerID)
	if err != nil {
		return tasklist.View{}, err
	}
	return tasklist.Compose(all, filter, sort), nil
}

func (s *TaskService) loadTasks(ctx context.Context, ownerID uuid.UUID) ([]*task.Task, error) {
	cached, found, err := s.cache.Get(ctx, ownerID)
	if err != nil {
		logger.Warn("Service: ошибка чтения кэша, идём в хранилище", zap.Error(err))
	}
	if found {
		logger.Debug("Service: список задач из кэша", zap.String("user_id", ownerID.String()))
		return cached, nil
	}

	val, err, _ := s.sfGroup.Do(ownerID.String(), func() (any, error) {
		gen := s.generation(ownerID)
		tasks, err := s.repo.ListByOwner(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		s.storeIfCurrent(ctx, ownerID, gen, tasks)
		return tasks, nil
	})
	if err != nil {
		logger.Error("Service: получение задач", err, zap.String("user_id", ownerID.String()))
		return nil, NewBackendError(err)
	}

	tasks, _ := val.([]*task.Task)
	return tasks, nil
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("хранилище задач: %w", err)
	}
	return nil
}

func (s *TaskService) generation(ownerID uuid.UUID) uint64 {
	s.genMtx.Lock()
	defer s.genMtx.Unlock()
	return s.generations[ownerID]
}

// storeIfCurrent кладёт список в кэш, только если за время чтения
// мутаций не было. Запись идёт под genMtx: инвалидация либо увидит её
// и удалит, либо поднимет поколение раньше, и записи не будет.
func (s *TaskService) storeIfCurrent(ctx context.Context, ownerID uuid.UUID, gen uint64, tasks []*task.Task) {
	s.genMtx.Lock()
	defer s.genMtx.Unlock()

	if s.generations[ownerID] != gen {
		logger.Debug("Service: список устарел во время чтения, в кэш не кладём", zap.String("user_id", ownerID.String()))
		return
	}
	if err := s.cache.Set(ctx, ownerID, tasks); err != nil {
		logger.Warn("Service: не удалось положить список в кэш", zap.Error(err))
	}
}

func (s *TaskService) invalidate(ctx context.Context, ownerID uuid.UUID) {
	s.genMtx.Lock()
	s.generations[ownerID]++
	s.genMtx.Unlock()
	s.sfGroup.Forget(ownerID.String())

	if err := s.cache.Invalidate(ctx, ownerID); err != nil {
		logger.Warn("Service: не удалось сбросить кэш", zap.String("user_id", ownerID.String()), zap.Error(err))
	}
}

func fail(op notify.Operation, err error) (Outcome, error) {
	cause := err
	if busErr, ok := AsBusinessError(err); ok {
		cause = busErr.Cause()
	}
	return Outcome{Notification: notify.Failure(op, cause)}, err
}

package service_test

import (
	"context"
	"errors"
	"sync"
	"taskBurst/internal/auth"
	"taskBurst/internal/models/task"
	"taskBurst/internal/models/user"
	"taskBurst/internal/notify"
	"taskBurst/internal/repository"
	"taskBurst/internal/service"
	"taskBurst/internal/tasklist"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTaskRepository - мок репозитория
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskRepository) Create(ctx context.Context, in task.NewTask) (*task.Task, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, ownerID, id uuid.UUID, patch task.Patch) (*task.Task, error) {
	args := m.Called(ctx, ownerID, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockTaskRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*task.Task, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) ListDueBefore(ctx context.Context, deadline time.Time, after *task.DueCursor, limit int) ([]*task.Task, error) {
	args := m.Called(ctx, deadline, after, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

var _ service.TaskRepository = (*MockTaskRepository)(nil)

// MockTaskListCache - мок кэша списков
type MockTaskListCache struct {
	mock.Mock
}

func (m *MockTaskListCache) Get(ctx context.Context, ownerID uuid.UUID) ([]*task.Task, bool, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]*task.Task), args.Bool(1), args.Error(2)
}

func (m *MockTaskListCache) Set(ctx context.Context, ownerID uuid.UUID, tasks []*task.Task) error {
	args := m.Called(ctx, ownerID, tasks)
	return args.Error(0)
}

func (m *MockTaskListCache) Invalidate(ctx context.Context, ownerID uuid.UUID) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

var _ service.TaskListCache = (*MockTaskListCache)(nil)

type contextUsers struct{}

func (contextUsers) CurrentUser(ctx context.Context) (*user.User, auth.State) {
	return auth.FromContext(ctx)
}

var owner = &user.User{ID: uuid.New(), Email: "owner@example.com"}

func signedIn() context.Context {
	return auth.WithUser(context.Background(), owner)
}

func newService(repo *MockTaskRepository, c *MockTaskListCache) *service.TaskService {
	if c == nil {
		return service.NewTaskService(repo, contextUsers{})
	}
	return service.NewTaskService(repo, contextUsers{}, service.WithListCache(c))
}

func assertCode(t *testing.T, err error, code string) *service.BusinessError {
	t.Helper()
	busErr, ok := service.AsBusinessError(err)
	require.True(t, ok, "ожидали BusinessError, получили %v", err)
	assert.Equal(t, code, busErr.Code)
	return busErr
}

func TestTaskService_HealthCheck(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(*MockTaskRepository)
		expectError bool
	}{
		{
			name: "success - health check passes",
			setupMock: func(m *MockTaskRepository) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
		},
		{
			name: "error - health check fails",
			setupMock: func(m *MockTaskRepository) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("db connection failed"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			err := newService(mockRepo, nil).HealthCheck(context.Background())
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTaskService_CreateTask(t *testing.T) {
	desc := "  Semi-skimmed  "
	stored := &task.Task{ID: uuid.New(), UserID: owner.ID, Title: "Buy milk", Priority: task.PriorityMedium}

	mockRepo := new(MockTaskRepository)
	mockCache := new(MockTaskListCache)
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(in task.NewTask) bool {
		return in.UserID == owner.ID &&
			in.Title == "Buy milk" &&
			in.Priority == task.PriorityMedium &&
			in.Description != nil && *in.Description == "Semi-skimmed"
	})).Return(stored, nil)
	mockCache.On("Invalidate", mock.Anything, owner.ID).Return(nil)

	out, err := newService(mockRepo, mockCache).CreateTask(signedIn(), task.CreateInput{Title: "  Buy milk ", Description: &desc})
	require.NoError(t, err)

	assert.Equal(t, stored, out.Task)
	assert.True(t, out.Invalidate)
	assert.Equal(t, notify.KindCreated, out.Notification.Kind)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestTaskService_CreateTaskValidation(t *testing.T) {
	tests := []struct {
		name   string
		input  task.CreateInput
		field  string
		reason string
	}{
		{name: "whitespace title", input: task.CreateInput{Title: "   "}, field: "title", reason: "EmptyTitle"},
		{name: "invalid priority", input: task.CreateInput{Title: "ok", Priority: "urgent"}, field: "priority", reason: "InvalidPriority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)

			out, err := newService(mockRepo, nil).CreateTask(signedIn(), tt.input)
			busErr := assertCode(t, err, service.CodeValidation)
			assert.Equal(t, tt.reason, busErr.Details[tt.field])

			assert.Nil(t, out.Task)
			assert.False(t, out.Invalidate)
			assert.Equal(t, notify.KindFailed, out.Notification.Kind)
			assert.Equal(t, "Couldn't create task", out.Notification.Title)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestTaskService_NotAuthenticated(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	svc := newService(mockRepo, nil)
	ctxs := map[string]context.Context{
		"initializing": context.Background(),
		"signed out":   auth.WithSignedOut(context.Background()),
	}

	for name, ctx := range ctxs {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateTask(ctx, task.CreateInput{Title: "x"})
			assertCode(t, err, service.CodeNotAuthenticated)

			_, err = svc.UpdateTask(ctx, uuid.New(), task.WithTitle("x"))
			assertCode(t, err, service.CodeNotAuthenticated)

			_, err = svc.ToggleComplete(ctx, uuid.New(), true)
			assertCode(t, err, service.CodeNotAuthenticated)

			out, err := svc.DeleteTask(ctx, uuid.New())
			assertCode(t, err, service.CodeNotAuthenticated)
			assert.Equal(t, "Couldn't delete task", out.Notification.Title)

			_, err = svc.ListTasks(ctx, tasklist.FilterAll, tasklist.SortCreated)
			assertCode(t, err, service.CodeNotAuthenticated)
		})
	}
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTaskService_CreateTaskBackendError(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("permission denied for table tasks"))

	out, err := newService(mockRepo, nil).CreateTask(signedIn(), task.CreateInput{Title: "x"})
	busErr := assertCode(t, err, service.CodeBackend)

	assert.Equal(t, "permission denied for table tasks", busErr.Message)
	assert.Equal(t, "permission denied for table tasks", out.Notification.Message)
	assert.Equal(t, notify.VariantDestructive, out.Notification.Variant)
}

func TestTaskService_UpdateTask(t *testing.T) {
	id := uuid.New()
	updated := &task.Task{ID: id, UserID: owner.ID, Title: "Renamed", Priority: task.PriorityHigh}

	mockRepo := new(MockTaskRepository)
	mockRepo.On("Update", mock.Anything, owner.ID, id, mock.MatchedBy(func(p task.Patch) bool {
		return p.Title != nil && *p.Title == "Renamed" &&
			p.Priority != nil && *p.Priority == task.PriorityHigh &&
			p.IsCompleted == nil && p.DueDate == nil && p.Description == nil
	})).Return(updated, nil)

	out, err := newService(mockRepo, nil).UpdateTask(signedIn(), id,
		task.WithTitle(" Renamed "),
		task.WithPriority(task.PriorityHigh))
	require.NoError(t, err)
	assert.Equal(t, updated, out.Task)
	assert.Equal(t, notify.KindUpdated, out.Notification.Kind)
	assert.True(t, out.Invalidate)
	mockRepo.AssertExpectations(t)
}

func TestTaskService_UpdateTaskValidation(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	svc := newService(mockRepo, nil)

	_, err := svc.UpdateTask(signedIn(), uuid.New())
	busErr := assertCode(t, err, service.CodeValidation)
	assert.Equal(t, "NoChanges", busErr.Details["patch"])

	_, err = svc.UpdateTask(signedIn(), uuid.New(), task.WithTitle(""))
	busErr = assertCode(t, err, service.CodeValidation)
	assert.Equal(t, "EmptyTitle", busErr.Details["title"])

	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskService_UpdateTaskNotFound(t *testing.T) {
	id := uuid.New()
	mockRepo := new(MockTaskRepository)
	mockRepo.On("Update", mock.Anything, owner.ID, id, mock.Anything).Return(nil, repository.ErrNotFound)

	out, err := newService(mockRepo, nil).UpdateTask(signedIn(), id, task.WithTitle("x"))
	assertCode(t, err, service.CodeNotFound)
	assert.Equal(t, "Couldn't update task", out.Notification.Title)
	assert.False(t, out.Invalidate)
}

func TestTaskService_ToggleComplete(t *testing.T) {
	id := uuid.New()
	before := time.Now().Add(-time.Hour)

	tests := []struct {
		name      string
		completed bool
		wantKind  notify.Kind
	}{
		{name: "complete", completed: true, wantKind: notify.KindCompleted},
		{name: "reopen", completed: false, wantKind: notify.KindUpdated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := &task.Task{ID: id, UserID: owner.ID, Title: "x", IsCompleted: tt.completed, UpdatedAt: time.Now()}

			mockRepo := new(MockTaskRepository)
			mockCache := new(MockTaskListCache)
			mockRepo.On("Update", mock.Anything, owner.ID, id, task.NewPatch(task.WithCompleted(tt.completed))).Return(stored, nil)
			mockCache.On("Invalidate", mock.Anything, owner.ID).Return(nil)

			out, err := newService(mockRepo, mockCache).ToggleComplete(signedIn(), id, tt.completed)
			require.NoError(t, err)

			assert.Equal(t, tt.completed, out.Task.IsCompleted)
			assert.True(t, out.Task.UpdatedAt.After(before))
			assert.Equal(t, tt.wantKind, out.Notification.Kind)
			assert.True(t, out.Invalidate)
			mockRepo.AssertExpectations(t)
			mockCache.AssertExpectations(t)
		})
	}
}

func TestTaskService_DeleteTask(t *testing.T) {
	id := uuid.New()

	t.Run("success", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockCache := new(MockTaskListCache)
		mockRepo.On("Delete", mock.Anything, owner.ID, id).Return(nil)
		mockCache.On("Invalidate", mock.Anything, owner.ID).Return(nil)

		out, err := newService(mockRepo, mockCache).DeleteTask(signedIn(), id)
		require.NoError(t, err)
		assert.Equal(t, notify.KindDeleted, out.Notification.Kind)
		assert.True(t, out.Invalidate)
		mockCache.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Delete", mock.Anything, owner.ID, id).Return(repository.ErrNotFound)

		_, err := newService(mockRepo, nil).DeleteTask(signedIn(), id)
		assertCode(t, err, service.CodeNotFound)
	})

	t.Run("backend", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Delete", mock.Anything, owner.ID, id).Return(errors.New("connection reset"))

		out, err := newService(mockRepo, nil).DeleteTask(signedIn(), id)
		assertCode(t, err, service.CodeBackend)
		assert.Equal(t, "connection reset", out.Notification.Message)
	})
}

func TestTaskService_InvalidateFailureDoesNotFailMutation(t *testing.T) {
	id := uuid.New()
	mockRepo := new(MockTaskRepository)
	mockCache := new(MockTaskListCache)
	mockRepo.On("Delete", mock.Anything, owner.ID, id).Return(nil)
	mockCache.On("Invalidate", mock.Anything, owner.ID).Return(errors.New("redis down"))

	out, err := newService(mockRepo, mockCache).DeleteTask(signedIn(), id)
	require.NoError(t, err)
	assert.True(t, out.Invalidate)
}

func TestTaskService_GetTask(t *testing.T) {
	id := uuid.New()
	stored := &task.Task{ID: id, UserID: owner.ID, Title: "x"}

	mockRepo := new(MockTaskRepository)
	mockRepo.On("GetByID", mock.Anything, owner.ID, id).Return(stored, nil)
	mockRepo.On("GetByID", mock.Anything, owner.ID, mock.Anything).Return(nil, repository.ErrNotFound)
	svc := newService(mockRepo, nil)

	got, err := svc.GetTask(signedIn(), id)
	require.NoError(t, err)
	assert.Equal(t, stored, got)

	_, err = svc.GetTask(signedIn(), uuid.New())
	assertCode(t, err, service.CodeNotFound)
}

func scenarioTasks() []*task.Task {
	now := time.Now()
	tomorrow := now.Add(24 * time.Hour)
	nextWeek := now.Add(7 * 24 * time.Hour)
	return []*task.Task{
		{ID: uuid.New(), Title: "A", Priority: task.PriorityLow, DueDate: &tomorrow, CreatedAt: now.Add(-3 * time.Hour)},
		{ID: uuid.New(), Title: "B", Priority: task.PriorityHigh, IsCompleted: true, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: uuid.New(), Title: "C", Priority: task.PriorityMedium, DueDate: &nextWeek, CreatedAt: now.Add(-time.Hour)},
	}
}

func TestTaskService_ListTasksCacheMiss(t *testing.T) {
	tasks := scenarioTasks()

	mockRepo := new(MockTaskRepository)
	mockCache := new(MockTaskListCache)
	mockCache.On("Get", mock.Anything, owner.ID).Return(nil, false, nil)
	mockRepo.On("ListByOwner", mock.Anything, owner.ID).Return(tasks, nil)
	mockCache.On("Set", mock.Anything, owner.ID, tasks).Return(nil)

	view, err := newService(mockRepo, mockCache).ListTasks(signedIn(), tasklist.FilterPending, tasklist.SortPriority)
	require.NoError(t, err)

	require.Len(t, view.Tasks, 2)
	assert.Equal(t, "C", view.Tasks[0].Title)
	assert.Equal(t, "A", view.Tasks[1].Title)
	assert.Equal(t, 3, view.Stats.Total)
	assert.Equal(t, 1, view.Stats.Completed)
	require.NotNil(t, view.Stats.Percentage)
	assert.Equal(t, 33, *view.Stats.Percentage)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestTaskService_ListTasksCacheHit(t *testing.T) {
	tasks := scenarioTasks()

	mockRepo := new(MockTaskRepository)
	mockCache := new(MockTaskListCache)
	mockCache.On("Get", mock.Anything, owner.ID).Return(tasks, true, nil)

	view, err := newService(mockRepo, mockCache).ListTasks(signedIn(), tasklist.FilterAll, tasklist.SortCreated)
	require.NoError(t, err)
	require.Len(t, view.Tasks, 3)
	assert.Equal(t, "C", view.Tasks[0].Title)
	mockRepo.AssertNotCalled(t, "ListByOwner", mock.Anything, mock.Anything)
}

func TestTaskService_ListTasksCacheErrorFallsBack(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockCache := new(MockTaskListCache)
	mockCache.On("Get", mock.Anything, owner.ID).Return(nil, false, errors.New("redis down"))
	mockCache.On("Set", mock.Anything, owner.ID, mock.Anything).Return(errors.New("redis down"))
	mockRepo.On("ListByOwner", mock.Anything, owner.ID).Return([]*task.Task{}, nil)

	view, err := newService(mockRepo, mockCache).ListTasks(signedIn(), tasklist.FilterAll, tasklist.SortCreated)
	require.NoError(t, err)
	assert.Empty(t, view.Tasks)
	assert.Nil(t, view.Stats.Percentage)
}

func TestTaskService_ListTasksBackendError(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockRepo.On("ListByOwner", mock.Anything, owner.ID).Return(nil, errors.New("timeout"))

	_, err := newService(mockRepo, nil).ListTasks(signedIn(), tasklist.FilterAll, tasklist.SortCreated)
	busErr := assertCode(t, err, service.CodeBackend)
	assert.Equal(t, "timeout", busErr.Message)
}

// memoryListCache настоящий кэш в памяти, чтобы видеть, что в нём осталось
type memoryListCache struct {
	mtx   sync.Mutex
	lists map[uuid.UUID][]*task.Task
}

func newMemoryListCache() *memoryListCache {
	return &memoryListCache{lists: make(map[uuid.UUID][]*task.Task)}
}

func (c *memoryListCache) Get(ctx context.Context, ownerID uuid.UUID) ([]*task.Task, bool, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	tasks, ok := c.lists[ownerID]
	return tasks, ok, nil
}

func (c *memoryListCache) Set(ctx context.Context, ownerID uuid.UUID, tasks []*task.Task) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.lists[ownerID] = tasks
	return nil
}

func (c *memoryListCache) Invalidate(ctx context.Context, ownerID uuid.UUID) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	delete(c.lists, ownerID)
	return nil
}

func TestTaskService_ListTasksDoesNotCacheListReadBeforeMutation(t *testing.T) {
	created := &task.Task{ID: uuid.New(), UserID: owner.ID, Title: "Fresh", Priority: task.PriorityMedium}
	listCache := newMemoryListCache()

	read := make(chan struct{})
	release := make(chan struct{})

	mockRepo := new(MockTaskRepository)
	mockRepo.On("ListByOwner", mock.Anything, owner.ID).
		Run(func(mock.Arguments) {
			close(read)
			<-release
		}).
		Return([]*task.Task{}, nil).Once()
	mockRepo.On("ListByOwner", mock.Anything, owner.ID).Return([]*task.Task{created}, nil).Once()
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(created, nil)

	svc := service.NewTaskService(mockRepo, contextUsers{}, service.WithListCache(listCache))

	done := make(chan struct{})
	go func() {
		defer close(done)
		view, err := svc.ListTasks(signedIn(), tasklist.FilterAll, tasklist.SortCreated)
		assert.NoError(t, err)
		assert.Empty(t, view.Tasks, "чтение началось до создания")
	}()

	<-read
	out, err := svc.CreateTask(signedIn(), task.CreateInput{Title: "Fresh"})
	require.NoError(t, err)
	require.True(t, out.Invalidate)
	close(release)
	<-done

	_, cached, _ := listCache.Get(context.Background(), owner.ID)
	assert.False(t, cached, "устаревший список не должен попасть в кэш")

	view, err := svc.ListTasks(signedIn(), tasklist.FilterAll, tasklist.SortCreated)
	require.NoError(t, err)
	require.Len(t, view.Tasks, 1)
	assert.Equal(t, "Fresh", view.Tasks[0].Title)
	mockRepo.AssertExpectations(t)
}

func TestBusinessError(t *testing.T) {
	cause := errors.New("boom")
	busErr := service.NewBackendError(cause)
	assert.ErrorIs(t, busErr, cause)
	assert.Equal(t, "[BACKEND_ERROR] boom", busErr.Error())

	nf := service.NewNotFound(uuid.Nil)
	assert.Contains(t, nf.Error(), "NOT_FOUND")
	assert.Equal(t, nf.Message, nf.Cause().Error())
}

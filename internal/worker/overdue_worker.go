package worker

import (
	"context"
	"fmt"
	"sync"
	"taskBurst/internal/logger"
	"taskBurst/internal/models/task"
	"taskBurst/internal/notify"
	"taskBurst/internal/tasklist"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultInterval = 5 * time.Minute
const DefaultBatchSize = 100

type DueTaskSource interface {
	ListDueBefore(ctx context.Context, deadline time.Time, after *task.DueCursor, limit int) ([]*task.Task, error)
}

// OverdueWorker периодически ищет просроченные задачи и отправляет
// владельцу уведомление. Об одной задаче с одним сроком сообщает один раз.
type OverdueWorker struct {
	repo      DueTaskSource
	sink      notify.Sink
	interval  time.Duration
	batchSize int
	now       func() time.Time

	mtx      sync.Mutex
	notified map[uuid.UUID]time.Time
}

type Option func(*OverdueWorker)

func WithInterval(interval time.Duration) Option {
	return func(w *OverdueWorker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

func WithBatchSize(batchSize int) Option {
	return func(w *OverdueWorker) {
		if batchSize > 0 {
			w.batchSize = batchSize
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *OverdueWorker) {
		w.now = now
	}
}

func NewOverdueWorker(repo DueTaskSource, sink notify.Sink, options ...Option) *OverdueWorker {
	w := &OverdueWorker{
		repo:      repo,
		sink:      sink,
		interval:  DefaultInterval,
		batchSize: DefaultBatchSize,
		now:       time.Now,
		notified:  make(map[uuid.UUID]time.Time),
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *OverdueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logger.Info("Worker: Фоновая проверка задач на просроченность", zap.Time("started_at", w.now()))
			if _, err := w.Check(ctx); err != nil {
				logger.Warn("Worker: ошибка проверки", zap.Error(err))
			}
		case <-ctx.Done():
			logger.Info("Worker: Фоновая проверка останавливается")
			return
		}
	}
}

// Check проходит все просроченные задачи страницами по batchSize
// и возвращает число отправленных уведомлений.
func (w *OverdueWorker) Check(ctx context.Context) (int, error) {
	start := time.Now()
	now := w.now()
	deadline := tasklist.StartOfDay(now)

	w.mtx.Lock()
	defer w.mtx.Unlock()

	seen := make(map[uuid.UUID]struct{})
	sent := 0
	pages := 0
	var cursor *task.DueCursor
	for {
		tasks, err := w.repo.ListDueBefore(ctx, deadline, cursor, w.batchSize)
		if err != nil {
			return sent, fmt.Errorf("получение задач с истёкшим сроком: %w", err)
		}
		pages++

		for _, t := range tasks {
			seen[t.ID] = struct{}{}
			if w.publish(ctx, t, now) {
				sent++
			}
		}

		if len(tasks) < w.batchSize {
			break
		}
		cursor = task.CursorAt(tasks[len(tasks)-1])
	}

	// проход полный: всё, чего в нём нет, выполнено, удалено или перенесено
	for id := range w.notified {
		if _, ok := seen[id]; !ok {
			delete(w.notified, id)
		}
	}

	logger.Info(
		"Worker: Завершение проверки задач",
		zap.Duration("ms", time.Since(start)),
		zap.Int("checked", len(seen)),
		zap.Int("pages", pages),
		zap.Int("notified", sent),
	)
	return sent, nil
}

func (w *OverdueWorker) publish(ctx context.Context, t *task.Task, now time.Time) bool {
	if !tasklist.IsOverdue(t, now) {
		return false
	}
	if due, ok := w.notified[t.ID]; ok && due.Equal(*t.DueDate) {
		return false
	}

	if err := w.sink.Publish(ctx, t.UserID, notify.Overdue(t.Title)); err != nil {
		logger.Warn("Worker: Ошибка отправки уведомления",
			zap.String("task_id", t.ID.String()),
			zap.Error(err))
		return false
	}
	w.notified[t.ID] = *t.DueDate
	return true
}

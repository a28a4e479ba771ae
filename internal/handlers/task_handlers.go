package handlers

import (
	"errors"
	"net/http"
	"taskBurst/internal/handlers/dto"
	"taskBurst/internal/logger"
	"taskBurst/internal/notify"
	"taskBurst/internal/service"
	"taskBurst/internal/tasklist"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
	now         func() time.Time
}

func NewTaskHandler(taskService TaskService) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
		now:         time.Now,
	}
}

func (s *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	filter, err := tasklist.ParseFilterKey(r.URL.Query().Get("filter"))
	if err != nil {
		logger.Warn("HTTP: Неверное значение параметра",
			zap.String("query", "filter"),
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, service.CodeValidation, err.Error())
		return
	}

	sort, err := tasklist.ParseSortKey(r.URL.Query().Get("sort"))
	if err != nil {
		logger.Warn("HTTP: Неверное значение параметра",
			zap.String("query", "sort"),
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, service.CodeValidation, err.Error())
		return
	}

	view, err := s.TaskService.ListTasks(r.Context(), filter, sort)
	if err != nil {
		s.serviceError(w, r, err, nil, "list_tasks")
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(view.Tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	response := dto.FromView(view, s.now())
	if r.URL.Query().Get("group") == "status" {
		response = response.WithSections(view, s.now())
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.taskID(w, r)
	if !ok {
		return
	}

	t, err := s.TaskService.GetTask(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err, nil, "get_task")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(t, s.now())))
}

func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CreateTaskRequest
	if !s.decode(w, r, &request) {
		return
	}

	logger.Info("HTTP: Вызов сервиса создания задач")
	out, err := s.TaskService.CreateTask(r.Context(), request.ToInput())
	if err != nil {
		s.serviceError(w, r, err, &out.Notification, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", out.Task.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	s.writeOutcome(w, http.StatusCreated, out)
}

func (s *TaskHandler) PatchTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := s.taskID(w, r)
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	if !s.decode(w, r, &request) {
		return
	}

	logger.Info("HTTP: запрос к сервису обновления данных")
	out, err := s.TaskService.UpdateTask(r.Context(), id, request.ToOptions()...)
	if err != nil {
		s.serviceError(w, r, err, &out.Notification, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	s.writeOutcome(w, http.StatusOK, out)
}

func (s *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := s.taskID(w, r)
	if !ok {
		return
	}

	var request dto.ToggleCompleteRequest
	if !s.decode(w, r, &request) {
		return
	}
	if request.IsCompleted == nil {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "is_completed"),
			zap.String("error", "empty_field"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, service.CodeValidation, "поле is_completed обязательно")
		return
	}

	out, err := s.TaskService.ToggleComplete(r.Context(), id, *request.IsCompleted)
	if err != nil {
		s.serviceError(w, r, err, &out.Notification, "toggle_complete")
		return
	}

	logger.Info("HTTP_OUT: Статус задачи изменён",
		zap.String("task_id", id.String()),
		zap.Bool("is_completed", *request.IsCompleted),
		zap.Duration("ms", time.Since(start)))

	s.writeOutcome(w, http.StatusOK, out)
}

func (s *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := s.taskID(w, r)
	if !ok {
		return
	}

	logger.Info("HTTP: Обращение к сервису для удаления задачи")
	out, err := s.TaskService.DeleteTask(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err, &out.Notification, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	s.writeOutcome(w, http.StatusOK, out)
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Health check не прошёл", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("error", err.Error()))
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("status", "ok"))
}

func (s *TaskHandler) writeOutcome(w http.ResponseWriter, code int, out service.Outcome) {
	payload := []Payload{
		toPayload("notification", out.Notification),
		toPayload("invalidate", out.Invalidate),
	}
	if out.Task != nil {
		payload = append(payload, toPayload("task", dto.FromTask(out.Task, s.now())))
	}
	if out.Invalidate {
		w.Header().Set(cacheInvalidateHeader, "tasks")
	}
	responseWithJSON(w, code, payload...)
}

func (s *TaskHandler) serviceError(w http.ResponseWriter, r *http.Request, err error, n *notify.Notification, operation string) {
	if n != nil && n.Kind == "" {
		n = nil
	}
	if handleBusinessError(w, err, n) {
		return
	}

	logger.Error("HTTP: Ошибка Service", err,
		zap.String("operation", operation),
		zap.String("client_ip", r.RemoteAddr))
	responseWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
}

func (s *TaskHandler) taskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := parseID(r)
	if err != nil {
		logger.Warn("HTTP: Не удалось получить id",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, service.CodeValidation, err.Error())
		return uuid.Nil, false
	}
	return id, true
}

func (s *TaskHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := decodeJSON(w, r, dst)
	if err == nil {
		return true
	}

	if errors.Is(err, errUnsupportedMedia) {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", err.Error())
		return false
	}

	logger.Warn("HTTP: ошибка чтения JSON",
		zap.Error(err),
		zap.String("client_ip", r.RemoteAddr))
	responseWithError(w, http.StatusBadRequest, service.CodeValidation, err.Error())
	return false
}

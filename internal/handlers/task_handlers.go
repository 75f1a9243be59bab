package handlers

import (
	"context"
	"net/http"
	"taskBoard/internal/auth"
	"taskBoard/internal/handlers/dto"
	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TaskHandler struct {
	Service Service
}

func NewTaskHandler(svc Service) *TaskHandler {
	return &TaskHandler{
		Service: svc,
	}
}

func logOut(msg string, start time.Time, status int, fields ...zap.Field) {
	fields = append(fields,
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", status))
	logger.Info("HTTP_OUT: "+msg, fields...)
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	query := r.URL.Query()
	filter := task.Filter{
		Status:    query.Get("status"),
		ProjectID: query.Get("projectId"),
		Group:     query.Get("group"),
		OwnerID:   auth.UserFromContext(r.Context()),
	}

	tasks, err := h.Service.ListTasks(r.Context(), filter)
	if err != nil {
		handleError(w, r, err, "list_tasks")
		return
	}

	logOut("Задачи получены", start, http.StatusOK, zap.Int("count", len(tasks)))
	responseWithData(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CreateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	created, err := h.Service.CreateTask(r.Context(), request.ToNewTask(), auth.UserFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err, "create_task")
		return
	}

	logOut("Задача создана", start, http.StatusCreated, zap.String("task_id", created.ID))
	responseWithData(w, http.StatusCreated, dto.FromTask(created))
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := chi.URLParam(r, "id")
	t, err := h.Service.GetTask(r.Context(), id)
	if err != nil {
		handleError(w, r, err, "get_task")
		return
	}

	logOut("Задача получена", start, http.StatusOK, zap.String("task_id", id))
	responseWithData(w, http.StatusOK, dto.FromTask(t))
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := chi.URLParam(r, "id")

	var request dto.UpdateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	patch, err := request.ToPatch()
	if err != nil {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "deadline"),
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.Service.UpdateTask(r.Context(), id, patch)
	if err != nil {
		handleError(w, r, err, "update_task")
		return
	}

	logOut("Задача обновлена", start, http.StatusOK, zap.String("task_id", id))
	responseWithData(w, http.StatusOK, dto.FromTask(updated))
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := chi.URLParam(r, "id")
	if err := h.Service.DeleteTask(r.Context(), id); err != nil {
		handleError(w, r, err, "delete_task")
		return
	}

	logOut("Задача удалена", start, http.StatusOK, zap.String("task_id", id))
	responseSuccess(w)
}

func (h *TaskHandler) MarkDone(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "done", h.Service.MarkDone)
}

func (h *TaskHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "reopen", h.Service.Reopen)
}

func (h *TaskHandler) transition(w http.ResponseWriter, r *http.Request, operation string,
	apply func(ctx context.Context, id string) (*task.Task, error)) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := chi.URLParam(r, "id")
	t, err := apply(r.Context(), id)
	if err != nil {
		handleError(w, r, err, operation)
		return
	}

	logOut("Статус задачи изменён", start, http.StatusOK,
		zap.String("task_id", id),
		zap.String("operation", operation))
	responseWithData(w, http.StatusOK, dto.FromTask(t))
}

func (h *TaskHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := chi.URLParam(r, "id")
	if err := h.Service.Cancel(r.Context(), id); err != nil {
		handleError(w, r, err, "cancel")
		return
	}

	logOut("Задача отменена", start, http.StatusOK, zap.String("task_id", id))
	responseSuccess(w)
}

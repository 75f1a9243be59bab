package handlers

import (
	"net/http"
	"taskBoard/internal/auth"
	"taskBoard/internal/handlers/dto"
	"taskBoard/internal/logger"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const serviceName = "taskboard"

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := h.Service.HealthCheck(r.Context()); err != nil {
		logger.Warn("HTTP: Хранилище недоступно", zap.Error(err))
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("service", serviceName),
			toPayload("backend", h.Service.Backend()),
			toPayload("error", err.Error()),
		)
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", serviceName),
		toPayload("backend", h.Service.Backend()),
	)
}

func (h *TaskHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")
	responseWithData(w, http.StatusOK, h.Service.ListUsers())
}

func (h *TaskHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	projects, err := h.Service.ListProjects(r.Context(), auth.UserFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err, "list_projects")
		return
	}

	logOut("Проекты получены", start, http.StatusOK, zap.Int("count", len(projects)))
	responseWithData(w, http.StatusOK, projects)
}

func (h *TaskHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CreateProjectRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	p, err := h.Service.CreateProject(r.Context(), request.ToNewProject(), auth.UserFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err, "create_project")
		return
	}

	logOut("Проект создан", start, http.StatusCreated, zap.String("project_id", p.ID))
	responseWithData(w, http.StatusCreated, p)
}

func (h *TaskHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := chi.URLParam(r, "id")
	p, err := h.Service.GetProject(r.Context(), id)
	if err != nil {
		handleError(w, r, err, "get_project")
		return
	}

	logOut("Проект получен", start, http.StatusOK, zap.String("project_id", id))
	responseWithData(w, http.StatusOK, p)
}

func (h *TaskHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := chi.URLParam(r, "id")
	if err := h.Service.DeleteProject(r.Context(), id, auth.UserFromContext(r.Context())); err != nil {
		handleError(w, r, err, "delete_project")
		return
	}

	logOut("Проект удалён", start, http.StatusOK, zap.String("project_id", id))
	responseSuccess(w)
}

func (h *TaskHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	groups, err := h.Service.ListGroups(r.Context(), auth.UserFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err, "list_groups")
		return
	}

	logOut("Группы получены", start, http.StatusOK, zap.Int("count", len(groups)))
	responseWithData(w, http.StatusOK, groups)
}

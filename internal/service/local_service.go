package service

import (
	"context"
	"fmt"
	"strings"
	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"

	"go.uber.org/zap"
)

const BackendLocal = "local"

// здесь происходит проверка ошибок бизнес-логики

type LocalService struct {
	store TaskStore
}

func NewLocalService(store TaskStore) *LocalService {
	return &LocalService{store: store}
}

func (s *LocalService) Backend() string {
	return BackendLocal
}

func (s *LocalService) HealthCheck(ctx context.Context) error {
	return s.store.HealthCheck(ctx)
}

func (s *LocalService) ListUsers() []task.User {
	return task.Users
}

// Seed добавляет проекты по умолчанию, если таблица пуста
func (s *LocalService) Seed(ctx context.Context) error {
	projects, err := s.store.ListProjects(ctx, "")
	if err != nil {
		return fmt.Errorf("проверка проектов: %w", err)
	}
	if len(projects) > 0 {
		return nil
	}

	for _, p := range task.DefaultProjects {
		if _, err := s.store.CreateProject(ctx, p, ""); err != nil {
			return fmt.Errorf("создание проекта %s: %w", p.Name, err)
		}
	}
	logger.Info("Service: Добавлены проекты по умолчанию", zap.Int("count", len(task.DefaultProjects)))
	return nil
}

func (s *LocalService) ListProjects(ctx context.Context, ownerID string) ([]*task.Project, error) {
	projects, err := s.store.ListProjects(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("получение проектов: %w", err)
	}
	return projects, nil
}

func (s *LocalService) GetProject(ctx context.Context, id string) (*task.Project, error) {
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, fromStore(err, "проект", id, "получение проекта")
	}
	return p, nil
}

func (s *LocalService) CreateProject(ctx context.Context, in task.NewProject, ownerID string) (*task.Project, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, NewValidationError("name", "обязательное поле")
	}
	if in.Emoji == "" {
		return nil, NewValidationError("emoji", "обязательное поле")
	}
	if in.Gradient == "" {
		return nil, NewValidationError("gradient", "обязательное поле")
	}

	p, err := s.store.CreateProject(ctx, in, ownerID)
	if err != nil {
		return nil, fmt.Errorf("создание проекта: %w", err)
	}
	logger.Info("Service: Проект создан", zap.String("project_id", p.ID))
	return p, nil
}

// DeleteProject удаляет проект вместе с задачами, нужен вошедший пользователь
func (s *LocalService) DeleteProject(ctx context.Context, id, userID string) error {
	if userID == "" {
		return NewUnauthorized("удаление проекта требует входа")
	}

	deleted, err := s.store.DeleteProject(ctx, id)
	if err != nil {
		return fmt.Errorf("удаление проекта: %w", err)
	}
	if !deleted {
		return NewNotFound("проект", id)
	}
	logger.Info("Service: Проект удалён", zap.String("project_id", id), zap.String("user_id", userID))
	return nil
}

// ListGroups показывает проекты в виде групп с числом задач
func (s *LocalService) ListGroups(ctx context.Context, ownerID string) ([]task.Group, error) {
	projects, err := s.ListProjects(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.ListTasks(ctx, task.Filter{OwnerID: ownerID})
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	counts := make(map[string]int, len(projects))
	for _, t := range tasks {
		counts[t.ProjectID]++
	}

	groups := make([]task.Group, 0, len(projects))
	for _, p := range projects {
		groups = append(groups, task.Group{
			ID:        p.ID,
			Title:     p.Name,
			Color:     p.Gradient,
			Emoji:     p.Emoji,
			TaskCount: counts[p.ID],
		})
	}
	return groups, nil
}

func (s *LocalService) ListTasks(ctx context.Context, f task.Filter) ([]*task.Task, error) {
	if f.Status != "" && !task.Status(f.Status).IsLocal() {
		return nil, NewValidationError("status", "допустимы todo или done")
	}
	if f.ProjectID == "" {
		f.ProjectID = f.Group
	}
	f.Group = ""

	tasks, err := s.store.ListTasks(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

func (s *LocalService) GetTask(ctx context.Context, id string) (*task.Task, error) {
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		if isNotFound(err) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id))
		}
		return nil, fromStore(err, "задача", id, "получение задачи")
	}
	return t, nil
}

func (s *LocalService) CreateTask(ctx context.Context, in task.NewTask, ownerID string) (*task.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, NewValidationError("title", "обязательное поле")
	}
	if in.AssigneeID == "" {
		return nil, NewValidationError("assigneeId", "обязательное поле")
	}
	if !task.IsKnownUser(in.AssigneeID) {
		return nil, NewValidationError("assigneeId", "неизвестный пользователь")
	}
	if in.ProjectID == "" {
		return nil, NewValidationError("projectId", "обязательное поле")
	}
	if in.Deadline != nil {
		if err := task.ValidateDeadline(*in.Deadline); err != nil {
			return nil, NewValidationError("deadline", err.Error())
		}
	}

	if _, err := s.store.GetProject(ctx, in.ProjectID); err != nil {
		if isNotFound(err) {
			return nil, NewValidationError("projectId", "проект не существует")
		}
		return nil, fmt.Errorf("проверка проекта: %w", err)
	}

	t, err := s.store.CreateTask(ctx, in, ownerID)
	if err != nil {
		return nil, fromStore(err, "задача", "", "создание задачи")
	}
	logger.Info("Service: Задача создана", zap.String("task_id", t.ID))
	return t, nil
}

func (s *LocalService) validatePatch(p task.Patch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return NewValidationError("title", "не может быть пустым")
	}
	if p.AssigneeID != nil && !task.IsKnownUser(*p.AssigneeID) {
		return NewValidationError("assigneeId", "неизвестный пользователь")
	}
	if p.ProjectID != nil && *p.ProjectID == "" {
		return NewValidationError("projectId", "не может быть пустым")
	}
	if p.Deadline != nil {
		if err := task.ValidateDeadline(*p.Deadline); err != nil {
			return NewValidationError("deadline", err.Error())
		}
	}
	if p.Status != nil && !p.Status.IsLocal() {
		return NewValidationError("status", "допустимы todo или done")
	}
	return nil
}

// UpdateTask применяет частичное обновление. Перенос в группу для локального хранилища - смена проекта.
func (s *LocalService) UpdateTask(ctx context.Context, id string, p task.Patch) (*task.Task, error) {
	if p.MoveToGroup != nil && p.ProjectID == nil {
		p.ProjectID = p.MoveToGroup
	}
	p.MoveToGroup = nil
	p.Priority = nil
	p.Label = nil

	if err := s.validatePatch(p); err != nil {
		return nil, err
	}

	t, err := s.store.UpdateTask(ctx, id, p)
	if err != nil {
		return nil, fromStore(err, "задача", id, "обновление задачи")
	}
	return t, nil
}

func (s *LocalService) DeleteTask(ctx context.Context, id string) error {
	deleted, err := s.store.DeleteTask(ctx, id)
	if err != nil {
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if !deleted {
		return NewNotFound("задача", id)
	}
	return nil
}

func (s *LocalService) MarkDone(ctx context.Context, id string) (*task.Task, error) {
	return s.UpdateTask(ctx, id, task.NewPatch(task.WithStatus(task.StatusDone)))
}

func (s *LocalService) Reopen(ctx context.Context, id string) (*task.Task, error) {
	return s.UpdateTask(ctx, id, task.NewPatch(task.WithStatus(task.StatusTodo)))
}

func (s *LocalService) Cancel(ctx context.Context, id string) error {
	return NewNotSupported("cancel", BackendLocal)
}

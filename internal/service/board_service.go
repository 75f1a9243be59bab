package service

import (
	"context"
	"fmt"
	"strings"
	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const BackendBoard = "board"

// BoardGroups - группы доски с особым смыслом. Их нельзя узнать через API, поэтому они задаются в конфиге.
type BoardGroups struct {
	Allowed  []string
	Done     string
	Canceled string
	Reopen   string
}

type BoardService struct {
	client BoardClient
	groups BoardGroups
}

func NewBoardService(client BoardClient, groups BoardGroups) *BoardService {
	if groups.Reopen == "" && len(groups.Allowed) > 0 {
		groups.Reopen = groups.Allowed[0]
	}
	return &BoardService{client: client, groups: groups}
}

func (s *BoardService) Backend() string {
	return BackendBoard
}

func (s *BoardService) HealthCheck(ctx context.Context) error {
	return s.client.HealthCheck(ctx)
}

func (s *BoardService) ListUsers() []task.User {
	return task.Users
}

func (s *BoardService) ListGroups(ctx context.Context, ownerID string) ([]task.Group, error) {
	groups, err := s.client.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение групп: %w", err)
	}
	return groups, nil
}

// ListProjects показывает группы доски как проекты
func (s *BoardService) ListProjects(ctx context.Context, ownerID string) ([]*task.Project, error) {
	groups, err := s.ListGroups(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	projects := make([]*task.Project, 0, len(groups))
	for _, g := range groups {
		projects = append(projects, &task.Project{
			ID:       g.ID,
			Name:     g.Title,
			Emoji:    g.Emoji,
			Gradient: g.Color,
		})
	}
	return projects, nil
}

func (s *BoardService) GetProject(ctx context.Context, id string) (*task.Project, error) {
	projects, err := s.ListProjects(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, NewNotFound("группа", id)
}

func (s *BoardService) CreateProject(ctx context.Context, in task.NewProject, ownerID string) (*task.Project, error) {
	return nil, NewNotSupported("create project", BackendBoard)
}

func (s *BoardService) DeleteProject(ctx context.Context, id, userID string) error {
	return NewNotSupported("delete project", BackendBoard)
}

// ListTasks: задачи одной группы, группы "готово" для status=done или всех разрешённых групп
func (s *BoardService) ListTasks(ctx context.Context, f task.Filter) ([]*task.Task, error) {
	group := f.Group
	if group == "" {
		group = f.ProjectID
	}
	if group == "" && f.Status == string(task.StatusDone) {
		group = s.groups.Done
	}

	if group != "" {
		tasks, err := s.client.ListTasksInGroup(ctx, group)
		if err != nil {
			return nil, fmt.Errorf("получение задач группы: %w", err)
		}
		return tasks, nil
	}

	perGroup := make([][]*task.Task, len(s.groups.Allowed))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, groupID := range s.groups.Allowed {
		i, groupID := i, groupID
		eg.Go(func() error {
			tasks, err := s.client.ListTasksInGroup(egCtx, groupID)
			if err != nil {
				return err
			}
			perGroup[i] = tasks
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	all := make([]*task.Task, 0)
	for _, tasks := range perGroup {
		all = append(all, tasks...)
	}
	return all, nil
}

func (s *BoardService) GetTask(ctx context.Context, id string) (*task.Task, error) {
	t, err := s.client.GetTask(ctx, id)
	if err != nil {
		return nil, fromStore(err, "задача", id, "получение задачи")
	}
	return t, nil
}

func (s *BoardService) CreateTask(ctx context.Context, in task.NewTask, ownerID string) (*task.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, NewValidationError("name", "обязательное поле")
	}
	if in.ProjectID == "" {
		return nil, NewValidationError("groupId", "обязательное поле")
	}
	if in.Deadline != nil {
		if err := task.ValidateDeadline(*in.Deadline); err != nil {
			return nil, NewValidationError("deadline", err.Error())
		}
	}

	t, err := s.client.CreateTask(ctx, in.Title, in.ProjectID, in.Fields())
	if err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}
	logger.Info("Service: Задача создана на доске", zap.String("task_id", t.ID), zap.String("group_id", in.ProjectID))
	return t, nil
}

// UpdateTask сначала переносит задачу, потом меняет колонки.
// Если колонки изменить не удалось, перенос остаётся в силе.
func (s *BoardService) UpdateTask(ctx context.Context, id string, p task.Patch) (*task.Task, error) {
	if p.MoveToGroup == nil && p.ProjectID != nil {
		p.MoveToGroup = p.ProjectID
	}
	p.ProjectID = nil
	p.AssigneeID = nil

	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return nil, NewValidationError("name", "не может быть пустым")
	}
	if p.Deadline != nil {
		if err := task.ValidateDeadline(*p.Deadline); err != nil {
			return nil, NewValidationError("deadline", err.Error())
		}
	}

	moved := false
	if p.MoveToGroup != nil {
		if err := s.client.MoveTaskToGroup(ctx, id, *p.MoveToGroup); err != nil {
			return nil, fromStore(err, "задача", id, "перенос задачи")
		}
		moved = true
	}

	if !p.HasFields() {
		return s.GetTask(ctx, id)
	}

	t, err := s.client.UpdateTask(ctx, id, p)
	if err != nil {
		if moved {
			logger.Warn("Service: Задача перенесена, но поля не обновлены",
				zap.String("task_id", id),
				zap.String("group_id", *p.MoveToGroup),
				zap.Error(err))
		}
		return nil, fromStore(err, "задача", id, "обновление задачи")
	}
	return t, nil
}

func (s *BoardService) DeleteTask(ctx context.Context, id string) error {
	deleted, err := s.client.DeleteTask(ctx, id)
	if err != nil {
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if !deleted {
		return NewNotFound("задача", id)
	}
	return nil
}

func (s *BoardService) moveTo(ctx context.Context, id, groupID, operation string) error {
	if groupID == "" {
		return NewNotSupported(operation, BackendBoard)
	}
	if err := s.client.MoveTaskToGroup(ctx, id, groupID); err != nil {
		return fromStore(err, "задача", id, operation)
	}
	return nil
}

func (s *BoardService) MarkDone(ctx context.Context, id string) (*task.Task, error) {
	if err := s.moveTo(ctx, id, s.groups.Done, "done"); err != nil {
		return nil, err
	}
	return s.GetTask(ctx, id)
}

func (s *BoardService) Reopen(ctx context.Context, id string) (*task.Task, error) {
	if err := s.moveTo(ctx, id, s.groups.Reopen, "reopen"); err != nil {
		return nil, err
	}
	return s.GetTask(ctx, id)
}

func (s *BoardService) Cancel(ctx context.Context, id string) error {
	return s.moveTo(ctx, id, s.groups.Canceled, "cancel")
}

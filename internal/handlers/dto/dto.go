package dto

import (
	"encoding/json"
	"fmt"
	"taskBoard/internal/models/task"
	"time"
)

type CreateProjectRequest struct {
	Name     string `json:"name"`
	Emoji    string `json:"emoji"`
	Gradient string `json:"gradient"`
}

func (r CreateProjectRequest) ToNewProject() task.NewProject {
	return task.NewProject{Name: r.Name, Emoji: r.Emoji, Gradient: r.Gradient}
}

// CreateTaskRequest принимает поля обеих форм: title/projectId локально и name/groupId для доски
type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	AssigneeID  string  `json:"assigneeId"`
	ProjectID   string  `json:"projectId"`
	GroupID     string  `json:"groupId"`
	Deadline    *string `json:"deadline"`
	Priority    *string `json:"priority"`
	Project     *string `json:"project"`
	Status      *string `json:"status"`
}

func (r CreateTaskRequest) ToNewTask() task.NewTask {
	in := task.NewTask{
		Title:       r.Title,
		Description: r.Description,
		AssigneeID:  r.AssigneeID,
		ProjectID:   r.ProjectID,
		Label:       r.Project,
	}
	if in.Title == "" {
		in.Title = r.Name
	}
	if in.ProjectID == "" {
		in.ProjectID = r.GroupID
	}
	if r.Deadline != nil && *r.Deadline != "" {
		in.Deadline = r.Deadline
	}
	if r.Priority != nil {
		p := task.Priority(*r.Priority)
		in.Priority = &p
	}
	if r.Status != nil {
		s := task.Status(*r.Status)
		in.Status = &s
	}
	return in
}

// UpdateTaskRequest - частичное обновление. deadline: null очищает дедлайн, отсутствие поля его не трогает
type UpdateTaskRequest struct {
	Title       *string         `json:"title"`
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	AssigneeID  *string         `json:"assigneeId"`
	ProjectID   *string         `json:"projectId"`
	Deadline    json.RawMessage `json:"deadline"`
	Status      *string         `json:"status"`
	Priority    *string         `json:"priority"`
	Project     *string         `json:"project"`
	MoveToGroup *string         `json:"moveToGroup"`
}

func (r UpdateTaskRequest) ToPatch() (task.Patch, error) {
	var opts []task.PatchOption

	title := r.Title
	if title == nil {
		title = r.Name
	}
	if title != nil {
		opts = append(opts, task.WithTitle(*title))
	}
	if r.Description != nil {
		opts = append(opts, task.WithDescription(*r.Description))
	}
	if r.AssigneeID != nil {
		opts = append(opts, task.WithAssignee(*r.AssigneeID))
	}
	if r.ProjectID != nil {
		opts = append(opts, task.WithProject(*r.ProjectID))
	}
	if r.Status != nil {
		opts = append(opts, task.WithStatus(task.Status(*r.Status)))
	}
	if r.Priority != nil {
		opts = append(opts, task.WithPriority(task.Priority(*r.Priority)))
	}
	if r.Project != nil {
		opts = append(opts, task.WithLabel(*r.Project))
	}
	if r.MoveToGroup != nil {
		opts = append(opts, task.WithMoveToGroup(*r.MoveToGroup))
	}

	if len(r.Deadline) > 0 {
		if string(r.Deadline) == "null" {
			opts = append(opts, task.WithoutDeadline())
		} else {
			var deadline string
			if err := json.Unmarshal(r.Deadline, &deadline); err != nil {
				return task.Patch{}, fmt.Errorf("deadline должен быть строкой или null: %w", err)
			}
			if deadline == "" {
				opts = append(opts, task.WithoutDeadline())
			} else {
				opts = append(opts, task.WithDeadline(deadline))
			}
		}
	}

	return task.NewPatch(opts...), nil
}

// TaskResponse - задача локального хранилища
type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssigneeID  string     `json:"assigneeId"`
	ProjectID   string     `json:"projectId"`
	Deadline    *string    `json:"deadline"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	ClosedAt    *time.Time `json:"closedAt"`
	OwnerID     *string    `json:"ownerId,omitempty"`
}

// BoardTaskResponse - элемент доски, пустые колонки не отдаются
type BoardTaskResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	GroupID     string  `json:"groupId"`
	GroupTitle  string  `json:"groupTitle"`
	Priority    string  `json:"priority,omitempty"`
	Project     string  `json:"project,omitempty"`
	Deadline    *string `json:"deadline,omitempty"`
	Status      string  `json:"status,omitempty"`
	Description string  `json:"description,omitempty"`
}

// FromTask выбирает форму ответа по происхождению задачи
func FromTask(t *task.Task) any {
	if t.Origin == task.OriginBoard {
		return BoardTaskResponse{
			ID:          t.ID,
			Name:        t.Title,
			GroupID:     t.ProjectID,
			GroupTitle:  t.GroupTitle,
			Priority:    string(t.Priority),
			Project:     t.Label,
			Deadline:    t.Deadline,
			Status:      string(t.Status),
			Description: t.Description,
		}
	}
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		AssigneeID:  t.AssigneeID,
		ProjectID:   t.ProjectID,
		Deadline:    t.Deadline,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		ClosedAt:    t.ClosedAt,
		OwnerID:     t.OwnerID,
	}
}

func FromTaskList(tasks []*task.Task) []any {
	result := make([]any, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

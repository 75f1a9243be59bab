package service

import (
	"context"
	"taskBoard/internal/models/task"
)

// TaskStore - локальное хранилище проектов и задач
type TaskStore interface {
	HealthCheck(ctx context.Context) error
	ListProjects(ctx context.Context, ownerID string) ([]*task.Project, error)
	GetProject(ctx context.Context, id string) (*task.Project, error)
	CreateProject(ctx context.Context, in task.NewProject, ownerID string) (*task.Project, error)
	DeleteProject(ctx context.Context, id string) (bool, error)
	ListTasks(ctx context.Context, f task.Filter) ([]*task.Task, error)
	GetTask(ctx context.Context, id string) (*task.Task, error)
	CreateTask(ctx context.Context, in task.NewTask, ownerID string) (*task.Task, error)
	UpdateTask(ctx context.Context, id string, patch task.Patch) (*task.Task, error)
	DeleteTask(ctx context.Context, id string) (bool, error)
}

// BoardClient - доска с группами и элементами
type BoardClient interface {
	HealthCheck(ctx context.Context) error
	ListGroups(ctx context.Context) ([]task.Group, error)
	ListTasksInGroup(ctx context.Context, groupID string) ([]*task.Task, error)
	GetTask(ctx context.Context, id string) (*task.Task, error)
	CreateTask(ctx context.Context, name, groupID string, fields task.Patch) (*task.Task, error)
	UpdateTask(ctx context.Context, id string, fields task.Patch) (*task.Task, error)
	DeleteTask(ctx context.Context, id string) (bool, error)
	MoveTaskToGroup(ctx context.Context, id, groupID string) error
}

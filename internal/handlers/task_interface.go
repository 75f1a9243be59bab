package handlers

import (
	"context"
	"taskBoard/internal/models/task"
)

// Service - общий контракт локального хранилища и доски
type Service interface {
	Backend() string
	HealthCheck(ctx context.Context) error
	ListUsers() []task.User

	ListProjects(ctx context.Context, ownerID string) ([]*task.Project, error)
	GetProject(ctx context.Context, id string) (*task.Project, error)
	CreateProject(ctx context.Context, in task.NewProject, ownerID string) (*task.Project, error)
	DeleteProject(ctx context.Context, id, userID string) error
	ListGroups(ctx context.Context, ownerID string) ([]task.Group, error)

	ListTasks(ctx context.Context, f task.Filter) ([]*task.Task, error)
	GetTask(ctx context.Context, id string) (*task.Task, error)
	CreateTask(ctx context.Context, in task.NewTask, ownerID string) (*task.Task, error)
	UpdateTask(ctx context.Context, id string, p task.Patch) (*task.Task, error)
	DeleteTask(ctx context.Context, id string) error
	MarkDone(ctx context.Context, id string) (*task.Task, error)
	Reopen(ctx context.Context, id string) (*task.Task, error)
	Cancel(ctx context.Context, id string) error
}

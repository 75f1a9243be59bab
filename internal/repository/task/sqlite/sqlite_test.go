package sqlite_test

import (
	"context"
	"path/filepath"
	"sync"
	"taskBoard/internal/migrations"
	"taskBoard/internal/models/task"
	"taskBoard/internal/repository"
	"taskBoard/internal/repository/task/sqlite"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T) *sqlite.Storage {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tasks.db")
	require.NoError(t, migrations.Up(migrations.SQLite, sqlite.DSN(path)))

	storage, err := sqlite.New(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(storage.Close)
	return storage
}

func createProject(t *testing.T, s *sqlite.Storage, name string) *task.Project {
	t.Helper()
	p, err := s.CreateProject(context.Background(), task.NewProject{Name: name, Emoji: "🔧", Gradient: "g1"}, "")
	require.NoError(t, err)
	return p
}

func createTask(t *testing.T, s *sqlite.Storage, projectID string) *task.Task {
	t.Helper()
	tk, err := s.CreateTask(context.Background(), task.NewTask{Title: "Ship", AssigneeID: "pavlo", ProjectID: projectID}, "")
	require.NoError(t, err)
	return tk
}

func TestStorage_HealthCheck(t *testing.T) {
	s := newStorage(t)
	assert.NoError(t, s.HealthCheck(context.Background()))
}

// TestStorage_MigrationsIdempotent тестирует повторный запуск миграций
func TestStorage_MigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")
	require.NoError(t, migrations.Up(migrations.SQLite, sqlite.DSN(path)))
	require.NoError(t, migrations.Up(migrations.SQLite, sqlite.DSN(path)))
}

func TestStorage_CreateProject(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)

	created := createProject(t, s, "Ops")
	createProject(t, s, "Alpha")

	projects, err := s.ListProjects(ctx, "")
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "Alpha", projects[0].Name)
	assert.Equal(t, "Ops", projects[1].Name)
	assert.Equal(t, created.ID, projects[1].ID)
	assert.NotEmpty(t, projects[1].ID)
	assert.Nil(t, projects[1].OwnerID)

	got, err := s.GetProject(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "g1", got.Gradient)

	_, err = s.GetProject(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStorage_CreateTask(t *testing.T) {
	s := newStorage(t)
	p := createProject(t, s, "P1")

	tk := createTask(t, s, p.ID)

	assert.NotEmpty(t, tk.ID)
	assert.Nil(t, tk.Deadline)
	assert.Equal(t, task.StatusTodo, tk.Status)
	assert.Nil(t, tk.ClosedAt)
	assert.Equal(t, "", tk.Description)
	assert.False(t, tk.CreatedAt.IsZero())

	_, err := s.CreateTask(context.Background(), task.NewTask{Title: "x", AssigneeID: "dan", ProjectID: "missing"}, "")
	assert.ErrorIs(t, err, repository.ErrProjectNotFound)
}

func TestStorage_UpdateTaskStatus(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)
	p := createProject(t, s, "P1")
	tk := createTask(t, s, p.ID)

	done, err := s.UpdateTask(ctx, tk.ID, task.NewPatch(task.WithStatus(task.StatusDone)))
	require.NoError(t, err)
	require.NotNil(t, done.ClosedAt)

	again, err := s.UpdateTask(ctx, tk.ID, task.NewPatch(task.WithStatus(task.StatusDone), task.WithTitle("Ship it")))
	require.NoError(t, err)
	require.NotNil(t, again.ClosedAt)
	assert.True(t, done.ClosedAt.Equal(*again.ClosedAt))
	assert.Equal(t, "Ship it", again.Title)

	reopened, err := s.UpdateTask(ctx, tk.ID, task.NewPatch(task.WithStatus(task.StatusTodo)))
	require.NoError(t, err)
	assert.Nil(t, reopened.ClosedAt)
	assert.Equal(t, task.StatusTodo, reopened.Status)
}

func TestStorage_UpdateTaskSparse(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)
	p := createProject(t, s, "P1")
	tk := createTask(t, s, p.ID)

	withDeadline, err := s.UpdateTask(ctx, tk.ID, task.NewPatch(task.WithDeadline("2025-06-01")))
	require.NoError(t, err)

	updated, err := s.UpdateTask(ctx, tk.ID, task.NewPatch(task.WithDescription("x")))
	require.NoError(t, err)

	assert.Equal(t, "x", updated.Description)
	assert.Equal(t, withDeadline.Title, updated.Title)
	assert.Equal(t, withDeadline.AssigneeID, updated.AssigneeID)
	assert.Equal(t, withDeadline.ProjectID, updated.ProjectID)
	assert.Equal(t, withDeadline.Deadline, updated.Deadline)
	assert.Equal(t, withDeadline.Status, updated.Status)
	assert.True(t, tk.CreatedAt.Equal(updated.CreatedAt))

	cleared, err := s.UpdateTask(ctx, tk.ID, task.NewPatch(task.WithoutDeadline()))
	require.NoError(t, err)
	assert.Nil(t, cleared.Deadline)

	unchanged, err := s.UpdateTask(ctx, tk.ID, task.NewPatch())
	require.NoError(t, err)
	assert.Equal(t, "x", unchanged.Description)
}

func TestStorage_UpdateTaskErrors(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)
	p := createProject(t, s, "P1")
	tk := createTask(t, s, p.ID)

	_, err := s.UpdateTask(ctx, "missing", task.NewPatch(task.WithTitle("x")))
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = s.UpdateTask(ctx, tk.ID, task.NewPatch(task.WithProject("missing")))
	assert.ErrorIs(t, err, repository.ErrProjectNotFound)

	got, err := s.GetTask(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ProjectID)
}

func TestStorage_ListTasks(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)
	p1 := createProject(t, s, "P1")
	p2 := createProject(t, s, "P2")

	first := createTask(t, s, p1.ID)
	second := createTask(t, s, p1.ID)
	createTask(t, s, p2.ID)

	_, err := s.UpdateTask(ctx, first.ID, task.NewPatch(task.WithStatus(task.StatusDone)))
	require.NoError(t, err)

	inP1, err := s.ListTasks(ctx, task.Filter{ProjectID: p1.ID})
	require.NoError(t, err)
	require.Len(t, inP1, 2)
	assert.Equal(t, second.ID, inP1[0].ID)

	done, err := s.ListTasks(ctx, task.Filter{Status: "done"})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, first.ID, done[0].ID)

	all, err := s.ListTasks(ctx, task.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStorage_DeleteProjectCascade(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)
	p := createProject(t, s, "P1")
	other := createProject(t, s, "P2")
	createTask(t, s, p.ID)
	kept := createTask(t, s, other.ID)

	deleted, err := s.DeleteProject(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	tasks, err := s.ListTasks(ctx, task.Filter{ProjectID: p.ID})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	_, err = s.GetTask(ctx, kept.ID)
	assert.NoError(t, err)

	deleted, err = s.DeleteProject(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestStorage_DeleteTask(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)
	p := createProject(t, s, "P1")
	tk := createTask(t, s, p.ID)

	deleted, err := s.DeleteTask(ctx, tk.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteTask(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, deleted)
}

// TestStorage_Concurrent тестирует параллельные записи через один файл
func TestStorage_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)
	p := createProject(t, s, "P1")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateTask(ctx, task.NewTask{Title: "t", AssigneeID: "dan", ProjectID: p.ID}, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	tasks, err := s.ListTasks(ctx, task.Filter{ProjectID: p.ID})
	require.NoError(t, err)
	assert.Len(t, tasks, 20)
}

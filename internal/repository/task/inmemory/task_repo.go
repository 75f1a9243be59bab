package inmemory

import (
	"context"
	"sort"
	"sync"
	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"
	repo "taskBoard/internal/repository"
	"time"

	"github.com/google/uuid"
)

type TaskStorage struct {
	projects map[string]*task.Project
	tasks    map[string]*task.Task
	mtx      *sync.RWMutex
	ids      []string // порядок создания задач
	now      func() time.Time
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		projects: make(map[string]*task.Project),
		tasks:    make(map[string]*task.Task),
		mtx:      &sync.RWMutex{},
		ids:      []string{},
		now:      time.Now,
	}
}

// WithClock подменяет источник времени, нужен тестам
func (s *TaskStorage) WithClock(now func() time.Time) *TaskStorage {
	s.now = now
	return s
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *TaskStorage) Close() {
	logger.Info("Repository: Хранилище в памяти закрыто")
}

func copyProject(p *task.Project) *task.Project {
	c := *p
	if p.OwnerID != nil {
		o := *p.OwnerID
		c.OwnerID = &o
	}
	return &c
}

func (s *TaskStorage) ListProjects(ctx context.Context, ownerID string) ([]*task.Project, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	projects := make([]*task.Project, 0, len(s.projects))
	for _, p := range s.projects {
		if ownerID != "" && p.OwnerID != nil && *p.OwnerID != ownerID {
			continue
		}
		projects = append(projects, copyProject(p))
	}
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].Name < projects[j].Name
	})
	return projects, nil
}

func (s *TaskStorage) GetProject(ctx context.Context, id string) (*task.Project, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return copyProject(p), nil
}

func (s *TaskStorage) CreateProject(ctx context.Context, in task.NewProject, ownerID string) (*task.Project, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	p := &task.Project{
		ID:       uuid.NewString(),
		Name:     in.Name,
		Emoji:    in.Emoji,
		Gradient: in.Gradient,
	}
	if ownerID != "" {
		p.OwnerID = &ownerID
	}
	s.projects[p.ID] = p
	return copyProject(p), nil
}

// DeleteProject сначала удаляет задачи проекта
func (s *TaskStorage) DeleteProject(ctx context.Context, id string) (bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	kept := s.ids[:0]
	for _, taskID := range s.ids {
		if s.tasks[taskID].ProjectID == id {
			delete(s.tasks, taskID)
			continue
		}
		kept = append(kept, taskID)
	}
	s.ids = kept

	if _, ok := s.projects[id]; !ok {
		return false, nil
	}
	delete(s.projects, id)
	return true, nil
}

func matches(t *task.Task, f task.Filter) bool {
	if f.Status != "" && string(t.Status) != f.Status {
		return false
	}
	if f.ProjectID != "" && t.ProjectID != f.ProjectID {
		return false
	}
	if f.OwnerID != "" && t.OwnerID != nil && *t.OwnerID != f.OwnerID {
		return false
	}
	return true
}

func (s *TaskStorage) ListTasks(ctx context.Context, f task.Filter) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	tasks := make([]*task.Task, 0)
	for i := len(s.ids) - 1; i >= 0; i-- {
		t := s.tasks[s.ids[i]]
		if matches(t, f) {
			tasks = append(tasks, t.Clone())
		}
	}
	return tasks, nil
}

func (s *TaskStorage) GetTask(ctx context.Context, id string) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return t.Clone(), nil
}

func (s *TaskStorage) CreateTask(ctx context.Context, in task.NewTask, ownerID string) (*task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.projects[in.ProjectID]; !ok {
		return nil, repo.ErrProjectNotFound
	}

	t := &task.Task{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		AssigneeID:  in.AssigneeID,
		ProjectID:   in.ProjectID,
		Status:      task.StatusTodo,
		CreatedAt:   s.now().UTC(),
		Origin:      task.OriginLocal,
	}
	if in.Deadline != nil {
		d := *in.Deadline
		t.Deadline = &d
	}
	if ownerID != "" {
		t.OwnerID = &ownerID
	}

	s.tasks[t.ID] = t
	s.ids = append(s.ids, t.ID)
	return t.Clone(), nil
}

// UpdateTask применяет патч под одной блокировкой, поэтому все изменения видны атомарно
func (s *TaskStorage) UpdateTask(ctx context.Context, id string, patch task.Patch) (*task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.tasks[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if patch.ProjectID != nil {
		if _, ok := s.projects[*patch.ProjectID]; !ok {
			return nil, repo.ErrProjectNotFound
		}
	}

	updated := existing.Clone()
	updated.Apply(patch, s.now().UTC())
	s.tasks[id] = updated
	return updated.Clone(), nil
}

func (s *TaskStorage) DeleteTask(ctx context.Context, id string) (bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return false, nil
	}
	delete(s.tasks, id)
	for i, taskID := range s.ids {
		if taskID == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return true, nil
}

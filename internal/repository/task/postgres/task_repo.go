package postgres

import (
	"context"
	"errors"
	"fmt"
	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"
	repo "taskBoard/internal/repository"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const slowQuery = 100 * time.Millisecond

const foreignKeyViolation = "23503"

type Storage struct {
	pool *pgxpool.Pool
}

type Option func(*pgxpool.Config)

func WithPoolLimits(maxConns, minConns int32, idle time.Duration) Option {
	return func(c *pgxpool.Config) {
		if maxConns > 0 {
			c.MaxConns = maxConns
		}
		if minConns > 0 {
			c.MinConns = minConns
		}
		if idle > 0 {
			c.MaxConnIdleTime = idle
		}
	}
}

func New(ctx context.Context, connString string, opts ...Option) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5
	for _, opt := range opts {
		opt(config)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL",
		zap.Int32("max_conns", config.MaxConns))
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func observe(operation string, start time.Time) {
	if elapsed := time.Since(start); elapsed > slowQuery {
		logger.Warn("Repository: Медленная операция",
			zap.String("operation", operation),
			zap.Duration("ms", elapsed))
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*task.Project, error) {
	p := &task.Project{}
	if err := row.Scan(&p.ID, &p.Name, &p.Emoji, &p.Gradient, &p.OwnerID); err != nil {
		return nil, err
	}
	return p, nil
}

func scanTask(row rowScanner) (*task.Task, error) {
	t := &task.Task{Origin: task.OriginLocal}
	var status string
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.AssigneeID,
		&t.ProjectID,
		&t.Deadline,
		&status,
		&t.CreatedAt,
		&t.ClosedAt,
		&t.OwnerID,
	)
	if err != nil {
		return nil, err
	}
	t.Status = task.Status(status)
	return t, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

func (s *Storage) ListProjects(ctx context.Context, ownerID string) ([]*task.Project, error) {
	start := time.Now()
	defer observe("list_projects", start)

	q := repo.ListProjects(repo.Dollar, ownerID)
	rows, err := s.pool.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		logger.Error("Repository: Получение проектов", err)
		return nil, fmt.Errorf("получение проектов: %w", err)
	}
	defer rows.Close()

	projects := make([]*task.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("чтение проекта: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("итерация проектов: %w", err)
	}
	return projects, nil
}

func (s *Storage) GetProject(ctx context.Context, id string) (*task.Project, error) {
	start := time.Now()
	defer observe("get_project", start)

	query := `SELECT ` + repo.ProjectColumns + ` FROM projects WHERE id = $1`
	p, err := scanProject(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Получение проекта", err, zap.String("project_id", id))
		return nil, fmt.Errorf("получение проекта: %w", err)
	}
	return p, nil
}

func (s *Storage) CreateProject(ctx context.Context, in task.NewProject, ownerID string) (*task.Project, error) {
	start := time.Now()
	defer observe("create_project", start)

	p := &task.Project{
		ID:       uuid.NewString(),
		Name:     in.Name,
		Emoji:    in.Emoji,
		Gradient: in.Gradient,
		OwnerID:  nullable(ownerID),
	}

	query := `INSERT INTO projects (id, name, emoji, gradient, owner_id)
			VALUES ($1, $2, $3, $4, $5)`

	if _, err := s.pool.Exec(ctx, query, p.ID, p.Name, p.Emoji, p.Gradient, p.OwnerID); err != nil {
		logger.Error("Repository: Создание проекта", err)
		return nil, fmt.Errorf("создание проекта: %w", err)
	}
	return p, nil
}

// DeleteProject удаляет задачи проекта и сам проект в одной транзакции
func (s *Storage) DeleteProject(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	defer observe("delete_project", start)

	var deleted bool
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE project_id = $1`, id); err != nil {
			return fmt.Errorf("удаление задач проекта: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("удаление проекта: %w", err)
		}
		deleted = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		logger.Error("Repository: Удаление проекта", err, zap.String("project_id", id))
		return false, err
	}
	return deleted, nil
}

func (s *Storage) ListTasks(ctx context.Context, f task.Filter) ([]*task.Task, error) {
	start := time.Now()
	defer observe("list_tasks", start)

	q := repo.ListTasks(repo.Dollar, f)
	rows, err := s.pool.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		logger.Error("Repository: Получение задач", err)
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := make([]*task.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("чтение задачи: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("итерация задач: %w", err)
	}
	return tasks, nil
}

func (s *Storage) GetTask(ctx context.Context, id string) (*task.Task, error) {
	start := time.Now()
	defer observe("get_task", start)

	query := `SELECT ` + repo.TaskColumns + ` FROM tasks WHERE id = $1`
	t, err := scanTask(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Получение задачи", err, zap.String("task_id", id))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return t, nil
}

func (s *Storage) CreateTask(ctx context.Context, in task.NewTask, ownerID string) (*task.Task, error) {
	start := time.Now()
	defer observe("create_task", start)

	query := `INSERT INTO tasks (id, title, description, assignee_id, project_id, deadline, status, created_at, closed_at, owner_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULL, $9)
			RETURNING ` + repo.TaskColumns

	t, err := scanTask(s.pool.QueryRow(ctx, query,
		uuid.NewString(),
		in.Title,
		in.Description,
		in.AssigneeID,
		in.ProjectID,
		in.Deadline,
		string(task.StatusTodo),
		time.Now().UTC(),
		nullable(ownerID),
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, repo.ErrProjectNotFound
		}
		logger.Error("Repository: Создание задачи", err)
		return nil, fmt.Errorf("создание задачи: %w", err)
	}
	return t, nil
}

// UpdateTask применяет патч одним UPDATE ... RETURNING
func (s *Storage) UpdateTask(ctx context.Context, id string, patch task.Patch) (*task.Task, error) {
	q, ok := repo.UpdateTask(repo.Dollar, id, patch, time.Now().UTC())
	if !ok {
		return s.GetTask(ctx, id)
	}

	start := time.Now()
	defer observe("update_task", start)

	t, err := scanTask(s.pool.QueryRow(ctx, q.SQL, q.Args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		if isForeignKeyViolation(err) {
			return nil, repo.ErrProjectNotFound
		}
		logger.Error("Repository: Обновление задачи", err, zap.String("task_id", id))
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}
	return t, nil
}

func (s *Storage) DeleteTask(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	defer observe("delete_task", start)

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: Удаление задачи", err, zap.String("task_id", id))
		return false, fmt.Errorf("удаление задачи: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
